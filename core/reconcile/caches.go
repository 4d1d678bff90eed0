package reconcile

import (
	"building-cost/core/textnorm"
	"building-cost/core/types"
)

// runCaches hold the entities resolved during one reconciliation run.
// They are built after the target building is known and are never shared
// across runs; concurrent reconciliations for different periods or
// buildings each get their own.
type runCaches struct {
	units    *textnorm.Matcher[*types.Unit]
	services *textnorm.Matcher[*types.Service]
}

func newRunCaches(units []types.Unit, services []types.Service) *runCaches {
	c := &runCaches{
		units:    textnorm.NewMatcher[*types.Unit](),
		services: textnorm.NewMatcher[*types.Service](),
	}
	for i := range units {
		c.units.Add(units[i].Name, &units[i])
	}
	for i := range services {
		c.services.Add(services[i].Name, &services[i])
	}
	return c
}
