// Package reconcile matches parsed snapshot data against persisted
// entities and performs the idempotent per-period replace of billing
// results.
package reconcile

import (
	"context"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"building-cost/internal/errors"

	"building-cost/core/monthly"
	"building-cost/core/snapshot"
	"building-cost/core/textnorm"
	"building-cost/core/types"
)

// Options select the reconciliation target.
type Options struct {
	// BuildingID targets an explicit building; when nil the building is
	// resolved heuristically from the snapshot
	BuildingID *uuid.UUID

	// Year selects (or creates) the billing period
	Year int
}

// Reconciler runs snapshot reconciliation against a repository.
type Reconciler struct {
	repo Repository
	log  *zap.Logger
}

// New returns a Reconciler.
func New(repo Repository, log *zap.Logger) *Reconciler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reconciler{repo: repo, log: log}
}

// Run reconciles one parsed snapshot into the repository. The delete of
// prior period results and all inserts share one transaction scope; a
// reader never observes a mixed old/new state. Per-unit persistence
// failures are recorded on the summary and the run continues.
func (r *Reconciler) Run(ctx context.Context, opts Options, parsed *snapshot.Parsed) (*Summary, error) {
	if parsed == nil || len(parsed.Units) == 0 {
		return nil, errors.Input("snapshot contains no units")
	}
	if opts.Year == 0 {
		return nil, errors.Input("billing year is required")
	}

	summary := &Summary{Warnings: append([]string(nil), parsed.Warnings...)}

	building, err := r.resolveBuilding(ctx, opts, parsed, summary)
	if err != nil {
		return nil, err
	}
	summary.BuildingID = building.ID

	period, err := r.resolvePeriod(ctx, building.ID, opts.Year)
	if err != nil {
		return nil, err
	}
	summary.PeriodID = period.ID

	// Shared resolution state is loaded once, before any per-unit work,
	// because multiple units' rows resolve to the same services.
	units, err := r.repo.ListUnits(ctx, building.ID)
	if err != nil {
		return nil, errors.Persistence("list units", err)
	}
	services, err := r.repo.ListServices(ctx, building.ID)
	if err != nil {
		return nil, errors.Persistence("list services", err)
	}
	caches := newRunCaches(units, services)

	err = r.repo.WithinTx(ctx, func(tx Repository) error {
		if err := tx.DeleteResultsForPeriod(ctx, period.ID); err != nil {
			return errors.Persistence("delete prior period results", err)
		}
		for _, snap := range parsed.Units {
			if err := ctx.Err(); err != nil {
				return errors.Internal("reconciliation canceled", err)
			}
			r.reconcileUnit(ctx, tx, building, period, caches, snap, summary)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.Info("reconciliation finished",
		zap.String("building", building.Name),
		zap.Int("year", opts.Year),
		zap.Int("results", summary.ResultsWritten),
		zap.Int("warnings", len(summary.Warnings)),
		zap.Int("errors", len(summary.Errors)))

	return summary, nil
}

// resolveBuilding applies the resolution chain: explicit identifier,
// building-number token from the first unit name, street substring,
// create new.
func (r *Reconciler) resolveBuilding(ctx context.Context, opts Options, parsed *snapshot.Parsed, summary *Summary) (*types.Building, error) {
	if opts.BuildingID != nil {
		b, err := r.repo.FindBuilding(ctx, *opts.BuildingID)
		if err != nil {
			return nil, errors.Persistence("find building", err)
		}
		if b == nil {
			return nil, errors.NotFound("building", opts.BuildingID.String())
		}
		return b, nil
	}

	buildings, err := r.repo.ListBuildings(ctx)
	if err != nil {
		return nil, errors.Persistence("list buildings", err)
	}

	token := buildingToken(parsed.Units[0].Name)
	if token != "" {
		for i := range buildings {
			if textnorm.Digits(buildings[i].HouseNumber) == token {
				return &buildings[i], nil
			}
		}
	}

	var address string
	if parsed.Building != nil {
		address = parsed.Building.Address
	}
	if address != "" {
		normalized := textnorm.Normalize(address)
		for i := range buildings {
			street := textnorm.Normalize(buildings[i].Street)
			if street != "" && strings.Contains(normalized, street) {
				return &buildings[i], nil
			}
		}
	}

	created := &types.Building{ID: uuid.New(), HouseNumber: token}
	if parsed.Building != nil {
		created.Name = parsed.Building.Name
		created.Street = parsed.Building.Address
		created.BankAccount = parsed.Building.BankAccount
	}
	if created.Name == "" {
		if token != "" {
			created.Name = "Building " + token
		} else {
			created.Name = "Building " + parsed.Units[0].Name
		}
	}
	if err := r.repo.CreateBuilding(ctx, created); err != nil {
		return nil, errors.Persistence("create building", err)
	}
	summary.BuildingCreated = true
	summary.infof("no existing building matched, created %q", created.Name)
	return created, nil
}

// buildingToken extracts the building-number token: the first digit run
// of the name.
func buildingToken(unitName string) string {
	start := -1
	for i, r := range unitName {
		if unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			return unitName[start:i]
		}
	}
	if start >= 0 {
		return unitName[start:]
	}
	return ""
}

func (r *Reconciler) resolvePeriod(ctx context.Context, buildingID uuid.UUID, year int) (*types.BillingPeriod, error) {
	period, err := r.repo.FindPeriod(ctx, buildingID, year)
	if err != nil {
		return nil, errors.Persistence("find period", err)
	}
	if period != nil {
		return period, nil
	}
	period = &types.BillingPeriod{
		ID:         uuid.New(),
		BuildingID: buildingID,
		Year:       year,
		Name:       strconv.Itoa(year),
	}
	if err := r.repo.CreatePeriod(ctx, period); err != nil {
		return nil, errors.Persistence("create period", err)
	}
	return period, nil
}

// reconcileUnit resolves one snapshot unit, derives its totals and
// persists its billing result. Persistence failures abort only this
// unit's write.
func (r *Reconciler) reconcileUnit(ctx context.Context, tx Repository, building *types.Building, period *types.BillingPeriod, caches *runCaches, snap *snapshot.UnitSnapshot, summary *Summary) {
	unit, kind, found := caches.units.Match(snap.Name)
	if found {
		summary.UnitsMatched++
		if kind != textnorm.MatchExact {
			summary.infof("unit %q resolved to %q via %s match", snap.Name, unit.Name, kind)
		}
	} else {
		unit = &types.Unit{ID: uuid.New(), BuildingID: building.ID, Name: snap.Name}
		if err := tx.CreateUnit(ctx, unit); err != nil {
			summary.errorf("unit %q: create unit failed: %v", snap.Name, err)
			return
		}
		caches.units.Add(unit.Name, unit)
		summary.UnitsCreated++
		summary.infof("unit %q not found, created", snap.Name)
	}

	result := r.buildResult(ctx, period, unit, caches, tx, snap, summary)

	if err := tx.CreateResult(ctx, result); err != nil {
		summary.errorf("unit %q: persist billing result failed: %v", snap.Name, err)
		return
	}
	summary.ResultsWritten++

	r.persistOwnership(ctx, tx, unit, snap, summary)
}

// buildResult derives totals and the monthly arrays for one unit.
func (r *Reconciler) buildResult(ctx context.Context, period *types.BillingPeriod, unit *types.Unit, caches *runCaches, tx Repository, snap *snapshot.UnitSnapshot, summary *Summary) *types.BillingResult {
	result := &types.BillingResult{
		ID:       uuid.New(),
		PeriodID: period.ID,
		UnitID:   unit.ID,
	}

	var totalCost, totalAdvance float64
	for _, c := range snap.Costs {
		svc := r.resolveService(ctx, tx, unit.BuildingID, caches, c, summary)

		unitCost := c.UnitCost
		if unitCost == 0 && c.UnitAdvance != 0 && c.UnitBalance != 0 {
			// Known source gap: cost omitted while advance and balance
			// stay consistent. Recover it from the difference.
			unitCost = c.UnitAdvance - c.UnitBalance
			summary.infof("unit %q, service %q: cost recovered as advance - balance = %v",
				snap.Name, c.ServiceName, unitCost)
		}

		balance := c.UnitBalance
		if !c.ExplicitBalance {
			balance = c.UnitAdvance - unitCost
		}

		line := types.BillingServiceCost{
			ID:            uuid.New(),
			ResultID:      result.ID,
			ServiceName:   c.ServiceName,
			BuildingTotal: c.BuildingTotal,
			UnitCost:      unitCost,
			UnitAdvance:   c.UnitAdvance,
			UnitBalance:   balance,
			BasisLabel:    c.BasisLabel,
			BuildingUnits: c.BuildingUnits,
			PricePerUnit:  c.PricePerUnit,
			UnitUnits:     c.UnitUnits,
			ShareText:     c.ShareText,
		}
		if svc != nil {
			line.ServiceID = svc.ID
		}
		for _, m := range c.Meters {
			line.Readings = append(line.Readings, types.ReadingSnapshot{
				Serial:      m.Serial,
				Start:       m.Start,
				End:         m.End,
				Consumption: m.Consumption,
			})
		}
		result.Services = append(result.Services, line)

		totalCost += unitCost
		totalAdvance += c.UnitAdvance
	}

	advances, err := tx.ListAdvances(ctx, period.ID, unit.ID)
	if err != nil {
		summary.warnf("unit %q: loading raw advances failed: %v", snap.Name, err)
	}
	payments, err := tx.ListPayments(ctx, period.ID, unit.ID)
	if err != nil {
		summary.warnf("unit %q: loading raw payments failed: %v", snap.Name, err)
	}

	if types.PadMonths(snap.PrescribedMonths).IsZero() && !types.PadMonths(snap.PaidMonths).IsZero() {
		r.log.Warn("prescribed array empty, mirroring paid",
			zap.String("unit", snap.Name))
	}

	arrays := monthly.Build(monthly.Inputs{
		Prescribed: snap.PrescribedMonths,
		Paid:       snap.PaidMonths,
		Advances:   advances,
		Payments:   payments,
	})
	result.Prescribed = arrays.Prescribed
	result.Paid = arrays.Paid

	result.TotalCost = totalCost
	result.TotalPrescribed = totalAdvance
	if totalAdvance == 0 {
		result.TotalPrescribed = arrays.Prescribed.Sum()
	}
	result.TotalPaid = arrays.Paid.Sum()

	if snap.TotalResult != nil {
		result.Balance = *snap.TotalResult
	} else {
		result.Balance = totalAdvance - totalCost
	}

	return result
}

// resolveService resolves one service name through the matcher pipeline,
// creating the service when nothing matches.
func (r *Reconciler) resolveService(ctx context.Context, tx Repository, buildingID uuid.UUID, caches *runCaches, c *snapshot.CostSnapshot, summary *Summary) *types.Service {
	svc, kind, found := caches.services.Match(c.ServiceName)
	if found {
		summary.ServicesMatched++
		if kind == textnorm.MatchContains {
			summary.infof("service %q resolved to %q via substring match", c.ServiceName, svc.Name)
		}
		return svc
	}

	svc = &types.Service{
		ID:          uuid.New(),
		BuildingID:  buildingID,
		Name:        c.ServiceName,
		Methodology: methodologyFromLabel(c.BasisLabel),
	}
	if err := tx.CreateService(ctx, svc); err != nil {
		summary.warnf("service %q: create failed, billing line kept without service link: %v", c.ServiceName, err)
		return nil
	}
	caches.services.Add(svc.Name, svc)
	summary.ServicesCreated++
	summary.infof("service %q not found, created", c.ServiceName)
	return svc
}

// methodologyFromLabel maps the exported basis label back to a
// methodology; unrecognized labels default to ownership share.
func methodologyFromLabel(label string) types.Methodology {
	n := textnorm.Normalize(label)
	switch {
	case strings.Contains(n, "area"):
		return types.MethodologyArea
	case strings.Contains(n, "person"):
		return types.MethodologyPersonMonths
	case strings.Contains(n, "equal"):
		return types.MethodologyEqualSplit
	case strings.Contains(n, "fixed"):
		return types.MethodologyFixedPerUnit
	case strings.Contains(n, "meter"):
		return types.MethodologyMeterReading
	case strings.Contains(n, "formula"):
		return types.MethodologyCustomFormula
	case strings.Contains(n, "parameter"):
		return types.MethodologyUnitParameter
	case strings.Contains(n, "no billing"):
		return types.MethodologyNoBilling
	default:
		return types.MethodologyOwnershipShare
	}
}

// persistOwnership links the owner named on the INFO row to the unit
// unless an identical edge already exists.
func (r *Reconciler) persistOwnership(ctx context.Context, tx Repository, unit *types.Unit, snap *snapshot.UnitSnapshot, summary *Summary) {
	if snap.OwnerName == "" {
		return
	}

	owner, err := tx.FindOwnerByName(ctx, snap.OwnerName)
	if err != nil {
		summary.warnf("unit %q: owner lookup failed: %v", snap.Name, err)
		return
	}
	if owner == nil {
		owner = &types.Owner{
			ID:             uuid.New(),
			Name:           snap.OwnerName,
			Email:          snap.Email,
			BankAccount:    snap.BankAccount,
			VariableSymbol: snap.VariableSymbol,
		}
		if err := tx.CreateOwner(ctx, owner); err != nil {
			summary.warnf("unit %q: create owner %q failed: %v", snap.Name, snap.OwnerName, err)
			return
		}
		summary.infof("owner %q not found, created", snap.OwnerName)
	}

	linked, err := tx.OwnershipExists(ctx, owner.ID, unit.ID)
	if err != nil {
		summary.warnf("unit %q: ownership lookup failed: %v", snap.Name, err)
		return
	}
	if linked {
		return
	}
	edge := &types.Ownership{ID: uuid.New(), OwnerID: owner.ID, UnitID: unit.ID}
	if err := tx.CreateOwnership(ctx, edge); err != nil {
		summary.warnf("unit %q: create ownership failed: %v", snap.Name, err)
	}
}

