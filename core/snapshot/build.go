package snapshot

import (
	"github.com/google/uuid"

	"building-cost/core/types"
)

// FromBilling projects persisted billing data into the snapshot shape so
// it can be serialized back to the wire table. Owner detail rows are
// included for units whose owner is known, keyed by unit ID.
func FromBilling(building *types.Building, units []types.Unit, owners map[uuid.UUID]*types.Owner, results []types.BillingResult) *Parsed {
	parsed := &Parsed{}
	if building != nil {
		parsed.Building = &BuildingInfo{
			Name:        building.Name,
			Address:     buildingAddress(building),
			BankAccount: building.BankAccount,
		}
	}

	byUnit := make(map[uuid.UUID]*types.BillingResult, len(results))
	for i := range results {
		byUnit[results[i].UnitID] = &results[i]
	}

	for _, u := range units {
		res := byUnit[u.ID]
		if res == nil {
			continue
		}
		snap := &UnitSnapshot{Name: u.Name}
		if owner := owners[u.ID]; owner != nil {
			snap.OwnerName = owner.Name
			snap.Email = owner.Email
			snap.BankAccount = owner.BankAccount
			snap.VariableSymbol = owner.VariableSymbol
		}

		balance := res.Balance
		snap.TotalResult = &balance

		for _, line := range res.Services {
			cost := &CostSnapshot{
				ServiceName:     line.ServiceName,
				BuildingTotal:   line.BuildingTotal,
				UnitCost:        line.UnitCost,
				UnitAdvance:     line.UnitAdvance,
				UnitBalance:     line.UnitBalance,
				ExplicitBalance: true,
				BasisLabel:      line.BasisLabel,
				BuildingUnits:   line.BuildingUnits,
				PricePerUnit:    line.PricePerUnit,
				UnitUnits:       line.UnitUnits,
				ShareText:       line.ShareText,
			}
			for _, r := range line.Readings {
				cost.Meters = append(cost.Meters, MeterSnapshot{
					ServiceName: line.ServiceName,
					Serial:      r.Serial,
					Start:       r.Start,
					End:         r.End,
					Consumption: r.Consumption,
				})
			}
			snap.Costs = append(snap.Costs, cost)
		}

		if !res.Paid.IsZero() {
			snap.PaidMonths = res.Paid[:]
		}
		if !res.Prescribed.IsZero() {
			snap.PrescribedMonths = res.Prescribed[:]
		}

		parsed.Units = append(parsed.Units, snap)
	}
	return parsed
}

func buildingAddress(b *types.Building) string {
	addr := b.Street
	if b.HouseNumber != "" {
		if addr != "" {
			addr += " "
		}
		addr += b.HouseNumber
	}
	if b.City != "" {
		if addr != "" {
			addr += ", "
		}
		addr += b.City
	}
	return addr
}
