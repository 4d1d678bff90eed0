// Package distribution computes each unit's share of a service's total
// cost under the configured methodology.
//
// Distribute is deterministic and side-effect free. Intermediate math is
// plain float currency; rounding happens only at presentation time.
// Zero denominators degrade to zero shares instead of faulting.
package distribution

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"building-cost/core/formula"
	"building-cost/core/types"
)

// UnitInput carries the per-unit attributes the engine consumes.
type UnitInput struct {
	// UnitID identifies the unit
	UnitID uuid.UUID

	// Name is the unit name, used in warnings and share texts
	Name string

	// ShareNumerator is the ownership-share numerator
	ShareNumerator float64

	// Area is the unit floor area
	Area float64

	// Residents is the resident count, or the period's person-month sum
	Residents float64

	// Parameters are named numeric attributes
	Parameters map[string]float64

	// Consumption is the unit's metered consumption for the service's
	// meter type
	Consumption float64

	// MeterCost is an externally allocated per-meter cost; when present
	// the meter-reading methodology uses it directly
	MeterCost *float64

	// Readings are the reading snapshots backing Consumption
	Readings []types.ReadingSnapshot
}

// Share is one unit's computed share of a service cost.
type Share struct {
	// UnitID identifies the unit
	UnitID uuid.UUID

	// UnitName is the unit name
	UnitName string

	// Amount is the allocated cost
	Amount float64

	// Failed marks a formula evaluation failure; Amount is not valid
	// and must not be mixed into totals
	Failed bool

	// BasisLabel describes the distribution basis
	BasisLabel string

	// BuildingUnits is the building-wide quantity divided by
	BuildingUnits float64

	// PricePerUnit is the configured or derived unit price
	PricePerUnit float64

	// UnitUnits is the unit's own quantity
	UnitUnits float64

	// ShareText is the human-readable share fraction
	ShareText string

	// Readings are the embedded reading snapshots
	Readings []types.ReadingSnapshot
}

// Distribute computes all unit shares for one service. Warnings report
// recoverable data problems (missing attributes, failed formulas); they
// never abort the computation.
func Distribute(svc types.Service, totalCost float64, units []UnitInput) ([]Share, []string) {
	switch svc.Methodology {
	case types.MethodologyOwnershipShare:
		return proportional(totalCost, units, "ownership share",
			func(u UnitInput) float64 { return u.ShareNumerator }), nil
	case types.MethodologyArea:
		return proportional(totalCost, units, "area",
			func(u UnitInput) float64 { return u.Area }), nil
	case types.MethodologyPersonMonths:
		return proportional(totalCost, units, "person-months",
			func(u UnitInput) float64 { return u.Residents }), nil
	case types.MethodologyEqualSplit:
		return equalSplit(svc, totalCost, units), nil
	case types.MethodologyFixedPerUnit:
		return fixedPerUnit(svc, totalCost, units), nil
	case types.MethodologyUnitParameter:
		return unitParameter(svc, totalCost, units)
	case types.MethodologyMeterReading:
		return meterReading(svc, totalCost, units)
	case types.MethodologyCustomFormula:
		return customFormula(svc, totalCost, units)
	case types.MethodologyNoBilling:
		return noBilling(units), nil
	default:
		return noBilling(units), []string{
			fmt.Sprintf("service %q: unknown methodology %q, no cost distributed", svc.Name, svc.Methodology),
		}
	}
}

// proportional allocates totalCost by quantity/Σquantity. A zero sum
// degrades every share to zero.
func proportional(totalCost float64, units []UnitInput, basis string, quantity func(UnitInput) float64) []Share {
	var sum float64
	for _, u := range units {
		sum += quantity(u)
	}

	shares := make([]Share, 0, len(units))
	for _, u := range units {
		q := quantity(u)
		var amount float64
		if sum != 0 {
			amount = totalCost * q / sum
		}
		shares = append(shares, Share{
			UnitID:        u.UnitID,
			UnitName:      u.Name,
			Amount:        amount,
			BasisLabel:    basis,
			BuildingUnits: sum,
			UnitUnits:     q,
			ShareText:     fraction(q, sum),
		})
	}
	return shares
}

// equalSplit divides totalCost by the configured divisor, defaulting to
// the unit count. A zero divisor yields zero shares.
func equalSplit(svc types.Service, totalCost float64, units []UnitInput) []Share {
	divisor := float64(len(units))
	if svc.Divisor != nil {
		divisor = *svc.Divisor
	}

	var amount float64
	if divisor != 0 {
		amount = totalCost / divisor
	}

	shares := make([]Share, 0, len(units))
	for _, u := range units {
		shares = append(shares, Share{
			UnitID:        u.UnitID,
			UnitName:      u.Name,
			Amount:        amount,
			BasisLabel:    "equal split",
			BuildingUnits: divisor,
			PricePerUnit:  amount,
			UnitUnits:     1,
			ShareText:     fraction(1, divisor),
		})
	}
	return shares
}

// fixedPerUnit charges the configured amount per unit, falling back to
// an equal split over the unit count when no amount is configured.
func fixedPerUnit(svc types.Service, totalCost float64, units []UnitInput) []Share {
	if svc.FixedAmount == nil {
		fallback := svc
		fallback.Divisor = nil
		return equalSplit(fallback, totalCost, units)
	}

	amount := *svc.FixedAmount
	shares := make([]Share, 0, len(units))
	for _, u := range units {
		shares = append(shares, Share{
			UnitID:       u.UnitID,
			UnitName:     u.Name,
			Amount:       amount,
			BasisLabel:   "fixed per unit",
			PricePerUnit: amount,
			UnitUnits:    1,
		})
	}
	return shares
}

// unitParameter allocates by a named numeric unit attribute. A unit
// missing the attribute contributes zero and is reported as a warning.
func unitParameter(svc types.Service, totalCost float64, units []UnitInput) ([]Share, []string) {
	var warnings []string
	key := svc.ParameterKey
	for _, u := range units {
		if _, ok := u.Parameters[key]; !ok {
			warnings = append(warnings,
				fmt.Sprintf("unit %q has no parameter %q for service %q, contributes 0", u.Name, key, svc.Name))
		}
	}
	shares := proportional(totalCost, units, "parameter "+key,
		func(u UnitInput) float64 { return u.Parameters[key] })
	return shares, warnings
}

// meterReading prices consumption. With a precomputed per-meter cost the
// unit cost is taken directly; otherwise consumption is priced at the
// configured price per unit, or at totalCost/Σconsumption when no price
// is configured.
func meterReading(svc types.Service, totalCost float64, units []UnitInput) ([]Share, []string) {
	var warnings []string

	var totalConsumption float64
	precomputed := false
	for _, u := range units {
		totalConsumption += u.Consumption
		if u.MeterCost != nil {
			precomputed = true
		}
	}

	if precomputed {
		shares := make([]Share, 0, len(units))
		for _, u := range units {
			var amount float64
			if u.MeterCost != nil {
				amount = *u.MeterCost
			} else if u.Consumption > 0 {
				warnings = append(warnings,
					fmt.Sprintf("unit %q has consumption but no precomputed meter cost for service %q", u.Name, svc.Name))
			}
			shares = append(shares, Share{
				UnitID:        u.UnitID,
				UnitName:      u.Name,
				Amount:        amount,
				BasisLabel:    "meter reading (precomputed)",
				BuildingUnits: totalConsumption,
				UnitUnits:     u.Consumption,
				Readings:      u.Readings,
			})
		}
		return shares, warnings
	}

	var pricePerUnit float64
	switch {
	case svc.PricePerUnit != nil:
		pricePerUnit = *svc.PricePerUnit
	case totalConsumption != 0:
		pricePerUnit = totalCost / totalConsumption
	}

	shares := make([]Share, 0, len(units))
	for _, u := range units {
		shares = append(shares, Share{
			UnitID:        u.UnitID,
			UnitName:      u.Name,
			Amount:        u.Consumption * pricePerUnit,
			BasisLabel:    "meter reading",
			BuildingUnits: totalConsumption,
			PricePerUnit:  pricePerUnit,
			UnitUnits:     u.Consumption,
			ShareText:     fraction(u.Consumption, totalConsumption),
			Readings:      u.Readings,
		})
	}
	return shares, warnings
}

// customFormula evaluates the service formula per unit. Failures are
// marked on the share, never silently zeroed.
func customFormula(svc types.Service, totalCost float64, units []UnitInput) ([]Share, []string) {
	var warnings []string

	node, err := formula.Parse(svc.FormulaText)
	if err != nil {
		warnings = append(warnings,
			fmt.Sprintf("service %q: formula parse failed: %v", svc.Name, err))
		shares := make([]Share, 0, len(units))
		for _, u := range units {
			shares = append(shares, Share{UnitID: u.UnitID, UnitName: u.Name, Failed: true, BasisLabel: "formula"})
		}
		return shares, warnings
	}

	var totalConsumption, totalArea, totalResidents, totalNumerators float64
	for _, u := range units {
		totalConsumption += u.Consumption
		totalArea += u.Area
		totalResidents += u.Residents
		totalNumerators += u.ShareNumerator
	}

	shares := make([]Share, 0, len(units))
	for _, u := range units {
		var ownShare float64
		if totalNumerators != 0 {
			ownShare = u.ShareNumerator / totalNumerators
		}
		vars := map[string]float64{
			formula.VarTotalCost:        totalCost,
			formula.VarTotalConsumption: totalConsumption,
			formula.VarUnitConsumption:  u.Consumption,
			formula.VarOwnShare:         ownShare,
			formula.VarUnitArea:         u.Area,
			formula.VarTotalArea:        totalArea,
			formula.VarUnitResidents:    u.Residents,
			formula.VarTotalResidents:   totalResidents,
		}

		amount, err := node.Eval(vars)
		if err != nil {
			warnings = append(warnings,
				fmt.Sprintf("service %q, unit %q: formula evaluation failed: %v", svc.Name, u.Name, err))
			shares = append(shares, Share{UnitID: u.UnitID, UnitName: u.Name, Failed: true, BasisLabel: "formula"})
			continue
		}
		shares = append(shares, Share{
			UnitID:     u.UnitID,
			UnitName:   u.Name,
			Amount:     amount,
			BasisLabel: "formula",
		})
	}
	return shares, warnings
}

// noBilling yields zero for every unit.
func noBilling(units []UnitInput) []Share {
	shares := make([]Share, 0, len(units))
	for _, u := range units {
		shares = append(shares, Share{
			UnitID:     u.UnitID,
			UnitName:   u.Name,
			BasisLabel: "no billing",
		})
	}
	return shares
}

// fraction renders "q / sum" share texts.
func fraction(q, sum float64) string {
	if sum == 0 {
		return ""
	}
	return strconv.FormatFloat(q, 'f', -1, 64) + "/" + strconv.FormatFloat(sum, 'f', -1, 64)
}
