// Package types - computed billing outcome types
package types

import "github.com/google/uuid"

// MonthCount is the fixed length of monthly billing arrays.
const MonthCount = 12

// Months is a 12-element monthly amount array, January first.
type Months [MonthCount]float64

// Sum returns the total across all months.
func (m Months) Sum() float64 {
	var total float64
	for _, v := range m {
		total += v
	}
	return total
}

// IsZero reports whether every month is zero.
func (m Months) IsZero() bool {
	for _, v := range m {
		if v != 0 {
			return false
		}
	}
	return true
}

// PadMonths right-pads a raw array to 12 elements. Inputs longer than 12
// keep their first 12 elements untouched; arrays are never truncated by
// the callers, so the cap is a safety bound only.
func PadMonths(raw []float64) Months {
	var m Months
	for i := 0; i < len(raw) && i < MonthCount; i++ {
		m[i] = raw[i]
	}
	return m
}

// BillingResult is the computed outcome for one (period, unit) pair.
// It is created or overwritten wholesale each time a period is recomputed
// or reimported, never partially patched.
type BillingResult struct {
	// ID uniquely identifies the result
	ID uuid.UUID `json:"id"`

	// PeriodID is the billing period
	PeriodID uuid.UUID `json:"period_id"`

	// UnitID is the billed unit
	UnitID uuid.UUID `json:"unit_id"`

	// TotalCost is the unit's total allocated cost
	TotalCost float64 `json:"total_cost"`

	// TotalPrescribed is the unit's total prescribed advance
	TotalPrescribed float64 `json:"total_prescribed"`

	// TotalPaid is the unit's total paid advance
	TotalPaid float64 `json:"total_paid"`

	// Balance is advance minus cost; positive means overpayment
	Balance float64 `json:"balance"`

	// Prescribed are the monthly prescribed advances
	Prescribed Months `json:"prescribed"`

	// Paid are the monthly paid advances
	Paid Months `json:"paid"`

	// Services is the per-service breakdown
	Services []BillingServiceCost `json:"services,omitempty"`
}

// BillingServiceCost is the per-service breakdown line of a BillingResult.
type BillingServiceCost struct {
	// ID uniquely identifies the line
	ID uuid.UUID `json:"id"`

	// ResultID is the owning billing result
	ResultID uuid.UUID `json:"result_id"`

	// ServiceID is the billed service
	ServiceID uuid.UUID `json:"service_id"`

	// ServiceName is the service name at computation time
	ServiceName string `json:"service_name"`

	// BuildingTotal is the building-level total cost of the service
	BuildingTotal float64 `json:"building_total"`

	// UnitCost is the unit's allocated cost
	UnitCost float64 `json:"unit_cost"`

	// UnitAdvance is the unit's prescribed advance for the service
	UnitAdvance float64 `json:"unit_advance"`

	// UnitBalance is UnitAdvance - UnitCost unless the source snapshot
	// supplied an explicit balance
	UnitBalance float64 `json:"unit_balance"`

	// BasisLabel describes the distribution basis (methodology label)
	BasisLabel string `json:"basis_label,omitempty"`

	// BuildingUnits is the building-wide quantity the total was divided by
	BuildingUnits float64 `json:"building_units,omitempty"`

	// PricePerUnit is the derived or configured unit price
	PricePerUnit float64 `json:"price_per_unit,omitempty"`

	// UnitUnits is this unit's quantity
	UnitUnits float64 `json:"unit_units,omitempty"`

	// ShareText is the human-readable distribution share
	ShareText string `json:"share_text,omitempty"`

	// Readings are embedded meter-reading snapshots, if any
	Readings []ReadingSnapshot `json:"readings,omitempty"`
}

// ReadingSnapshot is a meter reading embedded on a billing line.
type ReadingSnapshot struct {
	// Serial is the meter serial number
	Serial string `json:"serial"`

	// Start is the start reading
	Start float64 `json:"start"`

	// End is the end reading
	End float64 `json:"end"`

	// Consumption is the consumption for the period
	Consumption float64 `json:"consumption"`
}
