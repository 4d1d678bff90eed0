// Package types defines the billing domain model.
package types

import (
	"time"

	"github.com/google/uuid"
)

// Methodology is the strategy by which a service's total cost is divided
// among units.
type Methodology string

const (
	// MethodologyOwnershipShare divides by ownership-share numerators
	MethodologyOwnershipShare Methodology = "ownership_share"

	// MethodologyArea divides by unit floor area
	MethodologyArea Methodology = "area"

	// MethodologyEqualSplit divides the total by a divisor (unit count by default)
	MethodologyEqualSplit Methodology = "equal_split"

	// MethodologyFixedPerUnit charges a configured fixed amount per unit
	MethodologyFixedPerUnit Methodology = "fixed_per_unit"

	// MethodologyPersonMonths divides by resident counts or person-month sums
	MethodologyPersonMonths Methodology = "person_months"

	// MethodologyUnitParameter divides by a named numeric unit attribute
	MethodologyUnitParameter Methodology = "unit_parameter"

	// MethodologyMeterReading charges by metered consumption
	MethodologyMeterReading Methodology = "meter_reading"

	// MethodologyCustomFormula evaluates a user-authored arithmetic formula
	MethodologyCustomFormula Methodology = "custom_formula"

	// MethodologyNoBilling marks a service as informational only
	MethodologyNoBilling Methodology = "no_billing"
)

// String returns the string representation
func (m Methodology) String() string {
	return string(m)
}

// MeterType identifies what a meter measures.
type MeterType string

const (
	MeterColdWater   MeterType = "cold_water"
	MeterHotWater    MeterType = "hot_water"
	MeterHeating     MeterType = "heating"
	MeterElectricity MeterType = "electricity"
	MeterGas         MeterType = "gas"
	MeterOther       MeterType = "other"
)

// String returns the string representation
func (t MeterType) String() string {
	return string(t)
}

// Building is the root entity costs are recorded against.
type Building struct {
	// ID uniquely identifies the building
	ID uuid.UUID `json:"id"`

	// Name is the display name
	Name string `json:"name"`

	// Street is the street part of the address
	Street string `json:"street"`

	// HouseNumber is the building-number token of the address
	HouseNumber string `json:"house_number"`

	// City is the city part of the address
	City string `json:"city"`

	// BankAccount is the account statements are paid into
	BankAccount string `json:"bank_account,omitempty"`
}

// Unit is a billable premises inside a building.
type Unit struct {
	// ID uniquely identifies the unit
	ID uuid.UUID `json:"id"`

	// BuildingID is the owning building
	BuildingID uuid.UUID `json:"building_id"`

	// Name is the unit designation (e.g. apartment number)
	Name string `json:"name"`

	// ShareNumerator is the ownership-share numerator
	ShareNumerator float64 `json:"share_numerator"`

	// ShareDenominator is the ownership-share denominator
	ShareDenominator float64 `json:"share_denominator"`

	// Area is the total floor area
	Area float64 `json:"area"`

	// Residents is the point-in-time resident count
	Residents int `json:"residents"`

	// Parameters maps named numeric attributes used by the
	// unit-parameter methodology
	Parameters map[string]float64 `json:"parameters,omitempty"`

	// Meters are the unit's meters
	Meters []Meter `json:"meters,omitempty"`
}

// Meter belongs to a unit and accumulates dated readings.
type Meter struct {
	// ID uniquely identifies the meter
	ID uuid.UUID `json:"id"`

	// UnitID is the owning unit
	UnitID uuid.UUID `json:"unit_id"`

	// Type is what the meter measures
	Type MeterType `json:"type"`

	// Serial is the meter serial number
	Serial string `json:"serial"`

	// PrecomputedCost is an externally supplied per-meter cost figure.
	// When set, meter-reading distribution uses it directly instead of
	// proportional computation.
	PrecomputedCost *float64 `json:"precomputed_cost,omitempty"`

	// Readings are the dated readings
	Readings []MeterReading `json:"readings,omitempty"`
}

// MeterReading is one dated start/end reading pair.
type MeterReading struct {
	// ID uniquely identifies the reading
	ID uuid.UUID `json:"id"`

	// MeterID is the owning meter
	MeterID uuid.UUID `json:"meter_id"`

	// Date is when the reading was taken
	Date time.Time `json:"date"`

	// Start is the reading at the beginning of the period
	Start float64 `json:"start"`

	// End is the reading at the end of the period
	End float64 `json:"end"`

	// Consumption is an explicit consumption figure; when nil it is
	// derived from End - Start
	Consumption *float64 `json:"consumption,omitempty"`
}

// ConsumptionValue returns the explicit consumption when present,
// otherwise End - Start clamped at zero.
func (r MeterReading) ConsumptionValue() float64 {
	if r.Consumption != nil {
		return *r.Consumption
	}
	c := r.End - r.Start
	if c < 0 {
		return 0
	}
	return c
}

// Service is a billable category within a building.
type Service struct {
	// ID uniquely identifies the service
	ID uuid.UUID `json:"id"`

	// BuildingID is the owning building
	BuildingID uuid.UUID `json:"building_id"`

	// Name is the display name
	Name string `json:"name"`

	// Code is a short configuration code
	Code string `json:"code,omitempty"`

	// UnitOfMeasure is the billing unit (e.g. "m3", "kWh", "person-month")
	UnitOfMeasure string `json:"unit_of_measure,omitempty"`

	// Methodology selects the distribution strategy
	Methodology Methodology `json:"methodology"`

	// FixedAmount is the per-unit amount for fixed-per-unit
	FixedAmount *float64 `json:"fixed_amount,omitempty"`

	// Divisor overrides the unit count for equal-split
	Divisor *float64 `json:"divisor,omitempty"`

	// PricePerUnit overrides the computed unit price for meter-reading
	PricePerUnit *float64 `json:"price_per_unit,omitempty"`

	// ParameterKey names the unit attribute for unit-parameter
	ParameterKey string `json:"parameter_key,omitempty"`

	// FormulaText is the custom-formula expression
	FormulaText string `json:"formula_text,omitempty"`

	// MeterType selects which meters feed meter-reading distribution
	MeterType MeterType `json:"meter_type,omitempty"`
}

// Cost is a recorded expense for a service within a period.
type Cost struct {
	// ID uniquely identifies the cost
	ID uuid.UUID `json:"id"`

	// ServiceID is the billed service
	ServiceID uuid.UUID `json:"service_id"`

	// PeriodID is the billing period
	PeriodID uuid.UUID `json:"period_id"`

	// Amount is the expense amount
	Amount float64 `json:"amount"`

	// Description is free-form context
	Description string `json:"description,omitempty"`

	// Date is when the expense occurred
	Date time.Time `json:"date"`
}

// BillingPeriod is one billing year for a building.
type BillingPeriod struct {
	// ID uniquely identifies the period
	ID uuid.UUID `json:"id"`

	// BuildingID is the owning building
	BuildingID uuid.UUID `json:"building_id"`

	// Year is the billing year
	Year int `json:"year"`

	// Name is the display name (e.g. "2024")
	Name string `json:"name"`
}

// Owner identifies a person or company owning one or more units.
type Owner struct {
	// ID uniquely identifies the owner
	ID uuid.UUID `json:"id"`

	// Name is the owner's display name
	Name string `json:"name"`

	// Email is the contact email
	Email string `json:"email,omitempty"`

	// BankAccount is the refund account
	BankAccount string `json:"bank_account,omitempty"`

	// VariableSymbol is the payment matching symbol
	VariableSymbol string `json:"variable_symbol,omitempty"`
}

// Ownership links an owner to a unit.
type Ownership struct {
	// ID uniquely identifies the edge
	ID uuid.UUID `json:"id"`

	// OwnerID is the owner
	OwnerID uuid.UUID `json:"owner_id"`

	// UnitID is the owned unit
	UnitID uuid.UUID `json:"unit_id"`
}

// AdvanceMonthly is a raw prescribed advance for one unit/service/month.
type AdvanceMonthly struct {
	// ID uniquely identifies the record
	ID uuid.UUID `json:"id"`

	// UnitID is the billed unit
	UnitID uuid.UUID `json:"unit_id"`

	// ServiceID is the billed service; nil for unit-level advances
	ServiceID *uuid.UUID `json:"service_id,omitempty"`

	// PeriodID is the billing period
	PeriodID uuid.UUID `json:"period_id"`

	// Month is the calendar month, 1-12
	Month int `json:"month"`

	// Amount is the prescribed amount
	Amount float64 `json:"amount"`
}

// Payment is a raw paid amount for one unit within a period.
type Payment struct {
	// ID uniquely identifies the payment
	ID uuid.UUID `json:"id"`

	// UnitID is the paying unit
	UnitID uuid.UUID `json:"unit_id"`

	// PeriodID is the billing period
	PeriodID uuid.UUID `json:"period_id"`

	// Date is the payment date; its calendar month buckets the payment
	Date time.Time `json:"date"`

	// Amount is the paid amount
	Amount float64 `json:"amount"`
}

// PersonMonth is a per-month resident count for a unit.
type PersonMonth struct {
	// ID uniquely identifies the record
	ID uuid.UUID `json:"id"`

	// UnitID is the counted unit
	UnitID uuid.UUID `json:"unit_id"`

	// PeriodID is the billing period
	PeriodID uuid.UUID `json:"period_id"`

	// Month is the calendar month, 1-12
	Month int `json:"month"`

	// Count is the resident count for the month
	Count int `json:"count"`
}
