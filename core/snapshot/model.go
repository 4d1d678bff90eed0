package snapshot

// Parsed is the typed result of parsing a wire table.
type Parsed struct {
	// Units are the per-unit snapshots, in order of first appearance
	Units []*UnitSnapshot

	// Building is the building-scoped row, when present
	Building *BuildingInfo

	// Warnings are accumulated row-level problems; parsing never fails
	// on a single malformed row
	Warnings []string
}

// BuildingInfo is the building-scoped snapshot data.
type BuildingInfo struct {
	// BankAccount is the building's bank account
	BankAccount string

	// Address is the building address
	Address string

	// Name is the building name
	Name string
}

// UnitSnapshot is all snapshot data for one unit.
type UnitSnapshot struct {
	// Name is the unit name as exported
	Name string

	// OwnerName is the owner's name from the INFO row
	OwnerName string

	// VariableSymbol is the payment matching symbol
	VariableSymbol string

	// Email is the owner's email
	Email string

	// TotalResult is the explicit overall result (advance - cost);
	// nil when the snapshot supplied none
	TotalResult *float64

	// BankAccount is the owner's bank account
	BankAccount string

	// Note is free-form text
	Note string

	// Costs are the unit's service cost lines
	Costs []*CostSnapshot

	// LooseMeters are meter rows that matched no cost line; retained
	// with a warning, never dropped
	LooseMeters []MeterSnapshot

	// PaidMonths are the 12 paid amounts from PAYMENT_MONTHLY
	PaidMonths []float64

	// PaidLabel is the PAYMENT_MONTHLY row key
	PaidLabel string

	// PrescribedMonths are the 12 prescribed amounts from ADVANCE_MONTHLY
	PrescribedMonths []float64

	// PrescribedLabel is the ADVANCE_MONTHLY row key
	PrescribedLabel string

	// FixedPayments are named fixed payments
	FixedPayments []FixedPayment
}

// CostSnapshot is one service cost line.
type CostSnapshot struct {
	// ServiceName is the service name as exported
	ServiceName string

	// BuildingTotal is the building-level total cost
	BuildingTotal float64

	// UnitCost is the unit's allocated cost
	UnitCost float64

	// UnitAdvance is the unit's prescribed advance
	UnitAdvance float64

	// UnitBalance is the unit's balance
	UnitBalance float64

	// ExplicitBalance marks that the snapshot supplied the balance,
	// which then stays authoritative over advance - cost
	ExplicitBalance bool

	// BasisLabel is the distribution basis/methodology label
	BasisLabel string

	// BuildingUnits is the building-wide quantity
	BuildingUnits float64

	// PricePerUnit is the unit price
	PricePerUnit float64

	// UnitUnits is this unit's quantity
	UnitUnits float64

	// ShareText is the distribution share text
	ShareText string

	// Meters are the readings matched to this cost line
	Meters []MeterSnapshot
}

// MeterSnapshot is one meter reading row.
type MeterSnapshot struct {
	// ServiceName is the service the reading was exported under
	ServiceName string

	// Serial is the meter serial number
	Serial string

	// Start is the start reading
	Start float64

	// End is the end reading
	End float64

	// Consumption is the consumption; derived from End - Start when the
	// source omitted it
	Consumption float64
}

// FixedPayment is a named fixed payment row.
type FixedPayment struct {
	// Name is the payment name
	Name string

	// Amount is the payment amount
	Amount float64
}

// TotalCost sums the per-service unit costs.
func (u *UnitSnapshot) TotalCost() float64 {
	var sum float64
	for _, c := range u.Costs {
		sum += c.UnitCost
	}
	return sum
}

// TotalAdvance sums the per-service unit advances.
func (u *UnitSnapshot) TotalAdvance() float64 {
	var sum float64
	for _, c := range u.Costs {
		sum += c.UnitAdvance
	}
	return sum
}
