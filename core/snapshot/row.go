// Package snapshot models the canonical tabular wire format used to
// round-trip billing data between the spreadsheet authoring tool and the
// system of record.
package snapshot

// DataType discriminates wire rows.
type DataType string

const (
	// DataInfo carries owner/contact detail for a unit
	DataInfo DataType = "INFO"

	// DataCost carries one service cost line for a unit
	DataCost DataType = "COST"

	// DataMeter carries one meter reading for a unit
	DataMeter DataType = "METER"

	// DataPaymentMonthly carries the unit's 12 paid months
	DataPaymentMonthly DataType = "PAYMENT_MONTHLY"

	// DataAdvanceMonthly carries the unit's 12 prescribed months
	DataAdvanceMonthly DataType = "ADVANCE_MONTHLY"

	// DataFixedPayment carries a named fixed payment for a unit
	DataFixedPayment DataType = "FIXED_PAYMENT"

	// DataBuildingInfo carries the single building-scoped row
	DataBuildingInfo DataType = "BUILDING_INFO"
)

// String returns the string representation
func (d DataType) String() string {
	return string(d)
}

// Known reports whether d is one of the wire data types.
func (d DataType) Known() bool {
	switch d {
	case DataInfo, DataCost, DataMeter, DataPaymentMonthly,
		DataAdvanceMonthly, DataFixedPayment, DataBuildingInfo:
		return true
	}
	return false
}

// BuildingUnitName is the reserved unit name of the building-scoped row.
const BuildingUnitName = "__BUILDING__"

// ValueSlots is the number of generic value columns per row.
const ValueSlots = 13

// KeyDetail is the Key of INFO rows.
const KeyDetail = "Detail"

// KeyBuildingBankAccount is the Key of BUILDING_INFO rows.
const KeyBuildingBankAccount = "BuildingBankAccount"

// Row is one line of the wire table.
type Row struct {
	// UnitName groups rows per unit; BuildingUnitName scopes a row to
	// the building
	UnitName string

	// DataType discriminates the row
	DataType DataType

	// Key is the row key (service name, detail tag, payment name)
	Key string

	// Vals are the 13 generic value slots; semantics depend on DataType
	Vals [ValueSlots]string

	// SourceRow is an optional provenance tag from the original sheet
	SourceRow string
}

// Columns are the canonical column names, in wire order.
var Columns = []string{
	"UnitName", "DataType", "Key",
	"Val1", "Val2", "Val3", "Val4", "Val5", "Val6", "Val7",
	"Val8", "Val9", "Val10", "Val11", "Val12", "Val13",
	"SourceRow",
}
