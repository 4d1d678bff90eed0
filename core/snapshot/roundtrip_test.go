package snapshot

import (
	"reflect"
	"testing"
)

// A produced export must survive parse -> serialize unchanged in every
// DataType/Key/Val slot.
func TestRoundTrip(t *testing.T) {
	source := []Row{
		{UnitName: BuildingUnitName, DataType: DataBuildingInfo, Key: KeyBuildingBankAccount,
			Vals: [ValueSlots]string{"111-222/0100", "Main street 7", "House A"}},
		func() Row {
			r := Row{UnitName: "Unit 1", DataType: DataInfo, Key: KeyDetail}
			r.Vals[0] = "Novák Jan"
			r.Vals[1] = "123456"
			r.Vals[2] = "jan@example.com"
			r.Vals[3] = "-640,25"
			r.Vals[4] = "987-654/0300"
			r.Vals[5] = "note"
			return r
		}(),
		costRow("Unit 1", "Heating", "10 000", "3 000", "3 600", "600", "area", "100", "100", "30", "30/100"),
		meterRow("Unit 1", "Heating", "H-01", "10", "42,5", "32,5"),
		costRow("Unit 1", "Cold water", "2 000", "500", "480", "-20", "meter reading", "80", "25", "20", "20/80"),
		func() Row {
			r := Row{UnitName: "Unit 1", DataType: DataAdvanceMonthly, Key: "Advances"}
			r.Vals[0] = "300"
			r.Vals[5] = "300"
			r.Vals[11] = "300"
			return r
		}(),
		func() Row {
			r := Row{UnitName: "Unit 1", DataType: DataPaymentMonthly, Key: "Payments"}
			r.Vals[0] = "1 200"
			return r
		}(),
		func() Row {
			r := Row{UnitName: "Unit 1", DataType: DataFixedPayment, Key: "Repair fund"}
			r.Vals[0] = "250"
			return r
		}(),
	}

	first, err := Parse(source)
	if err != nil {
		t.Fatal(err)
	}
	if len(first.Warnings) != 0 {
		t.Fatalf("clean source produced warnings: %v", first.Warnings)
	}

	exported := Serialize(first)

	second, err := Parse(exported)
	if err != nil {
		t.Fatal(err)
	}
	reexported := Serialize(second)

	if len(exported) != len(reexported) {
		t.Fatalf("row count changed: %d vs %d", len(exported), len(reexported))
	}
	for i := range exported {
		if !reflect.DeepEqual(exported[i], reexported[i]) {
			t.Errorf("row %d changed:\n  first:  %+v\n  second: %+v", i, exported[i], reexported[i])
		}
	}
}
