package snapshot

import (
	"strings"
	"testing"

	"building-cost/internal/errors"
)

func costRow(unit, service string, vals ...string) Row {
	row := Row{UnitName: unit, DataType: DataCost, Key: service}
	copy(row.Vals[:], vals)
	return row
}

func meterRow(unit, service, serial, start, end, consumption string) Row {
	row := Row{UnitName: unit, DataType: DataMeter, Key: service}
	row.Vals[0] = serial
	row.Vals[1] = start
	row.Vals[2] = end
	row.Vals[3] = consumption
	return row
}

func TestParseEmptySourceFails(t *testing.T) {
	_, err := Parse(nil)
	if err == nil {
		t.Fatal("expected structural error for empty source")
	}
	if !errors.IsType(err, errors.TypeParsing) {
		t.Errorf("expected parsing error, got %v", err)
	}
}

func TestParseGroupsRowsByUnit(t *testing.T) {
	rows := []Row{
		costRow("Unit 1", "Heating", "10 000", "3 000", "3 600", "600"),
		costRow("Unit 2", "Heating", "10 000", "7 000", "8 400", "1 400"),
		costRow("Unit 1", "Cold water", "2 000", "500", "480", "-20"),
	}
	p, err := Parse(rows)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(p.Units))
	}
	if p.Units[0].Name != "Unit 1" || len(p.Units[0].Costs) != 2 {
		t.Errorf("unit grouping wrong: %+v", p.Units[0])
	}
	c := p.Units[0].Costs[0]
	if c.BuildingTotal != 10000 || c.UnitCost != 3000 || c.UnitAdvance != 3600 || c.UnitBalance != 600 {
		t.Errorf("cost values wrong: %+v", c)
	}
	if !c.ExplicitBalance {
		t.Error("balance was supplied, ExplicitBalance should be true")
	}
}

func TestParseBuildingInfoRow(t *testing.T) {
	rows := []Row{
		{UnitName: BuildingUnitName, DataType: DataBuildingInfo, Key: KeyBuildingBankAccount,
			Vals: [ValueSlots]string{"123-456/0100", "Main street 7", "House A"}},
		costRow("Unit 1", "Heating", "", "100"),
	}
	p, err := Parse(rows)
	if err != nil {
		t.Fatal(err)
	}
	if p.Building == nil {
		t.Fatal("building info missing")
	}
	if p.Building.BankAccount != "123-456/0100" || p.Building.Address != "Main street 7" || p.Building.Name != "House A" {
		t.Errorf("building info wrong: %+v", p.Building)
	}
	if len(p.Units) != 1 {
		t.Errorf("building row must not become a unit, got %d units", len(p.Units))
	}
}

func TestParseInfoRow(t *testing.T) {
	row := Row{UnitName: "Unit 1", DataType: DataInfo, Key: KeyDetail}
	row.Vals[0] = "Novák Jan"
	row.Vals[1] = "123456"
	row.Vals[2] = "jan@example.com"
	row.Vals[3] = "-640,25"
	row.Vals[4] = "987-654/0300"
	row.Vals[5] = "paid in cash"

	p, err := Parse([]Row{row})
	if err != nil {
		t.Fatal(err)
	}
	u := p.Units[0]
	if u.OwnerName != "Novák Jan" || u.VariableSymbol != "123456" || u.Email != "jan@example.com" {
		t.Errorf("info fields wrong: %+v", u)
	}
	if u.TotalResult == nil || *u.TotalResult != -640.25 {
		t.Errorf("total result wrong: %v", u.TotalResult)
	}
	if u.BankAccount != "987-654/0300" || u.Note != "paid in cash" {
		t.Errorf("info tail fields wrong: %+v", u)
	}
}

func TestParseSentinelsNormalize(t *testing.T) {
	row := Row{UnitName: "Unit 1", DataType: DataInfo, Key: KeyDetail}
	row.Vals[0] = "#N/A"
	row.Vals[3] = "not available"

	p, err := Parse([]Row{row})
	if err != nil {
		t.Fatal(err)
	}
	u := p.Units[0]
	if u.OwnerName != "" {
		t.Errorf("sentinel owner name must normalize to empty, got %q", u.OwnerName)
	}
	if u.TotalResult != nil {
		t.Errorf("sentinel total result must stay absent, got %v", *u.TotalResult)
	}
}

func TestParseRejectsPseudoServices(t *testing.T) {
	rows := []Row{
		costRow("Unit 1", "Heating", "", "100"),
		costRow("Unit 1", "Total", "", "9 999"),
		costRow("Unit 1", "1 234,56 Kč", "", "50"),
		costRow("Unit 1", "842", "", "50"),
		costRow("Unit 1", "#VALUE!", "", "50"),
	}
	p, err := Parse(rows)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Units[0].Costs) != 1 {
		t.Fatalf("expected only Heating to survive, got %d costs", len(p.Units[0].Costs))
	}
	if len(p.Warnings) != 4 {
		t.Errorf("expected 4 warnings, got %d: %v", len(p.Warnings), p.Warnings)
	}
}

func TestParseUnparsableNumbersDefaultToZero(t *testing.T) {
	rows := []Row{costRow("Unit 1", "Heating", "garbage", "abc", "", "xx")}
	p, err := Parse(rows)
	if err != nil {
		t.Fatal(err)
	}
	c := p.Units[0].Costs[0]
	if c.BuildingTotal != 0 || c.UnitCost != 0 || c.UnitAdvance != 0 || c.UnitBalance != 0 {
		t.Errorf("unparsable numerics must default to zero: %+v", c)
	}
	if c.ExplicitBalance {
		t.Error("unparsable balance must not count as explicit")
	}
}

func TestParseMeterAssociation(t *testing.T) {
	rows := []Row{
		costRow("Unit 1", "Cold water", "", "500"),
		costRow("Unit 1", "Hot water", "", "700"),
		meterRow("Unit 1", "cold water", "CW-01", "100", "132,5", "32,5"),
		meterRow("Unit 1", "Hot", "HW-01", "50", "80", ""),
		meterRow("Unit 1", "Gas", "G-01", "0", "10", "10"),
	}
	p, err := Parse(rows)
	if err != nil {
		t.Fatal(err)
	}
	u := p.Units[0]

	cold := u.Costs[0]
	if len(cold.Meters) != 1 || cold.Meters[0].Serial != "CW-01" {
		t.Errorf("cold water meter not attached: %+v", cold.Meters)
	}
	if cold.Meters[0].Consumption != 32.5 {
		t.Errorf("consumption = %v, want 32.5", cold.Meters[0].Consumption)
	}

	hot := u.Costs[1]
	if len(hot.Meters) != 1 || hot.Meters[0].Serial != "HW-01" {
		t.Errorf("hot water meter not attached: %+v", hot.Meters)
	}
	// Consumption column was empty, derived from end - start.
	if hot.Meters[0].Consumption != 30 {
		t.Errorf("derived consumption = %v, want 30", hot.Meters[0].Consumption)
	}

	if len(u.LooseMeters) != 1 || u.LooseMeters[0].Serial != "G-01" {
		t.Errorf("gas meter should be retained unattached: %+v", u.LooseMeters)
	}
	found := false
	for _, w := range p.Warnings {
		if strings.Contains(w, "G-01") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a warning for the unattached meter, got %v", p.Warnings)
	}
}

func TestParseMeterPrefersMostSpecificService(t *testing.T) {
	rows := []Row{
		costRow("Unit 1", "Water", "", "100"),
		costRow("Unit 1", "Cold water", "", "200"),
		meterRow("Unit 1", "cold water", "CW-01", "0", "10", "10"),
	}
	p, err := Parse(rows)
	if err != nil {
		t.Fatal(err)
	}
	u := p.Units[0]
	if len(u.Costs[1].Meters) != 1 {
		t.Errorf("meter should attach to the longer 'Cold water' line: %+v", u)
	}
	if len(u.Costs[0].Meters) != 0 {
		t.Errorf("meter must not attach to the generic 'Water' line")
	}
}

func TestParseMonthlyRows(t *testing.T) {
	row := Row{UnitName: "Unit 1", DataType: DataAdvanceMonthly, Key: "Advances"}
	for i := 0; i < 12; i++ {
		row.Vals[i] = "100"
	}
	paid := Row{UnitName: "Unit 1", DataType: DataPaymentMonthly, Key: "Payments"}
	paid.Vals[0] = "1 200"

	p, err := Parse([]Row{row, paid})
	if err != nil {
		t.Fatal(err)
	}
	u := p.Units[0]
	if len(u.PrescribedMonths) != 12 || u.PrescribedMonths[11] != 100 {
		t.Errorf("prescribed months wrong: %v", u.PrescribedMonths)
	}
	if u.PaidMonths[0] != 1200 || u.PaidMonths[1] != 0 {
		t.Errorf("paid months wrong: %v", u.PaidMonths)
	}
}

func TestParseFixedPayments(t *testing.T) {
	row := Row{UnitName: "Unit 1", DataType: DataFixedPayment, Key: "Repair fund"}
	row.Vals[0] = "250"
	p, err := Parse([]Row{row})
	if err != nil {
		t.Fatal(err)
	}
	fp := p.Units[0].FixedPayments
	if len(fp) != 1 || fp[0].Name != "Repair fund" || fp[0].Amount != 250 {
		t.Errorf("fixed payment wrong: %+v", fp)
	}
}

func TestParseMalformedRowsAccumulateWarnings(t *testing.T) {
	rows := []Row{
		{UnitName: "", DataType: DataCost, Key: "Heating"},
		{UnitName: "Unit 1", DataType: DataType("BOGUS"), Key: "x"},
		costRow("Unit 1", "Heating", "", "100"),
	}
	p, err := Parse(rows)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Warnings) != 2 {
		t.Errorf("expected 2 warnings, got %v", p.Warnings)
	}
	if len(p.Units) != 1 || len(p.Units[0].Costs) != 1 {
		t.Errorf("good row must survive malformed neighbors: %+v", p.Units)
	}
}

func TestDerivedTotals(t *testing.T) {
	u := &UnitSnapshot{
		Costs: []*CostSnapshot{
			{ServiceName: "A", UnitCost: 300, UnitAdvance: 350},
			{ServiceName: "B", UnitCost: 200, UnitAdvance: 150},
		},
	}
	if got := u.TotalCost(); got != 500 {
		t.Errorf("TotalCost = %v, want 500", got)
	}
	if got := u.TotalAdvance(); got != 500 {
		t.Errorf("TotalAdvance = %v, want 500", got)
	}
}
