package monthly

import (
	"testing"
	"time"

	"building-cost/core/types"
)

func TestBuildUsesStoredArrays(t *testing.T) {
	in := Inputs{
		Prescribed: []float64{100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100},
		Paid:       []float64{90, 90, 90, 90, 90, 90, 90, 90, 90, 90, 90, 90},
	}
	out := Build(in)
	if out.Prescribed[0] != 100 || out.Paid[0] != 90 {
		t.Errorf("stored arrays must win: %+v", out)
	}
}

func TestBuildPadsShortArrays(t *testing.T) {
	for _, n := range []int{0, 1, 5, 11, 12} {
		raw := make([]float64, n)
		for i := range raw {
			raw[i] = 50
		}
		out := Build(Inputs{Prescribed: raw, Paid: raw})
		if len(out.Prescribed) != types.MonthCount || len(out.Paid) != types.MonthCount {
			t.Fatalf("length %d: arrays must always have 12 elements", n)
		}
		for i := n; i < types.MonthCount; i++ {
			if out.Prescribed[i] != 0 {
				t.Errorf("length %d: month %d should be zero-padded", n, i)
			}
		}
	}
}

func TestBuildMirrorsPaidIntoPrescribed(t *testing.T) {
	in := Inputs{
		Prescribed: []float64{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		Paid:       []float64{0, 200, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
	}
	out := Build(in)
	if out.Prescribed != out.Paid {
		t.Errorf("prescribed should mirror paid: %v vs %v", out.Prescribed, out.Paid)
	}
	if out.Prescribed[1] != 200 {
		t.Errorf("mirrored value lost: %v", out.Prescribed)
	}
}

func TestBuildMirrorsPrescribedIntoPaid(t *testing.T) {
	in := Inputs{
		Prescribed: []float64{150},
	}
	out := Build(in)
	if out.Paid[0] != 150 {
		t.Errorf("paid should mirror prescribed: %v", out.Paid)
	}
}

func TestBuildAggregatesRawRecords(t *testing.T) {
	in := Inputs{
		Advances: []types.AdvanceMonthly{
			{Month: 1, Amount: 100},
			{Month: 1, Amount: 50},
			{Month: 12, Amount: 75},
			{Month: 13, Amount: 999}, // out of range, ignored
		},
		Payments: []types.Payment{
			{Date: time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), Amount: 300},
			{Date: time.Date(2024, time.March, 28, 0, 0, 0, 0, time.UTC), Amount: 100},
			{Amount: 500}, // zero date, ignored
		},
	}
	out := Build(in)
	if out.Prescribed[0] != 150 || out.Prescribed[11] != 75 {
		t.Errorf("advance aggregation wrong: %v", out.Prescribed)
	}
	if out.Paid[2] != 400 {
		t.Errorf("payment aggregation wrong: %v", out.Paid)
	}
}

func TestBuildStoredBeatsMirrorAndAggregation(t *testing.T) {
	in := Inputs{
		Prescribed: []float64{10},
		Paid:       []float64{20},
		Advances:   []types.AdvanceMonthly{{Month: 2, Amount: 999}},
		Payments: []types.Payment{
			{Date: time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC), Amount: 999},
		},
	}
	out := Build(in)
	if out.Prescribed[0] != 10 || out.Prescribed[1] != 0 {
		t.Errorf("stored prescribed must win: %v", out.Prescribed)
	}
	if out.Paid[0] != 20 || out.Paid[4] != 0 {
		t.Errorf("stored paid must win: %v", out.Paid)
	}
}

func TestBuildAllZeroIsValid(t *testing.T) {
	out := Build(Inputs{})
	if !out.Prescribed.IsZero() || !out.Paid.IsZero() {
		t.Errorf("empty inputs must yield zero arrays: %+v", out)
	}
}

func TestMirrorSkippedWhenRawRecordsResolveOther(t *testing.T) {
	// Paid has no stored array but aggregates from payments; prescribed
	// mirrors only the stored paid array, so it falls through to its own
	// aggregation (empty) and stays zero.
	in := Inputs{
		Payments: []types.Payment{
			{Date: time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC), Amount: 120},
		},
	}
	out := Build(in)
	if out.Paid[0] != 120 {
		t.Fatalf("paid aggregation failed: %v", out.Paid)
	}
	if !out.Prescribed.IsZero() {
		t.Errorf("prescribed must not mirror aggregated paid: %v", out.Prescribed)
	}
}
