package billing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"building-cost/core/reconcile"
	"building-cost/core/types"
)

// fakeRepo backs calculator tests in memory.
type fakeRepo struct {
	buildings    []types.Building
	periods      []types.BillingPeriod
	units        []types.Unit
	services     []types.Service
	costs        []types.Cost
	personMonths []types.PersonMonth
	advances     []types.AdvanceMonthly
	payments     []types.Payment
	results      []types.BillingResult
}

func (f *fakeRepo) FindBuilding(_ context.Context, id uuid.UUID) (*types.Building, error) {
	for i := range f.buildings {
		if f.buildings[i].ID == id {
			return &f.buildings[i], nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) ListBuildings(context.Context) ([]types.Building, error) { return f.buildings, nil }

func (f *fakeRepo) CreateBuilding(_ context.Context, b *types.Building) error {
	f.buildings = append(f.buildings, *b)
	return nil
}

func (f *fakeRepo) FindPeriod(_ context.Context, buildingID uuid.UUID, year int) (*types.BillingPeriod, error) {
	for i := range f.periods {
		if f.periods[i].BuildingID == buildingID && f.periods[i].Year == year {
			return &f.periods[i], nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) CreatePeriod(_ context.Context, p *types.BillingPeriod) error {
	f.periods = append(f.periods, *p)
	return nil
}

func (f *fakeRepo) ListUnits(_ context.Context, buildingID uuid.UUID) ([]types.Unit, error) {
	var out []types.Unit
	for _, u := range f.units {
		if u.BuildingID == buildingID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeRepo) CreateUnit(_ context.Context, u *types.Unit) error {
	f.units = append(f.units, *u)
	return nil
}

func (f *fakeRepo) ListServices(_ context.Context, buildingID uuid.UUID) ([]types.Service, error) {
	var out []types.Service
	for _, s := range f.services {
		if s.BuildingID == buildingID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeRepo) CreateService(_ context.Context, s *types.Service) error {
	f.services = append(f.services, *s)
	return nil
}

func (f *fakeRepo) FindOwnerByName(context.Context, string) (*types.Owner, error) { return nil, nil }
func (f *fakeRepo) CreateOwner(context.Context, *types.Owner) error               { return nil }
func (f *fakeRepo) OwnershipExists(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return false, nil
}
func (f *fakeRepo) CreateOwnership(context.Context, *types.Ownership) error { return nil }

func (f *fakeRepo) ListAdvances(_ context.Context, periodID, unitID uuid.UUID) ([]types.AdvanceMonthly, error) {
	var out []types.AdvanceMonthly
	for _, a := range f.advances {
		if a.PeriodID == periodID && a.UnitID == unitID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListPayments(_ context.Context, periodID, unitID uuid.UUID) ([]types.Payment, error) {
	var out []types.Payment
	for _, p := range f.payments {
		if p.PeriodID == periodID && p.UnitID == unitID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeRepo) DeleteResultsForPeriod(_ context.Context, periodID uuid.UUID) error {
	kept := f.results[:0]
	for _, r := range f.results {
		if r.PeriodID != periodID {
			kept = append(kept, r)
		}
	}
	f.results = kept
	return nil
}

func (f *fakeRepo) CreateResult(_ context.Context, r *types.BillingResult) error {
	f.results = append(f.results, *r)
	return nil
}

func (f *fakeRepo) WithinTx(_ context.Context, fn func(reconcile.Repository) error) error {
	return fn(f)
}

func (f *fakeRepo) ListCosts(_ context.Context, periodID uuid.UUID) ([]types.Cost, error) {
	var out []types.Cost
	for _, c := range f.costs {
		if c.PeriodID == periodID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListPersonMonths(_ context.Context, periodID uuid.UUID) ([]types.PersonMonth, error) {
	var out []types.PersonMonth
	for _, pm := range f.personMonths {
		if pm.PeriodID == periodID {
			out = append(out, pm)
		}
	}
	return out, nil
}

type fixture struct {
	repo     *fakeRepo
	building types.Building
	period   types.BillingPeriod
	unitA    types.Unit
	unitB    types.Unit
}

func newFixture() *fixture {
	f := &fixture{repo: &fakeRepo{}}
	f.building = types.Building{ID: uuid.New(), Name: "House 12"}
	f.period = types.BillingPeriod{ID: uuid.New(), BuildingID: f.building.ID, Year: 2024, Name: "2024"}
	f.unitA = types.Unit{ID: uuid.New(), BuildingID: f.building.ID, Name: "12/1", Area: 30, ShareNumerator: 100}
	f.unitB = types.Unit{ID: uuid.New(), BuildingID: f.building.ID, Name: "12/2", Area: 70, ShareNumerator: 300}
	f.repo.buildings = []types.Building{f.building}
	f.repo.periods = []types.BillingPeriod{f.period}
	f.repo.units = []types.Unit{f.unitA, f.unitB}
	return f
}

func (f *fixture) addService(svc types.Service, total float64) types.Service {
	svc.ID = uuid.New()
	svc.BuildingID = f.building.ID
	f.repo.services = append(f.repo.services, svc)
	if total != 0 {
		f.repo.costs = append(f.repo.costs, types.Cost{
			ID: uuid.New(), ServiceID: svc.ID, PeriodID: f.period.ID, Amount: total,
		})
	}
	return svc
}

func (f *fixture) resultFor(t *testing.T, unitID uuid.UUID) types.BillingResult {
	t.Helper()
	for _, r := range f.repo.results {
		if r.UnitID == unitID {
			return r
		}
	}
	t.Fatalf("no result for unit %v", unitID)
	return types.BillingResult{}
}

func TestRunDistributesByArea(t *testing.T) {
	f := newFixture()
	f.addService(types.Service{Name: "Heating", Methodology: types.MethodologyArea}, 10000)

	summary, err := NewCalculator(f.repo, nil).Run(context.Background(),
		Options{BuildingID: f.building.ID, Year: 2024})
	if err != nil {
		t.Fatal(err)
	}
	if summary.ServicesComputed != 1 || summary.ResultsWritten != 2 {
		t.Fatalf("summary: %+v", summary)
	}
	if got := f.resultFor(t, f.unitA.ID).TotalCost; got != 3000 {
		t.Errorf("unit A cost = %v, want 3000", got)
	}
	if got := f.resultFor(t, f.unitB.ID).TotalCost; got != 7000 {
		t.Errorf("unit B cost = %v, want 7000", got)
	}
}

func TestRunSplitsCostsAcrossServices(t *testing.T) {
	f := newFixture()
	f.addService(types.Service{Name: "Heating", Methodology: types.MethodologyOwnershipShare}, 4000)
	f.addService(types.Service{Name: "Cleaning", Methodology: types.MethodologyEqualSplit}, 1200)

	_, err := NewCalculator(f.repo, nil).Run(context.Background(),
		Options{BuildingID: f.building.ID, Year: 2024})
	if err != nil {
		t.Fatal(err)
	}

	a := f.resultFor(t, f.unitA.ID)
	if len(a.Services) != 2 {
		t.Fatalf("unit A lines = %d, want 2", len(a.Services))
	}
	// 100/400 of 4000 plus half of 1200.
	if a.TotalCost != 1000+600 {
		t.Errorf("unit A total = %v, want 1600", a.TotalCost)
	}
}

func TestRunReplacesPriorResults(t *testing.T) {
	f := newFixture()
	f.addService(types.Service{Name: "Heating", Methodology: types.MethodologyArea}, 10000)
	calc := NewCalculator(f.repo, nil)

	for i := 0; i < 2; i++ {
		if _, err := calc.Run(context.Background(), Options{BuildingID: f.building.ID, Year: 2024}); err != nil {
			t.Fatalf("run %d: %v", i+1, err)
		}
	}
	if len(f.repo.results) != 2 {
		t.Errorf("recalculation duplicated results: %d", len(f.repo.results))
	}
}

func TestRunBuildsMonthlyArraysFromRawRecords(t *testing.T) {
	f := newFixture()
	svc := f.addService(types.Service{Name: "Heating", Methodology: types.MethodologyArea}, 10000)

	for month := 1; month <= 12; month++ {
		f.repo.advances = append(f.repo.advances, types.AdvanceMonthly{
			ID: uuid.New(), UnitID: f.unitA.ID, ServiceID: &svc.ID,
			PeriodID: f.period.ID, Month: month, Amount: 300,
		})
	}
	f.repo.payments = append(f.repo.payments, types.Payment{
		ID: uuid.New(), UnitID: f.unitA.ID, PeriodID: f.period.ID,
		Date: time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), Amount: 1800,
	})

	if _, err := NewCalculator(f.repo, nil).Run(context.Background(),
		Options{BuildingID: f.building.ID, Year: 2024}); err != nil {
		t.Fatal(err)
	}

	a := f.resultFor(t, f.unitA.ID)
	if a.TotalPrescribed != 3600 {
		t.Errorf("prescribed total = %v, want 3600", a.TotalPrescribed)
	}
	if a.Paid[4] != 1800 || a.TotalPaid != 1800 {
		t.Errorf("payments not bucketed by month: %v", a.Paid)
	}
	if a.Balance != 3600-3000 {
		t.Errorf("balance = %v, want 600", a.Balance)
	}
	line := a.Services[0]
	if line.UnitAdvance != 3600 || line.UnitBalance != 600 {
		t.Errorf("service advance/balance wrong: %+v", line)
	}
}

func TestRunPrefersPersonMonthsOverResidents(t *testing.T) {
	f := newFixture()
	f.repo.units[0].Residents = 2
	f.repo.units[1].Residents = 2
	f.addService(types.Service{Name: "Waste", Methodology: types.MethodologyPersonMonths}, 3600)
	// Unit A was occupied by one person for the full year, unit B by two.
	for month := 1; month <= 12; month++ {
		f.repo.personMonths = append(f.repo.personMonths,
			types.PersonMonth{ID: uuid.New(), UnitID: f.unitA.ID, PeriodID: f.period.ID, Month: month, Count: 1},
			types.PersonMonth{ID: uuid.New(), UnitID: f.unitB.ID, PeriodID: f.period.ID, Month: month, Count: 2},
		)
	}

	if _, err := NewCalculator(f.repo, nil).Run(context.Background(),
		Options{BuildingID: f.building.ID, Year: 2024}); err != nil {
		t.Fatal(err)
	}
	if got := f.resultFor(t, f.unitA.ID).TotalCost; got != 1200 {
		t.Errorf("unit A = %v, want 1200", got)
	}
	if got := f.resultFor(t, f.unitB.ID).TotalCost; got != 2400 {
		t.Errorf("unit B = %v, want 2400", got)
	}
}

func TestRunDistributesMeterConsumption(t *testing.T) {
	f := newFixture()
	f.repo.units[0].Meters = []types.Meter{{
		ID: uuid.New(), UnitID: f.unitA.ID, Type: types.MeterColdWater, Serial: "CW-A",
		Readings: []types.MeterReading{{ID: uuid.New(), Start: 100, End: 110}},
	}}
	f.repo.units[1].Meters = []types.Meter{{
		ID: uuid.New(), UnitID: f.unitB.ID, Type: types.MeterColdWater, Serial: "CW-B",
		Readings: []types.MeterReading{{ID: uuid.New(), Start: 200, End: 230}},
	}}
	f.addService(types.Service{
		Name:        "Cold water",
		Methodology: types.MethodologyMeterReading,
		MeterType:   types.MeterColdWater,
	}, 4000)

	if _, err := NewCalculator(f.repo, nil).Run(context.Background(),
		Options{BuildingID: f.building.ID, Year: 2024}); err != nil {
		t.Fatal(err)
	}

	// 10 of 40 consumed units vs 30 of 40.
	if got := f.resultFor(t, f.unitA.ID).TotalCost; got != 1000 {
		t.Errorf("unit A = %v, want 1000", got)
	}
	b := f.resultFor(t, f.unitB.ID)
	if b.TotalCost != 3000 {
		t.Errorf("unit B = %v, want 3000", b.TotalCost)
	}
	if len(b.Services[0].Readings) != 1 || b.Services[0].Readings[0].Consumption != 30 {
		t.Errorf("readings not embedded: %+v", b.Services[0].Readings)
	}
}

func TestRunWarnsWhenConservationBreaks(t *testing.T) {
	f := newFixture()
	fixed := 100.0
	svc := types.Service{Name: "Admin fee", Methodology: types.MethodologyFixedPerUnit, FixedAmount: &fixed}
	f.addService(svc, 500) // 2 units x 100 allocated vs 500 recorded

	summary, err := NewCalculator(f.repo, nil).Run(context.Background(),
		Options{BuildingID: f.building.ID, Year: 2024})
	if err != nil {
		t.Fatal(err)
	}
	if len(summary.Warnings) == 0 {
		t.Error("expected a conservation warning")
	}
}

func TestRunUnknownBuilding(t *testing.T) {
	f := newFixture()
	_, err := NewCalculator(f.repo, nil).Run(context.Background(),
		Options{BuildingID: uuid.New(), Year: 2024})
	if err == nil {
		t.Fatal("expected error for unknown building")
	}
}

func TestRunMissingPeriod(t *testing.T) {
	f := newFixture()
	_, err := NewCalculator(f.repo, nil).Run(context.Background(),
		Options{BuildingID: f.building.ID, Year: 2030})
	if err == nil {
		t.Fatal("expected error for missing period")
	}
}
