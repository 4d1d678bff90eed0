// Package billing runs the fresh distribution path: building data loaded
// from the repository, every service's period cost distributed across
// units, monthly arrays reconciled from raw records, results written
// with the same destructive per-period replace the snapshot import uses.
package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"building-cost/core/distribution"
	"building-cost/core/monthly"
	"building-cost/core/reconcile"
	"building-cost/core/types"
	"building-cost/internal/errors"
)

// Repository is what the calculator needs from persistence. The store
// satisfies it.
type Repository interface {
	reconcile.Repository

	ListCosts(ctx context.Context, periodID uuid.UUID) ([]types.Cost, error)
	ListPersonMonths(ctx context.Context, periodID uuid.UUID) ([]types.PersonMonth, error)
}

// Options select the calculation target.
type Options struct {
	// BuildingID is the building to compute
	BuildingID uuid.UUID

	// Year selects the billing period; it must already exist and carry
	// the period's costs
	Year int

	// Tolerance is the conservation-check tolerance; zero means the
	// engine default
	Tolerance float64
}

// Summary reports one calculation run.
type Summary struct {
	// BuildingID is the computed building
	BuildingID uuid.UUID `json:"building_id"`

	// PeriodID is the computed period
	PeriodID uuid.UUID `json:"period_id"`

	// ServicesComputed counts distributed services
	ServicesComputed int `json:"services_computed"`

	// ResultsWritten counts persisted billing results
	ResultsWritten int `json:"results_written"`

	// Warnings are non-fatal computation problems
	Warnings []string `json:"warnings,omitempty"`

	// Errors are per-unit persistence failures
	Errors []string `json:"errors,omitempty"`
}

func (s *Summary) warnf(format string, args ...interface{}) {
	s.Warnings = append(s.Warnings, fmt.Sprintf(format, args...))
}

// Calculator computes billing results from persisted data.
type Calculator struct {
	repo Repository
	log  *zap.Logger
}

// NewCalculator returns a Calculator.
func NewCalculator(repo Repository, log *zap.Logger) *Calculator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Calculator{repo: repo, log: log}
}

// Run distributes every service's period cost and replaces the period's
// billing results. Per-unit write failures are recorded on the summary;
// the run continues.
func (c *Calculator) Run(ctx context.Context, opts Options) (*Summary, error) {
	building, err := c.repo.FindBuilding(ctx, opts.BuildingID)
	if err != nil {
		return nil, err
	}
	if building == nil {
		return nil, errors.NotFound("building", opts.BuildingID.String())
	}
	period, err := c.repo.FindPeriod(ctx, building.ID, opts.Year)
	if err != nil {
		return nil, err
	}
	if period == nil {
		return nil, errors.NotFound("billing period", fmt.Sprintf("%s/%d", building.Name, opts.Year))
	}

	units, err := c.repo.ListUnits(ctx, building.ID)
	if err != nil {
		return nil, err
	}
	if len(units) == 0 {
		return nil, errors.Input("building has no units to bill")
	}
	services, err := c.repo.ListServices(ctx, building.ID)
	if err != nil {
		return nil, err
	}
	costs, err := c.repo.ListCosts(ctx, period.ID)
	if err != nil {
		return nil, err
	}
	personMonths, err := c.repo.ListPersonMonths(ctx, period.ID)
	if err != nil {
		return nil, err
	}

	summary := &Summary{BuildingID: building.ID, PeriodID: period.ID}

	totals := make(map[uuid.UUID]float64, len(services))
	for _, cost := range costs {
		totals[cost.ServiceID] += cost.Amount
	}
	pmSums := make(map[uuid.UUID]float64)
	for _, pm := range personMonths {
		pmSums[pm.UnitID] += float64(pm.Count)
	}

	tolerance := opts.Tolerance
	if tolerance == 0 {
		tolerance = distribution.DefaultTolerance
	}

	// Per-unit result skeletons keyed by unit, filled service by service.
	results := make(map[uuid.UUID]*types.BillingResult, len(units))
	for _, u := range units {
		results[u.ID] = &types.BillingResult{
			ID:       uuid.New(),
			PeriodID: period.ID,
			UnitID:   u.ID,
		}
	}

	for _, svc := range services {
		if svc.Methodology == types.MethodologyNoBilling {
			continue
		}
		total := totals[svc.ID]

		inputs := make([]distribution.UnitInput, len(units))
		for i, u := range units {
			inputs[i] = unitInput(u, svc, pmSums[u.ID])
		}

		shares, warnings := distribution.Distribute(svc, total, inputs)
		for _, w := range warnings {
			summary.warnf("service %q: %s", svc.Name, w)
		}
		if diff, ok := distribution.VerifyConservation(shares, total, tolerance); !ok {
			summary.warnf("service %q: allocated shares differ from total by %v", svc.Name, diff)
		}
		summary.ServicesComputed++

		for _, share := range shares {
			res := results[share.UnitID]
			if res == nil {
				continue
			}
			unitCost := share.Amount
			if share.Failed {
				unitCost = 0
			}
			res.Services = append(res.Services, types.BillingServiceCost{
				ID:            uuid.New(),
				ResultID:      res.ID,
				ServiceID:     svc.ID,
				ServiceName:   svc.Name,
				BuildingTotal: total,
				UnitCost:      unitCost,
				BasisLabel:    share.BasisLabel,
				BuildingUnits: share.BuildingUnits,
				PricePerUnit:  share.PricePerUnit,
				UnitUnits:     share.UnitUnits,
				ShareText:     share.ShareText,
				Readings:      share.Readings,
			})
			res.TotalCost += unitCost
		}
	}

	// Monthly arrays and per-service advances come from the raw records.
	for _, u := range units {
		res := results[u.ID]

		advances, err := c.repo.ListAdvances(ctx, period.ID, u.ID)
		if err != nil {
			summary.warnf("unit %q: loading advances failed: %v", u.Name, err)
		}
		payments, err := c.repo.ListPayments(ctx, period.ID, u.ID)
		if err != nil {
			summary.warnf("unit %q: loading payments failed: %v", u.Name, err)
		}

		attachServiceAdvances(res, advances)

		arrays := monthly.Build(monthly.Inputs{Advances: advances, Payments: payments})
		res.Prescribed = arrays.Prescribed
		res.Paid = arrays.Paid
		res.TotalPrescribed = arrays.Prescribed.Sum()
		res.TotalPaid = arrays.Paid.Sum()
		res.Balance = res.TotalPrescribed - res.TotalCost
	}

	err = c.repo.WithinTx(ctx, func(tx reconcile.Repository) error {
		if err := tx.DeleteResultsForPeriod(ctx, period.ID); err != nil {
			return err
		}
		for _, u := range units {
			if err := ctx.Err(); err != nil {
				return errors.Internal("calculation canceled", err)
			}
			if err := tx.CreateResult(ctx, results[u.ID]); err != nil {
				summary.Errors = append(summary.Errors,
					fmt.Sprintf("unit %q: persist billing result failed: %v", u.Name, err))
				continue
			}
			summary.ResultsWritten++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.log.Info("calculation finished",
		zap.String("building", building.Name),
		zap.Int("year", opts.Year),
		zap.Int("services", summary.ServicesComputed),
		zap.Int("results", summary.ResultsWritten),
		zap.Int("warnings", len(summary.Warnings)))

	return summary, nil
}

// unitInput projects one unit into the engine's input shape. Residents
// prefer the period's person-month sum over the point-in-time count.
func unitInput(u types.Unit, svc types.Service, personMonthSum float64) distribution.UnitInput {
	in := distribution.UnitInput{
		UnitID:         u.ID,
		Name:           u.Name,
		ShareNumerator: u.ShareNumerator,
		Area:           u.Area,
		Residents:      float64(u.Residents),
		Parameters:     u.Parameters,
	}
	if personMonthSum > 0 {
		in.Residents = personMonthSum
	}

	if svc.Methodology != types.MethodologyMeterReading && svc.Methodology != types.MethodologyCustomFormula {
		return in
	}

	var meterCost float64
	var hasMeterCost bool
	for _, m := range u.Meters {
		if svc.MeterType != "" && m.Type != svc.MeterType {
			continue
		}
		if m.PrecomputedCost != nil {
			meterCost += *m.PrecomputedCost
			hasMeterCost = true
		}
		for _, r := range m.Readings {
			consumption := r.ConsumptionValue()
			in.Consumption += consumption
			in.Readings = append(in.Readings, types.ReadingSnapshot{
				Serial:      m.Serial,
				Start:       r.Start,
				End:         r.End,
				Consumption: consumption,
			})
		}
	}
	if hasMeterCost {
		in.MeterCost = &meterCost
	}
	return in
}

// attachServiceAdvances sums service-scoped advance records onto the
// matching breakdown lines and rederives their balances.
func attachServiceAdvances(res *types.BillingResult, advances []types.AdvanceMonthly) {
	byService := make(map[uuid.UUID]float64)
	for _, a := range advances {
		if a.ServiceID != nil {
			byService[*a.ServiceID] += a.Amount
		}
	}
	for i := range res.Services {
		line := &res.Services[i]
		line.UnitAdvance = byService[line.ServiceID]
		line.UnitBalance = line.UnitAdvance - line.UnitCost
	}
}
