// Package monthly builds the 12-month prescribed/paid advance arrays for
// a billing result.
//
// Each array is resolved independently through a deterministic fallback
// chain: the stored array when it has any non-zero entry, then a mirror
// of the other stored array, then an aggregation of raw monthly source
// records, and finally all zeros. Arrays shorter than twelve months are
// right-padded before any check; they are never truncated.
package monthly

import (
	"building-cost/core/types"
)

// Inputs are the sources for one unit (or one unit/service pair).
type Inputs struct {
	// Prescribed is the stored monthly prescribed array, possibly short
	Prescribed []float64

	// Paid is the stored monthly paid array, possibly short
	Paid []float64

	// Advances are raw prescribed records, summed by month
	Advances []types.AdvanceMonthly

	// Payments are raw paid records, bucketed by the calendar month of
	// the payment date
	Payments []types.Payment
}

// Arrays is the resolved pair of 12-month arrays.
type Arrays struct {
	Prescribed types.Months
	Paid       types.Months
}

// Build resolves both arrays through the fallback chain.
func Build(in Inputs) Arrays {
	storedPrescribed := types.PadMonths(in.Prescribed)
	storedPaid := types.PadMonths(in.Paid)

	return Arrays{
		Prescribed: resolve(storedPrescribed, storedPaid, func() types.Months {
			return AggregateAdvances(in.Advances)
		}),
		Paid: resolve(storedPaid, storedPrescribed, func() types.Months {
			return AggregatePayments(in.Payments)
		}),
	}
}

// resolve applies the chain for one array: stored, mirror of the other
// stored array, raw aggregation, zeros. The mirror step is a documented
// historical workaround for incomplete source data.
func resolve(stored, other types.Months, aggregate func() types.Months) types.Months {
	if !stored.IsZero() {
		return stored
	}
	if !other.IsZero() {
		return other
	}
	if agg := aggregate(); !agg.IsZero() {
		return agg
	}
	return types.Months{}
}

// AggregateAdvances sums raw prescribed records by month.
func AggregateAdvances(advances []types.AdvanceMonthly) types.Months {
	var m types.Months
	for _, a := range advances {
		if a.Month < 1 || a.Month > types.MonthCount {
			continue
		}
		m[a.Month-1] += a.Amount
	}
	return m
}

// AggregatePayments buckets raw payments by the calendar month of the
// payment date.
func AggregatePayments(payments []types.Payment) types.Months {
	var m types.Months
	for _, p := range payments {
		if p.Date.IsZero() {
			continue
		}
		m[int(p.Date.Month())-1] += p.Amount
	}
	return m
}
