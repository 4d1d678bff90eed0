package distribution

import "math"

// DefaultTolerance is the conservation tolerance in currency units.
const DefaultTolerance = 0.01

// VerifyConservation sums the unit shares for a service and reports the
// absolute difference from the building total cost. Failed shares are
// excluded from the sum. A non-negligible difference is a warning
// condition, not a fault: divisor overrides and fallback rules can
// legitimately leave residuals.
func VerifyConservation(shares []Share, totalCost, tolerance float64) (diff float64, ok bool) {
	var sum float64
	for _, s := range shares {
		if s.Failed {
			continue
		}
		sum += s.Amount
	}
	diff = math.Abs(sum - totalCost)
	return diff, diff <= tolerance
}
