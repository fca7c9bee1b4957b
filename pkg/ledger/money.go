// Package ledger implements the revenue-recognition and balancing engine:
// revenue-date assignment, invoice/receipt matching, revenue component
// extraction, per-date aggregation and balanced journal-line emission.
package ledger

import "math"

// Round2 rounds a monetary amount to the ledger's minor unit (2 decimal
// places). Every amount is rounded exactly once, here, before it is
// compared or summed; rounding anywhere else drifts the batch totals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// cents converts a rounded amount to an integer minor-unit count for
// exact comparison.
func cents(v float64) int64 {
	return int64(math.Round(v * 100))
}
