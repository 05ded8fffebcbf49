package factors

import "math"

// ZScores normalizes one factor's cross-section (one date, all tickers) to
// z-scores using the population standard deviation. Output order matches
// input order. A degenerate cross-section (zero variance, including n=0 and
// n=1) yields all zeros instead of dividing by zero.
//
// The function is pure and stateless; it must only ever see a same-date
// cross-section, never values spanning dates.
func ZScores(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))

	sigma := math.Sqrt(variance)
	if sigma == 0 {
		return out
	}

	for i, v := range values {
		out[i] = (v - mean) / sigma
	}
	return out
}
