package fundamentals

import (
	"math"
	"time"

	"github.com/wonny/equityrank/internal/contracts"
)

// Candidate window for the 3-year-prior period, in months before the most
// recent period end. Filings rarely land exactly 36 months apart, so the
// nearest period inside the window is paired instead.
const (
	growthWindowMinMonths = 30
	growthWindowMaxMonths = 42
	growthTargetMonths    = 36
)

// EPSGrowth3Y estimates a 3-year EPS CAGR from a ticker's period history.
// The most recent period is "now"; among strictly earlier periods whose
// period_end lies 30-42 months prior, the one nearest to exactly 36 months
// is paired (tie-break: earliest period_end). Nil when no such period
// exists, either EPS is absent, the base EPS is not positive, or the ratio
// is not positive - a zero or negative base has no real-valued growth rate.
func EPSGrowth3Y(history []contracts.FundamentalsPeriod) *float64 {
	if len(history) < 2 {
		return nil
	}

	now := history[0]
	for _, p := range history[1:] {
		if p.PeriodEnd.After(now.PeriodEnd) {
			now = p
		}
	}

	target := now.PeriodEnd.AddDate(0, -growthTargetMonths, 0)
	earliest := now.PeriodEnd.AddDate(0, -growthWindowMaxMonths, 0)
	latestAllowed := now.PeriodEnd.AddDate(0, -growthWindowMinMonths, 0)

	var then *contracts.FundamentalsPeriod
	var bestDistance time.Duration
	for i := range history {
		p := &history[i]
		if !p.PeriodEnd.Before(now.PeriodEnd) {
			continue
		}
		if p.PeriodEnd.Before(earliest) || p.PeriodEnd.After(latestAllowed) {
			continue
		}
		distance := p.PeriodEnd.Sub(target)
		if distance < 0 {
			distance = -distance
		}
		// Strict < keeps the earliest period_end on equal distance, because
		// the history is scanned in ascending order.
		if then == nil || distance < bestDistance {
			then = p
			bestDistance = distance
		}
	}
	if then == nil {
		return nil
	}

	if now.EPSBasic == nil || then.EPSBasic == nil {
		return nil
	}
	if *then.EPSBasic <= 0 {
		return nil
	}
	ratio := *now.EPSBasic / *then.EPSBasic
	if ratio <= 0 {
		return nil
	}

	cagr := math.Cbrt(ratio) - 1
	return &cagr
}
