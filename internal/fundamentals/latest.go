package fundamentals

import (
	"sort"
	"time"

	"github.com/wonny/equityrank/internal/contracts"
)

// ttmWindow is the number of quarterly periods summed for trailing-twelve-month figures.
const ttmWindow = 4

// BuildLatest derives the per-ticker snapshot from stored period history:
// TTM flow figures summed over the most recent quarterly periods, plus
// point-in-time balance-sheet figures copied from the single most recent
// period regardless of timeframe. Pure and deterministic given the history;
// returns nil when the ticker has no periods at all.
func BuildLatest(ticker string, history []contracts.FundamentalsPeriod) *contracts.FundamentalsLatest {
	if len(history) == 0 {
		return nil
	}

	sorted := make([]contracts.FundamentalsPeriod, len(history))
	copy(sorted, history)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].PeriodEnd.After(sorted[j].PeriodEnd)
	})

	latest := &contracts.FundamentalsLatest{
		Ticker:    ticker,
		UpdatedAt: time.Now().UTC(),
	}

	// Point-in-time stock figures come from the most recent period, whatever
	// its timeframe. Flow figures from that record are not reused: they are
	// replaced by the TTM aggregation below.
	newest := sorted[0]
	latest.SharesOutstanding = newest.SharesOutstanding
	latest.ShareholdersEquity = newest.ShareholdersEquity
	latest.TotalLiabilities = newest.TotalLiabilities
	latest.FilingDate = newest.FilingDate

	quarters := make([]contracts.FundamentalsPeriod, 0, ttmWindow)
	for _, p := range sorted {
		if p.Timeframe != contracts.TimeframeQuarterly {
			continue
		}
		quarters = append(quarters, p)
		if len(quarters) == ttmWindow {
			break
		}
	}
	if len(quarters) == 0 {
		// TTM figures stay nil without at least one quarterly period.
		return latest
	}

	latest.RevenueTTM = sumField(quarters, func(p contracts.FundamentalsPeriod) *float64 { return p.Revenue })
	latest.NetIncomeTTM = sumField(quarters, func(p contracts.FundamentalsPeriod) *float64 { return p.NetIncome })
	latest.OperatingCashFlowTTM = sumField(quarters, func(p contracts.FundamentalsPeriod) *float64 { return p.OperatingCashFlow })
	latest.CapitalExpendituresTTM = sumField(quarters, func(p contracts.FundamentalsPeriod) *float64 { return p.CapitalExpenditures })
	latest.DividendsTTM = sumField(quarters, func(p contracts.FundamentalsPeriod) *float64 { return p.Dividends })

	return latest
}

// sumField adds a flow field across quarters, ignoring quarters where the
// field is absent. Nil when no quarter carries the field.
func sumField(quarters []contracts.FundamentalsPeriod, get func(contracts.FundamentalsPeriod) *float64) *float64 {
	var sum float64
	found := false
	for _, q := range quarters {
		if v := get(q); v != nil {
			sum += *v
			found = true
		}
	}
	if !found {
		return nil
	}
	return &sum
}
