package factors

import (
	"github.com/wonny/equityrank/internal/contracts"
)

// Compute derives all raw factors for one ticker on one date.
//
// Technical factors are total: a missing input degrades to 0 so every ticker
// in the cross-section always carries a value. Valuation ratios stay nil when
// their fundamentals inputs are missing or degenerate; the ranker substitutes
// zeros at z-scoring time, the stored row keeps the nil.
//
// prevWeekClose is the close from 7 calendar days prior, nil when no bar
// exists on that day (holiday, new listing). latest and epsCAGR3 may be nil
// for tickers without financials.
func Compute(bar contracts.DailyBar, prevWeekClose *float64, latest *contracts.FundamentalsLatest, epsCAGR3 *float64) contracts.FactorValues {
	v := contracts.FactorValues{
		Volume: bar.Volume,
	}

	switch {
	case prevWeekClose != nil && *prevWeekClose != 0:
		v.Momentum = (bar.Close - *prevWeekClose) / *prevWeekClose
	case bar.Open != 0:
		// Intraday fallback when the prior-week close is unavailable.
		v.Momentum = (bar.Close - bar.Open) / bar.Open
	}

	if bar.Open != 0 {
		v.Volatility = (bar.High - bar.Low) / bar.Open
	}

	if bar.VWAP != nil && *bar.VWAP != 0 {
		v.VWAPDev = (bar.Close - *bar.VWAP) / *bar.VWAP
	}

	if latest != nil {
		computeValuation(&v, bar.Close, latest)
	}

	if v.PE != nil && epsCAGR3 != nil && *epsCAGR3 > 0 {
		peg := *v.PE / *epsCAGR3
		v.PEG = &peg
		v.PEG3 = &peg
	}

	return v
}

// computeValuation re-derives point-in-time valuation ratios from TTM
// fundamentals and the closing price. Each ratio is independently nullable.
func computeValuation(v *contracts.FactorValues, price float64, latest *contracts.FundamentalsLatest) {
	shares := latest.SharesOutstanding
	equity := latest.ShareholdersEquity

	if latest.NetIncomeTTM != nil && shares != nil && *shares > 0 {
		eps := *latest.NetIncomeTTM / *shares
		if eps != 0 {
			pe := price / eps
			v.PE = &pe
		}
	}

	if equity != nil && *equity > 0 && shares != nil && *shares > 0 {
		bvps := *equity / *shares
		pb := price / bvps
		v.PB = &pb
	}

	if latest.RevenueTTM != nil && *latest.RevenueTTM > 0 && shares != nil && *shares > 0 {
		rps := *latest.RevenueTTM / *shares
		ps := price / rps
		v.PS = &ps
	}

	if latest.NetIncomeTTM != nil && equity != nil && *equity != 0 {
		roe := *latest.NetIncomeTTM / *equity
		v.ROE = &roe
	}

	if latest.TotalLiabilities != nil && equity != nil && *equity > 0 {
		de := *latest.TotalLiabilities / *equity
		v.DE = &de
	}

	if latest.OperatingCashFlowTTM != nil && shares != nil && *shares > 0 && price > 0 {
		capex := 0.0
		if latest.CapitalExpendituresTTM != nil {
			capex = *latest.CapitalExpendituresTTM
		}
		fcf := (*latest.OperatingCashFlowTTM - capex) / (*shares * price)
		v.FCFYield = &fcf
	}

	if latest.DividendsTTM != nil && shares != nil && *shares != 0 && price != 0 {
		dy := (*latest.DividendsTTM / *shares) / price
		v.DividendYield = &dy
	}
}
