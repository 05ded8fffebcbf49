package contracts

import "time"

// Timeframe identifies the reporting cadence of a fundamentals period.
type Timeframe string

const (
	TimeframeQuarterly Timeframe = "quarterly"
	TimeframeAnnual    Timeframe = "annual"
)

// DailyBar represents one trading day's aggregate for one ticker.
// Bars are immutable once ingested for a date; a re-fetch overwrites
// (last-write-wins, upstream corrections).
type DailyBar struct {
	Date   time.Time `json:"date"`
	Ticker string    `json:"ticker"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
	VWAP   *float64  `json:"vwap,omitempty"` // not reported by all upstream plans
}

// FundamentalsPeriod is one canonical, normalized financial-statement period
// for a ticker. All figures are nullable: upstream filings omit fields freely
// and the normalizer never invents values.
type FundamentalsPeriod struct {
	Ticker    string    `json:"ticker"`
	PeriodEnd time.Time `json:"period_end"`
	Timeframe Timeframe `json:"timeframe"`

	Revenue             *float64 `json:"revenue,omitempty"`
	NetIncome           *float64 `json:"net_income,omitempty"`
	OperatingCashFlow   *float64 `json:"operating_cash_flow,omitempty"`
	CapitalExpenditures *float64 `json:"capital_expenditures,omitempty"`
	Dividends           *float64 `json:"dividends,omitempty"`
	SharesOutstanding   *float64 `json:"shares_outstanding,omitempty"`
	ShareholdersEquity  *float64 `json:"shareholders_equity,omitempty"`
	TotalLiabilities    *float64 `json:"total_liabilities,omitempty"`
	EPSBasic            *float64 `json:"eps_basic,omitempty"`

	FilingDate   *time.Time `json:"filing_date,omitempty"`
	FiscalYear   string     `json:"fiscal_year,omitempty"`
	FiscalPeriod string     `json:"fiscal_period,omitempty"`
}

// FundamentalsLatest is the single most-recently-observed snapshot per ticker:
// trailing-twelve-month flow figures summed over the most recent quarterly
// periods, plus point-in-time balance-sheet figures from the single most
// recent period regardless of timeframe. Derived and recomputable; never
// fetched directly from upstream.
type FundamentalsLatest struct {
	Ticker string `json:"ticker"`

	RevenueTTM             *float64 `json:"revenue_ttm,omitempty"`
	NetIncomeTTM           *float64 `json:"net_income_ttm,omitempty"`
	OperatingCashFlowTTM   *float64 `json:"operating_cash_flow_ttm,omitempty"`
	CapitalExpendituresTTM *float64 `json:"capital_expenditures_ttm,omitempty"`
	DividendsTTM           *float64 `json:"dividends_ttm,omitempty"`

	SharesOutstanding  *float64 `json:"shares_outstanding,omitempty"`
	ShareholdersEquity *float64 `json:"shareholders_equity,omitempty"`
	TotalLiabilities   *float64 `json:"total_liabilities,omitempty"`

	FilingDate *time.Time `json:"filing_date,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// UniverseRow is the per-date, per-ticker membership snapshot used as a
// filter/display join by the query layer. It is never a scoring input.
type UniverseRow struct {
	Date      time.Time `json:"date"`
	Ticker    string    `json:"ticker"`
	MarketCap *float64  `json:"market_cap,omitempty"`
	AvgVolume *float64  `json:"avg_volume,omitempty"` // 20-trading-day trailing average
}
