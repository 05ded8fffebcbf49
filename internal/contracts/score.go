package contracts

import "time"

// FactorValues holds the raw per-ticker factors for one date. Technical
// factors are total (missing inputs degrade to 0, never nil); valuation
// ratios stay nil when their fundamentals inputs are missing so the stored
// row reflects what was actually derivable.
type FactorValues struct {
	Momentum   float64 `json:"momentum"`
	Volatility float64 `json:"volatility"`
	Volume     float64 `json:"volume"`
	VWAPDev    float64 `json:"vwap_dev"`

	PE            *float64 `json:"pe,omitempty"`
	PB            *float64 `json:"pb,omitempty"`
	DE            *float64 `json:"de,omitempty"`
	FCFYield      *float64 `json:"fcf_yield,omitempty"`
	PEG           *float64 `json:"peg,omitempty"`
	PEG3          *float64 `json:"peg3,omitempty"`
	PS            *float64 `json:"ps,omitempty"`
	ROE           *float64 `json:"roe,omitempty"`
	DividendYield *float64 `json:"dividend_yield,omitempty"`
}

// TickerFactors pairs a ticker with its raw factors; the unit the ranker
// consumes as a cross-section.
type TickerFactors struct {
	Ticker  string
	Factors FactorValues
}

// ScoreRow is one persisted scoring result. Composite is always present:
// missing inputs contribute zero post-z-score rather than nulling the row.
type ScoreRow struct {
	Date   time.Time `json:"date"`
	Ticker string    `json:"ticker"`

	Factors   FactorValues `json:"factors"`
	Composite float64      `json:"composite"`
}
