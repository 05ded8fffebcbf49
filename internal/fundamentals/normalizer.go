package fundamentals

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/equityrank/internal/contracts"
)

// ErrMalformedFiling is returned when a raw filing carries no recognizable
// period end and therefore cannot be keyed. The caller skips the record; one
// bad filing never aborts a batch.
var ErrMalformedFiling = errors.New("malformed filing: no period end")

// fieldSpec maps one canonical field to an ordered list of alternate key
// paths observed across upstream API versions. Paths are evaluated in order
// and the first present, non-null numeric value wins. Keeping the table
// centralized means schema drift is handled here and nowhere else.
type fieldSpec struct {
	name  string
	paths []string
	set   func(p *contracts.FundamentalsPeriod, v float64)
}

var fieldSpecs = []fieldSpec{
	{
		name: "revenue",
		paths: []string{
			"financials.income_statement.revenues",
			"income_statement.revenues",
			"revenues",
			"totalRevenue",
		},
		set: func(p *contracts.FundamentalsPeriod, v float64) { p.Revenue = &v },
	},
	{
		name: "net_income",
		paths: []string{
			"financials.income_statement.net_income_loss",
			"financials.income_statement.net_income_loss_attributable_to_parent",
			"income_statement.net_income_loss",
			"net_income_loss",
			"netIncome",
		},
		set: func(p *contracts.FundamentalsPeriod, v float64) { p.NetIncome = &v },
	},
	{
		name: "operating_cash_flow",
		paths: []string{
			"financials.cash_flow_statement.net_cash_flow_from_operating_activities",
			"financials.cash_flow_statement.net_cash_flow_from_operating_activities_continuing",
			"cash_flow_statement.net_cash_flow_from_operating_activities",
			"operatingCashFlow",
		},
		set: func(p *contracts.FundamentalsPeriod, v float64) { p.OperatingCashFlow = &v },
	},
	{
		name: "capital_expenditures",
		paths: []string{
			"financials.cash_flow_statement.payments_for_capital_expenditures",
			"financials.cash_flow_statement.capital_expenditure",
			"cash_flow_statement.capital_expenditure",
			"capitalExpenditures",
		},
		set: func(p *contracts.FundamentalsPeriod, v float64) { p.CapitalExpenditures = &v },
	},
	{
		name: "dividends",
		paths: []string{
			"financials.cash_flow_statement.payments_of_dividends",
			"financials.cash_flow_statement.dividends",
			"cash_flow_statement.payments_of_dividends",
			"dividendsPaid",
		},
		set: func(p *contracts.FundamentalsPeriod, v float64) { p.Dividends = &v },
	},
	{
		name: "shares_outstanding",
		paths: []string{
			"financials.income_statement.basic_average_shares",
			"financials.income_statement.diluted_average_shares",
			"income_statement.basic_average_shares",
			"weighted_shares_outstanding",
			"sharesOutstanding",
		},
		set: func(p *contracts.FundamentalsPeriod, v float64) { p.SharesOutstanding = &v },
	},
	{
		name: "shareholders_equity",
		paths: []string{
			"financials.balance_sheet.equity",
			"financials.balance_sheet.equity_attributable_to_parent",
			"balance_sheet.equity",
			"totalStockholdersEquity",
		},
		set: func(p *contracts.FundamentalsPeriod, v float64) { p.ShareholdersEquity = &v },
	},
	{
		name: "total_liabilities",
		paths: []string{
			"financials.balance_sheet.liabilities",
			"balance_sheet.liabilities",
			"totalLiabilities",
		},
		set: func(p *contracts.FundamentalsPeriod, v float64) { p.TotalLiabilities = &v },
	},
	{
		name: "eps_basic",
		paths: []string{
			"financials.income_statement.basic_earnings_per_share",
			"financials.income_statement.diluted_earnings_per_share",
			"income_statement.basic_earnings_per_share",
			"eps",
		},
		set: func(p *contracts.FundamentalsPeriod, v float64) { p.EPSBasic = &v },
	},
}

// Normalize maps one raw filing payload into a canonical FundamentalsPeriod.
// Field extraction is defensive: unrecognized shapes yield nil fields, never
// an error. Only a filing without any usable period end is rejected.
func Normalize(ticker string, raw map[string]any) (*contracts.FundamentalsPeriod, error) {
	periodEnd, ok := lookupDate(raw, "end_date", "period_end", "period_of_report_date", "calendar_date")
	if !ok {
		return nil, ErrMalformedFiling
	}

	period := &contracts.FundamentalsPeriod{
		Ticker:    ticker,
		PeriodEnd: periodEnd,
		Timeframe: extractTimeframe(raw),
	}

	if filed, ok := lookupDate(raw, "filing_date", "filed_date", "acceptance_datetime"); ok {
		period.FilingDate = &filed
	}
	period.FiscalYear = lookupString(raw, "fiscal_year")
	period.FiscalPeriod = lookupString(raw, "fiscal_period")

	for _, spec := range fieldSpecs {
		for _, path := range spec.paths {
			if v, ok := lookupNumber(raw, path); ok {
				spec.set(period, v)
				break
			}
		}
	}

	return period, nil
}

// extractTimeframe reads the reporting cadence. Older payloads carry no
// timeframe field; a fiscal period of "FY" marks those as annual.
func extractTimeframe(raw map[string]any) contracts.Timeframe {
	switch strings.ToLower(lookupString(raw, "timeframe")) {
	case "annual":
		return contracts.TimeframeAnnual
	case "quarterly":
		return contracts.TimeframeQuarterly
	}
	if strings.EqualFold(lookupString(raw, "fiscal_period"), "FY") {
		return contracts.TimeframeAnnual
	}
	return contracts.TimeframeQuarterly
}

// lookupNumber walks a dotted key path through nested maps and coerces the
// leaf into a float64. A `{value: ...}` container at the leaf is unwrapped
// transparently.
func lookupNumber(raw map[string]any, path string) (float64, bool) {
	v, ok := lookupPath(raw, path)
	if !ok {
		return 0, false
	}
	if wrapper, ok := v.(map[string]any); ok {
		inner, present := wrapper["value"]
		if !present {
			return 0, false
		}
		v = inner
	}
	return coerceNumber(v)
}

func lookupPath(raw map[string]any, path string) (any, bool) {
	var current any = raw
	for _, segment := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[segment]
		if !ok {
			return nil, false
		}
	}
	return current, current != nil
}

func coerceNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}

func lookupString(raw map[string]any, key string) string {
	if v, ok := raw[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// lookupDate tries keys in order and parses the first string that looks like
// a date. Timestamps are truncated to their date portion.
func lookupDate(raw map[string]any, keys ...string) (time.Time, bool) {
	for _, key := range keys {
		s := lookupString(raw, key)
		if s == "" {
			continue
		}
		if len(s) > 10 {
			s = s[:10]
		}
		if t, err := time.Parse("2006-01-02", s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
