package fundamentals

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/equityrank/internal/contracts"
)

func TestNormalize_NestedValueWrappers(t *testing.T) {
	raw := map[string]any{
		"end_date":      "2024-09-28",
		"filing_date":   "2024-11-01",
		"timeframe":     "quarterly",
		"fiscal_year":   "2024",
		"fiscal_period": "Q4",
		"financials": map[string]any{
			"income_statement": map[string]any{
				"revenues":                 map[string]any{"value": 94930000000.0, "unit": "USD"},
				"net_income_loss":          map[string]any{"value": 14736000000.0},
				"basic_earnings_per_share": map[string]any{"value": 0.97},
				"basic_average_shares":     map[string]any{"value": 15171990000.0},
			},
			"balance_sheet": map[string]any{
				"equity":      map[string]any{"value": 56950000000.0},
				"liabilities": map[string]any{"value": 308030000000.0},
			},
			"cash_flow_statement": map[string]any{
				"net_cash_flow_from_operating_activities": map[string]any{"value": 26811000000.0},
			},
		},
	}

	period, err := Normalize("AAPL", raw)
	require.NoError(t, err)

	assert.Equal(t, "AAPL", period.Ticker)
	assert.Equal(t, time.Date(2024, 9, 28, 0, 0, 0, 0, time.UTC), period.PeriodEnd)
	assert.Equal(t, contracts.TimeframeQuarterly, period.Timeframe)
	assert.Equal(t, "2024", period.FiscalYear)
	assert.Equal(t, "Q4", period.FiscalPeriod)

	require.NotNil(t, period.Revenue)
	assert.InDelta(t, 94930000000.0, *period.Revenue, 1)
	require.NotNil(t, period.NetIncome)
	assert.InDelta(t, 14736000000.0, *period.NetIncome, 1)
	require.NotNil(t, period.EPSBasic)
	assert.InDelta(t, 0.97, *period.EPSBasic, 1e-9)
	require.NotNil(t, period.SharesOutstanding)
	require.NotNil(t, period.ShareholdersEquity)
	require.NotNil(t, period.TotalLiabilities)
	require.NotNil(t, period.OperatingCashFlow)
	require.NotNil(t, period.FilingDate)
	assert.Equal(t, time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC), *period.FilingDate)

	// Fields no alternate path matched stay nil rather than erroring.
	assert.Nil(t, period.CapitalExpenditures)
	assert.Nil(t, period.Dividends)
}

func TestNormalize_LegacyFlatSchema(t *testing.T) {
	raw := map[string]any{
		"calendar_date":           "2019-12-31",
		"totalRevenue":            260174000000.0,
		"netIncome":               55256000000.0,
		"eps":                     11.89,
		"sharesOutstanding":       4648913000.0,
		"totalStockholdersEquity": 90488000000.0,
		"totalLiabilities":        248028000000.0,
		"operatingCashFlow":       69391000000.0,
		"capitalExpenditures":     10495000000.0,
		"dividendsPaid":           14119000000.0,
		"fiscal_period":           "FY",
	}

	period, err := Normalize("AAPL", raw)
	require.NoError(t, err)

	// No timeframe field: an FY fiscal period marks the filing annual.
	assert.Equal(t, contracts.TimeframeAnnual, period.Timeframe)
	require.NotNil(t, period.Revenue)
	assert.InDelta(t, 260174000000.0, *period.Revenue, 1)
	require.NotNil(t, period.CapitalExpenditures)
	require.NotNil(t, period.Dividends)
	require.NotNil(t, period.EPSBasic)
	assert.InDelta(t, 11.89, *period.EPSBasic, 1e-9)
}

func TestNormalize_FallbackOrder(t *testing.T) {
	// Both the preferred nested path and a legacy flat key are present; the
	// earlier entry in the path list must win.
	raw := map[string]any{
		"end_date":     "2023-03-31",
		"totalRevenue": 1.0,
		"financials": map[string]any{
			"income_statement": map[string]any{
				"revenues": map[string]any{"value": 2.0},
			},
		},
	}

	period, err := Normalize("TEST", raw)
	require.NoError(t, err)
	require.NotNil(t, period.Revenue)
	assert.Equal(t, 2.0, *period.Revenue)
}

func TestNormalize_NullAndGarbageValues(t *testing.T) {
	raw := map[string]any{
		"end_date": "2023-06-30",
		"financials": map[string]any{
			"income_statement": map[string]any{
				"revenues":        map[string]any{"value": nil},
				"net_income_loss": "not-a-number",
			},
			"balance_sheet": map[string]any{
				"equity": map[string]any{"unit": "USD"}, // wrapper without value
			},
		},
	}

	period, err := Normalize("TEST", raw)
	require.NoError(t, err)
	assert.Nil(t, period.Revenue)
	assert.Nil(t, period.NetIncome)
	assert.Nil(t, period.ShareholdersEquity)
}

func TestNormalize_NumericStrings(t *testing.T) {
	raw := map[string]any{
		"end_date": "2023-06-30",
		"financials": map[string]any{
			"income_statement": map[string]any{
				"revenues": map[string]any{"value": "123456.78"},
			},
		},
	}

	period, err := Normalize("TEST", raw)
	require.NoError(t, err)
	require.NotNil(t, period.Revenue)
	assert.InDelta(t, 123456.78, *period.Revenue, 1e-6)
}

func TestNormalize_MissingPeriodEnd(t *testing.T) {
	_, err := Normalize("TEST", map[string]any{"totalRevenue": 1.0})
	assert.ErrorIs(t, err, ErrMalformedFiling)
}
