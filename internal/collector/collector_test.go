package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/equityrank/internal/contracts"
	"github.com/wonny/equityrank/pkg/logger"
)

type fakeMarketData struct {
	bars      []contracts.DailyBar
	filings   map[string][]map[string]any
	fetchErrs map[string]error
	active    []string
	barCalls  int
}

func (f *fakeMarketData) GroupedDaily(_ context.Context, _ time.Time) ([]contracts.DailyBar, error) {
	f.barCalls++
	return f.bars, nil
}

func (f *fakeMarketData) Financials(_ context.Context, ticker string) ([]map[string]any, error) {
	if err := f.fetchErrs[ticker]; err != nil {
		return nil, err
	}
	return f.filings[ticker], nil
}

func (f *fakeMarketData) ActiveTickers(_ context.Context) ([]string, error) {
	return f.active, nil
}

type fakeBarStore struct {
	stored []contracts.DailyBar
}

func (f *fakeBarStore) UpsertBatch(_ context.Context, bars []contracts.DailyBar) error {
	f.stored = append(f.stored, bars...)
	return nil
}

func (f *fakeBarStore) GetByDate(_ context.Context, date time.Time) ([]contracts.DailyBar, error) {
	var out []contracts.DailyBar
	for _, b := range f.stored {
		if b.Date.Equal(date) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBarStore) GetCloseDaysBefore(_ context.Context, _ time.Time, _ int, _ string) (*float64, error) {
	return nil, nil
}

func (f *fakeBarStore) LatestDate(_ context.Context) (*time.Time, error) { return nil, nil }

type fakeFundsStore struct {
	periods map[string][]contracts.FundamentalsPeriod
	latest  map[string]*contracts.FundamentalsLatest
}

func (f *fakeFundsStore) UpsertPeriods(_ context.Context, periods []contracts.FundamentalsPeriod) error {
	if f.periods == nil {
		f.periods = map[string][]contracts.FundamentalsPeriod{}
	}
	for _, p := range periods {
		f.periods[p.Ticker] = append(f.periods[p.Ticker], p)
	}
	return nil
}

func (f *fakeFundsStore) GetHistory(_ context.Context, ticker string) ([]contracts.FundamentalsPeriod, error) {
	return f.periods[ticker], nil
}

func (f *fakeFundsStore) UpsertLatest(_ context.Context, latest *contracts.FundamentalsLatest) error {
	if f.latest == nil {
		f.latest = map[string]*contracts.FundamentalsLatest{}
	}
	f.latest[latest.Ticker] = latest
	return nil
}

func (f *fakeFundsStore) GetLatest(_ context.Context, ticker string) (*contracts.FundamentalsLatest, error) {
	return f.latest[ticker], nil
}

var collectDate = time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)

func filing(end string, revenue float64) map[string]any {
	return map[string]any{
		"end_date":  end,
		"timeframe": "quarterly",
		"financials": map[string]any{
			"income_statement": map[string]any{
				"revenues": map[string]any{"value": revenue},
			},
		},
	}
}

func TestCollectBars(t *testing.T) {
	md := &fakeMarketData{bars: []contracts.DailyBar{
		{Date: collectDate, Ticker: "AAPL", Open: 170, High: 172, Low: 169, Close: 171, Volume: 5e7},
		{Date: collectDate, Ticker: "MSFT", Open: 402, High: 405, Low: 400, Close: 403, Volume: 2e7},
	}}
	bars := &fakeBarStore{}
	c := New(md, bars, &fakeFundsStore{}, logger.Discard())

	n, err := c.CollectBars(context.Background(), collectDate)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, bars.stored, 2)
}

func TestCollectBars_Holiday(t *testing.T) {
	bars := &fakeBarStore{}
	c := New(&fakeMarketData{}, bars, &fakeFundsStore{}, logger.Discard())

	n, err := c.CollectBars(context.Background(), collectDate)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, bars.stored)
}

func TestCollectFinancials(t *testing.T) {
	md := &fakeMarketData{filings: map[string][]map[string]any{
		"AAPL": {
			filing("2024-03-30", 90e9),
			filing("2023-12-30", 119e9),
			{"garbage": true}, // no period end, dropped
		},
		"EMPTY": nil,
	}}
	funds := &fakeFundsStore{}
	c := New(md, &fakeBarStore{}, funds, logger.Discard())

	result, err := c.CollectFinancials(context.Background(), []string{"AAPL", "EMPTY"})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Tickers)
	assert.Equal(t, 2, result.Periods)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.Malformed)

	require.Len(t, funds.periods["AAPL"], 2)
	latest := funds.latest["AAPL"]
	require.NotNil(t, latest)
	require.NotNil(t, latest.RevenueTTM)
	assert.InDelta(t, 209e9, *latest.RevenueTTM, 1)
}

func TestCollectFinancials_FetchFailureSkipsTickerOnly(t *testing.T) {
	md := &fakeMarketData{
		fetchErrs: map[string]error{
			"GONE": errors.New("404 ticker not found"),
		},
		filings: map[string][]map[string]any{
			"AAPL": {filing("2024-03-30", 90e9)},
		},
	}
	funds := &fakeFundsStore{}
	c := New(md, &fakeBarStore{}, funds, logger.Discard())

	result, err := c.CollectFinancials(context.Background(), []string{"GONE", "AAPL"})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Periods)

	// The failed ticker must not block the one after it.
	require.Len(t, funds.periods["AAPL"], 1)
	require.NotNil(t, funds.latest["AAPL"])
	assert.Empty(t, funds.periods["GONE"])
}

func TestTickersForDate_PrefersStoredBars(t *testing.T) {
	bars := &fakeBarStore{stored: []contracts.DailyBar{
		{Date: collectDate, Ticker: "AAPL"},
		{Date: collectDate, Ticker: "MSFT"},
	}}
	md := &fakeMarketData{active: []string{"TSLA"}}
	c := New(md, bars, &fakeFundsStore{}, logger.Discard())

	tickers, err := c.TickersForDate(context.Background(), collectDate)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, tickers)
}

func TestTickersForDate_FallsBackToListing(t *testing.T) {
	md := &fakeMarketData{active: []string{"AAPL", "MSFT", "TSLA"}}
	c := New(md, &fakeBarStore{}, &fakeFundsStore{}, logger.Discard())

	tickers, err := c.TickersForDate(context.Background(), collectDate)
	require.NoError(t, err)
	assert.Len(t, tickers, 3)
}
