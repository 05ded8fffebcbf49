package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/equityrank/internal/contracts"
	"github.com/wonny/equityrank/internal/fundamentals"
	"github.com/wonny/equityrank/pkg/logger"
)

// MarketData is the upstream API surface the collector consumes.
// *polygon.Client is the production implementation.
type MarketData interface {
	GroupedDaily(ctx context.Context, date time.Time) ([]contracts.DailyBar, error)
	Financials(ctx context.Context, ticker string) ([]map[string]any, error)
	ActiveTickers(ctx context.Context) ([]string, error)
}

// Collector pulls raw market data from the upstream API and lands it in the
// store in canonical form.
type Collector struct {
	client MarketData
	bars   contracts.BarRepository
	funds  contracts.FundamentalsRepository
	logger *logger.Logger
}

// New creates a collector.
func New(client MarketData, bars contracts.BarRepository, funds contracts.FundamentalsRepository, log *logger.Logger) *Collector {
	return &Collector{
		client: client,
		bars:   bars,
		funds:  funds,
		logger: log,
	}
}

// CollectBars fetches and stores all daily bars for one date. A market
// holiday stores nothing and returns zero.
func (c *Collector) CollectBars(ctx context.Context, date time.Time) (int, error) {
	bars, err := c.client.GroupedDaily(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("fetch bars for %s: %w", date.Format("2006-01-02"), err)
	}
	if len(bars) == 0 {
		c.logger.WithField("date", date.Format("2006-01-02")).Warn("No bars returned, likely a market holiday")
		return 0, nil
	}

	if err := c.bars.UpsertBatch(ctx, bars); err != nil {
		return 0, fmt.Errorf("store bars for %s: %w", date.Format("2006-01-02"), err)
	}

	c.logger.WithFields(map[string]interface{}{
		"date": date.Format("2006-01-02"),
		"bars": len(bars),
	}).Info("Collected daily bars")
	return len(bars), nil
}

// FinancialsResult summarizes one financials collection run.
type FinancialsResult struct {
	Tickers   int
	Periods   int
	Skipped   int // tickers with no usable filings
	Failed    int // tickers whose upstream fetch failed
	Malformed int // filings the normalizer rejected
}

// CollectFinancials fetches, normalizes, and stores filings for each ticker,
// then refreshes the derived per-ticker snapshot. Upstream failures and
// unusable filings are per-ticker: logged, counted, and skipped, so one
// delisted ticker never blocks the rest. Only store errors abort the run.
func (c *Collector) CollectFinancials(ctx context.Context, tickers []string) (*FinancialsResult, error) {
	result := &FinancialsResult{Tickers: len(tickers)}

	for _, ticker := range tickers {
		filings, err := c.client.Financials(ctx, ticker)
		if err != nil {
			result.Failed++
			c.logger.WithError(err).WithField("ticker", ticker).Warn("Failed to fetch financials")
			continue
		}

		periods := make([]contracts.FundamentalsPeriod, 0, len(filings))
		for _, filing := range filings {
			period, err := fundamentals.Normalize(ticker, filing)
			if err != nil {
				result.Malformed++
				c.logger.WithField("ticker", ticker).Debug("Skipping malformed filing")
				continue
			}
			periods = append(periods, *period)
		}

		if len(periods) == 0 {
			result.Skipped++
			c.logger.WithField("ticker", ticker).Debug("No financials")
			continue
		}

		if err := c.funds.UpsertPeriods(ctx, periods); err != nil {
			return result, fmt.Errorf("store periods for %s: %w", ticker, err)
		}
		result.Periods += len(periods)

		// Rebuild the snapshot from the full stored history, not just this
		// fetch, so partial re-collections stay consistent.
		history, err := c.funds.GetHistory(ctx, ticker)
		if err != nil {
			return result, fmt.Errorf("load history for %s: %w", ticker, err)
		}
		if latest := fundamentals.BuildLatest(ticker, history); latest != nil {
			if err := c.funds.UpsertLatest(ctx, latest); err != nil {
				return result, fmt.Errorf("store snapshot for %s: %w", ticker, err)
			}
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"tickers":   result.Tickers,
		"periods":   result.Periods,
		"skipped":   result.Skipped,
		"failed":    result.Failed,
		"malformed": result.Malformed,
	}).Info("Collected financials")
	return result, nil
}

// TickersForDate returns the tickers to collect financials for. Bars already
// stored for the date define the set; an empty store falls back to the
// upstream active-stock listing.
func (c *Collector) TickersForDate(ctx context.Context, date time.Time) ([]string, error) {
	bars, err := c.bars.GetByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if len(bars) > 0 {
		tickers := make([]string, 0, len(bars))
		for _, b := range bars {
			tickers = append(tickers, b.Ticker)
		}
		return tickers, nil
	}
	return c.client.ActiveTickers(ctx)
}
