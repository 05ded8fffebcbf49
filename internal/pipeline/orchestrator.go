package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/equityrank/internal/contracts"
	"github.com/wonny/equityrank/internal/factors"
	"github.com/wonny/equityrank/internal/fundamentals"
	"github.com/wonny/equityrank/internal/ranking"
	"github.com/wonny/equityrank/pkg/logger"
)

// ErrNoBars marks a date with no cross-section at all. Scoring cannot
// proceed, and an empty result set must never be persisted as if valid.
var ErrNoBars = errors.New("no bars for date")

// momentumLookbackDays is the calendar-day lookback for the momentum factor.
const momentumLookbackDays = 7

// Orchestrator runs the per-date scoring pipeline: fundamentals derivation,
// per-ticker factor computation, cross-sectional normalization, composite
// ranking, atomic persistence. Runs are synchronous and idempotent; a rerun
// with unchanged inputs produces identical rows.
type Orchestrator struct {
	bars     contracts.BarRepository
	funds    contracts.FundamentalsRepository
	scores   contracts.ScoreRepository
	universe contracts.UniverseRepository
	ranker   *ranking.Ranker
	logger   *logger.Logger
}

// RunResult summarizes one date's scoring run.
type RunResult struct {
	Date         time.Time
	Tickers      int // bars in the cross-section
	Scored       int // rows persisted
	NoFinancials int // tickers scored on technical factors only
	Duration     time.Duration
}

// NewOrchestrator creates a pipeline orchestrator.
func NewOrchestrator(
	bars contracts.BarRepository,
	funds contracts.FundamentalsRepository,
	scores contracts.ScoreRepository,
	universe contracts.UniverseRepository,
	ranker *ranking.Ranker,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		bars:     bars,
		funds:    funds,
		scores:   scores,
		universe: universe,
		ranker:   ranker,
		logger:   log,
	}
}

// Run scores one date. The fundamentals snapshot for every ticker is
// re-derived before its factors are computed, and all factor computation
// completes before cross-sectional normalization begins.
func (o *Orchestrator) Run(ctx context.Context, date time.Time) (*RunResult, error) {
	start := time.Now()

	bars, err := o.bars.GetByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("load bars for %s: %w", date.Format("2006-01-02"), err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoBars, date.Format("2006-01-02"))
	}

	o.logger.WithFields(map[string]interface{}{
		"date":    date.Format("2006-01-02"),
		"tickers": len(bars),
	}).Info("Starting scoring run")

	result := &RunResult{Date: date, Tickers: len(bars)}

	crossSection := make([]contracts.TickerFactors, 0, len(bars))
	for _, bar := range bars {
		tf, hasFinancials := o.computeTicker(ctx, date, bar)
		if !hasFinancials {
			result.NoFinancials++
		}
		crossSection = append(crossSection, tf)
	}

	// Membership snapshot feeds only the query layer's filter join; a
	// failure here must not abort the scoring run.
	if err := o.universe.Snapshot(ctx, date); err != nil {
		o.logger.WithError(err).Warn("Universe snapshot failed")
	}

	rows := o.ranker.Rank(date, crossSection)

	if err := o.scores.ReplaceForDate(ctx, date, rows); err != nil {
		return nil, fmt.Errorf("persist scores for %s: %w", date.Format("2006-01-02"), err)
	}
	result.Scored = len(rows)
	result.Duration = time.Since(start)

	o.logger.WithFields(map[string]interface{}{
		"date":          date.Format("2006-01-02"),
		"scored":        result.Scored,
		"no_financials": result.NoFinancials,
		"duration":      result.Duration,
	}).Info("Scoring run completed")

	return result, nil
}

// computeTicker derives one ticker's fundamentals snapshot and raw factors.
// Every failure on the fundamentals side degrades to technical-only factors;
// a single ticker never aborts the date.
func (o *Orchestrator) computeTicker(ctx context.Context, date time.Time, bar contracts.DailyBar) (contracts.TickerFactors, bool) {
	var latest *contracts.FundamentalsLatest
	var cagr *float64

	history, err := o.funds.GetHistory(ctx, bar.Ticker)
	if err != nil {
		o.logger.WithError(err).WithField("ticker", bar.Ticker).Warn("Failed to load fundamentals history")
	}

	if len(history) > 0 {
		latest = fundamentals.BuildLatest(bar.Ticker, history)
		if latest != nil {
			if err := o.funds.UpsertLatest(ctx, latest); err != nil {
				o.logger.WithError(err).WithField("ticker", bar.Ticker).Warn("Failed to persist fundamentals snapshot")
			}
		}
		cagr = fundamentals.EPSGrowth3Y(history)
	}
	if latest == nil {
		// A history read failure still leaves the snapshot a previous run
		// persisted; valuation degrades only when that is missing too.
		stored, err := o.funds.GetLatest(ctx, bar.Ticker)
		if err != nil {
			o.logger.WithError(err).WithField("ticker", bar.Ticker).Warn("Failed to load fundamentals snapshot")
		}
		latest = stored
	}
	if latest == nil {
		o.logger.WithField("ticker", bar.Ticker).Debug("no financials")
	}

	prevClose, err := o.bars.GetCloseDaysBefore(ctx, date, momentumLookbackDays, bar.Ticker)
	if err != nil {
		o.logger.WithError(err).WithField("ticker", bar.Ticker).Warn("Failed to load prior-week close")
		prevClose = nil
	}

	return contracts.TickerFactors{
		Ticker:  bar.Ticker,
		Factors: factors.Compute(bar, prevClose, latest, cagr),
	}, latest != nil
}
