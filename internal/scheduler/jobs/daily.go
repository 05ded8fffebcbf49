package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/equityrank/internal/collector"
	"github.com/wonny/equityrank/internal/pipeline"
	"github.com/wonny/equityrank/pkg/logger"
)

// DailyScoreJob collects the day's bars and fundamentals, then scores the
// date. Holidays are a no-op, not a failure, so the retry loop never hammers
// the upstream on a closed market.
type DailyScoreJob struct {
	collector    *collector.Collector
	orchestrator *pipeline.Orchestrator
	schedule     string
	logger       *logger.Logger
}

// NewDailyScoreJob creates the daily fetch-then-score job.
func NewDailyScoreJob(c *collector.Collector, o *pipeline.Orchestrator, schedule string, log *logger.Logger) *DailyScoreJob {
	return &DailyScoreJob{
		collector:    c,
		orchestrator: o,
		schedule:     schedule,
		logger:       log,
	}
}

// Name returns the job name.
func (j *DailyScoreJob) Name() string {
	return "daily_score"
}

// Schedule returns the cron schedule expression.
func (j *DailyScoreJob) Schedule() string {
	return j.schedule
}

// Run collects and scores today's date.
func (j *DailyScoreJob) Run(ctx context.Context) error {
	now := time.Now().UTC()
	date := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	barCount, err := j.collector.CollectBars(ctx, date)
	if err != nil {
		return fmt.Errorf("collect bars: %w", err)
	}
	if barCount == 0 {
		j.logger.WithField("date", date.Format("2006-01-02")).Info("Market closed, skipping scoring")
		return nil
	}

	tickers, err := j.collector.TickersForDate(ctx, date)
	if err != nil {
		return fmt.Errorf("list tickers: %w", err)
	}
	if _, err := j.collector.CollectFinancials(ctx, tickers); err != nil {
		return fmt.Errorf("collect financials: %w", err)
	}

	result, err := j.orchestrator.Run(ctx, date)
	if err != nil {
		if errors.Is(err, pipeline.ErrNoBars) {
			j.logger.WithField("date", date.Format("2006-01-02")).Warn("No bars to score")
			return nil
		}
		return fmt.Errorf("score date: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"date":     result.Date.Format("2006-01-02"),
		"scored":   result.Scored,
		"duration": result.Duration,
	}).Info("Daily scoring complete")
	return nil
}
