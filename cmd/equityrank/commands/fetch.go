package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/equityrank/internal/collector"
	"github.com/wonny/equityrank/internal/external/polygon"
	"github.com/wonny/equityrank/internal/store"
	"github.com/wonny/equityrank/pkg/config"
	"github.com/wonny/equityrank/pkg/database"
	"github.com/wonny/equityrank/pkg/logger"
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Collect bars and financials for a date",
	Long: `Fetches daily bars and financial filings from the upstream API
and stores them in canonical form.

By default both bars and financials are collected. A market holiday
stores nothing and exits cleanly.

Example:
  go run ./cmd/equityrank fetch --date 2024-06-14
  go run ./cmd/equityrank fetch --date 2024-06-14 --bars-only`,
	RunE: runFetch,
}

var (
	fetchDate string
	barsOnly  bool
)

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVar(&fetchDate, "date", "", "trading date YYYY-MM-DD (default today)")
	fetchCmd.Flags().BoolVar(&barsOnly, "bars-only", false, "skip financials collection")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	date, err := resolveDateFlag(fetchDate)
	if err != nil {
		return err
	}

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	client := polygon.New(cfg.MarketData, log)
	bars := store.NewBarRepository(db.Pool)
	funds := store.NewFundamentalsRepository(db.Pool)
	col := collector.New(client, bars, funds, log)

	ctx := context.Background()

	barCount, err := col.CollectBars(ctx, date)
	if err != nil {
		return fmt.Errorf("collect bars: %w", err)
	}
	fmt.Printf("Collected %d bars for %s\n", barCount, date.Format("2006-01-02"))

	if barsOnly || barCount == 0 {
		return nil
	}

	tickers, err := col.TickersForDate(ctx, date)
	if err != nil {
		return fmt.Errorf("list tickers: %w", err)
	}

	result, err := col.CollectFinancials(ctx, tickers)
	if err != nil {
		return fmt.Errorf("collect financials: %w", err)
	}
	fmt.Printf("Collected %d periods across %d tickers (%d skipped, %d malformed filings)\n",
		result.Periods, result.Tickers, result.Skipped, result.Malformed)

	return nil
}

// resolveDateFlag parses a --date flag, defaulting to today (UTC).
func resolveDateFlag(raw string) (time.Time, error) {
	if raw == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
	}
	return date, nil
}
