package contracts

import (
	"context"
	"time"
)

// BarRepository stores and serves daily bars.
type BarRepository interface {
	// UpsertBatch writes bars with last-write-wins semantics per (date, ticker).
	UpsertBatch(ctx context.Context, bars []DailyBar) error

	// GetByDate returns every bar for a date, ordered by ticker.
	GetByDate(ctx context.Context, date time.Time) ([]DailyBar, error)

	// GetCloseDaysBefore returns the close of the bar exactly n calendar days
	// before date, or nil when no bar exists on that day.
	GetCloseDaysBefore(ctx context.Context, date time.Time, n int, ticker string) (*float64, error)

	// LatestDate returns the most recent date with any bars, or nil.
	LatestDate(ctx context.Context) (*time.Time, error)
}

// FundamentalsRepository stores normalized financial-statement periods and
// the derived per-ticker latest snapshot.
type FundamentalsRepository interface {
	// UpsertPeriods writes periods keyed by (ticker, period_end, timeframe).
	UpsertPeriods(ctx context.Context, periods []FundamentalsPeriod) error

	// GetHistory returns a ticker's full period history ascending by period_end.
	GetHistory(ctx context.Context, ticker string) ([]FundamentalsPeriod, error)

	// UpsertLatest replaces the derived snapshot for latest.Ticker.
	UpsertLatest(ctx context.Context, latest *FundamentalsLatest) error

	// GetLatest returns the snapshot for ticker, or nil when none exists.
	GetLatest(ctx context.Context, ticker string) (*FundamentalsLatest, error)
}

// ScoreRepository owns persisted score rows.
type ScoreRepository interface {
	// ReplaceForDate atomically replaces all score rows for a date. A reader
	// observes either the previous complete set or the new one, never a
	// partial write.
	ReplaceForDate(ctx context.Context, date time.Time, rows []ScoreRow) error

	// LatestDate returns the most recent scored date, or nil.
	LatestDate(ctx context.Context) (*time.Time, error)
}

// UniverseRepository maintains per-date membership snapshots. Reads happen
// in the query layer's SQL joins, so the contract is write-only.
type UniverseRepository interface {
	// Snapshot derives and stores the universe rows for a date from bars and
	// fundamentals already in the store.
	Snapshot(ctx context.Context, date time.Time) error
}
