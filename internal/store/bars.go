package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/equityrank/internal/contracts"
)

// BarRepository implements contracts.BarRepository on Postgres.
type BarRepository struct {
	pool *pgxpool.Pool
}

// NewBarRepository creates a new bar repository.
func NewBarRepository(pool *pgxpool.Pool) *BarRepository {
	return &BarRepository{pool: pool}
}

// UpsertBatch writes bars with last-write-wins semantics per (date, ticker).
func (r *BarRepository) UpsertBatch(ctx context.Context, bars []contracts.DailyBar) error {
	if len(bars) == 0 {
		return nil
	}

	query := `
		INSERT INTO bars (date, ticker, open, high, low, close, volume, vwap)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (date, ticker) DO UPDATE SET
			open = EXCLUDED.open,
			high = EXCLUDED.high,
			low = EXCLUDED.low,
			close = EXCLUDED.close,
			volume = EXCLUDED.volume,
			vwap = EXCLUDED.vwap
	`

	batch := &pgx.Batch{}
	for _, b := range bars {
		batch.Queue(query, b.Date, b.Ticker, b.Open, b.High, b.Low, b.Close, b.Volume, b.VWAP)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range bars {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to upsert bar: %w", err)
		}
	}
	return nil
}

// GetByDate returns every bar for a date, ordered by ticker.
func (r *BarRepository) GetByDate(ctx context.Context, date time.Time) ([]contracts.DailyBar, error) {
	query := `
		SELECT date, ticker, open, high, low, close, volume, vwap
		FROM bars
		WHERE date = $1
		ORDER BY ticker
	`

	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query bars: %w", err)
	}
	defer rows.Close()

	var bars []contracts.DailyBar
	for rows.Next() {
		var b contracts.DailyBar
		if err := rows.Scan(&b.Date, &b.Ticker, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume, &b.VWAP); err != nil {
			return nil, fmt.Errorf("failed to scan bar: %w", err)
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// GetCloseDaysBefore returns the close of the bar exactly n calendar days
// before date, or nil when no bar exists on that day.
func (r *BarRepository) GetCloseDaysBefore(ctx context.Context, date time.Time, n int, ticker string) (*float64, error) {
	query := `
		SELECT close
		FROM bars
		WHERE ticker = $1 AND date = $2
	`

	var close float64
	err := r.pool.QueryRow(ctx, query, ticker, date.AddDate(0, 0, -n)).Scan(&close)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query prior close: %w", err)
	}
	return &close, nil
}

// LatestDate returns the most recent date with any bars, or nil.
func (r *BarRepository) LatestDate(ctx context.Context) (*time.Time, error) {
	var latest *time.Time
	err := r.pool.QueryRow(ctx, `SELECT MAX(date) FROM bars`).Scan(&latest)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest bar date: %w", err)
	}
	return latest, nil
}
