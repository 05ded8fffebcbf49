package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/equityrank/internal/contracts"
)

// ScoreRepository implements contracts.ScoreRepository on Postgres.
type ScoreRepository struct {
	pool *pgxpool.Pool
}

// NewScoreRepository creates a new score repository.
func NewScoreRepository(pool *pgxpool.Pool) *ScoreRepository {
	return &ScoreRepository{pool: pool}
}

// ReplaceForDate atomically replaces all score rows for a date. The delete
// and inserts share one transaction so a concurrent reader sees either the
// previous complete set or the new one.
func (r *ScoreRepository) ReplaceForDate(ctx context.Context, date time.Time, rows []contracts.ScoreRow) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM scores WHERE date = $1`, date); err != nil {
		return fmt.Errorf("failed to clear scores for date: %w", err)
	}

	query := `
		INSERT INTO scores (
			date, ticker, composite,
			momentum, volatility, volume, vwap_dev,
			pe, pb, de, fcf_yield, peg, peg3, ps, roe, dividend_yield
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	batch := &pgx.Batch{}
	for _, row := range rows {
		f := row.Factors
		batch.Queue(query,
			date, row.Ticker, row.Composite,
			f.Momentum, f.Volatility, f.Volume, f.VWAPDev,
			f.PE, f.PB, f.DE, f.FCFYield, f.PEG, f.PEG3, f.PS, f.ROE, f.DividendYield,
		)
	}

	results := tx.SendBatch(ctx, batch)
	for range rows {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("failed to insert score row: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to flush score batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit scores: %w", err)
	}
	return nil
}

// LatestDate returns the most recent scored date, or nil.
func (r *ScoreRepository) LatestDate(ctx context.Context) (*time.Time, error) {
	var latest *time.Time
	err := r.pool.QueryRow(ctx, `SELECT MAX(date) FROM scores`).Scan(&latest)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest scored date: %w", err)
	}
	return latest, nil
}
