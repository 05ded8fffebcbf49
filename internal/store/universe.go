package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/equityrank/internal/contracts"
)

// UniverseRepository implements contracts.UniverseRepository on Postgres.
// Snapshots are derived entirely inside the database from bars and the
// fundamentals snapshot already present.
type UniverseRepository struct {
	pool *pgxpool.Pool
}

// NewUniverseRepository creates a new universe repository.
func NewUniverseRepository(pool *pgxpool.Pool) *UniverseRepository {
	return &UniverseRepository{pool: pool}
}

// Snapshot derives and stores the membership rows for a date. Market cap is
// close times shares outstanding (null when shares are unknown); avg_volume
// is the trailing 20-trading-day average ending at the date.
func (r *UniverseRepository) Snapshot(ctx context.Context, date time.Time) error {
	query := `
		INSERT INTO universe (date, ticker, market_cap, avg_volume)
		SELECT
			b.date,
			b.ticker,
			b.close * fl.shares_outstanding AS market_cap,
			vol.avg_volume
		FROM bars b
		LEFT JOIN fundamentals_latest fl ON fl.ticker = b.ticker
		LEFT JOIN LATERAL (
			SELECT AVG(v.volume) AS avg_volume
			FROM (
				SELECT volume
				FROM bars
				WHERE ticker = b.ticker AND date <= b.date
				ORDER BY date DESC
				LIMIT 20
			) v
		) vol ON TRUE
		WHERE b.date = $1
		ON CONFLICT (date, ticker) DO UPDATE SET
			market_cap = EXCLUDED.market_cap,
			avg_volume = EXCLUDED.avg_volume
	`

	if _, err := r.pool.Exec(ctx, query, date); err != nil {
		return fmt.Errorf("failed to snapshot universe: %w", err)
	}
	return nil
}

var _ contracts.BarRepository = (*BarRepository)(nil)
var _ contracts.FundamentalsRepository = (*FundamentalsRepository)(nil)
var _ contracts.ScoreRepository = (*ScoreRepository)(nil)
var _ contracts.UniverseRepository = (*UniverseRepository)(nil)
