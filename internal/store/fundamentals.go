package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/equityrank/internal/contracts"
)

// FundamentalsRepository implements contracts.FundamentalsRepository on
// Postgres: the append-only period history plus the derived latest snapshot.
type FundamentalsRepository struct {
	pool *pgxpool.Pool
}

// NewFundamentalsRepository creates a new fundamentals repository.
func NewFundamentalsRepository(pool *pgxpool.Pool) *FundamentalsRepository {
	return &FundamentalsRepository{pool: pool}
}

// UpsertPeriods writes periods keyed by (ticker, period_end, timeframe).
func (r *FundamentalsRepository) UpsertPeriods(ctx context.Context, periods []contracts.FundamentalsPeriod) error {
	if len(periods) == 0 {
		return nil
	}

	query := `
		INSERT INTO fundamentals_periods (
			ticker, period_end, timeframe,
			revenue, net_income, operating_cash_flow, capital_expenditures,
			dividends, shares_outstanding, shareholders_equity, total_liabilities,
			eps_basic, filing_date, fiscal_year, fiscal_period
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (ticker, period_end, timeframe) DO UPDATE SET
			revenue = EXCLUDED.revenue,
			net_income = EXCLUDED.net_income,
			operating_cash_flow = EXCLUDED.operating_cash_flow,
			capital_expenditures = EXCLUDED.capital_expenditures,
			dividends = EXCLUDED.dividends,
			shares_outstanding = EXCLUDED.shares_outstanding,
			shareholders_equity = EXCLUDED.shareholders_equity,
			total_liabilities = EXCLUDED.total_liabilities,
			eps_basic = EXCLUDED.eps_basic,
			filing_date = EXCLUDED.filing_date,
			fiscal_year = EXCLUDED.fiscal_year,
			fiscal_period = EXCLUDED.fiscal_period
	`

	batch := &pgx.Batch{}
	for _, p := range periods {
		batch.Queue(query,
			p.Ticker, p.PeriodEnd, p.Timeframe,
			p.Revenue, p.NetIncome, p.OperatingCashFlow, p.CapitalExpenditures,
			p.Dividends, p.SharesOutstanding, p.ShareholdersEquity, p.TotalLiabilities,
			p.EPSBasic, p.FilingDate, p.FiscalYear, p.FiscalPeriod,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range periods {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to upsert fundamentals period: %w", err)
		}
	}
	return nil
}

// GetHistory returns a ticker's full period history ascending by period_end.
func (r *FundamentalsRepository) GetHistory(ctx context.Context, ticker string) ([]contracts.FundamentalsPeriod, error) {
	query := `
		SELECT
			ticker, period_end, timeframe,
			revenue, net_income, operating_cash_flow, capital_expenditures,
			dividends, shares_outstanding, shareholders_equity, total_liabilities,
			eps_basic, filing_date, fiscal_year, fiscal_period
		FROM fundamentals_periods
		WHERE ticker = $1
		ORDER BY period_end ASC, timeframe ASC
	`

	rows, err := r.pool.Query(ctx, query, ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to query fundamentals history: %w", err)
	}
	defer rows.Close()

	var history []contracts.FundamentalsPeriod
	for rows.Next() {
		var p contracts.FundamentalsPeriod
		if err := rows.Scan(
			&p.Ticker, &p.PeriodEnd, &p.Timeframe,
			&p.Revenue, &p.NetIncome, &p.OperatingCashFlow, &p.CapitalExpenditures,
			&p.Dividends, &p.SharesOutstanding, &p.ShareholdersEquity, &p.TotalLiabilities,
			&p.EPSBasic, &p.FilingDate, &p.FiscalYear, &p.FiscalPeriod,
		); err != nil {
			return nil, fmt.Errorf("failed to scan fundamentals period: %w", err)
		}
		history = append(history, p)
	}
	return history, rows.Err()
}

// UpsertLatest replaces the derived snapshot for latest.Ticker.
func (r *FundamentalsRepository) UpsertLatest(ctx context.Context, latest *contracts.FundamentalsLatest) error {
	query := `
		INSERT INTO fundamentals_latest (
			ticker,
			revenue_ttm, net_income_ttm, operating_cash_flow_ttm,
			capital_expenditures_ttm, dividends_ttm,
			shares_outstanding, shareholders_equity, total_liabilities,
			filing_date, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (ticker) DO UPDATE SET
			revenue_ttm = EXCLUDED.revenue_ttm,
			net_income_ttm = EXCLUDED.net_income_ttm,
			operating_cash_flow_ttm = EXCLUDED.operating_cash_flow_ttm,
			capital_expenditures_ttm = EXCLUDED.capital_expenditures_ttm,
			dividends_ttm = EXCLUDED.dividends_ttm,
			shares_outstanding = EXCLUDED.shares_outstanding,
			shareholders_equity = EXCLUDED.shareholders_equity,
			total_liabilities = EXCLUDED.total_liabilities,
			filing_date = EXCLUDED.filing_date,
			updated_at = NOW()
	`

	_, err := r.pool.Exec(ctx, query,
		latest.Ticker,
		latest.RevenueTTM, latest.NetIncomeTTM, latest.OperatingCashFlowTTM,
		latest.CapitalExpendituresTTM, latest.DividendsTTM,
		latest.SharesOutstanding, latest.ShareholdersEquity, latest.TotalLiabilities,
		latest.FilingDate,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert fundamentals snapshot: %w", err)
	}
	return nil
}

// GetLatest returns the snapshot for ticker, or nil when none exists.
func (r *FundamentalsRepository) GetLatest(ctx context.Context, ticker string) (*contracts.FundamentalsLatest, error) {
	query := `
		SELECT
			ticker,
			revenue_ttm, net_income_ttm, operating_cash_flow_ttm,
			capital_expenditures_ttm, dividends_ttm,
			shares_outstanding, shareholders_equity, total_liabilities,
			filing_date, updated_at
		FROM fundamentals_latest
		WHERE ticker = $1
	`

	var l contracts.FundamentalsLatest
	err := r.pool.QueryRow(ctx, query, ticker).Scan(
		&l.Ticker,
		&l.RevenueTTM, &l.NetIncomeTTM, &l.OperatingCashFlowTTM,
		&l.CapitalExpendituresTTM, &l.DividendsTTM,
		&l.SharesOutstanding, &l.ShareholdersEquity, &l.TotalLiabilities,
		&l.FilingDate, &l.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query fundamentals snapshot: %w", err)
	}
	return &l, nil
}
