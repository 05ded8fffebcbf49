package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/equityrank/internal/pipeline"
	"github.com/wonny/equityrank/internal/ranking"
	"github.com/wonny/equityrank/internal/store"
	"github.com/wonny/equityrank/pkg/config"
	"github.com/wonny/equityrank/pkg/database"
	"github.com/wonny/equityrank/pkg/logger"
)

// scoreCmd represents the score command
var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score one date from stored data",
	Long: `Computes factors, z-scores, and the weighted composite for every
ticker with a bar on the date, then atomically replaces the date's
stored scores. Re-running the same date is idempotent.

Example:
  go run ./cmd/equityrank score --date 2024-06-14
  go run ./cmd/equityrank score --date 2024-06-14 --top 20`,
	RunE: runScore,
}

var (
	scoreDate string
	scoreTop  int
)

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringVar(&scoreDate, "date", "", "trading date YYYY-MM-DD (default today)")
	scoreCmd.Flags().IntVar(&scoreTop, "top", 10, "number of top-ranked tickers to print")
}

func runScore(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	date, err := resolveDateFlag(scoreDate)
	if err != nil {
		return err
	}

	weights, err := loadWeights(cfg)
	if err != nil {
		return err
	}

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	orchestrator := pipeline.NewOrchestrator(
		store.NewBarRepository(db.Pool),
		store.NewFundamentalsRepository(db.Pool),
		store.NewScoreRepository(db.Pool),
		store.NewUniverseRepository(db.Pool),
		ranking.NewRanker(weights, log),
		log,
	)

	ctx := context.Background()
	result, err := orchestrator.Run(ctx, date)
	if err != nil {
		return err
	}

	fmt.Printf("Scored %d of %d tickers for %s (%d without financials) in %s\n",
		result.Scored, result.Tickers, result.Date.Format("2006-01-02"),
		result.NoFinancials, result.Duration.Round(1e6))

	if scoreTop > 0 {
		if err := printTopScores(ctx, db, result.Date.Format("2006-01-02"), scoreTop); err != nil {
			return err
		}
	}
	return nil
}

// loadWeights reads the configured weights file, or falls back to defaults.
func loadWeights(cfg *config.Config) (ranking.Weights, error) {
	if cfg.WeightsPath == "" {
		return ranking.DefaultWeights(), nil
	}
	weights, err := ranking.LoadWeights(cfg.WeightsPath)
	if err != nil {
		return ranking.Weights{}, fmt.Errorf("load weights: %w", err)
	}
	return weights, nil
}

func printTopScores(ctx context.Context, db *database.DB, date string, n int) error {
	rows, err := db.Pool.Query(ctx, `
		SELECT ticker, composite
		FROM scores
		WHERE date = $1
		ORDER BY composite DESC, ticker ASC
		LIMIT $2
	`, date, n)
	if err != nil {
		return fmt.Errorf("query top scores: %w", err)
	}
	defer rows.Close()

	fmt.Printf("\nTop %d for %s:\n", n, date)
	rank := 0
	for rows.Next() {
		var ticker string
		var composite float64
		if err := rows.Scan(&ticker, &composite); err != nil {
			return err
		}
		rank++
		fmt.Printf("  %3d. %-8s %+.4f\n", rank, ticker, composite)
	}
	return rows.Err()
}
