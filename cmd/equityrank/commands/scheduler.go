package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/equityrank/internal/collector"
	"github.com/wonny/equityrank/internal/external/polygon"
	"github.com/wonny/equityrank/internal/pipeline"
	"github.com/wonny/equityrank/internal/ranking"
	"github.com/wonny/equityrank/internal/scheduler"
	"github.com/wonny/equityrank/internal/scheduler/jobs"
	"github.com/wonny/equityrank/internal/store"
	"github.com/wonny/equityrank/pkg/config"
	"github.com/wonny/equityrank/pkg/database"
	"github.com/wonny/equityrank/pkg/logger"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the daily scoring scheduler",
	Long: `Starts the scheduler daemon.

Registered jobs:
  daily_score - fetch bars and financials, then score the date
                (schedule from SCORE_SCHEDULE, default weekdays 17:30)

Example:
  go run ./cmd/equityrank scheduler`,
	RunE: runScheduler,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	weights, err := loadWeights(cfg)
	if err != nil {
		return err
	}

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	bars := store.NewBarRepository(db.Pool)
	funds := store.NewFundamentalsRepository(db.Pool)

	client := polygon.New(cfg.MarketData, log)
	col := collector.New(client, bars, funds, log)

	orchestrator := pipeline.NewOrchestrator(
		bars,
		funds,
		store.NewScoreRepository(db.Pool),
		store.NewUniverseRepository(db.Pool),
		ranking.NewRanker(weights, log),
		log,
	)

	sched := scheduler.New(log)
	if err := sched.AddJob(jobs.NewDailyScoreJob(col, orchestrator, cfg.ScoreSchedule, log)); err != nil {
		return fmt.Errorf("register job: %w", err)
	}

	sched.Start()
	fmt.Println("Scheduler running, press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}
