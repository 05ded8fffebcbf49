package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/equityrank/internal/api"
	"github.com/wonny/equityrank/internal/api/handlers"
	"github.com/wonny/equityrank/pkg/config"
	"github.com/wonny/equityrank/pkg/database"
	"github.com/wonny/equityrank/pkg/logger"
	"github.com/wonny/equityrank/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the query API server",
	Long: `Starts the REST API server for querying persisted scores.

Endpoints:
  GET /health            - Health check
  GET /api/scores        - Ranked scores for a date, with filters
  GET /api/scores/dates  - Available scored dates

Example:
  go run ./cmd/equityrank api
  go run ./cmd/equityrank api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if apiPort != "" {
		cfg.Port = apiPort
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	log.Info("Connected to database")

	redisClient := redis.New(cfg)
	defer redisClient.Close()
	cache := redis.NewCache(redisClient, "equityrank")

	scoresHandler := handlers.NewScoresHandler(db.Pool, cache, log)
	router := api.NewRouter(scoresHandler, log)

	fmt.Printf("Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	return api.NewServer(cfg.Port, router, log).Run()
}
