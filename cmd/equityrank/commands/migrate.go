package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/equityrank/db"
	"github.com/wonny/equityrank/pkg/config"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Brings the database schema up to date using the embedded
migration files.

Example:
  go run ./cmd/equityrank migrate`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := db.Migrate(cfg.Database.URL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	fmt.Println("Migrations applied")
	return nil
}
