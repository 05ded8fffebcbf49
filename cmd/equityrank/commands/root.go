package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "equityrank",
	Short: "Equityrank - daily factor scoring for US equities",
	Long: `Equityrank CLI

Collects daily bars and financial filings, computes per-ticker factors,
ranks the cross-section by weighted z-score composite, and serves the
results over a query API.

Usage:
  go run ./cmd/equityrank [command]

Examples:
  go run ./cmd/equityrank migrate
  go run ./cmd/equityrank fetch --date 2024-06-14
  go run ./cmd/equityrank score --date 2024-06-14
  go run ./cmd/equityrank api
  go run ./cmd/equityrank scheduler`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
