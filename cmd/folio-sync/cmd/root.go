// Package cmd provides CLI commands for folio-sync.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "folio-sync",
	Short: "Reconcile guest-folio invoices into balanced ledger batches",
	Long: `folio-sync pulls invoices, receipt vouchers and refund vouchers from
the booking platform, reconciles them per revenue date and posts one
balanced double-entry journal batch per date to the ledger store.

It supports:
- A noon or identity revenue-date cutoff
- Tolerance-based payment matching with clearing accounts
- Idempotent re-runs via a processed-record tracking table
- Dry-run mode for inspecting batches without writes

Example:
  folio-sync sync --from "2024-01-01 12:00:00" --to "2024-03-01 12:00:00"
  folio-sync sync --days-back 7
  folio-sync stats`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logLevel := slog.LevelInfo
		if debug {
			logLevel = slog.LevelDebug
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		}))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(statsCmd)
}

// getConfigFile returns the configured .env path, empty for the default.
func getConfigFile() string {
	return cfgFile
}

// exitOnError logs the error and exits non-zero.
func exitOnError(err error, msg string) {
	if err != nil {
		slog.Error(msg, "error", err)
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
		os.Exit(1)
	}
}
