package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hotelops/folio-ledger/pkg/config"
	"github.com/hotelops/folio-ledger/pkg/db"
)

// statsCmd represents the stats command.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Display ledger sync statistics",
	Long: `Display statistics about committed batches and processed records.

Shows:
- Committed batch and journal line counts
- Processed invoice, receipt and refund counts
- Last processing timestamp

Example:
  folio-sync stats`,
	Run: runStats,
}

func runStats(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(getConfigFile())
	exitOnError(err, "failed to load configuration")

	if err := cfg.Validate([]string{"ledger", "dbPath"}); err != nil {
		exitOnError(err, "invalid configuration")
	}

	slog.Debug("Opening database", "path", cfg.Ledger.DBPath)
	conn, err := db.Open(cfg.Ledger.DBPath)
	exitOnError(err, "failed to open ledger database")
	defer conn.Close()

	tracking := db.NewTrackingStore(conn)
	batches := db.NewBatchStore(conn)

	stats, err := tracking.GetStats()
	exitOnError(err, "failed to get tracking statistics")

	batchCount, err := batches.BatchCount()
	exitOnError(err, "failed to count batches")

	lineCount, err := batches.LineCount()
	exitOnError(err, "failed to count journal lines")

	fmt.Println("\n=== Ledger Sync Statistics ===")
	fmt.Printf("Committed batches:   %d\n", batchCount)
	fmt.Printf("Journal lines:       %d\n", lineCount)
	fmt.Printf("Processed invoices:  %d\n", stats.Invoices)
	fmt.Printf("Processed receipts:  %d\n", stats.Receipts)
	fmt.Printf("Processed refunds:   %d\n", stats.Refunds)
	if stats.LastRun.Valid {
		fmt.Printf("Last processed:      %s\n", stats.LastRun.String)
	} else {
		fmt.Printf("Last processed:      (never)\n")
	}
	fmt.Println()
}
