package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hotelops/folio-ledger/pkg/accounts"
	"github.com/hotelops/folio-ledger/pkg/batch"
	"github.com/hotelops/folio-ledger/pkg/config"
	"github.com/hotelops/folio-ledger/pkg/db"
	"github.com/hotelops/folio-ledger/pkg/ledger"
	"github.com/hotelops/folio-ledger/pkg/pms"
)

var (
	dateFrom string
	dateTo   string
	daysBack int
	dryRun   bool
)

const windowLayout = "2006-01-02 15:04:05"

// syncCmd represents the sync command.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile a window of platform transactions into the ledger",
	Long: `Fetch invoices, receipts and refunds from the booking platform for a
time window, reconcile them per revenue date and commit one balanced
journal batch per date.

The window is either explicit (--from/--to, "YYYY-MM-DD HH:MM:SS") or a
lookback anchored at today noon (--days-back). The platform fetch starts
one day before the window so before-noon records of the first revenue
day are captured.

Already-processed invoice and voucher numbers are filtered out, so
re-running the same window writes nothing new.

Example:
  folio-sync sync --from "2024-01-01 12:00:00" --to "2024-03-01 12:00:00"
  folio-sync sync --days-back 7 --dry-run`,
	Run: runSync,
}

func init() {
	syncCmd.Flags().StringVar(&dateFrom, "from", "", "window start (YYYY-MM-DD HH:MM:SS)")
	syncCmd.Flags().StringVar(&dateTo, "to", "", "window end (YYYY-MM-DD HH:MM:SS)")
	syncCmd.Flags().IntVar(&daysBack, "days-back", 0, "lookback days from today noon (default from config)")
	syncCmd.Flags().BoolVar(&dryRun, "dry-run", false, "print batches without writing")
}

func runSync(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(getConfigFile())
	exitOnError(err, "failed to load configuration")

	if err := cfg.Validate(
		[]string{"pms", "apiKey"},
		[]string{"pms", "secretKey"},
		[]string{"pms", "baseUrl"},
		[]string{"ledger", "dbPath"},
		[]string{"ledger", "document"},
	); err != nil {
		exitOnError(err, "invalid configuration")
	}

	windowStart, windowEnd, err := resolveWindow(cfg)
	exitOnError(err, "invalid window")

	// One extra fetch day so records created before noon on the first
	// window day still reach their (previous-day) revenue date.
	fetchStart := windowStart.AddDate(0, 0, -1)

	slog.Info("Starting sync",
		"window_start", windowStart.Format(windowLayout),
		"window_end", windowEnd.Format(windowLayout),
		"fetch_start", fetchStart.Format(windowLayout),
		"dry_run", dryRun,
	)

	cutoff, err := ledger.PolicyFromName(cfg.Engine.CutoffPolicy)
	exitOnError(err, "invalid cutoff policy")

	chart, err := accounts.Load(cfg.Ledger.ChartPath)
	exitOnError(err, "failed to load chart of accounts")

	conn, err := db.Open(cfg.Ledger.DBPath)
	exitOnError(err, "failed to open ledger database")
	defer conn.Close()

	client := pms.NewClient(pms.ClientConfig{
		BaseURL:   cfg.PMS.BaseURL,
		APIKey:    cfg.PMS.APIKey,
		SecretKey: cfg.PMS.SecretKey,
		Timeout:   time.Duration(cfg.PMS.TimeoutSeconds) * time.Second,
	})

	// Fetch failures are fatal for the whole run; no partial processing.
	invoices, err := client.FetchInvoices(fetchStart, windowEnd)
	exitOnError(err, "failed to fetch invoices")

	receipts, err := client.FetchReceipts(fetchStart, windowEnd)
	exitOnError(err, "failed to fetch receipts")

	refunds, err := client.FetchRefunds(fetchStart, windowEnd)
	exitOnError(err, "failed to fetch refunds")

	if len(invoices) == 0 && len(receipts) == 0 && len(refunds) == 0 {
		fmt.Println("No data retrieved from platform")
		return
	}

	coordinator := batch.New(conn, chart, batch.Options{
		Document:          cfg.Ledger.Document,
		Currency:          cfg.Ledger.Currency,
		CutoffPolicy:      cutoff,
		ExactTolerance:    cfg.Engine.ExactTolerance,
		UnderpayTolerance: cfg.Engine.UnderpayTolerance,
		Epsilon:           cfg.Engine.BalanceEpsilon,
		DryRun:            dryRun,
	})

	summary, err := coordinator.Run(invoices, receipts, refunds)
	exitOnError(err, "run failed")

	printSummary(summary)

	if summary.FailedDates > 0 {
		slog.Error("Sync finished with failures", "failed_dates", summary.FailedDates)
		os.Exit(1)
	}
	slog.Info("Sync completed",
		"committed_dates", summary.CommittedDates,
		"invoices", summary.ProcessedInvoices,
	)
}

// resolveWindow computes the processing window: explicit flags win,
// otherwise a days-back lookback anchored at today 12:00.
func resolveWindow(cfg *config.Config) (time.Time, time.Time, error) {
	if (dateFrom == "") != (dateTo == "") {
		return time.Time{}, time.Time{}, fmt.Errorf("--from and --to must be given together")
	}

	if dateFrom != "" {
		start, err := time.ParseInLocation(windowLayout, dateFrom, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from: %w", err)
		}
		end, err := time.ParseInLocation(windowLayout, dateTo, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --to: %w", err)
		}
		if !end.After(start) {
			return time.Time{}, time.Time{}, fmt.Errorf("--to must be after --from")
		}
		return start, end, nil
	}

	span := daysBack
	if span == 0 {
		span = cfg.Engine.DaysBack
	}

	now := time.Now()
	end := time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, now.Location())
	start := end.AddDate(0, 0, -span)
	return start, end, nil
}

func printSummary(summary *batch.Summary) {
	fmt.Println("\n=== Processing Summary ===")
	fmt.Printf("Revenue dates:       %d\n", len(summary.Dates))
	fmt.Printf("Committed dates:     %d\n", summary.CommittedDates)
	fmt.Printf("Failed dates:        %d\n", summary.FailedDates)
	fmt.Printf("Invoices processed:  %d\n", summary.ProcessedInvoices)
	fmt.Printf("Skipped (processed): %d\n", summary.SkippedProcessed)
	for _, dr := range summary.Dates {
		if dr.State == batch.StateFailed {
			fmt.Printf("  %s FAILED: %v\n", dr.Date.Format("2006-01-02"), dr.Err)
		}
	}
	fmt.Println()
}
