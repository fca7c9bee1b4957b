// Package batch orchestrates the per-revenue-date pipeline: grouping,
// matching, aggregation, journal building and atomic commit.
package batch

import (
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/hotelops/folio-ledger/pkg/accounts"
	"github.com/hotelops/folio-ledger/pkg/db"
	"github.com/hotelops/folio-ledger/pkg/ledger"
	"github.com/hotelops/folio-ledger/pkg/pms"
)

// State is a revenue date's position in the commit lifecycle.
type State string

const (
	StatePending    State = "PENDING"
	StateAggregated State = "AGGREGATED"
	StateBalanced   State = "BALANCED"
	StateCommitted  State = "COMMITTED"
	StateFailed     State = "FAILED"
)

// DateResult reports one revenue date's outcome.
type DateResult struct {
	Date     time.Time
	State    State
	Invoices int
	Lines    int
	Serial   int
	Err      error
}

// Summary reports a whole run.
type Summary struct {
	Dates             []DateResult
	CommittedDates    int
	FailedDates       int
	ProcessedInvoices int
	SkippedProcessed  int
}

// Options configures a Coordinator.
type Options struct {
	Document          string
	Currency          string
	CutoffPolicy      ledger.CutoffPolicy
	ExactTolerance    float64
	UnderpayTolerance float64
	// Epsilon bounds the acceptable residual imbalance of a batch.
	Epsilon float64
	DryRun  bool
}

// Coordinator runs the pipeline date by date, each date inside its own
// database transaction. Dates never share mutable state, so a failed
// date rolls back alone and the run continues.
type Coordinator struct {
	conn     *db.Connection
	batches  *db.BatchStore
	tracking *db.TrackingStore
	matcher  *ledger.Matcher
	builder  *ledger.Builder
	opts     Options

	// now supplies "today" for the unparseable-timestamp fallback.
	now func() time.Time
}

// New creates a Coordinator over an open ledger store and chart.
func New(conn *db.Connection, chart *accounts.Chart, opts Options) *Coordinator {
	if opts.Currency == "" {
		opts.Currency = "001"
	}
	if opts.Epsilon == 0 {
		opts.Epsilon = 0.01
	}
	if opts.CutoffPolicy == nil {
		opts.CutoffPolicy = ledger.NoonCutoff{}
	}
	return &Coordinator{
		conn:     conn,
		batches:  db.NewBatchStore(conn),
		tracking: db.NewTrackingStore(conn),
		matcher:  ledger.NewMatcher(opts.ExactTolerance, opts.UnderpayTolerance),
		builder:  ledger.NewBuilder(chart),
		opts:     opts,
		now:      time.Now,
	}
}

// dated pairs a source record with its assigned revenue date and raw
// timestamp (empty when the timestamp failed to parse).
type datedInvoice struct {
	inv  pms.Invoice
	date time.Time
	raw  string
}

type datedVoucher struct {
	v    pms.Voucher
	date time.Time
	raw  string
}

// Run executes the full pipeline on one fetched window. Records already
// consumed by earlier runs are filtered before matching begins, which
// makes re-running the same window produce nothing new.
func (c *Coordinator) Run(invoices []pms.Invoice, receipts, refunds []pms.Voucher) (*Summary, error) {
	summary := &Summary{}

	newInvoices, skippedInv, err := c.filterInvoices(invoices)
	if err != nil {
		return nil, err
	}
	newReceipts, skippedRec, err := c.filterVouchers(db.RecordTypeReceipt, receipts)
	if err != nil {
		return nil, err
	}
	newRefunds, skippedRef, err := c.filterVouchers(db.RecordTypeRefund, refunds)
	if err != nil {
		return nil, err
	}
	summary.SkippedProcessed = skippedInv + skippedRec + skippedRef
	if summary.SkippedProcessed > 0 {
		slog.Info("Skipped already-processed records", "count", summary.SkippedProcessed)
	}

	invoicesByDate := c.groupInvoices(newInvoices)
	receiptsByDate := c.groupVouchers(newReceipts)
	refundsByDate := c.groupVouchers(newRefunds)

	// Matching looks across the whole window by reservation, regardless
	// of which revenue date a voucher lands on.
	receiptsByReservation := indexByReservation(newReceipts)
	refundsByReservation := indexByReservation(newRefunds)

	dateKeys := make(map[string]bool)
	for key := range invoicesByDate {
		dateKeys[key] = true
	}
	for key := range receiptsByDate {
		dateKeys[key] = true
	}
	for key := range refundsByDate {
		dateKeys[key] = true
	}

	for _, dateKey := range sortedKeys(dateKeys) {
		result := c.processDate(
			dateKey,
			invoicesByDate[dateKey],
			receiptsByDate[dateKey],
			refundsByDate[dateKey],
			receiptsByReservation,
			refundsByReservation,
		)
		summary.Dates = append(summary.Dates, result)

		switch result.State {
		case StateCommitted:
			summary.CommittedDates++
			summary.ProcessedInvoices += result.Invoices
		case StateFailed:
			summary.FailedDates++
			slog.Error("Revenue date failed", "date", dateKey, "error", result.Err)
		}
	}

	slog.Info("Run summary",
		"dates", len(summary.Dates),
		"committed", summary.CommittedDates,
		"failed", summary.FailedDates,
		"invoices", summary.ProcessedInvoices,
		"skipped_processed", summary.SkippedProcessed,
	)
	return summary, nil
}

// processDate walks one revenue date through the state machine:
// PENDING -> AGGREGATED -> BALANCED -> COMMITTED, or FAILED.
func (c *Coordinator) processDate(
	dateKey string,
	invoices []datedInvoice,
	receipts, refunds []datedVoucher,
	receiptsByReservation, refundsByReservation map[string][]pms.Voucher,
) DateResult {
	date, _ := time.ParseInLocation("2006-01-02", dateKey, time.Local)
	result := DateResult{Date: date, State: StatePending, Invoices: len(invoices)}

	results := make([]ledger.InvoiceResult, 0, len(invoices))
	for _, di := range invoices {
		match := c.matcher.Match(di.inv,
			receiptsByReservation[di.inv.ReservationNumber],
			refundsByReservation[di.inv.ReservationNumber])
		results = append(results, ledger.InvoiceResult{
			Match:      match,
			Components: ledger.ExtractComponents(di.inv),
		})
		slog.Debug("Matched invoice",
			"invoice", match.InvoiceNumber,
			"outcome", match.Outcome,
			"invoice_amount", match.InvoiceAmount,
			"net", match.Net,
			"diff", match.Diff,
		)
	}

	ag := ledger.AggregateDate(date, results, rawVouchers(receipts), rawVouchers(refunds))
	result.State = StateAggregated
	slog.Info("Aggregated revenue date",
		"date", dateKey,
		"invoices", ag.InvoiceCount,
		"receipts", ag.ReceiptCount,
		"refunds", ag.RefundCount,
		"revenue", ag.Revenue.Total(),
		"cash_over_short", ag.CashOverShort,
		"staff_account", ag.StaffAccount,
		"guest_ledger", ag.GuestLedger,
	)

	if check := ag.Check(c.opts.Epsilon); !check.Balanced {
		result.State = StateFailed
		result.Err = fmt.Errorf("batch for %s does not balance: debits %.2f, credits %.2f",
			dateKey, check.Expected, check.Actual)
		return result
	}
	result.State = StateBalanced

	meta := ledger.BatchMeta{
		Document: c.opts.Document,
		Year:     date.Format("2006"),
		Month:    date.Format("01"),
		Date:     date,
		Currency: c.opts.Currency,
		Rate:     1.0,
	}

	// Line content does not depend on the serial, so the batch can be
	// built (and its zero-sum invariant verified) before the
	// transaction opens.
	lines, err := c.builder.Build(meta, ag)
	if err != nil {
		result.State = StateFailed
		result.Err = err
		return result
	}
	result.Lines = len(lines)

	if len(lines) == 0 {
		// Everything on this date netted to zero; nothing to post.
		result.State = StateCommitted
		return result
	}

	if c.opts.DryRun {
		result.State = StateCommitted
		fmt.Print(ledger.FormatBatch(meta, lines))
		return result
	}

	err = c.conn.Transaction(func(tx *sql.Tx) error {
		if err := c.batches.ValidateDocument(tx, meta.Document); err != nil {
			return err
		}

		serial, err := c.batches.NextSerial(tx, meta.Document, meta.Year, meta.Month)
		if err != nil {
			return err
		}
		meta.Serial = serial
		result.Serial = serial

		if err := c.batches.InsertBatch(tx, meta, lines); err != nil {
			return err
		}
		return c.trackConsumed(tx, meta, invoices, receipts, refunds)
	})
	if err != nil {
		result.State = StateFailed
		result.Err = err
		return result
	}

	result.State = StateCommitted
	slog.Info("Committed batch", "batch", meta.Key(), "date", dateKey, "lines", result.Lines)
	return result
}

// trackConsumed records every invoice and voucher consumed by the batch.
// Duplicate markers from a concurrent run are benign skips.
func (c *Coordinator) trackConsumed(tx *sql.Tx, meta ledger.BatchMeta,
	invoices []datedInvoice, receipts, refunds []datedVoucher) error {

	for _, di := range invoices {
		rec := db.ProcessedRecord{
			RecordType:        db.RecordTypeInvoice,
			Number:            di.inv.InvoiceNumber,
			ReservationNumber: di.inv.ReservationNumber,
			Amount:            di.inv.TotalAmount,
			RevenueDate:       ledger.DateKey(di.date),
			RawTimestamp:      di.raw,
			Document:          meta.Document,
			Year:              meta.Year,
			Month:             meta.Month,
			Serial:            meta.Serial,
		}
		inserted, err := c.tracking.InsertProcessed(tx, rec)
		if err != nil {
			return err
		}
		if !inserted {
			slog.Warn("Invoice already tracked, skipping marker", "invoice", di.inv.InvoiceNumber)
		}
	}

	track := func(recordType db.RecordType, vouchers []datedVoucher) error {
		for _, dv := range vouchers {
			rec := db.ProcessedRecord{
				RecordType:        recordType,
				Number:            dv.v.VoucherNumber,
				ReservationNumber: dv.v.ReservationNumber,
				Amount:            dv.v.Amount,
				RevenueDate:       ledger.DateKey(dv.date),
				RawTimestamp:      dv.raw,
				Document:          meta.Document,
				Year:              meta.Year,
				Month:             meta.Month,
				Serial:            meta.Serial,
			}
			inserted, err := c.tracking.InsertProcessed(tx, rec)
			if err != nil {
				return err
			}
			if !inserted {
				slog.Warn("Voucher already tracked, skipping marker",
					"type", recordType, "voucher", dv.v.VoucherNumber)
			}
		}
		return nil
	}
	if err := track(db.RecordTypeReceipt, receipts); err != nil {
		return err
	}
	return track(db.RecordTypeRefund, refunds)
}

func (c *Coordinator) filterInvoices(invoices []pms.Invoice) ([]pms.Invoice, int, error) {
	processed, err := c.tracking.ProcessedNumbers(db.RecordTypeInvoice)
	if err != nil {
		return nil, 0, err
	}
	kept := make([]pms.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if processed[inv.InvoiceNumber] {
			continue
		}
		kept = append(kept, inv)
	}
	return kept, len(invoices) - len(kept), nil
}

func (c *Coordinator) filterVouchers(recordType db.RecordType, vouchers []pms.Voucher) ([]pms.Voucher, int, error) {
	processed, err := c.tracking.ProcessedNumbers(recordType)
	if err != nil {
		return nil, 0, err
	}
	kept := make([]pms.Voucher, 0, len(vouchers))
	for _, v := range vouchers {
		if processed[v.VoucherNumber] {
			continue
		}
		kept = append(kept, v)
	}
	return kept, len(vouchers) - len(kept), nil
}

// groupInvoices assigns each invoice a revenue date via the cutoff
// policy. Unparseable timestamps fall back to today with a warning
// rather than dropping the record.
func (c *Coordinator) groupInvoices(invoices []pms.Invoice) map[string][]datedInvoice {
	groups := make(map[string][]datedInvoice)
	for _, inv := range invoices {
		created, err := pms.ParseTimestamp(inv.CreationDate)
		var date time.Time
		raw := inv.CreationDate
		if err != nil {
			date = c.opts.CutoffPolicy.Assign(c.now())
			raw = ""
			slog.Warn("Unparseable invoice creation date, assigning to today",
				"invoice", inv.InvoiceNumber, "creation_date", inv.CreationDate)
		} else {
			date = c.opts.CutoffPolicy.Assign(created)
		}
		key := ledger.DateKey(date)
		groups[key] = append(groups[key], datedInvoice{inv: inv, date: date, raw: raw})
	}
	return groups
}

func (c *Coordinator) groupVouchers(vouchers []pms.Voucher) map[string][]datedVoucher {
	groups := make(map[string][]datedVoucher)
	for _, v := range vouchers {
		issued, err := pms.ParseTimestamp(v.IssueDateTime)
		var date time.Time
		raw := v.IssueDateTime
		if err != nil {
			date = c.opts.CutoffPolicy.Assign(c.now())
			raw = ""
			slog.Warn("Unparseable voucher issue date, assigning to today",
				"voucher", v.VoucherNumber, "issue_date", v.IssueDateTime)
		} else {
			date = c.opts.CutoffPolicy.Assign(issued)
		}
		key := ledger.DateKey(date)
		groups[key] = append(groups[key], datedVoucher{v: v, date: date, raw: raw})
	}
	return groups
}

func indexByReservation(vouchers []pms.Voucher) map[string][]pms.Voucher {
	index := make(map[string][]pms.Voucher)
	for _, v := range vouchers {
		if v.ReservationNumber == "" {
			continue
		}
		index[v.ReservationNumber] = append(index[v.ReservationNumber], v)
	}
	return index
}

func rawVouchers(dated []datedVoucher) []pms.Voucher {
	vouchers := make([]pms.Voucher, 0, len(dated))
	for _, dv := range dated {
		vouchers = append(vouchers, dv.v)
	}
	return vouchers
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
