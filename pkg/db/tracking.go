package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
)

// RecordType distinguishes the kinds of consumed source records.
type RecordType string

const (
	RecordTypeInvoice RecordType = "invoice"
	RecordTypeReceipt RecordType = "receipt"
	RecordTypeRefund  RecordType = "refund"
)

// ProcessedRecord marks an invoice/voucher number as consumed by a
// committed batch.
type ProcessedRecord struct {
	RecordType        RecordType
	Number            string
	ReservationNumber string
	Amount            float64
	RevenueDate       string // YYYY-MM-DD
	RawTimestamp      string
	Document          string
	Year              string
	Month             string
	Serial            int
	ProcessedAt       time.Time
}

// TrackingStore manages the idempotency markers.
type TrackingStore struct {
	conn *Connection
}

// NewTrackingStore creates a TrackingStore.
func NewTrackingStore(conn *Connection) *TrackingStore {
	return &TrackingStore{conn: conn}
}

// InsertProcessed inserts a marker inside the batch's transaction. A
// UNIQUE conflict on (record_type, number) means another run already
// consumed the record; that is a benign skip, reported via the inserted
// flag, never an error.
func (s *TrackingStore) InsertProcessed(tx *sql.Tx, rec ProcessedRecord) (inserted bool, err error) {
	_, err = tx.Exec(`
		INSERT INTO processed_records
			(record_type, number, reservation_number, amount,
			 revenue_date, raw_timestamp, document, year, month, serial)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, string(rec.RecordType), rec.Number, rec.ReservationNumber, rec.Amount,
		rec.RevenueDate, rec.RawTimestamp, rec.Document, rec.Year, rec.Month, rec.Serial)

	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert processed record %s/%s: %w",
			rec.RecordType, rec.Number, err)
	}
	return true, nil
}

// ProcessedNumbers returns the set of already-consumed numbers for a
// record type. Used to filter records out before matching begins.
func (s *TrackingStore) ProcessedNumbers(recordType RecordType) (map[string]bool, error) {
	rows, err := s.conn.Query(
		`SELECT number FROM processed_records WHERE record_type = ?`, string(recordType))
	if err != nil {
		return nil, fmt.Errorf("failed to load processed numbers: %w", err)
	}
	defer rows.Close()

	numbers := make(map[string]bool)
	for rows.Next() {
		var number string
		if err := rows.Scan(&number); err != nil {
			return nil, fmt.Errorf("failed to scan processed number: %w", err)
		}
		numbers[number] = true
	}
	return numbers, rows.Err()
}

// Stats summarizes the tracking store.
type Stats struct {
	Invoices int
	Receipts int
	Refunds  int
	LastRun  sql.NullString
}

// GetStats returns counts per record type and the last processing time.
func (s *TrackingStore) GetStats() (*Stats, error) {
	var stats Stats

	counts := map[RecordType]*int{
		RecordTypeInvoice: &stats.Invoices,
		RecordTypeReceipt: &stats.Receipts,
		RecordTypeRefund:  &stats.Refunds,
	}
	for recordType, dst := range counts {
		err := s.conn.QueryRow(
			`SELECT COUNT(*) FROM processed_records WHERE record_type = ?`,
			string(recordType)).Scan(dst)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s records: %w", recordType, err)
		}
	}

	err := s.conn.QueryRow(`SELECT MAX(processed_at) FROM processed_records`).Scan(&stats.LastRun)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get last run time: %w", err)
	}

	return &stats, nil
}
