package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/hotelops/folio-ledger/pkg/ledger"
)

// ErrInvalidDocument means the target document code is not registered in
// the ledger_documents table.
var ErrInvalidDocument = errors.New("document code not registered")

// BatchStore persists ledger batches. All write methods take the *sql.Tx
// of the committing revenue date so header, lines and tracking rows land
// atomically.
type BatchStore struct {
	conn *Connection
}

// NewBatchStore creates a BatchStore.
func NewBatchStore(conn *Connection) *BatchStore {
	return &BatchStore{conn: conn}
}

// ValidateDocument checks that the document code is registered.
func (s *BatchStore) ValidateDocument(tx *sql.Tx, document string) error {
	var count int
	err := tx.QueryRow(`SELECT COUNT(*) FROM ledger_documents WHERE code = ?`, document).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to validate document %q: %w", document, err)
	}
	if count == 0 {
		return fmt.Errorf("%w: %q", ErrInvalidDocument, document)
	}
	return nil
}

// RegisterDocument adds a document code, ignoring duplicates.
func (s *BatchStore) RegisterDocument(code, name string) error {
	_, err := s.conn.Exec(
		`INSERT OR IGNORE INTO ledger_documents (code, name) VALUES (?, ?)`, code, name)
	if err != nil {
		return fmt.Errorf("failed to register document %q: %w", code, err)
	}
	return nil
}

// NextSerial allocates the next batch serial for (document, year, month).
// It must run inside the transaction that inserts the header: SQLite
// serializes writers, so two runs cannot both observe the same maximum
// and commit.
func (s *BatchStore) NextSerial(tx *sql.Tx, document, year, month string) (int, error) {
	var serial int
	err := tx.QueryRow(`
		SELECT COALESCE(MAX(serial), 0) + 1
		FROM ledger_batch_headers
		WHERE document = ? AND year = ? AND month = ?
	`, document, year, month).Scan(&serial)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate serial: %w", err)
	}
	return serial, nil
}

// InsertBatch writes the header and all detail lines of one batch.
func (s *BatchStore) InsertBatch(tx *sql.Tx, meta ledger.BatchMeta, lines []ledger.JournalLine) error {
	_, err := tx.Exec(`
		INSERT INTO ledger_batch_headers
			(document, year, month, serial, date, currency, rate, row_guid)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, meta.Document, meta.Year, meta.Month, meta.Serial,
		ledger.DateKey(meta.Date), meta.Currency, meta.Rate, newRowGUID())
	if err != nil {
		return fmt.Errorf("failed to insert batch header %s: %w", meta.Key(), err)
	}

	for _, line := range lines {
		_, err := tx.Exec(`
			INSERT INTO ledger_batch_lines
				(document, year, month, serial, line, account,
				 debit_local, credit_local, debit_foreign, credit_foreign,
				 description, row_guid)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, meta.Document, meta.Year, meta.Month, meta.Serial, line.Line, line.Account,
			line.DebitLocal, line.CreditLocal, line.DebitForeign, line.CreditForeign,
			line.Description, newRowGUID())
		if err != nil {
			return fmt.Errorf("failed to insert batch line %s/%d: %w", meta.Key(), line.Line, err)
		}
	}

	return nil
}

// BatchCount returns the number of committed batches.
func (s *BatchStore) BatchCount() (int, error) {
	var count int
	err := s.conn.QueryRow(`SELECT COUNT(*) FROM ledger_batch_headers`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count batches: %w", err)
	}
	return count, nil
}

// LineCount returns the number of committed journal lines.
func (s *BatchStore) LineCount() (int, error) {
	var count int
	err := s.conn.QueryRow(`SELECT COUNT(*) FROM ledger_batch_lines`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count lines: %w", err)
	}
	return count, nil
}

func newRowGUID() string {
	return strings.ToUpper(uuid.NewString())
}
