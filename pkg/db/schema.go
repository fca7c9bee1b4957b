// Package db provides the SQLite ledger store: journal batch headers and
// lines, the processed-record tracking table and document validation.
package db

// Schema defines the SQL statements to create the ledger tables.
const Schema = `
-- Registered journal documents. A batch may only target a document code
-- present here.
CREATE TABLE IF NOT EXISTS ledger_documents (
    code TEXT PRIMARY KEY,
    name TEXT NOT NULL
);

INSERT OR IGNORE INTO ledger_documents (code, name)
    VALUES ('113', 'Front office revenue');

-- One header row per batch. Serial is allocated per (document, year,
-- month) inside the committing transaction.
CREATE TABLE IF NOT EXISTS ledger_batch_headers (
    document TEXT NOT NULL REFERENCES ledger_documents(code),
    year     TEXT NOT NULL,
    month    TEXT NOT NULL,
    serial   INTEGER NOT NULL,
    date     TEXT NOT NULL,              -- YYYY-MM-DD revenue date
    currency TEXT NOT NULL,
    rate     REAL NOT NULL,
    row_guid TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (document, year, month, serial)
);

-- Ordered debit/credit detail rows of a batch.
CREATE TABLE IF NOT EXISTS ledger_batch_lines (
    document TEXT NOT NULL,
    year     TEXT NOT NULL,
    month    TEXT NOT NULL,
    serial   INTEGER NOT NULL,
    line     INTEGER NOT NULL,
    account  TEXT NOT NULL,
    debit_local    REAL NOT NULL,
    credit_local   REAL NOT NULL,
    debit_foreign  REAL NOT NULL,
    credit_foreign REAL NOT NULL,
    description    TEXT NOT NULL,
    row_guid       TEXT NOT NULL,
    PRIMARY KEY (document, year, month, serial, line),
    FOREIGN KEY (document, year, month, serial)
        REFERENCES ledger_batch_headers(document, year, month, serial)
);

-- Idempotency markers: one row per invoice/voucher number ever consumed
-- by a committed batch.
CREATE TABLE IF NOT EXISTS processed_records (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    record_type        TEXT NOT NULL,    -- 'invoice', 'receipt' or 'refund'
    number             TEXT NOT NULL,
    reservation_number TEXT NOT NULL,
    amount             REAL NOT NULL,
    revenue_date       TEXT NOT NULL,    -- YYYY-MM-DD
    raw_timestamp      TEXT,
    document TEXT NOT NULL,
    year     TEXT NOT NULL,
    month    TEXT NOT NULL,
    serial   INTEGER NOT NULL,
    processed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (record_type, number)
);

CREATE INDEX IF NOT EXISTS idx_processed_records_date
    ON processed_records(revenue_date);

CREATE INDEX IF NOT EXISTS idx_batch_lines_account
    ON ledger_batch_lines(account);
`

// InitializeSchema creates all tables if they don't exist.
func InitializeSchema(conn *Connection) error {
	if _, err := conn.Exec(Schema); err != nil {
		return err
	}
	return nil
}
