package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS cases (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS payments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	case_id INTEGER NOT NULL REFERENCES cases(id) ON DELETE CASCADE,
	channel TEXT NOT NULL DEFAULT 'UPI',
	payer_name TEXT NOT NULL DEFAULT '',
	payee_name TEXT NOT NULL DEFAULT '',
	payee_vpa TEXT NOT NULL DEFAULT '',
	bank_name TEXT NOT NULL DEFAULT '',
	amount_inr TEXT,
	currency TEXT NOT NULL DEFAULT 'INR',
	utr TEXT NOT NULL DEFAULT '',
	upi_txn_id TEXT NOT NULL DEFAULT '',
	txn_status TEXT NOT NULL DEFAULT '',
	txn_time TEXT,
	raw_text TEXT NOT NULL DEFAULT '',
	source_filename TEXT NOT NULL DEFAULT '',
	stored_filename TEXT NOT NULL DEFAULT '',
	remarks TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	ocr_confidence REAL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS case_notes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	case_id INTEGER NOT NULL REFERENCES cases(id) ON DELETE CASCADE,
	content TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_payments_case_id ON payments(case_id);
CREATE INDEX IF NOT EXISTS idx_payments_utr ON payments(utr);
CREATE INDEX IF NOT EXISTS idx_payments_upi_txn_id ON payments(upi_txn_id);
CREATE INDEX IF NOT EXISTS idx_case_notes_case_id ON case_notes(case_id);
`

// addedColumns are columns introduced after the first schema; databases
// created before them are altered on Open.
var addedColumns = []struct{ table, column, decl string }{
	{"payments", "ocr_confidence", "REAL"},
}

// timeLayout is how timestamps are stored; it sorts lexically.
const timeLayout = time.RFC3339Nano

// Open opens (creating if needed) the SQLite database at path and ensures
// the schema exists.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	// SQLite allows a single writer; upload workers queue on this connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	if err := addMissingColumns(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	slog.Info("database ready", "path", path)
	return db, nil
}

func addMissingColumns(ctx context.Context, db *sql.DB) error {
	for _, c := range addedColumns {
		var n int
		err := db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`, c.table, c.column).Scan(&n)
		if err != nil {
			return fmt.Errorf("inspect %s.%s: %w", c.table, c.column, err)
		}
		if n > 0 {
			continue
		}
		if _, err := db.ExecContext(ctx, fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s %s`, c.table, c.column, c.decl)); err != nil {
			return fmt.Errorf("add column %s.%s: %w", c.table, c.column, err)
		}
		slog.Info("database column added", "table", c.table, "column", c.column)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
