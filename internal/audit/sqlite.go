package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const auditSchema = `
CREATE TABLE IF NOT EXISTS audit_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	description TEXT NOT NULL,
	direction TEXT NOT NULL,
	created_at INTEGER NOT NULL
);`

// SQLiteSink appends records to an audit_log table. It owns its database
// handle, so the audit backend stays selectable independently of the
// record store backend.
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLiteSink opens the audit database at path, creating the schema if
// needed.
func NewSQLiteSink(path string) (*SQLiteSink, error) {
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open audit db %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping audit db %s: %w", path, err)
	}
	if _, err := db.Exec(auditSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create audit schema: %w", err)
	}
	return &SQLiteSink{db: db}, nil
}

// Append inserts one record.
func (s *SQLiteSink) Append(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_log (description, direction, created_at) VALUES (?, ?, ?)`,
		rec.Description, string(rec.Direction), toMillis(rec.Timestamp))
	if err != nil {
		return fmt.Errorf("append audit record: %w", err)
	}
	return nil
}

// Tail returns the last limit records, oldest first.
func (s *SQLiteSink) Tail(ctx context.Context, limit int) ([]Record, error) {
	query := `SELECT description, direction, created_at FROM audit_log ORDER BY id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var dir string
		var ts int64
		if err := rows.Scan(&rec.Description, &dir, &ts); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		rec.Direction = Direction(dir)
		rec.Timestamp = fromMillis(ts)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}

	// The query is newest first; callers get oldest first.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// Close closes the database handle.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
