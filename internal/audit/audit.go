package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"fileforge/internal/config"
)

// EventType labels an audit ledger entry.
type EventType string

const (
	EventSubmitted EventType = "submitted"
	EventScan      EventType = "scan"
	EventStarted   EventType = "started"
	EventProgress  EventType = "progress"
	EventCompleted EventType = "completed"
	EventError     EventType = "error"
	EventDownload  EventType = "download"
)

// Entry is one append-only ledger record. Entries are never mutated or
// deleted while their job is active.
type Entry struct {
	ID        int64
	Timestamp time.Time
	JobKey    string
	EventType EventType
	Payload   string
}

// Log is the append-only audit ledger backed by its own SQLite database.
type Log struct {
	db   *sql.DB
	path string
}

// Open initializes the audit database under the configured log directory.
func Open(cfg *config.Config) (*Log, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(filepath.Join(cfg.Paths.LogDir, "audit.db"))
}

// OpenPath initializes an audit database at an explicit location.
func OpenPath(dbPath string) (*Log, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	const schema = `CREATE TABLE IF NOT EXISTS audit_entries (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        timestamp TEXT NOT NULL,
        job_key TEXT NOT NULL,
        event_type TEXT NOT NULL,
        payload TEXT
    );
    CREATE INDEX IF NOT EXISTS idx_audit_job_key ON audit_entries(job_key);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create audit schema: %w", err)
	}
	return &Log{db: db, path: dbPath}, nil
}

// Path returns the ledger database location.
func (l *Log) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Close closes the underlying database connection.
func (l *Log) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}

// Append writes one entry. SQLite serializes concurrent appenders; rows are
// ordered per job by insertion sequence.
func (l *Log) Append(ctx context.Context, jobKey string, eventType EventType, payload string) error {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO audit_entries (timestamp, job_key, event_type, payload) VALUES (?, ?, ?, ?)`,
		timestamp, jobKey, string(eventType), payload)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// Query returns one page of entries, newest first. Page numbering starts
// at 1.
func (l *Log) Query(ctx context.Context, page, pageSize int) ([]Entry, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize

	rows, err := l.db.QueryContext(ctx,
		`SELECT id, timestamp, job_key, event_type, payload FROM audit_entries
         ORDER BY id DESC LIMIT ? OFFSET ?`, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

// ForJob returns every entry for one job in append order.
func (l *Log) ForJob(ctx context.Context, jobKey string) ([]Entry, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, timestamp, job_key, event_type, payload FROM audit_entries
         WHERE job_key = ? ORDER BY id`, jobKey)
	if err != nil {
		return nil, fmt.Errorf("query job audit entries: %w", err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

// Count returns the total number of ledger entries.
func (l *Log) Count(ctx context.Context) (int64, error) {
	var count int64
	err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_entries`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count audit entries: %w", err)
	}
	return count, nil
}

func collectEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var (
			entry   Entry
			rawTime string
			payload sql.NullString
		)
		if err := rows.Scan(&entry.ID, &rawTime, &entry.JobKey, (*string)(&entry.EventType), &payload); err != nil {
			return nil, err
		}
		entry.Payload = payload.String
		if parsed, err := time.Parse(time.RFC3339Nano, rawTime); err == nil {
			entry.Timestamp = parsed
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// ErrDisabled is returned by the recorder's read path when audit logging is
// switched off for the deployment.
var ErrDisabled = errors.New("audit logging disabled")
