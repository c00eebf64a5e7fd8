package audit

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// Index is a SQLite catalog of saved audit sessions, so past sessions can be
// enumerated without scanning the log directory.
type Index struct {
	db *sql.DB
}

// OpenIndex opens (or creates) the session index at the given DSN and
// configures WAL mode.
func OpenIndex(dsn string) (*Index, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "audit: open index")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "audit: exec %s", pragma)
		}
	}
	return &Index{db: db}, nil
}

const indexMigration = `
CREATE TABLE IF NOT EXISTS sessions (
	session_id    TEXT PRIMARY KEY,
	log_file      TEXT NOT NULL,
	total_entries INTEGER NOT NULL,
	generations   INTEGER NOT NULL DEFAULT 0,
	tickers       TEXT NOT NULL DEFAULT '',
	fiscal_years  TEXT NOT NULL DEFAULT '',
	saved_at      DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sessions_saved_at ON sessions(saved_at);
`

// Migrate creates the index schema.
func (ix *Index) Migrate(ctx context.Context) error {
	_, err := ix.db.ExecContext(ctx, indexMigration)
	return eris.Wrap(err, "audit: migrate index")
}

// Close closes the underlying database.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// SessionRecord is one indexed session.
type SessionRecord struct {
	SessionID    string    `json:"session_id"`
	LogFile      string    `json:"log_file"`
	TotalEntries int       `json:"total_entries"`
	Generations  int       `json:"generations"`
	Tickers      []string  `json:"tickers"`
	FiscalYears  []string  `json:"fiscal_years"`
	SavedAt      time.Time `json:"saved_at"`
}

// RecordSession upserts the summary of a saved session.
func (ix *Index) RecordSession(ctx context.Context, s Summary) error {
	_, err := ix.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, log_file, total_entries, generations, tickers, fiscal_years, saved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET
			log_file = excluded.log_file,
			total_entries = excluded.total_entries,
			generations = excluded.generations,
			tickers = excluded.tickers,
			fiscal_years = excluded.fiscal_years,
			saved_at = excluded.saved_at`,
		s.SessionID, s.LogFile, s.TotalEntries, s.EventCounts[string(EventGeneration)],
		strings.Join(s.Tickers, ","), strings.Join(s.FiscalYears, ","), time.Now().UTC(),
	)
	return eris.Wrapf(err, "audit: record session %s", s.SessionID)
}

// ListSessions returns the most recently saved sessions, newest first.
func (ix *Index) ListSessions(ctx context.Context, limit int) ([]SessionRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := ix.db.QueryContext(ctx,
		`SELECT session_id, log_file, total_entries, generations, tickers, fiscal_years, saved_at
		 FROM sessions ORDER BY saved_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "audit: list sessions")
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		var r SessionRecord
		var tickers, years string
		if err := rows.Scan(&r.SessionID, &r.LogFile, &r.TotalEntries, &r.Generations, &tickers, &years, &r.SavedAt); err != nil {
			return nil, eris.Wrap(err, "audit: scan session")
		}
		r.Tickers = splitNonEmpty(tickers)
		r.FiscalYears = splitNonEmpty(years)
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "audit: iterate sessions")
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
