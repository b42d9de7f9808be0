// Package history records the outcome of each workflow run in a local
// SQLite database, so `bridge status` can show what recent runs did
// without re-reading the mailbox or the feed.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Workflow names recorded with each run.
const (
	WorkflowPost   = "post"
	WorkflowReply  = "reply"
	WorkflowAlerts = "alerts"
)

type Run struct {
	ID         int64
	Workflow   string
	Delivered  int // posts submitted, comments posted, or alert emails sent
	Skipped    int
	Deferred   int
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

type Store struct {
	db *sql.DB
}

func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		workflow TEXT NOT NULL,
		delivered INTEGER NOT NULL DEFAULT 0,
		skipped INTEGER NOT NULL DEFAULT 0,
		deferred INTEGER NOT NULL DEFAULT 0,
		error TEXT,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_workflow ON runs(workflow);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func (s *Store) RecordRun(run *Run) error {
	query := `
	INSERT INTO runs (workflow, delivered, skipped, deferred, error, started_at, finished_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.Exec(query,
		run.Workflow,
		run.Delivered,
		run.Skipped,
		run.Deferred,
		run.Error,
		run.StartedAt,
		run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	run.ID = id
	return nil
}

func (s *Store) RecentRuns(limit int) ([]Run, error) {
	query := `
	SELECT id, workflow, delivered, skipped, deferred, error, started_at, finished_at
	FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var errStr sql.NullString
		var startedAt, finishedAt sql.NullTime

		if err := rows.Scan(&r.ID, &r.Workflow, &r.Delivered, &r.Skipped, &r.Deferred,
			&errStr, &startedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		r.Error = errStr.String
		r.StartedAt = startedAt.Time
		r.FinishedAt = finishedAt.Time
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Stats returns aggregate counts across all recorded runs.
func (s *Store) Stats() (total, failed, delivered int, err error) {
	query := `SELECT COUNT(*),
		SUM(CASE WHEN error != '' THEN 1 ELSE 0 END),
		SUM(delivered) FROM runs`

	var failedNull, deliveredNull sql.NullInt64
	err = s.db.QueryRow(query).Scan(&total, &failedNull, &deliveredNull)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to get stats: %w", err)
	}
	return total, int(failedNull.Int64), int(deliveredNull.Int64), nil
}

func (s *Store) Close() error { return s.db.Close() }

func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "bridge_history.db"
	}
	return filepath.Join(home, ".reddit-rss-alerts", "history.db")
}
