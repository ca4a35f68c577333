// Package history keeps a local SQLite ledger of export runs. The ledger
// never stores account ids, passwords or MFA codes.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"tagexport/internal/logging"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Outcome values recorded for a run.
const (
	OutcomeExported = "exported"
	OutcomeAborted  = "aborted"
)

// Run is one ledger entry.
type Run struct {
	ID          string
	StartedAt   time.Time
	FinishedAt  time.Time
	Username    string
	Region      string
	Outcome     string
	FinalState  string
	Error       string
	ReportPath  string
	Records     int
	FullyTagged int
}

// Duration returns how long the run took.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Store is the run ledger.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	logger *zap.Logger
}

// Open opens or creates the ledger at path.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, logger: logging.Get(logging.CategoryHistory)}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	s.logger.Debug("History opened", zap.String("path", path))
	return s, nil
}

func (s *Store) initialize() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL,
		username TEXT NOT NULL,
		region TEXT NOT NULL,
		outcome TEXT NOT NULL,
		final_state TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		report_path TEXT NOT NULL DEFAULT '',
		records INTEGER NOT NULL DEFAULT 0,
		fully_tagged INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// Record appends r to the ledger, assigning an id when r has none.
func (s *Store) Record(ctx context.Context, r *Run) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, username, region, outcome, final_state, error, report_path, records, fully_tagged)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.StartedAt.UnixMilli(), r.FinishedAt.UnixMilli(), r.Username, r.Region,
		r.Outcome, r.FinalState, r.Error, r.ReportPath, r.Records, r.FullyTagged,
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	s.logger.Debug("Run recorded", zap.String("id", r.ID), zap.String("outcome", r.Outcome))
	return nil
}

// List returns up to limit runs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, username, region, outcome, final_state, error, report_path, records, fully_tagged
		 FROM runs
		 ORDER BY started_at DESC, rowid DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r                 Run
			started, finished int64
		)
		if err := rows.Scan(&r.ID, &started, &finished, &r.Username, &r.Region, &r.Outcome,
			&r.FinalState, &r.Error, &r.ReportPath, &r.Records, &r.FullyTagged); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.StartedAt = time.UnixMilli(started)
		r.FinishedAt = time.UnixMilli(finished)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
