// Package sqlite stores pair scores in a SQLite database so that several
// scans can be kept side by side and queried later.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"simscan/internal/domain"
	"simscan/internal/resultstore"
)

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	root        TEXT NOT NULL,
	group_count INTEGER NOT NULL,
	started_at  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS pairs (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	a      TEXT NOT NULL,
	b      TEXT NOT NULL,
	score  REAL NOT NULL,
	PRIMARY KEY (run_id, a, b)
);
CREATE INDEX IF NOT EXISTS idx_pairs_run_score ON pairs(run_id, score DESC);
`

// Storage is a SQLite backed pair store. Writers hold a file lock next to
// the database for as long as the store is open.
type Storage struct {
	db    *sql.DB
	path  string
	lock  *flock.Flock
	runID string
}

var _ resultstore.Storage = (*Storage)(nil)

// Open connects to (and creates if needed) the database at path.
func Open(path string) (*Storage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure store directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Storage{db: db, path: path, lock: flock.New(path + ".lock")}, nil
}

// Path returns the database file path.
func (s *Storage) Path() string { return s.path }

// Init records the run and scopes later calls to it.
func (s *Storage) Init(ctx context.Context, run domain.Run) error {
	if !s.lock.Locked() {
		locked, err := s.lock.TryLock()
		if err != nil {
			return fmt.Errorf("acquire store lock: %w", err)
		}
		if !locked {
			return resultstore.ErrLocked
		}
	}
	started := run.StartedAt
	if started.IsZero() {
		started = time.Now()
	}
	err := s.execWithoutResultRetry(ctx,
		`INSERT INTO runs (id, root, group_count, started_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET root = excluded.root, group_count = excluded.group_count`,
		run.ID, run.Root, run.Groups, started.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	s.runID = run.ID
	return nil
}

// Save inserts the pairs of the current run in one transaction.
func (s *Storage) Save(ctx context.Context, pairs []domain.Pair) error {
	if s.runID == "" {
		return resultstore.ErrNotInitialized
	}
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO pairs (run_id, a, b, score) VALUES (?, ?, ?, ?)
			 ON CONFLICT(run_id, a, b) DO UPDATE SET score = excluded.score`)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		defer stmt.Close()
		for _, p := range pairs {
			if _, err := stmt.ExecContext(ctx, s.runID, p.A, p.B, p.Score); err != nil {
				_ = tx.Rollback()
				return err
			}
		}
		return tx.Commit()
	})
}

// Top returns the k best pairs of the current run. k <= 0 returns all.
func (s *Storage) Top(ctx context.Context, k int) ([]domain.Pair, error) {
	if s.runID == "" {
		return nil, resultstore.ErrNotInitialized
	}
	return s.query(ctx,
		`SELECT score, a, b FROM pairs WHERE run_id = ? ORDER BY score DESC, a, b LIMIT ?`,
		s.runID, limitArg(k))
}

// ForGroup returns the k best pairs involving name.
func (s *Storage) ForGroup(ctx context.Context, name string, k int) ([]domain.Pair, error) {
	if s.runID == "" {
		return nil, resultstore.ErrNotInitialized
	}
	return s.query(ctx,
		`SELECT score, a, b FROM pairs WHERE run_id = ? AND (a = ? OR b = ?) ORDER BY score DESC, a, b LIMIT ?`,
		s.runID, name, name, limitArg(k))
}

// Runs lists recorded runs, newest first.
func (s *Storage) Runs(ctx context.Context) ([]domain.Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, root, group_count, started_at FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()
	var out []domain.Run
	for rows.Next() {
		var (
			run     domain.Run
			started string
		)
		if err := rows.Scan(&run.ID, &run.Root, &run.Groups, &started); err != nil {
			return nil, err
		}
		if ts, err := time.Parse(time.RFC3339Nano, started); err == nil {
			run.StartedAt = ts
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// Clear deletes the pairs of the current run.
func (s *Storage) Clear(ctx context.Context) error {
	if s.runID == "" {
		return nil
	}
	return s.execWithoutResultRetry(ctx, `DELETE FROM pairs WHERE run_id = ?`, s.runID)
}

// Close releases the lock and the database.
func (s *Storage) Close() error {
	var errs []error
	if s.lock != nil && s.lock.Locked() {
		if err := s.lock.Unlock(); err != nil {
			errs = append(errs, fmt.Errorf("release store lock: %w", err))
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Storage) query(ctx context.Context, query string, args ...any) ([]domain.Pair, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query pairs: %w", err)
	}
	defer rows.Close()
	var out []domain.Pair
	for rows.Next() {
		var p domain.Pair
		if err := rows.Scan(&p.Score, &p.A, &p.B); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Storage) execWithoutResultRetry(ctx context.Context, query string, args ...any) error {
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

func limitArg(k int) int {
	if k <= 0 {
		return -1
	}
	return k
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
