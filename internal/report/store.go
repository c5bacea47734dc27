package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/caltechlibrary/distillery-sub000/internal/config"
)

// Store persists run history and per-file outcomes backed by SQLite. A file
// lock guards the database so two processes never initialize it at once.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

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

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) error {
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

// Open initializes or connects to the report database under the log
// directory.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(filepath.Join(cfg.Paths.LogDir, "report.db"))
}

// OpenPath opens the report database at an explicit path.
func OpenPath(dbPath string) (*Store, error) {
	lock := flock.New(dbPath + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire report lock: %w", err)
	}
	if !ok {
		return nil, errors.New("report database is locked by another process")
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
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
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, lock: lock}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}
	return store, nil
}

// Close closes the database connection and releases the lock.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); err == nil {
			err = unlockErr
		}
	}
	return err
}

// StartRun records the beginning of a collection ingest and returns the run.
func (s *Store) StartRun(ctx context.Context, collection string) (*Run, error) {
	run := &Run{
		ID:         uuid.NewString(),
		Collection: collection,
		Status:     RunStatusRunning,
		StartedAt:  time.Now().UTC(),
	}
	err := s.execWithRetry(ctx,
		`INSERT INTO ingest_runs (id, collection, status, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.Collection, run.Status, run.StartedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// FinishRun records the terminal status and totals for a run.
func (s *Store) FinishRun(ctx context.Context, runID, status string, totals Totals) error {
	err := s.execWithRetry(ctx,
		`UPDATE ingest_runs SET
            status = ?, finished_at = ?,
            folders_processed = ?, folders_skipped = ?,
            files_processed = ?, files_skipped = ?
        WHERE id = ?`,
		status,
		time.Now().UTC().Format(time.RFC3339Nano),
		totals.FoldersProcessed, totals.FoldersSkipped,
		totals.FilesProcessed, totals.FilesSkipped,
		runID,
	)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", runID, err)
	}
	return nil
}

// RecordOutcome persists the result of one file task.
func (s *Store) RecordOutcome(ctx context.Context, outcome Outcome) error {
	recordedAt := outcome.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}
	err := s.execWithRetry(ctx,
		`INSERT INTO file_outcomes (
            run_id, folder, source_path, component_id, storage_key, status, reason, recorded_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		outcome.RunID, outcome.Folder, outcome.SourcePath,
		nullableString(outcome.ComponentID), nullableString(outcome.StorageKey),
		outcome.Status, nullableString(outcome.Reason),
		recordedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert outcome: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, collection, status, started_at, finished_at,
            folders_processed, folders_skipped, files_processed, files_skipped
        FROM ingest_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ListOutcomes returns the file outcomes recorded for a run in insertion
// order.
func (s *Store) ListOutcomes(ctx context.Context, runID string) ([]*Outcome, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, folder, source_path, component_id, storage_key, status, reason, recorded_at
        FROM file_outcomes WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []*Outcome
	for rows.Next() {
		var (
			outcome               Outcome
			componentID, key      sql.NullString
			reason, recordedAtRaw sql.NullString
		)
		if err := rows.Scan(&outcome.RunID, &outcome.Folder, &outcome.SourcePath,
			&componentID, &key, &outcome.Status, &reason, &recordedAtRaw); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		outcome.ComponentID = componentID.String
		outcome.StorageKey = key.String
		outcome.Reason = reason.String
		if recordedAtRaw.Valid {
			if parsed, parseErr := time.Parse(time.RFC3339Nano, recordedAtRaw.String); parseErr == nil {
				outcome.RecordedAt = parsed
			}
		}
		outcomes = append(outcomes, &outcome)
	}
	return outcomes, rows.Err()
}

func scanRun(rows *sql.Rows) (*Run, error) {
	var (
		run         Run
		startedRaw  string
		finishedRaw sql.NullString
	)
	if err := rows.Scan(&run.ID, &run.Collection, &run.Status, &startedRaw, &finishedRaw,
		&run.FoldersProcessed, &run.FoldersSkipped, &run.FilesProcessed, &run.FilesSkipped); err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	if parsed, err := time.Parse(time.RFC3339Nano, startedRaw); err == nil {
		run.StartedAt = parsed
	}
	if finishedRaw.Valid {
		if parsed, err := time.Parse(time.RFC3339Nano, finishedRaw.String); err == nil {
			run.FinishedAt = &parsed
		}
	}
	return &run, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
