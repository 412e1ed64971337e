package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"filesorter/internal/config"
)

// SQLiteStore persists runs in a SQLite database under the state directory.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// DatabasePath returns the ledger database location for cfg.
func DatabasePath(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.StateDir, "ledger.db")
}

// Open initializes or connects to the ledger database configured by cfg.
func Open(cfg *config.Config) (*SQLiteStore, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(DatabasePath(cfg))
}

// OpenPath initializes or connects to the ledger database at dbPath.
func OpenPath(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create ledger directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
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

	store := &SQLiteStore{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) BeginRun(ctx context.Context, run Run) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := retireRuns(ctx, tx, "target = ? AND status = ?", []any{run.Target, RunActive}, RunSuperseded); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO runs (id, target, status, started_at, created_dirs) VALUES (?, ?, ?, ?, '[]')`,
			run.ID, run.Target, RunActive, formatTime(run.StartedAt),
		)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}
		return nil
	})
}

func (s *SQLiteStore) AppendMove(ctx context.Context, runID string, rec MoveRecord) error {
	_, err := s.execWithRetry(ctx,
		`INSERT INTO moves (
            run_id, seq, operation, source, destination, category, recorded_at, outcome, error
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		rec.Seq,
		rec.Operation,
		rec.Source,
		rec.Destination,
		nullableString(rec.Category),
		formatTime(rec.Timestamp),
		rec.Outcome,
		nullableString(rec.Error),
	)
	if err != nil {
		return fmt.Errorf("append move: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SetCreatedDirs(ctx context.Context, runID string, dirs []string) error {
	encoded, err := json.Marshal(nonNil(dirs))
	if err != nil {
		return fmt.Errorf("encode created dirs: %w", err)
	}
	res, err := s.execWithRetry(ctx,
		`UPDATE runs SET created_dirs = ? WHERE id = ?`,
		string(encoded), runID,
	)
	if err != nil {
		return fmt.Errorf("set created dirs: %w", err)
	}
	return requireRow(res, runID)
}

func (s *SQLiteStore) FinishRun(ctx context.Context, runID string, finishedAt time.Time, createdDirs []string) error {
	dirs, err := json.Marshal(nonNil(createdDirs))
	if err != nil {
		return fmt.Errorf("encode created dirs: %w", err)
	}
	res, err := s.execWithRetry(ctx,
		`UPDATE runs SET finished_at = ?, created_dirs = ? WHERE id = ?`,
		formatTime(finishedAt), string(dirs), runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return requireRow(res, runID)
}

func (s *SQLiteStore) ActiveRun(ctx context.Context, target string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, target, status, started_at, finished_at, created_dirs
         FROM runs WHERE target = ? AND status = ?
         ORDER BY started_at DESC LIMIT 1`,
		target, RunActive,
	)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load active run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, operation, source, destination, category, recorded_at, outcome, error
         FROM moves WHERE run_id = ? ORDER BY seq`,
		run.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("load moves: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			rec        MoveRecord
			category   sql.NullString
			recordedAt string
			errText    sql.NullString
		)
		if err := rows.Scan(&rec.Seq, &rec.Operation, &rec.Source, &rec.Destination, &category, &recordedAt, &rec.Outcome, &errText); err != nil {
			return nil, fmt.Errorf("scan move: %w", err)
		}
		rec.Category = category.String
		rec.Error = errText.String
		if rec.Timestamp, err = parseTime(recordedAt); err != nil {
			return nil, fmt.Errorf("parse move timestamp: %w", err)
		}
		run.Records = append(run.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate moves: %w", err)
	}
	return run, nil
}

func (s *SQLiteStore) ConsumeRun(ctx context.Context, runID string, at time.Time) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE runs SET consumed_at = ? WHERE id = ?`, formatTime(at), runID); err != nil {
			return fmt.Errorf("stamp consumed run: %w", err)
		}
		return retireRuns(ctx, tx, "id = ?", []any{runID}, RunConsumed)
	})
}

func (s *SQLiteStore) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.target, r.status, r.started_at, r.finished_at,
                r.moved + (SELECT COUNT(1) FROM moves m WHERE m.run_id = r.id AND m.outcome = 'success'),
                r.failed + (SELECT COUNT(1) FROM moves m WHERE m.run_id = r.id AND m.outcome = 'failed')
         FROM runs r
         ORDER BY r.started_at DESC
         LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var (
			summary    RunSummary
			startedAt  string
			finishedAt sql.NullString
		)
		if err := rows.Scan(&summary.ID, &summary.Target, &summary.Status, &startedAt, &finishedAt, &summary.Moved, &summary.Failed); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if summary.StartedAt, err = parseTime(startedAt); err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		if finishedAt.Valid {
			if summary.FinishedAt, err = parseTime(finishedAt.String); err != nil {
				return nil, fmt.Errorf("parse finished_at: %w", err)
			}
		}
		out = append(out, summary)
	}
	return out, rows.Err()
}

// retireRuns folds the move counts of the matching runs into the runs table,
// drops their move rows, and sets their status.
func retireRuns(ctx context.Context, tx *sql.Tx, where string, args []any, status RunStatus) error {
	update := `UPDATE runs SET
            moved = moved + (SELECT COUNT(1) FROM moves m WHERE m.run_id = runs.id AND m.outcome = 'success'),
            failed = failed + (SELECT COUNT(1) FROM moves m WHERE m.run_id = runs.id AND m.outcome = 'failed'),
            status = ?
        WHERE ` + where
	if _, err := tx.ExecContext(ctx, update, append([]any{status}, args...)...); err != nil {
		return fmt.Errorf("retire runs: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM moves WHERE run_id IN (SELECT id FROM runs WHERE status != ?)`,
		RunActive,
	); err != nil {
		return fmt.Errorf("drop retired moves: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run        Run
		startedAt  string
		finishedAt sql.NullString
		dirsJSON   string
	)
	if err := row.Scan(&run.ID, &run.Target, &run.Status, &startedAt, &finishedAt, &dirsJSON); err != nil {
		return nil, err
	}
	var err error
	if run.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	if finishedAt.Valid {
		if run.FinishedAt, err = parseTime(finishedAt.String); err != nil {
			return nil, fmt.Errorf("parse finished_at: %w", err)
		}
	}
	if strings.TrimSpace(dirsJSON) != "" {
		if err := json.Unmarshal([]byte(dirsJSON), &run.CreatedDirs); err != nil {
			return nil, fmt.Errorf("decode created dirs: %w", err)
		}
	}
	return &run, nil
}

func (s *SQLiteStore) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()
		if err := fn(tx); err != nil {
			return err
		}
		return tx.Commit()
	})
}

func (s *SQLiteStore) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ensureContext(ctx)
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
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

func requireRow(res sql.Result, runID string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return errUnknownRun(runID)
	}
	return nil
}

func errUnknownRun(runID string) error {
	return fmt.Errorf("run %q not found", runID)
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// timeLayout keeps a fixed fraction width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, value)
}
