package catalog

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"dawprobe/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; users must delete the catalog database after a bump.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Store manages run history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the catalog database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.Paths.CatalogDB
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

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the location of the database file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	err = s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return tx.Commit()
}

// BeginRun records the start of a batch run.
func (s *Store) BeginRun(ctx context.Context, runID, root string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (id, root, started_at) VALUES (?, ?, ?)",
		runID, root, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RecordResult appends one file outcome to a run.
func (s *Store) RecordResult(ctx context.Context, res FileResult) error {
	recorded := res.RecordedAt
	if recorded.IsZero() {
		recorded = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO run_files (run_id, path, format, status, error, document, recorded_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		res.RunID, res.Path, res.Format, string(res.Status),
		nullableString(res.Error), nullableString(res.Document),
		recorded.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert file result: %w", err)
	}
	return nil
}

// FinishRun closes out a run with its final counts.
func (s *Store) FinishRun(ctx context.Context, runID string, total, succeeded, failed int) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE runs SET finished_at = ?, total = ?, succeeded = ?, failed = ? WHERE id = ?",
		time.Now().UTC().Format(time.RFC3339Nano), total, succeeded, failed, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("finish run: run %s not found", runID)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, root, started_at, finished_at, total, succeeded, failed
         FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run      Run
			started  string
			finished sql.NullString
		)
		if err := rows.Scan(&run.ID, &run.Root, &started, &finished, &run.Total, &run.Succeeded, &run.Failed); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt = parseTimestamp(started)
		if finished.Valid {
			run.FinishedAt = parseTimestamp(finished.String)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ResultsForRun returns a run's file outcomes in insertion order.
func (s *Store) ResultsForRun(ctx context.Context, runID string) ([]FileResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, path, format, status, error, document, recorded_at
         FROM run_files WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query file results: %w", err)
	}
	defer rows.Close()

	var results []FileResult
	for rows.Next() {
		var (
			res      FileResult
			status   string
			errMsg   sql.NullString
			document sql.NullString
			recorded string
		)
		if err := rows.Scan(&res.RunID, &res.Path, &res.Format, &status, &errMsg, &document, &recorded); err != nil {
			return nil, fmt.Errorf("scan file result: %w", err)
		}
		res.Status = Status(status)
		res.Error = errMsg.String
		res.Document = document.String
		res.RecordedAt = parseTimestamp(recorded)
		results = append(results, res)
	}
	return results, rows.Err()
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimestamp(value string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return ts
}
