package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

const createRunsTable = `
CREATE TABLE IF NOT EXISTS runs (
    id            TEXT PRIMARY KEY,
    started_at    DATETIME NOT NULL,
    precision     TEXT NOT NULL,
    checksum_mode INTEGER NOT NULL,
    platform      TEXT NOT NULL,
    config        TEXT NOT NULL
)`

const createTimingsTable = `
CREATE TABLE IF NOT EXISTS timings (
    run_id     TEXT NOT NULL REFERENCES runs(id),
    pass       INTEGER NOT NULL,
    variant    TEXT NOT NULL,
    loop       TEXT NOT NULL,
    class      TEXT NOT NULL,
    length     INTEGER NOT NULL,
    samples    INTEGER NOT NULL,
    elapsed_ns INTEGER NOT NULL,
    checksum   REAL NOT NULL,
    seq        INTEGER PRIMARY KEY AUTOINCREMENT
)`

const createTimingsIndex = `
CREATE INDEX IF NOT EXISTS timings_run_id ON timings (run_id, seq)`

// ErrNotFound is returned when a run is not found.
var ErrNotFound = errors.New("run not found")

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the SQLite database at dbPath and creates the schema.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A single connection keeps ":memory:" databases shared across queries.
	db.SetMaxOpenConns(1)

	for _, stmt := range []struct {
		desc string
		sql  string
	}{
		{"set WAL mode", "PRAGMA journal_mode=WAL"},
		{"set busy timeout", "PRAGMA busy_timeout = 5000"},
		{"enable foreign keys", "PRAGMA foreign_keys = ON"},
		{"create runs table", createRunsTable},
		{"create timings table", createTimingsTable},
		{"create timings index", createTimingsIndex},
	} {
		if _, err := db.Exec(stmt.sql); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", stmt.desc, err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateRun inserts a new run record.
func (s *SQLiteStore) CreateRun(ctx context.Context, r *Run) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, precision, checksum_mode, platform, config)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.StartedAt, r.Precision, r.ChecksumMode, r.Platform, r.Config,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, error) {
	r := &Run{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, precision, checksum_mode, platform, config
		FROM runs WHERE id = ?`, id,
	).Scan(&r.ID, &r.StartedAt, &r.Precision, &r.ChecksumMode, &r.Platform, &r.Config)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return r, nil
}

// ListRuns returns up to limit runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, precision, checksum_mode, platform, config
		FROM runs ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r := &Run{}
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.Precision, &r.ChecksumMode, &r.Platform, &r.Config); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

// RecordTiming appends one measurement to its run.
func (s *SQLiteStore) RecordTiming(ctx context.Context, t Timing) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO timings (
			run_id, pass, variant, loop, class, length, samples, elapsed_ns, checksum
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.RunID, t.Pass, t.Variant, t.Loop, t.Class, t.Length, t.Samples, t.ElapsedNS, t.Checksum,
	)
	if err != nil {
		return fmt.Errorf("insert timing: %w", err)
	}
	return nil
}

// ListTimings returns the timings of a run in the order they were recorded.
func (s *SQLiteStore) ListTimings(ctx context.Context, runID string) ([]Timing, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, pass, variant, loop, class, length, samples, elapsed_ns, checksum
		FROM timings WHERE run_id = ? ORDER BY seq`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list timings: %w", err)
	}
	defer rows.Close()

	var timings []Timing
	for rows.Next() {
		var t Timing
		if err := rows.Scan(
			&t.RunID, &t.Pass, &t.Variant, &t.Loop, &t.Class,
			&t.Length, &t.Samples, &t.ElapsedNS, &t.Checksum,
		); err != nil {
			return nil, fmt.Errorf("scan timing: %w", err)
		}
		timings = append(timings, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate timings: %w", err)
	}

	return timings, nil
}
