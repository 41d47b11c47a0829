package trace

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists run traces in a SQLite database. Each run gets a
// fresh UUID; entries stream into the run as they are recorded.
type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

// NewSQLiteStore creates a store backed by the database at path. Call
// Init before use.
func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

// Init opens the database and creates the schema if missing. Calling Init
// on an initialized store is a no-op.
func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("trace: sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

// RunInfo describes a stored run.
type RunInfo struct {
	ID        string
	Algorithm string
	CreatedAt string
}

// Run is a Recorder scoped to one stored run.
type Run struct {
	ID    string
	store *SQLiteStore
}

// StartRun registers a new run for the named algorithm and returns its
// recorder.
func (s *SQLiteStore) StartRun(ctx context.Context, algorithm string) (*Run, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, algorithm, created_at)
		VALUES (?, ?, datetime('now'))
	`, id, algorithm)
	if err != nil {
		return nil, err
	}
	return &Run{ID: id, store: s}, nil
}

// Record persists one entry of the run.
func (r *Run) Record(ctx context.Context, e Entry) error {
	db, err := r.store.getDB()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO entries (run_id, step, loss, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(run_id, step) DO UPDATE SET
			loss = excluded.loss,
			payload = excluded.payload
	`, r.ID, e.Step, e.Loss, e.Payload)
	return err
}

// Close is a no-op; the run shares the store's connection.
func (r *Run) Close() error { return nil }

// Entries returns the recorded trace of a run in step order.
func (s *SQLiteStore) Entries(ctx context.Context, runID string) ([]Entry, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT step, loss, payload FROM entries
		WHERE run_id = ?
		ORDER BY step
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Step, &e.Loss, &e.Payload); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Runs lists stored runs, newest first.
func (s *SQLiteStore) Runs(ctx context.Context) ([]RunInfo, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, algorithm, created_at FROM runs
		ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var r RunInfo
		if err := rows.Scan(&r.ID, &r.Algorithm, &r.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("trace: store is not initialized")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			algorithm TEXT NOT NULL,
			created_at TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS entries (
			run_id TEXT NOT NULL REFERENCES runs(id),
			step INTEGER NOT NULL,
			loss REAL NOT NULL,
			payload BLOB,
			PRIMARY KEY (run_id, step)
		);
	`)
	return err
}
