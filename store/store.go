// Package store archives simulation runs in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	// Register sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound reports a run id missing from the archive.
var ErrNotFound = errors.New("run not found")

// createdLayout is fixed width so that text order is time order.
const createdLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DB is the part of *sql.DB the store needs.
type DB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	Close() error
}

// Run is one archived simulation.
type Run struct {
	ID           string          `json:"id"`
	CreatedAt    time.Time       `json:"created_at"`
	Scenario     string          `json:"scenario"`
	HorizonDays  int             `json:"horizon_days"`
	NumPaths     int             `json:"num_paths"`
	Seed         uint64          `json:"seed"`
	SnapshotDate string          `json:"snapshot_date"` // day of the prices the run started from
	Summary      json.RawMessage `json:"summary"`
}

// Store is the run archive.
type Store struct{ db DB }

// OpenSQLite opens the sqlite3 database at dsn.
func OpenSQLite(dsn string) (DB, error) {
	return sql.Open("sqlite3", dsn)
}

// Open opens the archive at path and creates its table if needed.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := OpenSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open run archive %q: %w", path, err)
	}
	if err := InitSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot initialize run archive %q: %w", path, err)
	}
	return NewStore(db), nil
}

// InitSchema creates the run table if it does not exist.
func InitSchema(ctx context.Context, db DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS simulation_run(
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		scenario TEXT NOT NULL,
		horizon_days INTEGER NOT NULL,
		num_paths INTEGER NOT NULL,
		seed TEXT NOT NULL,
		snapshot_date TEXT,
		summary_json TEXT NOT NULL
	)`)
	return err
}

// NewStore returns a store on an initialized db.
func NewStore(db DB) *Store { return &Store{db: db} }

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// SaveRun archives r.
func (s *Store) SaveRun(ctx context.Context, r Run) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO simulation_run(id,created_at,scenario,horizon_days,num_paths,seed,snapshot_date,summary_json)
		VALUES(?,?,?,?,?,?,?,?)`,
		r.ID, r.CreatedAt.UTC().Format(createdLayout), r.Scenario, r.HorizonDays, r.NumPaths,
		strconv.FormatUint(r.Seed, 10), r.SnapshotDate, string(r.Summary))
	if err != nil {
		return fmt.Errorf("cannot save run %s: %w", r.ID, err)
	}
	return nil
}

const selectRun = `SELECT id,created_at,scenario,horizon_days,num_paths,seed,snapshot_date,summary_json FROM simulation_run`

// GetRun returns the run with the given id.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	runs, err := s.query(ctx, selectRun+` WHERE id=?`, id)
	if err != nil {
		return Run{}, err
	}
	if len(runs) == 0 {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return runs[0], nil
}

// ListRuns returns the most recent runs first, at most limit of them.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	return s.query(ctx, selectRun+` ORDER BY created_at DESC LIMIT ?`, limit)
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("cannot query runs: %w", err)
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		var r Run
		var created, seed, summary string
		var snapshot sql.NullString
		if err := rows.Scan(&r.ID, &created, &r.Scenario, &r.HorizonDays, &r.NumPaths, &seed, &snapshot, &summary); err != nil {
			return nil, fmt.Errorf("cannot read run: %w", err)
		}
		if r.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("run %s has an invalid creation time %q: %w", r.ID, created, err)
		}
		if r.Seed, err = strconv.ParseUint(seed, 10, 64); err != nil {
			return nil, fmt.Errorf("run %s has an invalid seed %q: %w", r.ID, seed, err)
		}
		r.SnapshotDate = snapshot.String
		r.Summary = json.RawMessage(summary)
		out = append(out, r)
	}
	return out, rows.Err()
}
