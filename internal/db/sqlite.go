package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"zap/internal/benchmark"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (creating if needed) the database at path and
// applies migrations.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." && path != ":memory:" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		benchmarks INTEGER NOT NULL,
		regressed INTEGER NOT NULL,
		improved INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		name TEXT NOT NULL,
		group_name TEXT NOT NULL,
		mean REAL NOT NULL,
		median REAL NOT NULL,
		std_dev REAL NOT NULL,
		ci_lower REAL NOT NULL,
		ci_upper REAL NOT NULL,
		samples INTEGER NOT NULL,
		iterations INTEGER NOT NULL,
		change TEXT,
		change_pct REAL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_results_name ON results(name, created_at);
	`
	_, err := s.db.Exec(query)
	return err
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun records rep and every result that collected samples in one
// transaction.
func (s *SQLiteStore) SaveRun(ctx context.Context, rep *benchmark.Report) error {
	var improved, regressed, saved int
	for _, r := range rep.Results {
		if r.Collected == 0 {
			continue
		}
		saved++
		if r.Verdict == nil {
			continue
		}
		switch r.Verdict.Change {
		case benchmark.Improved:
			improved++
		case benchmark.Regressed:
			regressed++
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	started := rep.StartedAt.UnixNano()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, benchmarks, regressed, improved) VALUES (?, ?, ?, ?, ?)`,
		rep.ID, started, saved, regressed, improved)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", rep.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO results
		(run_id, name, group_name, mean, median, std_dev, ci_lower, ci_upper, samples, iterations, change, change_pct, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rep.Results {
		if r.Collected == 0 {
			continue
		}
		var change sql.NullString
		var pct sql.NullFloat64
		if r.Verdict != nil {
			change = sql.NullString{String: r.Verdict.Change.String(), Valid: true}
			pct = sql.NullFloat64{Float64: r.Verdict.ChangePct, Valid: true}
		}
		sum := r.Summary
		_, err := stmt.ExecContext(ctx, rep.ID, r.Name, r.Group,
			sum.Mean, sum.Median, sum.StdDev, sum.CILower, sum.CIUpper,
			sum.SampleCount, int64(sum.Iterations), change, pct, started)
		if err != nil {
			return fmt.Errorf("failed to insert result %s: %w", r.Name, err)
		}
	}

	return tx.Commit()
}

// QueryHistory returns the most recent results of the named benchmark,
// newest first.
func (s *SQLiteStore) QueryHistory(ctx context.Context, name string, limit int) ([]Record, error) {
	query := `SELECT id, run_id, name, group_name, mean, median, std_dev, ci_lower, ci_upper,
		samples, iterations, change, change_pct, created_at
		FROM results WHERE name = ? ORDER BY created_at DESC, id DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, name, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Record
	for rows.Next() {
		var (
			rec     Record
			iters   int64
			created int64
			change  sql.NullString
			pct     sql.NullFloat64
		)
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.Name, &rec.Group, &rec.Mean, &rec.Median,
			&rec.StdDev, &rec.CILower, &rec.CIUpper, &rec.Samples, &iters, &change, &pct, &created); err != nil {
			return nil, err
		}
		rec.Iterations = uint64(iters)
		rec.CreatedAt = time.Unix(0, created)
		if change.Valid {
			rec.Change = change.String
		}
		if pct.Valid {
			v := pct.Float64
			rec.ChangePct = &v
		}
		results = append(results, rec)
	}
	return results, rows.Err()
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, started_at, benchmarks, regressed, improved FROM runs ORDER BY started_at DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var started int64
		if err := rows.Scan(&run.ID, &started, &run.Benchmarks, &run.Regressed, &run.Improved); err != nil {
			return nil, err
		}
		run.StartedAt = time.Unix(0, started)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
