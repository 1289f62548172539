package db

import (
	"context"
	"time"

	"zap/internal/benchmark"
)

// Store persists benchmark runs so results can be tracked across
// baselines.
type Store interface {
	benchmark.HistoryStore
	Close() error
	QueryHistory(ctx context.Context, name string, limit int) ([]Record, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)
}

// Run is one recorded session.
type Run struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	Benchmarks int       `json:"benchmarks"`
	Regressed  int       `json:"regressed"`
	Improved   int       `json:"improved"`
}

// Record is one benchmark result of a recorded run.
type Record struct {
	ID         int64     `json:"id"`
	RunID      string    `json:"run_id"`
	Name       string    `json:"name"`
	Group      string    `json:"group"`
	Mean       float64   `json:"mean"`
	Median     float64   `json:"median"`
	StdDev     float64   `json:"std_dev"`
	CILower    float64   `json:"ci_lower"`
	CIUpper    float64   `json:"ci_upper"`
	Samples    int       `json:"samples"`
	Iterations uint64    `json:"iterations"`
	Change     string    `json:"change,omitempty"`
	ChangePct  *float64  `json:"change_pct,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
