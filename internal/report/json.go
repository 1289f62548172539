package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"zap/internal/benchmark"
	"zap/internal/env"
)

// JSON buffers the run and writes one document at Finish.
type JSON struct {
	w        io.Writer
	env      *env.Info
	warnings []string
	notes    []string
}

var _ benchmark.Reporter = (*JSON)(nil)

// NewJSON writes to w. A non-nil info is embedded as "env".
func NewJSON(w io.Writer, info *env.Info) *JSON {
	return &JSON{w: w, env: info}
}

// Document is the JSON report schema.
type Document struct {
	RunID     string                 `json:"run_id"`
	StartedAt time.Time              `json:"started_at"`
	Env       *env.Info              `json:"env,omitempty"`
	Results   []ResultDoc            `json:"results"`
	Cases     []benchmark.CaseResult `json:"cases,omitempty"`
	Warnings  []string               `json:"warnings,omitempty"`
	Notes     []string               `json:"notes,omitempty"`
}

// ResultDoc adds derived fields to a result.
type ResultDoc struct {
	benchmark.Result
	Short      bool    `json:"short"`
	Throughput float64 `json:"throughput_per_sec,omitempty"`
}

func (j *JSON) GroupStart(string)         {}
func (j *JSON) Result(benchmark.Result)   {}
func (j *JSON) Case(benchmark.CaseResult) {}
func (j *JSON) Warn(msg string)           { j.warnings = append(j.warnings, msg) }
func (j *JSON) Note(msg string)           { j.notes = append(j.notes, msg) }

func (j *JSON) Finish(rep *benchmark.Report) error {
	doc := Document{
		RunID:     rep.ID,
		StartedAt: rep.StartedAt,
		Env:       j.env,
		Results:   make([]ResultDoc, 0, len(rep.Results)),
		Cases:     rep.Cases,
		Warnings:  j.warnings,
		Notes:     j.notes,
	}
	for _, res := range rep.Results {
		rd := ResultDoc{Result: res, Short: res.Collected > 0 && res.Short()}
		if tp := res.Summary.Throughput; tp != nil {
			rd.Throughput = tp.PerSecond(res.Summary.Mean)
		}
		doc.Results = append(doc.Results, rd)
	}

	enc := json.NewEncoder(j.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
