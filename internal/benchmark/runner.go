package benchmark

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"zap/internal/clock"
	"zap/internal/measure"

	"github.com/google/uuid"
)

// Reporter receives session events in run order.
type Reporter interface {
	GroupStart(name string)
	Result(r Result)
	Case(c CaseResult)
	// Warn reports a soft condition. The run always continues.
	Warn(msg string)
	Note(msg string)
	Finish(rep *Report) error
}

// HistoryStore persists finished runs.
type HistoryStore interface {
	SaveRun(ctx context.Context, rep *Report) error
}

// MetricsSink exports per-benchmark results.
type MetricsSink interface {
	Observe(r Result)
	Flush(ctx context.Context) error
}

// SessionConfig is the resolved configuration of one session.
type SessionConfig struct {
	Measure     measure.Config
	Percentiles []float64
	Filter      string
	Tags        []string

	// BaselinePath empty means DefaultBaselinePath, which is silent when
	// absent.
	BaselinePath string
	Compare      bool
	Save         bool
}

// DefaultSessionConfig compares against and saves to the default baseline.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Measure: measure.DefaultConfig(),
		Compare: true,
		Save:    true,
	}
}

// Session is the context of one harness invocation. It owns the baseline
// and is not safe for concurrent use; separate sessions are independent.
type Session struct {
	cfg      SessionConfig
	clock    clock.Clock
	reporter Reporter
	baseline *Baseline
	history  HistoryStore
	metrics  MetricsSink
	logger   *slog.Logger

	compare bool
	save    bool
}

type SessionOption func(*Session)

func WithClock(c clock.Clock) SessionOption {
	return func(s *Session) { s.clock = c }
}

func WithReporter(r Reporter) SessionOption {
	return func(s *Session) { s.reporter = r }
}

// WithBaseline uses b instead of loading the configured baseline file.
func WithBaseline(b *Baseline) SessionOption {
	return func(s *Session) { s.baseline = b }
}

func WithHistory(h HistoryStore) SessionOption {
	return func(s *Session) { s.history = h }
}

func WithMetrics(m MetricsSink) SessionOption {
	return func(s *Session) { s.metrics = m }
}

func WithLogger(l *slog.Logger) SessionOption {
	return func(s *Session) { s.logger = l }
}

func NewSession(cfg SessionConfig, opts ...SessionOption) *Session {
	s := &Session{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = clock.Monotonic()
	}
	if s.reporter == nil {
		s.reporter = nopReporter{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// BaselinePath returns the file the session reads and writes.
func (s *Session) BaselinePath() string {
	if s.cfg.BaselinePath == "" {
		return DefaultBaselinePath
	}
	return s.cfg.BaselinePath
}

// Baseline returns the session's baseline, including entries added by Run.
func (s *Session) Baseline() *Baseline { return s.baseline }

// Run executes every selected benchmark of reg in registration order.
// Cancellation is observed between benchmarks; on cancellation the partial
// report is returned with ctx's error.
func (s *Session) Run(ctx context.Context, reg *Registry) (*Report, error) {
	if err := reg.Err(); err != nil {
		return nil, fmt.Errorf("invalid registry: %w", err)
	}

	rep := &Report{ID: uuid.NewString(), StartedAt: time.Now()}
	s.prepareBaseline()
	s.logger.Info("benchmark session started", "run_id", rep.ID, "benchmarks", reg.Len())

	lastGroup := ""
	for _, u := range reg.units {
		if err := ctx.Err(); err != nil {
			return rep, err
		}

		var group *Group
		if u.bench != nil {
			group = u.bench.group
		} else {
			group = u.cs.group.Group
		}
		if !MatchTags(group.tags, s.cfg.Tags) {
			continue
		}

		if u.bench != nil {
			if !MatchFilter(u.bench.key, s.cfg.Filter) {
				continue
			}
			s.groupStart(group, &lastGroup)
			rep.Results = append(rep.Results, s.runBenchmark(u.bench))
			continue
		}

		if !s.caseSelected(u.cs) {
			continue
		}
		s.groupStart(group, &lastGroup)
		cr := s.runCase(u.cs)
		for _, ir := range cr.Impls {
			rep.Results = append(rep.Results, ir.Result)
		}
		rep.Cases = append(rep.Cases, cr)
		s.reporter.Case(cr)
	}

	s.finalize(ctx, rep)
	if err := s.reporter.Finish(rep); err != nil {
		return rep, fmt.Errorf("failed to write report: %w", err)
	}
	return rep, nil
}

func (s *Session) groupStart(g *Group, last *string) {
	if g.name == *last {
		return
	}
	*last = g.name
	s.reporter.GroupStart(g.name)
}

// caseSelected runs a whole case when any of its implementations matches,
// so ratios always have their baseline implementation.
func (s *Session) caseSelected(c *Case) bool {
	for _, bm := range c.impls {
		if MatchFilter(bm.key, s.cfg.Filter) {
			return true
		}
	}
	return false
}

func (s *Session) prepareBaseline() {
	s.compare = s.cfg.Compare
	s.save = s.cfg.Save
	if s.baseline != nil {
		return
	}
	s.baseline = NewBaseline()
	if !s.cfg.Compare && !s.cfg.Save {
		return
	}

	path := s.BaselinePath()
	found, err := s.baseline.Load(path)
	switch {
	case errors.Is(err, ErrInvalidHeader):
		s.reporter.Warn(fmt.Sprintf("Ignoring baseline at '%s': invalid header", path))
		s.logger.Warn("invalid baseline header", "path", path)
		s.baseline = NewBaseline()
		s.compare = false
		// Only the default location is ours to overwrite.
		if s.cfg.BaselinePath != "" && s.save {
			s.reporter.Warn(fmt.Sprintf("Not overwriting '%s': not a zap baseline", path))
			s.save = false
		}
	case err != nil:
		s.reporter.Warn(fmt.Sprintf("Could not read baseline at '%s': %v", path, err))
		s.logger.Error("failed to load baseline", "path", path, "error", err)
		s.compare = false
	case !found:
		if s.cfg.BaselinePath != "" && s.cfg.Compare {
			s.reporter.Warn(fmt.Sprintf("No baseline found at '%s', running without comparison", path))
		}
		s.logger.Debug("no baseline", "path", path)
		s.compare = false
	default:
		s.logger.Debug("baseline loaded", "path", path, "entries", s.baseline.Len(), "skipped", s.baseline.Skipped())
	}
}

func (s *Session) runBenchmark(bm *Benchmark) Result {
	res := s.measure(bm)
	s.reporter.Result(res)
	return res
}

func (s *Session) measure(bm *Benchmark) Result {
	cfg := bm.group.Config(s.cfg.Measure)
	run := measure.Start(bm.key, cfg, s.clock)

	started := time.Now()
	bm.fn(measure.NewB(run))
	elapsed := time.Since(started)

	sum := run.Finish(s.cfg.Percentiles)
	res := Result{
		Name:      bm.key,
		Group:     bm.group.name,
		Tags:      bm.group.tags,
		Summary:   sum,
		Collected: run.Collected(),
		Target:    run.Target(),
		Elapsed:   elapsed,
	}

	if res.Collected == 0 {
		s.reporter.Warn(fmt.Sprintf("%s: no samples collected", bm.key))
		s.logger.Warn("benchmark collected no samples", "name", bm.key)
		return res
	}
	if res.Short() {
		s.logger.Info("time limit reached", "name", bm.key, "collected", res.Collected, "target", res.Target)
	}

	if s.compare {
		if prev, ok := s.baseline.Find(bm.key); ok {
			v := Compare(bm.key, prev, sum)
			res.Verdict = &v
		} else {
			res.New = true
		}
	}
	if s.save {
		s.baseline.Add(bm.key, sum)
	}
	if s.metrics != nil {
		s.metrics.Observe(res)
	}
	s.logger.Debug("benchmark finished", "name", bm.key, "mean_ns", sum.Mean, "samples", res.Collected, "iterations", sum.Iterations)
	return res
}

func (s *Session) runCase(c *Case) CaseResult {
	cr := CaseResult{Group: c.group.name, ID: c.id.String()}
	for _, bm := range c.impls {
		res := s.measure(bm)
		s.reporter.Result(res)
		cr.Impls = append(cr.Impls, ImplResult{Impl: bm.impl, Result: res})
	}

	idx := c.group.baseline
	if idx >= len(cr.Impls) {
		s.reporter.Warn(fmt.Sprintf("%s/%s: baseline index %d out of range, using 0", c.group.name, cr.ID, idx))
		idx = 0
	}
	cr.Baseline = cr.Impls[idx].Impl
	base := cr.Impls[idx].Result.Summary.Mean
	for i := range cr.Impls {
		if base > 0 {
			cr.Impls[i].Ratio = cr.Impls[i].Result.Summary.Mean / base
		}
	}
	return cr
}

func (s *Session) finalize(ctx context.Context, rep *Report) {
	if s.save && s.baseline.Len() > 0 {
		path := s.BaselinePath()
		if err := s.baseline.Save(path); err != nil {
			rep.SaveErr = err
			s.reporter.Warn(fmt.Sprintf("Failed to save baseline: %v", err))
			s.logger.Error("failed to save baseline", "path", path, "error", err)
		} else if s.cfg.BaselinePath != "" {
			s.reporter.Note(fmt.Sprintf("Baseline saved to: %s", path))
		}
	}

	if s.history != nil {
		if err := s.history.SaveRun(ctx, rep); err != nil {
			s.reporter.Warn(fmt.Sprintf("Failed to record history: %v", err))
			s.logger.Error("failed to record history", "error", err)
		}
	}
	if s.metrics != nil {
		if err := s.metrics.Flush(ctx); err != nil {
			s.reporter.Warn(fmt.Sprintf("Failed to export metrics: %v", err))
			s.logger.Error("failed to export metrics", "error", err)
		}
	}
}

type nopReporter struct{}

func (nopReporter) GroupStart(string)    {}
func (nopReporter) Result(Result)        {}
func (nopReporter) Case(CaseResult)      {}
func (nopReporter) Warn(string)          {}
func (nopReporter) Note(string)          {}
func (nopReporter) Finish(*Report) error { return nil }
