package measure

import (
	"time"

	"zap/internal/clock"
	"zap/internal/stats"
)

const (
	// MaxIterations bounds the batch size so near-zero-cost bodies terminate.
	MaxIterations uint64 = 1_000_000_000

	// MinSamples is collected even when the measurement budget runs out first.
	MinSamples = 10

	batchTarget   = uint64(time.Millisecond)
	batchCeiling  = uint64(10 * time.Millisecond)
	fineTuneFloor = uint64(500 * time.Microsecond)
)

// Defaults used when a Config field is left zero.
const (
	DefaultWarmup      = time.Second
	DefaultMeasurement = 3 * time.Second
	DefaultSamples     = 100
)

// Phase is the state of a Run.
type Phase int

const (
	Warmup Phase = iota
	Measuring
	Done
)

func (p Phase) String() string {
	switch p {
	case Warmup:
		return "warmup"
	case Measuring:
		return "measuring"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Config is fixed for the lifetime of a Run.
type Config struct {
	Warmup        time.Duration
	Measurement   time.Duration
	Samples       int
	MinIterations uint64
}

// withDefaults fills zero fields. A zero Measurement is kept: it means
// "stop as soon as MinSamples are collected".
func (c Config) withDefaults() Config {
	if c.Warmup < 0 {
		c.Warmup = 0
	}
	if c.Measurement < 0 {
		c.Measurement = 0
	}
	if c.Samples <= 0 {
		c.Samples = DefaultSamples
	}
	if c.MinIterations == 0 {
		c.MinIterations = 1
	}
	if c.MinIterations > MaxIterations {
		c.MinIterations = MaxIterations
	}
	return c
}

// DefaultConfig returns the harness defaults: 1s warmup, 3s measurement,
// 100 samples.
func DefaultConfig() Config {
	return Config{
		Warmup:        DefaultWarmup,
		Measurement:   DefaultMeasurement,
		Samples:       DefaultSamples,
		MinIterations: 1,
	}
}

// Run drives one benchmark through warmup and measurement. The caller
// executes Iterations() repetitions of the body between ShouldContinue and
// BatchDone:
//
//	for r.ShouldContinue() {
//		for i := uint64(0); i < r.Iterations(); i++ {
//			body()
//		}
//		r.BatchDone()
//	}
//
// A Run is not safe for concurrent use.
type Run struct {
	name  string
	cfg   Config
	clock clock.Clock

	phase      Phase
	iterations uint64
	samples    []float64
	throughput *stats.Throughput

	started    bool
	start      uint64
	batchStart uint64
	measuring  bool
}

// Start creates a Run in the Warmup phase. A nil clock uses the monotonic clock.
func Start(name string, cfg Config, c clock.Clock) *Run {
	if c == nil {
		c = clock.Monotonic()
	}
	cfg = cfg.withDefaults()
	return &Run{
		name:       name,
		cfg:        cfg,
		clock:      c,
		phase:      Warmup,
		iterations: cfg.MinIterations,
		samples:    make([]float64, 0, cfg.Samples),
	}
}

// Name returns the benchmark name given to Start.
func (r *Run) Name() string { return r.name }

// Config returns the effective configuration, defaults applied.
func (r *Run) Config() Config { return r.cfg }

// Phase returns the current phase.
func (r *Run) Phase() Phase { return r.phase }

// Iterations returns the number of body repetitions for the next batch.
func (r *Run) Iterations() uint64 { return r.iterations }

// Samples returns the collected samples. The slice must not be modified.
func (r *Run) Samples() []float64 { return r.samples }

// Collected returns the number of samples collected so far.
func (r *Run) Collected() int { return len(r.samples) }

// Target returns the configured sample count.
func (r *Run) Target() int { return r.cfg.Samples }

// Short reports whether the run ended before reaching its target sample
// count. This is informational, not a failure.
func (r *Run) Short() bool {
	return r.phase == Done && len(r.samples) < r.cfg.Samples
}

// SetThroughput attaches a per-iteration throughput to the final summary.
func (r *Run) SetThroughput(kind stats.ThroughputKind, value uint64) {
	r.throughput = &stats.Throughput{Kind: kind, Value: value}
}

// ShouldContinue is called before every batch. It returns false once the
// run is Done.
func (r *Run) ShouldContinue() bool {
	switch r.phase {
	case Warmup:
		r.warmupStep()
		return true
	case Measuring:
		return r.measureStep()
	default:
		return false
	}
}

func (r *Run) warmupStep() {
	now := r.clock.Now()
	if !r.started {
		r.started = true
		r.start = now
		r.batchStart = now
		return
	}

	batch := now - r.batchStart
	total := now - r.start

	switch {
	case batch > 0 && batch < batchTarget:
		factor := batchTarget / batch
		if factor > 1 {
			r.iterations = capIterations(r.iterations * factor)
		} else {
			r.iterations = capIterations(r.iterations * 2)
		}
	case batch > batchCeiling:
		r.iterations /= 2
		if r.iterations < r.cfg.MinIterations {
			r.iterations = r.cfg.MinIterations
		}
	}

	if total >= uint64(r.cfg.Warmup) {
		r.phase = Measuring
		r.started = false
		r.measuring = false
	}
	r.batchStart = now
}

func (r *Run) measureStep() bool {
	if len(r.samples) >= r.cfg.Samples {
		r.phase = Done
		return false
	}

	now := r.clock.Now()
	if !r.started {
		r.started = true
		r.start = now
	} else if now-r.start >= uint64(r.cfg.Measurement) && len(r.samples) >= MinSamples {
		r.phase = Done
		return false
	}

	r.measuring = true
	r.batchStart = r.clock.Now()
	return true
}

// BatchDone is called after every batch. During measurement it records one
// sample and doubles the batch size when the batch ran under 0.5ms.
func (r *Run) BatchDone() {
	if r.phase != Measuring || !r.measuring {
		return
	}
	elapsed := r.clock.Now() - r.batchStart

	if len(r.samples) < r.cfg.Samples {
		r.samples = append(r.samples, float64(elapsed)/float64(r.iterations))
	}
	if elapsed < fineTuneFloor {
		r.iterations = capIterations(r.iterations * 2)
	}
	r.measuring = false
}

// Finish summarizes the collected samples. ranks selects the reported
// percentiles; nil means stats.DefaultPercentiles.
func (r *Run) Finish(ranks []float64) stats.Summary {
	r.phase = Done
	s := stats.Summarize(r.samples, ranks)
	s.Iterations = r.iterations
	if r.throughput != nil {
		tp := *r.throughput
		s.Throughput = &tp
	}
	return s
}

func capIterations(n uint64) uint64 {
	if n > MaxIterations {
		return MaxIterations
	}
	return n
}
