package measure

import "zap/internal/stats"

// B is handed to benchmark functions. It wraps a Run with the common loop
// shapes so most benchmarks never touch ShouldContinue/BatchDone directly.
type B struct {
	run *Run
}

// NewB wraps run.
func NewB(run *Run) *B {
	return &B{run: run}
}

// Name returns the full key of the benchmark being measured.
func (b *B) Name() string { return b.run.Name() }

// Run exposes the underlying state machine for hand-written loops.
func (b *B) Run() *Run { return b.run }

// Iter times fn, calling it once per iteration.
func (b *B) Iter(fn func()) {
	r := b.run
	for r.ShouldContinue() {
		for i := uint64(0); i < r.iterations; i++ {
			fn()
		}
		r.BatchDone()
	}
}

// IterBatch times fn, which must execute n iterations itself. This keeps
// per-iteration call overhead out of measurements of very cheap bodies.
func (b *B) IterBatch(fn func(n uint64)) {
	r := b.run
	for r.ShouldContinue() {
		fn(r.iterations)
		r.BatchDone()
	}
}

// IterCustom runs setup once, times routine like Iter, then runs teardown.
// setup and teardown may be nil and are never timed.
func (b *B) IterCustom(setup, routine, teardown func()) {
	if setup != nil {
		setup()
	}
	b.Iter(routine)
	if teardown != nil {
		teardown()
	}
}

// SetThroughputBytes reports n bytes processed per iteration.
func (b *B) SetThroughputBytes(n uint64) {
	b.run.SetThroughput(stats.ThroughputBytes, n)
}

// SetThroughputElements reports n elements processed per iteration.
func (b *B) SetThroughputElements(n uint64) {
	b.run.SetThroughput(stats.ThroughputElements, n)
}

// BlackBox returns v unchanged. It is never inlined, so the compiler must
// materialize v and cannot drop the computation that produced it.
//
//go:noinline
func BlackBox[T any](v T) T {
	return v
}
