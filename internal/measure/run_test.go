package measure

import (
	"testing"
	"time"

	"zap/internal/clock"
	"zap/internal/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drive runs r to completion, charging cost(iterations) to the fake clock
// for every batch.
func drive(r *Run, f *clock.Fake, cost func(iterations uint64) time.Duration) int {
	batches := 0
	for r.ShouldContinue() {
		if r.Phase() == Warmup && r.Collected() != 0 {
			panic("warmup wrote a sample")
		}
		f.Advance(cost(r.Iterations()))
		r.BatchDone()
		batches++
	}
	return batches
}

func perIteration(d time.Duration) func(uint64) time.Duration {
	return func(n uint64) time.Duration { return d * time.Duration(n) }
}

func TestRun_ZeroCostBodyTerminates(t *testing.T) {
	f := clock.NewFake(0, time.Microsecond)
	r := Start("noop", Config{Warmup: time.Second, Measurement: 3 * time.Second, Samples: 100}, f)

	drive(r, f, func(uint64) time.Duration { return 0 })

	assert.Equal(t, Done, r.Phase())
	assert.GreaterOrEqual(t, r.Collected(), MinSamples)
	assert.Equal(t, MaxIterations, r.Iterations())
	for _, s := range r.Samples() {
		assert.GreaterOrEqual(t, s, 0.0)
	}
}

func TestRun_TimeBudgetStopsShort(t *testing.T) {
	f := clock.NewFake(0, 0)
	r := Start("slow", Config{Warmup: time.Second, Measurement: 1500 * time.Millisecond, Samples: 100}, f)

	drive(r, f, func(uint64) time.Duration { return 100 * time.Millisecond })

	assert.Equal(t, 15, r.Collected())
	assert.Equal(t, 100, r.Target())
	assert.True(t, r.Short())
	assert.Equal(t, uint64(1), r.Iterations())
	for _, s := range r.Samples() {
		assert.Equal(t, float64(100*time.Millisecond), s)
	}
}

func TestRun_MinimumSampleFloor(t *testing.T) {
	f := clock.NewFake(0, 0)
	r := Start("floor", Config{Warmup: 0, Measurement: 0, Samples: 100}, f)

	drive(r, f, func(uint64) time.Duration { return 2 * time.Millisecond })

	assert.Equal(t, MinSamples, r.Collected())
	assert.True(t, r.Short())
}

func TestRun_StopsAtTargetSampleCount(t *testing.T) {
	f := clock.NewFake(0, 0)
	r := Start("fast", Config{Warmup: 10 * time.Millisecond, Measurement: time.Hour, Samples: 25}, f)

	drive(r, f, perIteration(time.Millisecond))

	assert.Equal(t, 25, r.Collected())
	assert.False(t, r.Short())
}

func TestRun_CalibratesTowardOneMillisecond(t *testing.T) {
	f := clock.NewFake(0, 0)
	r := Start("calibrate", Config{Warmup: 50 * time.Millisecond, Measurement: 0, Samples: 10}, f)

	drive(r, f, perIteration(10*time.Microsecond))

	// 1ms / 10µs = 100 iterations; a 1ms batch is neither scaled nor fine-tuned.
	assert.Equal(t, uint64(100), r.Iterations())
	s := r.Finish(nil)
	assert.InDelta(t, float64(10*time.Microsecond), s.Mean, 1e-6)
	assert.Equal(t, uint64(100), s.Iterations)
}

func TestRun_DoublesWhenFactorIsOne(t *testing.T) {
	f := clock.NewFake(0, 0)
	r := Start("double", Config{Warmup: 20 * time.Millisecond, Measurement: 0, Samples: 10}, f)

	drive(r, f, perIteration(600*time.Microsecond))

	// 1ms / 600µs truncates to 1, so the batch doubles once to 1.2ms.
	assert.Equal(t, uint64(2), r.Iterations())
}

func TestRun_HalvesExpensiveBatches(t *testing.T) {
	f := clock.NewFake(0, 0)
	r := Start("expensive", Config{Warmup: 100 * time.Millisecond, Measurement: 0, Samples: 10}, f)

	drive(r, f, perIteration(20*time.Millisecond))

	assert.Equal(t, uint64(1), r.Iterations())
	assert.Equal(t, MinSamples, r.Collected())
}

func TestRun_MinIterationsFloor(t *testing.T) {
	f := clock.NewFake(0, 0)
	r := Start("floor", Config{Warmup: 200 * time.Millisecond, Measurement: 0, Samples: 10, MinIterations: 8}, f)
	require.Equal(t, uint64(8), r.Iterations())

	drive(r, f, perIteration(4*time.Millisecond))

	assert.Equal(t, uint64(8), r.Iterations())
}

func TestRun_FineTunesDuringMeasurement(t *testing.T) {
	f := clock.NewFake(0, 0)
	r := Start("retune", Config{Warmup: 10 * time.Millisecond, Measurement: time.Hour, Samples: 6}, f)

	// Warmup sees exactly 1ms batches; measurement gets ten times cheaper.
	drive(r, f, func(n uint64) time.Duration {
		if r.Phase() == Warmup {
			return time.Millisecond * time.Duration(n)
		}
		return 100 * time.Microsecond * time.Duration(n)
	})

	// 100µs -> 200µs -> 400µs -> 800µs, then batches are long enough.
	assert.Equal(t, uint64(8), r.Iterations())
	assert.Equal(t, 6, r.Collected())
	for _, s := range r.Samples() {
		assert.InDelta(t, float64(100*time.Microsecond), s, 1e-6)
	}
}

func TestRun_BatchDoneOutsideMeasurementIsNoop(t *testing.T) {
	f := clock.NewFake(0, time.Millisecond)
	r := Start("noop", Config{Warmup: time.Second, Samples: 10}, f)

	r.BatchDone()
	require.True(t, r.ShouldContinue())
	r.BatchDone()
	assert.Equal(t, 0, r.Collected())
	assert.Equal(t, Warmup, r.Phase())
}

func TestRun_DoneStaysDone(t *testing.T) {
	f := clock.NewFake(0, 0)
	r := Start("done", Config{Samples: 10}, f)
	drive(r, f, perIteration(time.Millisecond))

	assert.False(t, r.ShouldContinue())
	assert.False(t, r.ShouldContinue())
	assert.Equal(t, "done", r.Phase().String())
}

func TestRun_Defaults(t *testing.T) {
	r := Start("defaults", Config{}, nil)
	cfg := r.Config()
	assert.Equal(t, DefaultSamples, cfg.Samples)
	assert.Equal(t, uint64(1), cfg.MinIterations)
	assert.Equal(t, uint64(1), r.Iterations())
	assert.Equal(t, "defaults", r.Name())

	d := DefaultConfig()
	assert.Equal(t, time.Second, d.Warmup)
	assert.Equal(t, 3*time.Second, d.Measurement)
}

func TestRun_FinishCarriesThroughput(t *testing.T) {
	f := clock.NewFake(0, 0)
	r := Start("copy", Config{Samples: 10}, f)
	r.SetThroughput(stats.ThroughputBytes, 4096)
	drive(r, f, perIteration(time.Millisecond))

	s := r.Finish([]float64{90})
	require.NotNil(t, s.Throughput)
	assert.Equal(t, stats.ThroughputBytes, s.Throughput.Kind)
	assert.Equal(t, uint64(4096), s.Throughput.Value)
	assert.Len(t, s.Percentiles, 1)
	assert.Equal(t, 10, s.SampleCount)
}
