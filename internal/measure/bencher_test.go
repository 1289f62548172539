package measure

import (
	"testing"
	"time"

	"zap/internal/clock"
	"zap/internal/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestB_IterRealClock(t *testing.T) {
	r := Start("real", Config{Warmup: 5 * time.Millisecond, Measurement: 10 * time.Millisecond, Samples: 20}, nil)
	b := NewB(r)

	x := 0
	b.Iter(func() { x = BlackBox(x + 1) })

	assert.Equal(t, Done, r.Phase())
	assert.GreaterOrEqual(t, r.Collected(), MinSamples)
	assert.LessOrEqual(t, r.Collected(), 20)
	assert.Greater(t, x, 0)
	for _, s := range r.Samples() {
		assert.GreaterOrEqual(t, s, 0.0)
	}
}

func TestB_IterBatchSeesIterations(t *testing.T) {
	f := clock.NewFake(0, 0)
	r := Start("batch", Config{Warmup: 2 * time.Millisecond, Samples: 10, MinIterations: 4}, f)
	b := NewB(r)

	calls := 0
	b.IterBatch(func(n uint64) {
		require.Equal(t, r.Iterations(), n)
		f.Advance(time.Duration(n) * 250 * time.Microsecond)
		calls++
	})

	assert.Equal(t, uint64(4), r.Iterations())
	assert.Equal(t, 10, r.Collected())
	assert.Greater(t, calls, 10)
}

func TestB_IterCustomRunsSetupOnce(t *testing.T) {
	f := clock.NewFake(0, time.Millisecond)
	r := Start("custom", Config{Warmup: 5 * time.Millisecond, Samples: 10}, f)
	b := NewB(r)

	var setup, routine, teardown int
	b.IterCustom(
		func() { setup++ },
		func() {
			require.Equal(t, 1, setup)
			require.Equal(t, 0, teardown)
			routine++
		},
		func() { teardown++ },
	)

	assert.Equal(t, 1, setup)
	assert.Equal(t, 1, teardown)
	assert.Greater(t, routine, 0)
	assert.Equal(t, 10, r.Collected())
}

func TestB_IterCustomNilHooks(t *testing.T) {
	f := clock.NewFake(0, time.Millisecond)
	r := Start("nil-hooks", Config{Samples: 10}, f)
	b := NewB(r)

	n := 0
	assert.NotPanics(t, func() { b.IterCustom(nil, func() { n++ }, nil) })
	assert.Greater(t, n, 0)
}

func TestB_Throughput(t *testing.T) {
	f := clock.NewFake(0, time.Millisecond)
	r := Start("throughput", Config{Samples: 10}, f)
	b := NewB(r)
	assert.Equal(t, "throughput", b.Name())
	assert.Same(t, r, b.Run())

	b.SetThroughputElements(64)
	b.Iter(func() {})
	s := r.Finish(nil)
	require.NotNil(t, s.Throughput)
	assert.Equal(t, stats.ThroughputElements, s.Throughput.Kind)
	assert.Equal(t, uint64(64), s.Throughput.Value)

	b.SetThroughputBytes(128)
	s = r.Finish(nil)
	assert.Equal(t, stats.ThroughputBytes, s.Throughput.Kind)
}

func TestBlackBox(t *testing.T) {
	assert.Equal(t, 7, BlackBox(7))
	assert.Equal(t, "s", BlackBox("s"))
	buf := []byte{1, 2}
	assert.Equal(t, buf, BlackBox(buf))
}
