package stats

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMean(t *testing.T) {
	assert.InDelta(t, 3.0, Mean([]float64{1, 2, 3, 4, 5}), 1e-9)
	assert.InDelta(t, 42.0, Mean([]float64{42}), 1e-9)
	assert.Equal(t, 0.0, Mean(nil))
}

func TestMedian(t *testing.T) {
	assert.InDelta(t, 3.0, Median([]float64{5, 1, 3, 2, 4}), 1e-9)
	assert.InDelta(t, 2.5, Median([]float64{4, 1, 3, 2}), 1e-9)
	assert.InDelta(t, 42.0, Median([]float64{42}), 1e-9)
	assert.Equal(t, 0.0, Median(nil))
}

func TestMedian_SortsInPlace(t *testing.T) {
	s := []float64{3, 1, 2}
	Median(s)
	assert.Equal(t, []float64{1, 2, 3}, s)
}

func TestMedian_IdempotentUnderResort(t *testing.T) {
	unsorted := []float64{9, 2, 7, 4, 4, 5, 4, 5}
	a := Median(append([]float64(nil), unsorted...))

	sorted := append([]float64(nil), unsorted...)
	sort.Float64s(sorted)
	b := Median(sorted)

	assert.Equal(t, a, b)
}

func TestPercentile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}

	assert.InDelta(t, 3.0, Percentile(sorted, 50), 1e-9)
	assert.InDelta(t, 1.0, Percentile(sorted, 0), 1e-9)
	assert.InDelta(t, 5.0, Percentile(sorted, 100), 1e-9)
	assert.InDelta(t, 2.0, Percentile(sorted, 25), 1e-9)
	assert.InDelta(t, 4.6, Percentile(sorted, 90), 1e-9)
}

func TestPercentile_Boundaries(t *testing.T) {
	assert.Equal(t, 0.0, Percentile(nil, 50))
	assert.Equal(t, 7.0, Percentile([]float64{7}, 99))

	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 50; trial++ {
		n := 1 + rng.Intn(40)
		s := make([]float64, n)
		for i := range s {
			s[i] = rng.Float64() * 1000
		}
		sort.Float64s(s)
		assert.Equal(t, s[0], Percentile(s, 0))
		assert.Equal(t, s[n-1], Percentile(s, 100))
	}
}

func TestStdDev(t *testing.T) {
	samples := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	mean := Mean(samples)
	require.InDelta(t, 5.0, mean, 1e-9)

	// Sum of squared deviations is 32, divided by n-1 = 7.
	assert.InDelta(t, math.Sqrt(32.0/7.0), StdDev(samples, mean), 1e-12)
	assert.InDelta(t, 2.138, StdDev(samples, mean), 0.001)
}

func TestStdDev_Floors(t *testing.T) {
	assert.Equal(t, 0.0, StdDev([]float64{42}, 42))
	assert.Equal(t, 0.0, StdDev(nil, 0))
	assert.Equal(t, 0.0, StdDev([]float64{3, 3, 3, 3}, 3))
}

func TestMAD(t *testing.T) {
	samples := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	median := Median(append([]float64(nil), samples...))
	require.InDelta(t, 4.5, median, 1e-9)

	assert.InDelta(t, 0.5, MAD(samples, median), 1e-9)
	// Input order is preserved.
	assert.Equal(t, []float64{2, 4, 4, 4, 5, 5, 7, 9}, samples)
}

func TestMAD_Constant(t *testing.T) {
	c := []float64{8, 8, 8, 8, 8}
	assert.Equal(t, 0.0, MAD(c, 8))
	low, high := DetectOutliers(c, 8, 0)
	assert.Equal(t, 0, low)
	assert.Equal(t, 0, high)
}

func TestConfidenceInterval(t *testing.T) {
	samples := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	mean := Mean(samples)
	sd := StdDev(samples, mean)

	lo, hi := ConfidenceInterval(samples, mean, sd)
	margin := 2.36 * sd / math.Sqrt(8)
	assert.InDelta(t, mean-margin, lo, 1e-12)
	assert.InDelta(t, mean+margin, hi, 1e-12)
}

func TestTCritical(t *testing.T) {
	assert.Equal(t, 12.71, TCritical(2))
	assert.Equal(t, 2.26, TCritical(10))
	assert.Equal(t, 2.05, TCritical(29))
	assert.Equal(t, 1.96, TCritical(30))
	assert.Equal(t, 1.96, TCritical(1000))
	assert.Equal(t, 1.96, TCritical(1))
}

func TestConfidenceInterval_Degenerate(t *testing.T) {
	lo, hi := ConfidenceInterval(nil, 10, 0)
	assert.Equal(t, 10.0, lo)
	assert.Equal(t, 10.0, hi)

	lo, hi = ConfidenceInterval([]float64{10}, 10, 0)
	assert.Equal(t, 10.0, lo)
	assert.Equal(t, 10.0, hi)
}

func TestDetectOutliers(t *testing.T) {
	samples := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	low, high := DetectOutliers(samples, 4.5, 0.5)
	assert.Equal(t, 0, low)
	assert.Equal(t, 1, high)

	low, high = DetectOutliers([]float64{-100, 10, 10, 11, 9, 10}, 10, 0.5)
	assert.Equal(t, 1, low)
	assert.Equal(t, 0, high)
}

func TestSummarize_Example(t *testing.T) {
	samples := []float64{9, 2, 4, 5, 4, 7, 4, 5}
	s := Summarize(samples, nil)

	assert.Equal(t, 8, s.SampleCount)
	assert.InDelta(t, 5.0, s.Mean, 1e-9)
	assert.InDelta(t, 4.5, s.Median, 1e-9)
	assert.InDelta(t, 2.138, s.StdDev, 0.001)
	assert.InDelta(t, 0.5, s.MAD, 1e-9)
	assert.Equal(t, 2.0, s.Min)
	assert.Equal(t, 9.0, s.Max)
	assert.Equal(t, 1, s.OutliersHigh)
	assert.Equal(t, 1, s.Outliers())

	// The caller's slice keeps its order, and the summary keeps a copy.
	assert.Equal(t, []float64{9, 2, 4, 5, 4, 7, 4, 5}, samples)
	assert.Equal(t, samples, s.Samples)

	p50, ok := s.Percentile(50)
	require.True(t, ok)
	assert.InDelta(t, s.Median, p50, 1e-9)
	_, ok = s.Percentile(12)
	assert.False(t, ok)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, nil)
	assert.Equal(t, Summary{}, s)
}

func TestSummarize_Invariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 100; trial++ {
		n := 1 + rng.Intn(200)
		samples := make([]float64, n)
		for i := range samples {
			samples[i] = rng.ExpFloat64() * 50
		}
		s := Summarize(samples, []float64{99, 75, 90, 95})

		assert.LessOrEqual(t, s.Min, s.Median)
		assert.LessOrEqual(t, s.Median, s.Max)
		assert.LessOrEqual(t, s.Min, s.Mean+1e-9)
		assert.LessOrEqual(t, s.Mean, s.Max+1e-9)
		assert.Equal(t, n, s.SampleCount)
		assert.LessOrEqual(t, s.CILower, s.CIUpper)

		require.Len(t, s.Percentiles, 4)
		for i := 1; i < len(s.Percentiles); i++ {
			assert.Less(t, s.Percentiles[i-1].Rank, s.Percentiles[i].Rank)
			assert.LessOrEqual(t, s.Percentiles[i-1].Value, s.Percentiles[i].Value)
		}
	}
}

func TestThroughput_PerSecond(t *testing.T) {
	tp := Throughput{Kind: ThroughputBytes, Value: 4096}
	// 4096 bytes every 1µs is 4.096e9 bytes/s.
	assert.InDelta(t, 4.096e9, tp.PerSecond(1000), 1)
	assert.Equal(t, 0.0, tp.PerSecond(0))
	assert.Equal(t, 0.0, Throughput{}.PerSecond(10))
	assert.Equal(t, "bytes", ThroughputBytes.String())
	assert.Equal(t, "elements", ThroughputElements.String())
}
