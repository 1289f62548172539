package stats

import (
	"math"
	"sort"
)

// OutlierThreshold is the modified Z-score above which a sample is an outlier.
const OutlierThreshold = 3.5

// outlierScale is 1/1.4826, the normal-consistency constant for the MAD.
const outlierScale = 0.6745

// largeSampleT is the two-sided 95% critical value used for n >= 30.
const largeSampleT = 1.96

// tTable holds two-sided 95% t critical values indexed by n-2, for n in [2, 29].
var tTable = [...]float64{
	12.71, 4.30, 3.18, 2.78, 2.57, // n = 2-6
	2.45, 2.36, 2.31, 2.26, 2.23, // n = 7-11
	2.20, 2.18, 2.16, 2.14, 2.13, // n = 12-16
	2.12, 2.11, 2.10, 2.09, 2.09, // n = 17-21
	2.08, 2.07, 2.07, 2.06, 2.06, // n = 22-26
	2.05, 2.05, 2.05, // n = 27-29
}

// DefaultPercentiles are the ranks reported when none are configured.
var DefaultPercentiles = []float64{50, 75, 90, 95, 99}

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range samples {
		sum += s
	}
	return sum / float64(len(samples))
}

// Median sorts samples in place and returns the middle value. Even-length
// input yields the average of the two middle values; empty input yields 0.
func Median(samples []float64) float64 {
	n := len(samples)
	if n == 0 {
		return 0
	}
	sort.Float64s(samples)
	if n%2 == 0 {
		return (samples[n/2-1] + samples[n/2]) / 2
	}
	return samples[n/2]
}

// Percentile returns the p-th percentile (0-100) of sorted using linear
// interpolation between closest ranks (the R-7 method). sorted must be in
// ascending order. Ranks outside [0, 100] are clamped.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}

	rank := p / 100 * float64(n-1)
	if rank <= 0 {
		return sorted[0]
	}
	if rank >= float64(n-1) {
		return sorted[n-1]
	}

	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	frac := rank - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

// StdDev returns the sample standard deviation (n-1 denominator). It is 0
// when fewer than two samples are given.
func StdDev(samples []float64, mean float64) float64 {
	n := len(samples)
	if n < 2 {
		return 0
	}
	sumSq := 0.0
	for _, s := range samples {
		d := s - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// MAD returns the median absolute deviation from median. The result is not
// scaled by the normal-consistency constant. samples is not modified.
func MAD(samples []float64, median float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	deviations := make([]float64, len(samples))
	for i, s := range samples {
		deviations[i] = math.Abs(s - median)
	}
	return Median(deviations)
}

// TCritical returns the two-sided 95% critical value for n samples.
func TCritical(n int) float64 {
	if n >= 2 && n < 30 {
		return tTable[n-2]
	}
	return largeSampleT
}

// ConfidenceInterval returns the two-sided 95% confidence interval of the
// mean, with margin t * stdDev / sqrt(n). Empty input yields (mean, mean).
func ConfidenceInterval(samples []float64, mean, stdDev float64) (lower, upper float64) {
	n := len(samples)
	if n == 0 {
		return mean, mean
	}
	margin := TCritical(n) * stdDev / math.Sqrt(float64(n))
	return mean - margin, mean + margin
}

// DetectOutliers counts samples whose modified Z-score lies beyond
// OutlierThreshold on either side. A zero mad yields (0, 0).
func DetectOutliers(samples []float64, median, mad float64) (low, high int) {
	if len(samples) == 0 || mad == 0 {
		return 0, 0
	}
	for _, s := range samples {
		z := outlierScale * (s - median) / mad
		switch {
		case z < -OutlierThreshold:
			low++
		case z > OutlierThreshold:
			high++
		}
	}
	return low, high
}
