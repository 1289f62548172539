package stats

import "sort"

// ThroughputKind says what a throughput value counts.
type ThroughputKind int

const (
	ThroughputNone ThroughputKind = iota
	ThroughputBytes
	ThroughputElements
)

func (k ThroughputKind) String() string {
	switch k {
	case ThroughputBytes:
		return "bytes"
	case ThroughputElements:
		return "elements"
	default:
		return "none"
	}
}

// MarshalText makes ThroughputKind readable in JSON output.
func (k ThroughputKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Throughput is the amount of work done by one iteration. It does not
// affect timing; it is carried along for rate reporting.
type Throughput struct {
	Kind  ThroughputKind `json:"kind"`
	Value uint64         `json:"value"`
}

// PerSecond converts a mean iteration cost in nanoseconds into units per second.
func (t Throughput) PerSecond(meanNs float64) float64 {
	if meanNs <= 0 || t.Kind == ThroughputNone {
		return 0
	}
	return float64(t.Value) * 1e9 / meanNs
}

// PercentileValue is one reported percentile.
type PercentileValue struct {
	Rank  float64 `json:"rank"`
	Value float64 `json:"value"`
}

// Summary holds the statistics derived from one benchmark's samples. All
// durations are nanoseconds per iteration. Once built it is not modified.
type Summary struct {
	Mean         float64           `json:"mean"`
	Median       float64           `json:"median"`
	StdDev       float64           `json:"std_dev"`
	MAD          float64           `json:"mad"`
	Min          float64           `json:"min"`
	Max          float64           `json:"max"`
	CILower      float64           `json:"ci_lower"`
	CIUpper      float64           `json:"ci_upper"`
	Percentiles  []PercentileValue `json:"percentiles,omitempty"`
	OutliersLow  int               `json:"outliers_low"`
	OutliersHigh int               `json:"outliers_high"`
	SampleCount  int               `json:"sample_count"`
	Iterations   uint64            `json:"iterations"`
	Throughput   *Throughput       `json:"throughput,omitempty"`

	// Samples is a copy of the input, in collection order, for histograms.
	Samples []float64 `json:"-"`
}

// Percentile returns the stored value for rank p, if it was computed.
func (s Summary) Percentile(p float64) (float64, bool) {
	for _, pv := range s.Percentiles {
		if pv.Rank == p {
			return pv.Value, true
		}
	}
	return 0, false
}

// Outliers returns the total number of outliers.
func (s Summary) Outliers() int {
	return s.OutliersLow + s.OutliersHigh
}

// Summarize computes a Summary over samples without modifying it. ranks
// selects the percentiles to report; nil means DefaultPercentiles. Empty
// input yields a zero Summary.
func Summarize(samples []float64, ranks []float64) Summary {
	n := len(samples)
	if n == 0 {
		return Summary{}
	}
	if ranks == nil {
		ranks = DefaultPercentiles
	}

	s := Summary{
		SampleCount: n,
		Samples:     append([]float64(nil), samples...),
		Min:         samples[0],
		Max:         samples[0],
	}
	for _, v := range samples[1:] {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}

	s.Mean = Mean(samples)
	s.StdDev = StdDev(samples, s.Mean)

	sorted := append([]float64(nil), samples...)
	s.Median = Median(sorted)
	s.MAD = MAD(sorted, s.Median)

	sortedRanks := append([]float64(nil), ranks...)
	sort.Float64s(sortedRanks)
	s.Percentiles = make([]PercentileValue, 0, len(sortedRanks))
	for _, p := range sortedRanks {
		s.Percentiles = append(s.Percentiles, PercentileValue{Rank: p, Value: Percentile(sorted, p)})
	}

	s.CILower, s.CIUpper = ConfidenceInterval(samples, s.Mean, s.StdDev)
	s.OutliersLow, s.OutliersHigh = DetectOutliers(samples, s.Median, s.MAD)
	return s
}
