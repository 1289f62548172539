package benchmark

import (
	"time"

	"zap/internal/stats"
)

// Entry is the persisted summary of one benchmark. Times are ns/iteration.
type Entry struct {
	Name    string  `json:"name"`
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"std_dev"`
	CILower float64 `json:"ci_lower"`
	CIUpper float64 `json:"ci_upper"`
}

// EntryFromSummary keeps the fields of s that a baseline needs.
func EntryFromSummary(name string, s stats.Summary) Entry {
	return Entry{
		Name:    name,
		Mean:    s.Mean,
		StdDev:  s.StdDev,
		CILower: s.CILower,
		CIUpper: s.CIUpper,
	}
}

// Change is the direction of a comparison.
type Change int

const (
	NoChange Change = iota
	Improved
	Regressed
)

func (c Change) String() string {
	switch c {
	case Improved:
		return "improved"
	case Regressed:
		return "regressed"
	default:
		return "no_change"
	}
}

// MarshalText makes Change readable in JSON output.
func (c Change) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Verdict is the result of comparing a fresh summary against a baseline entry.
type Verdict struct {
	Name        string  `json:"name"`
	OldMean     float64 `json:"old_mean"`
	NewMean     float64 `json:"new_mean"`
	ChangePct   float64 `json:"change_pct"`
	Change      Change  `json:"change"`
	Significant bool    `json:"significant"`
}

// ExceedsThreshold reports whether v is a regression larger than pct percent.
func (v Verdict) ExceedsThreshold(pct float64) bool {
	return v.Change == Regressed && v.ChangePct > pct
}

// Result is everything the session knows about one finished benchmark.
type Result struct {
	Name      string        `json:"name"`
	Group     string        `json:"group"`
	Tags      []string      `json:"tags,omitempty"`
	Summary   stats.Summary `json:"stats"`
	Verdict   *Verdict      `json:"baseline,omitempty"`
	New       bool          `json:"new,omitempty"`
	Collected int           `json:"collected"`
	Target    int           `json:"target"`
	Elapsed   time.Duration `json:"elapsed_ns"`
}

// Short reports whether the benchmark stopped before its target sample count.
func (r Result) Short() bool {
	return r.Collected < r.Target
}

// ImplResult is one implementation's result inside a comparison case.
type ImplResult struct {
	Impl   string  `json:"impl"`
	Result Result  `json:"result"`
	Ratio  float64 `json:"ratio"`
}

// CaseResult groups the implementations measured for one comparison case.
// Ratio is impl mean divided by the baseline impl's mean.
type CaseResult struct {
	Group    string       `json:"group"`
	ID       string       `json:"id"`
	Baseline string       `json:"baseline"`
	Impls    []ImplResult `json:"impls"`
}

// Report is returned by Session.Run.
type Report struct {
	ID        string       `json:"run_id"`
	StartedAt time.Time    `json:"started_at"`
	Results   []Result     `json:"results"`
	Cases     []CaseResult `json:"cases,omitempty"`
	// SaveErr is set when the baseline could not be written. The run itself
	// still succeeded.
	SaveErr error `json:"-"`
}

// Regressions returns the verdicts that regressed by more than threshold
// percent, in run order.
func (r *Report) Regressions(threshold float64) []Verdict {
	var out []Verdict
	for _, res := range r.Results {
		if res.Verdict != nil && res.Verdict.ExceedsThreshold(threshold) {
			out = append(out, *res.Verdict)
		}
	}
	return out
}
