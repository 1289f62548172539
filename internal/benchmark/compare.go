package benchmark

import (
	"fmt"
	"math"

	"zap/internal/stats"
)

// minChangePct is the smallest relative change reported as a change at all.
const minChangePct = 1.0

// Compare checks the current summary against a baseline entry.
//
// The change is significant when the two confidence intervals do not
// overlap. Non-overlap is conservative: small effects with wide intervals
// are reported as NoChange.
func Compare(name string, prev Entry, curr stats.Summary) Verdict {
	v := Verdict{
		Name:    name,
		OldMean: prev.Mean,
		NewMean: curr.Mean,
	}
	if prev.Mean > 0 {
		v.ChangePct = (curr.Mean - prev.Mean) / prev.Mean * 100
	}

	v.Significant = curr.CILower > prev.CIUpper || curr.CIUpper < prev.CILower

	switch {
	case !v.Significant || math.Abs(v.ChangePct) < minChangePct:
		v.Change = NoChange
	case v.ChangePct < 0:
		v.Change = Improved
	default:
		v.Change = Regressed
	}
	return v
}

func (v Verdict) String() string {
	return fmt.Sprintf("%s: %+.2f%% (%s)", v.Name, v.ChangePct, v.Change)
}
