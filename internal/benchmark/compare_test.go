package benchmark

import (
	"testing"

	"zap/internal/stats"

	"github.com/stretchr/testify/assert"
)

func summary(mean, lo, hi float64) stats.Summary {
	return stats.Summary{Mean: mean, CILower: lo, CIUpper: hi}
}

func TestCompare_Regressed(t *testing.T) {
	prev := Entry{Name: "B1", Mean: 100, CILower: 98, CIUpper: 102}

	v := Compare("B1", prev, summary(150, 145, 155))

	assert.Equal(t, "B1", v.Name)
	assert.InDelta(t, 50.0, v.ChangePct, 1e-9)
	assert.True(t, v.Significant)
	assert.Equal(t, Regressed, v.Change)
	assert.Equal(t, 100.0, v.OldMean)
	assert.Equal(t, 150.0, v.NewMean)
}

func TestCompare_Improved(t *testing.T) {
	prev := Entry{Mean: 100, CILower: 98, CIUpper: 102}

	v := Compare("B1", prev, summary(80, 79, 81))

	assert.InDelta(t, -20.0, v.ChangePct, 1e-9)
	assert.Equal(t, Improved, v.Change)
}

func TestCompare_IdenticalIsNoChange(t *testing.T) {
	prev := Entry{Mean: 100, CILower: 98, CIUpper: 102}

	v := Compare("B1", prev, summary(100, 98, 102))

	assert.False(t, v.Significant)
	assert.Equal(t, NoChange, v.Change)
	assert.Equal(t, 0.0, v.ChangePct)
}

func TestCompare_OverlapIsNoChange(t *testing.T) {
	prev := Entry{Mean: 100, CILower: 90, CIUpper: 110}

	v := Compare("B1", prev, summary(108, 100, 116))

	assert.InDelta(t, 8.0, v.ChangePct, 1e-9)
	assert.False(t, v.Significant)
	assert.Equal(t, NoChange, v.Change)
}

func TestCompare_TinySignificantChangeIsNoChange(t *testing.T) {
	prev := Entry{Mean: 100, CILower: 99.99, CIUpper: 100.01}

	v := Compare("B1", prev, summary(100.5, 100.49, 100.51))

	assert.True(t, v.Significant)
	assert.Equal(t, NoChange, v.Change)
}

func TestCompare_ZeroBaselineMean(t *testing.T) {
	v := Compare("B1", Entry{}, summary(10, 9, 11))

	assert.Equal(t, 0.0, v.ChangePct)
	assert.True(t, v.Significant)
	assert.Equal(t, NoChange, v.Change)
}

func TestVerdict_ExceedsThreshold(t *testing.T) {
	v := Verdict{Change: Regressed, ChangePct: 20}
	assert.True(t, v.ExceedsThreshold(10))
	assert.False(t, v.ExceedsThreshold(20))

	v = Verdict{Change: Improved, ChangePct: -50}
	assert.False(t, v.ExceedsThreshold(0))

	v = Verdict{Change: NoChange, ChangePct: 30}
	assert.False(t, v.ExceedsThreshold(10))
}

func TestChange_String(t *testing.T) {
	assert.Equal(t, "no_change", NoChange.String())
	assert.Equal(t, "improved", Improved.String())
	assert.Equal(t, "regressed", Regressed.String())

	b, err := Regressed.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "regressed", string(b))
	assert.Equal(t, "B1: +50.00% (regressed)", Verdict{Name: "B1", ChangePct: 50, Change: Regressed}.String())
}

func TestReport_Regressions(t *testing.T) {
	r := &Report{Results: []Result{
		{Name: "a", Verdict: &Verdict{Name: "a", Change: Regressed, ChangePct: 25}},
		{Name: "b", Verdict: &Verdict{Name: "b", Change: Regressed, ChangePct: 5}},
		{Name: "c", New: true},
		{Name: "d", Verdict: &Verdict{Name: "d", Change: Improved, ChangePct: -40}},
	}}

	regs := r.Regressions(10)
	assert.Len(t, regs, 1)
	assert.Equal(t, "a", regs[0].Name)
	assert.Len(t, r.Regressions(0), 2)
}
