package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"zap/internal/benchmark"
	"zap/internal/stats"

	"github.com/charmbracelet/lipgloss"
)

// TextOptions controls the optional parts of the human-readable report.
type TextOptions struct {
	Color       ColorMode
	Histogram   bool
	Percentiles bool
}

// Text writes a human-readable report as results arrive.
type Text struct {
	w    io.Writer
	opts TextOptions
	st   styles
	err  error
}

var _ benchmark.Reporter = (*Text)(nil)

func NewText(w io.Writer, opts TextOptions) *Text {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(Profile(opts.Color, w))
	return &Text{w: w, opts: opts, st: newStyles(r)}
}

func (t *Text) printf(format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, format, args...)
}

func (t *Text) GroupStart(name string) {
	t.printf("%s\n\n", t.st.group.Render("Running benchmark group: "+name))
}

func (t *Text) Warn(msg string) {
	t.printf("%s\n", t.st.warn.Render("Warning: "+msg))
}

func (t *Text) Note(msg string) {
	t.printf("%s\n", t.st.note.Render(msg))
}

func (t *Text) Result(res benchmark.Result) {
	s := res.Summary
	if res.Collected > 0 && res.Short() {
		t.Warn(fmt.Sprintf("time limit reached, collected %d/%d samples", res.Collected, res.Target))
	}

	if res.New {
		t.printf("%s ", t.st.newMark.Render("(new)"))
	}
	t.printf("%s\n", t.st.header.Render(res.Name+":"))
	if res.Collected == 0 {
		t.printf("  no samples\n\n")
		return
	}

	t.printf("  %d samples × %d evals, median: %s\n", s.SampleCount, s.Iterations, t.st.bold.Render(FormatTime(s.Median)))
	t.printf("  Time  (mean ± σ):  %s ± %s\n", FormatTime(s.Mean), FormatTime(s.StdDev))
	t.printf("  Range (min … max):  %s … %s\n", FormatTime(s.Min), FormatTime(s.Max))

	if t.opts.Percentiles && len(s.Percentiles) > 0 {
		parts := make([]string, 0, len(s.Percentiles))
		for _, pv := range s.Percentiles {
			parts = append(parts, formatRank(pv.Rank)+" "+FormatTime(pv.Value))
		}
		t.printf("  Percentiles:       %s\n", strings.Join(parts, "  "))
	}
	if s.Throughput != nil && s.Throughput.Kind != stats.ThroughputNone {
		t.printf("  Throughput:        %s\n", FormatThroughput(*s.Throughput, s.Mean))
	}
	if v := res.Verdict; v != nil {
		t.printf("  Baseline:          %s (was %s)\n", t.change(*v), FormatTime(v.OldMean))
	}
	if s.Outliers() > 0 {
		t.printf("  %s\n", t.st.warn.Render(fmt.Sprintf("Outliers: %d low, %d high", s.OutliersLow, s.OutliersHigh)))
	}

	if t.opts.Histogram {
		if h, ok := BuildHistogram(s.Samples, s.Min, s.Max); ok {
			t.printf("\n")
			for _, row := range h.Rows {
				t.printf("  %s\n", row)
			}
			left, title, right := h.Axis()
			t.printf("  %s%s%s\n", left, t.st.label.Render(title), right)
		}
	}
	t.printf("\n")
}

func (t *Text) change(v benchmark.Verdict) string {
	pct := FormatPercent(v.ChangePct)
	switch v.Change {
	case benchmark.Improved:
		return t.st.faster.Render(pct + " ↓ faster")
	case benchmark.Regressed:
		return t.st.slower.Render(pct + " ↑ slower")
	default:
		return t.st.same.Render(pct + " ≈")
	}
}

func (t *Text) Case(c benchmark.CaseResult) {
	t.printf("%s\n", t.st.header.Render(fmt.Sprintf("Comparison %s/%s (baseline: %s):", c.Group, c.ID, c.Baseline)))
	if t.err != nil {
		return
	}

	tw := tabwriter.NewWriter(t.w, 0, 0, 2, ' ', 0)
	for _, ir := range c.Impls {
		rel := "baseline"
		switch {
		case ir.Impl == c.Baseline:
		case ir.Ratio == 0:
			rel = "n/a"
		case ir.Ratio > 1:
			rel = fmt.Sprintf("%.2fx slower", ir.Ratio)
		default:
			rel = fmt.Sprintf("%.2fx faster", 1/ir.Ratio)
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", ir.Impl, FormatTime(ir.Result.Summary.Mean), rel)
	}
	if err := tw.Flush(); err != nil {
		t.err = err
	}
	t.printf("\n")
}

// Finish prints the totals and returns the first write error, if any.
func (t *Text) Finish(rep *benchmark.Report) error {
	regressed, improved := 0, 0
	for _, res := range rep.Results {
		if res.Verdict == nil {
			continue
		}
		switch res.Verdict.Change {
		case benchmark.Regressed:
			regressed++
		case benchmark.Improved:
			improved++
		}
	}
	summary := fmt.Sprintf("%d benchmarks", len(rep.Results))
	if regressed+improved > 0 {
		summary += fmt.Sprintf(", %d improved, %d regressed", improved, regressed)
	}
	t.printf("%s\n", t.st.dim.Render(summary))
	return t.err
}
