package report

import "strings"

const (
	histMaxBins = 80
	histMinBins = 10
	histRows    = 2
	histLabel   = "Histogram: frequency by time"
)

var blocks = []string{" ", "▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}

// Histogram is a rendered two-row sample histogram.
type Histogram struct {
	Rows     []string
	MinLabel string
	MaxLabel string
	Bins     int
}

// BuildHistogram bins samples between lo and hi. The bin count follows
// the label widths so the chart lines up with its axis labels. It returns
// false when there is nothing to draw.
func BuildHistogram(samples []float64, lo, hi float64) (Histogram, bool) {
	if len(samples) < 2 || hi <= lo {
		return Histogram{}, false
	}

	h := Histogram{
		MinLabel: FormatTimeShort(lo),
		MaxLabel: FormatTimeShort(hi),
	}
	bins := 42 + len([]rune(h.MinLabel)) + len([]rune(h.MaxLabel)) - 1
	if bins > histMaxBins {
		bins = histMaxBins
	}
	if bins < histMinBins {
		bins = histMinBins
	}
	h.Bins = bins

	counts := make([]int, bins)
	width := (hi - lo) / float64(bins)
	for _, s := range samples {
		b := int((s - lo) / width)
		if b >= bins {
			b = bins - 1
		}
		if b < 0 {
			b = 0
		}
		counts[b]++
	}

	maxCount := 0
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}

	levels := histRows * 8
	heights := make([]int, bins)
	for i, c := range counts {
		switch {
		case c == 0:
			heights[i] = 0
		case maxCount == 1:
			heights[i] = levels
		default:
			heights[i] = 1 + int(float64(c-1)/float64(maxCount-1)*float64(levels-1)+0.5)
			if heights[i] > levels {
				heights[i] = levels
			}
		}
	}

	for row := histRows; row >= 1; row-- {
		var sb strings.Builder
		base := (row - 1) * 8
		for _, ht := range heights {
			in := ht - base
			switch {
			case in <= 0:
				sb.WriteString(blocks[0])
			case in >= 8:
				sb.WriteString(blocks[8])
			default:
				sb.WriteString(blocks[in])
			}
		}
		h.Rows = append(h.Rows, sb.String())
	}
	return h, true
}

// Axis returns the label line: min, centered title, max.
func (h Histogram) Axis() (left, title, right string) {
	pad := (h.Bins + 2 - len([]rune(h.MinLabel)) - len([]rune(h.MaxLabel)) - len(histLabel)) / 2
	if pad < 1 {
		pad = 1
	}
	spaces := strings.Repeat(" ", pad)
	return h.MinLabel + spaces, histLabel, spaces + h.MaxLabel
}
