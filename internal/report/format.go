package report

import (
	"fmt"

	"zap/internal/stats"
)

// FormatTime renders nanoseconds with three decimals in the largest unit
// that keeps the value at or above one.
func FormatTime(ns float64) string {
	return formatTime(ns, 3)
}

// FormatTimeShort is FormatTime with two decimals, for histogram labels.
func FormatTimeShort(ns float64) string {
	return formatTime(ns, 2)
}

func formatTime(ns float64, prec int) string {
	switch {
	case ns >= 1e9:
		return fmt.Sprintf("%.*f s", prec, ns/1e9)
	case ns >= 1e6:
		return fmt.Sprintf("%.*f ms", prec, ns/1e6)
	case ns >= 1e3:
		return fmt.Sprintf("%.*f µs", prec, ns/1e3)
	default:
		return fmt.Sprintf("%.*f ns", prec, ns)
	}
}

var (
	byteUnits    = []string{"B/s", "KiB/s", "MiB/s", "GiB/s", "TiB/s"}
	elementUnits = []string{"elem/s", "Kelem/s", "Melem/s", "Gelem/s", "Telem/s"}
)

// FormatThroughput renders the rate implied by tp at a mean iteration cost
// of meanNs. Bytes use binary prefixes, elements decimal ones.
func FormatThroughput(tp stats.Throughput, meanNs float64) string {
	rate := tp.PerSecond(meanNs)
	units, step := elementUnits, 1000.0
	if tp.Kind == stats.ThroughputBytes {
		units, step = byteUnits, 1024.0
	}
	i := 0
	for rate >= step && i < len(units)-1 {
		rate /= step
		i++
	}
	return fmt.Sprintf("%.2f %s", rate, units[i])
}

// FormatPercent renders a signed percentage the way the baseline line
// shows it: "+12.34%" or "-5.00%".
func FormatPercent(pct float64) string {
	sign := "+"
	if pct < 0 {
		sign = "-"
		pct = -pct
	}
	return fmt.Sprintf("%s%.2f%%", sign, pct)
}

func formatRank(p float64) string {
	return fmt.Sprintf("p%g", p)
}
