package telemetry

import (
	"context"
	"fmt"

	"zap/internal/benchmark"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// PushJob is the job label used when pushing to a Pushgateway.
const PushJob = "zap"

// Summaries are in nanoseconds; Prometheus wants base units.
const nsPerSecond = 1e9

// Metrics exports benchmark results in the Prometheus format. It uses its
// own registry so runs never mix with process metrics.
type Metrics struct {
	registry *prometheus.Registry

	MeanSeconds    *prometheus.GaugeVec
	MedianSeconds  *prometheus.GaugeVec
	StdDevSeconds  *prometheus.GaugeVec
	CILowerSeconds *prometheus.GaugeVec
	CIUpperSeconds *prometheus.GaugeVec
	Samples        *prometheus.GaugeVec
	Iterations     *prometheus.GaugeVec
	ChangePct      *prometheus.GaugeVec
	Throughput     *prometheus.GaugeVec
	Benchmarks     *prometheus.CounterVec
	Regressions    prometheus.Counter

	textfile string
	pushURL  string
}

var _ benchmark.MetricsSink = (*Metrics)(nil)

// NewMetrics creates and registers all benchmark metrics. textfile and
// pushURL select the Flush targets; both may be empty.
func NewMetrics(textfile, pushURL string) *Metrics {
	labels := []string{"benchmark", "group"}
	gauge := func(name, help string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "zap",
			Subsystem: "benchmark",
			Name:      name,
			Help:      help,
		}, labels)
	}

	m := &Metrics{
		registry:       prometheus.NewRegistry(),
		MeanSeconds:    gauge("mean_seconds", "Mean time per iteration."),
		MedianSeconds:  gauge("median_seconds", "Median time per iteration."),
		StdDevSeconds:  gauge("stddev_seconds", "Sample standard deviation of time per iteration."),
		CILowerSeconds: gauge("ci_lower_seconds", "Lower bound of the 95% confidence interval of the mean."),
		CIUpperSeconds: gauge("ci_upper_seconds", "Upper bound of the 95% confidence interval of the mean."),
		Samples:        gauge("samples", "Number of samples collected."),
		Iterations:     gauge("iterations", "Iterations per sample at the end of the run."),
		ChangePct:      gauge("change_percent", "Change of the mean against the baseline, in percent."),
		Throughput:     gauge("throughput_per_second", "Bytes or elements processed per second."),
		Benchmarks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zap",
			Name:      "benchmarks_total",
			Help:      "Benchmarks run, by comparison outcome.",
		}, []string{"outcome"}),
		Regressions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "zap",
			Name:      "regressions_total",
			Help:      "Benchmarks that regressed significantly against the baseline.",
		}),
		textfile: textfile,
		pushURL:  pushURL,
	}

	m.registry.MustRegister(
		m.MeanSeconds, m.MedianSeconds, m.StdDevSeconds, m.CILowerSeconds, m.CIUpperSeconds,
		m.Samples, m.Iterations, m.ChangePct, m.Throughput,
		m.Benchmarks, m.Regressions,
	)
	return m
}

// Registry returns the registry holding the benchmark metrics.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Observe records one finished benchmark.
func (m *Metrics) Observe(r benchmark.Result) {
	s := r.Summary
	lv := []string{r.Name, r.Group}
	m.MeanSeconds.WithLabelValues(lv...).Set(s.Mean / nsPerSecond)
	m.MedianSeconds.WithLabelValues(lv...).Set(s.Median / nsPerSecond)
	m.StdDevSeconds.WithLabelValues(lv...).Set(s.StdDev / nsPerSecond)
	m.CILowerSeconds.WithLabelValues(lv...).Set(s.CILower / nsPerSecond)
	m.CIUpperSeconds.WithLabelValues(lv...).Set(s.CIUpper / nsPerSecond)
	m.Samples.WithLabelValues(lv...).Set(float64(s.SampleCount))
	m.Iterations.WithLabelValues(lv...).Set(float64(s.Iterations))
	if s.Throughput != nil {
		m.Throughput.WithLabelValues(lv...).Set(s.Throughput.PerSecond(s.Mean))
	}

	outcome := "uncompared"
	switch {
	case r.Verdict != nil:
		outcome = r.Verdict.Change.String()
		m.ChangePct.WithLabelValues(lv...).Set(r.Verdict.ChangePct)
		if r.Verdict.Change == benchmark.Regressed {
			m.Regressions.Inc()
		}
	case r.New:
		outcome = "new"
	}
	m.Benchmarks.WithLabelValues(outcome).Inc()
}

// Flush writes the textfile and pushes to the gateway, whichever are
// configured.
func (m *Metrics) Flush(ctx context.Context) error {
	if m.textfile != "" {
		if err := prometheus.WriteToTextfile(m.textfile, m.registry); err != nil {
			return fmt.Errorf("failed to write metrics textfile %s: %w", m.textfile, err)
		}
	}
	if m.pushURL != "" {
		if err := push.New(m.pushURL, PushJob).Gatherer(m.registry).PushContext(ctx); err != nil {
			return fmt.Errorf("failed to push metrics to %s: %w", m.pushURL, err)
		}
	}
	return nil
}
