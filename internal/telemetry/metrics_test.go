package telemetry

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"zap/internal/benchmark"
	"zap/internal/stats"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(name string) benchmark.Result {
	return benchmark.Result{
		Name:  name,
		Group: "g",
		Summary: stats.Summary{
			Mean: 1000, Median: 990, StdDev: 12, CILower: 990, CIUpper: 1010,
			SampleCount: 100, Iterations: 4096,
			Throughput: &stats.Throughput{Kind: stats.ThroughputBytes, Value: 64},
		},
	}
}

func TestMetrics_Observe(t *testing.T) {
	m := NewMetrics("", "")

	r := result("g/a")
	r.Verdict = &benchmark.Verdict{ChangePct: 25, Change: benchmark.Regressed}
	m.Observe(r)

	fresh := result("g/b")
	fresh.New = true
	m.Observe(fresh)
	m.Observe(result("g/c"))

	assert.InDelta(t, 1e-6, testutil.ToFloat64(m.MeanSeconds.WithLabelValues("g/a", "g")), 1e-15)
	assert.InDelta(t, 990e-9, testutil.ToFloat64(m.MedianSeconds.WithLabelValues("g/a", "g")), 1e-15)
	assert.InDelta(t, 12e-9, testutil.ToFloat64(m.StdDevSeconds.WithLabelValues("g/a", "g")), 1e-15)
	assert.InDelta(t, 1010e-9, testutil.ToFloat64(m.CIUpperSeconds.WithLabelValues("g/a", "g")), 1e-15)
	assert.Equal(t, 100.0, testutil.ToFloat64(m.Samples.WithLabelValues("g/a", "g")))
	assert.Equal(t, 4096.0, testutil.ToFloat64(m.Iterations.WithLabelValues("g/a", "g")))
	assert.Equal(t, 25.0, testutil.ToFloat64(m.ChangePct.WithLabelValues("g/a", "g")))
	assert.InDelta(t, 64e6, testutil.ToFloat64(m.Throughput.WithLabelValues("g/a", "g")), 1e-3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Benchmarks.WithLabelValues("regressed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Benchmarks.WithLabelValues("new")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Benchmarks.WithLabelValues("uncompared")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Regressions))

	assert.Equal(t, 3, testutil.CollectAndCount(m.MeanSeconds))
	// Only compared benchmarks carry a change gauge.
	assert.Equal(t, 1, testutil.CollectAndCount(m.ChangePct))
}

func TestMetrics_Lint(t *testing.T) {
	m := NewMetrics("", "")
	r := result("g/a")
	r.Verdict = &benchmark.Verdict{ChangePct: 3, Change: benchmark.Regressed}
	m.Observe(r)

	problems, err := testutil.GatherAndLint(m.Registry())
	require.NoError(t, err)
	assert.Empty(t, problems)
}

func TestMetrics_FlushTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zap.prom")
	m := NewMetrics(path, "")
	m.Observe(result("g/a"))

	require.NoError(t, m.Flush(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `zap_benchmark_mean_seconds{benchmark="g/a",group="g"} 1e-06`)
	assert.NotContains(t, string(data), "nanoseconds")
}

func TestMetrics_FlushTextfileError(t *testing.T) {
	m := NewMetrics(filepath.Join(t.TempDir(), "missing", "zap.prom"), "")
	err := m.Flush(context.Background())
	assert.ErrorContains(t, err, "failed to write metrics textfile")
}

func TestMetrics_FlushPush(t *testing.T) {
	var gotPath, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := NewMetrics("", srv.URL)
	m.Observe(result("g/a"))
	require.NoError(t, m.Flush(context.Background()))

	assert.Equal(t, "/metrics/job/zap", gotPath)
	// The body is protobuf encoded; the metric name is still in clear text.
	assert.True(t, strings.Contains(gotBody, "zap_benchmark_mean_seconds"))
}

func TestMetrics_FlushPushError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	m := NewMetrics("", srv.URL)
	assert.ErrorContains(t, m.Flush(context.Background()), "failed to push metrics")
}

func TestMetrics_FlushNoTargets(t *testing.T) {
	assert.NoError(t, NewMetrics("", "").Flush(context.Background()))
}
