package cli

import (
	"fmt"

	"zap/internal/benchmark"
	"zap/internal/config"
	"zap/internal/env"
	"zap/internal/report"
	"zap/internal/telemetry"

	"github.com/spf13/cobra"
)

func (a *app) runSuite(cmd *cobra.Command, args []string) error {
	cfg := a.cfg
	sc := cfg.Session()
	if len(args) > 0 {
		sc.Filter = args[0]
	}

	reg, err := a.registry()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var info *env.Info
	if cfg.Show.Env {
		detected := detectEnvFunc(cmd.Context())
		info = &detected
	}

	var reporter benchmark.Reporter
	if cfg.Format == config.FormatJSON {
		reporter = report.NewJSON(out, info)
	} else {
		if info != nil {
			if err := env.WriteText(out, *info); err != nil {
				return err
			}
		}
		mode, _ := report.ParseColorMode(cfg.Color)
		reporter = report.NewText(out, report.TextOptions{
			Color:       mode,
			Histogram:   cfg.Show.Histogram,
			Percentiles: cfg.Show.Percentiles,
		})
	}

	opts := []benchmark.SessionOption{
		benchmark.WithReporter(reporter),
		benchmark.WithLogger(a.logger),
	}
	if cfg.HistoryPath != "" {
		store, err := newStoreFunc(cfg.HistoryPath)
		if err != nil {
			return fmt.Errorf("failed to open history: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				telemetry.LogError("Failed to close history", err, "path", cfg.HistoryPath)
			}
		}()
		opts = append(opts, benchmark.WithHistory(store))
	}
	if cfg.Metrics.Textfile != "" || cfg.Metrics.Pushgateway != "" {
		opts = append(opts, benchmark.WithMetrics(telemetry.NewMetrics(cfg.Metrics.Textfile, cfg.Metrics.Pushgateway)))
	}

	rep, err := benchmark.NewSession(sc, opts...).Run(cmd.Context(), reg)
	if err != nil {
		return err
	}

	var verdicts []benchmark.Verdict
	for _, r := range rep.Results {
		if r.Verdict != nil {
			verdicts = append(verdicts, *r.Verdict)
		}
	}
	return checkRegressions(verdicts, cfg.FailThreshold)
}
