package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"zap/internal/benchmark"
	"zap/internal/config"
	"zap/internal/db"
	"zap/internal/env"
	"zap/internal/measure"
	"zap/internal/telemetry"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var exit = os.Exit

// Hooks replaced by tests.
var (
	newStoreFunc = func(path string) (db.Store, error) {
		return db.NewStore(db.StoreConfig{Type: "sqlite", ConnectionString: path})
	}
	detectEnvFunc = env.Detect
)

// ErrRegression is returned when a benchmark regressed past --fail-threshold.
var ErrRegression = errors.New("performance regression detected")

// Suite registers the benchmarks of a binary.
type Suite func(reg *benchmark.Registry)

type app struct {
	suite   Suite
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
}

// NewRootCmd builds the command tree for a benchmark binary called name.
// Running the root command runs suite.
func NewRootCmd(name string, suite Suite) *cobra.Command {
	a := &app{suite: suite, v: viper.New()}

	root := &cobra.Command{
		Use:   name + " [filter]",
		Short: "Run the registered benchmarks",
		Long: `Runs every registered benchmark whose name matches [filter] (a substring,
or a glob when it contains * or ?), compares the results against the saved
baseline and saves the new results.

By default results are saved to and compared against '` + benchmark.DefaultBaselinePath + `'.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          a.runSuite,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is ./zap.yaml or .zap/zap.yaml)")
	pf.BoolP("verbose", "v", false, "Enable verbose/debug logging")
	pf.String("log-file", "", "Also write logs to this file")
	pf.String("filter", "", "Only run benchmarks matching this pattern")
	pf.StringSlice("tag", nil, "Only run groups carrying one of these tags")
	pf.String("baseline", "", "Use specific baseline file (default: "+benchmark.DefaultBaselinePath+")")
	pf.String("save-baseline", "", "Save results, optionally to `FILE` (--save-baseline=FILE)")
	pf.String("compare", "", "Compare against the baseline, optionally at `FILE` (--compare=FILE)")
	pf.Lookup("save-baseline").NoOptDefVal = benchmark.DefaultBaselinePath
	pf.Lookup("compare").NoOptDefVal = benchmark.DefaultBaselinePath
	pf.String("history", "", "Record runs in this SQLite database")
	pf.Float64("fail-threshold", 0, "Exit non-zero when a benchmark regresses by more than this percent")

	f := root.Flags()
	// Durations are strings so bare numbers can mean seconds.
	f.String("warmup", measure.DefaultWarmup.String(), "Warmup duration per benchmark (e.g. 500ms, or 2 for seconds)")
	f.String("measurement", measure.DefaultMeasurement.String(), "Measurement time budget per benchmark")
	f.Int("samples", measure.DefaultSamples, "Target sample count per benchmark")
	f.Int("min-iters", 1, "Minimum iterations per sample")
	f.Bool("no-save", false, "Don't save results to baseline")
	f.Bool("no-compare", false, "Don't compare against baseline")
	f.String("format", config.FormatText, "Output format (text or json)")
	f.Bool("json", false, "Shorthand for --format json")
	f.String("color", "auto", "Color output (auto, always or never)")
	f.String("percentiles", "50,75,90,95,99", "Comma separated percentiles to compute")
	f.Bool("env", false, "Print the environment before running")
	f.Bool("no-histogram", false, "Don't print histograms")
	f.Bool("show-percentiles", false, "Print the percentiles line")
	f.String("metrics-textfile", "", "Write Prometheus metrics to this file")
	f.String("pushgateway", "", "Push Prometheus metrics to this Pushgateway URL")

	bind := map[string]string{
		config.KeyVerbose:         "verbose",
		config.KeyLogFile:         "log-file",
		config.KeyFilter:          "filter",
		config.KeyTags:            "tag",
		config.KeyBaselinePath:    "baseline",
		config.KeyHistoryPath:     "history",
		config.KeyWarmup:          "warmup",
		config.KeyMeasurement:     "measurement",
		config.KeySamples:         "samples",
		config.KeyMinIters:        "min-iters",
		config.KeyFormat:          "format",
		config.KeyColor:           "color",
		config.KeyPercentiles:     "percentiles",
		config.KeyShowEnv:         "env",
		config.KeyShowPercentiles: "show-percentiles",
		config.KeyFailThreshold:   "fail-threshold",
		config.KeyMetricsTextfile: "metrics-textfile",
		config.KeyMetricsPush:     "pushgateway",
	}
	if err := bindFlags(a.v, bind, pf, f); err != nil {
		panic(err)
	}

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		applyBaselineAliases(a.v, pf)
		negations := map[string]string{
			"no-save":      config.KeyBaselineSave,
			"no-compare":   config.KeyBaselineCompare,
			"no-histogram": config.KeyShowHistogram,
		}
		for flag, key := range negations {
			if f.Changed(flag) {
				a.v.Set(key, false)
			}
		}
		if f.Changed("json") {
			a.v.Set(config.KeyFormat, config.FormatJSON)
		}
		return a.load(cmd)
	}

	root.AddCommand(
		newListCmd(a),
		newEnvCmd(),
		newHistoryCmd(a),
		newBaselineCmd(a),
		NewVersionCmd(name),
	)
	return root
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = telemetry.NewLogger(cmd.ErrOrStderr(), cfg.Verbose, cfg.LogFile)
	slog.SetDefault(a.logger)
	return nil
}

// bindFlags binds each config key to the named flag of the first set
// defining it.
func bindFlags(v *viper.Viper, bind map[string]string, sets ...*pflag.FlagSet) error {
	for key, name := range bind {
		var fl *pflag.Flag
		for _, fs := range sets {
			if fl = fs.Lookup(name); fl != nil {
				break
			}
		}
		if fl == nil {
			return fmt.Errorf("no flag %q for config key %q", name, key)
		}
		if err := v.BindPFlag(key, fl); err != nil {
			return fmt.Errorf("failed to bind flag %q: %w", name, err)
		}
	}
	return nil
}

// applyBaselineAliases handles --save-baseline and --compare. Each turns its
// mode on and, given a FILE, selects the baseline unless --baseline did.
// The --no-* flags are applied afterwards and win.
func applyBaselineAliases(v *viper.Viper, fs *pflag.FlagSet) {
	aliases := []struct{ flag, key string }{
		{"save-baseline", config.KeyBaselineSave},
		{"compare", config.KeyBaselineCompare},
	}
	for _, al := range aliases {
		if !fs.Changed(al.flag) {
			continue
		}
		v.Set(al.key, true)
		path, _ := fs.GetString(al.flag)
		if path != benchmark.DefaultBaselinePath && !fs.Changed("baseline") {
			v.Set(config.KeyBaselinePath, path)
		}
	}
}

// registry builds the suite and reports registration errors.
func (a *app) registry() (*benchmark.Registry, error) {
	reg := benchmark.NewRegistry()
	if a.suite != nil {
		a.suite(reg)
	}
	if err := reg.Err(); err != nil {
		return nil, fmt.Errorf("invalid registry: %w", err)
	}
	return reg, nil
}

func (a *app) historyPath() string {
	if a.cfg.HistoryPath != "" {
		return a.cfg.HistoryPath
	}
	return db.DefaultHistoryPath
}

func (a *app) baselinePath() string {
	if a.cfg.Baseline.Path != "" {
		return a.cfg.Baseline.Path
	}
	return benchmark.DefaultBaselinePath
}

// checkRegressions turns verdicts past threshold into ErrRegression. A
// zero threshold disables the gate.
func checkRegressions(verdicts []benchmark.Verdict, threshold float64) error {
	if threshold <= 0 {
		return nil
	}
	var failed []string
	for _, v := range verdicts {
		if v.ExceedsThreshold(threshold) {
			failed = append(failed, fmt.Sprintf("%s %.2f%% slower", v.Name, v.ChangePct))
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrRegression, strings.Join(failed, ", "))
}

// Execute runs the command tree and exits non-zero on failure.
func Execute(name string, suite Suite) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\n=== CRITICAL ERROR: Benchmark Panic ===\n")
			fmt.Fprintf(os.Stderr, "Error: %v\n", r)
			exit(1)
		}
	}()

	if err := NewRootCmd(name, suite).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exit(1)
	}
}
