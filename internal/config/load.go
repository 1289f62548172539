package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"zap/internal/benchmark"
	"zap/internal/measure"
	"zap/internal/stats"
	"zap/internal/telemetry"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configuration keys. Nested keys map to ZAP_<SECTION>_<KEY> environment
// variables.
const (
	KeyWarmup          = "warmup"
	KeyMeasurement     = "measurement"
	KeySamples         = "samples"
	KeyMinIters        = "min_iters"
	KeyBaselinePath    = "baseline.path"
	KeyBaselineCompare = "baseline.compare"
	KeyBaselineSave    = "baseline.save"
	KeyFilter          = "filter"
	KeyTags            = "tags"
	KeyFormat          = "format"
	KeyColor           = "color"
	KeyPercentiles     = "percentiles"
	KeyShowEnv         = "show.env"
	KeyShowHistogram   = "show.histogram"
	KeyShowPercentiles = "show.percentiles"
	KeyFailThreshold   = "fail_threshold"
	KeyHistoryPath     = "history.path"
	KeyMetricsTextfile = "metrics.textfile"
	KeyMetricsPush     = "metrics.pushgateway"
	KeyVerbose         = "verbose"
	KeyLogFile         = "log_file"
)

const (
	EnvPrefix = "ZAP"
	FileName  = "zap"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config is the resolved harness configuration.
type Config struct {
	Warmup        time.Duration
	Measurement   time.Duration
	Samples       int
	MinIters      int
	Baseline      BaselineConfig
	Filter        string
	Tags          []string
	Format        string
	Color         string
	Percentiles   []float64
	Show          ShowConfig
	FailThreshold float64
	HistoryPath   string
	Metrics       MetricsConfig
	Verbose       bool
	LogFile       string

	// File is the config file that was read, if any.
	File string
}

type BaselineConfig struct {
	Path    string
	Compare bool
	Save    bool
}

type ShowConfig struct {
	Env         bool
	Histogram   bool
	Percentiles bool
}

type MetricsConfig struct {
	Textfile    string
	Pushgateway string
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyWarmup, measure.DefaultWarmup)
	v.SetDefault(KeyMeasurement, measure.DefaultMeasurement)
	v.SetDefault(KeySamples, measure.DefaultSamples)
	v.SetDefault(KeyMinIters, 1)
	v.SetDefault(KeyBaselinePath, "")
	v.SetDefault(KeyBaselineCompare, true)
	v.SetDefault(KeyBaselineSave, true)
	v.SetDefault(KeyFilter, "")
	v.SetDefault(KeyTags, []string{})
	v.SetDefault(KeyFormat, FormatText)
	v.SetDefault(KeyColor, "auto")
	v.SetDefault(KeyPercentiles, "50,75,90,95,99")
	v.SetDefault(KeyShowEnv, false)
	v.SetDefault(KeyShowHistogram, true)
	v.SetDefault(KeyShowPercentiles, false)
	v.SetDefault(KeyFailThreshold, 0.0)
	v.SetDefault(KeyHistoryPath, "")
	v.SetDefault(KeyMetricsTextfile, "")
	v.SetDefault(KeyMetricsPush, "")
	v.SetDefault(KeyVerbose, false)
	v.SetDefault(KeyLogFile, "")
}

// Load reads .env, the config file and ZAP_* environment variables into v
// and resolves the result. Without cfgFile, zap.yaml is searched in the
// working directory and in .zap/; a missing file is not an error.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	// .env is optional.
	_ = godotenv.Load()

	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(".zap")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		telemetry.LogDebug("Using config file", "path", v.ConfigFileUsed())
	}

	return Resolve(v)
}

// Resolve converts the values held by v into a Config. Values that cannot
// be parsed are reported as ErrInvalidConfig.
func Resolve(v *viper.Viper) (*Config, error) {
	var problems []string

	duration := func(key string) time.Duration {
		d, err := getDuration(v, key)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", key, err))
		}
		return d
	}

	c := &Config{
		Warmup:      duration(KeyWarmup),
		Measurement: duration(KeyMeasurement),
		Samples:     v.GetInt(KeySamples),
		MinIters:    v.GetInt(KeyMinIters),
		Baseline: BaselineConfig{
			Path:    v.GetString(KeyBaselinePath),
			Compare: v.GetBool(KeyBaselineCompare),
			Save:    v.GetBool(KeyBaselineSave),
		},
		Filter: v.GetString(KeyFilter),
		Tags:   splitList(v.GetStringSlice(KeyTags)),
		Format: strings.ToLower(v.GetString(KeyFormat)),
		Color:  strings.ToLower(v.GetString(KeyColor)),
		Show: ShowConfig{
			Env:         v.GetBool(KeyShowEnv),
			Histogram:   v.GetBool(KeyShowHistogram),
			Percentiles: v.GetBool(KeyShowPercentiles),
		},
		FailThreshold: v.GetFloat64(KeyFailThreshold),
		HistoryPath:   v.GetString(KeyHistoryPath),
		Metrics: MetricsConfig{
			Textfile:    v.GetString(KeyMetricsTextfile),
			Pushgateway: v.GetString(KeyMetricsPush),
		},
		Verbose: v.GetBool(KeyVerbose),
		LogFile: v.GetString(KeyLogFile),
		File:    v.ConfigFileUsed(),
	}

	for _, s := range splitList(v.GetStringSlice(KeyPercentiles)) {
		p, err := strconv.ParseFloat(s, 64)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %q is not a number", KeyPercentiles, s))
			continue
		}
		c.Percentiles = append(c.Percentiles, p)
	}

	if len(problems) > 0 {
		return nil, invalid(problems)
	}
	return c, nil
}

// getDuration accepts Go duration strings; bare numbers are seconds.
func getDuration(v *viper.Viper, key string) (time.Duration, error) {
	switch raw := v.Get(key).(type) {
	case time.Duration:
		return raw, nil
	case int:
		return time.Duration(raw) * time.Second, nil
	case int64:
		return time.Duration(raw) * time.Second, nil
	case float64:
		return time.Duration(raw * float64(time.Second)), nil
	case string:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return time.Duration(f * float64(time.Second)), nil
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", raw)
		}
		return d, nil
	default:
		return v.GetDuration(key), nil
	}
}

// splitList flattens comma separated entries and drops empty ones.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, s := range strings.Split(item, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// Session converts c into the configuration of a benchmark session.
func (c *Config) Session() benchmark.SessionConfig {
	percentiles := c.Percentiles
	if len(percentiles) == 0 {
		percentiles = stats.DefaultPercentiles
	}
	return benchmark.SessionConfig{
		Measure: measure.Config{
			Warmup:        c.Warmup,
			Measurement:   c.Measurement,
			Samples:       c.Samples,
			MinIterations: uint64(max(c.MinIters, 1)),
		},
		Percentiles:  percentiles,
		Filter:       c.Filter,
		Tags:         c.Tags,
		BaselinePath: c.Baseline.Path,
		Compare:      c.Baseline.Compare,
		Save:         c.Baseline.Save,
	}
}
