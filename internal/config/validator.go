package config

import (
	"errors"
	"fmt"
	"strings"

	"zap/internal/report"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("configuration validation failed")

func invalid(problems []string) error {
	return fmt.Errorf("%w:\n  %s", ErrInvalidConfig, strings.Join(problems, "\n  "))
}

// Validate checks every value and reports all problems at once.
func (c *Config) Validate() error {
	var problems []string

	if c.Warmup <= 0 {
		problems = append(problems, fmt.Sprintf("warmup must be positive, got: %v", c.Warmup))
	}
	if c.Measurement <= 0 {
		problems = append(problems, fmt.Sprintf("measurement must be positive, got: %v", c.Measurement))
	}
	if c.Samples <= 0 {
		problems = append(problems, fmt.Sprintf("samples must be positive, got: %d", c.Samples))
	}
	if c.MinIters <= 0 {
		problems = append(problems, fmt.Sprintf("min_iters must be positive, got: %d", c.MinIters))
	}

	switch c.Format {
	case FormatText, FormatJSON:
	default:
		problems = append(problems, fmt.Sprintf("format must be text or json, got: %q", c.Format))
	}
	if _, err := report.ParseColorMode(c.Color); err != nil {
		problems = append(problems, err.Error())
	}

	for _, p := range c.Percentiles {
		if p < 0 || p > 100 {
			problems = append(problems, fmt.Sprintf("percentiles must be in [0, 100], got: %g", p))
		}
	}
	if c.FailThreshold < 0 {
		problems = append(problems, fmt.Sprintf("fail_threshold must not be negative, got: %g", c.FailThreshold))
	}
	if c.Baseline.Path != "" && strings.TrimSpace(c.Baseline.Path) == "" {
		problems = append(problems, "baseline.path must not be blank")
	}

	if len(problems) > 0 {
		return invalid(problems)
	}
	return nil
}
