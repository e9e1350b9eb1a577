// internal/appconfig/appconfig.go

// Package appconfig manages loading and interpreting application
// configuration: the target model identity, the test battery selection, and
// the iteration, determinism, and retry settings for an evaluation run.
package appconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultConfigPath is the default path to the application's
	// configuration file.
	DefaultConfigPath = "config/config.json"
	// defaultRequestTimeout is the default timeout for a single model call.
	defaultRequestTimeout = 60 * time.Second
	// defaultIterations is the iteration budget per test case when the
	// config omits one.
	defaultIterations = 10
	// defaultMinIterationsCap bounds the derived adaptive minimum.
	defaultMinIterationsCap = 5
	// DefaultCVThreshold is the coefficient-of-variation stopping threshold
	// for adaptive iteration control.
	DefaultCVThreshold = 0.05
	// DefaultEffectSizeCutoff is the |d| threshold above which a group
	// comparison is reported as significant.
	DefaultEffectSizeCutoff = 0.5
)

// AdaptiveConfig controls the CV-based early-stopping rule.
type AdaptiveConfig struct {
	Enabled       bool    `json:"enabled"`
	MinIterations int     `json:"minIterations,omitempty"`
	MaxIterations int     `json:"maxIterations,omitempty"`
	CVThreshold   float64 `json:"cvThreshold,omitempty"`
}

// Config represents the top-level application configuration.
type Config struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	APIKey   string `json:"apiKey,omitempty"`
	BaseURL  string `json:"baseUrl,omitempty"`

	BiasTypes  []string `json:"biasTypes,omitempty"`
	Difficulty string   `json:"difficulty,omitempty"`
	Category   string   `json:"category,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	TestSuite  string   `json:"testSuite,omitempty"`

	Iterations  int            `json:"iterations,omitempty"`
	Adaptive    AdaptiveConfig `json:"adaptive"`
	Determinism string         `json:"determinism,omitempty"`
	Seed        int64          `json:"seed,omitempty"`
	MaxTokens   int            `json:"maxTokens,omitempty"`

	TimeoutSeconds   int     `json:"timeout,omitempty"`
	EffectSizeCutoff float64 `json:"effectSizeCutoff,omitempty"`

	ExportPath string `json:"export,omitempty"`
	LogFile    string `json:"logFile,omitempty"`
	Debug      bool   `json:"debug"`
	NoTUI      bool   `json:"noTui"`

	ConfigPath string `json:"-"`
}

// RequestTimeout returns the timeout for a single model call, falling back
// to the default if not specified.
func (c Config) RequestTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// IterationCount returns the configured per-case iteration budget.
func (c Config) IterationCount() int {
	if c.Iterations <= 0 {
		return defaultIterations
	}
	return c.Iterations
}

// MinIterations returns the adaptive minimum: the configured value, or
// min(5, iteration count) when unset.
func (c Config) MinIterations() int {
	if c.Adaptive.MinIterations > 0 {
		return c.Adaptive.MinIterations
	}
	if n := c.IterationCount(); n < defaultMinIterationsCap {
		return n
	}
	return defaultMinIterationsCap
}

// MaxIterations returns the adaptive maximum, defaulting to the configured
// iteration count.
func (c Config) MaxIterations() int {
	if c.Adaptive.MaxIterations > 0 {
		return c.Adaptive.MaxIterations
	}
	return c.IterationCount()
}

// CVThreshold returns the adaptive stopping threshold.
func (c Config) CVThreshold() float64 {
	if c.Adaptive.CVThreshold > 0 {
		return c.Adaptive.CVThreshold
	}
	return DefaultCVThreshold
}

// SignificanceCutoff returns the effect-size cutoff for group comparisons.
func (c Config) SignificanceCutoff() float64 {
	if c.EffectSizeCutoff > 0 {
		return c.EffectSizeCutoff
	}
	return DefaultEffectSizeCutoff
}

// DeterminismMode returns the configured determinism mode, defaulting to
// "near".
func (c Config) DeterminismMode() string {
	mode := strings.TrimSpace(c.Determinism)
	if mode == "" {
		return "near"
	}
	return mode
}

// RunSeed returns the run's reproducibility seed; zero selects 42.
func (c Config) RunSeed() int64 {
	if c.Seed == 0 {
		return 42
	}
	return c.Seed
}

// Validate checks cross-field constraints. Configuration errors are fatal
// and never retried.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Provider) == "" {
		return errors.New("provider is required")
	}
	if strings.TrimSpace(c.Model) == "" {
		return errors.New("model is required")
	}
	switch c.DeterminismMode() {
	case "full", "near", "disabled":
	default:
		return fmt.Errorf("invalid determinism mode %q (expected full, near, or disabled)", c.Determinism)
	}
	if c.Adaptive.MinIterations > 0 && c.Adaptive.MaxIterations > 0 &&
		c.Adaptive.MinIterations > c.Adaptive.MaxIterations {
		return fmt.Errorf("adaptive minIterations %d exceeds maxIterations %d",
			c.Adaptive.MinIterations, c.Adaptive.MaxIterations)
	}
	if c.Adaptive.CVThreshold < 0 {
		return errors.New("adaptive cvThreshold must not be negative")
	}
	return nil
}
