// internal/providers/options.go
package providers

import (
	"fmt"
	"time"
)

// Defaults holds the baseline request settings applied before caller
// overrides during option resolution.
type Defaults struct {
	Model       string
	MaxTokens   int
	Temperature float64
	Seed        int
	Timeout     time.Duration
}

// DefaultSettings returns the engine-wide baseline request settings.
func DefaultSettings() Defaults {
	return Defaults{
		MaxTokens:   1024,
		Temperature: 0.7,
		Seed:        42,
		Timeout:     60 * time.Second,
	}
}

// ResolveOptions reconciles the caller's requested sampling options with a
// provider's capabilities. Unsupported controls are dropped, supported
// controls are forced to the provider floor under full determinism, and
// below-floor values are clamped up. Every drop or clamp is recorded as a
// human-readable fallback reason in the returned metadata, and the achieved
// determinism mode is downgraded accordingly.
func ResolveOptions(caps ProviderCapabilities, opts CompletionOptions, defaults Defaults) (AppliedOptions, DeterminismMetadata) {
	mode := opts.Determinism
	if mode == "" {
		mode = DeterminismNear
	}

	applied := AppliedOptions{
		Model:     defaults.Model,
		MaxTokens: defaults.MaxTokens,
	}
	if opts.Model != "" {
		applied.Model = opts.Model
	}
	if opts.MaxTokens > 0 {
		applied.MaxTokens = opts.MaxTokens
	}

	var reasons []string
	note := func(format string, args ...any) {
		reasons = append(reasons, fmt.Sprintf(format, args...))
	}

	// Temperature always has an engine default, so it is applied whenever
	// the provider supports it.
	switch {
	case !caps.SupportsTemperature:
		if opts.Temperature != nil || mode == DeterminismFull {
			note("Temperature is not supported by provider %q", caps.Provider)
		}
	case mode == DeterminismFull:
		applied.Temperature = floatPtr(caps.MinTemperature)
	default:
		value := defaults.Temperature
		if opts.Temperature != nil {
			value = *opts.Temperature
		}
		if value < caps.MinTemperature {
			note("Temperature %.2f is below the provider minimum; clamped to %.2f", value, caps.MinTemperature)
			value = caps.MinTemperature
		}
		applied.Temperature = floatPtr(value)
	}

	// Top-p and top-k have no engine default: they are only sent when the
	// caller asked for them or full determinism pins them to the floor.
	switch {
	case !caps.SupportsTopP:
		if opts.TopP != nil || mode == DeterminismFull {
			note("Top-p is not supported by provider %q", caps.Provider)
		}
	case mode == DeterminismFull:
		applied.TopP = floatPtr(caps.MinTopP)
	case opts.TopP != nil:
		value := *opts.TopP
		if value < caps.MinTopP {
			note("Top-p %.2f is below the provider minimum; clamped to %.2f", value, caps.MinTopP)
			value = caps.MinTopP
		}
		applied.TopP = floatPtr(value)
	}

	switch {
	case !caps.SupportsTopK:
		if opts.TopK != nil || mode == DeterminismFull {
			note("Top-k is not supported by provider %q", caps.Provider)
		}
	case mode == DeterminismFull:
		applied.TopK = intPtr(maxInt(caps.MinTopK, 1))
	case opts.TopK != nil:
		value := *opts.TopK
		if value < caps.MinTopK {
			note("Top-k %d is below the provider minimum; clamped to %d", value, caps.MinTopK)
			value = caps.MinTopK
		}
		applied.TopK = intPtr(value)
	}

	switch {
	case !caps.SupportsSeed:
		if opts.Seed != nil || mode == DeterminismFull {
			note("Seed is not supported by provider %q", caps.Provider)
		}
	case opts.Seed != nil:
		applied.Seed = intPtr(*opts.Seed)
	case mode == DeterminismFull:
		applied.Seed = intPtr(defaults.Seed)
	}

	achieved := mode
	if len(reasons) > 0 && mode != DeterminismDisabled {
		achieved = DeterminismNear
	}

	meta := DeterminismMetadata{
		RequestedMode:   mode,
		AchievedMode:    achieved,
		Capabilities:    caps,
		Applied:         applied,
		FallbackReasons: reasons,
	}
	return applied, meta
}

// ResolveTimeout returns the caller's per-request timeout, falling back to
// the engine default.
func ResolveTimeout(opts CompletionOptions, defaults Defaults) time.Duration {
	if opts.Timeout > 0 {
		return opts.Timeout
	}
	return defaults.Timeout
}

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
