// internal/appconfig/show.go
package appconfig

import (
	"fmt"
	"io"
	"strings"
)

// ShowConfig prints the current configuration summary.
func ShowConfig(out io.Writer, file string, cfg *Config) {
	if file == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", file)
	}

	fmt.Fprintln(out, "Current configuration:")
	if cfg == nil {
		fmt.Fprintln(out, "  (not loaded)")
		return
	}

	fmt.Fprintf(out, "  Provider:         %s\n", cfg.Provider)
	fmt.Fprintf(out, "  Model:            %s\n", cfg.Model)
	if cfg.BaseURL != "" {
		fmt.Fprintf(out, "  Base URL:         %s\n", cfg.BaseURL)
	}
	if len(cfg.BiasTypes) > 0 {
		fmt.Fprintf(out, "  Bias Types:       %s\n", strings.Join(cfg.BiasTypes, ", "))
	} else {
		fmt.Fprintf(out, "  Bias Types:       all\n")
	}
	if cfg.Difficulty != "" {
		fmt.Fprintf(out, "  Difficulty:       %s\n", cfg.Difficulty)
	}
	if cfg.Category != "" {
		fmt.Fprintf(out, "  Category:         %s\n", cfg.Category)
	}
	if cfg.TestSuite != "" {
		fmt.Fprintf(out, "  Test Suite:       %s\n", cfg.TestSuite)
	}
	fmt.Fprintf(out, "  Iterations:       %d (min %d, max %d)\n", cfg.IterationCount(), cfg.MinIterations(), cfg.MaxIterations())
	fmt.Fprintf(out, "  Adaptive:         %v (CV threshold %.3f)\n", cfg.Adaptive.Enabled, cfg.CVThreshold())
	fmt.Fprintf(out, "  Determinism:      %s\n", cfg.DeterminismMode())
	fmt.Fprintf(out, "  Seed:             %d\n", cfg.RunSeed())
	fmt.Fprintf(out, "  Request Timeout:  %s\n", cfg.RequestTimeout())
	if cfg.ExportPath != "" {
		fmt.Fprintf(out, "  Export Path:      %s\n", cfg.ExportPath)
	}
	fmt.Fprintf(out, "  Debug:            %v\n", cfg.Debug)
	fmt.Fprintf(out, "  No TUI:           %v\n", cfg.NoTUI)
}
