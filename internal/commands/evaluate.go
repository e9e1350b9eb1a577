// internal/commands/evaluate.go
package biasprobe

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mwiater/biasprobe/internal/aggregator"
	"github.com/mwiater/biasprobe/internal/appconfig"
	"github.com/mwiater/biasprobe/internal/logging"
	"github.com/mwiater/biasprobe/internal/providerfactory"
	"github.com/mwiater/biasprobe/internal/providers"
	"github.com/mwiater/biasprobe/internal/runner"
	"github.com/mwiater/biasprobe/internal/scorer"
	"github.com/mwiater/biasprobe/internal/testcases"
	"github.com/mwiater/biasprobe/internal/tui"
	"github.com/mwiater/biasprobe/internal/util"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Run the bias test battery against the configured model",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEvaluate(cmd.OutOrStdout(), GetConfig())
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
}

// runEvaluate drives one full evaluation: select cases, run them, aggregate,
// and render the report.
func runEvaluate(out io.Writer, cfg *appconfig.Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is not loaded")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	cases, err := selectCases(cfg)
	if err != nil {
		return err
	}
	if len(cases) == 0 {
		return fmt.Errorf("no test cases match the configured filters")
	}

	defaults := providers.DefaultSettings()
	defaults.Model = cfg.Model
	if cfg.MaxTokens > 0 {
		defaults.MaxTokens = cfg.MaxTokens
	}
	defaults.Seed = int(cfg.RunSeed())
	defaults.Timeout = cfg.RequestTimeout()

	client, err := providerfactory.NewModelClient(
		providers.Credentials{
			Provider: cfg.Provider,
			Model:    cfg.Model,
			APIKey:   cfg.APIKey,
			BaseURL:  cfg.BaseURL,
		},
		defaults,
		providers.DefaultRetryPolicy(),
	)
	if err != nil {
		return err
	}
	defer client.Close()

	opts := runner.Options{
		MinIterations: cfg.MinIterations(),
		MaxIterations: cfg.MaxIterations(),
		Adaptive:      cfg.Adaptive.Enabled,
		CVThreshold:   cfg.CVThreshold(),
		Determinism:   providers.DeterminismMode(cfg.DeterminismMode()),
		Seed:          cfg.RunSeed(),
		MaxTokens:     cfg.MaxTokens,
		Timeout:       cfg.RequestTimeout(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var progress chan runner.ProgressEvent
	var viewWG sync.WaitGroup
	if !cfg.NoTUI {
		progress = make(chan runner.ProgressEvent, 64)
		opts.Progress = progress
		viewWG.Add(1)
		go func() {
			defer viewWG.Done()
			// An early view exit (user quit) stops draining progress;
			// cancelling unblocks the case workers.
			defer cancel()
			if err := tui.Run(cfg.Provider, cfg.Model, progress); err != nil {
				logging.LogEvent("progress view error: %v", err)
			}
		}()
	}

	start := time.Now()
	runs, err := runner.New(client, scorer.NewKeywordScorer(), opts).Run(ctx, cases)
	if progress != nil {
		close(progress)
		viewWG.Wait()
	}
	if err != nil {
		return err
	}
	logging.LogEvent("Evaluation finished in %s", time.Since(start).Round(time.Millisecond))

	report, err := aggregator.NewGenerator().Generate(aggregator.RunMeta{
		Provider:         cfg.Provider,
		Model:            cfg.Model,
		Determinism:      cfg.DeterminismMode(),
		Seed:             cfg.RunSeed(),
		Adaptive:         cfg.Adaptive.Enabled,
		CVThreshold:      cfg.CVThreshold(),
		EffectSizeCutoff: cfg.SignificanceCutoff(),
	}, runs)
	if err != nil {
		return err
	}

	renderReport(out, report)

	if cfg.Debug {
		fmt.Fprintln(out)
		for _, agg := range report.Results {
			fmt.Fprint(out, aggregator.RenderSummary(agg))
		}
	}

	if cfg.ExportPath != "" {
		path, err := aggregator.WriteReport(report, cfg.ExportPath)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nReport written to %s\n", path)
	}
	return nil
}

// selectCases loads the catalog, merges an external suite if configured,
// and applies the configured filters.
func selectCases(cfg *appconfig.Config) ([]testcases.TestCase, error) {
	registry := testcases.NewRegistry()
	if cfg.TestSuite != "" {
		if err := registry.LoadSuite(cfg.TestSuite); err != nil {
			return nil, fmt.Errorf("load test suite: %w", err)
		}
	}

	filter := testcases.Filter{
		Difficulty: cfg.Difficulty,
		Category:   cfg.Category,
		Tags:       cfg.Tags,
	}
	for _, name := range cfg.BiasTypes {
		bias, err := testcases.ParseBiasType(name)
		if err != nil {
			return nil, err
		}
		filter.BiasTypes = append(filter.BiasTypes, bias)
	}
	return registry.Cases(filter), nil
}

var (
	severityColors = map[string]func(a ...interface{}) string{
		aggregator.SeverityMinimal:  color.New(color.FgGreen).SprintFunc(),
		aggregator.SeverityLow:      color.New(color.FgGreen).SprintFunc(),
		aggregator.SeverityModerate: color.New(color.FgYellow).SprintFunc(),
		aggregator.SeverityHigh:     color.New(color.FgRed).SprintFunc(),
		aggregator.SeveritySevere:   color.New(color.FgRed, color.Bold).SprintFunc(),
	}
	headingColor = color.New(color.Bold, color.Underline).SprintFunc()
	failedColor  = color.New(color.FgRed).SprintFunc()
)

// renderReport prints the human-readable report summary.
func renderReport(out io.Writer, report *aggregator.TestReport) {
	fmt.Fprintf(out, "\n%s\n", headingColor("Bias Evaluation Report"))
	fmt.Fprintf(out, "Model: %s (%s)  Report: %s\n", report.Meta.Model, report.Meta.Provider, report.ReportID)
	fmt.Fprintf(out, "Test cases: %d  Iterations: %d  Failed: %d\n\n",
		report.TotalTestCases, report.TotalIterations, report.FailedTestCases)

	for _, bias := range testcases.AllBiasTypes() {
		summary, ok := report.Summary[string(bias)]
		if !ok {
			continue
		}
		colorize := severityColors[summary.MaxSeverity]
		fmt.Fprintf(out, "%-24s mean %.2f  severity %s  consistency %s  (%d cases)\n",
			bias, summary.MeanScore, colorize(summary.MaxSeverity), summary.Consistency, summary.TestCases)
	}

	fmt.Fprintf(out, "\n%s\n", headingColor("Findings"))
	fmt.Fprintf(out, "Most problematic: %s  Least problematic: %s\n",
		report.Findings.MostProblematicBias, report.Findings.LeastProblematicBias)
	fmt.Fprintf(out, "Overall score: %.2f (confidence %.2f)\n", report.Findings.OverallScore, report.Findings.Confidence)

	if len(report.Findings.Recommendations) > 0 {
		fmt.Fprintf(out, "\n%s\n", headingColor("Recommendations"))
		for _, rec := range report.Findings.Recommendations {
			fmt.Fprintf(out, "  [%2d] %s (%s)\n", rec.Priority, rec.Title, rec.Bias)
			fmt.Fprintf(out, "       %s\n", util.WrapToWidth(rec.Summary, 90))
		}
	}

	for _, failure := range report.Failures {
		fmt.Fprintf(out, "\n%s %s: %s\n", failedColor("FAILED"), failure.TestCaseID,
			util.TruncateRunes(failure.Error, 200))
	}
}
