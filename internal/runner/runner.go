// internal/runner/runner.go

// Package runner orchestrates an evaluation run: for each selected test
// case it generates prompts, calls the model, scores responses, and decides
// after every iteration whether the accumulated scores are stable enough to
// stop. Iterations inside a test case are sequential because the stopping
// rule needs incremental statistics; test cases themselves run on a bounded
// worker pool since they share no state.
package runner

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/mwiater/biasprobe/internal/logging"
	"github.com/mwiater/biasprobe/internal/promptgen"
	"github.com/mwiater/biasprobe/internal/providers"
	"github.com/mwiater/biasprobe/internal/scorer"
	"github.com/mwiater/biasprobe/internal/stats"
	"github.com/mwiater/biasprobe/internal/testcases"
	"github.com/mwiater/biasprobe/internal/util"
)

// TestResult is one materialized iteration: the prompt sent, the raw model
// response, and the flattened score fields. The unit the aggregator consumes.
type TestResult struct {
	TestCaseID        string                        `json:"testCaseId"`
	Bias              testcases.BiasType            `json:"biasType"`
	Iteration         int                           `json:"iteration"`
	Prompt            string                        `json:"prompt"`
	Response          string                        `json:"response"`
	DimensionScores   map[string]float64            `json:"dimensionScores"`
	OverallScore      float64                       `json:"overallScore"`
	Confidence        float64                       `json:"confidence"`
	Reasoning         string                        `json:"reasoning"`
	MatchedIndicators []string                      `json:"matchedIndicators,omitempty"`
	Determinism       providers.DeterminismMetadata `json:"determinism"`
	Timestamp         time.Time                     `json:"timestamp"`

	// Control fields are filled when the test case defines a control prompt:
	// the same rubric scored against the neutral framing.
	ControlPrompt   string   `json:"controlPrompt,omitempty"`
	ControlResponse string   `json:"controlResponse,omitempty"`
	ControlScore    *float64 `json:"controlScore,omitempty"`
}

// IterationStatsSnapshot captures the running statistics over all overall
// scores seen so far for a test case. Captured after every iteration; the
// coefficient of variation is the stopping-rule input.
type IterationStatsSnapshot struct {
	Iteration int     `json:"iteration"`
	Mean      float64 `json:"mean"`
	StdDev    float64 `json:"stdDev"`
	CILower   float64 `json:"ciLower"`
	CIUpper   float64 `json:"ciUpper"`
	CV        float64 `json:"cv"`
}

// ProgressEvent is emitted after every completed iteration and once when a
// test case finishes. The orchestration layer may surface these to a UI.
type ProgressEvent struct {
	TestCaseID      string
	Bias            testcases.BiasType
	CaseIndex       int
	CaseCount       int
	Iteration       int
	MaxIterations   int
	PercentComplete float64
	CaseDone        bool
	Err             error
}

// CaseRun is the complete outcome for one test case. A failed case records
// its error here rather than aborting the run.
type CaseRun struct {
	TestCase     testcases.TestCase       `json:"testCase"`
	Results      []TestResult             `json:"results"`
	Snapshots    []IterationStatsSnapshot `json:"snapshots"`
	StoppedEarly bool                     `json:"stoppedEarly"`
	Err          error                    `json:"-"`
}

// Options configures a run.
type Options struct {
	// MinIterations is the floor before the adaptive stopping rule may
	// trigger.
	MinIterations int
	// MaxIterations bounds the loop; in fixed mode it is the exact count.
	MaxIterations int
	// Adaptive enables CV-based early stopping.
	Adaptive bool
	// CVThreshold is the coefficient-of-variation value at or below which
	// the score series is considered stable.
	CVThreshold float64
	// Determinism is the requested reproducibility mode for every call.
	Determinism providers.DeterminismMode
	// Seed is the run-level reproducibility seed; each test case derives
	// its own sub-seed from it.
	Seed int64
	// MaxTokens caps each completion.
	MaxTokens int
	// Timeout applies per model call.
	Timeout time.Duration
	// Concurrency is the number of test cases evaluated in parallel.
	Concurrency int
	// Progress, if non-nil, receives iteration-level progress events.
	Progress chan<- ProgressEvent
}

// Runner drives test cases against one model client.
type Runner struct {
	client providers.ModelClient
	scorer scorer.Scorer
	opts   Options

	now func() time.Time
}

// New returns a Runner. Zero option fields fall back to safe values: one
// worker, ten iterations, threshold 0.05.
func New(client providers.ModelClient, sc scorer.Scorer, opts Options) *Runner {
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = 10
	}
	if opts.MinIterations <= 0 || opts.MinIterations > opts.MaxIterations {
		opts.MinIterations = util.Min(5, opts.MaxIterations)
	}
	if opts.CVThreshold <= 0 {
		opts.CVThreshold = 0.05
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &Runner{client: client, scorer: sc, opts: opts, now: time.Now}
}

// Run evaluates every test case and returns one CaseRun per case, in input
// order. Per-case failures are isolated in CaseRun.Err; Run itself fails
// only on an empty case list or a cancelled context.
func (r *Runner) Run(ctx context.Context, cases []testcases.TestCase) ([]CaseRun, error) {
	if len(cases) == 0 {
		return nil, fmt.Errorf("no test cases selected")
	}

	logging.LogEvent("Starting evaluation run: %d test cases, %d-%d iterations each",
		len(cases), r.opts.MinIterations, r.opts.MaxIterations)

	runs := make([]CaseRun, len(cases))
	sem := make(chan struct{}, r.opts.Concurrency)

	var wg sync.WaitGroup
	for i, tc := range cases {
		wg.Add(1)
		go func(idx int, tc testcases.TestCase) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			runs[idx] = r.runCase(ctx, tc, idx, len(cases))
		}(i, tc)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return runs, fmt.Errorf("run cancelled: %w", err)
	}
	return runs, nil
}

// runCase executes the iteration loop for one test case.
func (r *Runner) runCase(ctx context.Context, tc testcases.TestCase, idx, total int) CaseRun {
	run := CaseRun{TestCase: tc}
	seed := caseSeed(r.opts.Seed, tc.ID)

	var scores []float64
	for iteration := 1; iteration <= r.opts.MaxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			run.Err = fmt.Errorf("test case %s cancelled: %w", tc.ID, err)
			break
		}

		result, err := r.runIteration(ctx, tc, iteration, seed)
		if err != nil {
			run.Err = fmt.Errorf("test case %s iteration %d: %w", tc.ID, iteration, err)
			logging.LogEvent("Test case %s failed at iteration %d: %v", tc.ID, iteration, err)
			r.emit(ctx, ProgressEvent{
				TestCaseID: tc.ID, Bias: tc.Bias,
				CaseIndex: idx, CaseCount: total,
				Iteration: iteration, MaxIterations: r.opts.MaxIterations,
				CaseDone: true, Err: run.Err,
			})
			return run
		}

		run.Results = append(run.Results, result)
		scores = append(scores, result.OverallScore)
		snapshot := snapshotOf(iteration, scores)
		run.Snapshots = append(run.Snapshots, snapshot)

		r.emit(ctx, ProgressEvent{
			TestCaseID: tc.ID, Bias: tc.Bias,
			CaseIndex: idx, CaseCount: total,
			Iteration: iteration, MaxIterations: r.opts.MaxIterations,
			PercentComplete: float64(iteration) / float64(r.opts.MaxIterations) * 100,
		})

		if r.opts.Adaptive && iteration >= r.opts.MinIterations && snapshot.CV <= r.opts.CVThreshold {
			logging.LogEvent("Test case %s stable after %d iterations (CV %.4f)", tc.ID, iteration, snapshot.CV)
			run.StoppedEarly = true
			break
		}
	}

	r.emit(ctx, ProgressEvent{
		TestCaseID: tc.ID, Bias: tc.Bias,
		CaseIndex: idx, CaseCount: total,
		Iteration: len(run.Results), MaxIterations: r.opts.MaxIterations,
		PercentComplete: 100, CaseDone: true, Err: run.Err,
	})
	return run
}

// runIteration performs one generate/call/score pass, plus the paired
// control-prompt pass when the test case defines one. Provider adapters log
// determinism fallbacks themselves.
func (r *Runner) runIteration(ctx context.Context, tc testcases.TestCase, iteration, seed int) (TestResult, error) {
	prompt, err := promptgen.Generate(tc, iteration)
	if err != nil {
		return TestResult{}, err
	}

	callOpts := providers.CompletionOptions{
		MaxTokens:   r.opts.MaxTokens,
		Timeout:     r.opts.Timeout,
		Determinism: r.opts.Determinism,
	}
	// Disabled mode leaves sampling entirely to the provider; no seed is
	// pinned.
	if r.opts.Determinism != providers.DeterminismDisabled {
		callOpts.Seed = &seed
	}

	completion, err := r.client.GenerateCompletion(ctx, prompt.Text, callOpts)
	if err != nil {
		return TestResult{}, err
	}

	score := r.scorer.Score(tc.Rubric, completion.Content)

	result := TestResult{
		TestCaseID:        tc.ID,
		Bias:              tc.Bias,
		Iteration:         iteration,
		Prompt:            prompt.Text,
		Response:          completion.Content,
		DimensionScores:   score.DimensionScores,
		OverallScore:      score.OverallScore,
		Confidence:        score.Confidence,
		Reasoning:         score.Reasoning,
		MatchedIndicators: score.MatchedIndicators,
		Determinism:       completion.Determinism,
		Timestamp:         r.now(),
	}

	controlText, hasControl, err := promptgen.GenerateControl(tc, iteration)
	if err != nil {
		return TestResult{}, err
	}
	if hasControl {
		controlCompletion, err := r.client.GenerateCompletion(ctx, controlText, callOpts)
		if err != nil {
			return TestResult{}, err
		}
		controlScore := r.scorer.Score(tc.Rubric, controlCompletion.Content).OverallScore
		result.ControlPrompt = controlText
		result.ControlResponse = controlCompletion.Content
		result.ControlScore = &controlScore
	}
	return result, nil
}

// emit sends a progress event without blocking a cancelled run.
func (r *Runner) emit(ctx context.Context, ev ProgressEvent) {
	if r.opts.Progress == nil {
		return
	}
	select {
	case r.opts.Progress <- ev:
	case <-ctx.Done():
	}
}

// snapshotOf computes the running statistics after the given iteration.
func snapshotOf(iteration int, scores []float64) IterationStatsSnapshot {
	ci := stats.ConfidenceInterval95(scores)
	return IterationStatsSnapshot{
		Iteration: iteration,
		Mean:      stats.Mean(scores),
		StdDev:    stats.StdDev(scores),
		CILower:   ci.Lower,
		CIUpper:   ci.Upper,
		CV:        stats.CoefficientOfVariation(scores),
	}
}

// caseSeed derives a stable per-case sub-seed so parallel workers never
// share a sampling seed. Keyed on the case id, not slice position, so the
// same case gets the same seed under any filter.
func caseSeed(runSeed int64, id string) int {
	h := fnv.New32a()
	h.Write([]byte(id))
	return int(runSeed) + int(h.Sum32()%100000)
}
