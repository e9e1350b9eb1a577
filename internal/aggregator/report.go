// internal/aggregator/report.go
package aggregator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mwiater/biasprobe/internal/logging"
	"github.com/mwiater/biasprobe/internal/runner"
	"github.com/mwiater/biasprobe/internal/stats"
	"github.com/mwiater/biasprobe/internal/testcases"
)

// RunMeta describes the evaluated model and the run configuration recorded
// in the report header.
type RunMeta struct {
	Provider         string  `json:"provider"`
	Model            string  `json:"model"`
	Determinism      string  `json:"determinism"`
	Seed             int64   `json:"seed"`
	Adaptive         bool    `json:"adaptive"`
	CVThreshold      float64 `json:"cvThreshold"`
	EffectSizeCutoff float64 `json:"effectSizeCutoff"`
}

// CaseFailure records a test case that produced no usable results.
type CaseFailure struct {
	TestCaseID string             `json:"testCaseId"`
	Bias       testcases.BiasType `json:"biasType"`
	Error      string             `json:"error"`
}

// BiasSummary rolls up every test case of one bias type.
type BiasSummary struct {
	Bias        testcases.BiasType `json:"biasType"`
	TestCases   int                `json:"testCases"`
	MeanScore   float64            `json:"meanScore"`
	MaxSeverity string             `json:"maxSeverity"`
	Consistency string             `json:"consistency"`
}

// OverallFindings is the top-level verdict of a report.
type OverallFindings struct {
	MostProblematicBias  testcases.BiasType `json:"mostProblematicBias"`
	LeastProblematicBias testcases.BiasType `json:"leastProblematicBias"`
	OverallScore         float64            `json:"overallScore"`
	Confidence           float64            `json:"confidence"`
	Recommendations      []Recommendation   `json:"recommendations"`
}

// TestReport is the complete output of one evaluation run.
type TestReport struct {
	ReportID        string                 `json:"reportId"`
	GeneratedAt     time.Time              `json:"generatedAt"`
	Meta            RunMeta                `json:"meta"`
	TotalTestCases  int                    `json:"totalTestCases"`
	TotalIterations int                    `json:"totalIterations"`
	FailedTestCases int                    `json:"failedTestCases"`
	Summary         map[string]BiasSummary `json:"summary"`
	Results         []AggregatedResults    `json:"results"`
	Failures        []CaseFailure          `json:"failures,omitempty"`
	Findings        OverallFindings        `json:"overallFindings"`
}

// Generator assembles reports. Time and id sources are injectable for
// tests.
type Generator struct {
	now   func() time.Time
	newID func() string
}

// NewGenerator returns a report generator using wall-clock time and random
// uuids.
func NewGenerator() *Generator {
	return &Generator{
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
}

// Generate aggregates every successful case run and assembles the report.
// Failed cases are listed separately; a run where every case failed still
// yields a report with empty results.
func (g *Generator) Generate(meta RunMeta, runs []runner.CaseRun) (*TestReport, error) {
	if len(runs) == 0 {
		return nil, fmt.Errorf("cannot generate a report from zero case runs")
	}

	report := &TestReport{
		ReportID:       g.newID(),
		GeneratedAt:    g.now().UTC(),
		Meta:           meta,
		TotalTestCases: len(runs),
		Summary:        make(map[string]BiasSummary),
	}

	cutoff := meta.EffectSizeCutoff
	if cutoff <= 0 {
		cutoff = defaultEffectSizeCutoff
	}

	for _, run := range runs {
		if run.Err != nil {
			report.FailedTestCases++
			report.Failures = append(report.Failures, CaseFailure{
				TestCaseID: run.TestCase.ID,
				Bias:       run.TestCase.Bias,
				Error:      run.Err.Error(),
			})
			continue
		}
		agg, err := Aggregate(run)
		if err != nil {
			return nil, err
		}
		agg.ControlComparison = controlComparison(agg.RawResults, cutoff)
		report.TotalIterations += agg.Iterations
		report.Results = append(report.Results, agg)
	}

	markBatchPositions(report.Results)
	report.Summary = summarize(report.Results)
	report.Findings = findings(report.Results)
	return report, nil
}

// markBatchPositions fills each aggregate's percentile and outlier flag
// relative to the batch of mean scores.
func markBatchPositions(results []AggregatedResults) {
	if len(results) == 0 {
		return
	}
	means := make([]float64, len(results))
	for i, agg := range results {
		means[i] = agg.MeanScore
	}

	outliers := make(map[int]bool)
	for _, idx := range stats.Outliers(means) {
		outliers[idx] = true
	}
	for i := range results {
		results[i].Percentile = stats.Round1(stats.Percentile(means, means[i]))
		results[i].Outlier = outliers[i]
	}
}

// summarize rolls aggregates up per bias type.
func summarize(results []AggregatedResults) map[string]BiasSummary {
	summary := make(map[string]BiasSummary)
	scores := make(map[testcases.BiasType][]float64)
	cvs := make(map[testcases.BiasType][]float64)

	for _, agg := range results {
		scores[agg.Bias] = append(scores[agg.Bias], agg.MeanScore)
		cvs[agg.Bias] = append(cvs[agg.Bias], agg.CV)
	}

	for bias, values := range scores {
		mean := stats.Mean(values)
		summary[string(bias)] = BiasSummary{
			Bias:        bias,
			TestCases:   len(values),
			MeanScore:   stats.Round2(mean),
			MaxSeverity: SeverityBand(stats.Max(values)),
			Consistency: consistencyLabel(stats.Mean(cvs[bias])),
		}
	}
	return summary
}

// findings computes the overall verdict: the most and least problematic
// bias types by mean score, a confidence-weighted overall score, and the
// ranked recommendation list.
func findings(results []AggregatedResults) OverallFindings {
	if len(results) == 0 {
		return OverallFindings{}
	}

	byBias := make(map[testcases.BiasType][]float64)
	for _, agg := range results {
		byBias[agg.Bias] = append(byBias[agg.Bias], agg.MeanScore)
	}

	biases := make([]testcases.BiasType, 0, len(byBias))
	for bias := range byBias {
		biases = append(biases, bias)
	}
	sort.Slice(biases, func(i, j int) bool { return biases[i] < biases[j] })

	var most, least testcases.BiasType
	var mostScore, leastScore float64
	for i, bias := range biases {
		mean := stats.Mean(byBias[bias])
		if i == 0 || mean > mostScore {
			most, mostScore = bias, mean
		}
		if i == 0 || mean < leastScore {
			least, leastScore = bias, mean
		}
	}

	// Overall score weights each case's mean by its detection confidence,
	// so inconsistent detections pull less weight.
	var weightedSum, totalWeight, confidenceSum float64
	for _, agg := range results {
		weightedSum += agg.MeanScore * agg.DetectionConfidence
		totalWeight += agg.DetectionConfidence
		confidenceSum += agg.DetectionConfidence
	}
	overall := 0.0
	if totalWeight > 0 {
		overall = stats.Round2(weightedSum / totalWeight)
	}

	return OverallFindings{
		MostProblematicBias:  most,
		LeastProblematicBias: least,
		OverallScore:         overall,
		Confidence:           stats.Round2(confidenceSum / float64(len(results))),
		Recommendations:      Recommend(results),
	}
}

// RenderSummary returns a plain-text block describing one aggregate, used
// by the terminal report.
func RenderSummary(agg AggregatedResults) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s]: %s\n", agg.TestCaseID, agg.Bias, agg.Interpretation)
	for _, name := range sortedDimensionNames(agg.DimensionAggregates) {
		dim := agg.DimensionAggregates[name]
		fmt.Fprintf(&b, "  %s: mean %.2f (%.2f-%.2f)\n", name, dim.Mean, dim.CILower, dim.CIUpper)
	}
	if agg.ControlComparison != nil {
		suffix := ""
		if agg.ControlComparison.Significant {
			suffix = ", significant"
		}
		fmt.Fprintf(&b, "  control: biased scores %s (effect size %.2f%s)\n",
			agg.ControlComparison.Direction, agg.ControlComparison.EffectSize, suffix)
	}
	return b.String()
}

// WriteReport writes the report as indented JSON under dir, named by model
// slug and report id. It returns the written path.
func WriteReport(report *TestReport, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating reports directory: %w", err)
	}
	fileName := filepath.Join(dir, fmt.Sprintf("%s-%s.json", Slugify(report.Meta.Model), report.ReportID))

	file, err := os.Create(fileName)
	if err != nil {
		return "", fmt.Errorf("error creating report file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return "", fmt.Errorf("error writing report: %w", err)
	}

	logging.LogEvent("Report written to %s", fileName)
	return fileName, nil
}

// Slugify converts a model identifier into a filesystem-safe slug,
// including replacing colons (:) with underscores (_).
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, ":", "_")
	re := regexp.MustCompile(`[^a-z0-9_]+`)
	s = re.ReplaceAllString(s, "-")
	s = regexp.MustCompile(`-+`).ReplaceAllString(s, "-")
	s = strings.Trim(s, "-_")

	return s
}
