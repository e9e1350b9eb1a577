// internal/aggregator/report_test.go
package aggregator

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mwiater/biasprobe/internal/runner"
	"github.com/mwiater/biasprobe/internal/testcases"
)

func testGenerator() *Generator {
	return &Generator{
		now:   func() time.Time { return time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC) },
		newID: func() string { return "fixed-report-id" },
	}
}

func sampleRuns() []runner.CaseRun {
	return []runner.CaseRun{
		caseRun("anchor-1", testcases.BiasAnchoring, 4, 4.2, 4.1),
		caseRun("anchor-2", testcases.BiasAnchoring, 3.8, 4, 3.9),
		caseRun("loss-1", testcases.BiasLossAversion, 1, 1.2, 0.8),
	}
}

func TestGenerateReportTotals(t *testing.T) {
	report, err := testGenerator().Generate(RunMeta{Provider: "ollama", Model: "llama3"}, sampleRuns())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if report.ReportID != "fixed-report-id" {
		t.Fatalf("report id = %q", report.ReportID)
	}
	if report.TotalTestCases != 3 || report.TotalIterations != 9 || report.FailedTestCases != 0 {
		t.Fatalf("totals = %d cases, %d iterations, %d failed",
			report.TotalTestCases, report.TotalIterations, report.FailedTestCases)
	}
	if len(report.Results) != 3 {
		t.Fatalf("results = %d, want 3", len(report.Results))
	}
}

func TestGenerateReportSummaryPerBias(t *testing.T) {
	report, err := testGenerator().Generate(RunMeta{}, sampleRuns())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	anchoring, ok := report.Summary[string(testcases.BiasAnchoring)]
	if !ok {
		t.Fatal("missing anchoring summary")
	}
	if anchoring.TestCases != 2 {
		t.Fatalf("anchoring cases = %d, want 2", anchoring.TestCases)
	}
	if anchoring.MaxSeverity != SeveritySevere {
		t.Fatalf("anchoring max severity = %s", anchoring.MaxSeverity)
	}

	loss := report.Summary[string(testcases.BiasLossAversion)]
	if loss.TestCases != 1 {
		t.Fatalf("loss aversion cases = %d, want 1", loss.TestCases)
	}
}

func TestGenerateReportFindings(t *testing.T) {
	report, err := testGenerator().Generate(RunMeta{}, sampleRuns())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if report.Findings.MostProblematicBias != testcases.BiasAnchoring {
		t.Fatalf("most problematic = %s", report.Findings.MostProblematicBias)
	}
	if report.Findings.LeastProblematicBias != testcases.BiasLossAversion {
		t.Fatalf("least problematic = %s", report.Findings.LeastProblematicBias)
	}
	if report.Findings.OverallScore <= 0 {
		t.Fatalf("overall score = %v", report.Findings.OverallScore)
	}
	if len(report.Findings.Recommendations) == 0 {
		t.Fatal("expected recommendations")
	}
}

func TestGenerateReportIsolatesFailures(t *testing.T) {
	runs := sampleRuns()
	runs = append(runs, runner.CaseRun{
		TestCase: testcases.TestCase{ID: "broken", Bias: testcases.BiasSunkCost},
		Err:      errors.New("model not found"),
	})

	report, err := testGenerator().Generate(RunMeta{}, runs)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if report.FailedTestCases != 1 || len(report.Failures) != 1 {
		t.Fatalf("failures = %d/%d", report.FailedTestCases, len(report.Failures))
	}
	if report.Failures[0].TestCaseID != "broken" {
		t.Fatalf("failure id = %s", report.Failures[0].TestCaseID)
	}
	if len(report.Results) != 3 {
		t.Fatalf("failed case leaked into results: %d", len(report.Results))
	}
}

func TestGenerateReportComparesControlScores(t *testing.T) {
	run := caseRun("tc-ctrl", testcases.BiasAnchoring, 4, 4.5, 4.2, 4.8)
	controls := []float64{1, 1.2, 0.8, 1.1}
	for i := range run.Results {
		run.Results[i].ControlScore = &controls[i]
	}

	report, err := testGenerator().Generate(RunMeta{EffectSizeCutoff: 0.5}, []runner.CaseRun{run})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	cmp := report.Results[0].ControlComparison
	if cmp == nil {
		t.Fatal("control scores produced no comparison")
	}
	if !cmp.Significant {
		t.Fatalf("large separation not significant: d = %v", cmp.EffectSize)
	}
	if cmp.Direction != "higher" {
		t.Fatalf("direction = %s, want higher", cmp.Direction)
	}
	if !strings.Contains(RenderSummary(report.Results[0]), "control:") {
		t.Fatal("summary omits the control comparison")
	}

	// Cases without control prompts stay nil.
	plain, err := testGenerator().Generate(RunMeta{}, sampleRuns())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, agg := range plain.Results {
		if agg.ControlComparison != nil {
			t.Fatalf("case %s has a comparison without control scores", agg.TestCaseID)
		}
	}
}

func TestGenerateReportRejectsEmptyRuns(t *testing.T) {
	if _, err := testGenerator().Generate(RunMeta{}, nil); err == nil {
		t.Fatal("expected error for zero runs")
	}
}

func TestBatchPositions(t *testing.T) {
	// Five clustered cases and one extreme one; the extreme case should be
	// flagged and sit at the top percentile.
	runs := []runner.CaseRun{
		caseRun("a", testcases.BiasAnchoring, 1.0),
		caseRun("b", testcases.BiasAnchoring, 1.1),
		caseRun("c", testcases.BiasAnchoring, 0.9),
		caseRun("d", testcases.BiasAnchoring, 1.05),
		caseRun("e", testcases.BiasAnchoring, 0.95),
		caseRun("f", testcases.BiasAnchoring, 6.0),
	}
	report, err := testGenerator().Generate(RunMeta{}, runs)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	var extreme AggregatedResults
	for _, agg := range report.Results {
		if agg.TestCaseID == "f" {
			extreme = agg
		}
	}
	if !extreme.Outlier {
		t.Fatal("extreme case not flagged as outlier")
	}
	if extreme.Percentile < 90 {
		t.Fatalf("extreme case percentile = %v", extreme.Percentile)
	}
}

func TestWriteReportRoundTrip(t *testing.T) {
	report, err := testGenerator().Generate(RunMeta{Provider: "ollama", Model: "llama3:8b"}, sampleRuns())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	dir := t.TempDir()
	path, err := WriteReport(report, dir)
	if err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	if filepath.Base(path) != "llama3_8b-fixed-report-id.json" {
		t.Fatalf("report file name = %s", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var decoded TestReport
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if decoded.ReportID != report.ReportID || decoded.TotalIterations != report.TotalIterations {
		t.Fatalf("round trip mismatch: %+v", decoded)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct{ in, want string }{
		{"llama3:8b", "llama3_8b"},
		{"GPT-4o Mini", "gpt-4o-mini"},
		{"claude--3", "claude-3"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
