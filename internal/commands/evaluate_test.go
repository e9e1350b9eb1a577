// internal/commands/evaluate_test.go
package biasprobe

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/mwiater/biasprobe/internal/aggregator"
	"github.com/mwiater/biasprobe/internal/appconfig"
	"github.com/mwiater/biasprobe/internal/testcases"
)

func TestSelectCasesFiltersByBiasType(t *testing.T) {
	cfg := &appconfig.Config{BiasTypes: []string{"anchoring"}}
	cases, err := selectCases(cfg)
	if err != nil {
		t.Fatalf("selectCases: %v", err)
	}
	if len(cases) == 0 {
		t.Fatal("expected anchoring cases in the builtin catalog")
	}
	for _, tc := range cases {
		if tc.Bias != testcases.BiasAnchoring {
			t.Fatalf("filter leaked case %s with bias %s", tc.ID, tc.Bias)
		}
	}
}

func TestSelectCasesRejectsUnknownBias(t *testing.T) {
	cfg := &appconfig.Config{BiasTypes: []string{"recency"}}
	if _, err := selectCases(cfg); err == nil {
		t.Fatal("expected error for unknown bias type")
	}
}

func TestRunEvaluateRejectsInvalidConfig(t *testing.T) {
	var out bytes.Buffer
	err := runEvaluate(&out, &appconfig.Config{Provider: "ollama"})
	if err == nil || !strings.Contains(err.Error(), "invalid configuration") {
		t.Fatalf("err = %v", err)
	}
}

func TestRenderReportShowsSummaryAndRecommendations(t *testing.T) {
	report := &aggregator.TestReport{
		ReportID:        "rep-1",
		GeneratedAt:     time.Now(),
		Meta:            aggregator.RunMeta{Provider: "ollama", Model: "llama3"},
		TotalTestCases:  2,
		TotalIterations: 10,
		Summary: map[string]aggregator.BiasSummary{
			string(testcases.BiasAnchoring): {
				Bias: testcases.BiasAnchoring, TestCases: 2, MeanScore: 3.4,
				MaxSeverity: aggregator.SeverityHigh, Consistency: aggregator.ConsistencyMedium,
			},
		},
		Findings: aggregator.OverallFindings{
			MostProblematicBias:  testcases.BiasAnchoring,
			LeastProblematicBias: testcases.BiasAnchoring,
			OverallScore:         3.4,
			Confidence:           0.8,
			Recommendations: []aggregator.Recommendation{
				{Bias: testcases.BiasAnchoring, Priority: 8, Title: "Implement multi-perspective prompting", Summary: "Present multiple starting points"},
			},
		},
		Failures: []aggregator.CaseFailure{
			{TestCaseID: "tc-bad", Bias: testcases.BiasSunkCost, Error: "model not found"},
		},
	}

	var out bytes.Buffer
	renderReport(&out, report)
	rendered := out.String()

	for _, want := range []string{
		"llama3", "anchoring", "Most problematic",
		"Implement multi-perspective prompting", "FAILED tc-bad",
	} {
		if !strings.Contains(rendered, want) {
			t.Errorf("rendered report missing %q:\n%s", want, rendered)
		}
	}
}

func TestListTestCasesPrintsCatalog(t *testing.T) {
	var out bytes.Buffer
	if err := listTestCases(&out, &appconfig.Config{}); err != nil {
		t.Fatalf("listTestCases: %v", err)
	}
	listing := out.String()
	for _, bias := range testcases.AllBiasTypes() {
		if !strings.Contains(listing, string(bias)) {
			t.Errorf("listing missing bias type %s", bias)
		}
	}
}
