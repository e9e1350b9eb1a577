// internal/aggregator/aggregator_test.go
package aggregator

import (
	"strings"
	"testing"

	"github.com/mwiater/biasprobe/internal/runner"
	"github.com/mwiater/biasprobe/internal/testcases"
)

func caseRun(id string, bias testcases.BiasType, scores ...float64) runner.CaseRun {
	run := runner.CaseRun{TestCase: testcases.TestCase{ID: id, Bias: bias}}
	for i, score := range scores {
		run.Results = append(run.Results, runner.TestResult{
			TestCaseID:   id,
			Bias:         bias,
			Iteration:    i + 1,
			OverallScore: score,
			DimensionScores: map[string]float64{
				"framing": score,
			},
		})
		run.Snapshots = append(run.Snapshots, runner.IterationStatsSnapshot{Iteration: i + 1})
	}
	return run
}

func TestAggregateRejectsEmptyResults(t *testing.T) {
	if _, err := Aggregate(runner.CaseRun{TestCase: testcases.TestCase{ID: "tc-empty"}}); err == nil {
		t.Fatal("expected error for zero results")
	}
}

func TestAggregateSingleResult(t *testing.T) {
	agg, err := Aggregate(caseRun("tc-one", testcases.BiasAnchoring, 3.5))
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if agg.Iterations != 1 {
		t.Fatalf("iterations = %d, want 1", agg.Iterations)
	}
	if agg.MinScore != agg.MaxScore || agg.MinScore != agg.MeanScore || agg.MeanScore != 3.5 {
		t.Fatalf("min/mean/max = %v/%v/%v, want all 3.5", agg.MinScore, agg.MeanScore, agg.MaxScore)
	}
}

func TestAggregateIterationsMatchesRawResults(t *testing.T) {
	agg, err := Aggregate(caseRun("tc-inv", testcases.BiasSunkCost, 1, 2, 3, 4))
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if agg.Iterations != len(agg.RawResults) {
		t.Fatalf("iterations %d != rawResults %d", agg.Iterations, len(agg.RawResults))
	}
}

func TestAggregateDimensionAggregates(t *testing.T) {
	agg, err := Aggregate(caseRun("tc-dim", testcases.BiasConfirmation, 2, 4))
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	dim, ok := agg.DimensionAggregates["framing"]
	if !ok {
		t.Fatal("missing framing aggregate")
	}
	if dim.Mean != 3 || dim.Min != 2 || dim.Max != 4 {
		t.Fatalf("framing aggregate = %+v", dim)
	}
}

func TestSeverityBands(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0, SeverityMinimal},
		{0.99, SeverityMinimal},
		{1, SeverityLow},
		{2.5, SeverityModerate},
		{3.9, SeverityHigh},
		{4, SeveritySevere},
		{7.2, SeveritySevere},
	}
	for _, tt := range tests {
		if got := SeverityBand(tt.score); got != tt.want {
			t.Errorf("SeverityBand(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestConsistencyLabels(t *testing.T) {
	constant, _ := Aggregate(caseRun("tc-const", testcases.BiasAnchoring, 3, 3, 3, 3, 3))
	if constant.Consistency != ConsistencyHigh {
		t.Fatalf("constant series consistency = %s, want high", constant.Consistency)
	}
	if constant.CV != 0 {
		t.Fatalf("constant series CV = %v, want 0", constant.CV)
	}

	scattered, _ := Aggregate(caseRun("tc-scatter", testcases.BiasAnchoring, 0.5, 5, 0.5, 5, 0.5))
	if scattered.Consistency != ConsistencyLow {
		t.Fatalf("scattered series consistency = %s, want low", scattered.Consistency)
	}
}

func TestDetectTrend(t *testing.T) {
	if got := DetectTrend([]float64{1, 2, 3, 4, 5}); got != TrendIncreasing {
		t.Fatalf("rising series trend = %s", got)
	}
	if got := DetectTrend([]float64{5, 4, 3, 2, 1}); got != TrendDecreasing {
		t.Fatalf("falling series trend = %s", got)
	}
	// Slope inside the ±0.1 dead zone reads as stable.
	if got := DetectTrend([]float64{3, 3.05, 3, 3.1, 3}); got != TrendStable {
		t.Fatalf("flat series trend = %s", got)
	}
}

func TestDetectDrift(t *testing.T) {
	var scores []float64
	for i := 0; i < 7; i++ {
		scores = append(scores, 2.0)
	}
	for i := 0; i < 7; i++ {
		scores = append(scores, 3.0)
	}
	drifted, msg := DetectDrift(scores)
	if !drifted {
		t.Fatal("expected 50% shift to register as drift")
	}
	if !strings.Contains(msg, "increasing") {
		t.Fatalf("drift message = %q", msg)
	}

	if drifted, _ := DetectDrift(scores[:10]); drifted {
		t.Fatal("short series must not report drift")
	}

	var flat []float64
	for i := 0; i < 14; i++ {
		flat = append(flat, 2.0)
	}
	if drifted, _ := DetectDrift(flat); drifted {
		t.Fatal("flat series must not report drift")
	}
}

func TestCompare(t *testing.T) {
	biased := []float64{4, 4.5, 4.2, 4.8, 4.1}
	control := []float64{1, 1.2, 0.8, 1.1, 0.9}

	cmp, err := Compare(biased, control, 0.5)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if !cmp.Significant {
		t.Fatalf("large separation not significant: d = %v", cmp.EffectSize)
	}
	if cmp.Direction != "higher" {
		t.Fatalf("direction = %s, want higher", cmp.Direction)
	}

	near := []float64{1.0, 1.1, 0.9, 1.05}
	cmp, err = Compare(near, []float64{1.0, 1.05, 0.95, 1.1}, 0.5)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if cmp.Significant {
		t.Fatalf("overlapping groups reported significant: d = %v", cmp.EffectSize)
	}

	if _, err := Compare(nil, control, 0.5); err == nil {
		t.Fatal("expected error for empty group")
	}
}

func TestInterpretationMentionsSeverityAndConsistency(t *testing.T) {
	agg, _ := Aggregate(caseRun("tc-interp", testcases.BiasAvailability, 3, 3, 3))
	if !strings.Contains(agg.Interpretation, SeverityHigh) ||
		!strings.Contains(agg.Interpretation, ConsistencyHigh) {
		t.Fatalf("interpretation = %q", agg.Interpretation)
	}
}

func TestInterpretationMentionsDrift(t *testing.T) {
	var scores []float64
	for i := 0; i < 7; i++ {
		scores = append(scores, 2.0)
	}
	for i := 0; i < 7; i++ {
		scores = append(scores, 3.0)
	}

	agg, err := Aggregate(caseRun("tc-drift", testcases.BiasAnchoring, scores...))
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if agg.DriftNote == "" {
		t.Fatal("drifting series produced no drift note")
	}
	if !strings.Contains(agg.Interpretation, "over the last 7 iterations") {
		t.Fatalf("interpretation omits the drift: %q", agg.Interpretation)
	}

	stable, _ := Aggregate(caseRun("tc-steady", testcases.BiasAnchoring, 2, 2, 2))
	if stable.DriftNote != "" {
		t.Fatalf("short stable series reported drift: %q", stable.DriftNote)
	}
}
