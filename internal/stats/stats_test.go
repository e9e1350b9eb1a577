// internal/stats/stats_test.go
package stats

import (
	"math"
	"math/rand"
	"testing"
)

func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

func TestMeanAndVariance(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	if got := Mean(values); !almostEqual(got, 5, 1e-9) {
		t.Fatalf("Mean = %v, want 5", got)
	}
	if got := Variance(values); !almostEqual(got, 32.0/7.0, 1e-9) {
		t.Fatalf("Variance = %v, want %v", got, 32.0/7.0)
	}
}

func TestStdDevConstantSeriesIsZero(t *testing.T) {
	values := []float64{3.2, 3.2, 3.2, 3.2}
	if got := StdDev(values); got != 0 {
		t.Fatalf("StdDev of constant series = %v, want 0", got)
	}
}

func TestMeanEmptySeries(t *testing.T) {
	if got := Mean(nil); got != 0 {
		t.Fatalf("Mean(nil) = %v, want 0", got)
	}
}

func TestCoefficientOfVariation(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"constant", []float64{2, 2, 2}, 0},
		{"zero mean", []float64{-1, 1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CoefficientOfVariation(tt.values); got != tt.want {
				t.Fatalf("CoefficientOfVariation(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}

	values := []float64{4, 6}
	want := StdDev(values) / 5
	if got := CoefficientOfVariation(values); !almostEqual(got, want, 1e-9) {
		t.Fatalf("CoefficientOfVariation = %v, want %v", got, want)
	}
}

func TestConfidenceInterval95SmallSample(t *testing.T) {
	values := []float64{10, 12, 14}
	ci := ConfidenceInterval95(values)

	// df=2 -> t=4.303
	margin := 4.303 * StdDev(values) / math.Sqrt(3)
	if !almostEqual(ci.Lower, 12-margin, 1e-9) || !almostEqual(ci.Upper, 12+margin, 1e-9) {
		t.Fatalf("CI = %+v, want mean 12 +/- %v", ci, margin)
	}
}

func TestConfidenceInterval95SingleValue(t *testing.T) {
	ci := ConfidenceInterval95([]float64{7})
	if ci.Lower != 7 || ci.Upper != 7 {
		t.Fatalf("CI of single value = %+v, want zero width at 7", ci)
	}
}

func TestConfidenceIntervalWidthShrinksWithSampleSize(t *testing.T) {
	// Draw i.i.d. samples from one distribution and verify the CI narrows
	// as the sample grows. Checked at coarse checkpoints rather than
	// per-sample since individual draws can jitter the width.
	rng := rand.New(rand.NewSource(42))
	var values []float64
	var widths []float64
	for i := 0; i < 400; i++ {
		values = append(values, 5+rng.NormFloat64())
		if len(values) == 20 || len(values) == 100 || len(values) == 400 {
			widths = append(widths, ConfidenceInterval95(values).Width())
		}
	}
	for i := 1; i < len(widths); i++ {
		if widths[i] >= widths[i-1] {
			t.Fatalf("CI width did not shrink: %v", widths)
		}
	}
}

func TestQuartilesAndOutliers(t *testing.T) {
	values := []float64{1, 2, 2, 3, 3, 3, 4, 100}
	outliers := Outliers(values)
	if len(outliers) != 1 || outliers[0] != 7 {
		t.Fatalf("Outliers = %v, want [7]", outliers)
	}

	if got := Outliers([]float64{1, 2, 3}); got != nil {
		t.Fatalf("Outliers of tiny series = %v, want nil", got)
	}
}

func TestPercentile(t *testing.T) {
	values := []float64{1, 2, 3, 4}
	if got := Percentile(values, 4); !almostEqual(got, 87.5, 1e-9) {
		t.Fatalf("Percentile = %v, want 87.5", got)
	}
	if got := Percentile(nil, 1); got != 0 {
		t.Fatalf("Percentile of empty series = %v, want 0", got)
	}
}

func TestEffectSize(t *testing.T) {
	a := []float64{2, 4, 6}
	b := []float64{2, 4, 6}
	if got := EffectSize(a, b); got != 0 {
		t.Fatalf("EffectSize of identical groups = %v, want 0", got)
	}

	shifted := []float64{4, 6, 8}
	if got := EffectSize(shifted, b); !almostEqual(got, 1, 1e-9) {
		t.Fatalf("EffectSize = %v, want 1", got)
	}

	if got := EffectSize(nil, b); got != 0 {
		t.Fatalf("EffectSize with empty group = %v, want 0", got)
	}
}

func TestTrendSlope(t *testing.T) {
	rising := []float64{1, 2, 3, 4}
	if got := TrendSlope(rising); !almostEqual(got, 1, 1e-9) {
		t.Fatalf("TrendSlope = %v, want 1", got)
	}
	flat := []float64{3, 3, 3}
	if got := TrendSlope(flat); got != 0 {
		t.Fatalf("TrendSlope of flat series = %v, want 0", got)
	}
	if got := TrendSlope([]float64{5}); got != 0 {
		t.Fatalf("TrendSlope of single value = %v, want 0", got)
	}
}

func TestDetectionConfidence(t *testing.T) {
	if got := DetectionConfidence(3, 0); got != 0 {
		t.Fatalf("DetectionConfidence with zero iterations = %v, want 0", got)
	}
	want := 0.5 * (1 - 1/math.Sqrt(16))
	if got := DetectionConfidence(8, 16); !almostEqual(got, want, 1e-9) {
		t.Fatalf("DetectionConfidence = %v, want %v", got, want)
	}
	if got := DetectionConfidence(1000000, 1000000); got > 0.99 {
		t.Fatalf("DetectionConfidence exceeded cap: %v", got)
	}
}
