// internal/stats/stats.go

// Package stats provides the numeric building blocks used by the evaluation
// engine: descriptive statistics, confidence intervals, coefficient of
// variation, outlier detection, and effect sizes. All functions are pure and
// operate on plain float64 slices.
package stats

import (
	"math"
	"sort"
)

// ConfidenceInterval holds the bounds of a 95% confidence interval around a
// sample mean.
type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Width returns the full width of the interval.
func (ci ConfidenceInterval) Width() float64 {
	return ci.Upper - ci.Lower
}

// tCritical95 maps degrees of freedom to the two-tailed 95% critical value of
// the t-distribution. Samples larger than the table fall back to the normal
// approximation.
var tCritical95 = map[int]float64{
	1: 12.706, 2: 4.303, 3: 3.182, 4: 2.776, 5: 2.571,
	6: 2.447, 7: 2.365, 8: 2.306, 9: 2.262, 10: 2.228,
	11: 2.201, 12: 2.179, 13: 2.160, 14: 2.145, 15: 2.131,
	16: 2.120, 17: 2.110, 18: 2.101, 19: 2.093, 20: 2.086,
	21: 2.080, 22: 2.074, 23: 2.069, 24: 2.064, 25: 2.060,
	26: 2.056, 27: 2.052, 28: 2.048, 29: 2.045, 30: 2.042,
}

// zCritical95 is the normal-approximation critical value used for large samples.
const zCritical95 = 1.96

// Mean returns the arithmetic mean of the series, or 0 for an empty series.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Variance returns the sample variance (n-1 denominator) of the series.
// Series shorter than two elements have zero variance.
func Variance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(values)-1)
}

// StdDev returns the sample standard deviation of the series.
func StdDev(values []float64) float64 {
	return math.Sqrt(Variance(values))
}

// Min returns the smallest value in the series, or 0 for an empty series.
func Min(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	min := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// Max returns the largest value in the series, or 0 for an empty series.
func Max(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// ConfidenceInterval95 returns the 95% confidence interval of the sample
// mean. Small samples use the t-distribution critical value for the sample's
// degrees of freedom; samples beyond the table use z=1.96. A series with
// fewer than two elements yields a zero-width interval at the mean.
func ConfidenceInterval95(values []float64) ConfidenceInterval {
	mean := Mean(values)
	n := len(values)
	if n < 2 {
		return ConfidenceInterval{Lower: mean, Upper: mean}
	}

	critical, ok := tCritical95[n-1]
	if !ok {
		critical = zCritical95
	}

	margin := critical * StdDev(values) / math.Sqrt(float64(n))
	return ConfidenceInterval{Lower: mean - margin, Upper: mean + margin}
}

// CoefficientOfVariation returns stddev / |mean| for the series. Empty and
// constant series report 0; a zero mean with nonzero spread reports 0 as well
// since the ratio is undefined there.
func CoefficientOfVariation(values []float64) float64 {
	mean := Mean(values)
	if len(values) == 0 || mean == 0 {
		return 0
	}
	return StdDev(values) / math.Abs(mean)
}

// Percentile returns the percentile rank (0-100) of value within the series:
// the share of elements strictly below it plus half the ties.
func Percentile(values []float64, value float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var below, equal float64
	for _, v := range values {
		switch {
		case v < value:
			below++
		case v == value:
			equal++
		}
	}
	return (below + equal/2) / float64(len(values)) * 100
}

// Quartiles returns the first and third quartiles of the series using linear
// interpolation between closest ranks.
func Quartiles(values []float64) (q1, q3 float64) {
	if len(values) == 0 {
		return 0, 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return interpolate(sorted, 0.25), interpolate(sorted, 0.75)
}

func interpolate(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Outliers returns the indices of values lying beyond 1.5 IQR from the
// quartiles of the series.
func Outliers(values []float64) []int {
	if len(values) < 4 {
		return nil
	}
	q1, q3 := Quartiles(values)
	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr

	var outliers []int
	for i, v := range values {
		if v < lower || v > upper {
			outliers = append(outliers, i)
		}
	}
	return outliers
}

// EffectSize returns the standardized mean difference (Cohen's d) between two
// series, using the pooled standard deviation. Returns 0 when either series
// is empty or the pooled deviation is zero.
func EffectSize(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	na, nb := float64(len(a)), float64(len(b))
	pooledVar := ((na-1)*Variance(a) + (nb-1)*Variance(b)) / (na + nb - 2)
	if pooledVar <= 0 {
		return 0
	}
	return (Mean(a) - Mean(b)) / math.Sqrt(pooledVar)
}

// TrendSlope returns the least-squares slope of the series over the index
// sequence 0..n-1. Series shorter than two elements have zero slope.
func TrendSlope(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	meanX := float64(n-1) / 2
	meanY := Mean(values)
	var num, den float64
	for i, v := range values {
		dx := float64(i) - meanX
		num += dx * (v - meanY)
		den += dx * dx
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// DetectionConfidence estimates how trustworthy a detection rate is, scaling
// the observed proportion by a sample-size penalty: p * (1 - 1/sqrt(n)),
// capped at 0.99. Zero iterations yield zero confidence.
func DetectionConfidence(detections, iterations int) float64 {
	if iterations <= 0 {
		return 0
	}
	proportion := float64(detections) / float64(iterations)
	confidence := proportion * (1 - 1/math.Sqrt(float64(iterations)))
	return math.Min(confidence, 0.99)
}

// Round1 rounds a value to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Round2 rounds a value to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
