package fit

import (
	"math"
	"sort"
)

// kolmogorovSmirnov computes the one-sample K-S statistic of values against
// a fitted CDF, plus the asymptotic p-value. The p-value uses the
// Kolmogorov distribution series with the Stephens small-sample correction;
// it is approximate but more than adequate as supplementary evidence
// alongside the AIC ranking.
func kolmogorovSmirnov(values []float64, cdf func(float64) float64) (statistic, pValue float64) {
	n := len(values)
	if n == 0 {
		return 0, 1
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	fn := float64(n)
	var d float64
	for i, x := range sorted {
		f := cdf(x)
		upper := float64(i+1)/fn - f
		lower := f - float64(i)/fn
		d = math.Max(d, math.Max(upper, lower))
	}

	return d, ksPValue(d, n)
}

// ksPValue evaluates P(D > d) via the Kolmogorov series
// 2 * sum_{k>=1} (-1)^{k-1} exp(-2 k^2 t^2).
func ksPValue(d float64, n int) float64 {
	sqrtN := math.Sqrt(float64(n))
	t := d * (sqrtN + 0.12 + 0.11/sqrtN)
	if t <= 0 {
		return 1
	}

	var sum float64
	sign := 1.0
	for k := 1; k <= 100; k++ {
		term := sign * math.Exp(-2.0*float64(k)*float64(k)*t*t)
		sum += term
		if math.Abs(term) < 1e-12 {
			break
		}
		sign = -sign
	}

	p := 2.0 * sum
	return math.Min(math.Max(p, 0), 1)
}
