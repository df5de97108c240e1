package fit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// fitExponential has a closed-form maximum-likelihood estimate.
func fitExponential(values []float64) (Distribution, error) {
	mean := stat.Mean(values, nil)
	if mean <= 0 {
		return nil, fmt.Errorf("%w: non-positive sample mean", ErrNonConvergence)
	}
	return Exponential{Rate: 1.0 / mean}, nil
}

// fitLognormal has a closed-form MLE on the log-transformed values.
func fitLognormal(values []float64) (Distribution, error) {
	logs := make([]float64, len(values))
	for i, v := range values {
		logs[i] = math.Log(v)
	}
	mu := stat.Mean(logs, nil)

	var ss float64
	for _, l := range logs {
		d := l - mu
		ss += d * d
	}
	sigma := math.Sqrt(ss / float64(len(logs)))
	if sigma <= 0 {
		return nil, fmt.Errorf("%w: degenerate samples, zero log-scale spread", ErrNonConvergence)
	}
	return Lognormal{Mu: mu, Sigma: sigma}, nil
}

// fitGamma maximizes the likelihood numerically, seeded from the
// method-of-moments estimate.
func (f *Fitter) fitGamma(values []float64) (Distribution, error) {
	mean := stat.Mean(values, nil)
	variance := stat.Variance(values, nil)
	if mean <= 0 || variance <= 0 {
		return nil, fmt.Errorf("%w: degenerate samples for gamma moments", ErrNonConvergence)
	}

	// Moment estimates: alpha = mean^2/var, beta = mean/var.
	x0 := []float64{math.Log(mean * mean / variance), math.Log(mean / variance)}

	nll := func(x []float64) float64 {
		d := distuv.Gamma{Alpha: math.Exp(x[0]), Beta: math.Exp(x[1])}
		ll := sumLogProb(d, values)
		if math.IsNaN(ll) {
			return math.Inf(1)
		}
		return -ll
	}

	x, err := f.minimize(nll, x0)
	if err != nil {
		return nil, err
	}
	return Gamma{Shape: math.Exp(x[0]), Rate: math.Exp(x[1])}, nil
}

// fitWeibull maximizes the likelihood numerically. The shape seed uses the
// standard CV^-1.086 approximation, the scale seed matches the sample mean.
func (f *Fitter) fitWeibull(values []float64) (Distribution, error) {
	mean := stat.Mean(values, nil)
	sd := stat.StdDev(values, nil)
	if mean <= 0 || sd <= 0 {
		return nil, fmt.Errorf("%w: degenerate samples for weibull moments", ErrNonConvergence)
	}

	k0 := math.Pow(sd/mean, -1.086)
	k0 = math.Min(math.Max(k0, 0.1), 50)
	scale0 := mean / math.Gamma(1.0+1.0/k0)
	x0 := []float64{math.Log(k0), math.Log(scale0)}

	nll := func(x []float64) float64 {
		d := distuv.Weibull{K: math.Exp(x[0]), Lambda: math.Exp(x[1])}
		ll := sumLogProb(d, values)
		if math.IsNaN(ll) {
			return math.Inf(1)
		}
		return -ll
	}

	x, err := f.minimize(nll, x0)
	if err != nil {
		return nil, err
	}
	return Weibull{Shape: math.Exp(x[0]), Scale: math.Exp(x[1])}, nil
}

// minimize runs a bounded Nelder-Mead search. The iteration cap keeps a
// non-convergent fit from hanging the run; hitting it is reported as
// non-convergence, never silently accepted.
func (f *Fitter) minimize(nll func([]float64) float64, x0 []float64) ([]float64, error) {
	problem := optimize.Problem{Func: nll}
	settings := &optimize.Settings{MajorIterations: f.maxIterations}

	result, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNonConvergence, err)
	}
	if result.Status == optimize.IterationLimit {
		return nil, fmt.Errorf("%w: iteration limit (%d) reached", ErrNonConvergence, f.maxIterations)
	}
	if math.IsNaN(result.F) || math.IsInf(result.F, 0) {
		return nil, fmt.Errorf("%w: non-finite objective at optimum", ErrNonConvergence)
	}
	for _, xi := range result.X {
		if math.IsNaN(xi) || math.IsInf(xi, 0) {
			return nil, fmt.Errorf("%w: non-finite parameter estimate", ErrNonConvergence)
		}
	}
	return result.X, nil
}
