package fit

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/queuelens/queuelens/internal/stats"
)

const (
	// minFitSamples guards against unstable parameter estimates from tiny
	// samples.
	minFitSamples = 5

	defaultMaxIterations = 1000
)

// FittedDistribution is one ranked candidate: the fitted variant plus its
// model-selection and goodness-of-fit scores. Lower AIC is better.
type FittedDistribution struct {
	Family        Family             `json:"family"`
	Params        map[string]float64 `json:"params"`
	LogLikelihood float64            `json:"logLikelihood"`
	AIC           float64            `json:"aic"`
	KSStatistic   float64            `json:"ksStatistic"`
	KSPValue      float64            `json:"ksPValue"`

	Dist Distribution `json:"-"`
}

// FitFailure records a family that was omitted from the ranking and why.
// Omission is explicit; a failed fit never silently falls back to a default.
type FitFailure struct {
	Family Family `json:"family"`
	Reason string `json:"reason"`
}

// Report is the outcome of fitting one sample set: candidates ranked
// best-first by AIC, plus any per-family failures.
type Report struct {
	Ranked   []FittedDistribution `json:"ranked"`
	Failures []FitFailure         `json:"failures,omitempty"`
}

// Best returns the lowest-AIC candidate, independent of its K-S p-value.
func (r Report) Best() (FittedDistribution, bool) {
	if len(r.Ranked) == 0 {
		return FittedDistribution{}, false
	}
	return r.Ranked[0], true
}

// Degraded reports whether any family was omitted from the ranking.
func (r Report) Degraded() bool {
	return len(r.Failures) > 0
}

// Fitter fits the four candidate families to a sample set. Fitting is
// deterministic: repeated calls on the same samples yield identical
// parameters and ordering.
type Fitter struct {
	maxIterations int
	logger        *zap.Logger
}

// NewFitter creates a Fitter with the default optimizer iteration cap.
func NewFitter(logger *zap.Logger) *Fitter {
	return &Fitter{
		maxIterations: defaultMaxIterations,
		logger:        logger,
	}
}

// Fit estimates all four families by maximum likelihood and ranks them
// ascending by AIC = 2k - 2 ln(L). Families whose estimation fails are
// omitted from the ranking with a recorded reason; the error return is
// reserved for the cases where no ranking can be produced at all.
func (f *Fitter) Fit(s *stats.SampleSet) (Report, error) {
	values := positiveValues(s.Values())
	if len(values) < minFitSamples {
		return Report{}, fmt.Errorf("%w: need at least %d positive samples, have %d",
			ErrInsufficientData, minFitSamples, len(values))
	}

	var report Report
	for _, family := range families {
		dist, err := f.estimate(family, values)
		if err != nil {
			f.logger.Warn("Distribution family omitted from ranking",
				zap.String("family", string(family)),
				zap.Error(err),
			)
			report.Failures = append(report.Failures, FitFailure{
				Family: family,
				Reason: err.Error(),
			})
			continue
		}

		ll := dist.LogLikelihood(values)
		ksStat, ksP := kolmogorovSmirnov(values, dist.CDF)
		report.Ranked = append(report.Ranked, FittedDistribution{
			Family:        family,
			Params:        dist.Params(),
			LogLikelihood: ll,
			AIC:           2.0*float64(dist.ParamCount()) - 2.0*ll,
			KSStatistic:   ksStat,
			KSPValue:      ksP,
			Dist:          dist,
		})
	}

	if len(report.Ranked) == 0 {
		return report, fmt.Errorf("%w: %d samples, all families failed", ErrAllFitsFailed, len(values))
	}

	// Stable sort keeps the fixed family order as the tie-break.
	sort.SliceStable(report.Ranked, func(i, j int) bool {
		return report.Ranked[i].AIC < report.Ranked[j].AIC
	})
	return report, nil
}

func (f *Fitter) estimate(family Family, values []float64) (Distribution, error) {
	switch family {
	case FamilyExponential:
		return fitExponential(values)
	case FamilyGamma:
		return f.fitGamma(values)
	case FamilyLognormal:
		return fitLognormal(values)
	case FamilyWeibull:
		return f.fitWeibull(values)
	default:
		return nil, fmt.Errorf("unknown distribution family %q", family)
	}
}

// positiveValues drops zero and negative observations; the four families
// all have support on (0, inf), and a zero inter-arrival time means two
// detections in the same frame rather than a usable duration.
func positiveValues(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v > 0 {
			out = append(out, v)
		}
	}
	return out
}
