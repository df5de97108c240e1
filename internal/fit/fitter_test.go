package fit

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/queuelens/queuelens/internal/stats"
)

func sampleInto(t *testing.T, n int, draw func() float64) *stats.SampleSet {
	t.Helper()
	values := make([]float64, n)
	for i := range values {
		values[i] = draw()
	}
	s, err := stats.NewSampleSet(values)
	require.NoError(t, err)
	return s
}

func TestFitRecoversExponentialRate(t *testing.T) {
	d := distuv.Exponential{Rate: 0.5, Src: rand.NewPCG(11, 11)}
	s := sampleInto(t, 800, d.Rand)

	report, err := NewFitter(zap.NewNop()).Fit(s)
	require.NoError(t, err)
	require.Len(t, report.Ranked, 4, "all four families should fit clean data")

	var exp FittedDistribution
	found := false
	for _, fd := range report.Ranked {
		if fd.Family == FamilyExponential {
			exp, found = fd, true
		}
	}
	require.True(t, found)

	// Closed-form MLE: rate is exactly 1/mean of the samples.
	assert.InDelta(t, 1.0/s.Mean(), exp.Params["rate"], 1e-12)
	assert.InDelta(t, 0.5, exp.Params["rate"], 0.05)
	assert.Less(t, exp.KSStatistic, 0.1)
	assert.GreaterOrEqual(t, exp.KSPValue, 0.0)
	assert.LessOrEqual(t, exp.KSPValue, 1.0)
}

func TestFitRanksLognormalAboveExponentialForBurstyData(t *testing.T) {
	// Right-skewed inter-arrival times with CV around 1.1: the documented
	// bunched-arrival case where a pure Poisson assumption underfits.
	d := distuv.LogNormal{Mu: 1.0, Sigma: 0.9, Src: rand.NewPCG(23, 23)}
	s := sampleInto(t, 600, d.Rand)

	report, err := NewFitter(zap.NewNop()).Fit(s)
	require.NoError(t, err)

	aic := map[Family]float64{}
	rank := map[Family]int{}
	for i, fd := range report.Ranked {
		aic[fd.Family] = fd.AIC
		rank[fd.Family] = i
	}
	require.Contains(t, aic, FamilyLognormal)
	require.Contains(t, aic, FamilyExponential)

	assert.Less(t, aic[FamilyLognormal], aic[FamilyExponential])
	assert.Less(t, rank[FamilyLognormal], rank[FamilyExponential])
}

func TestFitRecoversGammaShape(t *testing.T) {
	d := distuv.Gamma{Alpha: 4.0, Beta: 2.0, Src: rand.NewPCG(7, 7)}
	s := sampleInto(t, 800, d.Rand)

	report, err := NewFitter(zap.NewNop()).Fit(s)
	require.NoError(t, err)

	var gamma FittedDistribution
	found := false
	for _, fd := range report.Ranked {
		if fd.Family == FamilyGamma {
			gamma, found = fd, true
		}
	}
	require.True(t, found, "gamma fit should converge on clean gamma data")

	assert.InEpsilon(t, 4.0, gamma.Params["shape"], 0.2)
	assert.InEpsilon(t, 2.0, gamma.Params["rate"], 0.2)

	// Low-CV data is far from exponential; the ranking must reflect that.
	var expAIC float64
	for _, fd := range report.Ranked {
		if fd.Family == FamilyExponential {
			expAIC = fd.AIC
		}
	}
	assert.Less(t, gamma.AIC, expAIC)
}

func TestFitIsDeterministic(t *testing.T) {
	d := distuv.Weibull{K: 1.5, Lambda: 3.0, Src: rand.NewPCG(99, 99)}
	s := sampleInto(t, 400, d.Rand)

	fitter := NewFitter(zap.NewNop())
	first, err := fitter.Fit(s)
	require.NoError(t, err)
	second, err := fitter.Fit(s)
	require.NoError(t, err)

	require.Equal(t, len(first.Ranked), len(second.Ranked))
	for i := range first.Ranked {
		assert.Equal(t, first.Ranked[i].Family, second.Ranked[i].Family)
		assert.Equal(t, first.Ranked[i].Params, second.Ranked[i].Params)
		assert.Equal(t, first.Ranked[i].AIC, second.Ranked[i].AIC)
	}
}

func TestFitRankingIsAscendingByAIC(t *testing.T) {
	d := distuv.LogNormal{Mu: 0.5, Sigma: 0.7, Src: rand.NewPCG(31, 31)}
	s := sampleInto(t, 300, d.Rand)

	report, err := NewFitter(zap.NewNop()).Fit(s)
	require.NoError(t, err)

	for i := 1; i < len(report.Ranked); i++ {
		assert.LessOrEqual(t, report.Ranked[i-1].AIC, report.Ranked[i].AIC)
	}

	best, ok := report.Best()
	require.True(t, ok)
	assert.Equal(t, report.Ranked[0].Family, best.Family)
}

func TestFitInsufficientData(t *testing.T) {
	s, err := stats.NewSampleSet([]float64{1.0, 2.0, 3.0, 4.0})
	require.NoError(t, err)

	_, err = NewFitter(zap.NewNop()).Fit(s)
	assert.ErrorIs(t, err, ErrInsufficientData)

	// Zeros are outside the families' support and are filtered before the
	// minimum-count check.
	s, err = stats.NewSampleSet([]float64{0, 0, 0, 0, 0, 0, 1.0, 2.0})
	require.NoError(t, err)

	_, err = NewFitter(zap.NewNop()).Fit(s)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestFitDegenerateSamplesFailExplicitly(t *testing.T) {
	// All-identical samples: exponential still fits, families needing a
	// spread are omitted with recorded reasons, never silently defaulted.
	s, err := stats.NewSampleSet([]float64{2, 2, 2, 2, 2, 2})
	require.NoError(t, err)

	report, err := NewFitter(zap.NewNop()).Fit(s)
	require.NoError(t, err)

	assert.True(t, report.Degraded())
	for _, failure := range report.Failures {
		assert.NotEmpty(t, failure.Reason)
	}

	best, ok := report.Best()
	require.True(t, ok)
	assert.Equal(t, FamilyExponential, best.Family)
}
