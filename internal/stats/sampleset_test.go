package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSampleSetRejectsNegativeValues(t *testing.T) {
	_, err := NewSampleSet([]float64{1.0, -0.5, 2.0})
	require.ErrorIs(t, err, ErrNegativeSample)
}

func TestNewSampleSetCopiesInput(t *testing.T) {
	in := []float64{1.0, 2.0, 3.0}
	s, err := NewSampleSet(in)
	require.NoError(t, err)

	in[0] = 99.0
	assert.Equal(t, []float64{1.0, 2.0, 3.0}, s.Values())
}

func TestSampleSetSummaryStatistics(t *testing.T) {
	s, err := NewSampleSet([]float64{2.0, 4.0, 4.0, 4.0, 5.0, 5.0, 7.0, 9.0})
	require.NoError(t, err)

	assert.Equal(t, 8, s.Count())
	assert.InDelta(t, 5.0, s.Mean(), 1e-12)
	// Sample variance of this set is 32/7.
	assert.InDelta(t, math.Sqrt(32.0/7.0), s.StdDev(), 1e-12)

	cv, err := s.CV()
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(32.0/7.0)/5.0, cv, 1e-12)
}

func TestSampleSetCVRequiresTwoSamples(t *testing.T) {
	s, err := NewSampleSet([]float64{3.0})
	require.NoError(t, err)

	_, err = s.CV()
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestSampleSetCVUndefinedForZeroMean(t *testing.T) {
	s, err := NewSampleSet([]float64{0.0, 0.0, 0.0})
	require.NoError(t, err)

	_, err = s.CV()
	assert.ErrorIs(t, err, ErrZeroMean)
}

func TestEmptySampleSet(t *testing.T) {
	s, err := NewSampleSet(nil)
	require.NoError(t, err)

	assert.Equal(t, 0, s.Count())
	assert.Equal(t, 0.0, s.Mean())
	assert.Equal(t, 0.0, s.StdDev())
}
