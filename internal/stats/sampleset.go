package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// SampleSet is an immutable collection of non-negative duration observations
// (seconds) for a single entity stream, either inter-arrival times or service
// durations. It is constructed once per analysis run and never mutated.
type SampleSet struct {
	values []float64
	mean   float64
	stdDev float64
}

// NewSampleSet copies values into a new SampleSet. Negative values are a
// caller defect and fail fast with ErrNegativeSample.
func NewSampleSet(values []float64) (*SampleSet, error) {
	for i, v := range values {
		if v < 0 || math.IsNaN(v) {
			return nil, fmt.Errorf("%w: value %g at index %d", ErrNegativeSample, v, i)
		}
	}

	owned := make([]float64, len(values))
	copy(owned, values)

	s := &SampleSet{values: owned}
	if len(owned) > 0 {
		s.mean = stat.Mean(owned, nil)
	}
	if len(owned) >= 2 {
		s.stdDev = stat.StdDev(owned, nil) // sample standard deviation (n-1)
	}
	return s, nil
}

// Count returns the number of observations.
func (s *SampleSet) Count() int {
	return len(s.values)
}

// Mean returns the arithmetic mean, or 0 for an empty set.
func (s *SampleSet) Mean() float64 {
	return s.mean
}

// StdDev returns the sample standard deviation, or 0 when fewer than two
// observations are present.
func (s *SampleSet) StdDev() float64 {
	return s.stdDev
}

// CV returns the coefficient of variation (stddev / mean). It requires at
// least two observations and a non-zero mean.
func (s *SampleSet) CV() (float64, error) {
	if len(s.values) < 2 {
		return 0, fmt.Errorf("%w: need at least 2 samples for CV, have %d", ErrInsufficientData, len(s.values))
	}
	if s.mean == 0 {
		return 0, ErrZeroMean
	}
	return s.stdDev / s.mean, nil
}

// Values returns a defensive copy of the observations in their original order.
func (s *SampleSet) Values() []float64 {
	out := make([]float64, len(s.values))
	copy(out, s.values)
	return out
}
