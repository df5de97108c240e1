// Package variability quantifies how irregular an entity stream's arrival
// and service patterns are: overall and time-windowed coefficients of
// variation, and a decomposition of total wait-time variability into its
// arrival and service contributions.
package variability

import (
	"fmt"
	"math"
)

// Source names the dominant contributor in a variability decomposition.
type Source string

const (
	SourceArrival  Source = "arrival"
	SourceService  Source = "service"
	SourceBalanced Source = "balanced"
)

// dominanceThreshold is the share above which one side is called dominant.
const dominanceThreshold = 0.60

// Decomposition splits the variability term of the VUT formula into the
// share contributed by arrivals and by service. The shares always sum to 1.
type Decomposition struct {
	ArrivalShare float64 `json:"arrivalShare"`
	ServiceShare float64 `json:"serviceShare"`
	Dominant     Source  `json:"dominant"`
}

// Decompose computes CV_a^2/(CV_a^2+CV_s^2) and CV_s^2/(CV_a^2+CV_s^2).
// Both CVs must be positive so the shares are well defined.
func Decompose(cvArrival, cvService float64) (Decomposition, error) {
	if cvArrival <= 0 || math.IsNaN(cvArrival) {
		return Decomposition{}, fmt.Errorf("%w: arrival CV must be positive, got %g", ErrInvalidInput, cvArrival)
	}
	if cvService <= 0 || math.IsNaN(cvService) {
		return Decomposition{}, fmt.Errorf("%w: service CV must be positive, got %g", ErrInvalidInput, cvService)
	}

	total := cvArrival*cvArrival + cvService*cvService
	d := Decomposition{
		ArrivalShare: cvArrival * cvArrival / total,
		ServiceShare: cvService * cvService / total,
	}

	switch {
	case d.ArrivalShare > dominanceThreshold:
		d.Dominant = SourceArrival
	case d.ServiceShare > dominanceThreshold:
		d.Dominant = SourceService
	default:
		d.Dominant = SourceBalanced
	}
	return d, nil
}

// Class is a coarse variability classification of a CV value.
type Class string

const (
	ClassLow    Class = "low"    // regular arrivals, CV < 0.75
	ClassMedium Class = "medium" // random arrivals, 0.75 <= CV < 1.25
	ClassHigh   Class = "high"   // bursty arrivals, CV >= 1.25
)

// Classify maps a coefficient of variation onto the low/medium/high bands
// used throughout the reports.
func Classify(cv float64) Class {
	switch {
	case cv < 0.75:
		return ClassLow
	case cv < 1.25:
		return ClassMedium
	default:
		return ClassHigh
	}
}
