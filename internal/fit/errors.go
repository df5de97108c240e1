package fit

import "errors"

var (
	ErrInsufficientData = errors.New("not enough samples for distribution fitting")
	ErrNonConvergence   = errors.New("optimizer failed to converge")
	ErrAllFitsFailed    = errors.New("no distribution family could be fitted")
)
