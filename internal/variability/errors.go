package variability

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid variability inputs")
	ErrInsufficientData = errors.New("not enough arrivals for a variability profile")
)
