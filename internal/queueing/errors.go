package queueing

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid queueing inputs")
	ErrLittleLawViolation = errors.New("Little's Law identity violated")
)
