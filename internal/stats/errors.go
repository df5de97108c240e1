package stats

import "errors"

var (
	ErrNegativeSample   = errors.New("sample values must be non-negative")
	ErrInsufficientData = errors.New("not enough samples")
	ErrZeroMean         = errors.New("coefficient of variation undefined for zero mean")
)
