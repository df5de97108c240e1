package analysis

import "errors"

var (
	ErrNoEvents      = errors.New("no events to analyze")
	ErrWritingReport = errors.New("failed to write report")
)
