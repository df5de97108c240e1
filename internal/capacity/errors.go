package capacity

import "errors"

var (
	ErrInvalidInput = errors.New("invalid capacity planner inputs")
	ErrInfeasible   = errors.New("no server count within the search bound meets the wait target")
)
