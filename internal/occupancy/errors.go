package occupancy

import "errors"

// Domain errors for the occupancy package.
var (
	// ErrReplacementMismatch is returned by Apply when the event at a
	// replacement's position is not the one the replacement was derived from.
	ErrReplacementMismatch = errors.New("occupancy: replacement target mismatch")
)
