package evaluation

import "errors"

// Domain errors for the evaluation package.
var (
	// ErrProfileDimensions is returned when a power-draw profile is not a
	// [2] baseline vector plus a [2][3] draw matrix.
	ErrProfileDimensions = errors.New("evaluation: invalid profile dimensions")

	// ErrRunNotFound is returned when a stored run does not exist.
	ErrRunNotFound = errors.New("evaluation: run not found")

	// ErrInvalidRun is returned when a run fails validation before storage.
	ErrInvalidRun = errors.New("evaluation: invalid run")
)
