package analysis

import "errors"

// Domain errors for the analysis package.
var (
	// ErrInvalidConfig is returned by NewRunner for an unusable configuration.
	ErrInvalidConfig = errors.New("analysis: invalid runner configuration")

	// ErrNoInput is returned when Input names neither events nor a file.
	ErrNoInput = errors.New("analysis: no timeline input")
)
