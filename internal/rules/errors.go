package rules

import "errors"

// Domain errors for the rules package.
var (
	// ErrInvalidClock is returned when a time of day cannot be parsed.
	ErrInvalidClock = errors.New("rules: invalid time of day")
)
