package timeline

import "errors"

// Domain errors for the timeline package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, timeline.ErrMalformedIdentifier) {
//	    // reject the input file
//	}
var (
	// ErrMalformedIdentifier is returned when an entity identifier does not
	// follow the sensor or movable-object grammar.
	ErrMalformedIdentifier = errors.New("timeline: malformed identifier")

	// ErrPositionOutOfRange is returned when a replacement targets a position
	// outside the timeline.
	ErrPositionOutOfRange = errors.New("timeline: position out of range")

	// ErrEmptyTimeline is returned when an operation requires at least one event.
	ErrEmptyTimeline = errors.New("timeline: empty")

	// ErrInvalidEvent is returned when an event fails validation on import.
	ErrInvalidEvent = errors.New("timeline: invalid event")

	// ErrInvalidRunID is returned when events are saved without a run id.
	ErrInvalidRunID = errors.New("timeline: run id is required")

	// ErrRunNotFound is returned when no events are stored for a run.
	ErrRunNotFound = errors.New("timeline: run not found")
)
