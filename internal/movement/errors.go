package movement

import "errors"

// Domain errors for the movement package.
var (
	// ErrDuplicateWaypoint is returned when two waypoints share an entity and step.
	ErrDuplicateWaypoint = errors.New("movement: duplicate waypoint")

	// ErrInvalidItinerary is returned when an itinerary file fails validation.
	ErrInvalidItinerary = errors.New("movement: invalid itinerary")
)
