// Package movement holds the itineraries of movable entities.
//
// A Table maps (entity, step) to the waypoint the entity reaches at that
// step: arrival time and location. The occupancy synthesizer uses it to find
// where a dwell window ends. A missing entry is the normal end of an
// itinerary, not an error.
//
// Tables are built from the Move events already in a timeline (FromEvents)
// or from a YAML itinerary file (LoadFile).
package movement
