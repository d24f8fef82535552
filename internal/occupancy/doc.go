// Package occupancy backfills the presence messages an ideal occupancy
// sensor would have reported while movable entities dwell in a location.
//
// Work is split into two phases. Synthesizer.Synthesize scans an immutable
// event snapshot and returns a ChangeSet: new arrival messages plus
// positional replacements that force already-scheduled occupancy messages
// to "true" inside each dwell window. Apply then commits a ChangeSet to a
// timeline.Timeline in one batch. The scan never observes partial state and
// can be tested without a timeline owner.
//
// A dwell window runs from a Move event to the arrival time of the entity's
// next waypoint. Without a next waypoint the arrival message is still
// synthesized but nothing is rewritten.
package occupancy
