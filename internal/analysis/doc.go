// Package analysis runs the post-simulation pipeline over one timeline.
//
// A run executes these stages in order:
//
//	load       timeline JSON (or caller-supplied events)
//	waypoints  itinerary file, or derived from the timeline's Move events
//	synthesize occupancy messages from movements, applied to the timeline
//	rules      lighting commands appended to the timeline
//	aggregate  energy report, written as an Energy_evaluation_*.txt artifact
//	persist    final timeline and run summary in SQLite
//	export     MQTT and InfluxDB, if configured
//
// Persistence, export and metrics are optional collaborators; a Runner with
// only a building and a report directory is a complete offline evaluator.
// An export failure is logged and counted but does not fail the run, since
// the report artifact and the stored run already exist at that point.
package analysis
