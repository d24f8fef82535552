// Package timeline models the event log produced by the building simulator.
//
// A timeline is a chronologically ordered sequence of events. Each event
// names an entity (a sensor, an actuator, a moving individual), carries a
// timestamp and an action: a state-change Message, a Move to a new location,
// or an opaque action the analysis passes ignore.
//
// # Identifiers
//
// Entity identifiers follow a fixed grammar owned by the building topology:
//
//	Sensor_<location>_no._<instance>_of_type_<SensorType_x>
//	Message_of_<sensor number>_Sensor_<location>_no._<instance>_of_type_<SensorType_x>
//	Movable_object_<entity>_move_no._<step>
//
// ParseSensorKey and ParseMovableRef turn these strings into structured keys
// once; the rest of the system works with SensorKey and MovableRef values and
// renders strings only at the file, database and broker boundaries.
//
// # Ordering
//
// A Timeline keeps its events sorted ascending by time. Append inserts after
// any events sharing the same timestamp, so relative order among equal
// timestamps is arrival order. Replace swaps an event in place and never
// reorders.
//
// # Thread Safety
//
// Timeline methods are safe for concurrent use. Snapshot returns a copy, so
// analysis passes can scan it without holding any lock.
package timeline
