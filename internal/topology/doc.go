// Package topology models the simulated building as an arena-indexed graph.
//
// Nodes are rooms, sub-rooms and staircases; edges are doors or open
// passages. Nodes and edges live in slices and are addressed by NodeIndex
// and EdgeIndex, so the graph has no pointers between elements and a
// closed set of node and edge kinds instead of polymorphic payloads.
//
// Identifiers follow the simulator's naming:
//
//	RwD<n>                      room with doors
//	RwnD<n>                     room without doors
//	<parent>_RwD<n>_sub         sub-room attached to parent
//	S<n>                        staircase
//	Door<n>, NoDoor<n>          edges; "_sub" suffix when attaching a sub-room
//
// Each room carries sensors created from a list of (count, type) specs. A
// sensor's key is built once here and rendered to the
// Sensor_<node>_no._<i>_of_type_<type> string form when needed. Sensor numbers are
// unique across the building and assigned in creation order starting at 0.
//
// Building satisfies the sensor-list source used by the occupancy
// synthesizer and the lighting rules.
package topology
