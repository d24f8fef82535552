// Package rules derives light commands from occupancy messages.
//
// Every node with both occupancy and light sensors gets a rule set:
//
//   - any occupancy sensor reports true: all lights On
//   - sub-room, occupancy false: lights Off
//   - room, occupancy false inside the dim window: lights Dim
//   - room, occupancy false outside the dim window: lights Off
//
// Rules are built once from the building (NewEngine) and evaluated over a
// timeline snapshot (Evaluate). Evaluate is pure: it returns the downlink
// messages to append and leaves the input untouched.
package rules
