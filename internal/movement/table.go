package movement

import (
	"fmt"
	"slices"
	"time"

	"github.com/nerrad567/gray-logic-simeval/internal/timeline"
)

// Waypoint is one stop on an entity's itinerary.
type Waypoint struct {
	Step     int       `yaml:"step" json:"step"`
	Arrival  time.Time `yaml:"arrival" json:"arrival"`
	Location string    `yaml:"location" json:"location"`
}

type key struct {
	entity int
	step   int
}

// Table indexes waypoints by entity and step.
//
// Table is safe for concurrent reads once built.
type Table struct {
	waypoints map[key]Waypoint
	entities  map[int]int
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		waypoints: make(map[key]Waypoint),
		entities:  make(map[int]int),
	}
}

// Add records a waypoint for entity.
//
// Returns:
//   - error: ErrDuplicateWaypoint (wrapped) if the step is already set
func (t *Table) Add(entity int, wp Waypoint) error {
	k := key{entity: entity, step: wp.Step}
	if _, exists := t.waypoints[k]; exists {
		return fmt.Errorf("%w: entity %d step %d", ErrDuplicateWaypoint, entity, wp.Step)
	}
	t.waypoints[k] = wp
	t.entities[entity]++
	return nil
}

// At returns the waypoint entity reaches at step.
func (t *Table) At(entity, step int) (Waypoint, bool) {
	wp, ok := t.waypoints[key{entity: entity, step: step}]
	return wp, ok
}

// Next returns the waypoint following step, which ends the dwell that step
// began. ok is false at the end of the itinerary.
func (t *Table) Next(entity, step int) (Waypoint, bool) {
	return t.At(entity, step+1)
}

// Itinerary returns the waypoints of entity ordered by step.
func (t *Table) Itinerary(entity int) []Waypoint {
	out := make([]Waypoint, 0, t.entities[entity])
	for k, wp := range t.waypoints {
		if k.entity == entity {
			out = append(out, wp)
		}
	}
	slices.SortFunc(out, func(a, b Waypoint) int { return a.Step - b.Step })
	return out
}

// Entities returns the entity numbers present, ascending.
func (t *Table) Entities() []int {
	out := make([]int, 0, len(t.entities))
	for e := range t.entities {
		out = append(out, e)
	}
	slices.Sort(out)
	return out
}

// Len returns the total number of waypoints.
func (t *Table) Len() int {
	return len(t.waypoints)
}

// FromEvents builds a table from the Move events of a timeline. Each Move
// contributes the waypoint named by its identifier, arriving at the event
// time. Other events are ignored.
//
// Returns:
//   - *Table: Waypoints of every moving entity
//   - error: timeline.ErrMalformedIdentifier or ErrDuplicateWaypoint (wrapped)
func FromEvents(events []timeline.Event) (*Table, error) {
	t := NewTable()
	for _, ev := range events {
		if !ev.IsMove() {
			continue
		}
		ref, err := timeline.ParseMovableRef(ev.EntityID)
		if err != nil {
			return nil, err
		}
		if err := t.Add(ref.Entity, Waypoint{
			Step:     ref.Step,
			Arrival:  ev.Time,
			Location: ev.Action.Destination,
		}); err != nil {
			return nil, err
		}
	}
	return t, nil
}
