package occupancy

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/nerrad567/gray-logic-simeval/internal/movement"
	"github.com/nerrad567/gray-logic-simeval/internal/timeline"
	"github.com/nerrad567/gray-logic-simeval/internal/topology"
)

// OccupiedPayload is the payload of a synthesized or rewritten occupancy message.
const OccupiedPayload = "Uplink_Message_occupancy:true,"

// DefaultJitterMax bounds the random offset added to synthesized messages.
const DefaultJitterMax = time.Second

// WaypointSource resolves the waypoint that follows a step of an itinerary.
// A false result marks the end of the itinerary.
type WaypointSource interface {
	Next(entity, step int) (movement.Waypoint, bool)
}

// SensorSource lists the sensors attached to a location.
type SensorSource interface {
	Sensors(location string) []topology.Sensor
}

// Replacement swaps the event at Position for Event. Event keeps the
// identifier and timestamp of the event it replaces.
type Replacement struct {
	Position int
	Event    timeline.Event
}

// ChangeSet is the output of a synthesis pass.
type ChangeSet struct {
	NewEvents    []timeline.Event
	Replacements []Replacement
}

// Empty reports whether the change set would leave a timeline untouched.
func (cs *ChangeSet) Empty() bool {
	return len(cs.NewEvents) == 0 && len(cs.Replacements) == 0
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithJitter sets the function producing the offset added to each
// synthesized message. It must return a value in [0, DefaultJitterMax) or
// whatever bound the caller needs.
func WithJitter(fn func() time.Duration) Option {
	return func(s *Synthesizer) {
		s.jitter = fn
	}
}

// WithRand draws jitter uniformly from [0, maxJitter) using r. A
// non-positive maxJitter disables jitter.
func WithRand(r *rand.Rand, maxJitter time.Duration) Option {
	return func(s *Synthesizer) {
		if maxJitter <= 0 {
			s.jitter = func() time.Duration { return 0 }
			return
		}
		s.jitter = func() time.Duration {
			return time.Duration(r.Int64N(int64(maxJitter)))
		}
	}
}

// Synthesizer derives occupancy messages from Move events.
type Synthesizer struct {
	waypoints WaypointSource
	sensors   SensorSource
	jitter    func() time.Duration
}

// NewSynthesizer creates a synthesizer over the given itinerary and
// topology. Without options jitter is uniform in [0, DefaultJitterMax).
func NewSynthesizer(waypoints WaypointSource, sensors SensorSource, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		waypoints: waypoints,
		sensors:   sensors,
		jitter: func() time.Duration {
			return time.Duration(rand.Int64N(int64(DefaultJitterMax))) //nolint:gosec // simulation jitter
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize scans events once and returns the resulting change set.
//
// For each Move, every occupancy sensor at the destination gets a new
// "occupancy:true" message at the move time plus jitter. When the entity
// has a next waypoint, every later event for the same sensor message id up
// to and including the next arrival time is scheduled for rewrite to
// "occupancy:true" at its own position and timestamp. A position is
// scheduled at most once.
//
// Parameters:
//   - events: Timeline snapshot sorted ascending by time
//
// Returns:
//   - *ChangeSet: New events and replacements, never nil on success
//   - error: timeline.ErrMalformedIdentifier (wrapped) for a bad Move id
func (s *Synthesizer) Synthesize(events []timeline.Event) (*ChangeSet, error) {
	cs := &ChangeSet{}
	scheduled := make(map[int]struct{})

	for i, ev := range events {
		if !ev.IsMove() {
			continue
		}

		ref, err := timeline.ParseMovableRef(ev.EntityID)
		if err != nil {
			return nil, fmt.Errorf("synthesizing position %d: %w", i, err)
		}
		next, hasNext := s.waypoints.Next(ref.Entity, ref.Step)

		for _, sensor := range s.sensors.Sensors(ev.Action.Destination) {
			if !sensor.Key.IsOccupancy() {
				continue
			}

			id := sensor.MessageID()
			cs.NewEvents = append(cs.NewEvents, timeline.Event{
				EntityID: id,
				Time:     ev.Time.Add(s.jitter()),
				Action:   timeline.Message(OccupiedPayload),
			})

			if !hasNext {
				continue
			}

			for j := i + 1; j < len(events) && !events[j].Time.After(next.Arrival); j++ {
				target := events[j]
				if target.EntityID != id || !timeline.IsOccupancyID(target.EntityID) {
					continue
				}
				if _, done := scheduled[j]; done {
					continue
				}
				scheduled[j] = struct{}{}
				cs.Replacements = append(cs.Replacements, Replacement{
					Position: j,
					Event:    target.WithAction(timeline.Message(OccupiedPayload)),
				})
			}
		}
	}

	return cs, nil
}
