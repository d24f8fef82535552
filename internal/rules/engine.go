package rules

import (
	"time"

	"github.com/nerrad567/gray-logic-simeval/internal/evaluation"
	"github.com/nerrad567/gray-logic-simeval/internal/timeline"
	"github.com/nerrad567/gray-logic-simeval/internal/topology"
)

// LightPayloadPrefix starts every downlink light command.
const LightPayloadPrefix = "Downlink_Message_light:"

// Occupancy payload tokens.
const (
	occupiedToken = "true"
	vacantToken   = "false"
)

// Topology exposes the nodes the engine builds rules for.
type Topology interface {
	NodeCount() int
	Node(idx topology.NodeIndex) topology.Node
}

// Logger is the logging interface used by the engine.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}

// Rule fires when an occupancy sensor at Location reports Occupied and the
// event time falls inside Window (nil matches any time).
type Rule struct {
	Name     string
	Location string
	Occupied bool
	Window   *Window
	State    evaluation.State
	Lights   []topology.Sensor
}

// Config controls rule construction.
type Config struct {
	// Dim is the window in which vacated rooms are dimmed instead of
	// switched off.
	Dim Window

	// Location is the timezone the window is evaluated in. Nil means UTC.
	Location *time.Location
}

// DefaultConfig dims vacated rooms between 06:30:00 and 17:59:59 UTC.
func DefaultConfig() Config {
	return Config{
		Dim:      Window{Start: 6*3600 + 30*60, End: 17*3600 + 59*60 + 59},
		Location: time.UTC,
	}
}

// Engine evaluates lighting rules.
type Engine struct {
	rules     map[string][]Rule
	ruleCount int
	location  *time.Location
	logger    Logger
}

// NewEngine builds the rule set for every node in topo that carries both
// occupancy and light sensors.
func NewEngine(topo Topology, cfg Config) *Engine {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	e := &Engine{
		rules:    make(map[string][]Rule),
		location: loc,
		logger:   noopLogger{},
	}

	off, hasOff := cfg.Dim.Complement()
	for i := 0; i < topo.NodeCount(); i++ {
		node := topo.Node(topology.NodeIndex(i))

		var lights []topology.Sensor
		hasOccupancy := false
		for _, s := range node.Sensors {
			switch s.Key.Type {
			case timeline.OccupancyType:
				hasOccupancy = true
			case timeline.LightType:
				lights = append(lights, s)
			}
		}
		if !hasOccupancy || len(lights) == 0 {
			continue
		}

		set := []Rule{{
			Name:     "lights_on_when_arriving_" + node.ID,
			Location: node.ID,
			Occupied: true,
			State:    evaluation.StateOn,
			Lights:   lights,
		}}
		if node.Kind == topology.KindSubRoom {
			set = append(set, Rule{
				Name:     "lights_off_when_leaving_" + node.ID,
				Location: node.ID,
				State:    evaluation.StateOff,
				Lights:   lights,
			})
		} else {
			dim := cfg.Dim
			set = append(set, Rule{
				Name:     "lights_dim_when_leaving_" + node.ID,
				Location: node.ID,
				Window:   &dim,
				State:    evaluation.StateDim,
				Lights:   lights,
			})
			// A dim window spanning the whole day leaves no time for Off.
			if hasOff {
				set = append(set, Rule{
					Name:     "lights_off_when_leaving_" + node.ID,
					Location: node.ID,
					Window:   &off,
					State:    evaluation.StateOff,
					Lights:   lights,
				})
			}
		}
		e.rules[node.ID] = set
		e.ruleCount += len(set)
	}
	return e
}

// SetLogger sets the logger for the engine.
func (e *Engine) SetLogger(logger Logger) {
	if logger != nil {
		e.logger = logger
	}
}

// RuleCount returns the number of rules built.
func (e *Engine) RuleCount() int {
	return e.ruleCount
}

// Rules returns the rules bound to location.
func (e *Engine) Rules(location string) []Rule {
	return e.rules[location]
}

// Evaluate runs the rules over events and returns one light command per
// light sensor for every rule that fires, timestamped at the triggering
// occupancy message. Messages from unknown or ruleless locations and
// payloads other than true/false are ignored.
//
// Returns:
//   - []timeline.Event: Light commands in trigger order
//   - error: timeline.ErrMalformedIdentifier (wrapped) for an occupancy
//     message whose sensor id cannot be parsed
func (e *Engine) Evaluate(events []timeline.Event) ([]timeline.Event, error) {
	var out []timeline.Event
	fired := 0

	for _, ev := range events {
		if !ev.IsMessage() || !timeline.IsOccupancyID(ev.EntityID) {
			continue
		}
		token, ok := timeline.StateToken(ev.Action.Payload)
		if !ok || (token != occupiedToken && token != vacantToken) {
			continue
		}

		location, err := timeline.LocationKey(ev.EntityID)
		if err != nil {
			return nil, err
		}
		set := e.rules[location]
		if len(set) == 0 {
			continue
		}

		occupied := token == occupiedToken
		clock := ClockOf(ev.Time.In(e.location))
		for _, r := range set {
			if r.Occupied != occupied {
				continue
			}
			if r.Window != nil && !r.Window.Contains(clock) {
				continue
			}
			fired++
			payload := LightPayloadPrefix + r.State.String() + ","
			for _, light := range r.Lights {
				out = append(out, timeline.Event{
					EntityID: light.MessageID(),
					Time:     ev.Time,
					Action:   timeline.Message(payload),
				})
			}
		}
	}

	e.logger.Debug("rules evaluated", "fired", fired, "commands", len(out))
	return out, nil
}
