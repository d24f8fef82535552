package evaluation

import (
	"fmt"

	"github.com/nerrad567/gray-logic-simeval/internal/timeline"
)

// State is a light state with a tracked power draw.
type State int

// States in profile column order.
const (
	StateOn State = iota
	StateDim
	StateOff
)

// String returns the state token as it appears in payloads.
func (s State) String() string {
	switch s {
	case StateOn:
		return "On"
	case StateDim:
		return "Dim"
	case StateOff:
		return "Off"
	default:
		return "Unknown"
	}
}

// ParseState maps a payload state token to a State. Tokens other than On,
// Dim and Off report ok=false.
func ParseState(token string) (State, bool) {
	switch token {
	case "On":
		return StateOn, true
	case "Dim":
		return StateDim, true
	case "Off":
		return StateOff, true
	default:
		return 0, false
	}
}

// Profile holds the fixed power figures used by Aggregate.
type Profile struct {
	// Baseline is the yearly Wh draw of the two non-lighting device classes
	// (sensor types 0 and 1).
	Baseline [2]float64

	// Draw is the Watt draw indexed by [timeline.Category][State].
	Draw [2][3]float64
}

// DefaultProfile returns the reference profile: sub-room lights draw 45 W
// when on, room lights draw 40 W on and 20 W dimmed.
func DefaultProfile() Profile {
	return Profile{
		Baseline: [2]float64{1.0, 1.0},
		Draw: [2][3]float64{
			{45, 0, 0},
			{40, 20, 0},
		},
	}
}

// ProfileFromSlices builds a Profile from configuration slices.
//
// Only dimensionality is checked; values are taken as given.
//
// Parameters:
//   - baseline: Two Wh/year figures
//   - draw: Two rows (sub-room, room) of three Watt figures (On, Dim, Off)
//
// Returns:
//   - Profile: Populated profile
//   - error: ErrProfileDimensions (wrapped) on a shape mismatch
func ProfileFromSlices(baseline []float64, draw [][]float64) (Profile, error) {
	var p Profile
	if len(baseline) != len(p.Baseline) {
		return Profile{}, fmt.Errorf("%w: baseline has %d entries, want %d", ErrProfileDimensions, len(baseline), len(p.Baseline))
	}
	if len(draw) != len(p.Draw) {
		return Profile{}, fmt.Errorf("%w: draw has %d rows, want %d", ErrProfileDimensions, len(draw), len(p.Draw))
	}
	copy(p.Baseline[:], baseline)
	for i, row := range draw {
		if len(row) != len(p.Draw[i]) {
			return Profile{}, fmt.Errorf("%w: draw row %d has %d entries, want %d", ErrProfileDimensions, i, len(row), len(p.Draw[i]))
		}
		copy(p.Draw[i][:], row)
	}
	return p, nil
}

// Watts returns the draw for a category in the state named by token.
// Unrecognised tokens draw nothing.
func (p Profile) Watts(c timeline.Category, token string) float64 {
	s, ok := ParseState(token)
	if !ok || c < 0 || int(c) >= len(p.Draw) {
		return 0
	}
	return p.Draw[c][s]
}
