package timeline

import (
	"fmt"
	"strings"
	"time"
)

// ActionKind identifies the variant carried by an Action.
type ActionKind string

// Action kinds understood by the analysis passes. Any other kind is opaque
// and skipped.
const (
	ActionMessage ActionKind = "message"
	ActionMove    ActionKind = "move"
	ActionOther   ActionKind = "other"
)

// Action is the tagged payload of an Event.
//
// Payload is set for messages; Destination is the location id a Move
// arrives at.
type Action struct {
	Kind        ActionKind `json:"kind"`
	Payload     string     `json:"payload,omitempty"`
	Destination string     `json:"destination,omitempty"`
}

// Message returns a state-change action with the given payload.
func Message(payload string) Action {
	return Action{Kind: ActionMessage, Payload: payload}
}

// Move returns a movement action arriving at destination.
func Move(destination string) Action {
	return Action{Kind: ActionMove, Destination: destination}
}

// Event is a single immutable entry in the timeline.
type Event struct {
	EntityID string    `json:"id"`
	Time     time.Time `json:"time"`
	Action   Action    `json:"action"`
}

// IsMessage reports whether the event carries a state-change message.
func (e Event) IsMessage() bool {
	return e.Action.Kind == ActionMessage
}

// IsMove reports whether the event is a movement.
func (e Event) IsMove() bool {
	return e.Action.Kind == ActionMove
}

// WithAction returns a copy of the event with its action swapped. Identity
// and timestamp are preserved.
func (e Event) WithAction(a Action) Event {
	e.Action = a
	return e
}

// Validate checks the fields every event must carry.
func (e Event) Validate() error {
	if e.EntityID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidEvent)
	}
	if e.Time.IsZero() {
		return fmt.Errorf("%w: %s has no timestamp", ErrInvalidEvent, e.EntityID)
	}
	if e.Action.Kind == ActionMove && e.Action.Destination == "" {
		return fmt.Errorf("%w: move %s has no destination", ErrInvalidEvent, e.EntityID)
	}
	return nil
}

// StateToken extracts the state carried by a message payload.
//
// The payload grammar is "<prefix>:<state>[,...]": the token is everything
// after the first ':' with all ',' removed. Payloads without ':' are inert
// and report ok=false.
func StateToken(payload string) (token string, ok bool) {
	idx := strings.IndexByte(payload, ':')
	if idx < 0 {
		return "", false
	}
	return strings.ReplaceAll(payload[idx+1:], ",", ""), true
}
