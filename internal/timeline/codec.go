package timeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// ReadJSON decodes a simulator event list.
//
// The input is a JSON array of events:
//
//	[{"id": "Movable_object_0_move_no._0", "time": "2026-01-05T08:00:01Z",
//	  "action": {"kind": "move", "destination": "RwnD0_RwD3_sub"}}]
//
// Every event is validated; the first invalid event aborts decoding.
func ReadJSON(r io.Reader) ([]Event, error) {
	var events []Event
	if err := json.NewDecoder(r).Decode(&events); err != nil {
		return nil, fmt.Errorf("decoding events: %w", err)
	}
	for i, ev := range events {
		if err := ev.Validate(); err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
	}
	return events, nil
}

// WriteJSON encodes events in the format read by ReadJSON.
func WriteJSON(w io.Writer, events []Event) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(events); err != nil {
		return fmt.Errorf("encoding events: %w", err)
	}
	return nil
}

// LoadFile reads a simulator event list from disk into a sorted Timeline.
//
// Parameters:
//   - path: Path to a JSON event list
//
// Returns:
//   - *Timeline: Loaded timeline
//   - error: If the file cannot be read or decoded, or holds no events
func LoadFile(path string) (*Timeline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening timeline file: %w", err)
	}
	defer f.Close()

	events, err := ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("reading %s: %w", path, ErrEmptyTimeline)
	}
	return New(events), nil
}
