package timeline

import (
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"
)

// Timeline is an ordered, mutable event sequence.
//
// It is the owner of the event log: analysis passes read a Snapshot and
// hand back new events (Append) or position-keyed replacements (Replace).
type Timeline struct {
	mu     sync.RWMutex
	events []Event
}

// New creates a timeline from events, sorting a copy by time. Events with
// equal timestamps keep their input order.
//
// Parameters:
//   - events: Events in any order (the slice is not retained)
//
// Returns:
//   - *Timeline: Timeline sorted ascending by timestamp
func New(events []Event) *Timeline {
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b Event) int {
		return a.Time.Compare(b.Time)
	})
	return &Timeline{events: sorted}
}

// Len returns the number of events.
func (t *Timeline) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.events)
}

// Snapshot returns a copy of the events in timeline order.
func (t *Timeline) Snapshot() []Event {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.events)
}

// At returns the event at position pos.
func (t *Timeline) At(pos int) (Event, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if pos < 0 || pos >= len(t.events) {
		return Event{}, fmt.Errorf("%w: %d (len %d)", ErrPositionOutOfRange, pos, len(t.events))
	}
	return t.events[pos], nil
}

// Append inserts events at their chronological positions. An appended
// event lands after every existing event with the same or earlier time.
func (t *Timeline) Append(events ...Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.insert(events)
}

func (t *Timeline) insert(events []Event) {
	for _, ev := range events {
		idx := sort.Search(len(t.events), func(i int) bool {
			return t.events[i].Time.After(ev.Time)
		})
		t.events = slices.Insert(t.events, idx, ev)
	}
}

// Change rewrites the event at Position.
type Change struct {
	Position int
	Event    Event
}

// Commit applies changes and then inserts added, holding the write lock
// throughout. Every change is passed to check together with the event it
// would overwrite before anything is modified; the first error aborts the
// commit and leaves the timeline untouched.
//
// Parameters:
//   - changes: Positional rewrites
//   - check: Validates a change against the current event; nil accepts all
//   - added: Events inserted chronologically after the rewrites
//
// Returns:
//   - error: ErrPositionOutOfRange (wrapped) or the error returned by check
func (t *Timeline) Commit(changes []Change, check func(current Event, c Change) error, added []Event) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, c := range changes {
		if c.Position < 0 || c.Position >= len(t.events) {
			return fmt.Errorf("%w: %d (len %d)", ErrPositionOutOfRange, c.Position, len(t.events))
		}
		if check != nil {
			if err := check(t.events[c.Position], c); err != nil {
				return err
			}
		}
	}

	for _, c := range changes {
		t.events[c.Position] = c.Event
	}
	t.insert(added)
	return nil
}

// Replace swaps the event at position pos. The timeline is not re-sorted, so
// callers keep the original timestamp when rewriting an event.
//
// Returns:
//   - error: ErrPositionOutOfRange (wrapped) if pos is outside the timeline
func (t *Timeline) Replace(pos int, ev Event) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if pos < 0 || pos >= len(t.events) {
		return fmt.Errorf("%w: %d (len %d)", ErrPositionOutOfRange, pos, len(t.events))
	}
	t.events[pos] = ev
	return nil
}

// Span returns the timestamps of the first and last events.
//
// Returns:
//   - start, end: Timeline bounds
//   - error: ErrEmptyTimeline if there are no events
func (t *Timeline) Span() (start, end time.Time, err error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return SpanOf(t.events)
}

// SpanOf returns the first and last timestamps of an ordered event slice.
func SpanOf(events []Event) (start, end time.Time, err error) {
	if len(events) == 0 {
		return time.Time{}, time.Time{}, ErrEmptyTimeline
	}
	return events[0].Time, events[len(events)-1].Time, nil
}
