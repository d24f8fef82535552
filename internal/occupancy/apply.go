package occupancy

import (
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-simeval/internal/timeline"
)

// Apply commits a change set to tl. Replacements are checked first: each
// position must be in range and still hold an event with the replacement's
// id and timestamp. Only when every check passes are replacements applied,
// followed by the new events in sorted position. The check and the writes
// happen under one timeline write lock, so concurrent readers never observe
// a partial commit.
//
// Returns:
//   - error: timeline.ErrPositionOutOfRange or ErrReplacementMismatch
//     (wrapped); tl is unchanged on error
func Apply(tl *timeline.Timeline, cs *ChangeSet) error {
	if cs == nil || cs.Empty() {
		return nil
	}

	changes := make([]timeline.Change, len(cs.Replacements))
	for i, r := range cs.Replacements {
		changes[i] = timeline.Change{Position: r.Position, Event: r.Event}
	}

	err := tl.Commit(changes, matchesTarget, cs.NewEvents)
	if err != nil {
		return fmt.Errorf("applying change set: %w", err)
	}
	return nil
}

// matchesTarget rejects a replacement whose position no longer holds the
// event it was computed against.
func matchesTarget(current timeline.Event, c timeline.Change) error {
	if current.EntityID != c.Event.EntityID || !current.Time.Equal(c.Event.Time) {
		return fmt.Errorf("%w: position %d holds %q at %s, replacement is %q at %s",
			ErrReplacementMismatch, c.Position,
			current.EntityID, current.Time.Format(time.RFC3339Nano),
			c.Event.EntityID, c.Event.Time.Format(time.RFC3339Nano))
	}
	return nil
}
