package timeline

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Repository persists the final timeline of an analysis run.
type Repository interface {
	// Save stores events for runID in timeline order, replacing any events
	// previously stored for that run.
	Save(ctx context.Context, runID string, events []Event) error

	// Load returns the events of runID in timeline order.
	//
	// Returns:
	//   - []Event: Stored events
	//   - error: ErrRunNotFound if nothing is stored for runID
	Load(ctx context.Context, runID string) ([]Event, error)
}

// SQLiteRepository implements Repository on the timeline_events table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a repository backed by db.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Save writes all events in a single transaction.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - runID: Identifier of the analysis run
//   - events: Events in timeline order; the slice index becomes the position
//
// Returns:
//   - error: ErrInvalidRunID if runID is empty, otherwise the underlying
//     database error
func (r *SQLiteRepository) Save(ctx context.Context, runID string, events []Event) error {
	if runID == "" {
		return ErrInvalidRunID
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM timeline_events WHERE run_id = ?", runID); err != nil {
		return fmt.Errorf("clearing timeline events: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO timeline_events (run_id, position, entity_id, occurred_at_ns, kind, payload, destination)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for pos, ev := range events {
		if _, err := stmt.ExecContext(ctx,
			runID,
			pos,
			ev.EntityID,
			ev.Time.UnixNano(),
			string(ev.Action.Kind),
			ev.Action.Payload,
			ev.Action.Destination,
		); err != nil {
			return fmt.Errorf("inserting event %d: %w", pos, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing timeline events: %w", err)
	}
	return nil
}

// Load reads the events of a run ordered by position.
func (r *SQLiteRepository) Load(ctx context.Context, runID string) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT entity_id, occurred_at_ns, kind, payload, destination
		 FROM timeline_events
		 WHERE run_id = ?
		 ORDER BY position`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying timeline events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			ev   Event
			ns   int64
			kind string
		)
		if err := rows.Scan(&ev.EntityID, &ns, &kind, &ev.Action.Payload, &ev.Action.Destination); err != nil {
			return nil, fmt.Errorf("scanning timeline event: %w", err)
		}
		ev.Time = time.Unix(0, ns).UTC()
		ev.Action.Kind = ActionKind(kind)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating timeline events: %w", err)
	}

	if len(events) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return events, nil
}
