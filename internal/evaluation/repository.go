package evaluation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-simeval/internal/timeline"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Run is a stored analysis run with its report.
type Run struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Source     string    `json:"source"`
	ReportPath string    `json:"report_path"`

	EventCount       int `json:"event_count"`
	SynthesizedCount int `json:"synthesized_count"`
	ReplacedCount    int `json:"replaced_count"`
	RuleEventCount   int `json:"rule_event_count"`

	// Report holds the figures. ListRuns leaves the breakdown slices empty;
	// the bucket counts are always loaded.
	Report *Report `json:"report"`
}

// Repository stores analysis runs.
type Repository interface {
	// SaveRun inserts a run and its per-location breakdown.
	SaveRun(ctx context.Context, run *Run) error

	// GetRun returns a run with its full breakdown.
	//
	// Returns:
	//   - *Run: Stored run
	//   - error: ErrRunNotFound if id does not exist
	GetRun(ctx context.Context, id string) (*Run, error)

	// ListRuns returns the most recent runs, newest first, without breakdowns.
	ListRuns(ctx context.Context, limit int) ([]Run, error)
}

// SQLiteRepository implements Repository using the evaluation_runs and
// location_consumption tables.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite run repository.
//
// Parameters:
//   - db: Open SQLite connection used for queries
//
// Returns:
//   - *SQLiteRepository: Repository instance ready for use
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// SaveRun inserts the run row and its breakdown in one transaction.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - run: Run with ID and Report set; CreatedAt defaults to now
//
// Returns:
//   - error: ErrInvalidRun (wrapped) on missing fields, otherwise the
//     underlying database error
func (r *SQLiteRepository) SaveRun(ctx context.Context, run *Run) error {
	if run == nil || run.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidRun)
	}
	if run.Report == nil {
		return fmt.Errorf("%w: run %s has no report", ErrInvalidRun, run.ID)
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	rep := run.Report
	_, err = tx.ExecContext(ctx,
		`INSERT INTO evaluation_runs (
			id, created_at, source, report_path,
			event_count, synthesized_count, replaced_count, rule_event_count,
			span_start_ns, span_end_ns,
			room_mean_wh, sub_room_mean_wh, room_count, sub_room_count,
			baseline_type0_wh, baseline_type1_wh,
			paired_intervals, open_intervals
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UTC().Format(time.RFC3339), run.Source, run.ReportPath,
		run.EventCount, run.SynthesizedCount, run.ReplacedCount, run.RuleEventCount,
		unixNano(rep.SpanStart), unixNano(rep.SpanEnd),
		rep.RoomMean, rep.SubRoomMean, rep.RoomCount, rep.SubRoomCount,
		rep.BaselineType0, rep.BaselineType1,
		rep.PairedIntervals, rep.OpenIntervals,
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	if err := insertBreakdown(ctx, tx, run.ID, timeline.CategoryRoom, rep.Rooms); err != nil {
		return err
	}
	if err := insertBreakdown(ctx, tx, run.ID, timeline.CategorySubRoom, rep.SubRooms); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run: %w", err)
	}
	return nil
}

func insertBreakdown(ctx context.Context, tx *sql.Tx, runID string, category timeline.Category, items []LocationConsumption) error {
	for i, item := range items {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO location_consumption (run_id, category, ordinal, location, wh) VALUES (?, ?, ?, ?, ?)",
			runID, category.String(), i, item.Location, item.Wh,
		); err != nil {
			return fmt.Errorf("inserting %s breakdown: %w", category, err)
		}
	}
	return nil
}

const runColumns = `id, created_at, source, report_path,
	event_count, synthesized_count, replaced_count, rule_event_count,
	span_start_ns, span_end_ns,
	room_mean_wh, sub_room_mean_wh, room_count, sub_room_count,
	baseline_type0_wh, baseline_type1_wh,
	paired_intervals, open_intervals`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run        Run
		rep        Report
		createdAt  string
		start, end int64
	)
	if err := row.Scan(
		&run.ID, &createdAt, &run.Source, &run.ReportPath,
		&run.EventCount, &run.SynthesizedCount, &run.ReplacedCount, &run.RuleEventCount,
		&start, &end,
		&rep.RoomMean, &rep.SubRoomMean, &rep.RoomCount, &rep.SubRoomCount,
		&rep.BaselineType0, &rep.BaselineType1,
		&rep.PairedIntervals, &rep.OpenIntervals,
	); err != nil {
		return nil, err
	}

	ts, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	run.CreatedAt = ts
	rep.SpanStart = fromUnixNano(start)
	rep.SpanEnd = fromUnixNano(end)
	run.Report = &rep
	return &run, nil
}

// GetRun loads a run and its breakdown.
func (r *SQLiteRepository) GetRun(ctx context.Context, id string) (*Run, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM evaluation_runs WHERE id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying run: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT category, location, wh FROM location_consumption
		 WHERE run_id = ?
		 ORDER BY category, ordinal`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("querying breakdown: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			label string
			item  LocationConsumption
		)
		if err := rows.Scan(&label, &item.Location, &item.Wh); err != nil {
			return nil, fmt.Errorf("scanning breakdown: %w", err)
		}
		category, err := timeline.ParseCategory(label)
		if err != nil {
			return nil, fmt.Errorf("scanning breakdown: %w", err)
		}
		if category == timeline.CategorySubRoom {
			run.Report.SubRooms = append(run.Report.SubRooms, item)
		} else {
			run.Report.Rooms = append(run.Report.Rooms, item)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating breakdown: %w", err)
	}

	return run, nil
}

// ListRuns returns recent runs ordered newest first.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - limit: Maximum runs to return (default 50, max 200)
func (r *SQLiteRepository) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+runColumns+" FROM evaluation_runs ORDER BY created_at DESC, rowid DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0, limit)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

func unixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(ns int64) time.Time {
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns).UTC()
}
