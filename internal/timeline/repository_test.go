package timeline

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// setupRepositoryTestDB creates an in-memory SQLite database with the timeline_events table.
func setupRepositoryTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	schema := `
		CREATE TABLE timeline_events (
			run_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			entity_id TEXT NOT NULL,
			occurred_at_ns INTEGER NOT NULL,
			kind TEXT NOT NULL,
			payload TEXT NOT NULL DEFAULT '',
			destination TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (run_id, position)
		) STRICT;
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func TestSQLiteRepositorySaveLoad(t *testing.T) {
	repo := NewSQLiteRepository(setupRepositoryTestDB(t))
	ctx := context.Background()

	events := []Event{
		{EntityID: "Movable_object_0_move_no._0", Time: at(1000), Action: Move("RwnD0")},
		{EntityID: "Message_of_2_Sensor_RwnD0_no._0_of_type_SensorType_1", Time: at(1250), Action: Message("Uplink_Message_occupancy:true,")},
	}
	if err := repo.Save(ctx, "run-1", events); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := repo.Load(ctx, "run-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != len(events) {
		t.Fatalf("len = %d, want %d", len(got), len(events))
	}
	for i := range events {
		if got[i].EntityID != events[i].EntityID {
			t.Errorf("event %d id = %q, want %q", i, got[i].EntityID, events[i].EntityID)
		}
		if !got[i].Time.Equal(events[i].Time) {
			t.Errorf("event %d time = %v, want %v", i, got[i].Time, events[i].Time)
		}
		if got[i].Action != events[i].Action {
			t.Errorf("event %d action = %+v, want %+v", i, got[i].Action, events[i].Action)
		}
	}
}

func TestSQLiteRepositorySaveReplaces(t *testing.T) {
	repo := NewSQLiteRepository(setupRepositoryTestDB(t))
	ctx := context.Background()

	first := []Event{
		{EntityID: "a", Time: at(0), Action: Message("x:On")},
		{EntityID: "a", Time: at(10), Action: Message("x:Off")},
	}
	if err := repo.Save(ctx, "run-1", first); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := repo.Save(ctx, "run-1", first[:1]); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := repo.Load(ctx, "run-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("len = %d, want 1", len(got))
	}
}

func TestSQLiteRepositoryLoadMissing(t *testing.T) {
	repo := NewSQLiteRepository(setupRepositoryTestDB(t))

	_, err := repo.Load(context.Background(), "nope")
	if !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Load() error = %v, want ErrRunNotFound", err)
	}
}

func TestSQLiteRepositorySaveRequiresRunID(t *testing.T) {
	repo := NewSQLiteRepository(setupRepositoryTestDB(t))

	events := []Event{{EntityID: "a", Time: at(0), Action: Message("x:On")}}
	if err := repo.Save(context.Background(), "", events); !errors.Is(err, ErrInvalidRunID) {
		t.Errorf("Save() error = %v, want ErrInvalidRunID", err)
	}
}
