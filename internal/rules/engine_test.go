package rules

import (
	"errors"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-simeval/internal/timeline"
	"github.com/nerrad567/gray-logic-simeval/internal/topology"
)

const (
	roomLight     = "Message_of_0_Sensor_RwnD0_no._0_of_type_SensorType_0"
	roomPresence  = "Message_of_1_Sensor_RwnD0_no._0_of_type_SensorType_1"
	subLight      = "Message_of_3_Sensor_RwnD0_RwD0_sub_no._0_of_type_SensorType_0"
	subPresence   = "Message_of_5_Sensor_RwnD0_RwD0_sub_no._1_of_type_SensorType_1"
	occupied      = "Uplink_Message_occupancy:true,"
	vacant        = "Uplink_Message_occupancy:false,"
	lightOn       = "Downlink_Message_light:On,"
	lightDim      = "Downlink_Message_light:Dim,"
	lightOff      = "Downlink_Message_light:Off,"
	staircaseOnly = "Message_of_9_Sensor_S0_no._0_of_type_SensorType_1"
)

func testBuilding(t *testing.T) *topology.Building {
	t.Helper()
	specs := []topology.SensorSpec{
		{Count: 1, Type: timeline.LightType},
		{Count: 2, Type: timeline.OccupancyType},
	}
	b := topology.NewBuilding()
	if _, err := b.AddRoom(0, false, false, specs); err != nil {
		t.Fatalf("AddRoom() error = %v", err)
	}
	if _, err := b.AddSubRooms("RwnD0", 1, true, true, specs); err != nil {
		t.Fatalf("AddSubRooms() error = %v", err)
	}
	if _, err := b.AddStaircase(0); err != nil {
		t.Fatalf("AddStaircase() error = %v", err)
	}
	return b
}

func at(hour, minute, second int) time.Time {
	return time.Date(2026, 1, 5, hour, minute, second, 0, time.UTC)
}

func msg(id string, ts time.Time, payload string) timeline.Event {
	return timeline.Event{EntityID: id, Time: ts, Action: timeline.Message(payload)}
}

func TestNewEngineRuleCount(t *testing.T) {
	e := NewEngine(testBuilding(t), DefaultConfig())

	if e.RuleCount() != 5 {
		t.Errorf("RuleCount() = %d, want 5", e.RuleCount())
	}
	if got := len(e.Rules("RwnD0")); got != 3 {
		t.Errorf("room rules = %d, want 3", got)
	}
	if got := len(e.Rules("RwnD0_RwD0_sub")); got != 2 {
		t.Errorf("sub-room rules = %d, want 2", got)
	}
	if got := len(e.Rules("S0")); got != 0 {
		t.Errorf("staircase rules = %d, want 0", got)
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name    string
		event   timeline.Event
		wantID  string
		wantMsg string
	}{
		{"room occupied", msg(roomPresence, at(12, 0, 0), occupied), roomLight, lightOn},
		{"room vacated by day", msg(roomPresence, at(12, 0, 0), vacant), roomLight, lightDim},
		{"room vacated at dim start", msg(roomPresence, at(6, 30, 0), vacant), roomLight, lightDim},
		{"room vacated before dim start", msg(roomPresence, at(6, 29, 59), vacant), roomLight, lightOff},
		{"room vacated at night", msg(roomPresence, at(18, 0, 0), vacant), roomLight, lightOff},
		{"sub-room occupied", msg(subPresence, at(20, 0, 0), occupied), subLight, lightOn},
		{"sub-room vacated by day", msg(subPresence, at(12, 0, 0), vacant), subLight, lightOff},
	}

	e := NewEngine(testBuilding(t), DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Evaluate([]timeline.Event{tt.event})
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if len(got) != 1 {
				t.Fatalf("len = %d, want 1: %+v", len(got), got)
			}
			if got[0].EntityID != tt.wantID {
				t.Errorf("EntityID = %q, want %q", got[0].EntityID, tt.wantID)
			}
			if got[0].Action.Payload != tt.wantMsg {
				t.Errorf("Payload = %q, want %q", got[0].Action.Payload, tt.wantMsg)
			}
			if !got[0].Time.Equal(tt.event.Time) {
				t.Errorf("Time = %v, want %v", got[0].Time, tt.event.Time)
			}
		})
	}
}

func TestEvaluateFullDayDim(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dim = Window{Start: 0, End: secondsPerDay - 1}
	e := NewEngine(testBuilding(t), cfg)

	if got := len(e.Rules("RwnD0")); got != 2 {
		t.Errorf("room rules = %d, want 2", got)
	}

	for _, ts := range []time.Time{at(0, 0, 0), at(12, 0, 0), at(23, 59, 59)} {
		got, err := e.Evaluate([]timeline.Event{msg(roomPresence, ts, vacant)})
		if err != nil {
			t.Fatalf("Evaluate() error = %v", err)
		}
		if len(got) != 1 || got[0].Action.Payload != lightDim {
			t.Errorf("Evaluate(vacant at %s) = %+v, want one %q", ts.Format("15:04:05"), got, lightDim)
		}
	}
}

func TestEvaluateIgnores(t *testing.T) {
	e := NewEngine(testBuilding(t), DefaultConfig())
	events := []timeline.Event{
		msg(roomLight, at(12, 0, 0), lightOn),
		msg(roomPresence, at(12, 0, 1), "Uplink_Message_occupancy:maybe,"),
		msg(roomPresence, at(12, 0, 2), "no separator"),
		msg(staircaseOnly, at(12, 0, 3), occupied),
		{EntityID: "Movable_object_0_move_no._0", Time: at(12, 0, 4), Action: timeline.Move("RwnD0")},
	}

	got, err := e.Evaluate(events)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Evaluate() = %+v, want none", got)
	}
}

func TestEvaluateMalformed(t *testing.T) {
	e := NewEngine(testBuilding(t), DefaultConfig())
	events := []timeline.Event{msg("Broken_SensorType_1", at(12, 0, 0), occupied)}

	if _, err := e.Evaluate(events); !errors.Is(err, timeline.ErrMalformedIdentifier) {
		t.Errorf("Evaluate() error = %v, want ErrMalformedIdentifier", err)
	}
}

func TestEvaluateTimezone(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	cfg := DefaultConfig()
	cfg.Location = loc
	e := NewEngine(testBuilding(t), cfg)

	// 17:00 UTC is 19:00 local, outside the dim window.
	got, err := e.Evaluate([]timeline.Event{msg(roomPresence, at(17, 0, 0), vacant)})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(got) != 1 || got[0].Action.Payload != lightOff {
		t.Errorf("Evaluate() = %+v, want Off", got)
	}
}
