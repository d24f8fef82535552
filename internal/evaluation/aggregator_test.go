package evaluation

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-simeval/internal/timeline"
)

var t0 = time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)

func at(ms int) time.Time {
	return t0.Add(time.Duration(ms) * time.Millisecond)
}

func msg(id string, ms int, payload string) timeline.Event {
	return timeline.Event{EntityID: id, Time: at(ms), Action: timeline.Message(payload)}
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-12
}

const (
	roomLight    = "Message_of_1_Sensor_R0_no._0_of_type_SensorType_0"
	roomPresence = "Message_of_2_Sensor_R0_no._0_of_type_SensorType_1"
	subLight     = "Message_of_3_Sensor_R0_RwD0_sub_no._0_of_type_SensorType_0"
)

func TestAggregatePairing(t *testing.T) {
	events := []timeline.Event{
		msg(roomLight, 0, "Downlink_Message_light:On,"),
		msg(roomLight, 3000, "Downlink_Message_light:Off,"),
	}

	report, err := Aggregate(events, DefaultProfile())
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	if report.RoomCount != 1 {
		t.Fatalf("RoomCount = %d, want 1", report.RoomCount)
	}
	want := 3.0 * 40 / 3600
	if got := report.Rooms[0].Wh; !approxEqual(got, want) {
		t.Errorf("Rooms[0].Wh = %v, want %v", got, want)
	}
	if report.Rooms[0].Location != "R0" {
		t.Errorf("Rooms[0].Location = %q, want %q", report.Rooms[0].Location, "R0")
	}
	if report.PairedIntervals != 1 || report.OpenIntervals != 1 {
		t.Errorf("paired/open = %d/%d, want 1/1", report.PairedIntervals, report.OpenIntervals)
	}
	if !report.SpanStart.Equal(at(0)) || !report.SpanEnd.Equal(at(3000)) {
		t.Errorf("span = %v..%v", report.SpanStart, report.SpanEnd)
	}
}

func TestAggregatePairsOnRawIdentifier(t *testing.T) {
	// Two lights in the same room share a location bucket but pair
	// independently.
	second := "Message_of_9_Sensor_R0_no._1_of_type_SensorType_0"
	events := []timeline.Event{
		msg(roomLight, 0, "l:On,"),
		msg(second, 1000, "l:Dim,"),
		msg(roomLight, 2000, "l:Off,"),
		msg(second, 5000, "l:Off,"),
	}

	report, err := Aggregate(events, DefaultProfile())
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if report.RoomCount != 1 {
		t.Fatalf("RoomCount = %d, want 1", report.RoomCount)
	}

	wantWs := 2.0*40 + 4.0*20
	if got := report.Rooms[0].Wh; !approxEqual(got, wantWs/3600) {
		t.Errorf("Rooms[0].Wh = %v, want %v", got, wantWs/3600)
	}
	if !approxEqual(report.RoomMean, wantWs/3600) {
		t.Errorf("RoomMean = %v, want %v", report.RoomMean, wantWs/3600)
	}
}

func TestAggregateCategorySeparation(t *testing.T) {
	ids := []string{
		"Sensor_R0_RwD1_sub_no._0_of_type_SensorType_0",
		"Message_of_4_Sensor_subA_no._3_of_type_SensorType_7",
		"Message_of_5_Sensor_X_RwnD2_sub_no._12_of_type_SensorType_0",
	}

	for _, id := range ids {
		t.Run(id, func(t *testing.T) {
			report, err := Aggregate([]timeline.Event{
				msg(id, 0, "x:On"),
				msg(id, 1000, "x:Off"),
			}, DefaultProfile())
			if err != nil {
				t.Fatalf("Aggregate() error = %v", err)
			}
			if report.RoomCount != 0 {
				t.Errorf("RoomCount = %d, want 0", report.RoomCount)
			}
			if report.SubRoomCount != 1 {
				t.Fatalf("SubRoomCount = %d, want 1", report.SubRoomCount)
			}
			if !approxEqual(report.SubRooms[0].Wh, 45.0/3600) {
				t.Errorf("SubRooms[0].Wh = %v, want %v", report.SubRooms[0].Wh, 45.0/3600)
			}
			if report.RoomMean != 0 {
				t.Errorf("RoomMean = %v, want 0", report.RoomMean)
			}
		})
	}
}

func TestAggregateExcludesOccupancySensors(t *testing.T) {
	events := []timeline.Event{
		msg(roomPresence, 0, "Uplink_Message_occupancy:On,"),
		msg(roomPresence, 1000, "Uplink_Message_occupancy:Off,"),
		msg("Garbage_SensorType_1", 1500, "x:On"),
		msg("Garbage_SensorType_1", 2500, "x:On"),
	}

	report, err := Aggregate(events, DefaultProfile())
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if report.DeviceCount() != 0 {
		t.Errorf("DeviceCount() = %d, want 0", report.DeviceCount())
	}
	if report.RoomMean != 0 || report.SubRoomMean != 0 {
		t.Errorf("means = %v/%v, want 0/0", report.RoomMean, report.SubRoomMean)
	}
}

func TestAggregateInertAndUnknownStates(t *testing.T) {
	events := []timeline.Event{
		msg(roomLight, 0, "no separator"),
		msg(roomLight, 1000, "l:Blink,"),
		msg(roomLight, 2000, "l:Off,"),
		{EntityID: "Movable_object_0_move_no._0", Time: at(2500), Action: timeline.Move("R0")},
		{EntityID: "Sensor_R0_no._0_of_type_SensorType_0", Time: at(2600), Action: timeline.Action{Kind: timeline.ActionOther}},
	}

	report, err := Aggregate(events, DefaultProfile())
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	// The unknown state still pairs and creates a zero bucket; the inert
	// message is skipped.
	if report.RoomCount != 1 {
		t.Fatalf("RoomCount = %d, want 1", report.RoomCount)
	}
	if report.Rooms[0].Wh != 0 {
		t.Errorf("Rooms[0].Wh = %v, want 0", report.Rooms[0].Wh)
	}
	if report.PairedIntervals != 1 {
		t.Errorf("PairedIntervals = %d, want 1", report.PairedIntervals)
	}
}

func TestAggregateMalformedIdentifier(t *testing.T) {
	events := []timeline.Event{
		msg("Lamp_R0", 0, "x:On"),
		msg("Lamp_R0", 1000, "x:Off"),
	}

	_, err := Aggregate(events, DefaultProfile())
	if !errors.Is(err, timeline.ErrMalformedIdentifier) {
		t.Errorf("Aggregate() error = %v, want ErrMalformedIdentifier", err)
	}
}

func TestAggregateEmpty(t *testing.T) {
	report, err := Aggregate(nil, DefaultProfile())
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if report.RoomMean != 0 || report.SubRoomMean != 0 {
		t.Errorf("means = %v/%v, want 0/0", report.RoomMean, report.SubRoomMean)
	}
	if math.IsNaN(report.RoomMean) || math.IsNaN(report.SubRoomMean) {
		t.Error("means must not be NaN")
	}
	if report.BaselineType0 != 0 || report.BaselineType1 != 0 {
		t.Errorf("baselines = %v/%v, want 0/0", report.BaselineType0, report.BaselineType1)
	}
}

func TestAggregateBaselinesAndMeans(t *testing.T) {
	profile := Profile{
		Baseline: [2]float64{730, 365},
		Draw:     [2][3]float64{{10, 5, 1}, {40, 20, 2}},
	}
	events := []timeline.Event{
		msg(roomLight, 0, "l:On"),
		msg(subLight, 0, "l:Dim"),
		msg("Sensor_R1_no._0_of_type_SensorType_0", 0, "l:Off"),
		msg(roomLight, 1000, "l:Off"),
		msg(subLight, 2000, "l:Off"),
		msg("Sensor_R1_no._0_of_type_SensorType_0", 3000, "l:On"),
	}

	report, err := Aggregate(events, profile)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	if report.DeviceCount() != 3 {
		t.Fatalf("DeviceCount() = %d, want 3", report.DeviceCount())
	}
	if !approxEqual(report.BaselineType0, 730.0*3/365) {
		t.Errorf("BaselineType0 = %v, want %v", report.BaselineType0, 730.0*3/365)
	}
	if !approxEqual(report.BaselineType1, 365.0*2*3/365) {
		t.Errorf("BaselineType1 = %v, want %v", report.BaselineType1, 365.0*2*3/365)
	}

	// Rooms: R0 = 1s * 40W, R1 = 3s * 2W.
	wantRoomMean := (40.0 + 6.0) / 2 / 3600
	if !approxEqual(report.RoomMean, wantRoomMean) {
		t.Errorf("RoomMean = %v, want %v", report.RoomMean, wantRoomMean)
	}
	// Sub-room: 2s * 5W.
	if !approxEqual(report.SubRoomMean, 10.0/3600) {
		t.Errorf("SubRoomMean = %v, want %v", report.SubRoomMean, 10.0/3600)
	}
	if report.Rooms[0].Location != "R0" || report.Rooms[1].Location != "R1" {
		t.Errorf("room order = %q, %q; want R0, R1", report.Rooms[0].Location, report.Rooms[1].Location)
	}
}

func TestAggregateEndToEndScenario(t *testing.T) {
	// One entity enters R0 at 1000ms and leaves at 5000ms; the light follows
	// the occupancy sensor.
	events := []timeline.Event{
		{EntityID: "Movable_object_0_move_no._0", Time: at(1000), Action: timeline.Move("R0")},
		msg(roomPresence, 1000, "Uplink_Message_occupancy:true,"),
		msg(roomLight, 1000, "Downlink_Message_light:On,"),
		{EntityID: "Movable_object_0_move_no._1", Time: at(5000), Action: timeline.Move("R1")},
		msg(roomPresence, 5000, "Uplink_Message_occupancy:false,"),
		msg(roomLight, 5000, "Downlink_Message_light:Off,"),
	}
	profile := DefaultProfile()
	profile.Draw[timeline.CategoryRoom][StateOn] = 40

	report, err := Aggregate(events, profile)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	want := 40.0 * 4 / 3600
	if report.RoomCount != 1 || !approxEqual(report.Rooms[0].Wh, want) {
		t.Fatalf("Rooms = %+v, want [{R0 %v}]", report.Rooms, want)
	}
	if math.Abs(report.Rooms[0].Wh-0.0444) > 0.0001 {
		t.Errorf("Rooms[0].Wh = %v, want ~0.0444", report.Rooms[0].Wh)
	}
	if !approxEqual(report.RoomMean, want) {
		t.Errorf("RoomMean = %v, want %v", report.RoomMean, want)
	}
}
