package evaluation

import (
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-simeval/internal/timeline"
)

const (
	secondsPerHour = 3600.0
	daysPerYear    = 365.0

	// typeOneUnitsPerEntity is the number of type-1 devices installed per
	// location entity.
	typeOneUnitsPerEntity = 2.0
)

// LocationConsumption is the cumulative draw of one location.
type LocationConsumption struct {
	Location string  `json:"location"`
	Wh       float64 `json:"wh"`
}

// Report is the result of one aggregation pass.
type Report struct {
	// SpanStart and SpanEnd are the first and last timeline timestamps.
	SpanStart time.Time `json:"span_start"`
	SpanEnd   time.Time `json:"span_end"`

	// BaselineType0 and BaselineType1 are the scaled non-lighting figures in Wh.
	BaselineType0 float64 `json:"baseline_type0_wh"`
	BaselineType1 float64 `json:"baseline_type1_wh"`

	// RoomMean and SubRoomMean are the mean Wh per location bucket.
	RoomMean    float64 `json:"room_mean_wh"`
	SubRoomMean float64 `json:"sub_room_mean_wh"`

	// Rooms and SubRooms list per-location Wh in first-observed order.
	Rooms    []LocationConsumption `json:"rooms,omitempty"`
	SubRooms []LocationConsumption `json:"sub_rooms,omitempty"`

	// RoomCount and SubRoomCount are the number of location buckets per
	// category. They survive storage even when the breakdowns are not loaded.
	RoomCount    int `json:"room_count"`
	SubRoomCount int `json:"sub_room_count"`

	// PairedIntervals counts intervals that found a closing event;
	// OpenIntervals counts those dropped at the timeline tail.
	PairedIntervals int `json:"paired_intervals"`
	OpenIntervals   int `json:"open_intervals"`
}

// DeviceCount returns the number of location buckets across both categories.
func (r *Report) DeviceCount() int { return r.RoomCount + r.SubRoomCount }

// buckets accumulates watt-seconds per location, preserving first-observed order.
type buckets struct {
	index map[string]int
	items []LocationConsumption
	total float64
}

func newBuckets() *buckets {
	return &buckets{index: make(map[string]int)}
}

func (b *buckets) add(location string, wattSeconds float64) {
	b.total += wattSeconds
	if i, ok := b.index[location]; ok {
		b.items[i].Wh += wattSeconds
		return
	}
	b.index[location] = len(b.items)
	b.items = append(b.items, LocationConsumption{Location: location, Wh: wattSeconds})
}

// mean returns the per-bucket mean in Wh, or 0 when there are no buckets.
func (b *buckets) mean() float64 {
	if len(b.items) == 0 {
		return 0
	}
	return b.total / float64(len(b.items)) / secondsPerHour
}

// wattHours converts the buckets from watt-seconds to Wh.
func (b *buckets) wattHours() []LocationConsumption {
	out := make([]LocationConsumption, len(b.items))
	for i, item := range b.items {
		out[i] = LocationConsumption{Location: item.Location, Wh: item.Wh / secondsPerHour}
	}
	return out
}

// Aggregate computes the energy report for an ordered timeline.
//
// Each non-occupancy message opens an interval closed by the next event with
// the identical raw identifier. The interval contributes
// duration_ms/1000 * Watts[category][state] watt-seconds to its location
// bucket. Messages without a ':' in the payload are inert.
//
// Parameters:
//   - events: Timeline snapshot sorted ascending by time
//   - profile: Power-draw figures
//
// Returns:
//   - *Report: Aggregated figures (zero-valued for an empty timeline)
//   - error: timeline.ErrMalformedIdentifier (wrapped) if a light message id
//     lacks the sensor markers
func Aggregate(events []timeline.Event, profile Profile) (*Report, error) {
	report := &Report{}
	if start, end, err := timeline.SpanOf(events); err == nil {
		report.SpanStart, report.SpanEnd = start, end
	}

	next := nextSameID(events)
	locations := make(map[string]string)
	perCategory := [2]*buckets{newBuckets(), newBuckets()}

	for i, ev := range events {
		if !ev.IsMessage() || timeline.IsOccupancyID(ev.EntityID) {
			continue
		}

		location, ok := locations[ev.EntityID]
		if !ok {
			var err error
			location, err = timeline.LocationKey(ev.EntityID)
			if err != nil {
				return nil, fmt.Errorf("event %d: %w", i, err)
			}
			locations[ev.EntityID] = location
		}

		token, ok := timeline.StateToken(ev.Action.Payload)
		if !ok {
			continue
		}

		j := next[i]
		if j < 0 {
			report.OpenIntervals++
			continue
		}
		report.PairedIntervals++

		category := timeline.CategoryOf(location)
		durationMs := events[j].Time.Sub(ev.Time).Milliseconds()
		wattSeconds := float64(durationMs) / 1000 * profile.Watts(category, token)
		perCategory[category].add(location, wattSeconds)
	}

	sub, room := perCategory[timeline.CategorySubRoom], perCategory[timeline.CategoryRoom]
	report.SubRoomMean = sub.mean()
	report.RoomMean = room.mean()
	report.SubRooms = sub.wattHours()
	report.Rooms = room.wattHours()
	report.SubRoomCount = len(report.SubRooms)
	report.RoomCount = len(report.Rooms)

	devices := float64(report.DeviceCount())
	report.BaselineType0 = profile.Baseline[0] * devices / daysPerYear
	report.BaselineType1 = profile.Baseline[1] * typeOneUnitsPerEntity * devices / daysPerYear

	return report, nil
}

// nextSameID returns, for each position, the position of the next event
// with the identical entity id, or -1 if there is none.
func nextSameID(events []timeline.Event) []int {
	next := make([]int, len(events))
	seen := make(map[string]int, len(events))
	for i := len(events) - 1; i >= 0; i-- {
		id := events[i].EntityID
		if j, ok := seen[id]; ok {
			next[i] = j
		} else {
			next[i] = -1
		}
		seen[id] = i
	}
	return next
}
