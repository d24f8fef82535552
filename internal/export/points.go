package export

import (
	"github.com/nerrad567/gray-logic-simeval/internal/evaluation"
	"github.com/nerrad567/gray-logic-simeval/internal/timeline"
)

// Time-series measurements written per run.
const (
	// MeasurementLocationEnergy has tags run_id, location, category and
	// field wh.
	MeasurementLocationEnergy = "energy_evaluation"

	// MeasurementSummary has tag run_id and the run's means, baselines and
	// bucket counts as fields.
	MeasurementSummary = "energy_evaluation_summary"
)

// writePoints writes a run's points to w and flushes. Every point carries
// the timeline span end so reruns over one simulation line up.
func writePoints(w PointWriter, run *evaluation.Run) {
	r := run.Report
	for _, group := range []struct {
		category timeline.Category
		items    []evaluation.LocationConsumption
	}{
		{timeline.CategoryRoom, r.Rooms},
		{timeline.CategorySubRoom, r.SubRooms},
	} {
		for _, item := range group.items {
			w.WritePointWithTime(MeasurementLocationEnergy,
				map[string]string{
					"run_id":   run.ID,
					"location": item.Location,
					"category": group.category.String(),
				},
				map[string]interface{}{"wh": item.Wh},
				r.SpanEnd,
			)
		}
	}

	w.WritePointWithTime(MeasurementSummary,
		map[string]string{"run_id": run.ID},
		map[string]interface{}{
			"room_mean_wh":      r.RoomMean,
			"sub_room_mean_wh":  r.SubRoomMean,
			"baseline_type0_wh": r.BaselineType0,
			"baseline_type1_wh": r.BaselineType1,
			"room_count":        r.RoomCount,
			"sub_room_count":    r.SubRoomCount,
		},
		r.SpanEnd,
	)
	w.Flush()
}
