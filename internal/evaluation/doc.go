// Package evaluation estimates lighting energy consumption from a simulated
// event timeline.
//
// Every light message opens a state interval that closes at the next event
// bearing the same raw identifier. The interval's duration times the Watt
// draw for its (category, state) pair is accumulated per location. Messages
// from occupancy sensors are excluded; they carry no tracked power draw.
//
// # Usage
//
//	report, err := evaluation.Aggregate(tl.Snapshot(), evaluation.DefaultProfile())
//	if err != nil {
//	    return err
//	}
//	path, err := evaluation.WriteReport(cfg.Evaluation.ReportDir, report, time.Now())
//
// # Open Intervals
//
// A message with no later event of the same identifier has no end, so its
// interval contributes nothing and creates no location bucket. Report counts
// these in OpenIntervals.
//
// # Empty Categories
//
// When no bucket exists for a category its mean is reported as 0. RoomCount
// and SubRoomCount distinguish this from a measured zero.
package evaluation
