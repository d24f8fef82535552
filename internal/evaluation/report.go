package evaluation

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const reportFilePrefix = "Energy_evaluation_"

// ReportFileName returns the artifact name for a report generated at t:
// Energy_evaluation_<YYYY-MM-DD>_<h>_<m>_<s>.txt, without zero padding on
// the time fields.
func ReportFileName(t time.Time) string {
	return fmt.Sprintf("%s%s_%d_%d_%d.txt", reportFilePrefix, t.Format("2006-01-02"), t.Hour(), t.Minute(), t.Second())
}

// Format renders the report body.
//
// The body has four labelled headline lines followed by the per-room and
// per-sub-room breakdowns, one tab-indented "<location>: <Wh>" entry per line.
func (r *Report) Format() []byte {
	var b strings.Builder

	b.WriteString("Energy consumption of all sensors of type 0 in Wh: " + formatWh(r.BaselineType0) + "\n")
	b.WriteString("Energy consumption of all sensors of type 1 in Wh: " + formatWh(r.BaselineType1) + "\n")
	b.WriteString("Average energy consumption of rooms in Wh: " + formatWh(r.RoomMean) + "\n")
	b.WriteString("Average energy consumption of sub rooms in Wh: " + formatWh(r.SubRoomMean) + "\n\n")

	b.WriteString("Energy consumption per room in Wh: ")
	writeBreakdown(&b, r.Rooms)

	b.WriteString("\n\nEnergy consumption per sub room in Wh: ")
	writeBreakdown(&b, r.SubRooms)

	return []byte(b.String())
}

func writeBreakdown(b *strings.Builder, items []LocationConsumption) {
	for _, item := range items {
		b.WriteString("\n\t" + item.Location + ": " + formatWh(item.Wh))
	}
}

// formatWh renders v in the shortest decimal form that round-trips.
func formatWh(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteReport persists the report under dir.
//
// The artifact is named from generatedAt (see ReportFileName) and opened in
// append mode, so a second report in the same second accumulates rather than
// overwrites. The body is rendered in memory and written with a single call.
//
// Parameters:
//   - dir: Existing output directory
//   - r: Report to write
//   - generatedAt: Report generation time (not simulation time)
//
// Returns:
//   - string: Path of the artifact
//   - error: If the file cannot be opened, written or closed
func WriteReport(dir string, r *Report, generatedAt time.Time) (string, error) {
	path := filepath.Join(dir, ReportFileName(generatedAt))

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return "", fmt.Errorf("opening report file: %w", err)
	}

	if _, err := f.Write(r.Format()); err != nil {
		f.Close()
		return "", fmt.Errorf("writing report file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing report file: %w", err)
	}
	return path, nil
}
