package tsdb

import (
	"testing"
	"time"
)

func TestFormatLineProtocol(t *testing.T) {
	ts := time.Date(2026, 1, 5, 9, 0, 4, 0, time.UTC)
	ns := "1767603604000000000"

	tests := []struct {
		name        string
		measurement string
		tags        map[string]string
		fields      map[string]interface{}
		want        string
	}{
		{
			name:        "location energy",
			measurement: "energy_evaluation",
			tags:        map[string]string{"run_id": "r1", "location": "RwnD0", "category": "room"},
			fields:      map[string]interface{}{"wh": 0.0125},
			want:        "energy_evaluation,category=room,location=RwnD0,run_id=r1 wh=0.0125 " + ns,
		},
		{
			name:        "mixed field types",
			measurement: "energy_evaluation_summary",
			tags:        map[string]string{"run_id": "r1"},
			fields:      map[string]interface{}{"room_count": 12, "room_mean_wh": 1.5, "partial": false, "source": "events.json"},
			want:        `energy_evaluation_summary,run_id=r1 partial=false,room_count=12i,room_mean_wh=1.5,source="events.json" ` + ns,
		},
		{
			name:        "escaping",
			measurement: "energy evaluation,x",
			tags:        map[string]string{"loc": "a=b c,d\n"},
			fields:      map[string]interface{}{"wh": 1.0},
			want:        `energy\ evaluation\,x,loc=a\=b\ c\,d wh=1 ` + ns,
		},
		{
			name:        "no tags",
			measurement: "m",
			fields:      map[string]interface{}{"n": int64(3)},
			want:        "m n=3i " + ns,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatLineProtocol(tt.measurement, tt.tags, tt.fields, ts); got != tt.want {
				t.Errorf("formatLineProtocol() =\n  %s\nwant\n  %s", got, tt.want)
			}
		})
	}
}

func BenchmarkFormatLineProtocol(b *testing.B) {
	tags := map[string]string{"run_id": "6f1c", "location": "RwnD0_RwD3_sub", "category": "sub_room"}
	fields := map[string]interface{}{"wh": 0.0125}
	ts := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		formatLineProtocol("energy_evaluation", tags, fields, ts)
	}
}
