package topology

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestLoadBuildingOfficeFloor(t *testing.T) {
	b, err := LoadBuilding(filepath.Join("..", "..", "configs", "building.yaml"))
	if err != nil {
		t.Fatalf("LoadBuilding() error = %v", err)
	}

	// 2 RwD + 5 staircases + 12 RwnD + 72 sub-rooms.
	if b.NodeCount() != 91 {
		t.Errorf("NodeCount() = %d, want 91", b.NodeCount())
	}
	// 22 corridor links + 72 sub-room doors + 3 pass-throughs.
	if b.EdgeCount() != 97 {
		t.Errorf("EdgeCount() = %d, want 97", b.EdgeCount())
	}
	// 14 rooms and 72 sub-rooms with 3 sensors each.
	if b.SensorCount() != 258 {
		t.Errorf("SensorCount() = %d, want 258", b.SensorCount())
	}

	if got := b.StartNodes(); !slices.Equal(got, []string{"S0", "S1", "S2", "S3", "S4"}) {
		t.Errorf("StartNodes() = %v", got)
	}
	if got := len(b.Destinations()); got != 72 {
		t.Errorf("len(Destinations()) = %d, want 72", got)
	}

	first := b.Sensors("RwD0")
	if len(first) != 3 || first[0].Number != 0 {
		t.Errorf("RwD0 sensors = %+v", first)
	}
	if got := b.Sensors("RwnD0")[0].Number; got != 3 {
		t.Errorf("RwnD0 first sensor Number = %d, want 3", got)
	}

	if got := b.Connections("RwnD0_RwD10_sub"); !slices.Contains(got, "Door1") {
		t.Errorf("Connections(RwnD0_RwD10_sub) = %v, want Door1 pass-through", got)
	}
}

func TestParseLayoutInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no nodes", "nodes: []\n"},
		{"bad kind", "nodes:\n  - {kind: lobby, number: 0}\n"},
		{"negative number", "nodes:\n  - {kind: room, number: -1}\n"},
		{"bad connection", "nodes:\n  - {kind: staircase, number: 0}\nconnections:\n  - {from: S0}\n"},
		{"bad sensor", "room_sensors:\n  - {count: 1}\nnodes:\n  - {kind: room, number: 0}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseLayout([]byte(tt.yaml)); !errors.Is(err, ErrInvalidLayout) {
				t.Errorf("ParseLayout() error = %v, want ErrInvalidLayout", err)
			}
		})
	}
}

func TestBuildUnknownConnection(t *testing.T) {
	l, err := ParseLayout([]byte("nodes:\n  - {kind: staircase, number: 0}\nconnections:\n  - {from: S0, to: RwnD0}\n"))
	if err != nil {
		t.Fatalf("ParseLayout() error = %v", err)
	}
	if _, err := Build(l); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("Build() error = %v, want ErrNodeNotFound", err)
	}
}

func TestLoadLayoutMissingFile(t *testing.T) {
	if _, err := LoadLayout(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadLayout(missing) should fail")
	}
}

func TestLoadLayoutFromTempFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "building.yaml")
	content := `
room_sensors:
  - {count: 1, type: SensorType_0}
nodes:
  - {kind: room, number: 0, doors: false}
sub_rooms:
  - {parent: RwnD0, count: 2, doors: false}
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	b, err := LoadBuilding(path)
	if err != nil {
		t.Fatalf("LoadBuilding() error = %v", err)
	}
	if got := b.Connections("RwnD0"); !slices.Equal(got, []string{"NoDoor0_sub", "NoDoor1_sub"}) {
		t.Errorf("Connections() = %v", got)
	}
	if got := b.Destinations(); !slices.Equal(got, []string{"RwnD0_RwnD0_sub", "RwnD0_RwnD1_sub"}) {
		t.Errorf("Destinations() = %v", got)
	}
}
