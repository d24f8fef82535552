package topology

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Layout node kinds accepted in a layout file.
const (
	LayoutRoom      = "room"
	LayoutStaircase = "staircase"
)

// Layout describes a building in YAML. Nodes are created in the listed
// order, then sub-rooms, then connections, so sensor numbers and edge ids
// are reproducible from the file alone.
type Layout struct {
	RoomSensors    []SensorSpec     `yaml:"room_sensors"`
	SubRoomSensors []SensorSpec     `yaml:"sub_room_sensors"`
	Nodes          []NodeSpec       `yaml:"nodes"`
	SubRooms       []SubRoomSpec    `yaml:"sub_rooms"`
	Connections    []ConnectionSpec `yaml:"connections"`
}

// ConnectionSpec links two nodes. Number defaults to the entry's position
// in the connection list.
type ConnectionSpec struct {
	From   string `yaml:"from"`
	To     string `yaml:"to"`
	Number *int   `yaml:"number,omitempty"`
}

// NodeSpec is one room or staircase entry.
type NodeSpec struct {
	Kind    string `yaml:"kind"`
	Number  int    `yaml:"number"`
	Doors   bool   `yaml:"doors"`
	Windows bool   `yaml:"windows"`
}

// SubRoomSpec attaches Count sub-rooms to Parent.
type SubRoomSpec struct {
	Parent  string `yaml:"parent"`
	Count   int    `yaml:"count"`
	Doors   bool   `yaml:"doors"`
	Windows bool   `yaml:"windows"`
}

// LoadLayout reads and validates a layout file.
func LoadLayout(path string) (*Layout, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("reading layout file: %w", err)
	}
	return ParseLayout(data)
}

// ParseLayout decodes and validates a YAML layout.
func ParseLayout(data []byte) (*Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parsing layout: %w", err)
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

// Validate checks structural constraints that Build cannot recover from.
func (l *Layout) Validate() error {
	var errs []error

	if len(l.Nodes) == 0 {
		errs = append(errs, errors.New("at least one node is required"))
	}
	for i, n := range l.Nodes {
		if n.Kind != LayoutRoom && n.Kind != LayoutStaircase {
			errs = append(errs, fmt.Errorf("nodes[%d]: unknown kind %q", i, n.Kind))
		}
		if n.Number < 0 {
			errs = append(errs, fmt.Errorf("nodes[%d]: number must be non-negative", i))
		}
	}
	for i, s := range l.SubRooms {
		if s.Parent == "" {
			errs = append(errs, fmt.Errorf("sub_rooms[%d]: parent is required", i))
		}
		if s.Count < 0 {
			errs = append(errs, fmt.Errorf("sub_rooms[%d]: count must be non-negative", i))
		}
	}
	for i, c := range l.Connections {
		if c.From == "" || c.To == "" {
			errs = append(errs, fmt.Errorf("connections[%d]: from and to are required", i))
		}
	}
	for i, s := range append(append([]SensorSpec{}, l.RoomSensors...), l.SubRoomSensors...) {
		if s.Count < 0 || s.Type == "" {
			errs = append(errs, fmt.Errorf("sensors[%d]: count must be non-negative and type set", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidLayout, errors.Join(errs...))
	}
	return nil
}

// Build creates a Building from the layout.
//
// Connection i becomes edge Door<n> or NoDoor<n>, where n is the entry's
// number or i; a repeated pair overwrites the earlier edge.
func Build(l *Layout) (*Building, error) {
	b := NewBuilding()

	for _, n := range l.Nodes {
		var err error
		switch n.Kind {
		case LayoutStaircase:
			_, err = b.AddStaircase(n.Number)
		default:
			_, err = b.AddRoom(n.Number, n.Doors, n.Windows, l.RoomSensors)
		}
		if err != nil {
			return nil, err
		}
	}

	for _, s := range l.SubRooms {
		if _, err := b.AddSubRooms(s.Parent, s.Count, s.Doors, s.Windows, l.SubRoomSensors); err != nil {
			return nil, err
		}
	}

	for i, c := range l.Connections {
		n := i
		if c.Number != nil {
			n = *c.Number
		}
		if _, err := b.Connect(c.From, c.To, n); err != nil {
			return nil, fmt.Errorf("connection %d: %w", i, err)
		}
	}

	return b, nil
}

// LoadBuilding reads a layout file and builds it.
func LoadBuilding(path string) (*Building, error) {
	l, err := LoadLayout(path)
	if err != nil {
		return nil, err
	}
	return Build(l)
}
