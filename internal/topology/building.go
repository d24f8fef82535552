package topology

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nerrad567/gray-logic-simeval/internal/timeline"
)

// NodeIndex addresses a node in the building arena.
type NodeIndex int

// EdgeIndex addresses an edge in the building arena.
type EdgeIndex int

// NoParent marks a node that is not a sub-room.
const NoParent NodeIndex = -1

// NodeKind is the closed set of node variants.
type NodeKind int

// Node kinds.
const (
	KindRoom NodeKind = iota
	KindSubRoom
	KindStaircase
)

// String returns the kind label.
func (k NodeKind) String() string {
	switch k {
	case KindRoom:
		return "room"
	case KindSubRoom:
		return "sub_room"
	case KindStaircase:
		return "staircase"
	default:
		return "unknown"
	}
}

// EdgeKind is the closed set of edge variants.
type EdgeKind int

// Edge kinds.
const (
	EdgeDoor EdgeKind = iota
	EdgeOpening
)

// String returns the kind label.
func (k EdgeKind) String() string {
	if k == EdgeDoor {
		return "door"
	}
	return "opening"
}

// Node id fragments.
const (
	roomWithDoorsPrefix    = "RwD"
	roomWithoutDoorsPrefix = "RwnD"
	staircasePrefix        = "S"
	subRoomSuffix          = "_sub"
	doorPrefix             = "Door"
	openingPrefix          = "NoDoor"
)

// Sensor is a device attached to a node.
type Sensor struct {
	Key    timeline.SensorKey
	Number int
}

// ID returns the sensor identifier.
func (s Sensor) ID() string {
	return s.Key.String()
}

// MessageID returns the identifier of messages this sensor emits.
func (s Sensor) MessageID() string {
	return timeline.MessageID(s.Number, s.ID())
}

// SensorSpec requests Count sensors of Type on each created node.
type SensorSpec struct {
	Count int    `yaml:"count"`
	Type  string `yaml:"type"`
}

// Node is a room, sub-room or staircase.
type Node struct {
	ID       string
	Kind     NodeKind
	HasDoors bool
	Windows  bool
	Parent   NodeIndex
	Sensors  []Sensor
}

// Edge connects two nodes.
type Edge struct {
	ID   string
	Kind EdgeKind
	A, B NodeIndex
}

// Building is an undirected graph of nodes and edges.
//
// Building is not safe for concurrent mutation; build it once and share it
// read-only.
type Building struct {
	nodes      []Node
	edges      []Edge
	adjacency  [][]EdgeIndex
	byID       map[string]NodeIndex
	nextSensor int
}

// NewBuilding creates an empty building.
func NewBuilding() *Building {
	return &Building{byID: make(map[string]NodeIndex)}
}

// AddStaircase adds staircase S<n>.
func (b *Building) AddStaircase(n int) (NodeIndex, error) {
	return b.addNode(Node{
		ID:     staircasePrefix + strconv.Itoa(n),
		Kind:   KindStaircase,
		Parent: NoParent,
	}, nil)
}

// AddRoom adds room RwD<n> (doors) or RwnD<n> (no doors) with sensors
// created from specs.
//
// Parameters:
//   - n: Room number
//   - doors: Whether the room is separated by doors
//   - windows: Whether the room has windows
//   - specs: Sensors to create on the room
//
// Returns:
//   - NodeIndex: Index of the new node
//   - error: ErrNodeExists (wrapped) if the id is taken
func (b *Building) AddRoom(n int, doors, windows bool, specs []SensorSpec) (NodeIndex, error) {
	return b.addNode(Node{
		ID:       roomID(n, doors),
		Kind:     KindRoom,
		HasDoors: doors,
		Windows:  windows,
		Parent:   NoParent,
	}, specs)
}

// AddSubRooms attaches count sub-rooms numbered 0..count-1 to parentID.
// Each is linked to the parent by Door<i>_sub when doors is set, otherwise
// by NoDoor<i>_sub.
//
// Returns:
//   - []NodeIndex: Indices of the new sub-rooms
//   - error: ErrNodeNotFound if the parent does not exist, ErrNodeExists on
//     an id collision
func (b *Building) AddSubRooms(parentID string, count int, doors, windows bool, specs []SensorSpec) ([]NodeIndex, error) {
	parent, ok := b.byID[parentID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, parentID)
	}

	created := make([]NodeIndex, 0, count)
	for i := 0; i < count; i++ {
		idx, err := b.addNode(Node{
			ID:       parentID + "_" + roomID(i, doors) + subRoomSuffix,
			Kind:     KindSubRoom,
			HasDoors: doors,
			Windows:  windows,
			Parent:   parent,
		}, specs)
		if err != nil {
			return created, err
		}

		kind, prefix := EdgeOpening, openingPrefix
		if doors {
			kind, prefix = EdgeDoor, doorPrefix
		}
		b.addEdge(Edge{ID: prefix + strconv.Itoa(i) + subRoomSuffix, Kind: kind, A: parent, B: idx})
		created = append(created, idx)
	}
	return created, nil
}

// Connect links two existing nodes with edge number n. The edge is a door if
// either id names a room with doors, otherwise an open passage. An existing
// edge between the same pair is replaced.
func (b *Building) Connect(a, c string, n int) (EdgeIndex, error) {
	ia, ok := b.byID[a]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNodeNotFound, a)
	}
	ic, ok := b.byID[c]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNodeNotFound, c)
	}

	edge := Edge{ID: openingPrefix + strconv.Itoa(n), Kind: EdgeOpening, A: ia, B: ic}
	if strings.Contains(a, roomWithDoorsPrefix) || strings.Contains(c, roomWithDoorsPrefix) {
		edge.ID, edge.Kind = doorPrefix+strconv.Itoa(n), EdgeDoor
	}

	for _, ei := range b.adjacency[ia] {
		e := b.edges[ei]
		if (e.A == ia && e.B == ic) || (e.A == ic && e.B == ia) {
			b.edges[ei] = edge
			return ei, nil
		}
	}
	return b.addEdge(edge), nil
}

func roomID(n int, doors bool) string {
	if doors {
		return roomWithDoorsPrefix + strconv.Itoa(n)
	}
	return roomWithoutDoorsPrefix + strconv.Itoa(n)
}

func (b *Building) addNode(node Node, specs []SensorSpec) (NodeIndex, error) {
	if _, exists := b.byID[node.ID]; exists {
		return 0, fmt.Errorf("%w: %s", ErrNodeExists, node.ID)
	}

	for _, spec := range specs {
		for i := 0; i < spec.Count; i++ {
			node.Sensors = append(node.Sensors, Sensor{
				Key:    timeline.NewSensorKey(node.ID, i, spec.Type),
				Number: b.nextSensor,
			})
			b.nextSensor++
		}
	}

	idx := NodeIndex(len(b.nodes))
	b.nodes = append(b.nodes, node)
	b.adjacency = append(b.adjacency, nil)
	b.byID[node.ID] = idx
	return idx, nil
}

func (b *Building) addEdge(e Edge) EdgeIndex {
	idx := EdgeIndex(len(b.edges))
	b.edges = append(b.edges, e)
	b.adjacency[e.A] = append(b.adjacency[e.A], idx)
	if e.B != e.A {
		b.adjacency[e.B] = append(b.adjacency[e.B], idx)
	}
	return idx
}

// Lookup returns the index of the node with the given id.
func (b *Building) Lookup(id string) (NodeIndex, bool) {
	idx, ok := b.byID[id]
	return idx, ok
}

// Node returns the node at idx.
func (b *Building) Node(idx NodeIndex) Node {
	return b.nodes[idx]
}

// Edge returns the edge at idx.
func (b *Building) Edge(idx EdgeIndex) Edge {
	return b.edges[idx]
}

// NodeCount returns the number of nodes.
func (b *Building) NodeCount() int { return len(b.nodes) }

// EdgeCount returns the number of edges.
func (b *Building) EdgeCount() int { return len(b.edges) }

// SensorCount returns the number of sensors created so far.
func (b *Building) SensorCount() int { return b.nextSensor }

// Neighbours returns the ids of nodes adjacent to id. Unknown ids yield nil.
func (b *Building) Neighbours(id string) []string {
	idx, ok := b.byID[id]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(b.adjacency[idx]))
	for _, ei := range b.adjacency[idx] {
		e := b.edges[ei]
		other := e.B
		if other == idx {
			other = e.A
		}
		out = append(out, b.nodes[other].ID)
	}
	return out
}

// Connections returns the ids of edges touching id. Unknown ids yield nil.
func (b *Building) Connections(id string) []string {
	idx, ok := b.byID[id]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(b.adjacency[idx]))
	for _, ei := range b.adjacency[idx] {
		out = append(out, b.edges[ei].ID)
	}
	return out
}

// StartNodes returns the ids of nodes where movable entities enter and
// leave the building: the staircases.
func (b *Building) StartNodes() []string {
	return b.idsOfKind(KindStaircase)
}

// Destinations returns the ids of nodes entities move to: the sub-rooms.
func (b *Building) Destinations() []string {
	return b.idsOfKind(KindSubRoom)
}

func (b *Building) idsOfKind(kind NodeKind) []string {
	var out []string
	for _, n := range b.nodes {
		if n.Kind == kind {
			out = append(out, n.ID)
		}
	}
	return out
}

// Sensors returns the sensors attached to location, or nil for an unknown
// location.
func (b *Building) Sensors(location string) []Sensor {
	idx, ok := b.byID[location]
	if !ok {
		return nil
	}
	return b.nodes[idx].Sensors
}

// SensorsOfType returns the sensors at location with the given type tag.
func (b *Building) SensorsOfType(location, sensorType string) []Sensor {
	var out []Sensor
	for _, s := range b.Sensors(location) {
		if s.Key.Type == sensorType {
			out = append(out, s)
		}
	}
	return out
}
