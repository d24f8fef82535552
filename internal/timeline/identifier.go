package timeline

import (
	"fmt"
	"strconv"
	"strings"
)

// Identifier grammar markers.
const (
	SensorPrefix   = "Sensor_"
	InstanceMarker = "_no."
	TypeMarker     = "_of_type_"
	MessagePrefix  = "Message_of_"
	MovablePrefix  = "Movable_object_"

	subRoomMarker    = "sub"
	instancePrefix   = InstanceMarker + "_"
	movableInfix     = "_move_no._"
	movableStepSep   = "."
	movableEntitySep = "_"
)

// Sensor type tags assigned by the device profiles.
const (
	// LightType is the observable light actuator whose state drives energy draw.
	LightType = "SensorType_0"

	// OccupancyType is the pure presence sensor. It draws no tracked power.
	OccupancyType = "SensorType_1"
)

// Category separates sub-room entities from room entities. The numeric
// value is the row index into a power-draw profile.
type Category int

// Categories in profile row order.
const (
	CategorySubRoom Category = 0
	CategoryRoom    Category = 1
)

// String returns the category label used in reports, storage and metrics.
func (c Category) String() string {
	if c == CategorySubRoom {
		return "sub_room"
	}
	return "room"
}

// ParseCategory converts a stored label back into a Category.
func ParseCategory(s string) (Category, error) {
	switch s {
	case "sub_room":
		return CategorySubRoom, nil
	case "room":
		return CategoryRoom, nil
	default:
		return 0, fmt.Errorf("unknown category %q", s)
	}
}

// CategoryOf classifies a location segment: any occurrence of "sub" marks a
// sub-room.
func CategoryOf(location string) Category {
	if strings.Contains(location, subRoomMarker) {
		return CategorySubRoom
	}
	return CategoryRoom
}

// SensorKey is the structured form of a sensor identifier.
type SensorKey struct {
	Location string
	Category Category
	Instance int
	Type     string
}

// NewSensorKey builds a key for a sensor attached to location. The category
// is derived from the location.
func NewSensorKey(location string, instance int, sensorType string) SensorKey {
	return SensorKey{
		Location: location,
		Category: CategoryOf(location),
		Instance: instance,
		Type:     sensorType,
	}
}

// String renders the key in identifier grammar.
func (k SensorKey) String() string {
	return SensorPrefix + k.Location + instancePrefix + strconv.Itoa(k.Instance) + TypeMarker + k.Type
}

// IsOccupancy reports whether the key denotes a pure occupancy sensor.
func (k SensorKey) IsOccupancy() bool {
	return k.Type == OccupancyType
}

// ParseSensorKey parses an identifier containing a sensor segment.
//
// Any text before the first "Sensor_" (such as a "Message_of_<n>_" prefix)
// is ignored. The location is everything up to the first "_no." that
// follows.
//
// Parameters:
//   - id: Raw entity identifier
//
// Returns:
//   - SensorKey: Parsed key
//   - error: ErrMalformedIdentifier (wrapped) if a marker is missing
func ParseSensorKey(id string) (SensorKey, error) {
	location, rest, err := splitSensorID(id)
	if err != nil {
		return SensorKey{}, err
	}

	if !strings.HasPrefix(rest, instancePrefix) {
		return SensorKey{}, fmt.Errorf("%w: %q has no instance after %q", ErrMalformedIdentifier, id, InstanceMarker)
	}
	rest = rest[len(instancePrefix):]

	typeIdx := strings.Index(rest, TypeMarker)
	if typeIdx < 0 {
		return SensorKey{}, fmt.Errorf("%w: %q missing %q", ErrMalformedIdentifier, id, TypeMarker)
	}
	instance, err := strconv.Atoi(rest[:typeIdx])
	if err != nil {
		return SensorKey{}, fmt.Errorf("%w: %q has non-numeric instance %q", ErrMalformedIdentifier, id, rest[:typeIdx])
	}
	sensorType := rest[typeIdx+len(TypeMarker):]
	if sensorType == "" {
		return SensorKey{}, fmt.Errorf("%w: %q has empty type", ErrMalformedIdentifier, id)
	}

	return SensorKey{
		Location: location,
		Category: CategoryOf(location),
		Instance: instance,
		Type:     sensorType,
	}, nil
}

// LocationKey derives the grouping key of a sensor identifier: the text
// between the first "Sensor_" and the following "_no.".
func LocationKey(id string) (string, error) {
	location, _, err := splitSensorID(id)
	return location, err
}

func splitSensorID(id string) (location, rest string, err error) {
	start := strings.Index(id, SensorPrefix)
	if start < 0 {
		return "", "", fmt.Errorf("%w: %q missing %q", ErrMalformedIdentifier, id, SensorPrefix)
	}
	tail := id[start+len(SensorPrefix):]

	end := strings.Index(tail, InstanceMarker)
	if end < 0 {
		return "", "", fmt.Errorf("%w: %q missing %q", ErrMalformedIdentifier, id, InstanceMarker)
	}
	if end == 0 {
		return "", "", fmt.Errorf("%w: %q has empty location", ErrMalformedIdentifier, id)
	}
	return tail[:end], tail[end:], nil
}

// IsOccupancyID reports whether a raw identifier embeds the occupancy type tag.
func IsOccupancyID(id string) bool {
	return strings.Contains(id, OccupancyType)
}

// MessageID renders the identifier of a message emitted by a sensor.
func MessageID(sensorNumber int, sensorID string) string {
	return MessagePrefix + strconv.Itoa(sensorNumber) + "_" + sensorID
}

// MovableRef identifies one step of a movable entity's itinerary.
type MovableRef struct {
	Entity int
	Step   int
}

// String renders the reference in identifier grammar.
func (r MovableRef) String() string {
	return MovablePrefix + strconv.Itoa(r.Entity) + movableInfix + strconv.Itoa(r.Step)
}

// ParseMovableRef parses a movement identifier.
//
// The entity number is the run of text after "Movable_object_" up to the
// next '_'. The step number is the text after the first '.' once every '_'
// has been removed from the identifier.
//
// Parameters:
//   - id: Raw identifier of a Move event
//
// Returns:
//   - MovableRef: Entity and step numbers
//   - error: ErrMalformedIdentifier (wrapped) if either number is missing
func ParseMovableRef(id string) (MovableRef, error) {
	if !strings.HasPrefix(id, MovablePrefix) {
		return MovableRef{}, fmt.Errorf("%w: %q missing %q", ErrMalformedIdentifier, id, MovablePrefix)
	}

	tail := id[len(MovablePrefix):]
	entityText := tail
	if idx := strings.Index(tail, movableEntitySep); idx >= 0 {
		entityText = tail[:idx]
	}
	entity, err := strconv.Atoi(entityText)
	if err != nil {
		return MovableRef{}, fmt.Errorf("%w: %q has non-numeric entity %q", ErrMalformedIdentifier, id, entityText)
	}

	compact := strings.ReplaceAll(id, "_", "")
	dot := strings.Index(compact, movableStepSep)
	if dot < 0 {
		return MovableRef{}, fmt.Errorf("%w: %q has no step separator", ErrMalformedIdentifier, id)
	}
	stepText := compact[dot+1:]
	step, err := strconv.Atoi(stepText)
	if err != nil {
		return MovableRef{}, fmt.Errorf("%w: %q has non-numeric step %q", ErrMalformedIdentifier, id, stepText)
	}

	return MovableRef{Entity: entity, Step: step}, nil
}
