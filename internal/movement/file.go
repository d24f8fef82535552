package movement

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// itineraryFile is the on-disk YAML shape.
type itineraryFile struct {
	Entities []entityItinerary `yaml:"entities"`
}

type entityItinerary struct {
	Entity    int        `yaml:"entity"`
	Waypoints []Waypoint `yaml:"waypoints"`
}

// LoadFile reads a YAML itinerary file:
//
//	entities:
//	  - entity: 0
//	    waypoints:
//	      - {step: 0, arrival: 2026-01-05T08:00:00Z, location: S0}
//	      - {step: 1, arrival: 2026-01-05T08:03:10Z, location: RwnD1_RwD2_sub}
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("reading itinerary file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML itinerary.
func Parse(data []byte) (*Table, error) {
	var f itineraryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing itinerary: %w", err)
	}

	var errs []error
	t := NewTable()
	for i, e := range f.Entities {
		if e.Entity < 0 {
			errs = append(errs, fmt.Errorf("entities[%d]: entity must be non-negative", i))
			continue
		}
		for j, wp := range e.Waypoints {
			if wp.Location == "" {
				errs = append(errs, fmt.Errorf("entities[%d].waypoints[%d]: location is required", i, j))
				continue
			}
			if wp.Arrival.IsZero() {
				errs = append(errs, fmt.Errorf("entities[%d].waypoints[%d]: arrival is required", i, j))
				continue
			}
			if err := t.Add(e.Entity, wp); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidItinerary, errors.Join(errs...))
	}
	return t, nil
}
