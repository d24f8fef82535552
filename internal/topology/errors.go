package topology

import "errors"

// Domain errors for the topology package.
var (
	// ErrNodeExists is returned when adding a node whose id is already taken.
	ErrNodeExists = errors.New("topology: node already exists")

	// ErrNodeNotFound is returned when an id does not name a node.
	ErrNodeNotFound = errors.New("topology: node not found")

	// ErrInvalidLayout is returned when a layout file fails validation.
	ErrInvalidLayout = errors.New("topology: invalid layout")
)
