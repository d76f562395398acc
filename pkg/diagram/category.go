package diagram

import (
	"strings"

	"github.com/matzehuels/cddiagram/pkg/errors"
)

// Category classifies what a node represents. It selects the node's shape and
// color in the rendered image.
type Category string

// Node categories.
const (
	CategoryClient           Category = "client"
	CategoryVersionControl   Category = "version-control"
	CategoryScript           Category = "script"
	CategoryNetworkControl   Category = "network-control"
	CategoryCompute          Category = "compute"
	CategoryContainerRuntime Category = "container-runtime"
)

// nodeStyle is the Graphviz appearance of a category.
type nodeStyle struct {
	shape string
	fill  string
}

var categoryStyles = map[Category]nodeStyle{
	CategoryClient:           {shape: "ellipse", fill: "#FDEBD0"},
	CategoryVersionControl:   {shape: "folder", fill: "#E8E8E8"},
	CategoryScript:           {shape: "note", fill: "#D5F5E3"},
	CategoryNetworkControl:   {shape: "octagon", fill: "#FADBD8"},
	CategoryCompute:          {shape: "box3d", fill: "#FDEBD0"},
	CategoryContainerRuntime: {shape: "component", fill: "#D6EAF8"},
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := categoryStyles[c]
	return ok
}

func (c Category) style() nodeStyle {
	if s, ok := categoryStyles[c]; ok {
		return s
	}
	return nodeStyle{shape: "box", fill: "white"}
}

// Direction is the Graphviz rank direction of a diagram.
type Direction string

// Layout directions.
const (
	DirectionLR Direction = "LR" // left to right
	DirectionRL Direction = "RL" // right to left
	DirectionTB Direction = "TB" // top to bottom
	DirectionBT Direction = "BT" // bottom to top
)

// DefaultDirection matches the original left-to-right pipeline illustration.
const DefaultDirection = DirectionLR

// Directions lists every accepted direction, in help-text order.
var Directions = []Direction{DirectionLR, DirectionRL, DirectionTB, DirectionBT}

// Valid reports whether d is one of the supported directions.
func (d Direction) Valid() bool {
	switch d {
	case DirectionLR, DirectionRL, DirectionTB, DirectionBT:
		return true
	}
	return false
}

// ParseDirection parses a direction case-insensitively.
// An empty string yields DefaultDirection.
func ParseDirection(s string) (Direction, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultDirection, nil
	}
	d := Direction(strings.ToUpper(s))
	if !d.Valid() {
		return "", errors.New(errors.ErrCodeInvalidInput, "invalid direction: %s (must be LR, RL, TB or BT)", s)
	}
	return d, nil
}
