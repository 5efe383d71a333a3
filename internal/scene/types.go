package scene

import (
	"fmt"
	"strconv"
	"strings"
)

// Layer groups the objects of one shape.
type Layer int

const (
	LayerCone Layer = iota
	LayerSphere
	LayerCylinder

	NumLayers
)

// String returns the shape name of the layer.
func (l Layer) String() string {
	switch l {
	case LayerCone:
		return "cone"
	case LayerSphere:
		return "sphere"
	case LayerCylinder:
		return "cylinder"
	default:
		return fmt.Sprintf("layer(%d)", int(l))
	}
}

// Valid reports whether l names a layer.
func (l Layer) Valid() bool {
	return l >= LayerCone && l < NumLayers
}

// ParseLayer parses a shape name into a Layer.
func ParseLayer(s string) (Layer, error) {
	for l := LayerCone; l < NumLayers; l++ {
		if strings.EqualFold(s, l.String()) {
			return l, nil
		}
	}

	return 0, fmt.Errorf("unknown layer %q", s)
}

// Representation selects how meshes are drawn.
type Representation int

const (
	RepresentationPoints Representation = iota
	RepresentationWireframe
	RepresentationSurface
	RepresentationSurfaceWithEdges
)

// String returns the human-readable name of the representation.
func (r Representation) String() string {
	switch r {
	case RepresentationPoints:
		return "points"
	case RepresentationWireframe:
		return "wireframe"
	case RepresentationSurface:
		return "surface"
	case RepresentationSurfaceWithEdges:
		return "surface_with_edges"
	default:
		return fmt.Sprintf("representation(%d)", int(r))
	}
}

// Valid reports whether r is a known representation.
func (r Representation) Valid() bool {
	return r >= RepresentationPoints && r <= RepresentationSurfaceWithEdges
}

// ParseRepresentation parses a representation name or its numeric value.
func ParseRepresentation(s string) (Representation, error) {
	if n, err := strconv.Atoi(s); err == nil {
		r := Representation(n)
		if !r.Valid() {
			return 0, fmt.Errorf("unknown representation %d", n)
		}

		return r, nil
	}

	for r := RepresentationPoints; r <= RepresentationSurfaceWithEdges; r++ {
		if strings.EqualFold(s, r.String()) {
			return r, nil
		}
	}

	return 0, fmt.Errorf("unknown representation %q", s)
}

func (r Representation) drawsPoints() bool { return r == RepresentationPoints }

func (r Representation) drawsEdges() bool {
	return r == RepresentationWireframe || r == RepresentationSurfaceWithEdges
}

func (r Representation) drawsSurface() bool {
	return r == RepresentationSurface || r == RepresentationSurfaceWithEdges
}

// PickType selects the interactive selection mode.
type PickType int

const (
	PickArea PickType = iota
	PickHover
	PickNone
)

// String returns the human-readable name of the pick type.
func (p PickType) String() string {
	switch p {
	case PickArea:
		return "area"
	case PickHover:
		return "hover"
	case PickNone:
		return "none"
	default:
		return fmt.Sprintf("pick(%d)", int(p))
	}
}

// ParsePickType parses a pick type name.
func ParsePickType(s string) (PickType, error) {
	for p := PickArea; p <= PickNone; p++ {
		if strings.EqualFold(s, p.String()) {
			return p, nil
		}
	}

	return 0, fmt.Errorf("unknown pick type %q", s)
}

// Vec3 is an (x, y, z) triple.
type Vec3 [3]float64

// RGB is a colour with components in [0, 1].
type RGB struct {
	R, G, B float64
}

// CameraState is a restorable camera pose.
type CameraState struct {
	ViewUp     Vec3    `json:"viewUp"`
	Position   Vec3    `json:"position"`
	FocalPoint Vec3    `json:"focalPoint"`
	ViewAngle  float64 `json:"viewAngle"`
}
