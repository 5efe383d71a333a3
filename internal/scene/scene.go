// Package scene is a synthetic stand-in for the benchmark rendering
// application: a grid of cones, spheres and cylinders drawn through a
// gl.DrawContext.
package scene

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/glmetrics/internal/gl"
	"github.com/ethpandaops/glmetrics/internal/metrics"
)

// Spacing is the distance between neighbouring grid cells.
const Spacing = 50.0

const defaultViewAngle = 30.0

// Options configures a Scene.
type Options struct {
	// Resolution is the tessellation resolution. Defaults to 16.
	Resolution int
	// Instancing draws the surface pass once per layer.
	Instancing bool
}

// Scene holds the benchmark objects and the render state applied to them.
type Scene struct {
	log    logrus.FieldLogger
	dc     gl.DrawContext
	meshes [NumLayers]Mesh
	inst   bool

	mu                sync.RWMutex
	initialized       bool
	nx, ny            int
	visible           [NumLayers]bool
	rep               Representation
	lineWidth         float64
	pointSize         float64
	edgeColor         RGB
	selectedColor     RGB
	pickType          PickType
	scrollSensitivity float64
	showManipulator   bool
	camera            CameraState
	selected          map[int]struct{}
	frames            uint64
}

// New creates an empty scene that draws into dc.
func New(log logrus.FieldLogger, dc gl.DrawContext, opts Options) *Scene {
	if opts.Resolution < 3 {
		opts.Resolution = DefaultResolution
	}

	s := &Scene{
		log:               log.WithField("component", "scene"),
		dc:                dc,
		meshes:            meshes(opts.Resolution),
		inst:              opts.Instancing,
		rep:               RepresentationSurfaceWithEdges,
		lineWidth:         1,
		pointSize:         1,
		edgeColor:         RGB{R: 1, G: 1, B: 1},
		scrollSensitivity: 1,
		pickType:          PickNone,
		showManipulator:   true,
		selected:          make(map[int]struct{}),
	}

	for l := range s.visible {
		s.visible[l] = true
	}

	s.camera = s.defaultCamera()

	return s
}

// Initialize prepares the scene for rendering.
func (s *Scene) Initialize() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.log.Debug("Scene initialized")
}

// CreateDatasets replaces the scene contents with an nx by ny grid holding
// one object of every layer per cell. It returns the number of objects.
func (s *Scene) CreateDatasets(nx, ny int) int {
	if nx < 0 {
		nx = 0
	}

	if ny < 0 {
		ny = 0
	}

	s.mu.Lock()
	s.nx, s.ny = nx, ny
	s.selected = make(map[int]struct{})
	n := s.objectsLocked()
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"nx":      nx,
		"ny":      ny,
		"objects": n,
	}).Info("Created datasets")

	return n
}

// NumberOfObjects returns the number of objects in the scene.
func (s *Scene) NumberOfObjects() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.objectsLocked()
}

func (s *Scene) objectsLocked() int {
	return int(NumLayers) * s.perLayerLocked()
}

func (s *Scene) perLayerLocked() int {
	return s.nx * s.ny
}

// Render draws every visible object with the current representation.
func (s *Scene) Render() {
	s.mu.Lock()
	s.frames++
	rep := s.rep
	visible := s.visible
	perLayer := s.perLayerLocked()
	s.mu.Unlock()

	if perLayer == 0 {
		return
	}

	for l := LayerCone; l < NumLayers; l++ {
		if !visible[l] {
			continue
		}

		mesh := s.meshes[l]

		if rep.drawsPoints() {
			for i := 0; i < perLayer; i++ {
				s.dc.DrawArrays(gl.Points, 0, mesh.Vertices)
			}
		}

		if rep.drawsSurface() {
			if s.inst {
				s.dc.DrawArraysInstanced(gl.Triangles, 0, 3*mesh.Triangles, perLayer)
			} else {
				for i := 0; i < perLayer; i++ {
					s.dc.DrawElements(gl.Triangles, 3*mesh.Triangles, gl.UnsignedShort, 0)
				}
			}
		}

		if rep.drawsEdges() {
			for i := 0; i < perLayer; i++ {
				s.dc.DrawElements(gl.Lines, 2*mesh.Edges, gl.UnsignedShort, 0)
			}
		}
	}
}

// Expected returns the primitive counts a single Render produces.
func (s *Scene) Expected() metrics.Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var c metrics.Counts

	n := int64(s.perLayerLocked())

	for l := LayerCone; l < NumLayers; l++ {
		if !s.visible[l] {
			continue
		}

		mesh := s.meshes[l]

		if s.rep.drawsPoints() {
			c.Points += n * int64(mesh.Vertices)
		}

		if s.rep.drawsSurface() {
			c.Triangles += n * int64(mesh.Triangles)
		}

		if s.rep.drawsEdges() {
			c.Lines += n * int64(mesh.Edges)
		}
	}

	return c
}

// Frames returns how many times Render was called.
func (s *Scene) Frames() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.frames
}

// Mesh returns the mesh drawn for layer l.
func (s *Scene) Mesh(l Layer) Mesh {
	if !l.Valid() {
		return Mesh{}
	}

	return s.meshes[l]
}

// SetRepresentation changes how meshes are drawn. Unknown values are
// ignored.
func (s *Scene) SetRepresentation(r Representation) {
	if !r.Valid() {
		s.log.WithField("representation", int(r)).Warn("Ignoring unknown representation")

		return
	}

	s.mu.Lock()
	s.rep = r
	s.mu.Unlock()
}

// Representation returns the current representation.
func (s *Scene) Representation() Representation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.rep
}

// SetLayerVisibility shows or hides every object of a layer.
func (s *Scene) SetLayerVisibility(l Layer, visible bool) {
	if !l.Valid() {
		s.log.WithField("layer", int(l)).Warn("Ignoring unknown layer")

		return
	}

	s.mu.Lock()
	s.visible[l] = visible
	s.mu.Unlock()
}

// LayerVisible reports whether layer l is drawn.
func (s *Scene) LayerVisible(l Layer) bool {
	if !l.Valid() {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.visible[l]
}

func (s *Scene) SetLineWidth(w float64) {
	s.mu.Lock()
	s.lineWidth = w
	s.mu.Unlock()
}

func (s *Scene) LineWidth() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lineWidth
}

func (s *Scene) SetPointSize(size float64) {
	s.mu.Lock()
	s.pointSize = size
	s.mu.Unlock()
}

func (s *Scene) PointSize() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.pointSize
}

func (s *Scene) SetEdgeColor(r, g, b float64) {
	s.mu.Lock()
	s.edgeColor = RGB{R: r, G: g, B: b}
	s.mu.Unlock()
}

func (s *Scene) EdgeColor() RGB {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.edgeColor
}

func (s *Scene) SetSelectedBlockColor(r, g, b float64) {
	s.mu.Lock()
	s.selectedColor = RGB{R: r, G: g, B: b}
	s.mu.Unlock()
}

func (s *Scene) SelectedBlockColor() RGB {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.selectedColor
}

func (s *Scene) SetPickType(p PickType) {
	s.mu.Lock()
	s.pickType = p
	s.mu.Unlock()
}

func (s *Scene) PickType() PickType {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.pickType
}

func (s *Scene) SetScrollSensitivity(v float64) {
	s.mu.Lock()
	s.scrollSensitivity = v
	s.mu.Unlock()
}

func (s *Scene) ScrollSensitivity() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.scrollSensitivity
}

func (s *Scene) SetShowCameraManipulator(show bool) {
	s.mu.Lock()
	s.showManipulator = show
	s.mu.Unlock()
}

// Select marks objects as selected. Ids outside the scene are ignored.
// Selection is a no-op when picking is disabled.
func (s *Scene) Select(ids ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pickType == PickNone {
		return
	}

	n := s.objectsLocked()

	for _, id := range ids {
		if id >= 0 && id < n {
			s.selected[id] = struct{}{}
		}
	}
}

// Selected returns the number of selected objects.
func (s *Scene) Selected() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.selected)
}

// ClearSelections removes every selection.
func (s *Scene) ClearSelections() {
	s.mu.Lock()
	s.selected = make(map[int]struct{})
	s.mu.Unlock()
}

// GetCameraState returns the current camera pose.
func (s *Scene) GetCameraState() CameraState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.camera
}

// SetCameraState restores a camera pose.
func (s *Scene) SetCameraState(state CameraState) {
	s.mu.Lock()
	s.camera = state
	s.mu.Unlock()
}

// ResetView points the camera at the centre of the grid.
func (s *Scene) ResetView() {
	s.mu.Lock()
	s.camera = s.defaultCamera()
	s.mu.Unlock()
}

// defaultCamera must be called with mu held or before s is shared.
func (s *Scene) defaultCamera() CameraState {
	cx := float64(max(s.nx-1, 0)) * Spacing / 2
	cy := float64(max(s.ny-1, 0)) * Spacing / 2
	cz := Spacing

	extent := float64(max(s.nx, s.ny, 1)) * Spacing

	return CameraState{
		ViewUp:     Vec3{0, 1, 0},
		Position:   Vec3{cx, cy, cz + 2*extent},
		FocalPoint: Vec3{cx, cy, cz},
		ViewAngle:  defaultViewAngle,
	}
}
