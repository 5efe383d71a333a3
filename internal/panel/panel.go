// Package panel drives the benchmark application from control panel
// events and keeps the instrumentation object count in step with it.
package panel

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/glmetrics/internal/scene"
)

// Grid size bounds of the nx and ny sliders.
const (
	MinGrid = 2
	MaxGrid = 128
)

// App is the benchmark rendering application driven by the panel.
type App interface {
	CameraApp

	Initialize()
	ResetView()
	ClearSelections()
	CreateDatasets(nx, ny int) int
	SetEdgeColor(r, g, b float64)
	SetLayerVisibility(layer scene.Layer, visible bool)
	SetLineWidth(width float64)
	SetPickType(p scene.PickType)
	SetScrollSensitivity(v float64)
	SetPointSize(size float64)
	SetRepresentation(rep scene.Representation)
	SetSelectedBlockColor(r, g, b float64)
	SetShowCameraManipulator(show bool)
}

// ObjectCounter receives the scene object count after datasets change.
type ObjectCounter interface {
	SetNumberOfObjects(n int)
}

// RowFunc shows or hides a property row.
type RowFunc func(id string, visible bool)

// Settings is the state of the control panel.
type Settings struct {
	ScrollSensitivity float64
	LineWidth         float64
	PointSize         float64
	Layers            [scene.NumLayers]bool
	NX                int
	NY                int
	Representation    scene.Representation
	PickType          scene.PickType
	EdgeColor         string
	SelectedColor     scene.RGB
	ShowManipulator   bool
}

// DefaultSettings returns the panel state on page load.
func DefaultSettings() Settings {
	return Settings{
		ScrollSensitivity: 0.15,
		LineWidth:         1,
		PointSize:         1,
		Layers:            [scene.NumLayers]bool{true, true, true},
		NX:                8,
		NY:                8,
		Representation:    scene.RepresentationSurfaceWithEdges,
		PickType:          scene.PickArea,
		EdgeColor:         "#ffffff",
		SelectedColor:     scene.RGB{R: 0.952, G: 0.937, B: 0.368},
		ShowManipulator:   true,
	}
}

// ClampGrid limits a grid dimension to the slider range.
func ClampGrid(n int) int {
	return min(max(n, MinGrid), MaxGrid)
}

// Controller applies panel events to an App.
type Controller struct {
	log     logrus.FieldLogger
	app     App
	objects ObjectCounter
	rows    RowFunc
	views   CameraSlots

	mu       sync.Mutex
	settings Settings
}

// NewController creates a controller. objects and rows may be nil.
func NewController(
	log logrus.FieldLogger,
	app App,
	objects ObjectCounter,
	rows RowFunc,
	settings Settings,
) *Controller {
	if rows == nil {
		rows = func(string, bool) {}
	}

	return &Controller{
		log:      log.WithField("component", "panel"),
		app:      app,
		objects:  objects,
		rows:     rows,
		settings: settings,
	}
}

// Init initializes the application and applies every setting.
func (c *Controller) Init() error {
	s := c.Settings()

	c.app.Initialize()
	c.app.SetScrollSensitivity(s.ScrollSensitivity)
	c.app.SetSelectedBlockColor(s.SelectedColor.R, s.SelectedColor.G, s.SelectedColor.B)
	c.app.SetShowCameraManipulator(s.ShowManipulator)

	for l := scene.LayerCone; l < scene.NumLayers; l++ {
		c.app.SetLayerVisibility(l, s.Layers[l])
	}

	c.SetDatasets(s.NX, s.NY)

	if err := c.applyRepresentation(); err != nil {
		return err
	}

	c.SetPickType(s.PickType)

	c.log.WithFields(logrus.Fields{
		"nx":             c.Settings().NX,
		"ny":             c.Settings().NY,
		"representation": s.Representation,
		"pick_type":      s.PickType,
	}).Info("Control panel initialized")

	return nil
}

// Settings returns a copy of the panel state.
func (c *Controller) Settings() Settings {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.settings
}

func (c *Controller) update(fn func(s *Settings)) {
	c.mu.Lock()
	fn(&c.settings)
	c.mu.Unlock()
}

func (c *Controller) SetScrollSensitivity(v float64) {
	c.update(func(s *Settings) { s.ScrollSensitivity = v })
	c.app.SetScrollSensitivity(v)
}

// SetRepresentation switches representation and refreshes property rows.
func (c *Controller) SetRepresentation(rep scene.Representation) {
	c.update(func(s *Settings) { s.Representation = rep })
	c.app.SetRepresentation(rep)
	c.app.Render()
	c.updatePropertyRows(rep)
}

func (c *Controller) SetLineWidth(w float64) {
	c.update(func(s *Settings) { s.LineWidth = w })
	c.app.SetLineWidth(w)
	c.app.Render()
}

func (c *Controller) SetPointSize(size float64) {
	c.update(func(s *Settings) { s.PointSize = size })
	c.app.SetPointSize(size)
	c.app.Render()
}

// SetEdgeColor applies a "#rrggbb" edge colour.
func (c *Controller) SetEdgeColor(hex string) error {
	color, err := ParseHexColor(hex)
	if err != nil {
		return err
	}

	n := color.Normalized()

	c.update(func(s *Settings) { s.EdgeColor = color.Hex() })
	c.app.SetEdgeColor(n.R, n.G, n.B)
	c.app.Render()

	return nil
}

// SetSelectionColor applies a "#rrggbb" selected block colour. It takes
// effect on the next render.
func (c *Controller) SetSelectionColor(hex string) error {
	color, err := ParseHexColor(hex)
	if err != nil {
		return err
	}

	n := color.Normalized()

	c.update(func(s *Settings) { s.SelectedColor = n })
	c.app.SetSelectedBlockColor(n.R, n.G, n.B)

	return nil
}

// SetPickType switches the selection mode and the selection colour row.
func (c *Controller) SetPickType(p scene.PickType) {
	c.update(func(s *Settings) { s.PickType = p })
	c.rows(RowSelectionColor, SelectionColorVisible(p))
	c.app.SetPickType(p)
}

func (c *Controller) SetLayerVisibility(l scene.Layer, visible bool) {
	if l.Valid() {
		c.update(func(s *Settings) { s.Layers[l] = visible })
	}

	c.app.SetLayerVisibility(l, visible)
	c.app.Render()
}

// SetDatasets rebuilds the grid, publishes the new object count, resets
// the view and renders.
func (c *Controller) SetDatasets(nx, ny int) int {
	nx, ny = ClampGrid(nx), ClampGrid(ny)

	c.update(func(s *Settings) {
		s.NX = nx
		s.NY = ny
	})

	n := c.app.CreateDatasets(nx, ny)
	if c.objects != nil {
		c.objects.SetNumberOfObjects(n)
	}

	c.app.ResetView()
	c.app.Render()

	return n
}

func (c *Controller) SetShowCameraManipulator(show bool) {
	c.update(func(s *Settings) { s.ShowManipulator = show })
	c.app.SetShowCameraManipulator(show)
	c.app.Render()
}

// ActivateView captures or restores saved view i.
func (c *Controller) ActivateView(i int) error {
	captured, err := c.views.Activate(i, c.app)
	if err != nil {
		return err
	}

	c.log.WithFields(logrus.Fields{
		"view":     i,
		"captured": captured,
	}).Debug("Camera view activated")

	return nil
}

// EraseView clears saved view i.
func (c *Controller) EraseView(i int) error {
	return c.views.Erase(i)
}

// ViewSaved reports whether view i holds a pose.
func (c *Controller) ViewSaved(i int) bool {
	return c.views.Saved(i)
}

func (c *Controller) ResetView() {
	c.app.ResetView()
	c.app.Render()
}

func (c *Controller) ClearSelection() {
	c.app.ClearSelections()
	c.app.Render()
}

func (c *Controller) applyRepresentation() error {
	s := c.Settings()

	color, err := ParseHexColor(s.EdgeColor)
	if err != nil {
		return fmt.Errorf("edge color: %w", err)
	}

	n := color.Normalized()

	c.app.SetEdgeColor(n.R, n.G, n.B)
	c.app.SetLineWidth(s.LineWidth)
	c.app.SetPointSize(s.PointSize)
	c.app.SetRepresentation(s.Representation)
	c.app.Render()
	c.updatePropertyRows(s.Representation)

	return nil
}

func (c *Controller) updatePropertyRows(rep scene.Representation) {
	visible := make(map[string]bool, len(PropertyRows))
	for _, id := range VisibleRows(rep) {
		visible[id] = true
	}

	for _, id := range PropertyRows {
		c.rows(id, visible[id])
	}
}
