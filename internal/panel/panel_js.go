//go:build js && wasm

package panel

import (
	"fmt"
	"syscall/js"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/glmetrics/internal/scene"
)

// JSApp adapts a BenchmarkApp instance created by the rendering module
// to App.
type JSApp struct {
	app    js.Value
	module js.Value
}

var _ App = (*JSApp)(nil)

// NewJSApp wraps app. module is the object carrying the LayerID and
// PickType enums.
func NewJSApp(app, module js.Value) *JSApp {
	return &JSApp{app: app, module: module}
}

func (a *JSApp) Initialize()      { a.app.Call("initialize") }
func (a *JSApp) Render()          { a.app.Call("render") }
func (a *JSApp) ResetView()       { a.app.Call("resetView") }
func (a *JSApp) ClearSelections() { a.app.Call("clearSelections") }

func (a *JSApp) CreateDatasets(nx, ny int) int {
	v := a.app.Call("createDatasets", nx, ny)
	if v.Type() != js.TypeNumber {
		return 0
	}

	return v.Int()
}

func (a *JSApp) SetEdgeColor(r, g, b float64) { a.app.Call("setEdgeColor", r, g, b) }

func (a *JSApp) SetLayerVisibility(layer scene.Layer, visible bool) {
	names := map[scene.Layer]string{
		scene.LayerCone:     "Cone",
		scene.LayerSphere:   "Sphere",
		scene.LayerCylinder: "Cylinder",
	}

	a.app.Call("setLayerVisibility", a.enum("LayerID", names[layer], int(layer)), visible)
}

func (a *JSApp) SetLineWidth(width float64) { a.app.Call("setLineWidth", width) }

func (a *JSApp) SetPickType(p scene.PickType) {
	names := map[scene.PickType]string{
		scene.PickArea:  "Area",
		scene.PickHover: "Hover",
		scene.PickNone:  "None",
	}

	a.app.Call("setPickType", a.enum("PickType", names[p], int(p)))
}

func (a *JSApp) SetScrollSensitivity(v float64) { a.app.Call("setScrollSensitivity", v) }
func (a *JSApp) SetPointSize(size float64)      { a.app.Call("setPointSize", size) }

func (a *JSApp) SetRepresentation(rep scene.Representation) {
	a.app.Call("setRepresentation", int(rep))
}

func (a *JSApp) SetSelectedBlockColor(r, g, b float64) {
	a.app.Call("setSelectedBlockColor", r, g, b)
}

func (a *JSApp) SetShowCameraManipulator(show bool) {
	a.app.Call("setShowCameraManipulator", show)
}

func (a *JSApp) GetCameraState() scene.CameraState {
	v := a.app.Call("getCameraState")

	return scene.CameraState{
		ViewUp:     vec3(v.Get("viewUp")),
		Position:   vec3(v.Get("position")),
		FocalPoint: vec3(v.Get("focalPoint")),
		ViewAngle:  v.Get("viewAngle").Float(),
	}
}

func (a *JSApp) SetCameraState(state scene.CameraState) {
	obj := js.Global().Get("Object").New()
	obj.Set("viewUp", jsVec3(state.ViewUp))
	obj.Set("position", jsVec3(state.Position))
	obj.Set("focalPoint", jsVec3(state.FocalPoint))
	obj.Set("viewAngle", state.ViewAngle)

	a.app.Call("setCameraState", obj)
}

// enum returns module[group][name], falling back to the numeric value.
func (a *JSApp) enum(group, name string, fallback int) any {
	if a.module.Type() != js.TypeObject {
		return fallback
	}

	if enum := a.module.Get(group); enum.Type() == js.TypeObject {
		if v := enum.Get(name); !v.IsUndefined() {
			return v
		}
	}

	return fallback
}

func vec3(v js.Value) scene.Vec3 {
	var out scene.Vec3

	if v.Type() != js.TypeObject {
		return out
	}

	for i := range out {
		out[i] = v.Index(i).Float()
	}

	return out
}

func jsVec3(v scene.Vec3) js.Value {
	return js.ValueOf([]any{v[0], v[1], v[2]})
}

// Binding is a control panel mounted in the page.
type Binding struct {
	log       logrus.FieldLogger
	doc       js.Value
	container js.Value
	funcs     []js.Func
}

// RowSetter returns a RowFunc toggling rows of doc by id.
func RowSetter(doc js.Value) RowFunc {
	return func(id string, visible bool) {
		el := doc.Call("getElementById", id)
		if el.IsNull() || el.IsUndefined() {
			return
		}

		display := "none"
		if visible {
			display = "table-row"
		}

		el.Get("style").Set("display", display)
	}
}

// Mount renders the control panel into a new div appended to the body,
// wires every control to c and returns the binding. className styles the
// container.
func Mount(log logrus.FieldLogger, c *Controller, className string) (*Binding, error) {
	doc := js.Global().Get("document")

	html, err := Markup(c.Settings())
	if err != nil {
		return nil, fmt.Errorf("rendering panel markup: %w", err)
	}

	container := doc.Call("createElement", "div")
	if className != "" {
		container.Call("setAttribute", "class", className)
	}

	container.Set("innerHTML", html)
	container.Get("style").Set("display", "block")
	doc.Call("querySelector", "body").Call("appendChild", container)

	b := &Binding{
		log:       log.WithField("component", "panel"),
		doc:       doc,
		container: container,
	}

	b.wire(c)

	return b, nil
}

func (b *Binding) wire(c *Controller) {
	b.on(".scrollSensitivity", "input", func(el js.Value) {
		c.SetScrollSensitivity(number(el))
	})
	b.on(".representations", "change", func(el js.Value) {
		c.SetRepresentation(scene.Representation(int(number(el))))
	})
	b.on(".lw", "input", func(el js.Value) {
		c.SetLineWidth(number(el))
	})
	b.on(".edgeColor", "input", func(el js.Value) {
		b.check(c.SetEdgeColor(el.Get("value").String()))
	})
	b.on(".ps", "input", func(el js.Value) {
		c.SetPointSize(number(el))
	})
	b.on(".pickerType", "change", func(el js.Value) {
		c.SetPickType(scene.PickType(int(number(el))))
	})
	b.on(".selectionColor", "input", func(el js.Value) {
		b.check(c.SetSelectionColor(el.Get("value").String()))
	})

	for l := scene.LayerCone; l < scene.NumLayers; l++ {
		layer := l
		b.on(fmt.Sprintf(".layer%dVisibility", int(l)), "change", func(el js.Value) {
			c.SetLayerVisibility(layer, el.Get("checked").Bool())
		})
	}

	datasets := func(js.Value) {
		nx := number(b.doc.Call("querySelector", ".nx"))
		ny := number(b.doc.Call("querySelector", ".ny"))
		c.SetDatasets(int(nx), int(ny))
	}
	b.on(".nx", "input", datasets)
	b.on(".ny", "input", datasets)

	b.on(".camManipulatorVisibility", "change", func(el js.Value) {
		c.SetShowCameraManipulator(el.Get("checked").Bool())
	})

	for i := 0; i < NumCameraSlots; i++ {
		slot := i
		b.on(fmt.Sprintf(".view%dbutton", i+1), "click", func(js.Value) {
			b.check(c.ActivateView(slot))
		})
		b.on(fmt.Sprintf(".view%derasebutton", i+1), "click", func(js.Value) {
			b.check(c.EraseView(slot))
		})
	}

	b.on(".resetviewbutton", "click", func(js.Value) { c.ResetView() })
	b.on(".clearselectionbutton", "click", func(js.Value) { c.ClearSelection() })
}

func (b *Binding) on(selector, event string, fn func(el js.Value)) {
	el := b.doc.Call("querySelector", selector)
	if el.IsNull() || el.IsUndefined() {
		b.log.WithField("selector", selector).Warn("Panel control missing")

		return
	}

	f := js.FuncOf(func(_ js.Value, _ []js.Value) any {
		fn(el)

		return nil
	})

	el.Call("addEventListener", event, f)
	b.funcs = append(b.funcs, f)
}

func (b *Binding) check(err error) {
	if err != nil {
		b.log.WithError(err).Warn("Panel event rejected")
	}
}

// Release removes the panel and its event handlers.
func (b *Binding) Release() {
	b.container.Call("remove")

	for _, f := range b.funcs {
		f.Release()
	}

	b.funcs = nil
}

func number(el js.Value) float64 {
	return js.Global().Call("Number", el.Get("value")).Float()
}
