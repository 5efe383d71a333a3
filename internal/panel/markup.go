package panel

import (
	"bytes"
	"html/template"

	"github.com/ethpandaops/glmetrics/internal/scene"
)

var markupTmpl = template.Must(template.New("panel").Parse(`<div>
<table>
  <tr>
    <td>
      <select class="representations" style="width: 100%">
        {{- range .Representations}}
        <option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>
        {{- end}}
      </select>
    </td>
  </tr>
  <tr id="lw_row" style="display: none;">
    <td>Line width</td>
    <td><input class="lw" type="range" min="1" max="20" value="{{.LineWidth}}"><output>{{.LineWidth}}</output></td>
  </tr>
  <tr id="ec_row" style="display: none;">
    <td><label>Edge color: </label><input class="edgeColor" type="color" value="{{.EdgeColor}}"/></td>
  </tr>
  <tr id="ps_row" style="display: none;">
    <td>Point size (Points)</td>
    <td><input class="ps" type="range" min="1" max="20" value="{{.PointSize}}"><output>{{.PointSize}}</output></td>
  </tr>
  <tr>
    <td>Selector type</td>
    <td>
      <select class="pickerType" style="width: 100%">
        {{- range .PickTypes}}
        <option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>
        {{- end}}
      </select>
    </td>
  </tr>
  <tr id="selection_color_row" style="display: none;">
    <td>Selected block color ('r' toggles rubberband): </td>
    <td><input class="selectionColor" type="color" value="{{.SelectionColor}}"/></td>
  </tr>
  {{- range .Layers}}
  <tr>
    <td>Layer {{.Value}} ({{.Label}})</td>
    <td><input type="checkbox" class="layer{{.Value}}Visibility"{{if .Selected}} checked{{end}}></td>
  </tr>
  {{- end}}
  <tr>
    <td>nx </td>
    <td><input class="nx" type="range" min="{{.MinGrid}}" max="{{.MaxGrid}}" value="{{.NX}}"><output>{{.NX}}</output></td>
  </tr>
  <tr>
    <td>ny </td>
    <td><input class="ny" type="range" min="{{.MinGrid}}" max="{{.MaxGrid}}" value="{{.NY}}"><output>{{.NY}}</output></td>
  </tr>
</table>
<hr>
<table>
  <tr>
    <td>Scroll sensitivity </td>
    <td><input class="scrollSensitivity" type="range" min="0" max="1" step="0.01" value="{{.ScrollSensitivity}}"><output>{{.ScrollSensitivity}}</output></td>
  </tr>
  <tr>
    <td>Camera Orientation Widget</td>
    <td><input type="checkbox" class="camManipulatorVisibility"{{if .ShowManipulator}} checked{{end}}></td>
  </tr>
</table>
<table>
  <tr>
    {{- range .Views}}
    <td><button class="view{{.}}button" style="width: 100%">View {{.}}</button></td>
    <td><button class="view{{.}}erasebutton" style="width: 100%">&#x2716;</button></td>
    {{- end}}
  </tr>
</table>
<table>
  <tr>
    <td><button class="resetviewbutton" style="width: 100%">Reset View</button></td>
    <td><button class="clearselectionbutton" style="width: 100%">Clear Selection</button></td>
  </tr>
</table>
</div>`))

type option struct {
	Value    int
	Label    string
	Selected bool
}

type markupData struct {
	Settings
	Representations []option
	PickTypes       []option
	Layers          []option
	Views           []int
	SelectionColor  string
	MinGrid         int
	MaxGrid         int
}

var (
	representationLabels = []string{"Points", "Wireframe", "Surface", "Surface With Edges"}
	pickTypeLabels       = []string{"Area Picker", "Hover Pre-select", "None"}
	layerLabels          = []string{"Cones", "Spheres", "Cylinders"}
)

// Markup renders the control panel HTML for settings.
func Markup(s Settings) (string, error) {
	data := markupData{
		Settings:       s,
		SelectionColor: toRGB(s.SelectedColor).Hex(),
		MinGrid:        MinGrid,
		MaxGrid:        MaxGrid,
	}

	for i, label := range representationLabels {
		data.Representations = append(data.Representations, option{
			Value: i, Label: label, Selected: scene.Representation(i) == s.Representation,
		})
	}

	for i, label := range pickTypeLabels {
		data.PickTypes = append(data.PickTypes, option{
			Value: i, Label: label, Selected: scene.PickType(i) == s.PickType,
		})
	}

	for i, label := range layerLabels {
		data.Layers = append(data.Layers, option{Value: i, Label: label, Selected: s.Layers[i]})
	}

	for i := 1; i <= NumCameraSlots; i++ {
		data.Views = append(data.Views, i)
	}

	var buf bytes.Buffer
	if err := markupTmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func toRGB(c scene.RGB) RGB {
	return RGB{
		R: uint8(c.R*255 + 0.5),
		G: uint8(c.G*255 + 0.5),
		B: uint8(c.B*255 + 0.5),
	}
}
