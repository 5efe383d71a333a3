package panel

import "github.com/ethpandaops/glmetrics/internal/scene"

// Property row ids of the control panel.
const (
	RowPointSize      = "ps_row"
	RowLineWidth      = "lw_row"
	RowEdgeColor      = "ec_row"
	RowSelectionColor = "selection_color_row"
)

// PropertyRows lists every row whose visibility depends on the
// representation.
var PropertyRows = []string{RowPointSize, RowLineWidth, RowEdgeColor}

// VisibleRows returns the property rows shown for rep.
func VisibleRows(rep scene.Representation) []string {
	switch rep {
	case scene.RepresentationPoints:
		return []string{RowPointSize}
	case scene.RepresentationWireframe:
		return []string{RowLineWidth}
	case scene.RepresentationSurfaceWithEdges:
		return []string{RowLineWidth, RowEdgeColor}
	default:
		return nil
	}
}

// SelectionColorVisible reports whether the selection colour row is shown
// for the pick type.
func SelectionColorVisible(p scene.PickType) bool {
	return p == scene.PickArea
}
