package scene

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethpandaops/glmetrics/internal/gl"
	"github.com/ethpandaops/glmetrics/internal/metrics"
)

func testLog() logrus.FieldLogger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	return log
}

// tally counts the primitives in recorded calls.
func tally(t *testing.T, calls []gl.Call) metrics.Counts {
	t.Helper()

	pc := metrics.NewPrimCounters()

	for _, c := range calls {
		count := int64(c.Count)
		if c.Kind == gl.CallDrawArraysInstanced {
			count *= int64(c.InstanceCount)
		}

		require.NoError(t, pc.Add(c.Mode, count))
	}

	return pc.Load()
}

func TestMeshSizes(t *testing.T) {
	assert.Equal(t, Mesh{Vertices: 17, Triangles: 30, Edges: 32}, ConeMesh(16))
	assert.Equal(t, Mesh{Vertices: 226, Triangles: 448, Edges: 464}, SphereMesh(16, 16))
	assert.Equal(t, Mesh{Vertices: 64, Triangles: 60, Edges: 48}, CylinderMesh(16))
}

func TestCreateDatasets(t *testing.T) {
	s := New(testLog(), gl.NewRecorder(), Options{})

	assert.Equal(t, 0, s.NumberOfObjects())
	assert.Equal(t, 192, s.CreateDatasets(8, 8))
	assert.Equal(t, 192, s.NumberOfObjects())
	assert.Equal(t, 3*32*32, s.CreateDatasets(32, 32))
	assert.Equal(t, 0, s.CreateDatasets(-1, 4))
}

func TestRender_Representations(t *testing.T) {
	tests := []struct {
		rep   Representation
		kinds map[gl.DrawMode]int
	}{
		{RepresentationPoints, map[gl.DrawMode]int{gl.Points: 12}},
		{RepresentationWireframe, map[gl.DrawMode]int{gl.Lines: 12}},
		{RepresentationSurface, map[gl.DrawMode]int{gl.Triangles: 12}},
		{RepresentationSurfaceWithEdges, map[gl.DrawMode]int{gl.Triangles: 12, gl.Lines: 12}},
	}

	for _, tt := range tests {
		t.Run(tt.rep.String(), func(t *testing.T) {
			rec := gl.NewRecorder()
			s := New(testLog(), rec, Options{})
			s.CreateDatasets(2, 2)
			s.SetRepresentation(tt.rep)

			s.Render()

			modes := map[gl.DrawMode]int{}
			for _, c := range rec.Calls() {
				modes[c.Mode]++
			}

			assert.Equal(t, tt.kinds, modes)
			assert.Equal(t, s.Expected(), tally(t, rec.Calls()))
		})
	}
}

func TestRender_ExpectedCounts(t *testing.T) {
	s := New(testLog(), gl.NewRecorder(), Options{})
	s.CreateDatasets(2, 3)

	// 6 cells of cone + sphere + cylinder.
	assert.Equal(t, metrics.Counts{
		Triangles: 6 * (30 + 448 + 60),
		Lines:     6 * (32 + 464 + 48),
	}, s.Expected())

	s.SetRepresentation(RepresentationPoints)
	assert.Equal(t, metrics.Counts{Points: 6 * (17 + 226 + 64)}, s.Expected())
}

func TestRender_Instancing(t *testing.T) {
	rec := gl.NewRecorder()
	s := New(testLog(), rec, Options{Instancing: true})
	s.CreateDatasets(4, 4)
	s.SetRepresentation(RepresentationSurface)

	s.Render()

	calls := rec.Calls()
	require.Len(t, calls, 3)

	for i, c := range calls {
		assert.Equal(t, gl.CallDrawArraysInstanced, c.Kind)
		assert.Equal(t, gl.Triangles, c.Mode)
		assert.Equal(t, 16, c.InstanceCount)
		assert.Equal(t, 3*s.Mesh(Layer(i)).Triangles, c.Count)
	}

	assert.Equal(t, s.Expected(), tally(t, calls))
}

func TestRender_LayerVisibility(t *testing.T) {
	rec := gl.NewRecorder()
	s := New(testLog(), rec, Options{})
	s.CreateDatasets(1, 1)
	s.SetRepresentation(RepresentationSurface)

	s.SetLayerVisibility(LayerSphere, false)
	s.SetLayerVisibility(Layer(7), false)

	assert.False(t, s.LayerVisible(LayerSphere))
	assert.True(t, s.LayerVisible(LayerCone))
	assert.False(t, s.LayerVisible(Layer(7)))

	s.Render()

	calls := rec.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, 3*30, calls[0].Count)
	assert.Equal(t, 3*60, calls[1].Count)
}

func TestRender_Empty(t *testing.T) {
	rec := gl.NewRecorder()
	s := New(testLog(), rec, Options{})

	s.Render()

	assert.Zero(t, rec.Total())
	assert.Equal(t, uint64(1), s.Frames())
}

func TestSetRepresentation_IgnoresUnknown(t *testing.T) {
	s := New(testLog(), gl.NewRecorder(), Options{})

	s.SetRepresentation(RepresentationPoints)
	s.SetRepresentation(Representation(9))

	assert.Equal(t, RepresentationPoints, s.Representation())
}

func TestSelections(t *testing.T) {
	s := New(testLog(), gl.NewRecorder(), Options{})
	s.CreateDatasets(2, 2)

	s.Select(0, 1)
	assert.Zero(t, s.Selected(), "picking disabled by default")

	s.SetPickType(PickArea)
	s.Select(0, 1, 1, 11, 12, -1)
	assert.Equal(t, 3, s.Selected())

	s.ClearSelections()
	assert.Zero(t, s.Selected())

	s.Select(2)
	s.CreateDatasets(2, 2)
	assert.Zero(t, s.Selected())
}

func TestCameraState(t *testing.T) {
	s := New(testLog(), gl.NewRecorder(), Options{})
	s.CreateDatasets(3, 5)
	s.ResetView()

	cam := s.GetCameraState()
	assert.Equal(t, Vec3{50, 100, 50}, cam.FocalPoint)
	assert.Equal(t, Vec3{0, 1, 0}, cam.ViewUp)
	assert.Equal(t, 30.0, cam.ViewAngle)

	custom := CameraState{Position: Vec3{1, 2, 3}, ViewAngle: 45}
	s.SetCameraState(custom)
	assert.Equal(t, custom, s.GetCameraState())

	s.ResetView()
	assert.Equal(t, cam, s.GetCameraState())
}

func TestSetters(t *testing.T) {
	s := New(testLog(), gl.NewRecorder(), Options{})

	s.SetLineWidth(3)
	s.SetPointSize(5)
	s.SetEdgeColor(0.8, 0.8, 0.8)
	s.SetSelectedBlockColor(0.952, 0.937, 0.368)
	s.SetScrollSensitivity(0.15)
	s.SetPickType(PickHover)

	assert.Equal(t, 3.0, s.LineWidth())
	assert.Equal(t, 5.0, s.PointSize())
	assert.Equal(t, RGB{0.8, 0.8, 0.8}, s.EdgeColor())
	assert.Equal(t, RGB{0.952, 0.937, 0.368}, s.SelectedBlockColor())
	assert.Equal(t, 0.15, s.ScrollSensitivity())
	assert.Equal(t, PickHover, s.PickType())
}

func TestParseLayer(t *testing.T) {
	l, err := ParseLayer("Sphere")
	require.NoError(t, err)
	assert.Equal(t, LayerSphere, l)

	_, err = ParseLayer("torus")
	require.Error(t, err)
}

func TestParseRepresentation(t *testing.T) {
	tests := []struct {
		in      string
		want    Representation
		wantErr bool
	}{
		{in: "points", want: RepresentationPoints},
		{in: "Surface_With_Edges", want: RepresentationSurfaceWithEdges},
		{in: "1", want: RepresentationWireframe},
		{in: "3", want: RepresentationSurfaceWithEdges},
		{in: "4", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "volume", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRepresentation(tt.in)
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePickType(t *testing.T) {
	p, err := ParsePickType("HOVER")
	require.NoError(t, err)
	assert.Equal(t, PickHover, p)

	_, err = ParsePickType("lasso")
	require.Error(t, err)
}
