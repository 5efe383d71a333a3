package instrument

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethpandaops/glmetrics/internal/display"
	"github.com/ethpandaops/glmetrics/internal/gl"
	"github.com/ethpandaops/glmetrics/internal/metrics"
)

func testLog() logrus.FieldLogger {
	log := logrus.New()
	log.SetLevel(logrus.DebugLevel)

	return log
}

type captureDisplay struct {
	shown []string
	err   error
}

func (d *captureDisplay) Show(text string) error {
	if d.err != nil {
		return d.err
	}

	d.shown = append(d.shown, text)

	return nil
}

func TestTick_Scenario(t *testing.T) {
	disp := &captureDisplay{}
	ctx := New(testLog(), disp)
	rec := gl.NewRecorder()
	dc := NewInterceptor(rec, ctx)

	dc.DrawArrays(gl.Triangles, 0, 9)
	dc.DrawArrays(gl.LineStrip, 0, 5)
	dc.DrawArrays(gl.Points, 0, 10)
	ctx.SetNumberOfObjects(64)

	report, err := ctx.Tick(1000)
	require.NoError(t, err)

	assert.Equal(t, int64(3), report.Triangles)
	assert.Equal(t, int64(4), report.Lines)
	assert.Equal(t, int64(10), report.Points)
	assert.Equal(t, 1, report.FPS)
	assert.Equal(t, 64, report.Objects)
	assert.Equal(t, uint64(1), report.Frame)

	require.Len(t, disp.shown, 1)
	assert.Equal(t,
		"1.0 fps\n64 objects\n3 triangles\n4 lines\n10 points",
		disp.shown[0],
	)

	// Counters are reset after every tick.
	assert.Equal(t, metrics.Counts{}, ctx.Counts())

	report, err = ctx.Tick(1016)
	require.NoError(t, err)
	assert.Equal(t, int64(0), report.Primitives())
	assert.Equal(t, 2, report.FPS)
	assert.Equal(t, "2.0 fps\n64 objects\n0 triangles\n0 lines\n0 points", disp.shown[1])
}

func TestTick_StandaloneOmitsObjects(t *testing.T) {
	disp := &captureDisplay{}
	ctx := New(testLog(), disp, WithVariant(VariantStandalone))

	ctx.SetNumberOfObjects(12)
	require.NoError(t, ctx.Observe(gl.Triangles, 6))

	_, err := ctx.Tick(0)
	require.NoError(t, err)

	assert.Equal(t, "1.0 fps\n2 triangles\n0 lines\n0 points", disp.shown[0])
}

func TestTick_ObjectCountLatency(t *testing.T) {
	disp := &captureDisplay{}
	ctx := New(testLog(), disp)

	_, err := ctx.Tick(0)
	require.NoError(t, err)

	ctx.SetNumberOfObjects(5)
	assert.Len(t, disp.shown, 1, "setting the object count must not redraw")
	assert.Contains(t, disp.shown[0], "0 objects")

	_, err = ctx.Tick(16)
	require.NoError(t, err)
	assert.Contains(t, disp.shown[1], "5 objects")
}

func TestTick_DisplayErrorStillResets(t *testing.T) {
	disp := &captureDisplay{err: display.ErrDisplayTargetMissing}

	var handled []error
	var reports []Report

	ctx := New(testLog(), disp,
		WithErrorHandler(func(err error) { handled = append(handled, err) }),
		WithReportHandler(ReportHandlerFunc(func(r Report) { reports = append(reports, r) })),
	)

	require.NoError(t, ctx.Observe(gl.Points, 7))

	report, err := ctx.Tick(0)
	require.Error(t, err)
	assert.ErrorIs(t, err, display.ErrDisplayTargetMissing)
	assert.Equal(t, int64(7), report.Points)
	assert.Equal(t, metrics.Counts{}, ctx.Counts())
	require.Len(t, handled, 1)
	assert.ErrorIs(t, ctx.LastError(), display.ErrDisplayTargetMissing)

	// Handlers still receive the report.
	require.Len(t, reports, 1)
	assert.Equal(t, int64(7), reports[0].Points)
}

func TestTick_ReportHandlersInOrder(t *testing.T) {
	var order []string

	ctx := New(testLog(), nil,
		WithReportHandler(ReportHandlerFunc(func(Report) { order = append(order, "a") })),
		WithReportHandler(ReportHandlerFunc(func(Report) { order = append(order, "b") })),
	)

	_, err := ctx.Tick(0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, order)
}

func TestWithWindow(t *testing.T) {
	ctx := New(testLog(), nil, WithWindow(100))

	_, _ = ctx.Tick(0)
	_, _ = ctx.Tick(50)

	report, err := ctx.Tick(100)
	require.NoError(t, err)
	assert.Equal(t, 2, report.FPS)
}

func TestInterceptor_PreservesArguments(t *testing.T) {
	ctx := New(testLog(), nil)
	rec := gl.NewRecorder()
	dc := NewInterceptor(rec, ctx)

	dc.DrawArrays(gl.TriangleFan, 7, 12)
	dc.DrawElements(gl.Lines, 24, gl.UnsignedInt, 96)
	dc.DrawArraysInstanced(gl.TriangleStrip, 2, 4, 50)

	assert.Equal(t, []gl.Call{
		{Kind: gl.CallDrawArrays, Mode: gl.TriangleFan, First: 7, Count: 12},
		{Kind: gl.CallDrawElements, Mode: gl.Lines, Count: 24, IndexType: gl.UnsignedInt, Offset: 96},
		{Kind: gl.CallDrawArraysInstanced, Mode: gl.TriangleStrip, First: 2, Count: 4, InstanceCount: 50},
	}, rec.Calls())
	assert.Same(t, rec, dc.Unwrap())
}

func TestInterceptor_InstancedCount(t *testing.T) {
	ctx := New(testLog(), nil)
	dc := NewInterceptor(gl.NewRecorder(), ctx)

	// 3 vertices per instance, 100 instances -> 300 vertices -> 100 triangles.
	dc.DrawArraysInstanced(gl.Triangles, 0, 3, 100)

	assert.Equal(t, int64(100), ctx.Counts().Triangles)
}

func TestInterceptor_InstancedNegativeCounts(t *testing.T) {
	ctx := New(testLog(), nil)
	rec := gl.NewRecorder()
	dc := NewInterceptor(rec, ctx)

	dc.DrawArraysInstanced(gl.Triangles, 0, 3, 10)
	dc.DrawArraysInstanced(gl.Triangles, 0, 3, -100)
	dc.DrawArraysInstanced(gl.Triangles, 0, -3, -100)
	dc.DrawArraysInstanced(gl.Points, 0, -5, 4)

	assert.Equal(t, metrics.Counts{Triangles: 10}, ctx.Counts())
	assert.Len(t, rec.Calls(), 4)
	assert.Equal(t, -100, rec.Calls()[2].InstanceCount)
}

func TestInterceptor_StandaloneIgnoresInstanced(t *testing.T) {
	ctx := New(testLog(), nil, WithVariant(VariantStandalone))
	rec := gl.NewRecorder()
	dc := NewInterceptor(rec, ctx)

	dc.DrawArraysInstanced(gl.Triangles, 0, 3, 100)

	assert.Equal(t, metrics.Counts{}, ctx.Counts())
	assert.Len(t, rec.Calls(), 1, "instanced draw must still be forwarded")
}

func TestInterceptor_UnsupportedModeStillDraws(t *testing.T) {
	var handled []error

	ctx := New(testLog(), nil, WithErrorHandler(func(err error) {
		handled = append(handled, err)
	}))
	rec := gl.NewRecorder()
	dc := NewInterceptor(rec, ctx)

	dc.DrawArrays(gl.Triangles, 0, 3)
	dc.DrawElements(gl.DrawMode(0x000A), 12, gl.UnsignedShort, 0)

	assert.Len(t, rec.Calls(), 2)
	assert.Equal(t, metrics.Counts{Triangles: 1}, ctx.Counts())

	require.Len(t, handled, 1)
	assert.True(t, errors.Is(handled[0], metrics.ErrUnsupportedPrimitiveType))
	assert.ErrorIs(t, ctx.LastError(), metrics.ErrUnsupportedPrimitiveType)
}

func TestObserve_Unsupported(t *testing.T) {
	ctx := New(testLog(), nil)

	require.NoError(t, ctx.Observe(gl.Lines, 10))

	err := ctx.Observe(gl.DrawMode(99), 10)
	assert.ErrorIs(t, err, metrics.ErrUnsupportedPrimitiveType)
	assert.Equal(t, metrics.Counts{Lines: 5}, ctx.Counts())
}

func TestIndependentContexts(t *testing.T) {
	a := New(testLog(), nil)
	b := New(testLog(), nil)

	NewInterceptor(gl.NewRecorder(), a).DrawArrays(gl.Points, 0, 4)
	NewInterceptor(gl.NewRecorder(), b).DrawArrays(gl.Points, 0, 9)

	assert.Equal(t, int64(4), a.Counts().Points)
	assert.Equal(t, int64(9), b.Counts().Points)
}

func TestParseVariant(t *testing.T) {
	v, err := ParseVariant("")
	require.NoError(t, err)
	assert.Equal(t, VariantModule, v)

	v, err = ParseVariant("Standalone")
	require.NoError(t, err)
	assert.Equal(t, VariantStandalone, v)

	_, err = ParseVariant("legacy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid variant")
}

func TestReport_Text(t *testing.T) {
	r := Report{FPS: 59, Objects: 3, Triangles: 1, Lines: 2, Points: 3}
	assert.Equal(t, "59.0 fps\n3 objects\n1 triangles\n2 lines\n3 points", r.Text())
	assert.Equal(t, int64(6), r.Primitives())
	assert.Equal(t, "module", r.Variant.String())
}
