package gl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrawMode_String(t *testing.T) {
	tests := []struct {
		mode DrawMode
		want string
	}{
		{Points, "points"},
		{Lines, "lines"},
		{LineLoop, "line_loop"},
		{LineStrip, "line_strip"},
		{Triangles, "triangles"},
		{TriangleStrip, "triangle_strip"},
		{TriangleFan, "triangle_fan"},
		{DrawMode(0x1234), "unknown(0x1234)"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.mode.String())
	}
}

func TestDrawMode_WebGLValues(t *testing.T) {
	// Values are passed through to WebGL unchanged.
	assert.Equal(t, DrawMode(0), Points)
	assert.Equal(t, DrawMode(4), Triangles)
	assert.Equal(t, DrawMode(6), TriangleFan)
	assert.Equal(t, IndexType(0x1403), UnsignedShort)
}

func TestRecorder_RecordsArguments(t *testing.T) {
	r := NewRecorder()

	r.DrawArrays(Points, 3, 10)
	r.DrawElements(Triangles, 36, UnsignedShort, 128)
	r.DrawArraysInstanced(TriangleStrip, 0, 4, 100)

	calls := r.Calls()
	require.Len(t, calls, 3)

	assert.Equal(t, Call{Kind: CallDrawArrays, Mode: Points, First: 3, Count: 10}, calls[0])
	assert.Equal(t, Call{
		Kind:      CallDrawElements,
		Mode:      Triangles,
		Count:     36,
		IndexType: UnsignedShort,
		Offset:    128,
	}, calls[1])
	assert.Equal(t, Call{
		Kind:          CallDrawArraysInstanced,
		Mode:          TriangleStrip,
		Count:         4,
		InstanceCount: 100,
	}, calls[2])
	assert.Equal(t, 3, r.Total())
}

func TestRecorder_CountOnly(t *testing.T) {
	r := &Recorder{}

	r.DrawArrays(Lines, 0, 2)
	r.DrawArrays(Lines, 0, 2)

	assert.Empty(t, r.Calls())
	assert.Equal(t, 2, r.Total())

	r.Reset()
	assert.Equal(t, 0, r.Total())
}

func TestCallKind_String(t *testing.T) {
	assert.Equal(t, "drawArrays", CallDrawArrays.String())
	assert.Equal(t, "drawElements", CallDrawElements.String())
	assert.Equal(t, "drawArraysInstanced", CallDrawArraysInstanced.String())
	assert.Equal(t, "unknown", CallKind(0).String())
}
