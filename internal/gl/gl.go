// Package gl defines the drawing-operation capability that the
// instrumentation layer decorates. Mode and index-type values match
// the WebGL2 constants so browser contexts can pass them straight through.
package gl

import "fmt"

// DrawMode is the primitive topology of a draw call.
type DrawMode uint32

const (
	Points        DrawMode = 0x0000
	Lines         DrawMode = 0x0001
	LineLoop      DrawMode = 0x0002
	LineStrip     DrawMode = 0x0003
	Triangles     DrawMode = 0x0004
	TriangleStrip DrawMode = 0x0005
	TriangleFan   DrawMode = 0x0006
)

// String returns the human-readable name of the draw mode.
func (m DrawMode) String() string {
	switch m {
	case Points:
		return "points"
	case Lines:
		return "lines"
	case LineLoop:
		return "line_loop"
	case LineStrip:
		return "line_strip"
	case Triangles:
		return "triangles"
	case TriangleStrip:
		return "triangle_strip"
	case TriangleFan:
		return "triangle_fan"
	default:
		return fmt.Sprintf("unknown(0x%04x)", uint32(m))
	}
}

// IndexType is the element type of an index buffer.
type IndexType uint32

const (
	UnsignedByte  IndexType = 0x1401
	UnsignedShort IndexType = 0x1403
	UnsignedInt   IndexType = 0x1405
)

// String returns the human-readable name of the index type.
func (t IndexType) String() string {
	switch t {
	case UnsignedByte:
		return "unsigned_byte"
	case UnsignedShort:
		return "unsigned_short"
	case UnsignedInt:
		return "unsigned_int"
	default:
		return fmt.Sprintf("unknown(0x%04x)", uint32(t))
	}
}

// DrawContext is the set of drawing entry points of a graphics context.
type DrawContext interface {
	// DrawArrays draws count vertices starting at first.
	DrawArrays(mode DrawMode, first, count int)
	// DrawElements draws count indexed elements read from the bound
	// element buffer at the given byte offset.
	DrawElements(mode DrawMode, count int, indexType IndexType, offset int)
	// DrawArraysInstanced draws instanceCount instances of count
	// vertices starting at first.
	DrawArraysInstanced(mode DrawMode, first, count, instanceCount int)
}
