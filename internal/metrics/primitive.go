// Package metrics converts draw calls into primitive counts.
package metrics

import (
	"errors"
	"fmt"

	"github.com/ethpandaops/glmetrics/internal/gl"
)

// ErrUnsupportedPrimitiveType is returned when a draw mode has no entry
// in the primitive table.
var ErrUnsupportedPrimitiveType = errors.New("unsupported primitive type")

// Bucket is the kind of primitive a draw mode produces.
type Bucket uint8

const (
	BucketPoints Bucket = iota
	BucketLines
	BucketTriangles

	numBuckets = int(BucketTriangles) + 1
)

// String returns the human-readable name of the bucket.
func (b Bucket) String() string {
	switch b {
	case BucketPoints:
		return "points"
	case BucketLines:
		return "lines"
	case BucketTriangles:
		return "triangles"
	default:
		return fmt.Sprintf("unknown(%d)", b)
	}
}

type primitiveInfo struct {
	bucket Bucket
	count  func(n int64) int64
}

// primitiveTable maps every supported draw mode to its bucket and the
// conversion from vertex/element count to primitive count. Division
// truncates toward zero. Strips and fans with too few vertices draw
// nothing, so they count zero rather than going negative.
var primitiveTable = map[gl.DrawMode]primitiveInfo{
	gl.Points:        {BucketPoints, func(n int64) int64 { return n }},
	gl.LineLoop:      {BucketLines, func(n int64) int64 { return n }},
	gl.LineStrip:     {BucketLines, func(n int64) int64 { return atLeastZero(n - 1) }},
	gl.Lines:         {BucketLines, func(n int64) int64 { return n / 2 }},
	gl.TriangleStrip: {BucketTriangles, func(n int64) int64 { return atLeastZero(n - 2) }},
	gl.TriangleFan:   {BucketTriangles, func(n int64) int64 { return atLeastZero(n - 2) }},
	gl.Triangles:     {BucketTriangles, func(n int64) int64 { return n / 3 }},
}

// Convert returns the bucket and primitive count for a draw call of the
// given mode with count vertices or elements.
func Convert(mode gl.DrawMode, count int64) (Bucket, int64, error) {
	info, ok := primitiveTable[mode]
	if !ok {
		return 0, 0, fmt.Errorf("%w: %s", ErrUnsupportedPrimitiveType, mode)
	}

	// A negative count draws nothing.
	return info.bucket, info.count(atLeastZero(count)), nil
}

// Supported reports whether mode has an entry in the primitive table.
func Supported(mode gl.DrawMode) bool {
	_, ok := primitiveTable[mode]

	return ok
}

func atLeastZero(n int64) int64 {
	if n < 0 {
		return 0
	}

	return n
}
