package instrument

import (
	"fmt"
	"strings"
)

// Variant selects which metrics the text block carries.
type Variant uint8

const (
	// VariantModule shows the object count line and counts instanced draws.
	VariantModule Variant = iota
	// VariantStandalone omits the object count and ignores instanced draws.
	VariantStandalone
)

// String returns the human-readable name of the variant.
func (v Variant) String() string {
	switch v {
	case VariantModule:
		return "module"
	case VariantStandalone:
		return "standalone"
	default:
		return fmt.Sprintf("unknown(%d)", v)
	}
}

// ParseVariant parses a variant name.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(s) {
	case "", "module":
		return VariantModule, nil
	case "standalone":
		return VariantStandalone, nil
	default:
		return 0, fmt.Errorf("invalid variant %q (want module or standalone)", s)
	}
}

// Report is the result of one tick: the frame-rate estimate and the
// primitives drawn since the previous tick.
type Report struct {
	Frame       uint64  `json:"frame"`
	TimestampMs float64 `json:"timestamp_ms"`
	FPS         int     `json:"fps"`
	Objects     int     `json:"objects"`
	Triangles   int64   `json:"triangles"`
	Lines       int64   `json:"lines"`
	Points      int64   `json:"points"`
	Variant     Variant `json:"-"`
}

// Text formats the report as the block shown in the display element.
func (r Report) Text() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%.1f fps\n", float64(r.FPS))

	if r.Variant == VariantModule {
		fmt.Fprintf(&b, "%d objects\n", r.Objects)
	}

	fmt.Fprintf(&b, "%d triangles\n", r.Triangles)
	fmt.Fprintf(&b, "%d lines\n", r.Lines)
	fmt.Fprintf(&b, "%d points", r.Points)

	return b.String()
}

// Primitives returns the total number of primitives in the report.
func (r Report) Primitives() int64 {
	return r.Triangles + r.Lines + r.Points
}
