package panel

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/ethpandaops/glmetrics/internal/scene"
)

// ErrInvalidColor is returned for colour strings that are not #rrggbb.
var ErrInvalidColor = errors.New("invalid hex color")

var hexColorRe = regexp.MustCompile(`^#?([a-fA-F\d]{2})([a-fA-F\d]{2})([a-fA-F\d]{2})$`)

// RGB is a colour as picked by a colour input.
type RGB struct {
	R, G, B uint8
}

// ParseHexColor parses "#rrggbb" (the leading # is optional).
func ParseHexColor(s string) (RGB, error) {
	m := hexColorRe.FindStringSubmatch(s)
	if m == nil {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}

	var out [3]uint8

	for i := range out {
		v, err := strconv.ParseUint(m[i+1], 16, 8)
		if err != nil {
			return RGB{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}

		out[i] = uint8(v)
	}

	return RGB{R: out[0], G: out[1], B: out[2]}, nil
}

// Normalized returns the colour with components scaled to [0, 1].
func (c RGB) Normalized() scene.RGB {
	return scene.RGB{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

// Hex formats the colour as "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
