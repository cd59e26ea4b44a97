package layout

import (
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/promocanvas/pkg/errors"
)

// Default canvas dimensions.
const (
	DefaultWidth  = 634
	DefaultHeight = 300
	maxDimension  = 8192
)

// White is the default background.
var White = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

// Canvas describes the output raster.
type Canvas struct {
	Width      int
	Height     int
	Background color.NRGBA
}

// DefaultCanvas returns a 634x300 white canvas.
func DefaultCanvas() Canvas {
	return Canvas{Width: DefaultWidth, Height: DefaultHeight, Background: White}
}

// Validate checks the canvas dimensions.
func (c Canvas) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "canvas size %dx%d must be positive", c.Width, c.Height)
	}
	if c.Width > maxDimension || c.Height > maxDimension {
		return errors.New(errors.ErrCodeInvalidInput, "canvas size %dx%d exceeds %d", c.Width, c.Height, maxDimension)
	}
	return nil
}

// BandTop is the y coordinate where the image band starts.
func (c Canvas) BandTop() float64 { return 0.1 * float64(c.Height) }

// BandHeight is the height available to images.
func (c Canvas) BandHeight() float64 { return 0.8 * float64(c.Height) }

// ParseColor parses a hex colour ("#336699", "369" or "#369").
// The result is fully opaque.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return White, nil
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	if len(s) != 4 && len(s) != 7 {
		return color.NRGBA{}, errors.New(errors.ErrCodeInvalidInput, "invalid background colour %q", s)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid background colour %q", s)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// FormatColor renders c as "#rrggbb".
func FormatColor(c color.NRGBA) string {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}.Hex()
}
