package layout

import (
	"image"
	"math"

	"github.com/matzehuels/promocanvas/pkg/catalog"
)

// Placement is the computed position and size of one image on the canvas.
// Coordinates are in canvas pixels with the origin at the top left.
type Placement struct {
	Image  *catalog.ResolvedImage
	Slot   int // index among the placed images
	X, Y   float64
	Width  float64
	Height float64
}

// Right returns the x coordinate of the right edge.
func (p Placement) Right() float64 { return p.X + p.Width }

// Bottom returns the y coordinate of the bottom edge.
func (p Placement) Bottom() float64 { return p.Y + p.Height }

// CenterX returns the horizontal centre.
func (p Placement) CenterX() float64 { return p.X + p.Width/2 }

// Rect rounds the placement to whole pixels. The origin and the size are
// rounded independently so the pixel size never drifts by the origin's
// fractional part.
func (p Placement) Rect() image.Rectangle {
	x := int(math.Round(p.X))
	y := int(math.Round(p.Y))
	w := max(int(math.Round(p.Width)), 1)
	h := max(int(math.Round(p.Height)), 1)
	return image.Rect(x, y, x+w, y+h)
}
