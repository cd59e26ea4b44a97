package layout

import (
	"math"

	"github.com/matzehuels/promocanvas/pkg/catalog"
)

const (
	// MaxImages is the number of slots on a canvas; extra images are ignored.
	MaxImages = 3

	// DefaultFraction applies to images without a fraction.
	DefaultFraction = 0.25

	// pairSpacing separates two images, as a share of the canvas width.
	pairSpacing = 0.1
)

// Compute places images on canvas using fractions[i] for images[i].
// Only present images must be passed; absent slots are never reserved.
// Images beyond [MaxImages] are ignored and a missing fraction defaults to
// [DefaultFraction].
func Compute(images []*catalog.ResolvedImage, fractions []float64, canvas Canvas) []Placement {
	if len(images) > MaxImages {
		images = images[:MaxImages]
	}
	if len(images) == 0 {
		return nil
	}

	W := float64(canvas.Width)
	bandTop, band := canvas.BandTop(), canvas.BandHeight()

	placements := make([]Placement, len(images))
	for i, img := range images {
		frac := DefaultFraction
		if i < len(fractions) {
			frac = fractions[i]
		}
		w, h := fit(img, frac, W, band)
		placements[i] = Placement{
			Image:  img,
			Slot:   i,
			Y:      bandTop + (band-h)/2,
			Width:  w,
			Height: h,
		}
	}

	switch len(placements) {
	case 1:
		placements[0].X = W/2 - placements[0].Width/2
	case 2:
		spacing := pairSpacing * W
		w1, w2 := placements[0].Width, placements[1].Width
		startX := (W - (w1 + w2 + spacing)) / 2
		placements[0].X = startX
		placements[1].X = startX + w1 + spacing
	case 3:
		total := 0.0
		for _, p := range placements {
			total += p.Width
		}
		gap := (W - total) / 4
		offset := 0.0
		for i := range placements {
			placements[i].X = gap*float64(i+1) + offset
			offset += placements[i].Width
		}
	}
	return placements
}

// fit sizes one image: width from the fraction, height from the aspect
// ratio, both scaled down when the height exceeds the band.
func fit(img *catalog.ResolvedImage, frac, canvasWidth, band float64) (w, h float64) {
	srcW, srcH := float64(img.Width()), float64(img.Height())
	if srcW <= 0 || srcH <= 0 {
		return 0, 0
	}
	w = math.Floor(frac * canvasWidth)
	h = w * srcH / srcW
	if h > band {
		h = band
		w = band * srcW / srcH
	}
	return w, h
}
