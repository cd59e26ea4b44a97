// Package render composes placed product images into the final raster.
//
// [Render] fills the canvas with its background colour, resamples every
// placement to its pixel rectangle with a Lanczos filter and pastes it
// opaquely, then encodes the result as JPEG:
//
//	placements := layout.Compute(images, fractions, canvas)
//	artifact, err := render.Render(canvas, placements, render.WithQuality(90))
//	os.WriteFile("promo.jpg", artifact.Data, 0o644)
//
// Rendering is deterministic: identical inputs give identical bytes.
// Placements are drawn in slot order, so a later slot covers an earlier one
// where they overlap.
package render
