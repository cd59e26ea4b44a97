// Package layout computes where resolved product images go on the canvas.
//
// Geometry depends only on the number of images (1-3), their aspect ratios,
// their size fractions and the canvas size:
//
//   - a vertical band from 10% to 90% of the canvas height holds every image
//   - a slot's width is floor(fraction × canvas width); its height follows
//     the source aspect ratio and is capped at the band height (the width is
//     then recomputed from the aspect ratio)
//   - images are centred vertically in the band
//   - one image is centred horizontally; two are centred as a group with a
//     spacing of 10% of the canvas width; three are separated by four equal
//     gaps that share the remaining width
//
// [Compute] is pure and deterministic. Horizontal positions always use the
// final, possibly capped, widths.
package layout
