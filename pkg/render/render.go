package render

import (
	"bytes"
	"image"
	"image/draw"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/promocanvas/pkg/errors"
	"github.com/matzehuels/promocanvas/pkg/layout"
)

// DefaultQuality is the JPEG quality used when none is configured.
const DefaultQuality = 90

// FormatJPEG is the only output format.
const FormatJPEG = "jpeg"

// Artifact is an encoded composite image.
type Artifact struct {
	Data    []byte
	Width   int
	Height  int
	Format  string
	Quality int
}

// Option configures [Render].
type Option func(*options)

type options struct {
	quality int
	filter  imaging.ResampleFilter
}

// WithQuality sets the JPEG quality (1-100). Out of range values are
// clamped.
func WithQuality(q int) Option {
	return func(o *options) {
		o.quality = min(max(q, 1), 100)
	}
}

// WithFilter overrides the resampling filter (Lanczos by default).
func WithFilter(f imaging.ResampleFilter) Option {
	return func(o *options) { o.filter = f }
}

// Render draws placements on canvas and encodes the result.
func Render(canvas layout.Canvas, placements []layout.Placement, opts ...Option) (*Artifact, error) {
	o := options{quality: DefaultQuality, filter: imaging.Lanczos}
	for _, opt := range opts {
		opt(&o)
	}

	img, err := Compose(canvas, placements, o.filter)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(o.quality)); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode jpeg")
	}
	return &Artifact{
		Data:    buf.Bytes(),
		Width:   canvas.Width,
		Height:  canvas.Height,
		Format:  FormatJPEG,
		Quality: o.quality,
	}, nil
}

// Compose returns the unencoded composite.
func Compose(canvas layout.Canvas, placements []layout.Placement, filter imaging.ResampleFilter) (*image.NRGBA, error) {
	if err := canvas.Validate(); err != nil {
		return nil, err
	}
	dst := imaging.New(canvas.Width, canvas.Height, canvas.Background)

	for _, p := range placements {
		if p.Image == nil || p.Image.Image == nil || p.Width <= 0 || p.Height <= 0 {
			continue
		}
		r := p.Rect()
		scaled := imaging.Resize(p.Image.Image, r.Dx(), r.Dy(), filter)
		// Flatten transparency onto the background so the paste is opaque.
		flat := imaging.New(r.Dx(), r.Dy(), canvas.Background)
		draw.Draw(flat, flat.Bounds(), scaled, image.Point{}, draw.Over)
		dst = imaging.Paste(dst, flat, r.Min)
	}
	return dst, nil
}
