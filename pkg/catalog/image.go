package catalog

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // register WebP with image.Decode

	"github.com/matzehuels/promocanvas/pkg/errors"
)

// ResolvedImage is a decoded product image together with where it came from.
// Values are owned by the [ImageCache] and must not be modified.
type ResolvedImage struct {
	ID        string
	SourceURL string
	Image     image.Image
}

// Width returns the pixel width of the image.
func (r *ResolvedImage) Width() int { return r.Image.Bounds().Dx() }

// Height returns the pixel height of the image.
func (r *ResolvedImage) Height() int { return r.Image.Bounds().Dy() }

// decodeImage decodes raster bytes, applying EXIF orientation.
func decodeImage(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecode, err, "decode image")
	}
	return img, nil
}

// tooSmall reports whether both dimensions fall below min.
func tooSmall(img image.Image, min int) bool {
	b := img.Bounds()
	return b.Dx() < min && b.Dy() < min
}
