package utils

import (
	"errors"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// ImageConstraints bounds the working resolution of a ledger photograph.
type ImageConstraints struct {
	MaxWidth  int
	MaxHeight int
	MinWidth  int
	MinHeight int
}

// DefaultImageConstraints returns the default bounds for ledger processing.
func DefaultImageConstraints() ImageConstraints {
	return ImageConstraints{
		MaxWidth:  1920,
		MaxHeight: 1080,
		MinWidth:  32,
		MinHeight: 32,
	}
}

// ResizeImage scales an image down to fit within the constraint bounds while
// preserving aspect ratio. Images already within bounds are returned as-is;
// upscaling is never performed. Uses Lanczos resampling.
func ResizeImage(img image.Image, constraints ImageConstraints) (image.Image, error) {
	if img == nil {
		return nil, &ImageProcessingError{Operation: "resize", Err: errors.New("input image is nil")}
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	scaleX := float64(constraints.MaxWidth) / float64(width)
	scaleY := float64(constraints.MaxHeight) / float64(height)
	scale := math.Min(scaleX, scaleY)
	if scale >= 1.0 {
		return img, nil
	}

	newWidth := int(float64(width) * scale)
	newHeight := int(float64(height) * scale)
	if newWidth < constraints.MinWidth {
		newWidth = constraints.MinWidth
	}
	if newHeight < constraints.MinHeight {
		newHeight = constraints.MinHeight
	}

	return imaging.Resize(img, newWidth, newHeight, imaging.Lanczos), nil
}

// CropBand extracts a horizontal band of the image spanning the given
// vertical fraction range and x pixel range. Fractions outside [0,1] and
// inverted ranges are clamped. Returns false if the band degenerates to
// nothing.
func CropBand(img image.Image, topFrac, bottomFrac float64, leftX, rightX int) (image.Image, bool) {
	bounds := img.Bounds()
	h := bounds.Dy()

	top := bounds.Min.Y + int(clamp01(topFrac)*float64(h))
	bottom := bounds.Min.Y + int(clamp01(bottomFrac)*float64(h))
	if leftX < bounds.Min.X {
		leftX = bounds.Min.X
	}
	if rightX > bounds.Max.X {
		rightX = bounds.Max.X
	}
	if bottom <= top || rightX <= leftX {
		return nil, false
	}
	return imaging.Crop(img, image.Rect(leftX, top, rightX, bottom)), true
}

// CropRect crops to the intersection of r and the image bounds. Returns
// false when the intersection is empty.
func CropRect(img image.Image, r image.Rectangle) (image.Image, bool) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return nil, false
	}
	return imaging.Crop(img, r), true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ClampInt bounds v to [low, high].
func ClampInt(v, low, high int) int {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
