package preprocess

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/petropage/ledgerocr/internal/utils"
)

// maxDeskewAngle bounds the correction we are willing to apply. A larger
// measured angle means the orientation heuristic already failed, and rotating
// further would only make things worse.
const maxDeskewAngle = 45.0

// Deskew estimates the dominant skew of foreground (ink) pixels and rotates
// the image to level it. The estimate comes from the second-order central
// moments of the ink mask after Otsu thresholding, which tracks the angle of
// the minimum-area rectangle around the handwriting for the small tilts seen
// in practice.
func Deskew(img image.Image) image.Image {
	angle := SkewAngle(img)
	if angle == 0 {
		return img
	}
	// Replicated borders keep the page edges from turning into black wedges.
	return imaging.Rotate(img, angle, color.White)
}

// SkewAngle returns the correction angle in degrees, normalized to
// (-45°, 45°] following the OpenCV min-area-rect convention.
func SkewAngle(img image.Image) float64 {
	gray := utils.ToGray(img)
	binary := utils.BinarizeOtsu(gray)

	bounds := binary.Bounds()
	var (
		n          float64
		sumX, sumY float64
	)
	// Ink is dark: foreground pixels are the zeros of the binary image.
	for y := 0; y < bounds.Dy(); y++ {
		row := binary.Pix[y*binary.Stride : y*binary.Stride+bounds.Dx()]
		for x, v := range row {
			if v == 0 {
				n++
				sumX += float64(x)
				sumY += float64(y)
			}
		}
	}
	if n < 64 {
		return 0 // not enough ink to measure
	}

	meanX := sumX / n
	meanY := sumY / n
	var mu20, mu02, mu11 float64
	for y := 0; y < bounds.Dy(); y++ {
		row := binary.Pix[y*binary.Stride : y*binary.Stride+bounds.Dx()]
		for x, v := range row {
			if v == 0 {
				dx := float64(x) - meanX
				dy := float64(y) - meanY
				mu20 += dx * dx
				mu02 += dy * dy
				mu11 += dx * dy
			}
		}
	}

	if mu20 == mu02 && mu11 == 0 {
		return 0
	}
	angle := 0.5 * math.Atan2(2*mu11, mu20-mu02) * 180 / math.Pi

	if angle < -maxDeskewAngle {
		angle = -(90 + angle)
	} else {
		angle = -angle
	}
	if angle <= -maxDeskewAngle || angle > maxDeskewAngle {
		return 0
	}
	return angle
}
