package preprocess

import (
	"image"

	"github.com/disintegration/imaging"
)

const (
	sharpenOriginalWeight = 0.7
	sharpenFilteredWeight = 0.3
)

// sharpenKernel is the standard 3x3 unsharp kernel: the center pixel is
// amplified and the 4-neighborhood plus diagonals subtracted.
var sharpenKernel = [9]float64{
	-1, -1, -1,
	-1, 9, -1,
	-1, -1, -1,
}

// SharpenBlend applies the 3x3 sharpening kernel and blends the result with
// the original at 70/30 so handwriting edges firm up without amplifying
// paper grain into speckle.
func SharpenBlend(img image.Image) image.Image {
	src := imaging.Clone(img)
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w < 3 || h < 3 {
		return src
	}

	dst := image.NewNRGBA(bounds)
	copy(dst.Pix, src.Pix)

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			for c := 0; c < 3; c++ {
				sum := 0.0
				k := 0
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						i := (y+dy)*src.Stride + (x+dx)*4 + c
						sum += sharpenKernel[k] * float64(src.Pix[i])
						k++
					}
				}
				i := y*dst.Stride + x*4 + c
				blended := sharpenOriginalWeight*float64(src.Pix[i]) + sharpenFilteredWeight*sum
				dst.Pix[i] = clampByte(blended)
			}
			dst.Pix[y*dst.Stride+x*4+3] = src.Pix[y*src.Stride+x*4+3]
		}
	}
	return dst
}
