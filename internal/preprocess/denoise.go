package preprocess

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// bilateral filter parameters: a compact kernel keeps the filter affordable
// on full-page scans while still flattening sensor noise between pen strokes.
const (
	bilateralRadius     = 2
	bilateralSigmaSpace = 2.0
	bilateralSigmaColor = 30.0
)

// RemoveNoise applies an edge-preserving bilateral smoothing pass. Flat paper
// regions are averaged while the sharp ink/paper transitions that OCR needs
// are left intact.
func RemoveNoise(img image.Image) image.Image {
	src := imaging.Clone(img)
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	dst := image.NewNRGBA(bounds)

	// Precompute the spatial weight table.
	size := 2*bilateralRadius + 1
	spatial := make([]float64, size*size)
	for dy := -bilateralRadius; dy <= bilateralRadius; dy++ {
		for dx := -bilateralRadius; dx <= bilateralRadius; dx++ {
			d2 := float64(dx*dx + dy*dy)
			spatial[(dy+bilateralRadius)*size+(dx+bilateralRadius)] =
				math.Exp(-d2 / (2 * bilateralSigmaSpace * bilateralSigmaSpace))
		}
	}

	colorDenom := 2 * bilateralSigmaColor * bilateralSigmaColor
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			ci := y*src.Stride + x*4
			cr := float64(src.Pix[ci])
			cg := float64(src.Pix[ci+1])
			cb := float64(src.Pix[ci+2])

			var sumR, sumG, sumB, sumW float64
			for dy := -bilateralRadius; dy <= bilateralRadius; dy++ {
				ny := y + dy
				if ny < 0 || ny >= h {
					continue
				}
				for dx := -bilateralRadius; dx <= bilateralRadius; dx++ {
					nx := x + dx
					if nx < 0 || nx >= w {
						continue
					}
					ni := ny*src.Stride + nx*4
					nr := float64(src.Pix[ni])
					ng := float64(src.Pix[ni+1])
					nb := float64(src.Pix[ni+2])

					dr := nr - cr
					dg := ng - cg
					db := nb - cb
					rangeW := math.Exp(-(dr*dr + dg*dg + db*db) / colorDenom)
					w := spatial[(dy+bilateralRadius)*size+(dx+bilateralRadius)] * rangeW

					sumR += nr * w
					sumG += ng * w
					sumB += nb * w
					sumW += w
				}
			}

			di := y*dst.Stride + x*4
			if sumW > 0 {
				dst.Pix[di] = uint8(sumR/sumW + 0.5)
				dst.Pix[di+1] = uint8(sumG/sumW + 0.5)
				dst.Pix[di+2] = uint8(sumB/sumW + 0.5)
			} else {
				dst.Pix[di] = src.Pix[ci]
				dst.Pix[di+1] = src.Pix[ci+1]
				dst.Pix[di+2] = src.Pix[ci+2]
			}
			dst.Pix[di+3] = src.Pix[ci+3]
		}
	}
	return dst
}
