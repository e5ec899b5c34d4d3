package preprocess

import (
	"image"

	"github.com/disintegration/imaging"
)

// EnhanceContrast performs contrast-limited adaptive histogram equalization
// on the luminance channel only, leaving hue untouched. The image is divided
// into tileGrid×tileGrid tiles; each tile's histogram is clipped at clipLimit
// times the uniform bin height before equalization, and per-pixel lookups are
// bilinearly interpolated between the four surrounding tile mappings.
func EnhanceContrast(img image.Image, clipLimit float64, tileGrid int) image.Image {
	if tileGrid < 1 {
		tileGrid = 8
	}
	if clipLimit <= 0 {
		clipLimit = 3.0
	}

	src := imaging.Clone(img)
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w < tileGrid || h < tileGrid {
		return src
	}

	// Extract luminance.
	lum := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*src.Stride + x*4
			r := int(src.Pix[i])
			g := int(src.Pix[i+1])
			b := int(src.Pix[i+2])
			lum[y*w+x] = uint8((299*r + 587*g + 114*b) / 1000)
		}
	}

	maps := buildTileMappings(lum, w, h, tileGrid, clipLimit)

	tileW := float64(w) / float64(tileGrid)
	tileH := float64(h) / float64(tileGrid)

	dst := image.NewNRGBA(bounds)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := lum[y*w+x]
			eq := interpolateTiles(maps, tileGrid, tileW, tileH, x, y, v)

			// Scale RGB by the luminance ratio to keep chroma stable.
			i := y*src.Stride + x*4
			old := float64(v)
			if old < 1 {
				old = 1
			}
			ratio := float64(eq) / old
			dst.Pix[i] = clampByte(float64(src.Pix[i]) * ratio)
			dst.Pix[i+1] = clampByte(float64(src.Pix[i+1]) * ratio)
			dst.Pix[i+2] = clampByte(float64(src.Pix[i+2]) * ratio)
			dst.Pix[i+3] = src.Pix[i+3]
		}
	}
	return dst
}

// buildTileMappings computes the clipped-equalization lookup table for each tile.
func buildTileMappings(lum []uint8, w, h, grid int, clipLimit float64) [][256]uint8 {
	maps := make([][256]uint8, grid*grid)
	for ty := 0; ty < grid; ty++ {
		for tx := 0; tx < grid; tx++ {
			x0 := tx * w / grid
			x1 := (tx + 1) * w / grid
			y0 := ty * h / grid
			y1 := (ty + 1) * h / grid

			var hist [256]float64
			count := 0
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					hist[lum[y*w+x]]++
					count++
				}
			}
			if count == 0 {
				continue
			}

			// Clip and redistribute the excess uniformly.
			limit := clipLimit * float64(count) / 256.0
			excess := 0.0
			for i := range hist {
				if hist[i] > limit {
					excess += hist[i] - limit
					hist[i] = limit
				}
			}
			spread := excess / 256.0
			cdf := 0.0
			var lut [256]uint8
			for i := range hist {
				cdf += hist[i] + spread
				lut[i] = clampByte(cdf * 255.0 / float64(count))
			}
			maps[ty*grid+tx] = lut
		}
	}
	return maps
}

// interpolateTiles looks v up in the four neighboring tile LUTs, bilinearly
// weighted by pixel position relative to the tile centers.
func interpolateTiles(maps [][256]uint8, grid int, tileW, tileH float64, x, y int, v uint8) uint8 {
	fx := float64(x)/tileW - 0.5
	fy := float64(y)/tileH - 0.5

	tx0 := int(fx)
	ty0 := int(fy)
	if fx < 0 {
		tx0 = 0
	}
	if fy < 0 {
		ty0 = 0
	}
	tx1 := tx0 + 1
	ty1 := ty0 + 1
	if tx1 >= grid {
		tx1 = grid - 1
	}
	if ty1 >= grid {
		ty1 = grid - 1
	}
	if tx0 >= grid {
		tx0 = grid - 1
	}
	if ty0 >= grid {
		ty0 = grid - 1
	}

	wx := fx - float64(tx0)
	wy := fy - float64(ty0)
	if wx < 0 {
		wx = 0
	}
	if wy < 0 {
		wy = 0
	}

	v00 := float64(maps[ty0*grid+tx0][v])
	v01 := float64(maps[ty0*grid+tx1][v])
	v10 := float64(maps[ty1*grid+tx0][v])
	v11 := float64(maps[ty1*grid+tx1][v])

	top := v00*(1-wx) + v01*wx
	bot := v10*(1-wx) + v11*wx
	return clampByte(top*(1-wy) + bot*wy)
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
