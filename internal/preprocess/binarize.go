package preprocess

import "image"

// AdaptiveBinarize thresholds gray against the local mean of a window×window
// neighborhood minus offset. Local thresholding survives the uneven lighting
// of photographed ledger pages where a single global threshold loses either
// the shaded or the glared half.
//
// An integral image keeps the per-pixel cost constant regardless of window
// size.
func AdaptiveBinarize(gray *image.Gray, window, offset int) *image.Gray {
	if window < 3 {
		window = 3
	}
	if window%2 == 0 {
		window++
	}

	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := image.NewGray(bounds)
	if w == 0 || h == 0 {
		return out
	}

	// integral[y][x] holds the sum of all pixels above and left of (x, y).
	integral := make([]uint64, (w+1)*(h+1))
	stride := w + 1
	for y := 0; y < h; y++ {
		rowSum := uint64(0)
		for x := 0; x < w; x++ {
			rowSum += uint64(gray.Pix[y*gray.Stride+x])
			integral[(y+1)*stride+x+1] = integral[y*stride+x+1] + rowSum
		}
	}

	half := window / 2
	for y := 0; y < h; y++ {
		y0 := y - half
		y1 := y + half + 1
		if y0 < 0 {
			y0 = 0
		}
		if y1 > h {
			y1 = h
		}
		for x := 0; x < w; x++ {
			x0 := x - half
			x1 := x + half + 1
			if x0 < 0 {
				x0 = 0
			}
			if x1 > w {
				x1 = w
			}

			area := uint64((x1 - x0) * (y1 - y0))
			sum := integral[y1*stride+x1] - integral[y0*stride+x1] -
				integral[y1*stride+x0] + integral[y0*stride+x0]
			mean := int(sum / area)

			if int(gray.Pix[y*gray.Stride+x]) > mean-offset {
				out.Pix[y*out.Stride+x] = 255
			} else {
				out.Pix[y*out.Stride+x] = 0
			}
		}
	}
	return out
}
