package structure

import "image"

// Kernel is a flat rectangular structuring element.
type Kernel struct {
	Width  int
	Height int
}

// HorizontalLineKernel and VerticalLineKernel pick out ruled table lines:
// a long thin opening keeps only strokes at least as long as the kernel.
var (
	HorizontalLineKernel = Kernel{Width: 40, Height: 1}
	VerticalLineKernel   = Kernel{Width: 1, Height: 40}
)

// Erode keeps a foreground pixel only when every pixel under the kernel is
// foreground. Foreground is 255.
func Erode(src *image.Gray, k Kernel) *image.Gray {
	return morph(src, k, true)
}

// Dilate sets a pixel to foreground when any pixel under the kernel is
// foreground.
func Dilate(src *image.Gray, k Kernel) *image.Gray {
	return morph(src, k, false)
}

// Open is erosion followed by dilation: it removes foreground features
// smaller than the kernel while preserving the extent of those that remain.
func Open(src *image.Gray, k Kernel) *image.Gray {
	return Dilate(Erode(src, k), k)
}

func morph(src *image.Gray, k Kernel, erode bool) *image.Gray {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	dst := image.NewGray(bounds)

	if k.Width < 1 {
		k.Width = 1
	}
	if k.Height < 1 {
		k.Height = 1
	}
	halfW := k.Width / 2
	halfH := k.Height / 2

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var out uint8
			if erode {
				out = 255
			}
			for ky := -halfH; ky <= k.Height-1-halfH; ky++ {
				yy := y + ky
				if yy < 0 || yy >= h {
					if erode {
						out = 0
					}
					continue
				}
				for kx := -halfW; kx <= k.Width-1-halfW; kx++ {
					xx := x + kx
					if xx < 0 || xx >= w {
						if erode {
							out = 0
						}
						continue
					}
					v := src.Pix[yy*src.Stride+xx]
					if erode && v == 0 {
						out = 0
					} else if !erode && v == 255 {
						out = 255
					}
				}
			}
			dst.Pix[y*dst.Stride+x] = out
		}
	}
	return dst
}
