package utils

import (
	"image"
	"image/color"
)

// ToGray converts any image to 8-bit grayscale using the standard luminance model.
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x, y, color.GrayModel.Convert(img.At(x, y)))
		}
	}
	return gray
}

// Histogram counts pixel intensities of a grayscale image into 256 bins.
func Histogram(gray *image.Gray) [256]int {
	var hist [256]int
	bounds := gray.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := gray.Pix[(y-bounds.Min.Y)*gray.Stride:]
		for x := 0; x < bounds.Dx(); x++ {
			hist[row[x]]++
		}
	}
	return hist
}

// OtsuThreshold computes the global threshold maximizing between-class
// variance over the intensity histogram.
func OtsuThreshold(gray *image.Gray) uint8 {
	hist := Histogram(gray)
	total := 0
	for _, c := range hist {
		total += c
	}
	if total == 0 {
		return 128
	}

	sum := 0.0
	for i, c := range hist {
		sum += float64(i) * float64(c)
	}

	var (
		sumB, wB  float64
		best      float64
		threshold uint8
	)
	for i := 0; i < 256; i++ {
		wB += float64(hist[i])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(i) * float64(hist[i])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			threshold = uint8(i)
		}
	}
	return threshold
}

// BinarizeOtsu thresholds a grayscale image at its Otsu level: pixels above
// the threshold become white, the rest black.
func BinarizeOtsu(gray *image.Gray) *image.Gray {
	return Binarize(gray, OtsuThreshold(gray))
}

// Binarize thresholds a grayscale image at a fixed level.
func Binarize(gray *image.Gray, threshold uint8) *image.Gray {
	bounds := gray.Bounds()
	out := image.NewGray(bounds)
	for y := 0; y < bounds.Dy(); y++ {
		src := gray.Pix[y*gray.Stride : y*gray.Stride+bounds.Dx()]
		dst := out.Pix[y*out.Stride : y*out.Stride+bounds.Dx()]
		for x, v := range src {
			if v > threshold {
				dst[x] = 255
			} else {
				dst[x] = 0
			}
		}
	}
	return out
}

// Invert returns a new grayscale image with intensities flipped.
func Invert(gray *image.Gray) *image.Gray {
	out := image.NewGray(gray.Bounds())
	for i, v := range gray.Pix {
		out.Pix[i] = 255 - v
	}
	return out
}

// MeanAndVariance returns the mean and variance of pixel intensities.
func MeanAndVariance(gray *image.Gray) (float64, float64) {
	bounds := gray.Bounds()
	n := bounds.Dx() * bounds.Dy()
	if n == 0 {
		return 0, 0
	}
	sum := 0.0
	for y := 0; y < bounds.Dy(); y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+bounds.Dx()]
		for _, v := range row {
			sum += float64(v)
		}
	}
	mean := sum / float64(n)
	varSum := 0.0
	for y := 0; y < bounds.Dy(); y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+bounds.Dx()]
		for _, v := range row {
			d := float64(v) - mean
			varSum += d * d
		}
	}
	return mean, varSum / float64(n)
}
