package utils

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func bimodalImage() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			if x < 10 {
				img.Pix[y*img.Stride+x] = 30
			} else {
				img.Pix[y*img.Stride+x] = 220
			}
		}
	}
	return img
}

func TestOtsuThresholdSeparatesModes(t *testing.T) {
	threshold := OtsuThreshold(bimodalImage())
	assert.GreaterOrEqual(t, threshold, uint8(30))
	assert.Less(t, threshold, uint8(220))
}

func TestBinarizeOtsu(t *testing.T) {
	bin := BinarizeOtsu(bimodalImage())
	assert.Equal(t, uint8(0), bin.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(255), bin.GrayAt(19, 0).Y)
}

func TestInvert(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 2, 1))
	img.Pix[0] = 0
	img.Pix[1] = 200
	inv := Invert(img)
	assert.Equal(t, uint8(255), inv.Pix[0])
	assert.Equal(t, uint8(55), inv.Pix[1])
}

func TestHistogram(t *testing.T) {
	hist := Histogram(bimodalImage())
	assert.Equal(t, 200, hist[30])
	assert.Equal(t, 200, hist[220])
}

func TestMeanAndVariance(t *testing.T) {
	mean, variance := MeanAndVariance(bimodalImage())
	assert.InDelta(t, 125, mean, 1e-9)
	assert.InDelta(t, 95*95, variance, 1e-9)
}

func TestClampInt(t *testing.T) {
	assert.Equal(t, 3, ClampInt(1, 3, 6))
	assert.Equal(t, 6, ClampInt(9, 3, 6))
	assert.Equal(t, 4, ClampInt(4, 3, 6))
}

func TestCropBand(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 100, 100))
	band, ok := CropBand(img, 0.02, 0.10, 0, 100)
	assert.True(t, ok)
	assert.Equal(t, 8, band.Bounds().Dy())
	assert.Equal(t, 100, band.Bounds().Dx())

	_, ok = CropBand(img, 0.5, 0.5, 0, 100)
	assert.False(t, ok)
	_, ok = CropBand(img, 0.1, 0.2, 60, 40)
	assert.False(t, ok)
}

func TestIsSupportedImage(t *testing.T) {
	assert.True(t, IsSupportedImage("page.JPG"))
	assert.True(t, IsSupportedImage("/a/b/page.webp"))
	assert.False(t, IsSupportedImage("page.txt"))
	assert.False(t, IsSupportedImage("page"))
}
