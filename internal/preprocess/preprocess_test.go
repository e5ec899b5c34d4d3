package preprocess

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petropage/ledgerocr/internal/testutil"
	"github.com/petropage/ledgerocr/internal/utils"
)

func TestProcessProducesBinaryImage(t *testing.T) {
	p := NewPipeline(DefaultConfig())
	out := p.Process(testutil.GridImage(400, 200, 4, 6))

	require.NotNil(t, out)
	for _, v := range out.Pix {
		assert.True(t, v == 0 || v == 255, "binarized pixel must be 0 or 255, got %d", v)
	}
}

func TestProcessRotatesPortrait(t *testing.T) {
	p := NewPipeline(DefaultConfig())
	out := p.Process(testutil.BlankImage(200, 400))

	b := out.Bounds()
	assert.Greater(t, b.Dx(), b.Dy())
}

func TestProcessDownscalesToTarget(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TargetWidth = 300
	cfg.TargetHeight = 200
	p := NewPipeline(cfg)

	out := p.Process(testutil.BlankImage(600, 400))
	assert.LessOrEqual(t, out.Bounds().Dx(), 300)
	assert.LessOrEqual(t, out.Bounds().Dy(), 200)
}

func TestRunWritesProcessedFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "page.png")
	require.NoError(t, utils.SaveImagePNG(testutil.GridImage(300, 200, 3, 4), src))

	p := NewPipeline(DefaultConfig())
	outPath, err := p.Run(src, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "page_processed.png"), outPath)

	_, err = os.Stat(outPath)
	assert.NoError(t, err)
}

func TestRunMissingFile(t *testing.T) {
	p := NewPipeline(DefaultConfig())
	_, err := p.Run(filepath.Join(t.TempDir(), "absent.png"), "")
	assert.Error(t, err)
}

func TestSkewAngleOnCleanPage(t *testing.T) {
	// An axis-aligned grid must not trigger a rotation.
	angle := SkewAngle(testutil.GridImage(300, 200, 4, 5))
	assert.InDelta(t, 0, angle, 1.5)
}

func TestDeskewKeepsSize(t *testing.T) {
	img := testutil.DiagonalStrokeImage(300, 200)
	out := Deskew(img)
	require.NotNil(t, out)
	assert.GreaterOrEqual(t, out.Bounds().Dx(), 300)
}

func TestAdaptiveBinarizeHandlesGradient(t *testing.T) {
	// A dark stroke on a lighting gradient survives local thresholding.
	gray := utils.ToGray(testutil.BlankImage(100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			gray.Pix[y*gray.Stride+x] = uint8(100 + x)
		}
	}
	for x := 10; x < 90; x++ {
		gray.Pix[50*gray.Stride+x] = 20
	}

	out := AdaptiveBinarize(gray, 11, 2)
	blackCount := 0
	for x := 20; x < 80; x++ {
		if out.GrayAt(x, 50).Y == 0 {
			blackCount++
		}
	}
	assert.Greater(t, blackCount, 50)
}

func TestSharpenBlendKeepsBounds(t *testing.T) {
	img := testutil.GridImage(50, 40, 2, 2)
	out := SharpenBlend(img)
	assert.Equal(t, img.Bounds().Size(), out.Bounds().Size())
}

func TestEnhanceContrastSpreadsHistogram(t *testing.T) {
	// A low-contrast page gains dynamic range.
	flat := testutil.BlankImage(160, 160)
	for i := 0; i < len(flat.Pix); i += 4 {
		v := uint8(120 + (i/4)%20)
		flat.Pix[i], flat.Pix[i+1], flat.Pix[i+2] = v, v, v
	}

	out := EnhanceContrast(flat, 3.0, 8)
	_, inVar := utils.MeanAndVariance(utils.ToGray(flat))
	_, outVar := utils.MeanAndVariance(utils.ToGray(out))
	assert.Greater(t, outVar, inVar)
}
