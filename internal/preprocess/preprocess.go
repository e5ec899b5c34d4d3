package preprocess

import (
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/petropage/ledgerocr/internal/utils"
)

// Config controls the preprocessing pipeline. Individual enhancement steps
// can be toggled; the load, resize and binarize steps always run.
type Config struct {
	TargetWidth     int
	TargetHeight    int
	EnhanceContrast bool
	RemoveNoise     bool
	Sharpen         bool

	// CLAHE parameters for contrast enhancement.
	ClipLimit float64
	TileGrid  int

	// Adaptive binarization parameters.
	BinarizeWindow int
	BinarizeOffset int
}

// DefaultConfig returns preprocessing defaults tuned for photographed
// ledger sheets.
func DefaultConfig() Config {
	return Config{
		TargetWidth:     1920,
		TargetHeight:    1080,
		EnhanceContrast: true,
		RemoveNoise:     true,
		Sharpen:         true,
		ClipLimit:       3.0,
		TileGrid:        8,
		BinarizeWindow:  11,
		BinarizeOffset:  2,
	}
}

// Pipeline normalizes a raw ledger photograph into an OCR-ready binary image.
type Pipeline struct {
	cfg Config
}

// NewPipeline creates a preprocessing pipeline with the given configuration.
func NewPipeline(cfg Config) *Pipeline {
	if cfg.TargetWidth <= 0 || cfg.TargetHeight <= 0 {
		cfg.TargetWidth = DefaultConfig().TargetWidth
		cfg.TargetHeight = DefaultConfig().TargetHeight
	}
	if cfg.BinarizeWindow <= 1 {
		cfg.BinarizeWindow = DefaultConfig().BinarizeWindow
	}
	return &Pipeline{cfg: cfg}
}

// Run loads the image at rawPath, applies the full preprocessing sequence and
// writes the binarized result next to the input (suffix "_processed") or to
// outputPath when given. Returns the path of the processed image.
//
// Only a load/decode failure aborts; every enhancement step degrades
// gracefully on its own input.
func (p *Pipeline) Run(rawPath, outputPath string) (string, error) {
	img, meta, err := utils.LoadImage(rawPath)
	if err != nil {
		return "", fmt.Errorf("preprocess: %w", err)
	}
	slog.Debug("Loaded ledger image", "path", rawPath, "width", meta.Width, "height", meta.Height)

	processed := p.Process(img)

	if outputPath == "" {
		ext := filepath.Ext(rawPath)
		outputPath = strings.TrimSuffix(rawPath, ext) + "_processed.png"
	}
	if err := utils.SaveImagePNG(processed, outputPath); err != nil {
		return "", fmt.Errorf("preprocess: %w", err)
	}
	return outputPath, nil
}

// Process applies the preprocessing sequence to an in-memory image and
// returns the binarized result.
func (p *Pipeline) Process(img image.Image) *image.Gray {
	// Orientation heuristic: ledger sheets are landscape, so a portrait
	// photograph was almost certainly taken sideways.
	bounds := img.Bounds()
	if bounds.Dy() > bounds.Dx() {
		img = imaging.Rotate270(img)
		slog.Debug("Rotated portrait image 90° clockwise")
	}

	resized, err := utils.ResizeImage(img, utils.ImageConstraints{
		MaxWidth:  p.cfg.TargetWidth,
		MaxHeight: p.cfg.TargetHeight,
		MinWidth:  32,
		MinHeight: 32,
	})
	if err == nil {
		img = resized
	}

	img = Deskew(img)

	if p.cfg.RemoveNoise {
		img = RemoveNoise(img)
	}
	if p.cfg.EnhanceContrast {
		img = EnhanceContrast(img, p.cfg.ClipLimit, p.cfg.TileGrid)
	}
	if p.cfg.Sharpen {
		img = SharpenBlend(img)
	}

	return AdaptiveBinarize(utils.ToGray(img), p.cfg.BinarizeWindow, p.cfg.BinarizeOffset)
}
