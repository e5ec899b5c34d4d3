package structure

import (
	"image"
	"log/slog"

	"github.com/petropage/ledgerocr/internal/utils"
)

// Detection tuning. Fallback grid density is derived from the page size:
// ledger sheets in the field average one column per ~150px and one row per
// ~30px at the standard processing resolution.
const (
	fallbackColumnsDivisor = 150
	minFallbackColumns     = 3
	maxFallbackColumns     = 6

	fallbackRowsDivisor = 30
	minFallbackRows     = 5
	maxFallbackRows     = 20

	// minLineCoverage is the fraction of the page dimension a projected
	// line mask peak must span to count as a ruled line.
	minLineCoverage = 0.3

	lineConfidence     = 0.8
	fallbackConfidence = 0.5
)

// Config controls grid detection.
type Config struct {
	HorizontalKernel Kernel
	VerticalKernel   Kernel
	MinLineCoverage  float64
}

// DefaultConfig returns the detection parameters tuned on field ledger scans.
func DefaultConfig() Config {
	return Config{
		HorizontalKernel: HorizontalLineKernel,
		VerticalKernel:   VerticalLineKernel,
		MinLineCoverage:  minLineCoverage,
	}
}

// Detector finds the table grid on a preprocessed page.
type Detector struct {
	cfg    Config
	logger *slog.Logger
}

// NewDetector builds a Detector. A nil logger falls back to slog.Default.
func NewDetector(cfg Config, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{cfg: cfg, logger: logger}
}

// Detect locates table columns and rows in img. It first looks for ruled
// lines via morphological opening of the inverted binary image; pages whose
// grid is too faint fall back to an evenly spaced grid sized from the page
// dimensions.
func (d *Detector) Detect(img image.Image) (*TableStructure, error) {
	gray := utils.ToGray(img)
	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil, utils.ErrEmptyImage
	}

	// Ink becomes foreground so line openings operate on strokes.
	binary := utils.BinarizeOtsu(gray)
	inverted := utils.Invert(binary)

	vertMask := Open(inverted, d.cfg.VerticalKernel)
	horizMask := Open(inverted, d.cfg.HorizontalKernel)

	colXs := maskPeaks(columnProjection(vertMask), float64(h)*d.cfg.MinLineCoverage)
	rowYs := maskPeaks(rowProjection(horizMask), float64(w)*d.cfg.MinLineCoverage)

	ts := &TableStructure{ImageSize: image.Pt(w, h)}

	if len(colXs) >= 2 {
		ts.Columns = columnsFromLines(colXs, lineConfidence)
	} else {
		n := utils.ClampInt(w/fallbackColumnsDivisor, minFallbackColumns, maxFallbackColumns)
		ts.Columns = evenColumns(w, n, fallbackConfidence)
		d.logger.Debug("no ruled vertical lines, using fallback grid", "columns", n)
	}

	if len(rowYs) >= 2 {
		ts.Rows = rowsFromLines(rowYs, lineConfidence)
	} else {
		n := utils.ClampInt(h/fallbackRowsDivisor, minFallbackRows, maxFallbackRows)
		ts.Rows = evenRows(h, n, fallbackConfidence)
		d.logger.Debug("no ruled horizontal lines, using fallback grid", "rows", n)
	}

	ts.Confidence = gridConfidence(ts.Columns, ts.Rows)

	d.logger.Info("table structure detected",
		"columns", len(ts.Columns),
		"rows", len(ts.Rows),
		"confidence", ts.Confidence)
	return ts, nil
}

// columnProjection sums foreground per x coordinate of the vertical line mask.
func columnProjection(mask *image.Gray) []int {
	bounds := mask.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	proj := make([]int, w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if mask.Pix[y*mask.Stride+x] == 255 {
				proj[x]++
			}
		}
	}
	return proj
}

func rowProjection(mask *image.Gray) []int {
	bounds := mask.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	proj := make([]int, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if mask.Pix[y*mask.Stride+x] == 255 {
				proj[y]++
			}
		}
	}
	return proj
}

// maskPeaks collapses consecutive above-threshold coordinates into their
// midpoints, one per ruled line.
func maskPeaks(proj []int, threshold float64) []int {
	var peaks []int
	start := -1
	for i, v := range proj {
		if float64(v) >= threshold {
			if start < 0 {
				start = i
			}
		} else if start >= 0 {
			peaks = append(peaks, (start+i-1)/2)
			start = -1
		}
	}
	if start >= 0 {
		peaks = append(peaks, (start+len(proj)-1)/2)
	}
	return peaks
}

func columnsFromLines(xs []int, conf float64) []TableColumn {
	cols := make([]TableColumn, 0, len(xs)-1)
	for i := 0; i < len(xs)-1; i++ {
		cols = append(cols, TableColumn{
			Position:   i,
			LeftX:      xs[i],
			RightX:     xs[i+1],
			Confidence: conf,
		})
	}
	return cols
}

func rowsFromLines(ys []int, conf float64) []TableRow {
	rows := make([]TableRow, 0, len(ys)-1)
	for i := 0; i < len(ys)-1; i++ {
		rows = append(rows, TableRow{
			Index:      i,
			TopY:       ys[i],
			BottomY:    ys[i+1],
			Confidence: conf,
		})
	}
	return rows
}

func evenColumns(width, n int, conf float64) []TableColumn {
	cols := make([]TableColumn, 0, n)
	for i := 0; i < n; i++ {
		cols = append(cols, TableColumn{
			Position:   i,
			LeftX:      i * width / n,
			RightX:     (i + 1) * width / n,
			Confidence: conf,
		})
	}
	return cols
}

func evenRows(height, n int, conf float64) []TableRow {
	rows := make([]TableRow, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, TableRow{
			Index:      i,
			TopY:       i * height / n,
			BottomY:    (i + 1) * height / n,
			Confidence: conf,
		})
	}
	return rows
}

// gridConfidence averages per-column and per-row confidence, weighting
// columns higher because field extraction depends on them directly.
func gridConfidence(cols []TableColumn, rows []TableRow) float64 {
	if len(cols) == 0 || len(rows) == 0 {
		return 0
	}
	colSum := 0.0
	for _, c := range cols {
		colSum += c.Confidence
	}
	rowSum := 0.0
	for _, r := range rows {
		rowSum += r.Confidence
	}
	return 0.6*(colSum/float64(len(cols))) + 0.4*(rowSum/float64(len(rows)))
}
