package table

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"strings"

	"github.com/petropage/ledgerocr/internal/ledger"
	"github.com/petropage/ledgerocr/internal/ocr"
	"github.com/petropage/ledgerocr/internal/structure"
	"github.com/petropage/ledgerocr/internal/utils"
)

const (
	// Header text sits in a band between 2% and 10% of the page height on
	// standard ledger sheets.
	headerBandTop    = 0.02
	headerBandBottom = 0.10

	// ValidThreshold is the minimum refined confidence for a table to be
	// extracted from without manual review.
	ValidThreshold = 0.70

	minUsableColumns = 3

	// expectedColumnCount is the full standard layout width; coverage is
	// measured against it.
	expectedColumnCount = 8

	structuralWeight = 0.7
	coverageWeight   = 0.3
)

// Features flags page-level landmarks found outside the data grid.
type Features struct {
	HasHeaderRow    bool `json:"has_header_row"`
	HasTotalsRow    bool `json:"has_totals_row"`
	HasSignatureBox bool `json:"has_signature_box"`
}

// Result is a refined table plus the validity verdict.
type Result struct {
	Structure   *structure.TableStructure `json:"structure"`
	Features    Features                  `json:"features"`
	Valid       bool                      `json:"valid"`
	Suggestions []string                  `json:"suggestions,omitempty"`
}

// Refiner names the columns of a detected grid and scores the result.
type Refiner struct {
	engine ocr.Engine
	logger *slog.Logger
}

// NewRefiner builds a Refiner. A nil logger falls back to slog.Default.
func NewRefiner(engine ocr.Engine, logger *slog.Logger) *Refiner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Refiner{engine: engine, logger: logger}
}

// Refine names each column from its header-band OCR text, rescores the
// structure against the expected ledger layout, and judges validity.
// OCR failure on the header band is not fatal: naming falls back to column
// position.
func (r *Refiner) Refine(ctx context.Context, img image.Image, ts *structure.TableStructure) (*Result, error) {
	if ts == nil || ts.ColumnCount() == 0 {
		return nil, fmt.Errorf("refine table: %w", utils.ErrEmptyImage)
	}

	matched := make(map[ledger.FieldType]bool)
	for i := range ts.Columns {
		col := &ts.Columns[i]
		headerText := r.headerText(ctx, img, col)
		ft, conf := NameColumn(headerText, col.Position)

		col.Type = string(ft)
		if label, ok := ledger.CanonicalLabels[ft]; ok {
			col.Name = label
		} else {
			col.Name = headerText
		}
		col.Confidence = conf
		if ft != ledger.FieldUnknown {
			matched[ft] = true
		}
	}

	structural := structuralConfidence(ts)
	coverage := float64(len(matched)) / float64(expectedColumnCount)
	ts.Confidence = structuralWeight*structural + coverageWeight*coverage

	res := &Result{
		Structure: ts,
		Features:  r.detectFeatures(ctx, img),
	}
	res.Valid, res.Suggestions = validate(ts)

	r.logger.Info("table refined",
		"columns", ts.ColumnCount(),
		"matched_fields", len(matched),
		"confidence", ts.Confidence,
		"valid", res.Valid)
	return res, nil
}

// headerText OCRs the header band above the column, returning "" when the
// band cannot be cropped or the engine fails.
func (r *Refiner) headerText(ctx context.Context, img image.Image, col *structure.TableColumn) string {
	band, ok := utils.CropBand(img, headerBandTop, headerBandBottom, col.LeftX, col.RightX)
	if !ok {
		return ""
	}
	text, err := r.engine.PlainText(ctx, band)
	if err != nil {
		r.logger.Debug("header OCR failed, falling back to position",
			"column", col.Position, "error", err)
		return ""
	}
	return text
}

// structuralConfidence weights column agreement over row agreement because
// extraction is column-driven.
func structuralConfidence(ts *structure.TableStructure) float64 {
	colSum := 0.0
	for _, c := range ts.Columns {
		colSum += c.Confidence
	}
	rowSum := 0.0
	for _, row := range ts.Rows {
		rowSum += row.Confidence
	}
	colMean := 0.0
	if len(ts.Columns) > 0 {
		colMean = colSum / float64(len(ts.Columns))
	}
	rowMean := 0.0
	if len(ts.Rows) > 0 {
		rowMean = rowSum / float64(len(ts.Rows))
	}
	return 0.6*colMean + 0.4*rowMean
}

func validate(ts *structure.TableStructure) (bool, []string) {
	var suggestions []string
	if ts.ColumnCount() < minUsableColumns {
		suggestions = append(suggestions,
			fmt.Sprintf("only %d columns detected; retake the photo with the full table in frame", ts.ColumnCount()))
	}
	if ts.RowCount() == 0 {
		suggestions = append(suggestions, "no data rows detected; check that the page contains entries")
	}
	if ts.Confidence < ValidThreshold {
		suggestions = append(suggestions,
			fmt.Sprintf("structure confidence %.2f is below %.2f; improve lighting or flatten the page", ts.Confidence, ValidThreshold))
	}
	return len(suggestions) == 0, suggestions
}

// Page-level landmark bands and keywords.
const (
	featureHeaderTop    = 0.02
	featureHeaderBottom = 0.15
	totalsBandFraction  = 0.20
	signBandFraction    = 0.15
)

var (
	totalsKeywords    = []string{"total", "grand", "sum"}
	signatureKeywords = []string{"sign", "signature", "manager", "approved"}
)

// detectFeatures scans the page's plain text bands for landmark keywords.
// Failures simply report the feature absent.
func (r *Refiner) detectFeatures(ctx context.Context, img image.Image) Features {
	var f Features

	w := img.Bounds().Dx()
	if band, ok := utils.CropBand(img, featureHeaderTop, featureHeaderBottom, 0, w); ok {
		if text, err := r.engine.PlainText(ctx, band); err == nil {
			f.HasHeaderRow = containsAny(text, keywordList())
		}
	}
	if band, ok := utils.CropBand(img, 1-totalsBandFraction, 1, 0, w); ok {
		if text, err := r.engine.PlainText(ctx, band); err == nil {
			f.HasTotalsRow = containsAny(text, totalsKeywords)
		}
	}
	if band, ok := utils.CropBand(img, 1-signBandFraction, 1, 0, w); ok {
		if text, err := r.engine.PlainText(ctx, band); err == nil {
			f.HasSignatureBox = containsAny(text, signatureKeywords)
		}
	}
	return f
}

func keywordList() []string {
	kws := make([]string, 0, len(headerKeywords))
	for _, hk := range headerKeywords {
		kws = append(kws, hk.keyword)
	}
	return kws
}

func containsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// RowIsUsable reports whether at least half of a row's cells carry text.
func RowIsUsable(cells []string) bool {
	if len(cells) == 0 {
		return false
	}
	filled := 0
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			filled++
		}
	}
	return filled*2 >= len(cells)
}
