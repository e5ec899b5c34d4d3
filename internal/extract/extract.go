// Package extract pulls raw cell values out of a refined ledger table: it
// OCRs each cell region, classifies the text against the column's field type
// and attaches a per-cell confidence.
package extract

import (
	"context"
	"image"
	"log/slog"
	"strings"
	"time"

	"github.com/petropage/ledgerocr/internal/ledger"
	"github.com/petropage/ledgerocr/internal/ocr"
	"github.com/petropage/ledgerocr/internal/structure"
	"github.com/petropage/ledgerocr/internal/table"
	"github.com/petropage/ledgerocr/internal/utils"
)

// Confidence multipliers applied to the row's OCR confidence per cell:
// a value that parses cleanly for its field type keeps most of the row's
// confidence, an implausible one is discounted.
const (
	plausibleFactor   = 0.95
	implausibleFactor = 0.70
)

// Cell is one extracted table cell with its parsed interpretation.
type Cell struct {
	Text       string           `json:"text"`
	Field      ledger.FieldType `json:"field"`
	Number     *float64         `json:"number,omitempty"`
	Date       *time.Time       `json:"date,omitempty"`
	Confidence float64          `json:"confidence"`
}

// Row is one usable data row.
type Row struct {
	Index      int     `json:"index"`
	Cells      []Cell  `json:"cells"`
	Confidence float64 `json:"confidence"`
}

// PageData is the extraction result for a whole page.
type PageData struct {
	Fields      []ledger.FieldType `json:"fields"`
	Rows        []Row              `json:"rows"`
	SkippedRows int                `json:"skipped_rows"`

	// MeanOCRConfidence is the average engine confidence across all cell
	// reads, on a 0-1 scale.
	MeanOCRConfidence float64 `json:"mean_ocr_confidence"`
}

// Extractor reads cell contents from a page image.
type Extractor struct {
	engine ocr.Engine
	logger *slog.Logger
}

// NewExtractor builds an Extractor. A nil logger falls back to slog.Default.
func NewExtractor(engine ocr.Engine, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{engine: engine, logger: logger}
}

// Extract OCRs every cell of the refined structure and returns the parsed
// page data. Rows with fewer than half their cells filled are skipped, as is
// a leading header row.
func (e *Extractor) Extract(ctx context.Context, img image.Image, ts *structure.TableStructure) (*PageData, error) {
	fields := make([]ledger.FieldType, len(ts.Columns))
	for i, col := range ts.Columns {
		fields[i] = ledger.FieldType(col.Type)
		if fields[i] == "" {
			fields[i] = ledger.GuessFieldByPosition(col.Position)
		}
	}

	data := &PageData{Fields: fields}
	confSum := 0.0
	confCount := 0

	for ri := range ts.Rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row := &ts.Rows[ri]

		texts := make([]string, len(ts.Columns))
		rowConfSum := 0.0
		rowConfCount := 0
		for ci := range ts.Columns {
			bounds, ok := ts.CellBounds(ri, ci)
			if !ok {
				continue
			}
			text, conf := e.readCell(ctx, img, bounds)
			texts[ci] = text
			if text != "" {
				rowConfSum += conf
				rowConfCount++
			}
		}
		row.Cells = texts

		if ri == 0 && looksLikeHeader(texts) {
			data.SkippedRows++
			continue
		}
		if !table.RowIsUsable(texts) {
			data.SkippedRows++
			continue
		}

		rowConf := 0.0
		if rowConfCount > 0 {
			rowConf = rowConfSum / float64(rowConfCount)
		}
		row.Confidence = rowConf
		confSum += rowConfSum
		confCount += rowConfCount

		data.Rows = append(data.Rows, classifyRow(ri, texts, fields, rowConf))
	}

	if confCount > 0 {
		data.MeanOCRConfidence = confSum / float64(confCount)
	}

	e.logger.Info("page data extracted",
		"rows", len(data.Rows),
		"skipped", data.SkippedRows,
		"mean_ocr_confidence", data.MeanOCRConfidence)
	return data, nil
}

// ExtractFields filters the page data down to cells of the requested field
// types, keyed by field. Rows contribute in extraction order.
func ExtractFields(data *PageData, fields ...ledger.FieldType) map[ledger.FieldType][]Cell {
	out := make(map[ledger.FieldType][]Cell)
	if data == nil {
		return out
	}
	wanted := make(map[ledger.FieldType]bool, len(fields))
	for _, f := range fields {
		wanted[f] = true
	}
	for _, row := range data.Rows {
		for _, cell := range row.Cells {
			if wanted[cell.Field] && cell.Text != "" {
				out[cell.Field] = append(out[cell.Field], cell)
			}
		}
	}
	return out
}

// readCell OCRs a single cell region. Engine errors degrade to an empty
// cell rather than failing the page.
func (e *Extractor) readCell(ctx context.Context, img image.Image, bounds image.Rectangle) (string, float64) {
	cell, ok := utils.CropRect(img, bounds)
	if !ok {
		return "", 0
	}
	tokens, err := e.engine.Tokens(ctx, cell)
	if err != nil {
		e.logger.Debug("cell OCR failed", "bounds", bounds.String(), "error", err)
		return "", 0
	}
	if len(tokens) == 0 {
		return "", 0
	}
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		parts = append(parts, t.Text)
	}
	return strings.Join(parts, " "), ocr.MeanConfidence(tokens) / 100.0
}

// classifyRow parses each cell against its column's field type and assigns
// cell confidences relative to the row's OCR confidence.
func classifyRow(index int, texts []string, fields []ledger.FieldType, rowConf float64) Row {
	cells := make([]Cell, len(texts))
	for i, text := range texts {
		field := ledger.FieldUnknown
		if i < len(fields) {
			field = fields[i]
		}
		cells[i] = classifyCell(text, field, rowConf)
	}
	return Row{Index: index, Cells: cells, Confidence: rowConf}
}

func classifyCell(text string, field ledger.FieldType, rowConf float64) Cell {
	c := Cell{Text: strings.TrimSpace(text), Field: field}
	plausible := false

	switch {
	case field == ledger.FieldDate:
		if t, ok := ledger.ParseDate(c.Text); ok {
			c.Date = &t
			plausible = true
		}
	case field.IsNumeric():
		if v, ok := ledger.ParseNumber(c.Text); ok {
			c.Number = &v
			plausible = true
		}
	default:
		plausible = c.Text != ""
	}

	if plausible {
		c.Confidence = rowConf * plausibleFactor
	} else {
		c.Confidence = rowConf * implausibleFactor
	}
	return c
}

// looksLikeHeader reports whether a row's cells read as column labels rather
// than data: mostly alphabetic with no parseable numbers or dates.
func looksLikeHeader(texts []string) bool {
	labelish := 0
	filled := 0
	for _, t := range texts {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		filled++
		if _, ok := ledger.ParseNumber(t); ok && ledger.LooksNumeric(t) {
			continue
		}
		if _, ok := ledger.ParseDate(t); ok {
			continue
		}
		labelish++
	}
	return filled > 0 && labelish*2 > filled
}
