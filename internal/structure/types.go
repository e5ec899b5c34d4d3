// Package structure detects the grid of a handwritten ledger table from a
// preprocessed page image: where the columns and rows sit, and how confident
// the detector is in each.
package structure

import "image"

// TableColumn is one detected vertical band of the ledger grid.
type TableColumn struct {
	Name       string  `json:"name"`
	Position   int     `json:"position"`
	LeftX      int     `json:"left_x"`
	RightX     int     `json:"right_x"`
	Confidence float64 `json:"confidence"`
	Type       string  `json:"type"`
}

// TableRow is one detected horizontal band, with the raw text of each cell
// once OCR has run.
type TableRow struct {
	Index      int      `json:"index"`
	TopY       int      `json:"top_y"`
	BottomY    int      `json:"bottom_y"`
	Cells      []string `json:"cells"`
	Confidence float64  `json:"confidence"`
}

// TableStructure is the detected grid for a page.
type TableStructure struct {
	Columns    []TableColumn `json:"columns"`
	Rows       []TableRow    `json:"rows"`
	Confidence float64       `json:"confidence"`
	ImageSize  image.Point   `json:"image_size"`
}

// ColumnCount and RowCount are nil-safe accessors used by downstream scoring.
func (t *TableStructure) ColumnCount() int {
	if t == nil {
		return 0
	}
	return len(t.Columns)
}

func (t *TableStructure) RowCount() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// CellBounds returns the pixel rectangle of the cell at (row, col), or false
// when either index is out of range.
func (t *TableStructure) CellBounds(row, col int) (image.Rectangle, bool) {
	if t == nil || row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Columns) {
		return image.Rectangle{}, false
	}
	r := t.Rows[row]
	c := t.Columns[col]
	return image.Rect(c.LeftX, r.TopY, c.RightX, r.BottomY), true
}
