package structure

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petropage/ledgerocr/internal/testutil"
)

func TestDetectRuledGrid(t *testing.T) {
	img := testutil.GridImage(600, 400, 5, 8)

	d := NewDetector(DefaultConfig(), nil)
	ts, err := d.Detect(img)
	require.NoError(t, err)

	assert.Equal(t, 5, ts.ColumnCount())
	assert.Equal(t, 8, ts.RowCount())
	assert.Equal(t, image.Pt(600, 400), ts.ImageSize)
	assert.InDelta(t, lineConfidence, ts.Columns[0].Confidence, 1e-9)
	assert.Greater(t, ts.Confidence, 0.7)

	// Bands tile the page left to right without gaps.
	for i := 1; i < len(ts.Columns); i++ {
		assert.Equal(t, ts.Columns[i-1].RightX, ts.Columns[i].LeftX)
		assert.Equal(t, i, ts.Columns[i].Position)
	}
}

func TestDetectBlankPageFallsBack(t *testing.T) {
	img := testutil.BlankImage(600, 300)

	d := NewDetector(DefaultConfig(), nil)
	ts, err := d.Detect(img)
	require.NoError(t, err)

	// 600/150 = 4 columns, 300/30 = 10 rows, evenly spaced.
	assert.Equal(t, 4, ts.ColumnCount())
	assert.Equal(t, 10, ts.RowCount())
	assert.InDelta(t, fallbackConfidence, ts.Columns[0].Confidence, 1e-9)
	assert.Equal(t, 0, ts.Columns[0].LeftX)
	assert.Equal(t, 600, ts.Columns[3].RightX)
}

func TestFallbackGridClamps(t *testing.T) {
	d := NewDetector(DefaultConfig(), nil)

	tiny, err := d.Detect(testutil.BlankImage(200, 100))
	require.NoError(t, err)
	assert.Equal(t, minFallbackColumns, tiny.ColumnCount())
	assert.Equal(t, minFallbackRows, tiny.RowCount())

	huge, err := d.Detect(testutil.BlankImage(3000, 1500))
	require.NoError(t, err)
	assert.Equal(t, maxFallbackColumns, huge.ColumnCount())
	assert.Equal(t, maxFallbackRows, huge.RowCount())
}

func TestCellBounds(t *testing.T) {
	ts := &TableStructure{
		Columns: []TableColumn{{LeftX: 0, RightX: 100}, {LeftX: 100, RightX: 200}},
		Rows:    []TableRow{{TopY: 0, BottomY: 50}},
	}
	r, ok := ts.CellBounds(0, 1)
	require.True(t, ok)
	assert.Equal(t, image.Rect(100, 0, 200, 50), r)

	_, ok = ts.CellBounds(1, 0)
	assert.False(t, ok)
	_, ok = ts.CellBounds(0, 2)
	assert.False(t, ok)
}

func TestMorphologicalOpenKeepsLongLines(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 100, 50))
	// One long horizontal stroke and one short blob.
	for x := 10; x < 90; x++ {
		img.SetGray(x, 25, color.Gray{Y: 255})
	}
	for x := 40; x < 45; x++ {
		img.SetGray(x, 10, color.Gray{Y: 255})
	}

	opened := Open(img, HorizontalLineKernel)

	longSurvives := false
	for x := 30; x < 70; x++ {
		if opened.GrayAt(x, 25).Y == 255 {
			longSurvives = true
		}
	}
	assert.True(t, longSurvives)

	for x := 40; x < 45; x++ {
		assert.Equal(t, uint8(0), opened.GrayAt(x, 10).Y, "short blob at x=%d must be removed", x)
	}
}
