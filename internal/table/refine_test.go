package table

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petropage/ledgerocr/internal/ledger"
	"github.com/petropage/ledgerocr/internal/ocr"
	"github.com/petropage/ledgerocr/internal/structure"
	"github.com/petropage/ledgerocr/internal/testutil"
)

func eightColumnStructure() *structure.TableStructure {
	ts := &structure.TableStructure{}
	for i := 0; i < 8; i++ {
		ts.Columns = append(ts.Columns, structure.TableColumn{
			Position:   i,
			LeftX:      i * 100,
			RightX:     (i + 1) * 100,
			Confidence: 0.8,
		})
	}
	for i := 0; i < 5; i++ {
		ts.Rows = append(ts.Rows, structure.TableRow{
			Index:      i,
			TopY:       100 + i*50,
			BottomY:    150 + i*50,
			Confidence: 0.8,
		})
	}
	return ts
}

func TestRefineWithUnreadableHeadersUsesPositions(t *testing.T) {
	engine := &ocr.FakeEngine{Err: errors.New("backend down")}
	r := NewRefiner(engine, nil)

	res, err := r.Refine(context.Background(), testutil.GridImage(800, 400, 8, 6), eightColumnStructure())
	require.NoError(t, err)

	ts := res.Structure
	assert.Equal(t, string(ledger.FieldDate), ts.Columns[0].Type)
	assert.Equal(t, "Date", ts.Columns[0].Name)
	assert.Equal(t, string(ledger.FieldTotalAmount), ts.Columns[7].Type)
	for _, col := range ts.Columns {
		assert.InDelta(t, positionalMatchConfidence, col.Confidence, 1e-9)
	}

	// Structural 0.6*0.7 + 0.4*0.8 = 0.74, coverage 8/8.
	assert.InDelta(t, structuralWeight*0.74+coverageWeight*1.0, ts.Confidence, 1e-9)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Suggestions)
}

func TestRefineNamesFromHeaderText(t *testing.T) {
	engine := &ocr.FakeEngine{Text: "Liters"}
	r := NewRefiner(engine, nil)

	res, err := r.Refine(context.Background(), testutil.GridImage(800, 400, 8, 6), eightColumnStructure())
	require.NoError(t, err)

	for _, col := range res.Structure.Columns {
		assert.Equal(t, string(ledger.FieldLitersSold), col.Type)
		assert.InDelta(t, exactMatchConfidence, col.Confidence, 1e-9)
	}
}

func TestRefineRejectsEmptyStructure(t *testing.T) {
	r := NewRefiner(&ocr.FakeEngine{}, nil)
	_, err := r.Refine(context.Background(), testutil.GridImage(100, 100, 2, 2), &structure.TableStructure{})
	assert.Error(t, err)
}

func TestValidityThresholdInclusive(t *testing.T) {
	ts := eightColumnStructure()
	ts.Confidence = ValidThreshold
	valid, suggestions := validate(ts)
	assert.True(t, valid)
	assert.Empty(t, suggestions)

	ts.Confidence = ValidThreshold - 0.001
	valid, suggestions = validate(ts)
	assert.False(t, valid)
	assert.NotEmpty(t, suggestions)
}

func TestValidateSuggestions(t *testing.T) {
	ts := &structure.TableStructure{
		Columns:    []structure.TableColumn{{}, {}},
		Confidence: 0.5,
	}
	valid, suggestions := validate(ts)
	assert.False(t, valid)
	// Too few columns, no rows, low confidence.
	assert.Len(t, suggestions, 3)
}

func TestDetectFeatures(t *testing.T) {
	engine := &ocr.FakeEngine{Text: "Date Nozzle Total Signature"}
	r := NewRefiner(engine, nil)

	res, err := r.Refine(context.Background(), testutil.GridImage(800, 400, 8, 6), eightColumnStructure())
	require.NoError(t, err)

	assert.True(t, res.Features.HasHeaderRow)
	assert.True(t, res.Features.HasTotalsRow)
	assert.True(t, res.Features.HasSignatureBox)
}
