package confidence

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/petropage/ledgerocr/internal/ledger"
	"github.com/petropage/ledgerocr/internal/testutil"
)

func TestBandForBoundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  Band
	}{
		{0.95, BandHigh},
		{0.90, BandHigh},
		{0.899, BandMedium},
		{0.75, BandMedium},
		{0.749, BandLow},
		{0.60, BandLow},
		{0.599, BandVeryLow},
		{0, BandVeryLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BandFor(tt.score), "score %v", tt.score)
	}
}

func TestFuseWeights(t *testing.T) {
	entries := []ledger.SalesEntry{
		testutil.Entry(ledger.FuelPetrol, 50, 100, 5000),
		testutil.Entry(ledger.FuelPetrol, 50, 100, 5000),
	}
	for i := range entries {
		entries[i].OCRConfidence = 0.9
	}

	score := Fuse(Inputs{Entries: entries, ColumnCoverage: 1.0})

	// Identical confidences carry no variance penalty.
	assert.InDelta(t, 0.9, score.OCR, 1e-9)
	// Base 0.5 + full coverage 0.3 + entries bonus 0.1.
	assert.InDelta(t, 0.9, score.Structure, 1e-9)
	// Identical liters, zero coefficient of variation.
	assert.InDelta(t, 1.0, score.Consistency, 1e-9)
	assert.InDelta(t, 0.4*0.9+0.3*0.9+0.3*1.0, score.Overall, 1e-9)
	assert.Equal(t, BandHigh, score.Band)
}

func TestFuseVariancePenaltyCapped(t *testing.T) {
	entries := []ledger.SalesEntry{
		testutil.Entry(ledger.FuelPetrol, 50, 100, 5000),
		testutil.Entry(ledger.FuelPetrol, 50, 100, 5000),
	}
	entries[0].OCRConfidence = 0.1
	entries[1].OCRConfidence = 0.9

	score := Fuse(Inputs{Entries: entries})
	// Mean 0.5, variance 0.16, penalty capped at 0.1.
	assert.InDelta(t, 0.4, score.OCR, 1e-9)
}

func TestFuseErrorPenalty(t *testing.T) {
	entries := []ledger.SalesEntry{testutil.Entry(ledger.FuelPetrol, 50, 100, 5000)}

	clean := Fuse(Inputs{Entries: entries, ColumnCoverage: 0.5})
	dirty := Fuse(Inputs{Entries: entries, ColumnCoverage: 0.5, HadErrors: true})
	assert.InDelta(t, structureErrorPenalty, clean.Structure-dirty.Structure, 1e-9)
}

func TestFuseNoEntries(t *testing.T) {
	score := Fuse(Inputs{})
	assert.Equal(t, 0.0, score.OCR)
	assert.Equal(t, BandVeryLow, score.Band)
	assert.Nil(t, score.Ranges)
}

func TestFuseRangesBucketEntriesByBand(t *testing.T) {
	entries := []ledger.SalesEntry{
		testutil.Entry(ledger.FuelPetrol, 50, 100, 5000),
		testutil.Entry(ledger.FuelPetrol, 50, 100, 5000),
		testutil.Entry(ledger.FuelDiesel, 30, 90, 2700),
		testutil.Entry(ledger.FuelDiesel, 30, 90, 2700),
	}
	entries[0].OCRConfidence = 0.95
	entries[1].OCRConfidence = 0.80
	entries[2].OCRConfidence = 0.70
	entries[3].OCRConfidence = 0.50

	score := Fuse(Inputs{Entries: entries, ColumnCoverage: 1.0})
	assert.Equal(t, map[Band][]int{
		BandHigh:    {0},
		BandMedium:  {1},
		BandLow:     {2},
		BandVeryLow: {3},
	}, score.Ranges)
}

func TestConsistencyFallsBackToOCR(t *testing.T) {
	// A single entry cannot be judged for spread.
	entries := []ledger.SalesEntry{testutil.Entry(ledger.FuelPetrol, 50, 100, 5000)}
	entries[0].OCRConfidence = 0.8

	score := Fuse(Inputs{Entries: entries})
	assert.InDelta(t, score.OCR, score.Consistency, 1e-9)
}

func TestRecommendationPerBand(t *testing.T) {
	seen := map[string]bool{}
	for _, b := range []Band{BandHigh, BandMedium, BandLow, BandVeryLow} {
		r := Recommendation(b)
		assert.NotEmpty(t, r)
		assert.False(t, seen[r], "bands must give distinct guidance")
		seen[r] = true
	}
}
