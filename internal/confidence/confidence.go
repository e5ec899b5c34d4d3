// Package confidence fuses the signals of a processed page into one score:
// how much the OCR engine trusted its reads, how well the table structure
// matched the expected layout, and how internally consistent the extracted
// numbers are.
package confidence

import (
	"math"

	"github.com/petropage/ledgerocr/internal/ledger"
)

// Fusion weights. OCR quality dominates because it bounds everything else.
const (
	ocrWeight         = 0.4
	structureWeight   = 0.3
	consistencyWeight = 0.3

	// maxVariancePenalty caps how much spread between per-entry OCR
	// confidences can drag the OCR component down.
	maxVariancePenalty = 0.1

	structureBase           = 0.5
	structureCoverageWeight = 0.3
	structureEntriesBonus   = 0.1
	structureErrorPenalty   = 0.2
)

// Band labels a score range for operator-facing display.
type Band string

const (
	BandHigh    Band = "high"
	BandMedium  Band = "medium"
	BandLow     Band = "low"
	BandVeryLow Band = "very_low"
)

// Band thresholds, inclusive at the lower edge.
const (
	HighThreshold   = 0.90
	MediumThreshold = 0.75
	LowThreshold    = 0.60
)

// Inputs carries the page signals the fusion consumes.
type Inputs struct {
	// Entries extracted from the page.
	Entries []ledger.SalesEntry

	// ColumnCoverage is the fraction of expected columns identified, 0-1.
	ColumnCoverage float64

	// HadErrors reports whether processing recorded any errors.
	HadErrors bool
}

// Score is the fused result with its components.
type Score struct {
	Overall     float64 `json:"overall"`
	OCR         float64 `json:"ocr"`
	Structure   float64 `json:"structure"`
	Consistency float64 `json:"consistency"`
	Band        Band    `json:"band"`

	// Ranges buckets entry indexes by the band of each entry's own OCR
	// confidence, so reviewers can jump straight to the weak rows.
	Ranges map[Band][]int `json:"confidence_ranges,omitempty"`
}

// Fuse combines the page signals into an overall score.
func Fuse(in Inputs) Score {
	ocr := ocrComponent(in.Entries)
	structure := structureComponent(in)
	consistency := consistencyComponent(in.Entries, ocr)

	overall := ocrWeight*ocr + structureWeight*structure + consistencyWeight*consistency
	return Score{
		Overall:     clamp01(overall),
		OCR:         ocr,
		Structure:   structure,
		Consistency: consistency,
		Band:        BandFor(clamp01(overall)),
		Ranges:      categorize(in.Entries),
	}
}

// categorize buckets entries by their individual OCR confidence band.
// Indexes refer to the input slice.
func categorize(entries []ledger.SalesEntry) map[Band][]int {
	if len(entries) == 0 {
		return nil
	}
	ranges := make(map[Band][]int)
	for i, e := range entries {
		b := BandFor(e.OCRConfidence)
		ranges[b] = append(ranges[b], i)
	}
	return ranges
}

// ocrComponent is the mean of per-entry OCR confidences, penalized for
// spread: pages where some rows read cleanly and others barely deserve less
// trust than their mean alone suggests.
func ocrComponent(entries []ledger.SalesEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	vals := make([]float64, len(entries))
	for i, e := range entries {
		vals[i] = e.OCRConfidence
	}
	mean, variance := meanVariance(vals)
	penalty := variance * 2
	if penalty > maxVariancePenalty {
		penalty = maxVariancePenalty
	}
	return clamp01(mean - penalty)
}

func structureComponent(in Inputs) float64 {
	s := structureBase + structureCoverageWeight*clamp01(in.ColumnCoverage)
	if len(in.Entries) > 0 {
		s += structureEntriesBonus
	}
	if in.HadErrors {
		s -= structureErrorPenalty
	}
	return clamp01(s)
}

// consistencyComponent measures how uniform the liters figures are via the
// coefficient of variation. A single pump's daily rows cluster; wild spread
// usually means misread digits. Pages with too few numbers to judge fall
// back to the OCR component.
func consistencyComponent(entries []ledger.SalesEntry, fallback float64) float64 {
	var vals []float64
	for _, e := range entries {
		if e.LitersSold != nil && *e.LitersSold > 0 {
			vals = append(vals, *e.LitersSold)
		}
	}
	if len(vals) < 2 {
		return fallback
	}
	mean, variance := meanVariance(vals)
	if mean == 0 {
		return fallback
	}
	cv := math.Sqrt(variance) / mean
	if cv > 1 {
		cv = 1
	}
	return 1 - cv
}

// BandFor maps a score to its display band; thresholds are inclusive.
func BandFor(score float64) Band {
	switch {
	case score >= HighThreshold:
		return BandHigh
	case score >= MediumThreshold:
		return BandMedium
	case score >= LowThreshold:
		return BandLow
	default:
		return BandVeryLow
	}
}

// Recommendation returns the operator guidance for a band.
func Recommendation(b Band) string {
	switch b {
	case BandHigh:
		return "data looks reliable; spot-check totals only"
	case BandMedium:
		return "review flagged rows before approving"
	case BandLow:
		return "review every row; consider retaking the photo"
	default:
		return "extraction unreliable; retake the photo or enter manually"
	}
}

func meanVariance(vals []float64) (mean, variance float64) {
	n := float64(len(vals))
	for _, v := range vals {
		mean += v
	}
	mean /= n
	for _, v := range vals {
		d := v - mean
		variance += d * d
	}
	variance /= n
	return mean, variance
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
