// Package entries turns extracted page rows into sales entries: it maps each
// row's cells through the identified column layout, normalizes values, fills
// derived fields and reports what it had to skip.
package entries

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/petropage/ledgerocr/internal/columns"
	"github.com/petropage/ledgerocr/internal/extract"
	"github.com/petropage/ledgerocr/internal/ledger"
)

// SkippedRow records why a page row produced no entry.
type SkippedRow struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// Result is the entry-building outcome for one page.
type Result struct {
	Entries     []ledger.SalesEntry `json:"entries"`
	Skipped     []SkippedRow        `json:"skipped,omitempty"`
	NeedsReview int                 `json:"needs_review"`
}

// Builder constructs sales entries for a ledger page.
type Builder struct {
	reviewThreshold float64
	rolloverLimit   float64
	logger          *slog.Logger
}

// NewBuilder builds a Builder with the given review threshold; zero uses
// ledger.DefaultReviewThreshold. A nil logger falls back to slog.Default.
func NewBuilder(reviewThreshold float64, logger *slog.Logger) *Builder {
	if reviewThreshold <= 0 {
		reviewThreshold = ledger.DefaultReviewThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		reviewThreshold: reviewThreshold,
		rolloverLimit:   ledger.MeterRolloverLimit,
		logger:          logger,
	}
}

// Build creates a SalesEntry per usable row of the page. A row is skipped
// when it yields neither a fuel type nor any numeric value.
func (b *Builder) Build(pageID uuid.UUID, data *extract.PageData, mapping *columns.Mapping) *Result {
	res := &Result{}
	if data == nil {
		return res
	}

	for _, row := range data.Rows {
		entry, skip := b.buildRow(pageID, row, mapping)
		if skip != "" {
			res.Skipped = append(res.Skipped, SkippedRow{Index: row.Index, Reason: skip})
			continue
		}
		if entry.NeedsReview(b.reviewThreshold) {
			res.NeedsReview++
		}
		res.Entries = append(res.Entries, entry)
	}

	b.logger.Info("entries built",
		"page_id", pageID.String(),
		"entries", len(res.Entries),
		"skipped", len(res.Skipped),
		"needs_review", res.NeedsReview)
	return res
}

func (b *Builder) buildRow(pageID uuid.UUID, row extract.Row, mapping *columns.Mapping) (ledger.SalesEntry, string) {
	entry := ledger.SalesEntry{
		ID:           uuid.New(),
		LedgerPageID: pageID,
	}

	var confidences []float64
	gotValue := false

	for pos, cell := range row.Cells {
		field := cell.Field
		if mapping != nil {
			if match, ok := mapping.Columns[pos]; ok && match.Field != ledger.FieldUnknown {
				field = match.Field
			}
		}

		switch field {
		case ledger.FieldDate:
			if cell.Date != nil {
				t := *cell.Date
				entry.Date = &t
				gotValue = true
			}
		case ledger.FieldNozzleID:
			if cell.Text != "" {
				entry.NozzleID = cell.Text
				gotValue = true
			}
		case ledger.FieldFuelType:
			if cell.Text != "" {
				entry.FuelType = ledger.NormalizeFuelType(cell.Text)
				gotValue = true
			}
		case ledger.FieldOpeningReading:
			if cell.Number != nil {
				entry.OpeningReading = copyFloat(cell.Number)
				gotValue = true
			}
		case ledger.FieldClosingReading:
			if cell.Number != nil {
				entry.ClosingReading = copyFloat(cell.Number)
				gotValue = true
			}
		case ledger.FieldLitersSold:
			if cell.Number != nil {
				entry.LitersSold = copyFloat(cell.Number)
				gotValue = true
			}
		case ledger.FieldRatePerLiter:
			if cell.Number != nil {
				entry.RatePerLiter = copyFloat(cell.Number)
				gotValue = true
			}
		case ledger.FieldTotalAmount:
			if cell.Number != nil {
				entry.TotalAmount = copyFloat(cell.Number)
				gotValue = true
			}
		}

		if cell.Text != "" {
			confidences = append(confidences, cell.Confidence)
		}
	}

	if !gotValue {
		return ledger.SalesEntry{}, "no recognizable values"
	}
	if entry.FuelType == "" && entry.LitersSold == nil && entry.ClosingReading == nil {
		return ledger.SalesEntry{}, "neither fuel type nor meter data"
	}

	entry.FillDerived(b.rolloverLimit)
	entry.OCRConfidence = cappedMean(confidences)
	return entry, ""
}

// cappedMean averages cell confidences and caps the result at 1.
func cappedMean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	mean := sum / float64(len(vals))
	if mean > 1 {
		mean = 1
	}
	return mean
}

func copyFloat(v *float64) *float64 {
	c := *v
	return &c
}

// DescribeSkips renders skip reasons for logs and review notes.
func DescribeSkips(skipped []SkippedRow) []string {
	out := make([]string, len(skipped))
	for i, s := range skipped {
		out[i] = fmt.Sprintf("row %d: %s", s.Index, s.Reason)
	}
	return out
}

// EntryDateOrZero is a nil-safe date accessor used by aggregation.
func EntryDateOrZero(e *ledger.SalesEntry) time.Time {
	if e == nil || e.Date == nil {
		return time.Time{}
	}
	return *e.Date
}
