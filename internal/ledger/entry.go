package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MeterRolloverLimit models the 6-digit mechanical counters on dispenser
// nozzles: a closing reading below the opening reading means the meter wrapped
// past 999999. TODO: confirm against pumps fitted with 7-digit meters before
// deploying outside the pilot stations.
const MeterRolloverLimit = 1_000_000

// DefaultReviewThreshold is the OCR confidence below which an entry is flagged
// for manual verification.
const DefaultReviewThreshold = 0.85

// SalesEntry is one row of a digitized ledger page: a single nozzle's sale
// record for a day. Optional fields are nil when the cell was empty or
// unreadable.
type SalesEntry struct {
	ID              uuid.UUID  `json:"id"`
	LedgerPageID    uuid.UUID  `json:"ledger_page_id"`
	Date            *time.Time `json:"date,omitempty"`
	NozzleID        string     `json:"nozzle_id"`
	FuelType        string     `json:"fuel_type"`
	OpeningReading  *float64   `json:"opening_reading,omitempty"`
	ClosingReading  *float64   `json:"closing_reading,omitempty"`
	LitersSold      *float64   `json:"liters_sold,omitempty"`
	RatePerLiter    *float64   `json:"rate_per_liter,omitempty"`
	TotalAmount     *float64   `json:"total_amount,omitempty"`
	OCRConfidence   float64    `json:"ocr_confidence"`
	ManualCorrected bool       `json:"is_manual_correction"`
	CorrectionNotes string     `json:"correction_notes,omitempty"`
}

// NeedsReview reports whether the entry's OCR confidence falls below the
// given threshold (pass DefaultReviewThreshold unless configured otherwise).
func (e *SalesEntry) NeedsReview(threshold float64) bool {
	return e.OCRConfidence < threshold
}

// ApplyCorrection marks the entry as manually corrected. Confidence semantics
// after correction are the caller's decision; the note records what changed.
func (e *SalesEntry) ApplyCorrection(notes string) {
	e.ManualCorrected = true
	e.CorrectionNotes = notes
}

// DeriveLiters computes liters sold from a pair of meter readings, handling a
// single rollover of the cumulative counter. Result is rounded to 2 decimals.
func DeriveLiters(opening, closing float64, rolloverLimit float64) float64 {
	var liters decimal.Decimal
	if closing >= opening {
		liters = decimal.NewFromFloat(closing).Sub(decimal.NewFromFloat(opening))
	} else {
		liters = decimal.NewFromFloat(closing).
			Add(decimal.NewFromFloat(rolloverLimit).Sub(decimal.NewFromFloat(opening)))
	}
	f, _ := liters.Round(2).Float64()
	return f
}

// DeriveAmount computes the sale amount from liters and the per-liter rate,
// rounded to 2 decimals.
func DeriveAmount(liters, rate float64) float64 {
	f, _ := decimal.NewFromFloat(liters).
		Mul(decimal.NewFromFloat(rate)).
		Round(2).Float64()
	return f
}

// FillDerived completes missing liters and amount fields from the fields that
// are present, per the ledger arithmetic: liters from the meter delta, amount
// from rate times liters. Present values are never overwritten.
func (e *SalesEntry) FillDerived(rolloverLimit float64) {
	if e.LitersSold == nil && e.OpeningReading != nil && e.ClosingReading != nil {
		liters := DeriveLiters(*e.OpeningReading, *e.ClosingReading, rolloverLimit)
		e.LitersSold = &liters
	}
	if e.TotalAmount == nil && e.LitersSold != nil && e.RatePerLiter != nil {
		amount := DeriveAmount(*e.LitersSold, *e.RatePerLiter)
		e.TotalAmount = &amount
	}
}
