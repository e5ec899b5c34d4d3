// Package table refines a detected grid into a usable ledger table: it names
// columns from header OCR, scores the refined structure, detects page-level
// features and validates whether the table is worth extracting from.
package table

import (
	"strings"

	"github.com/petropage/ledgerocr/internal/ledger"
)

// Header-match confidence tiers. An exact canonical keyword is worth more
// than an abbreviated alternate, which beats a pure positional guess.
const (
	exactMatchConfidence      = 0.95
	alternateMatchConfidence  = 0.85
	positionalMatchConfidence = 0.70
)

// headerKeywords lists lowercase substrings of canonical labels in match
// priority order; the first hit wins. Substring matching tolerates OCR
// dropping or mangling characters.
var headerKeywords = []struct {
	keyword string
	field   ledger.FieldType
}{
	{"date", ledger.FieldDate},
	{"nozzle", ledger.FieldNozzleID},
	{"pump", ledger.FieldNozzleID},
	{"machine", ledger.FieldNozzleID},
	{"fuel", ledger.FieldFuelType},
	{"opening", ledger.FieldOpeningReading},
	{"open", ledger.FieldOpeningReading},
	{"start", ledger.FieldOpeningReading},
	{"closing", ledger.FieldClosingReading},
	{"close", ledger.FieldClosingReading},
	{"liters", ledger.FieldLitersSold},
	{"litres", ledger.FieldLitersSold},
	{"liter", ledger.FieldLitersSold},
	{"litre", ledger.FieldLitersSold},
	{"rate", ledger.FieldRatePerLiter},
	{"price", ledger.FieldRatePerLiter},
	{"amount", ledger.FieldTotalAmount},
	{"total", ledger.FieldTotalAmount},
	{"type", ledger.FieldFuelType},
}

// NameColumn resolves a header cell's OCR text to a field type and the
// confidence of the match. Empty or unmatched text falls back to the
// positional default for the column index.
func NameColumn(headerText string, position int) (ledger.FieldType, float64) {
	text := strings.ToLower(strings.TrimSpace(headerText))
	if text != "" {
		for _, hk := range headerKeywords {
			if strings.Contains(text, hk.keyword) {
				return hk.field, exactMatchConfidence
			}
		}
		for pos := 0; pos < len(ledger.PositionalDefaults); pos++ {
			ft := ledger.PositionalDefaults[pos]
			for _, alt := range ledger.AlternativeNames[ft] {
				if strings.Contains(text, alt) {
					return ft, alternateMatchConfidence
				}
			}
		}
	}
	ft := ledger.GuessFieldByPosition(position)
	if ft == ledger.FieldUnknown {
		return ledger.FieldUnknown, 0
	}
	return ft, positionalMatchConfidence
}
