// Package columns identifies what each extracted column actually contains by
// scoring header names and cell contents against per-field pattern sets.
// It is the data-driven cross-check on the header-based naming done during
// table refinement: a column labeled "Rate" that holds dates gets caught here.
package columns

import (
	"regexp"

	"github.com/petropage/ledgerocr/internal/ledger"
)

// patternSet holds the recognizers for one field type. Name patterns match
// the column's header label, content patterns match individual cell values.
type patternSet struct {
	name    []*regexp.Regexp
	content []*regexp.Regexp
	numeric bool
}

var fieldPatterns = map[ledger.FieldType]patternSet{
	ledger.FieldDate: {
		name: compile(`(?i)date`, `(?i)\bdt\b`, `(?i)tarikh`, `(?i)\bday\b`),
		content: compile(
			`^\d{4}-\d{1,2}-\d{1,2}$`,
			`^\d{1,2}[/-]\d{1,2}[/-]\d{2,4}$`,
		),
	},
	ledger.FieldNozzleID: {
		name:    compile(`(?i)nozzle`, `(?i)pump`, `(?i)machine`, `(?i)\bno\b`, `(?i)\bid\b`),
		content: compile(`^[A-Za-z]{1,3}[-_]?\d{1,3}$`, `^[Nn]\d{1,2}$`),
	},
	ledger.FieldFuelType: {
		name:    compile(`(?i)fuel`, `(?i)type`, `(?i)product`, `(?i)category`),
		content: compile(`(?i)petrol`, `(?i)diesel`, `(?i)\bcng\b`, `(?i)kerosene`, `(?i)\bhsd\b`),
	},
	ledger.FieldOpeningReading: {
		name:    compile(`(?i)open`, `(?i)start`, `(?i)begin`, `(?i)\bopn\b`),
		content: compile(`^\d{4,7}(\.\d+)?$`),
		numeric: true,
	},
	ledger.FieldClosingReading: {
		name:    compile(`(?i)clos`, `(?i)\bend\b`, `(?i)final`, `(?i)\bcls\b`),
		content: compile(`^\d{4,7}(\.\d+)?$`),
		numeric: true,
	},
	ledger.FieldLitersSold: {
		name:    compile(`(?i)lit(er|re)s?`, `(?i)\bqty\b`, `(?i)quantity`, `(?i)sold`, `(?i)\bltr\b`),
		content: compile(`^\d{1,5}(\.\d+)?$`),
		numeric: true,
	},
	ledger.FieldRatePerLiter: {
		name:    compile(`(?i)rate`, `(?i)price`, `(?i)per\s*lit`, `(?i)r/l`, `(?i)cost`),
		content: compile(`^\d{2,3}(\.\d+)?$`),
		numeric: true,
	},
	ledger.FieldTotalAmount: {
		name:    compile(`(?i)total`, `(?i)amount`, `(?i)\bamt\b`, `(?i)\brs\b`, `(?i)cash`),
		content: compile(`^\d{2,7}(\.\d+)?$`),
		numeric: true,
	},
}

// scoringOrder fixes the evaluation order so score ties resolve the same
// way on every run.
var scoringOrder = []ledger.FieldType{
	ledger.FieldDate,
	ledger.FieldNozzleID,
	ledger.FieldFuelType,
	ledger.FieldOpeningReading,
	ledger.FieldClosingReading,
	ledger.FieldLitersSold,
	ledger.FieldRatePerLiter,
	ledger.FieldTotalAmount,
}

func compile(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}
