package ledger

// FieldType identifies the semantic meaning of a ledger table column or cell.
type FieldType string

const (
	FieldDate           FieldType = "date"
	FieldNozzleID       FieldType = "nozzle_id"
	FieldFuelType       FieldType = "fuel_type"
	FieldOpeningReading FieldType = "opening_reading"
	FieldClosingReading FieldType = "closing_reading"
	FieldLitersSold     FieldType = "liters_sold"
	FieldRatePerLiter   FieldType = "rate_per_liter"
	FieldTotalAmount    FieldType = "total_amount"
	FieldUnknown        FieldType = "unknown"
)

// NumericFields lists the field types whose cells carry numeric values.
var NumericFields = []FieldType{
	FieldOpeningReading,
	FieldClosingReading,
	FieldLitersSold,
	FieldRatePerLiter,
	FieldTotalAmount,
}

// IsNumeric reports whether cells of this field type are expected to parse as numbers.
func (f FieldType) IsNumeric() bool {
	for _, n := range NumericFields {
		if f == n {
			return true
		}
	}
	return false
}

// CriticalFields are the column types a usable ledger page cannot do without.
var CriticalFields = []FieldType{
	FieldDate,
	FieldFuelType,
	FieldLitersSold,
	FieldTotalAmount,
}

// PositionalDefaults maps a column's left-to-right position to the field type
// found at that position in a typical handwritten ledger layout.
var PositionalDefaults = map[int]FieldType{
	0: FieldDate,
	1: FieldNozzleID,
	2: FieldFuelType,
	3: FieldOpeningReading,
	4: FieldClosingReading,
	5: FieldLitersSold,
	6: FieldRatePerLiter,
	7: FieldTotalAmount,
}

// GuessFieldByPosition returns the positional default for a column index,
// or FieldUnknown past the typical eight-column layout.
func GuessFieldByPosition(position int) FieldType {
	if ft, ok := PositionalDefaults[position]; ok {
		return ft
	}
	return FieldUnknown
}

// CanonicalLabels maps field types to the header labels an operator would
// write on a well-kept ledger sheet.
var CanonicalLabels = map[FieldType]string{
	FieldDate:           "Date",
	FieldNozzleID:       "Nozzle ID",
	FieldFuelType:       "Fuel Type",
	FieldOpeningReading: "Opening Reading",
	FieldClosingReading: "Closing Reading",
	FieldLitersSold:     "Liters Sold",
	FieldRatePerLiter:   "Rate Per Liter",
	FieldTotalAmount:    "Total Amount",
}

// AlternativeNames lists abbreviated or transliterated header spellings that
// appear on real sheets for each field type.
var AlternativeNames = map[FieldType][]string{
	FieldDate:           {"dt", "tarikh", "din", "day"},
	FieldNozzleID:       {"nuz", "pmp", "mach", "id", "no"},
	FieldFuelType:       {"ftype", "fueltype", "cat", "category"},
	FieldOpeningReading: {"opn", "strt", "begin", "input"},
	FieldClosingReading: {"cls", "fin", "end", "final", "output"},
	FieldLitersSold:     {"ltr", "qty", "qnty", "sold"},
	FieldRatePerLiter:   {"r/l", "p/l", "perltr", "cost"},
	FieldTotalAmount:    {"amt", "ttl", "cash", "rs"},
}
