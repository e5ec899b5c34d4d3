package columns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petropage/ledgerocr/internal/extract"
	"github.com/petropage/ledgerocr/internal/ledger"
)

func pageData(fields []ledger.FieldType, rows [][]string) *extract.PageData {
	data := &extract.PageData{Fields: fields}
	for i, texts := range rows {
		row := extract.Row{Index: i}
		for j, text := range texts {
			field := ledger.FieldUnknown
			if j < len(fields) {
				field = fields[j]
			}
			row.Cells = append(row.Cells, extract.Cell{Text: text, Field: field})
		}
		data.Rows = append(data.Rows, row)
	}
	return data
}

func TestIdentifyFullLayout(t *testing.T) {
	fields := []ledger.FieldType{
		ledger.FieldDate, ledger.FieldNozzleID, ledger.FieldFuelType,
		ledger.FieldOpeningReading, ledger.FieldClosingReading,
		ledger.FieldLitersSold, ledger.FieldRatePerLiter, ledger.FieldTotalAmount,
	}
	rows := [][]string{
		{"27/08/2026", "N-1", "Petrol", "123400", "123450", "50", "100", "5000"},
		{"27/08/2026", "N-2", "Diesel", "88000", "88030", "30", "90", "2700"},
	}

	m := Identify(pageData(fields, rows))
	require.True(t, m.Valid())
	assert.Empty(t, m.Missing)

	assert.Equal(t, ledger.FieldDate, m.Columns[0].Field)
	assert.Equal(t, ledger.FieldFuelType, m.Columns[2].Field)
	assert.Equal(t, ledger.FieldTotalAmount, m.Columns[7].Field)
	assert.GreaterOrEqual(t, m.Columns[0].Confidence, ReviewThreshold)
}

func TestIdentifyMissingCritical(t *testing.T) {
	fields := []ledger.FieldType{ledger.FieldNozzleID}
	rows := [][]string{{"N-1"}, {"N-2"}}

	m := Identify(pageData(fields, rows))
	assert.False(t, m.Valid())
	assert.Contains(t, m.Missing, string(ledger.FieldDate))
	assert.Contains(t, m.Missing, string(ledger.FieldLitersSold))
	assert.NotEmpty(t, m.Suggestions)
}

func TestIdentifyEmptyData(t *testing.T) {
	m := Identify(nil)
	assert.False(t, m.Valid())
	assert.Len(t, m.Missing, len(ledger.CriticalFields))
}

func TestConfidenceFromClamps(t *testing.T) {
	assert.InDelta(t, 1.0, confidenceFrom(100, 4), 1e-9)
	assert.Zero(t, confidenceFrom(0, 4))
	assert.Zero(t, confidenceFrom(5, 0))

	// Half the max name score doubles to full confidence.
	assert.InDelta(t, 1.0, confidenceFrom(4, 4), 1e-9)
	assert.InDelta(t, 0.5, confidenceFrom(2, 4), 1e-9)
}

func TestMostlyNumeric(t *testing.T) {
	assert.True(t, mostlyNumeric([]string{"123", "456", "abc"}))
	assert.False(t, mostlyNumeric([]string{"abc", "def", "123"}))
	assert.False(t, mostlyNumeric(nil))
}
