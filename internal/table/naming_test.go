package table

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/petropage/ledgerocr/internal/ledger"
)

func TestNameColumnExactKeyword(t *testing.T) {
	tests := []struct {
		header string
		want   ledger.FieldType
	}{
		{"Date", ledger.FieldDate},
		{"NOZZLE NO", ledger.FieldNozzleID},
		{"Fuel", ledger.FieldFuelType},
		{"Opening Reading", ledger.FieldOpeningReading},
		{"closing", ledger.FieldClosingReading},
		{"Liters Sold", ledger.FieldLitersSold},
		{"Litres", ledger.FieldLitersSold},
		{"Rate", ledger.FieldRatePerLiter},
		{"Total Amount", ledger.FieldTotalAmount},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			ft, conf := NameColumn(tt.header, 0)
			assert.Equal(t, tt.want, ft)
			assert.InDelta(t, exactMatchConfidence, conf, 1e-9)
		})
	}
}

func TestNameColumnAlternateSpelling(t *testing.T) {
	tests := []struct {
		header string
		want   ledger.FieldType
	}{
		{"amt", ledger.FieldTotalAmount},
		{"tarikh", ledger.FieldDate},
		{"opn", ledger.FieldOpeningReading},
		{"qty", ledger.FieldLitersSold},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			ft, conf := NameColumn(tt.header, 0)
			assert.Equal(t, tt.want, ft)
			assert.InDelta(t, alternateMatchConfidence, conf, 1e-9)
		})
	}
}

func TestNameColumnPositionalFallback(t *testing.T) {
	ft, conf := NameColumn("", 0)
	assert.Equal(t, ledger.FieldDate, ft)
	assert.InDelta(t, positionalMatchConfidence, conf, 1e-9)

	ft, conf = NameColumn("%%%", 7)
	assert.Equal(t, ledger.FieldTotalAmount, ft)
	assert.InDelta(t, positionalMatchConfidence, conf, 1e-9)

	ft, conf = NameColumn("", 12)
	assert.Equal(t, ledger.FieldUnknown, ft)
	assert.Zero(t, conf)
}

func TestRowIsUsable(t *testing.T) {
	assert.True(t, RowIsUsable([]string{"a", "b", "", ""}))
	assert.True(t, RowIsUsable([]string{"a", "b", "c", ""}))
	assert.False(t, RowIsUsable([]string{"a", "", "", ""}))
	assert.False(t, RowIsUsable(nil))
	assert.False(t, RowIsUsable([]string{" ", "\t"}))
}
