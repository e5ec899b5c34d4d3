package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2026-08-27", "2026-08-27"},
		{"27/08/2026", "2026-08-27"},
		{"27-08-2026", "2026-08-27"},
		{"08/27/2026", "2026-08-27"},
		{"5/3/26", "2026-03-05"},
		{" 27/08/2026 ", "2026-08-27"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDate(tt.in)
			require.True(t, ok)
			assert.Equal(t, tt.want, got.Format("2006-01-02"))
		})
	}
}

func TestParseDateAmbiguousPrefersDayFirst(t *testing.T) {
	// 05/03 could be 5 March or 3 May; ledger convention is day first.
	got, ok := ParseDate("05/03/2026")
	require.True(t, ok)
	assert.Equal(t, time.March, got.Month())
	assert.Equal(t, 5, got.Day())
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "Petrol", "99/99/2026", "12345", "--"} {
		_, ok := ParseDate(in)
		assert.False(t, ok, "input %q", in)
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1234", 1234, true},
		{"1,234.50", 1234.50, true},
		{"Rs 5000", 5000, true},
		{"  85.5 L", 85.5, true},
		{"-12", -12, true},
		{"", 0, false},
		{"abc", 0, false},
		{"..", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseNumber(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestLooksNumeric(t *testing.T) {
	assert.True(t, LooksNumeric("12345"))
	assert.True(t, LooksNumeric("123a5"))
	assert.False(t, LooksNumeric("Petrol"))
	assert.False(t, LooksNumeric(""))
}

func TestContainsDatePattern(t *testing.T) {
	assert.True(t, ContainsDatePattern("sold on 27/08/2026 evening"))
	assert.False(t, ContainsDatePattern("no dates here"))
}
