package validate

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petropage/ledgerocr/internal/ledger"
	"github.com/petropage/ledgerocr/internal/testutil"
)

var testNow = time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)

func validEntry() ledger.SalesEntry {
	e := testutil.Entry(ledger.FuelPetrol, 50, 100, 5000)
	date := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)
	e.Date = &date
	return e
}

func TestEntryCleanPasses(t *testing.T) {
	e := validEntry()
	r := Entry(0, &e, testNow)
	assert.True(t, r.Valid())
	assert.Empty(t, r.Warnings)
}

func TestEntryHardErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ledger.SalesEntry)
		field  string
	}{
		{"missing fuel", func(e *ledger.SalesEntry) { e.FuelType = "" }, "fuel_type"},
		{"missing liters", func(e *ledger.SalesEntry) { e.LitersSold = nil }, "liters_sold"},
		{"negative liters", func(e *ledger.SalesEntry) { e.LitersSold = testutil.F(-5) }, "liters_sold"},
		{"missing amount", func(e *ledger.SalesEntry) { e.TotalAmount = nil }, "total_amount"},
		{"negative amount", func(e *ledger.SalesEntry) { e.TotalAmount = testutil.F(-100) }, "total_amount"},
		{"missing date", func(e *ledger.SalesEntry) { e.Date = nil }, "date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEntry()
			tt.mutate(&e)
			r := Entry(0, &e, testNow)
			require.False(t, r.Valid())
			assert.Equal(t, tt.field, r.Errors[0].Field)
		})
	}
}

func TestEntryWarnings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ledger.SalesEntry)
		field  string
	}{
		{"amount mismatch", func(e *ledger.SalesEntry) { e.TotalAmount = testutil.F(5001) }, "total_amount"},
		{"huge liters", func(e *ledger.SalesEntry) {
			e.LitersSold = testutil.F(10001)
			e.RatePerLiter = nil
			e.TotalAmount = testutil.F(100)
		}, "liters_sold"},
		{"rate too low", func(e *ledger.SalesEntry) {
			e.RatePerLiter = testutil.F(49)
			e.TotalAmount = testutil.F(2450)
		}, "rate_per_liter"},
		{"rate too high", func(e *ledger.SalesEntry) {
			e.RatePerLiter = testutil.F(251)
			e.TotalAmount = testutil.F(12550)
		}, "rate_per_liter"},
		{"meter overflow", func(e *ledger.SalesEntry) { e.ClosingReading = testutil.F(1_000_001) }, "closing_reading"},
		{"all digit nozzle", func(e *ledger.SalesEntry) { e.NozzleID = "12" }, "nozzle_id"},
		{"all alpha nozzle", func(e *ledger.SalesEntry) { e.NozzleID = "AB" }, "nozzle_id"},
		{"future date", func(e *ledger.SalesEntry) {
			d := testNow.AddDate(0, 0, 2)
			e.Date = &d
		}, "date"},
		{"stale date", func(e *ledger.SalesEntry) {
			d := testNow.AddDate(-3, 0, 0)
			e.Date = &d
		}, "date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEntry()
			tt.mutate(&e)
			r := Entry(0, &e, testNow)
			assert.True(t, r.Valid(), "warnings must not become errors")
			require.NotEmpty(t, r.Warnings)
			found := false
			for _, w := range r.Warnings {
				if w.Field == tt.field {
					found = true
				}
			}
			assert.True(t, found, "expected warning on %s, got %+v", tt.field, r.Warnings)
		})
	}
}

func TestAmountWithinToleranceAccepted(t *testing.T) {
	e := validEntry()
	e.TotalAmount = testutil.F(5000.005)
	r := Entry(0, &e, testNow)
	assert.Empty(t, r.Warnings)
}

func TestFindDuplicates(t *testing.T) {
	entries := []ledger.SalesEntry{
		testutil.Entry(ledger.FuelPetrol, 50, 100, 5000),
		testutil.Entry(ledger.FuelDiesel, 30, 90, 2700),
		testutil.Entry(ledger.FuelPetrol, 50, 100, 5000),
	}
	entries[1].NozzleID = "N-2"

	dups := FindDuplicates(entries)
	require.Len(t, dups, 1)
	assert.Equal(t, "N-1", dups[0].NozzleID)
	assert.Equal(t, ledger.FuelPetrol, dups[0].FuelType)
	assert.InDelta(t, 50, dups[0].LitersSold, 1e-9)
	assert.Equal(t, []int{0, 2}, dups[0].Positions)
}

func TestFindDuplicatesIgnoresMissingLiters(t *testing.T) {
	a := testutil.Entry(ledger.FuelPetrol, 0, 100, 0)
	a.LitersSold = nil
	b := testutil.Entry(ledger.FuelPetrol, 0, 100, 0)
	b.LitersSold = nil
	assert.Empty(t, FindDuplicates([]ledger.SalesEntry{a, b}))
}

func TestBatchCounts(t *testing.T) {
	good := validEntry()
	bad := validEntry()
	bad.FuelType = ""
	bad.TotalAmount = testutil.F(9999)

	b := Batch([]ledger.SalesEntry{good, bad}, testNow)
	assert.False(t, b.Valid())
	assert.Equal(t, 1, b.ErrorCount)
	assert.GreaterOrEqual(t, b.WarningCount, 1)
	assert.Len(t, b.Entries, 2)
}

func TestValidationMonotonic(t *testing.T) {
	// Degrading one more field never removes previously reported issues.
	e := validEntry()
	base := Entry(0, &e, testNow)

	e.LitersSold = nil
	worse := Entry(0, &e, testNow)
	assert.Greater(t, len(worse.Errors), len(base.Errors))

	e.FuelType = ""
	worst := Entry(0, &e, testNow)
	assert.Greater(t, len(worst.Errors), len(worse.Errors))
}

func TestPageWarnings(t *testing.T) {
	var crowded []ledger.SalesEntry
	for i := 0; i < MaxNozzlesPerPage+1; i++ {
		e := validEntry()
		e.NozzleID = fmt.Sprintf("N-%d", i+1)
		crowded = append(crowded, e)
	}
	b := Batch(crowded, testNow)
	require.Len(t, b.PageWarnings, 1)
	assert.Contains(t, b.PageWarnings[0], "distinct nozzle ids")
	assert.Contains(t, Summarize(b), b.PageWarnings[0])

	zeroed := validEntry()
	zeroed.LitersSold = testutil.F(0)
	b = Batch([]ledger.SalesEntry{zeroed}, testNow)
	found := false
	for _, w := range b.PageWarnings {
		if strings.Contains(w, "not positive") {
			found = true
		}
	}
	assert.True(t, found)

	assert.Empty(t, Batch([]ledger.SalesEntry{validEntry()}, testNow).PageWarnings)
}
