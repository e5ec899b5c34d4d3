// Package validate applies business rules to extracted sales entries.
// Errors make an entry unusable; warnings flag values an operator should
// look at but that may well be correct.
package validate

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/petropage/ledgerocr/internal/ledger"
)

// Business-rule bounds observed across pump operations. Rates are in local
// currency per liter; a reading past the meter's digit capacity is a misread.
const (
	// AmountTolerance is the largest accepted gap between the written
	// total and liters times rate before flagging a mismatch.
	AmountTolerance = 0.01

	MaxPlausibleLiters = 10_000.0
	MinPlausibleRate   = 50.0
	MaxPlausibleRate   = 250.0
	MaxPlausibleAmount = 100_000.0
	MaxMeterReading    = 999_999.0

	// MaxEntryAge flags dates implausibly far in the past.
	MaxEntryAge = 2 * 365 * 24 * time.Hour
)

// Issue is one finding against an entry field.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// EntryReport is the validation outcome for one entry.
type EntryReport struct {
	Index    int     `json:"index"`
	Errors   []Issue `json:"errors,omitempty"`
	Warnings []Issue `json:"warnings,omitempty"`
}

// Valid reports whether the entry passed without hard errors.
func (r *EntryReport) Valid() bool { return len(r.Errors) == 0 }

// DuplicateGroup names entries that repeat the same nozzle, fuel and volume.
type DuplicateGroup struct {
	NozzleID   string  `json:"nozzle_id"`
	FuelType   string  `json:"fuel_type"`
	LitersSold float64 `json:"liters_sold"`
	Positions  []int   `json:"positions"`
}

// BatchReport is the validation outcome for a page's entries.
type BatchReport struct {
	Entries      []EntryReport    `json:"entries"`
	Duplicates   []DuplicateGroup `json:"duplicates,omitempty"`
	PageWarnings []string         `json:"page_warnings,omitempty"`
	ErrorCount   int              `json:"error_count"`
	WarningCount int              `json:"warning_count"`
}

// Valid reports whether no entry carried a hard error.
func (b *BatchReport) Valid() bool { return b.ErrorCount == 0 }

// Entry validates a single sales entry against the business rules.
func Entry(index int, e *ledger.SalesEntry, now time.Time) EntryReport {
	r := EntryReport{Index: index}

	// Hard errors.
	if e.FuelType == "" {
		r.Errors = append(r.Errors, Issue{Field: "fuel_type", Message: "fuel type is missing"})
	}
	if e.LitersSold == nil {
		r.Errors = append(r.Errors, Issue{Field: "liters_sold", Message: "liters sold is missing"})
	} else if *e.LitersSold < 0 {
		r.Errors = append(r.Errors, Issue{Field: "liters_sold", Message: fmt.Sprintf("liters sold is negative (%.2f)", *e.LitersSold)})
	}
	if e.TotalAmount == nil {
		r.Errors = append(r.Errors, Issue{Field: "total_amount", Message: "total amount is missing"})
	} else if *e.TotalAmount < 0 {
		r.Errors = append(r.Errors, Issue{Field: "total_amount", Message: fmt.Sprintf("total amount is negative (%.2f)", *e.TotalAmount)})
	}
	if e.Date == nil {
		r.Errors = append(r.Errors, Issue{Field: "date", Message: "date is missing or unreadable"})
	}

	// Warnings.
	if e.LitersSold != nil && e.RatePerLiter != nil && e.TotalAmount != nil {
		expected := *e.LitersSold * *e.RatePerLiter
		if math.Abs(expected-*e.TotalAmount) > AmountTolerance {
			r.Warnings = append(r.Warnings, Issue{
				Field:   "total_amount",
				Message: fmt.Sprintf("amount %.2f differs from liters x rate %.2f", *e.TotalAmount, expected),
			})
		}
	}
	if e.LitersSold != nil && *e.LitersSold > MaxPlausibleLiters {
		r.Warnings = append(r.Warnings, Issue{Field: "liters_sold", Message: fmt.Sprintf("liters sold %.2f exceeds plausible single-entry volume", *e.LitersSold)})
	}
	if e.RatePerLiter != nil && (*e.RatePerLiter < MinPlausibleRate || *e.RatePerLiter > MaxPlausibleRate) {
		r.Warnings = append(r.Warnings, Issue{Field: "rate_per_liter", Message: fmt.Sprintf("rate %.2f is outside the plausible %g-%g range", *e.RatePerLiter, MinPlausibleRate, MaxPlausibleRate)})
	}
	if e.TotalAmount != nil && *e.TotalAmount > MaxPlausibleAmount {
		r.Warnings = append(r.Warnings, Issue{Field: "total_amount", Message: fmt.Sprintf("amount %.2f exceeds plausible single-entry revenue", *e.TotalAmount)})
	}
	for _, m := range []struct {
		field   string
		reading *float64
	}{
		{"opening_reading", e.OpeningReading},
		{"closing_reading", e.ClosingReading},
	} {
		if m.reading != nil && *m.reading > MaxMeterReading {
			r.Warnings = append(r.Warnings, Issue{Field: m.field, Message: fmt.Sprintf("meter reading %.0f exceeds meter capacity", *m.reading)})
		}
	}
	if w := nozzleWarning(e.NozzleID); w != "" {
		r.Warnings = append(r.Warnings, Issue{Field: "nozzle_id", Message: w})
	}
	if e.Date != nil {
		if e.Date.After(now) {
			r.Warnings = append(r.Warnings, Issue{Field: "date", Message: fmt.Sprintf("date %s is in the future", e.Date.Format("2006-01-02"))})
		} else if now.Sub(*e.Date) > MaxEntryAge {
			r.Warnings = append(r.Warnings, Issue{Field: "date", Message: fmt.Sprintf("date %s is more than two years old", e.Date.Format("2006-01-02"))})
		}
	}

	return r
}

// nozzleWarning flags IDs with no structure: all digits and all letters are
// both common misreads of e.g. "N-2".
func nozzleWarning(id string) string {
	if id == "" {
		return ""
	}
	digits, letters := 0, 0
	for _, r := range id {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			letters++
		}
	}
	n := len(id)
	if digits == n {
		return fmt.Sprintf("nozzle id %q is all digits", id)
	}
	if letters == n {
		return fmt.Sprintf("nozzle id %q is all letters", id)
	}
	return ""
}

// Batch validates all entries of a page and detects duplicates.
func Batch(entriesIn []ledger.SalesEntry, now time.Time) *BatchReport {
	b := &BatchReport{}
	for i := range entriesIn {
		r := Entry(i, &entriesIn[i], now)
		b.ErrorCount += len(r.Errors)
		b.WarningCount += len(r.Warnings)
		b.Entries = append(b.Entries, r)
	}
	b.Duplicates = FindDuplicates(entriesIn)
	b.WarningCount += len(b.Duplicates)
	b.PageWarnings = pageWarnings(entriesIn)
	b.WarningCount += len(b.PageWarnings)
	return b
}

// MaxNozzlesPerPage bounds the distinct nozzle IDs a single sheet can
// plausibly record; more usually means misread IDs.
const MaxNozzlesPerPage = 20

// pageWarnings checks rules that only make sense across the whole page.
func pageWarnings(entriesIn []ledger.SalesEntry) []string {
	if len(entriesIn) == 0 {
		return nil
	}
	var out []string

	nozzles := make(map[string]bool)
	litersSum := 0.0
	litersSeen := false
	for _, e := range entriesIn {
		if e.NozzleID != "" {
			nozzles[e.NozzleID] = true
		}
		if e.LitersSold != nil {
			litersSum += *e.LitersSold
			litersSeen = true
		}
	}
	if len(nozzles) > MaxNozzlesPerPage {
		out = append(out, fmt.Sprintf("%d distinct nozzle ids on one page (max %d plausible)",
			len(nozzles), MaxNozzlesPerPage))
	}
	if litersSeen && litersSum <= 0 {
		out = append(out, fmt.Sprintf("page total liters %.2f is not positive", litersSum))
	}
	return out
}

// FindDuplicates groups entries sharing nozzle, fuel type and liters sold.
// Positions are indexes into the input slice in order of appearance.
func FindDuplicates(entriesIn []ledger.SalesEntry) []DuplicateGroup {
	type key struct {
		nozzle string
		fuel   string
		liters float64
	}
	groups := make(map[key][]int)
	var order []key
	for i, e := range entriesIn {
		if e.LitersSold == nil {
			continue
		}
		k := key{nozzle: e.NozzleID, fuel: e.FuelType, liters: *e.LitersSold}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], i)
	}

	var dups []DuplicateGroup
	for _, k := range order {
		positions := groups[k]
		if len(positions) < 2 {
			continue
		}
		dups = append(dups, DuplicateGroup{
			NozzleID:   k.nozzle,
			FuelType:   k.fuel,
			LitersSold: k.liters,
			Positions:  positions,
		})
	}
	return dups
}

// Summarize renders a batch report as short operator-facing strings.
func Summarize(b *BatchReport) []string {
	var out []string
	for _, r := range b.Entries {
		for _, issue := range r.Errors {
			out = append(out, fmt.Sprintf("entry %d %s: %s", r.Index, issue.Field, issue.Message))
		}
		for _, issue := range r.Warnings {
			out = append(out, fmt.Sprintf("entry %d %s (warning): %s", r.Index, issue.Field, issue.Message))
		}
	}
	for _, d := range b.Duplicates {
		positions := make([]string, len(d.Positions))
		for i, p := range d.Positions {
			positions[i] = fmt.Sprintf("%d", p)
		}
		out = append(out, fmt.Sprintf("possible duplicate: nozzle %s %s %.2f L at entries %s",
			d.NozzleID, d.FuelType, d.LitersSold, strings.Join(positions, ", ")))
	}
	out = append(out, b.PageWarnings...)
	return out
}
