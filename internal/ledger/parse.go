package ledger

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateFormats are tried in order; the first successful parse wins.
var DateFormats = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"01/02/2006",
	"01-02-2006",
}

var (
	nonNumericRe  = regexp.MustCompile(`[^\d.\-]`)
	numericTextRe = regexp.MustCompile(`^\d+\.?\d*$`)
	datePatternRe = regexp.MustCompile(`\b\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4}\b`)
	shortDateRe   = regexp.MustCompile(`(\d{1,2})[/\-](\d{1,2})[/\-](\d{2,4})`)
)

// ParseDate parses handwritten date text against the supported formats.
// It falls back to a loose day/month/year pattern match (two-digit years are
// assumed to be in the 21st century). Returns false when nothing matches.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range DateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	m := shortDateRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if len(m[3]) == 2 {
		year += 2000
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

// ParseNumber strips everything except digits, decimal point and sign, then
// parses the remainder as a float. A failed parse returns false, never an error:
// an unreadable cell is missing data, not a processing fault.
func ParseNumber(s string) (float64, bool) {
	cleaned := nonNumericRe.ReplaceAllString(s, "")
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// LooksNumeric reports whether more than half of the non-space characters in
// the text are digits.
func LooksNumeric(s string) bool {
	compact := strings.ReplaceAll(s, " ", "")
	if compact == "" {
		return false
	}
	digits := 0
	for _, r := range compact {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return float64(digits)/float64(len(compact)) > 0.5
}

// IsPlainNumber reports whether the text is a bare unsigned decimal number.
func IsPlainNumber(s string) bool {
	return numericTextRe.MatchString(strings.TrimSpace(s))
}

// ContainsDatePattern reports whether the text contains a D/M/Y-shaped token.
func ContainsDatePattern(s string) bool {
	return datePatternRe.MatchString(s)
}
