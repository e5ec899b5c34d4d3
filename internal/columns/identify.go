package columns

import (
	"fmt"
	"strings"

	"github.com/petropage/ledgerocr/internal/extract"
	"github.com/petropage/ledgerocr/internal/ledger"
)

// Scoring weights. Header-name evidence is worth twice a single matching
// cell; a numeric-looking column gets one bonus point toward numeric fields.
const (
	nameMatchWeight    = 2.0
	contentMatchWeight = 1.0
	numericBonus       = 1.0

	// ReviewThreshold flags a column mapping for manual review.
	ReviewThreshold = 0.6
)

// Match is the identified field for one column position.
type Match struct {
	Field      ledger.FieldType `json:"field"`
	Confidence float64          `json:"confidence"`
}

// Mapping is the full column identification result for a page.
type Mapping struct {
	Columns     map[int]Match `json:"columns"`
	NeedsReview []int         `json:"needs_review,omitempty"`
	Missing     []string      `json:"missing,omitempty"`
	Suggestions []string      `json:"suggestions,omitempty"`
}

// Valid reports whether every critical field was identified somewhere.
func (m *Mapping) Valid() bool { return len(m.Missing) == 0 }

// Identify scores each column of the extracted data against every field
// pattern set and keeps the best-scoring field per column.
func Identify(data *extract.PageData) *Mapping {
	m := &Mapping{Columns: make(map[int]Match)}
	if data == nil || len(data.Fields) == 0 {
		m.Missing = criticalNames()
		m.Suggestions = append(m.Suggestions, "no columns extracted; reprocess the page")
		return m
	}

	for pos := range data.Fields {
		name := headerNameFor(data, pos)
		cells := cellTextsFor(data, pos)

		best := Match{Field: ledger.FieldUnknown}
		bestScore := 0.0
		for _, ft := range scoringOrder {
			ps := fieldPatterns[ft]
			score := scoreColumn(name, cells, ps)
			if score > bestScore {
				bestScore = score
				best = Match{Field: ft, Confidence: confidenceFrom(score, len(ps.name))}
			}
		}
		if best.Field == ledger.FieldUnknown {
			best.Field = ledger.GuessFieldByPosition(pos)
		}
		m.Columns[pos] = best
		if best.Confidence < ReviewThreshold {
			m.NeedsReview = append(m.NeedsReview, pos)
		}
	}

	m.Missing, m.Suggestions = validateCritical(m.Columns)
	for _, pos := range m.NeedsReview {
		m.Suggestions = append(m.Suggestions,
			fmt.Sprintf("column %d mapped to %q with low confidence; verify against the sheet",
				pos, m.Columns[pos].Field))
	}
	return m
}

func scoreColumn(name string, cells []string, ps patternSet) float64 {
	score := 0.0
	for _, re := range ps.name {
		if name != "" && re.MatchString(name) {
			score += nameMatchWeight
		}
	}
	for _, cell := range cells {
		for _, re := range ps.content {
			if re.MatchString(cell) {
				score += contentMatchWeight
				break
			}
		}
	}
	if ps.numeric && mostlyNumeric(cells) {
		score += numericBonus
	}
	return score
}

// confidenceFrom normalizes a raw score against the maximum name-match
// score, doubled so strong partial evidence still clears review thresholds,
// and clamped to 1.
func confidenceFrom(score float64, namePatterns int) float64 {
	if namePatterns == 0 {
		return 0
	}
	max := float64(namePatterns) * nameMatchWeight
	conf := score / max
	if conf > 1 {
		conf = 1
	}
	conf *= 2
	if conf > 1 {
		conf = 1
	}
	return conf
}

func mostlyNumeric(cells []string) bool {
	if len(cells) == 0 {
		return false
	}
	numeric := 0
	for _, c := range cells {
		if ledger.LooksNumeric(c) {
			numeric++
		}
	}
	return numeric*2 > len(cells)
}

func headerNameFor(data *extract.PageData, pos int) string {
	if pos < len(data.Fields) {
		if label, ok := ledger.CanonicalLabels[data.Fields[pos]]; ok {
			return label
		}
	}
	return ""
}

func cellTextsFor(data *extract.PageData, pos int) []string {
	var out []string
	for _, row := range data.Rows {
		if pos < len(row.Cells) {
			if t := strings.TrimSpace(row.Cells[pos].Text); t != "" {
				out = append(out, t)
			}
		}
	}
	return out
}

func validateCritical(cols map[int]Match) (missing, suggestions []string) {
	found := make(map[ledger.FieldType]bool)
	for _, match := range cols {
		found[match.Field] = true
	}
	for _, critical := range ledger.CriticalFields {
		if !found[critical] {
			label := ledger.CanonicalLabels[critical]
			missing = append(missing, string(critical))
			suggestions = append(suggestions,
				fmt.Sprintf("no column identified as %q; check the header row or correct it manually", label))
		}
	}
	return missing, suggestions
}

func criticalNames() []string {
	out := make([]string, len(ledger.CriticalFields))
	for i, f := range ledger.CriticalFields {
		out[i] = string(f)
	}
	return out
}
