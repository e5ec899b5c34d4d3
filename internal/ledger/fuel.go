package ledger

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Canonical fuel type names recorded on sales entries.
const (
	FuelPetrol   = "Petrol"
	FuelDiesel   = "Diesel"
	FuelCNG      = "CNG"
	FuelKerosene = "Kerosene"
)

var titleCaser = cases.Title(language.English)

var fuelAliases = []struct {
	canonical string
	keywords  []string
}{
	{FuelPetrol, []string{"petrol", "gasoline", "benzin", "benzene", "premium"}},
	{FuelDiesel, []string{"diesel", "dizel", "petrodiesel", "high speed diesel", "hsd"}},
	{FuelCNG, []string{"cng", "compressed natural gas", "natural gas"}},
	{FuelKerosene, []string{"kerosene", "paraffin", "coal oil"}},
}

// NormalizeFuelType maps the many handwritten spellings of a fuel name to one
// of the canonical types. Unrecognized values are returned title-cased so the
// operator's own wording survives. Normalization is idempotent.
func NormalizeFuelType(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	lower := strings.ToLower(trimmed)
	for _, alias := range fuelAliases {
		for _, kw := range alias.keywords {
			if strings.Contains(lower, kw) {
				return alias.canonical
			}
		}
	}
	return titleCaser.String(lower)
}

// IsKnownFuelType reports whether the value is one of the canonical types.
func IsKnownFuelType(fuel string) bool {
	switch fuel {
	case FuelPetrol, FuelDiesel, FuelCNG, FuelKerosene:
		return true
	}
	return false
}
