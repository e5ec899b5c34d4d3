package calc

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/petropage/ledgerocr/internal/ledger"
)

// validationTolerance is the accepted relative gap when checking recorded
// totals against expected figures.
const validationTolerance = 0.05

// NozzlePerformance summarizes one nozzle's activity over a set of entries.
type NozzlePerformance struct {
	NozzleID     string  `json:"nozzle_id"`
	FuelType     string  `json:"fuel_type"`
	TotalLiters  float64 `json:"total_liters"`
	TotalRevenue float64 `json:"total_revenue"`
	EntryCount   int     `json:"entry_count"`
	AvgLiters    float64 `json:"avg_liters"`
}

// NozzleBreakdown aggregates entries per nozzle, sorted by revenue
// descending so the busiest nozzle leads.
func NozzleBreakdown(entriesIn []ledger.SalesEntry) []NozzlePerformance {
	byNozzle := make(map[string]*NozzlePerformance)
	var order []string

	for _, e := range entriesIn {
		if e.NozzleID == "" {
			continue
		}
		p, ok := byNozzle[e.NozzleID]
		if !ok {
			p = &NozzlePerformance{NozzleID: e.NozzleID, FuelType: e.FuelType}
			byNozzle[e.NozzleID] = p
			order = append(order, e.NozzleID)
		}
		if e.LitersSold != nil {
			p.TotalLiters = addFloat(p.TotalLiters, decimal.NewFromFloat(*e.LitersSold))
		}
		if e.TotalAmount != nil {
			p.TotalRevenue = addFloat(p.TotalRevenue, decimal.NewFromFloat(*e.TotalAmount))
		}
		p.EntryCount++
	}

	out := make([]NozzlePerformance, 0, len(order))
	for _, id := range order {
		p := byNozzle[id]
		if p.EntryCount > 0 {
			avg, _ := decimal.NewFromFloat(p.TotalLiters).
				Div(decimal.NewFromInt(int64(p.EntryCount))).Round(2).Float64()
			p.AvgLiters = avg
		}
		out = append(out, *p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalRevenue > out[j].TotalRevenue })
	return out
}

// SummaryStats are headline figures over a set of entries.
type SummaryStats struct {
	EntryCount    int     `json:"entry_count"`
	TotalLiters   float64 `json:"total_liters"`
	TotalRevenue  float64 `json:"total_revenue"`
	AvgRate       float64 `json:"avg_rate"`
	FuelTypeCount int     `json:"fuel_type_count"`
	NozzleCount   int     `json:"nozzle_count"`
}

// Summarize computes headline figures for a set of entries.
func Summarize(entriesIn []ledger.SalesEntry) SummaryStats {
	s := SummaryStats{EntryCount: len(entriesIn)}
	liters := decimal.Zero
	revenue := decimal.Zero
	rateSum := decimal.Zero
	rateCount := 0
	fuels := make(map[string]bool)
	nozzles := make(map[string]bool)

	for _, e := range entriesIn {
		if e.LitersSold != nil {
			liters = liters.Add(decimal.NewFromFloat(*e.LitersSold))
		}
		if e.TotalAmount != nil {
			revenue = revenue.Add(decimal.NewFromFloat(*e.TotalAmount))
		}
		if e.RatePerLiter != nil {
			rateSum = rateSum.Add(decimal.NewFromFloat(*e.RatePerLiter))
			rateCount++
		}
		if e.FuelType != "" {
			fuels[e.FuelType] = true
		}
		if e.NozzleID != "" {
			nozzles[e.NozzleID] = true
		}
	}

	s.TotalLiters, _ = liters.Round(2).Float64()
	s.TotalRevenue, _ = revenue.Round(2).Float64()
	if rateCount > 0 {
		s.AvgRate, _ = rateSum.Div(decimal.NewFromInt(int64(rateCount))).Round(2).Float64()
	}
	s.FuelTypeCount = len(fuels)
	s.NozzleCount = len(nozzles)
	return s
}

// ProfitMargin computes revenue minus cost for a fuel, where cost is the
// purchase rate per liter times the liters sold.
type ProfitMargin struct {
	FuelType      string  `json:"fuel_type"`
	Revenue       float64 `json:"revenue"`
	Cost          float64 `json:"cost"`
	Margin        float64 `json:"margin"`
	MarginPercent float64 `json:"margin_percent"`
}

// ProfitMargins computes a per-fuel margin given purchase rates per liter.
// Fuels without a known purchase rate are skipped.
func ProfitMargins(entriesIn []ledger.SalesEntry, purchaseRates map[string]float64) []ProfitMargin {
	type bucket struct {
		liters  decimal.Decimal
		revenue decimal.Decimal
	}
	buckets := make(map[string]*bucket)
	var order []string

	for _, e := range entriesIn {
		if e.FuelType == "" {
			continue
		}
		b, ok := buckets[e.FuelType]
		if !ok {
			b = &bucket{liters: decimal.Zero, revenue: decimal.Zero}
			buckets[e.FuelType] = b
			order = append(order, e.FuelType)
		}
		if e.LitersSold != nil {
			b.liters = b.liters.Add(decimal.NewFromFloat(*e.LitersSold))
		}
		if e.TotalAmount != nil {
			b.revenue = b.revenue.Add(decimal.NewFromFloat(*e.TotalAmount))
		}
	}

	var out []ProfitMargin
	for _, fuel := range order {
		rate, ok := purchaseRates[fuel]
		if !ok {
			continue
		}
		b := buckets[fuel]
		cost := b.liters.Mul(decimal.NewFromFloat(rate))
		margin := b.revenue.Sub(cost)

		m := ProfitMargin{FuelType: fuel}
		m.Revenue, _ = b.revenue.Round(2).Float64()
		m.Cost, _ = cost.Round(2).Float64()
		m.Margin, _ = margin.Round(2).Float64()
		if !b.revenue.IsZero() {
			pct, _ := margin.Div(b.revenue).Mul(decimal.NewFromInt(100)).Round(2).Float64()
			m.MarginPercent = pct
		}
		out = append(out, m)
	}
	return out
}

// ValidateTotals checks the aggregated actuals against expected figures
// within the standard tolerance, returning only the discrepancies that
// exceed it.
func ValidateTotals(expectedLiters, expectedRevenue float64, actual *ledger.DailyReport) []Discrepancy {
	var out []Discrepancy
	for _, d := range CompareToExpected(expectedLiters, expectedRevenue, actual) {
		if d.Relative > validationTolerance || d.Relative < -validationTolerance {
			out = append(out, d)
		}
	}
	return out
}
