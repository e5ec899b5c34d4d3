// Package calc builds the derived reporting layer: daily and monthly
// aggregates, sales trends, discrepancy checks and per-nozzle performance.
// Money math runs through decimal so repeated summation cannot drift.
package calc

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/petropage/ledgerocr/internal/ledger"
)

// Trend comparison parameters: the most recent window is compared against
// the earliest window of the series, and moves inside the band count as flat.
const (
	trendWindowDays  = 7
	trendBandPercent = 5.0

	TrendUp      = "up"
	TrendDown    = "down"
	TrendNeutral = "neutral"

	// discrepancyFloor keeps relative discrepancies finite when the
	// expected figure is zero.
	discrepancyFloor = 0.001
)

// DailyReport aggregates one date's entries into per-fuel totals. Entries
// without liters or amount contribute what they have; fuel types outside the
// three tracked products only reach the grand totals. Kerosene and operator-
// specific fuels therefore show up in GrandTotalLiters/GrandTotalRevenue but
// have no per-fuel bucket of their own.
func DailyReport(date time.Time, entriesIn []ledger.SalesEntry) *ledger.DailyReport {
	r := &ledger.DailyReport{
		ID:         uuid.New(),
		ReportDate: date,
	}

	grandLiters := decimal.Zero
	grandRevenue := decimal.Zero
	nozzles := make(map[string]bool)

	for _, e := range entriesIn {
		liters := decimal.Zero
		if e.LitersSold != nil {
			liters = decimal.NewFromFloat(*e.LitersSold)
		}
		revenue := decimal.Zero
		if e.TotalAmount != nil {
			revenue = decimal.NewFromFloat(*e.TotalAmount)
		}

		switch e.FuelType {
		case ledger.FuelPetrol:
			r.TotalLitersPetrol = addFloat(r.TotalLitersPetrol, liters)
			r.TotalRevenuePetrol = addFloat(r.TotalRevenuePetrol, revenue)
		case ledger.FuelDiesel:
			r.TotalLitersDiesel = addFloat(r.TotalLitersDiesel, liters)
			r.TotalRevenueDiesel = addFloat(r.TotalRevenueDiesel, revenue)
		case ledger.FuelCNG:
			r.TotalLitersCNG = addFloat(r.TotalLitersCNG, liters)
			r.TotalRevenueCNG = addFloat(r.TotalRevenueCNG, revenue)
		}

		grandLiters = grandLiters.Add(liters)
		grandRevenue = grandRevenue.Add(revenue)
		if e.NozzleID != "" {
			nozzles[e.NozzleID] = true
		}
		r.EntryCount++
	}

	r.GrandTotalLiters, _ = grandLiters.Round(2).Float64()
	r.GrandTotalRevenue, _ = grandRevenue.Round(2).Float64()
	r.NozzleCount = len(nozzles)
	return r
}

func addFloat(current float64, add decimal.Decimal) float64 {
	v, _ := decimal.NewFromFloat(current).Add(add).Round(2).Float64()
	return v
}

// MonthlyReport rolls a month's daily reports up. The input must be sorted
// by date ascending; out-of-month days are skipped.
func MonthlyReport(year int, month time.Month, dailies []ledger.DailyReport) *ledger.MonthlyReport {
	r := &ledger.MonthlyReport{
		ID:    uuid.New(),
		Month: month,
		Year:  year,
	}

	totalLiters := decimal.Zero
	totalRevenue := decimal.Zero
	var revenues []float64

	for _, d := range dailies {
		if d.ReportDate.Year() != year || d.ReportDate.Month() != month {
			continue
		}
		r.TotalLitersPetrol = addFloat(r.TotalLitersPetrol, decimal.NewFromFloat(d.TotalLitersPetrol))
		r.TotalLitersDiesel = addFloat(r.TotalLitersDiesel, decimal.NewFromFloat(d.TotalLitersDiesel))
		r.TotalLitersCNG = addFloat(r.TotalLitersCNG, decimal.NewFromFloat(d.TotalLitersCNG))
		r.TotalRevenuePetrol = addFloat(r.TotalRevenuePetrol, decimal.NewFromFloat(d.TotalRevenuePetrol))
		r.TotalRevenueDiesel = addFloat(r.TotalRevenueDiesel, decimal.NewFromFloat(d.TotalRevenueDiesel))
		r.TotalRevenueCNG = addFloat(r.TotalRevenueCNG, decimal.NewFromFloat(d.TotalRevenueCNG))

		totalLiters = totalLiters.Add(decimal.NewFromFloat(d.GrandTotalLiters))
		totalRevenue = totalRevenue.Add(decimal.NewFromFloat(d.GrandTotalRevenue))
		revenues = append(revenues, d.GrandTotalRevenue)

		if d.GrandTotalRevenue > r.PeakSalesAmount {
			r.PeakSalesAmount = d.GrandTotalRevenue
			r.PeakSalesDay = d.ReportDate.Format("2006-01-02")
		}
		r.OperationalDays++
	}

	if r.OperationalDays > 0 {
		days := decimal.NewFromInt(int64(r.OperationalDays))
		r.AvgDailyLiters, _ = totalLiters.Div(days).Round(2).Float64()
		r.AvgDailyRevenue, _ = totalRevenue.Div(days).Round(2).Float64()
	}
	r.TrendIndicator = Trend(revenues)
	return r
}

// Trend compares the mean of the most recent window against the mean of the
// earliest window of a date-ordered revenue series. The windows overlap for
// series shorter than twice the window, so a two-day series reads neutral:
// both windows are the whole series. Moves within the band are neutral too.
func Trend(series []float64) string {
	if len(series) < 2 {
		return TrendNeutral
	}
	window := trendWindowDays
	if window > len(series) {
		window = len(series)
	}

	early := mean(series[:window])
	recent := mean(series[len(series)-window:])
	if early == 0 {
		return TrendNeutral
	}

	changePct := (recent - early) / early * 100
	switch {
	case changePct > trendBandPercent:
		return TrendUp
	case changePct < -trendBandPercent:
		return TrendDown
	default:
		return TrendNeutral
	}
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// Discrepancy is one gap between an expected figure and what the ledger
// records show.
type Discrepancy struct {
	Metric   string  `json:"metric"`
	Expected float64 `json:"expected"`
	Actual   float64 `json:"actual"`
	Relative float64 `json:"relative"`
}

// CompareToExpected reports relative gaps between expected figures and the
// aggregated actuals. The relative denominator is floored so a zero
// expectation cannot blow the ratio up.
func CompareToExpected(expectedLiters, expectedRevenue float64, actual *ledger.DailyReport) []Discrepancy {
	var out []Discrepancy
	out = appendDiscrepancy(out, "liters", expectedLiters, actual.GrandTotalLiters)
	out = appendDiscrepancy(out, "revenue", expectedRevenue, actual.GrandTotalRevenue)
	return out
}

func appendDiscrepancy(out []Discrepancy, metric string, expected, actual float64) []Discrepancy {
	denom := expected
	if denom < discrepancyFloor && denom > -discrepancyFloor {
		denom = discrepancyFloor
	}
	rel := (actual - expected) / denom
	return append(out, Discrepancy{Metric: metric, Expected: expected, Actual: actual, Relative: rel})
}
