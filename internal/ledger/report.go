package ledger

import (
	"time"

	"github.com/google/uuid"
)

// DailyReport aggregates the validated entries of a single date. It is
// derived data, recomputable from the SalesEntry history at any time.
type DailyReport struct {
	ID                 uuid.UUID `json:"id"`
	ReportDate         time.Time `json:"report_date"`
	TotalLitersPetrol  float64   `json:"total_liters_petrol"`
	TotalLitersDiesel  float64   `json:"total_liters_diesel"`
	TotalLitersCNG     float64   `json:"total_liters_cng"`
	TotalRevenuePetrol float64   `json:"total_revenue_petrol"`
	TotalRevenueDiesel float64   `json:"total_revenue_diesel"`
	TotalRevenueCNG    float64   `json:"total_revenue_cng"`
	GrandTotalLiters   float64   `json:"grand_total_liters"`
	GrandTotalRevenue  float64   `json:"grand_total_revenue"`
	NozzleCount        int       `json:"total_nozzles_count"`
	EntryCount         int       `json:"total_sales_entries"`
}

// MonthlyReport rolls daily reports up to a month. Peak and trend fields
// require the underlying daily series to be date-ordered.
type MonthlyReport struct {
	ID                 uuid.UUID  `json:"id"`
	Month              time.Month `json:"month"`
	Year               int        `json:"year"`
	TotalLitersPetrol  float64    `json:"total_liters_petrol"`
	TotalLitersDiesel  float64    `json:"total_liters_diesel"`
	TotalLitersCNG     float64    `json:"total_liters_cng"`
	TotalRevenuePetrol float64    `json:"total_revenue_petrol"`
	TotalRevenueDiesel float64    `json:"total_revenue_diesel"`
	TotalRevenueCNG    float64    `json:"total_revenue_cng"`
	AvgDailyLiters     float64    `json:"avg_daily_liters"`
	AvgDailyRevenue    float64    `json:"avg_daily_revenue"`
	PeakSalesDay       string     `json:"peak_sales_day,omitempty"`
	PeakSalesAmount    float64    `json:"peak_sales_amount"`
	OperationalDays    int        `json:"total_operational_days"`
	TrendIndicator     string     `json:"trend_indicator"`
}
