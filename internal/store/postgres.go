package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/petropage/ledgerocr/internal/ledger"
)

// Postgres is the pgx-backed Store.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ Store = (*Postgres)(nil)

// NewPostgres connects to the database and verifies connectivity.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) SavePage(ctx context.Context, page *ledger.LedgerPage) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO ledger_pages
			(id, original_image_url, processing_status, processing_errors,
			 ocr_confidence_score, detected_columns, extracted_data, uploaded_at, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			processing_status = EXCLUDED.processing_status,
			processing_errors = EXCLUDED.processing_errors,
			ocr_confidence_score = EXCLUDED.ocr_confidence_score,
			detected_columns = EXCLUDED.detected_columns,
			extracted_data = EXCLUDED.extracted_data,
			processed_at = EXCLUDED.processed_at`,
		page.ID, page.OriginalImageURL, page.Status, page.ProcessingErrors,
		page.ConfidenceScore, page.DetectedColumns, page.ExtractedData,
		page.UploadedAt, page.ProcessedAt)
	if err != nil {
		return fmt.Errorf("save page %s: %w", page.ID, err)
	}
	return nil
}

func (p *Postgres) GetPage(ctx context.Context, id uuid.UUID) (*ledger.LedgerPage, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT id, original_image_url, processing_status, processing_errors,
		       ocr_confidence_score, detected_columns, extracted_data, uploaded_at, processed_at
		FROM ledger_pages WHERE id = $1`, id)
	page, err := scanPage(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get page %s: %w", id, err)
	}
	return page, nil
}

func (p *Postgres) ListPages(ctx context.Context, status ledger.ProcessingStatus) ([]ledger.LedgerPage, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, original_image_url, processing_status, processing_errors,
		       ocr_confidence_score, detected_columns, extracted_data, uploaded_at, processed_at
		FROM ledger_pages WHERE processing_status = $1
		ORDER BY uploaded_at DESC`, status)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	defer rows.Close()

	var out []ledger.LedgerPage
	for rows.Next() {
		page, err := scanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("list pages: %w", err)
		}
		out = append(out, *page)
	}
	return out, rows.Err()
}

// SaveResults runs in one transaction so a crash cannot leave the page
// completed with half its entries missing.
func (p *Postgres) SaveResults(ctx context.Context, page *ledger.LedgerPage, entriesIn []ledger.SalesEntry, report *ledger.DailyReport) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save results: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		UPDATE ledger_pages SET
			processing_status = $2, processing_errors = $3,
			ocr_confidence_score = $4, detected_columns = $5,
			extracted_data = $6, processed_at = $7
		WHERE id = $1`,
		page.ID, page.Status, page.ProcessingErrors, page.ConfidenceScore,
		page.DetectedColumns, page.ExtractedData, page.ProcessedAt)
	if err != nil {
		return fmt.Errorf("update page %s: %w", page.ID, err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM sales_entries WHERE ledger_page_id = $1`, page.ID); err != nil {
		return fmt.Errorf("clear prior entries for %s: %w", page.ID, err)
	}
	for i := range entriesIn {
		e := &entriesIn[i]
		_, err := tx.Exec(ctx, `
			INSERT INTO sales_entries
				(id, ledger_page_id, entry_date, nozzle_id, fuel_type,
				 opening_reading, closing_reading, liters_sold, rate_per_liter,
				 total_amount, ocr_confidence, manual_corrected, correction_notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			e.ID, e.LedgerPageID, e.Date, e.NozzleID, e.FuelType,
			e.OpeningReading, e.ClosingReading, e.LitersSold, e.RatePerLiter,
			e.TotalAmount, e.OCRConfidence, e.ManualCorrected, e.CorrectionNotes)
		if err != nil {
			return fmt.Errorf("insert entry %s: %w", e.ID, err)
		}
	}

	if report != nil {
		_, err := tx.Exec(ctx, `
			INSERT INTO daily_reports
				(id, report_date, total_liters_petrol, total_liters_diesel, total_liters_cng,
				 total_revenue_petrol, total_revenue_diesel, total_revenue_cng,
				 grand_total_liters, grand_total_revenue, total_nozzles_count, total_sales_entries)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (report_date) DO UPDATE SET
				total_liters_petrol = EXCLUDED.total_liters_petrol,
				total_liters_diesel = EXCLUDED.total_liters_diesel,
				total_liters_cng = EXCLUDED.total_liters_cng,
				total_revenue_petrol = EXCLUDED.total_revenue_petrol,
				total_revenue_diesel = EXCLUDED.total_revenue_diesel,
				total_revenue_cng = EXCLUDED.total_revenue_cng,
				grand_total_liters = EXCLUDED.grand_total_liters,
				grand_total_revenue = EXCLUDED.grand_total_revenue,
				total_nozzles_count = EXCLUDED.total_nozzles_count,
				total_sales_entries = EXCLUDED.total_sales_entries`,
			report.ID, report.ReportDate,
			report.TotalLitersPetrol, report.TotalLitersDiesel, report.TotalLitersCNG,
			report.TotalRevenuePetrol, report.TotalRevenueDiesel, report.TotalRevenueCNG,
			report.GrandTotalLiters, report.GrandTotalRevenue,
			report.NozzleCount, report.EntryCount)
		if err != nil {
			return fmt.Errorf("upsert daily report: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit save results: %w", err)
	}
	return nil
}

func (p *Postgres) EntriesForPage(ctx context.Context, pageID uuid.UUID) ([]ledger.SalesEntry, error) {
	return p.queryEntries(ctx, `
		SELECT id, ledger_page_id, entry_date, nozzle_id, fuel_type,
		       opening_reading, closing_reading, liters_sold, rate_per_liter,
		       total_amount, ocr_confidence, manual_corrected, correction_notes
		FROM sales_entries WHERE ledger_page_id = $1 ORDER BY id`, pageID)
}

func (p *Postgres) EntriesForDate(ctx context.Context, date time.Time) ([]ledger.SalesEntry, error) {
	return p.queryEntries(ctx, `
		SELECT id, ledger_page_id, entry_date, nozzle_id, fuel_type,
		       opening_reading, closing_reading, liters_sold, rate_per_liter,
		       total_amount, ocr_confidence, manual_corrected, correction_notes
		FROM sales_entries WHERE entry_date = $1 ORDER BY id`, date)
}

func (p *Postgres) queryEntries(ctx context.Context, sql string, arg any) ([]ledger.SalesEntry, error) {
	rows, err := p.pool.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var out []ledger.SalesEntry
	for rows.Next() {
		var e ledger.SalesEntry
		err := rows.Scan(&e.ID, &e.LedgerPageID, &e.Date, &e.NozzleID, &e.FuelType,
			&e.OpeningReading, &e.ClosingReading, &e.LitersSold, &e.RatePerLiter,
			&e.TotalAmount, &e.OCRConfidence, &e.ManualCorrected, &e.CorrectionNotes)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (p *Postgres) UpdateEntry(ctx context.Context, e *ledger.SalesEntry) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE sales_entries SET
			entry_date = $2, nozzle_id = $3, fuel_type = $4,
			opening_reading = $5, closing_reading = $6, liters_sold = $7,
			rate_per_liter = $8, total_amount = $9, ocr_confidence = $10,
			manual_corrected = $11, correction_notes = $12
		WHERE id = $1`,
		e.ID, e.Date, e.NozzleID, e.FuelType,
		e.OpeningReading, e.ClosingReading, e.LitersSold,
		e.RatePerLiter, e.TotalAmount, e.OCRConfidence,
		e.ManualCorrected, e.CorrectionNotes)
	if err != nil {
		return fmt.Errorf("update entry %s: %w", e.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) DailyReportFor(ctx context.Context, date time.Time) (*ledger.DailyReport, error) {
	var r ledger.DailyReport
	err := p.pool.QueryRow(ctx, `
		SELECT id, report_date, total_liters_petrol, total_liters_diesel, total_liters_cng,
		       total_revenue_petrol, total_revenue_diesel, total_revenue_cng,
		       grand_total_liters, grand_total_revenue, total_nozzles_count, total_sales_entries
		FROM daily_reports WHERE report_date = $1`, date).
		Scan(&r.ID, &r.ReportDate,
			&r.TotalLitersPetrol, &r.TotalLitersDiesel, &r.TotalLitersCNG,
			&r.TotalRevenuePetrol, &r.TotalRevenueDiesel, &r.TotalRevenueCNG,
			&r.GrandTotalLiters, &r.GrandTotalRevenue, &r.NozzleCount, &r.EntryCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("daily report for %s: %w", date.Format("2006-01-02"), err)
	}
	return &r, nil
}

func (p *Postgres) Close() { p.pool.Close() }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPage(row rowScanner) (*ledger.LedgerPage, error) {
	var page ledger.LedgerPage
	err := row.Scan(&page.ID, &page.OriginalImageURL, &page.Status, &page.ProcessingErrors,
		&page.ConfidenceScore, &page.DetectedColumns, &page.ExtractedData,
		&page.UploadedAt, &page.ProcessedAt)
	if err != nil {
		return nil, err
	}
	return &page, nil
}
