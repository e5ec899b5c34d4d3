// Package store persists ledger pages, sales entries and daily reports.
// The Postgres implementation rides pgx; the memory implementation backs
// tests and single-shot CLI runs without a database.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/petropage/ledgerocr/internal/ledger"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store is the persistence surface of the pipeline.
type Store interface {
	// SavePage inserts or replaces a ledger page.
	SavePage(ctx context.Context, page *ledger.LedgerPage) error

	// GetPage fetches a page by id, ErrNotFound when absent.
	GetPage(ctx context.Context, id uuid.UUID) (*ledger.LedgerPage, error)

	// ListPages returns pages in a status, most recently uploaded first.
	ListPages(ctx context.Context, status ledger.ProcessingStatus) ([]ledger.LedgerPage, error)

	// SaveResults atomically records a completed processing run: the
	// updated page, its entries (replacing any prior extraction) and the
	// recomputed daily report.
	SaveResults(ctx context.Context, page *ledger.LedgerPage, entries []ledger.SalesEntry, report *ledger.DailyReport) error

	// EntriesForPage returns a page's entries in extraction order.
	EntriesForPage(ctx context.Context, pageID uuid.UUID) ([]ledger.SalesEntry, error)

	// EntriesForDate returns all entries dated on the given day.
	EntriesForDate(ctx context.Context, date time.Time) ([]ledger.SalesEntry, error)

	// UpdateEntry replaces a single entry, ErrNotFound when absent. Used
	// for manual corrections.
	UpdateEntry(ctx context.Context, entry *ledger.SalesEntry) error

	// DailyReportFor fetches the stored report for a date, ErrNotFound
	// when absent.
	DailyReportFor(ctx context.Context, date time.Time) (*ledger.DailyReport, error)

	// Close releases storage resources.
	Close()
}
