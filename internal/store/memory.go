package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/petropage/ledgerocr/internal/ledger"
)

// Memory is an in-process Store for tests and database-free CLI runs.
type Memory struct {
	mu      sync.RWMutex
	pages   map[uuid.UUID]ledger.LedgerPage
	entries map[uuid.UUID][]ledger.SalesEntry
	reports map[string]ledger.DailyReport
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		pages:   make(map[uuid.UUID]ledger.LedgerPage),
		entries: make(map[uuid.UUID][]ledger.SalesEntry),
		reports: make(map[string]ledger.DailyReport),
	}
}

func (m *Memory) SavePage(_ context.Context, page *ledger.LedgerPage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[page.ID] = *page
	return nil
}

func (m *Memory) GetPage(_ context.Context, id uuid.UUID) (*ledger.LedgerPage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	page, ok := m.pages[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &page, nil
}

func (m *Memory) ListPages(_ context.Context, status ledger.ProcessingStatus) ([]ledger.LedgerPage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []ledger.LedgerPage
	for _, p := range m.pages {
		if p.Status == status {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

func (m *Memory) SaveResults(_ context.Context, page *ledger.LedgerPage, entriesIn []ledger.SalesEntry, report *ledger.DailyReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[page.ID] = *page
	m.entries[page.ID] = append([]ledger.SalesEntry(nil), entriesIn...)
	if report != nil {
		m.reports[dateKey(report.ReportDate)] = *report
	}
	return nil
}

func (m *Memory) EntriesForPage(_ context.Context, pageID uuid.UUID) ([]ledger.SalesEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]ledger.SalesEntry(nil), m.entries[pageID]...), nil
}

func (m *Memory) EntriesForDate(_ context.Context, date time.Time) ([]ledger.SalesEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	key := dateKey(date)
	var out []ledger.SalesEntry
	for _, list := range m.entries {
		for _, e := range list {
			if e.Date != nil && dateKey(*e.Date) == key {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

func (m *Memory) UpdateEntry(_ context.Context, entry *ledger.SalesEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list, ok := m.entries[entry.LedgerPageID]
	if !ok {
		return ErrNotFound
	}
	for i := range list {
		if list[i].ID == entry.ID {
			list[i] = *entry
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) DailyReportFor(_ context.Context, date time.Time) (*ledger.DailyReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.reports[dateKey(date)]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (m *Memory) Close() {}

func dateKey(t time.Time) string { return t.Format("2006-01-02") }
