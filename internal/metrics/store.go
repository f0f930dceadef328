package metrics

import (
	"context"
	"time"

	"pos_ledger/internal/sales"
)

// InstrumentedStore times every call to the wrapped store.
type InstrumentedStore struct {
	next sales.Store
	m    *Manager
}

// InstrumentStore wraps next so its calls show up in m.
func InstrumentStore(next sales.Store, m *Manager) *InstrumentedStore {
	return &InstrumentedStore{next: next, m: m}
}

func (s *InstrumentedStore) GetValues(ctx context.Context, spreadsheetID, rng string) ([][]string, error) {
	start := time.Now()
	v, err := s.next.GetValues(ctx, spreadsheetID, rng)
	s.m.ObserveStoreCall("get_values", err, time.Since(start))
	return v, err
}

func (s *InstrumentedStore) AppendValues(ctx context.Context, spreadsheetID, rng string, rows [][]any) error {
	start := time.Now()
	err := s.next.AppendValues(ctx, spreadsheetID, rng, rows)
	s.m.ObserveStoreCall("append_values", err, time.Since(start))
	return err
}

func (s *InstrumentedStore) ListSheetTitles(ctx context.Context, spreadsheetID string) ([]string, error) {
	start := time.Now()
	titles, err := s.next.ListSheetTitles(ctx, spreadsheetID)
	s.m.ObserveStoreCall("list_sheet_titles", err, time.Since(start))
	return titles, err
}

func (s *InstrumentedStore) CreateSheet(ctx context.Context, spreadsheetID, title string) error {
	start := time.Now()
	err := s.next.CreateSheet(ctx, spreadsheetID, title)
	s.m.ObserveStoreCall("create_sheet", err, time.Since(start))
	return err
}
