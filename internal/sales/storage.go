package sales

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"pos_ledger/internal/a1"
)

// ErrSheetNotFound is returned when a range names a sheet that does not exist.
var ErrSheetNotFound = errors.New("sheet not found")

// ErrSheetExists is returned when creating a sheet whose title is taken.
var ErrSheetExists = errors.New("sheet already exists")

// ValueReader reads a rectangular range of cell values. Trailing empty cells
// and rows are omitted, as the Sheets API does.
type ValueReader interface {
	GetValues(ctx context.Context, spreadsheetID, rng string) ([][]string, error)
}

// Store is the range-addressed spreadsheet backend sales are recorded into.
type Store interface {
	ValueReader
	AppendValues(ctx context.Context, spreadsheetID, rng string, rows [][]any) error
	ListSheetTitles(ctx context.Context, spreadsheetID string) ([]string, error)
	CreateSheet(ctx context.Context, spreadsheetID, title string) error
}

type book struct {
	titles []string
	sheets map[string][][]string
}

// LocalStorage provides an in-memory implementation of Store.
type LocalStorage struct {
	mu sync.RWMutex
	m  map[string]*book
}

// NewLocalStorage instantiates a new LocalStorage with no spreadsheets.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{
		m: map[string]*book{},
	}
}

func (l *LocalStorage) book(spreadsheetID string) *book {
	b, ok := l.m[spreadsheetID]
	if !ok {
		b = &book{sheets: map[string][][]string{}}
		l.m[spreadsheetID] = b
	}
	return b
}

// Put overwrites the cells starting at the top-left corner of rng, creating
// the sheet if needed. It is used to seed reference data.
func (l *LocalStorage) Put(spreadsheetID, rng string, rows [][]any) error {
	r, err := a1.Parse(rng)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	b := l.book(spreadsheetID)
	if _, ok := b.sheets[r.Sheet]; !ok {
		b.titles = append(b.titles, r.Sheet)
		b.sheets[r.Sheet] = nil
	}
	for i, row := range rows {
		for j, v := range row {
			b.set(r.Sheet, r.StartRow+i, r.StartCol+j, v)
		}
	}
	return nil
}

func (b *book) set(sheet string, row, col int, v any) {
	grid := b.sheets[sheet]
	for len(grid) < row {
		grid = append(grid, nil)
	}
	cells := grid[row-1]
	for len(cells) < col {
		cells = append(cells, "")
	}
	if v == nil {
		cells[col-1] = ""
	} else {
		cells[col-1] = fmt.Sprint(v)
	}
	grid[row-1] = cells
	b.sheets[sheet] = grid
}

// GetValues returns the values inside rng.
func (l *LocalStorage) GetValues(_ context.Context, spreadsheetID, rng string) ([][]string, error) {
	r, err := a1.Parse(rng)
	if err != nil {
		return nil, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	b, ok := l.m[spreadsheetID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, r.Sheet)
	}
	grid, ok := b.sheets[r.Sheet]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, r.Sheet)
	}
	last := r.EndRow
	if last == 0 || last > len(grid) {
		last = len(grid)
	}
	out := make([][]string, 0)
	for row := r.StartRow; row <= last; row++ {
		cells := grid[row-1]
		vals := make([]string, 0)
		for col := r.StartCol; col <= r.EndCol && col <= len(cells); col++ {
			vals = append(vals, cells[col-1])
		}
		out = append(out, trimRow(vals))
	}
	return trimRows(out), nil
}

// AppendValues writes rows below the last non-empty row at or after the
// anchor row of rng.
func (l *LocalStorage) AppendValues(_ context.Context, spreadsheetID, rng string, rows [][]any) error {
	r, err := a1.Parse(rng)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.m[spreadsheetID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSheetNotFound, r.Sheet)
	}
	grid, ok := b.sheets[r.Sheet]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSheetNotFound, r.Sheet)
	}
	next := r.StartRow
	for i := len(grid); i >= r.StartRow; i-- {
		if len(trimRow(grid[i-1])) > 0 {
			next = i + 1
			break
		}
	}
	for i, row := range rows {
		for j, v := range row {
			b.set(r.Sheet, next+i, r.StartCol+j, v)
		}
	}
	return nil
}

// ListSheetTitles returns sheet titles in creation order.
func (l *LocalStorage) ListSheetTitles(_ context.Context, spreadsheetID string) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	b, ok := l.m[spreadsheetID]
	if !ok {
		return []string{}, nil
	}
	return append([]string(nil), b.titles...), nil
}

// CreateSheet adds an empty sheet. Returns ErrSheetExists if the title is taken.
func (l *LocalStorage) CreateSheet(_ context.Context, spreadsheetID, title string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	b := l.book(spreadsheetID)
	if _, ok := b.sheets[title]; ok {
		return fmt.Errorf("%w: %s", ErrSheetExists, title)
	}
	b.titles = append(b.titles, title)
	b.sheets[title] = nil
	return nil
}

func trimRow(cells []string) []string {
	n := len(cells)
	for n > 0 && cells[n-1] == "" {
		n--
	}
	return cells[:n]
}

func trimRows(rows [][]string) [][]string {
	n := len(rows)
	for n > 0 && len(rows[n-1]) == 0 {
		n--
	}
	return rows[:n]
}
