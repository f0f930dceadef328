// Package workbook stores ledgers and reference tables in local .xlsx files,
// one file per spreadsheet id. It lets a stall keep recording sales without
// network access and the file can be uploaded afterwards.
package workbook

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"pos_ledger/internal/a1"
)

// ErrSheetNotFound is returned when a range names a sheet that does not exist.
var ErrSheetNotFound = errors.New("sheet not found")

// ErrSpreadsheetNotFound is returned when no file exists for a spreadsheet id.
var ErrSpreadsheetNotFound = errors.New("spreadsheet not found")

// Store reads and writes spreadsheets kept as files under a directory.
type Store struct {
	mu     sync.Mutex
	dir    string
	logger *zap.Logger
}

// New creates a store rooted at dir, creating the directory if needed.
func New(dir string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating workbook dir: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{dir: dir, logger: logger}, nil
}

func (s *Store) path(spreadsheetID string) string {
	return filepath.Join(s.dir, filepath.Base(spreadsheetID)+".xlsx")
}

// open returns the workbook for spreadsheetID. With create set, a missing
// file yields a new empty workbook.
func (s *Store) open(spreadsheetID string, create bool) (*excelize.File, bool, error) {
	f, err := excelize.OpenFile(s.path(spreadsheetID))
	if err == nil {
		return f, false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, false, fmt.Errorf("opening workbook %s: %w", spreadsheetID, err)
	}
	if !create {
		return nil, false, fmt.Errorf("%w: %s", ErrSpreadsheetNotFound, spreadsheetID)
	}
	return excelize.NewFile(), true, nil
}

func (s *Store) save(f *excelize.File, spreadsheetID string) error {
	if err := f.SaveAs(s.path(spreadsheetID)); err != nil {
		return fmt.Errorf("saving workbook %s: %w", spreadsheetID, err)
	}
	return nil
}

// GetValues returns the values inside rng, trailing empty cells and rows
// omitted.
func (s *Store) GetValues(_ context.Context, spreadsheetID, rng string) ([][]string, error) {
	r, err := a1.Parse(rng)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f, _, err := s.open(spreadsheetID, false)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	grid, err := s.rows(f, r.Sheet)
	if err != nil {
		return nil, err
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

func (s *Store) rows(f *excelize.File, sheet string) ([][]string, error) {
	if !slices.Contains(f.GetSheetList(), sheet) {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
	}
	grid, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheet, err)
	}
	return grid, nil
}

// AppendValues writes rows below the last non-empty row at or after the
// anchor row of rng.
func (s *Store) AppendValues(_ context.Context, spreadsheetID, rng string, rows [][]any) error {
	r, err := a1.Parse(rng)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f, _, err := s.open(spreadsheetID, false)
	if err != nil {
		return err
	}
	defer f.Close()

	grid, err := s.rows(f, r.Sheet)
	if err != nil {
		return err
	}
	next := r.StartRow
	for i := len(grid); i >= r.StartRow; i-- {
		if len(trimRow(grid[i-1])) > 0 {
			next = i + 1
			break
		}
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(r.StartCol, next+i)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(r.Sheet, cell, &values); err != nil {
			return fmt.Errorf("writing %s!%s: %w", r.Sheet, cell, err)
		}
	}
	return s.save(f, spreadsheetID)
}

// ListSheetTitles returns the sheet names of the workbook, or none if the
// file does not exist yet.
func (s *Store) ListSheetTitles(_ context.Context, spreadsheetID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, _, err := s.open(spreadsheetID, false)
	if errors.Is(err, ErrSpreadsheetNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

// CreateSheet adds an empty sheet, creating the workbook file if needed.
// A new workbook's default sheet is renamed rather than kept.
func (s *Store) CreateSheet(_ context.Context, spreadsheetID, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, created, err := s.open(spreadsheetID, true)
	if err != nil {
		return err
	}
	defer f.Close()

	if slices.Contains(f.GetSheetList(), title) {
		return fmt.Errorf("sheet %q already exists", title)
	}
	if created {
		if err := f.SetSheetName(f.GetSheetName(0), title); err != nil {
			return fmt.Errorf("naming sheet %q: %w", title, err)
		}
	} else if _, err := f.NewSheet(title); err != nil {
		return fmt.Errorf("creating sheet %q: %w", title, err)
	}
	s.logger.Info("workbook sheet created",
		zap.String("spreadsheet_id", spreadsheetID),
		zap.String("title", title))
	return s.save(f, spreadsheetID)
}

// Put overwrites cells starting at the top-left corner of rng, creating the
// workbook and sheet if needed. It is used to import reference tables.
func (s *Store) Put(spreadsheetID, rng string, rows [][]any) error {
	r, err := a1.Parse(rng)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f, created, err := s.open(spreadsheetID, true)
	if err != nil {
		return err
	}
	defer f.Close()

	switch {
	case created:
		if err := f.SetSheetName(f.GetSheetName(0), r.Sheet); err != nil {
			return err
		}
	case !slices.Contains(f.GetSheetList(), r.Sheet):
		if _, err := f.NewSheet(r.Sheet); err != nil {
			return err
		}
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(r.StartCol, r.StartRow+i)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(r.Sheet, cell, &values); err != nil {
			return err
		}
	}
	return s.save(f, spreadsheetID)
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
