// Package a1 parses and builds spreadsheet range addresses such as
// "Menu!E8:Z8" or "Fair!A2".
package a1

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrInvalidRange is returned when a range cannot be parsed.
var ErrInvalidRange = errors.New("invalid range")

// Range is a parsed, 1-indexed rectangular range. A single-cell range has
// equal start and end coordinates. EndRow is zero for open column ranges
// such as "A:C".
type Range struct {
	Sheet    string
	StartCol int
	StartRow int
	EndCol   int
	EndRow   int
}

// Parse parses "Sheet!A1", "Sheet!A1:B2" or "Sheet!A:C". Sheet names may be
// single-quoted.
func Parse(s string) (Range, error) {
	bang := strings.LastIndex(s, "!")
	if bang <= 0 || bang == len(s)-1 {
		return Range{}, fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}
	sheet := unquote(s[:bang])
	cells := s[bang+1:]

	from, to, hasColon := strings.Cut(cells, ":")
	startCol, startRow, err := parseRef(from)
	if err != nil {
		return Range{}, fmt.Errorf("%w: %q: %v", ErrInvalidRange, s, err)
	}
	r := Range{Sheet: sheet, StartCol: startCol, StartRow: startRow, EndCol: startCol, EndRow: startRow}
	if hasColon {
		endCol, endRow, err := parseRef(to)
		if err != nil {
			return Range{}, fmt.Errorf("%w: %q: %v", ErrInvalidRange, s, err)
		}
		r.EndCol, r.EndRow = endCol, endRow
	}
	if r.StartRow == 0 {
		r.StartRow = 1
	}
	if r.EndCol < r.StartCol || (r.EndRow != 0 && r.EndRow < r.StartRow) {
		return Range{}, fmt.Errorf("%w: %q is inverted", ErrInvalidRange, s)
	}
	return r, nil
}

// parseRef accepts "C9" or a bare column "C" (row 0).
func parseRef(ref string) (col, row int, err error) {
	ref = strings.ReplaceAll(strings.TrimSpace(ref), "$", "")
	if ref == "" {
		return 0, 0, errors.New("empty reference")
	}
	if i := strings.IndexAny(ref, "0123456789"); i < 0 {
		col, err = excelize.ColumnNameToNumber(ref)
		return col, 0, err
	}
	name, row, err := excelize.SplitCellName(ref)
	if err != nil {
		return 0, 0, err
	}
	col, err = excelize.ColumnNameToNumber(name)
	return col, row, err
}

func unquote(sheet string) string {
	if len(sheet) >= 2 && sheet[0] == '\'' && sheet[len(sheet)-1] == '\'' {
		return strings.ReplaceAll(sheet[1:len(sheet)-1], "''", "'")
	}
	return sheet
}

func quote(sheet string) string {
	if strings.ContainsAny(sheet, " '!:") {
		return "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
	}
	return sheet
}

// Column returns the letters of a 1-indexed column number (1 → "A").
func Column(n int) (string, error) {
	return excelize.ColumnNumberToName(n)
}

// ColumnNumber returns the 1-indexed number of a column name ("E" → 5).
func ColumnNumber(name string) (int, error) {
	return excelize.ColumnNameToNumber(name)
}

// Cell builds a single-cell address such as "Menu!F12".
func Cell(sheet string, col, row int) (string, error) {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", err
	}
	return quote(sheet) + "!" + name, nil
}

// Span builds a two-corner address such as "Menu!E8:Z8".
func Span(sheet string, startCol, startRow, endCol, endRow int) (string, error) {
	from, err := excelize.CoordinatesToCellName(startCol, startRow)
	if err != nil {
		return "", err
	}
	to, err := excelize.CoordinatesToCellName(endCol, endRow)
	if err != nil {
		return "", err
	}
	return quote(sheet) + "!" + from + ":" + to, nil
}

// String renders the range back in A1 notation.
func (r Range) String() string {
	from, _ := excelize.CoordinatesToCellName(r.StartCol, r.StartRow)
	if r.StartCol == r.EndCol && r.StartRow == r.EndRow {
		return quote(r.Sheet) + "!" + from
	}
	if r.EndRow == 0 {
		a, _ := excelize.ColumnNumberToName(r.StartCol)
		b, _ := excelize.ColumnNumberToName(r.EndCol)
		return quote(r.Sheet) + "!" + a + ":" + b
	}
	to, _ := excelize.CoordinatesToCellName(r.EndCol, r.EndRow)
	return quote(r.Sheet) + "!" + from + ":" + to
}
