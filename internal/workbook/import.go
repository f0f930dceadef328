package workbook

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"pos_ledger/internal/a1"
)

// Putter accepts rows written at a range, like Store.Put and
// sales.LocalStorage.Put.
type Putter interface {
	Put(spreadsheetID, rng string, rows [][]any) error
}

// ImportFile copies every sheet of the .xlsx file at path into dst under
// spreadsheetID, each sheet anchored at A1.
func ImportFile(path, spreadsheetID string, dst Putter) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		grid, err := f.GetRows(sheet)
		if err != nil {
			return fmt.Errorf("reading %s!%s: %w", path, sheet, err)
		}
		if len(grid) == 0 {
			continue
		}
		rows := make([][]any, len(grid))
		for i, cells := range grid {
			row := make([]any, len(cells))
			for j, v := range cells {
				row[j] = v
			}
			rows[i] = row
		}
		anchor, err := a1.Cell(sheet, 1, 1)
		if err != nil {
			return err
		}
		if err := dst.Put(spreadsheetID, anchor, rows); err != nil {
			return fmt.Errorf("importing sheet %s: %w", sheet, err)
		}
	}
	return nil
}
