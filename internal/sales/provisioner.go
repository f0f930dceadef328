package sales

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"pos_ledger/internal/a1"
)

// SheetProvisioner makes sure a ledger sheet exists before rows are written.
type SheetProvisioner struct {
	store         Store
	spreadsheetID string
	logger        *zap.Logger
}

// NewSheetProvisioner creates a provisioner for the ledger spreadsheet.
func NewSheetProvisioner(store Store, spreadsheetID string, logger *zap.Logger) *SheetProvisioner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SheetProvisioner{
		store:         store,
		spreadsheetID: spreadsheetID,
		logger:        logger,
	}
}

// Ensure creates the sheet named ledgerEvent with the ledger header row if it
// does not exist yet. Failures are wrapped in ErrStore.
func (p *SheetProvisioner) Ensure(ctx context.Context, ledgerEvent string) error {
	titles, err := p.store.ListSheetTitles(ctx, p.spreadsheetID)
	if err != nil {
		return fmt.Errorf("%w: listing sheets: %v", ErrStore, err)
	}
	if slices.Contains(titles, ledgerEvent) {
		return nil
	}

	if err := p.store.CreateSheet(ctx, p.spreadsheetID, ledgerEvent); err != nil {
		return fmt.Errorf("%w: creating sheet %q: %v", ErrStore, ledgerEvent, err)
	}
	anchor, err := a1.Cell(ledgerEvent, 1, 1)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStore, err)
	}
	if err := p.store.AppendValues(ctx, p.spreadsheetID, anchor, [][]any{LedgerHeader}); err != nil {
		return fmt.Errorf("%w: writing header to %q: %v", ErrStore, ledgerEvent, err)
	}

	p.logger.Info("ledger sheet created", zap.String("ledger_event", ledgerEvent))
	return nil
}
