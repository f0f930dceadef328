package sales

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"pos_ledger/internal/a1"
)

// ErrNotFound is returned when a pricing event, item or price cell is missing
// from the reference table.
var ErrNotFound = errors.New("price not found")

// Layout describes where the reference table keeps its data. Columns and rows
// are 1-indexed.
type Layout struct {
	SheetName        string
	HeaderRow        int
	FirstEventColumn int
	LastEventColumn  int
	ItemColumn       int
	FirstItemRow     int
	LastItemRow      int
}

// DefaultLayout: event names in E8:Z8, item codes in C9:C100. The first four
// columns hold item metadata.
func DefaultLayout(sheetName string) Layout {
	return Layout{
		SheetName:        sheetName,
		HeaderRow:        8,
		FirstEventColumn: 5,
		LastEventColumn:  26,
		ItemColumn:       3,
		FirstItemRow:     9,
		LastItemRow:      100,
	}
}

func (l Layout) headerRange() (string, error) {
	return a1.Span(l.SheetName, l.FirstEventColumn, l.HeaderRow, l.LastEventColumn, l.HeaderRow)
}

func (l Layout) itemRange() (string, error) {
	return a1.Span(l.SheetName, l.ItemColumn, l.FirstItemRow, l.ItemColumn, l.LastItemRow)
}

// PriceResolver looks up unit prices in the reference spreadsheet. Every call
// reads the reference table afresh; wrap the reader in a CachedReader to
// avoid repeated reads.
type PriceResolver struct {
	reader        ValueReader
	spreadsheetID string
	layout        Layout
}

// NewPriceResolver creates a resolver over the given reference spreadsheet.
func NewPriceResolver(reader ValueReader, spreadsheetID string, layout Layout) *PriceResolver {
	return &PriceResolver{
		reader:        reader,
		spreadsheetID: spreadsheetID,
		layout:        layout,
	}
}

// ListEvents returns the pricing event names in column order.
func (p *PriceResolver) ListEvents(ctx context.Context) ([]string, error) {
	rng, err := p.layout.headerRange()
	if err != nil {
		return nil, err
	}
	values, err := p.reader.GetValues(ctx, p.spreadsheetID, rng)
	if err != nil {
		return nil, fmt.Errorf("reading pricing events: %w", err)
	}
	if len(values) == 0 {
		return []string{}, nil
	}
	return values[0], nil
}

// Resolve returns the raw price cell for itemCode under pricingEvent.
func (p *PriceResolver) Resolve(ctx context.Context, pricingEvent, itemCode string) (string, error) {
	if pricingEvent == "" || itemCode == "" {
		return "", fmt.Errorf("%w: empty pricing event or item code", ErrNotFound)
	}
	events, err := p.ListEvents(ctx)
	if err != nil {
		return "", err
	}
	pos := slices.Index(events, pricingEvent)
	if pos < 0 {
		return "", fmt.Errorf("%w: pricing event %q", ErrNotFound, pricingEvent)
	}
	col := p.layout.FirstEventColumn + pos

	rng, err := p.layout.itemRange()
	if err != nil {
		return "", err
	}
	codes, err := p.reader.GetValues(ctx, p.spreadsheetID, rng)
	if err != nil {
		return "", fmt.Errorf("reading item codes: %w", err)
	}
	row := 0
	for i, cells := range codes {
		if len(cells) > 0 && strings.TrimSpace(cells[0]) == itemCode {
			row = p.layout.FirstItemRow + i
			break
		}
	}
	if row == 0 {
		return "", fmt.Errorf("%w: item %q", ErrNotFound, itemCode)
	}

	cell, err := a1.Cell(p.layout.SheetName, col, row)
	if err != nil {
		return "", err
	}
	values, err := p.reader.GetValues(ctx, p.spreadsheetID, cell)
	if err != nil {
		return "", fmt.Errorf("reading price cell %s: %w", cell, err)
	}
	if len(values) == 0 || len(values[0]) == 0 || strings.TrimSpace(values[0][0]) == "" {
		return "", fmt.Errorf("%w: item %q has no price under %q", ErrNotFound, itemCode, pricingEvent)
	}
	return values[0][0], nil
}

// ResolveAmount resolves the price and parses it as a whole currency amount.
func (p *PriceResolver) ResolveAmount(ctx context.Context, pricingEvent, itemCode string) (int64, error) {
	raw, err := p.Resolve(ctx, pricingEvent, itemCode)
	if err != nil {
		return 0, err
	}
	return ParseAmount(raw)
}

// ParseAmount parses a price cell such as "500", "500.0" or "1,500".
func ParseAmount(raw string) (int64, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(raw), ",", ""))
	if err != nil {
		return 0, fmt.Errorf("price %q is not a number: %w", raw, err)
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("price %q is not a whole amount", raw)
	}
	return d.IntPart(), nil
}
