package workbook

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap/zaptest"

	"pos_ledger/internal/sales"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir(), zaptest.NewLogger(t))
	require.NoError(t, err)
	return s
}

func TestStore_SheetLifecycle(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	titles, err := s.ListSheetTitles(ctx, "ledger")
	require.NoError(t, err)
	assert.Empty(t, titles)

	require.NoError(t, s.CreateSheet(ctx, "ledger", "Spring Fair"))
	require.NoError(t, s.CreateSheet(ctx, "ledger", "Autumn"))
	assert.Error(t, s.CreateSheet(ctx, "ledger", "Autumn"))

	titles, err = s.ListSheetTitles(ctx, "ledger")
	require.NoError(t, err)
	assert.Equal(t, []string{"Spring Fair", "Autumn"}, titles)

	require.NoError(t, s.AppendValues(ctx, "ledger", "'Spring Fair'!A1", [][]any{{"item id", "customer id"}}))
	require.NoError(t, s.AppendValues(ctx, "ledger", "'Spring Fair'!A2", [][]any{{"A1", 1}, {"B2", 1}}))
	require.NoError(t, s.AppendValues(ctx, "ledger", "'Spring Fair'!A2", [][]any{{"A1", 2}}))

	rows, err := s.GetValues(ctx, "ledger", "'Spring Fair'!A1:G100")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"item id", "customer id"}, {"A1", "1"}, {"B2", "1"}, {"A1", "2"}}, rows)

	f, err := excelize.OpenFile(filepath.Join(s.dir, "ledger.xlsx"))
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue("Spring Fair", "B4")
	require.NoError(t, err)
	assert.Equal(t, "2", v)
}

func TestStore_WhitespaceCellsAreValues(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Put("reference", "Menu!A1", [][]any{{"a", " "}, {"  "}}))

	rows, err := s.GetValues(context.Background(), "reference", "Menu!A1:B5")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", " "}, {"  "}}, rows)
}

func TestStore_Errors(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.GetValues(ctx, "nope", "Menu!A1")
	assert.ErrorIs(t, err, ErrSpreadsheetNotFound)

	require.NoError(t, s.CreateSheet(ctx, "ledger", "Fair"))
	_, err = s.GetValues(ctx, "ledger", "Other!A1")
	assert.ErrorIs(t, err, ErrSheetNotFound)
	assert.ErrorIs(t, s.AppendValues(ctx, "ledger", "Other!A1", [][]any{{1}}), ErrSheetNotFound)
}

func TestStore_RecordsSales(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Put("reference", "Menu!E8", [][]any{{"Spring"}}))
	require.NoError(t, s.Put("reference", "Menu!C9", [][]any{{"A1"}, {"B2"}}))
	require.NoError(t, s.Put("reference", "Menu!E9", [][]any{{500}, {300}}))

	prices := sales.NewPriceResolver(s, "reference", sales.DefaultLayout("Menu"))
	svc := sales.NewService(s, "ledger", prices, zaptest.NewLogger(t))
	sub := sales.Submission{
		ItemCodes:     "A1,B2",
		Quantities:    "2,1",
		Gender:        "male",
		AgeGroup:      "30s",
		PaymentMethod: "card",
		Selection:     sales.Selection{LedgerEvent: "Spring Fair", PricingEvent: "Spring"},
	}

	receipt, err := svc.RecordSale(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, int64(1300), receipt.Total)

	rows, err := s.GetValues(context.Background(), "ledger", "'Spring Fair'!A1:A10")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"item id"}, {"A1"}, {"A1"}, {"B2"}}, rows)
}
