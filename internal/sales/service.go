package sales

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"pos_ledger/internal/a1"
)

// ErrValidation is returned for malformed or incomplete submissions.
var ErrValidation = errors.New("invalid submission")

// ErrLookup is returned when an item has no usable price under the selected
// pricing event.
var ErrLookup = errors.New("price lookup failed")

// ErrStore is returned when the spreadsheet backend fails.
var ErrStore = errors.New("ledger store failed")

// Observer is notified about the outcome of every submission.
type Observer interface {
	SaleRecorded(rows int, total int64)
	SaleRejected(reason string)
}

type nopObserver struct{}

func (nopObserver) SaleRecorded(int, int64) {}
func (nopObserver) SaleRejected(string)     {}

// Service records sales into the ledger spreadsheet.
type Service struct {
	store       Store
	ledgerID    string
	prices      *PriceResolver
	provisioner *SheetProvisioner
	seq         *Sequence
	observer    Observer
	logger      *zap.Logger
	now         func() time.Time
	location    *time.Location
}

// Option configures a Service.
type Option func(*Service)

// WithSequence shares an existing customer sequence.
func WithSequence(seq *Sequence) Option {
	return func(s *Service) {
		if seq != nil {
			s.seq = seq
		}
	}
}

// WithObserver registers an outcome observer such as a metrics manager.
func WithObserver(o Observer) Option {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the time zone ledger timestamps are written in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// NewService creates a new Service writing to the ledger spreadsheet ledgerID.
func NewService(store Store, ledgerID string, prices *PriceResolver, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		store:       store,
		ledgerID:    ledgerID,
		prices:      prices,
		provisioner: NewSheetProvisioner(store, ledgerID, logger),
		seq:         NewSequence(),
		observer:    nopObserver{},
		logger:      logger,
		now:         time.Now,
		location:    time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sequence returns the customer sequence used by the service.
func (s *Service) Sequence() *Sequence {
	return s.seq
}

// RecordSale validates the submission, prices every item and appends one
// ledger row per unit sold. The customer number is given back on every
// failure except a failed final append, where it stays spent.
func (s *Service) RecordSale(ctx context.Context, sub Submission) (Receipt, error) {
	customerID := s.seq.Next()
	logger := s.logger.With(zap.Int("customer_id", customerID),
		zap.String("ledger_event", sub.Selection.LedgerEvent),
		zap.String("pricing_event", sub.Selection.PricingEvent))

	lines, err := parseSubmission(sub)
	if err != nil {
		s.seq.Rollback()
		s.observer.SaleRejected("validation")
		logger.Warn("sale rejected", zap.Error(err))
		return Receipt{}, err
	}

	if err := s.provisioner.Ensure(ctx, sub.Selection.LedgerEvent); err != nil {
		s.seq.Rollback()
		s.observer.SaleRejected("provision")
		logger.Error("failed to provision ledger sheet", zap.Error(err))
		return Receipt{}, err
	}

	timestamp := s.now().In(s.location).Format(TimestampLayout)
	var total int64
	rows := make([][]any, 0, len(lines))
	for _, ln := range lines {
		price, err := s.price(ctx, sub.Selection.PricingEvent, ln.itemCode)
		if err != nil {
			s.seq.Rollback()
			s.observer.SaleRejected("lookup")
			logger.Warn("price lookup failed", zap.String("item_code", ln.itemCode), zap.Error(err))
			return Receipt{}, err
		}
		total += price * int64(ln.quantity)

		rec := CustomerRecord{
			ItemCode:      ln.itemCode,
			CustomerID:    customerID,
			Timestamp:     timestamp,
			Gender:        sub.Gender,
			AgeGroup:      sub.AgeGroup,
			Features:      sub.Features,
			PaymentMethod: sub.PaymentMethod,
		}
		for range ln.quantity {
			rows = append(rows, rec.Row())
		}
	}

	receipt := Receipt{CustomerID: customerID, Total: total, Rows: len(rows)}
	if len(rows) > 0 {
		anchor, err := a1.Cell(sub.Selection.LedgerEvent, 1, 2)
		if err == nil {
			err = s.store.AppendValues(ctx, s.ledgerID, anchor, rows)
		}
		if err != nil {
			s.observer.SaleRejected("append")
			logger.Error("failed to append ledger rows", zap.Int("rows", len(rows)), zap.Error(err))
			return receipt, fmt.Errorf("%w: appending rows for customer %d: %v", ErrStore, customerID, err)
		}
	}

	s.observer.SaleRecorded(len(rows), total)
	logger.Info("sale recorded", zap.Int("rows", len(rows)), zap.Int64("total", total))
	return receipt, nil
}

// price resolves and parses one item's price, classifying failures.
func (s *Service) price(ctx context.Context, pricingEvent, itemCode string) (int64, error) {
	raw, err := s.prices.Resolve(ctx, pricingEvent, itemCode)
	if errors.Is(err, ErrNotFound) {
		return 0, fmt.Errorf("%w: no price for item %s: %v", ErrLookup, itemCode, err)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStore, err)
	}
	amount, err := ParseAmount(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: item %s: %v", ErrLookup, itemCode, err)
	}
	return amount, nil
}

// Reset zeroes the customer sequence and clears the caller's selection.
func (s *Service) Reset(sel *Selection) {
	s.seq.Reset()
	if sel != nil {
		sel.Clear()
	}
	s.logger.Info("customer sequence reset")
}

// Overview returns the pricing events on offer, the caller's selection and
// the customer number the next sale will get.
func (s *Service) Overview(ctx context.Context, sel Selection) (Overview, error) {
	events, err := s.prices.ListEvents(ctx)
	if err != nil {
		s.logger.Error("failed to list pricing events", zap.Error(err))
		return Overview{}, fmt.Errorf("%w: %v", ErrStore, err)
	}
	return Overview{
		PricingEvents:      events,
		LedgerEvent:        sel.LedgerEvent,
		PricingEvent:       sel.PricingEvent,
		NextCustomerNumber: s.seq.Current() + 1,
	}, nil
}

func parseSubmission(sub Submission) ([]line, error) {
	if strings.TrimSpace(sub.ItemCodes) == "" || strings.TrimSpace(sub.Quantities) == "" {
		return nil, fmt.Errorf("%w: items and quantities are required", ErrValidation)
	}
	codes := strings.Split(sub.ItemCodes, ",")
	quantities := strings.Split(sub.Quantities, ",")
	if len(codes) != len(quantities) {
		return nil, fmt.Errorf("%w: %d items but %d quantities", ErrValidation, len(codes), len(quantities))
	}

	required := []struct{ name, value string }{
		{"gender", sub.Gender},
		{"age group", sub.AgeGroup},
		{"payment method", sub.PaymentMethod},
		{"ledger event", sub.Selection.LedgerEvent},
		{"pricing event", sub.Selection.PricingEvent},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return nil, fmt.Errorf("%w: %s is required", ErrValidation, f.name)
		}
	}

	lines := make([]line, len(codes))
	for i := range codes {
		code := strings.TrimSpace(codes[i])
		if code == "" {
			return nil, fmt.Errorf("%w: item %d has no code", ErrValidation, i+1)
		}
		q, err := strconv.Atoi(strings.TrimSpace(quantities[i]))
		if err != nil {
			return nil, fmt.Errorf("%w: quantity %q is not an integer", ErrValidation, quantities[i])
		}
		if q < 0 {
			return nil, fmt.Errorf("%w: quantity %d is negative", ErrValidation, q)
		}
		lines[i] = line{itemCode: code, quantity: q}
	}
	return lines, nil
}
