package services

import (
	"context"
	"fmt"
	"strings"

	"events-system/internal/status"
	"events-system/models"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
)

var (
	toleranceRatio = decimal.NewFromFloat(0.98)
	toleranceAbs   = decimal.NewFromInt(1)
)

// TicketService is the idempotent ticket ledger, keyed by the
// human-facing ticket code.
type TicketService struct {
	store Store
}

func NewTicketService(store Store) *TicketService {
	return &TicketService{store: store}
}

type StoreTicketRequest struct {
	Code         string
	Reference    string
	CustomerName string
	Phone        string
	Email        string
	Amount       decimal.Decimal
	Quantity     int
	Event        *core.Record
}

// ParseAmount normalizes a loosely formatted amount ("5,000", 5000,
// json numbers). Unparseable input becomes zero rather than failing
// the request; the required-fields check downstream rejects zero.
func ParseAmount(raw any) decimal.Decimal {
	switch v := raw.(type) {
	case nil:
		return decimal.Zero
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	case decimal.Decimal:
		return v
	default:
		s := strings.TrimSpace(strings.ReplaceAll(fmt.Sprintf("%v", raw), ",", ""))
		if s == "" {
			return decimal.Zero
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero
		}
		return d
	}
}

// StoreTicket upserts a ticket by code. The second call for the same
// code fills only blank fields and always refreshes quantity and
// amount_paid, so retried client submissions with late-arriving data
// converge on one record. The bool result is false when the payload
// was too thin to persist anything (soft failure, not an error).
func (s *TicketService) StoreTicket(ctx context.Context, req StoreTicketRequest) (*models.Ticket, bool, error) {
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 {
		return nil, false, status.NewValidationError("Quantity must be at least 1", map[string]any{
			"quantity": req.Quantity,
		})
	}

	if req.Event == nil || req.Code == "" || req.CustomerName == "" || req.Amount.IsZero() {
		return nil, false, nil
	}

	if err := s.checkTolerance(req.Event, req.Amount, quantity); err != nil {
		return nil, false, err
	}

	record, err := s.upsert(ctx, req, quantity)
	if err != nil {
		return nil, false, err
	}
	return models.TicketFromRecord(record), true, nil
}

// checkTolerance requires amount >= price*quantity within a 2%-or-1
// shortfall band that absorbs gateway fee rounding. Events priced at
// zero (placeholders) skip the check.
func (s *TicketService) checkTolerance(event *core.Record, amount decimal.Decimal, quantity int) error {
	price := decimal.NewFromFloat(event.GetFloat("price_per_ticket"))
	if !price.IsPositive() {
		return nil
	}

	expected := price.Mul(decimal.NewFromInt(int64(quantity)))
	if amount.Add(toleranceAbs).LessThan(expected.Mul(toleranceRatio)) {
		return status.NewValidationError("Amount paid is less than expected for the selected quantity", map[string]any{
			"expected_min":     expected.InexactFloat64(),
			"amount_paid":      amount.InexactFloat64(),
			"quantity":         quantity,
			"price_per_ticket": price.InexactFloat64(),
		})
	}
	return nil
}

func (s *TicketService) upsert(_ context.Context, req StoreTicketRequest, quantity int) (*core.Record, error) {
	existing, err := s.store.FindFirstRecordByFilter("tickets", "code = {:code}", dbx.Params{"code": req.Code})
	if err == nil {
		return s.applyBackfill(existing, req, quantity)
	}

	collection, err := s.store.FindCollectionByNameOrId("tickets")
	if err != nil {
		return nil, fmt.Errorf("ticket: find tickets collection: %w", err)
	}

	record := core.NewRecord(collection)
	record.Set("code", req.Code)
	record.Set("event", req.Event.Id)
	record.Set("customer_name", req.CustomerName)
	record.Set("customer_email", req.Email)
	record.Set("phone", req.Phone)
	record.Set("quantity", quantity)
	record.Set("amount_paid", req.Amount.InexactFloat64())
	record.Set("order_reference", req.Reference)
	record.Set("verified", false)

	if err := s.store.Save(record); err == nil {
		return record, nil
	}

	// Lost an insert race on the unique code index: the winner's row
	// is the record, so fetch it and take the update path.
	existing, ferr := s.store.FindFirstRecordByFilter("tickets", "code = {:code}", dbx.Params{"code": req.Code})
	if ferr != nil {
		return nil, fmt.Errorf("ticket: store %q: %w", req.Code, ferr)
	}
	return s.applyBackfill(existing, req, quantity)
}

// applyBackfill fills blank fields from the retry and refreshes
// quantity and amount to the latest submitted values.
func (s *TicketService) applyBackfill(record *core.Record, req StoreTicketRequest, quantity int) (*core.Record, error) {
	if record.GetString("event") == "" && req.Event != nil {
		record.Set("event", req.Event.Id)
	}
	if record.GetString("customer_name") == "" {
		record.Set("customer_name", req.CustomerName)
	}
	if record.GetString("customer_email") == "" {
		record.Set("customer_email", req.Email)
	}
	if record.GetString("phone") == "" {
		record.Set("phone", req.Phone)
	}
	if record.GetString("order_reference") == "" {
		record.Set("order_reference", req.Reference)
	}
	record.Set("quantity", quantity)
	record.Set("amount_paid", req.Amount.InexactFloat64())

	if err := s.store.Save(record); err != nil {
		return nil, fmt.Errorf("ticket: update %q: %w", req.Code, err)
	}
	return record, nil
}

// FindByCode looks up a stored ticket.
func (s *TicketService) FindByCode(_ context.Context, code string) (*models.Ticket, error) {
	record, err := s.store.FindFirstRecordByFilter("tickets", "code = {:code}", dbx.Params{"code": code})
	if err != nil {
		return nil, status.ErrTicketNotFound
	}
	return models.TicketFromRecord(record), nil
}
