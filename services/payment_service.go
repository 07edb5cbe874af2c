package services

import (
	"context"
	"fmt"

	"events-system/models"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
)

// PaymentService records payments idempotently by gateway transaction
// reference. Referenceless payments carry no dedup key and always
// insert; duplicates there are an accepted limitation.
type PaymentService struct {
	store Store
}

func NewPaymentService(store Store) *PaymentService {
	return &PaymentService{store: store}
}

type RecordPaymentRequest struct {
	Reference string
	TicketID  string
	BookingID string
	PayerName string
	Phone     string
	Email     string
	Amount    decimal.Decimal
	Method    string
	Notes     string
}

// RecordPayment get-or-creates a payment keyed by reference. A record
// that already exists but lacks a ticket link gets the link
// backfilled. Status is completed at creation: gateway confirmation,
// when performed, happens upstream.
func (s *PaymentService) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*models.Payment, error) {
	if req.Method == "" {
		req.Method = "paystack"
	}

	if req.Reference == "" {
		record, err := s.insert(req)
		if err != nil {
			return nil, err
		}
		return models.PaymentFromRecord(record), nil
	}

	if existing, err := s.store.FindFirstRecordByFilter("payments", "reference = {:ref}", dbx.Params{"ref": req.Reference}); err == nil {
		return s.linkTicket(existing, req.TicketID)
	}

	record, err := s.insert(req)
	if err == nil {
		return models.PaymentFromRecord(record), nil
	}

	// Concurrent submit with the same reference: the unique index let
	// exactly one insert through, so adopt the winner.
	existing, ferr := s.store.FindFirstRecordByFilter("payments", "reference = {:ref}", dbx.Params{"ref": req.Reference})
	if ferr != nil {
		return nil, fmt.Errorf("payment: record %q: %w", req.Reference, err)
	}
	return s.linkTicket(existing, req.TicketID)
}

func (s *PaymentService) insert(req RecordPaymentRequest) (*core.Record, error) {
	collection, err := s.store.FindCollectionByNameOrId("payments")
	if err != nil {
		return nil, fmt.Errorf("payment: find payments collection: %w", err)
	}

	record := core.NewRecord(collection)
	record.Set("reference", req.Reference)
	record.Set("ticket", req.TicketID)
	record.Set("booking", req.BookingID)
	record.Set("payer_name", req.PayerName)
	record.Set("phone", req.Phone)
	record.Set("email", req.Email)
	record.Set("amount", req.Amount.InexactFloat64())
	record.Set("method", req.Method)
	record.Set("status", models.PaymentCompleted)
	record.Set("notes", req.Notes)

	if err := s.store.Save(record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *PaymentService) linkTicket(record *core.Record, ticketID string) (*models.Payment, error) {
	if ticketID != "" && record.GetString("ticket") != ticketID {
		record.Set("ticket", ticketID)
		if err := s.store.Save(record); err != nil {
			return nil, fmt.Errorf("payment: link ticket: %w", err)
		}
	}
	return models.PaymentFromRecord(record), nil
}
