package models

import (
	"time"

	"github.com/pocketbase/pocketbase/core"
)

// Payment statuses.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentRefunded  = "refunded"
)

// Payment is a satellite record of a ticket or booking. Reference is
// the gateway's transaction reference and the dedup key when present.
type Payment struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticket_id,omitempty"`
	BookingID string    `json:"booking_id,omitempty"`
	PayerName string    `json:"payer_name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Amount    float64   `json:"amount"`
	Method    string    `json:"method"` // transfer, paystack, pos, cash, other
	Reference string    `json:"reference,omitempty"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func PaymentFromRecord(r *core.Record) *Payment {
	return &Payment{
		ID:        r.Id,
		TicketID:  r.GetString("ticket"),
		BookingID: r.GetString("booking"),
		PayerName: r.GetString("payer_name"),
		Phone:     r.GetString("phone"),
		Email:     r.GetString("email"),
		Amount:    r.GetFloat("amount"),
		Method:    r.GetString("method"),
		Reference: r.GetString("reference"),
		Status:    r.GetString("status"),
		Notes:     r.GetString("notes"),
		CreatedAt: r.GetDateTime("created").Time(),
	}
}
