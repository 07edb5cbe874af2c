package models

import (
	"time"

	"github.com/pocketbase/pocketbase/core"
)

// Ticket is one purchased admission, identified by its human-facing
// code. Verification fields move together: verified is true iff
// verified_at is set.
type Ticket struct {
	ID             string     `json:"id"`
	Code           string     `json:"code"`
	EventID        string     `json:"event_id"`
	CustomerName   string     `json:"customer_name"`
	CustomerEmail  string     `json:"customer_email"`
	Phone          string     `json:"phone"`
	Quantity       int        `json:"quantity"`
	AmountPaid     float64    `json:"amount_paid"`
	Verified       bool       `json:"verified"`
	VerifiedAt     *time.Time `json:"verified_at,omitempty"`
	VerifiedBy     string     `json:"verified_by,omitempty"`
	OrderReference string     `json:"order_reference,omitempty"`
	PurchaseDate   time.Time  `json:"purchase_date"`
}

func TicketFromRecord(r *core.Record) *Ticket {
	t := &Ticket{
		ID:             r.Id,
		Code:           r.GetString("code"),
		EventID:        r.GetString("event"),
		CustomerName:   r.GetString("customer_name"),
		CustomerEmail:  r.GetString("customer_email"),
		Phone:          r.GetString("phone"),
		Quantity:       r.GetInt("quantity"),
		AmountPaid:     r.GetFloat("amount_paid"),
		Verified:       r.GetBool("verified"),
		VerifiedBy:     r.GetString("verified_by"),
		OrderReference: r.GetString("order_reference"),
		PurchaseDate:   r.GetDateTime("created").Time(),
	}
	if at := r.GetDateTime("verified_at"); !at.IsZero() {
		ts := at.Time()
		t.VerifiedAt = &ts
	}
	return t
}
