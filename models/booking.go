package models

import (
	"time"

	"github.com/pocketbase/pocketbase/core"
)

// Pricing is the deterministic quote breakdown. Tax applies to the
// subtotal only, not the delivery cost.
type Pricing struct {
	Subtotal        float64 `json:"subtotal"`
	DeliveryCost    float64 `json:"delivery_cost"`
	Tax             float64 `json:"tax"`
	Total           float64 `json:"total"`
	DepositRequired float64 `json:"deposit_required"`
}

type Booking struct {
	ID          string    `json:"id"`
	QuoteID     string    `json:"quote_id"`
	ClientName  string    `json:"client_name"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	EventType   string    `json:"event_type"`
	EventDate   time.Time `json:"event_date"`
	Venue       string    `json:"venue"`
	Guests      int       `json:"guests"`
	PackageType string    `json:"package_type"` // palmwine, cocktails, flame, full
	DistanceKm  int       `json:"distance_km"`
	Pricing     Pricing   `json:"pricing"`
	Status      string    `json:"status"` // pending, confirmed, cancelled, completed
	CreatedAt   time.Time `json:"created_at"`
}

func BookingFromRecord(r *core.Record) *Booking {
	return &Booking{
		ID:          r.Id,
		QuoteID:     r.GetString("quote_id"),
		ClientName:  r.GetString("client_name"),
		Phone:       r.GetString("phone"),
		Email:       r.GetString("email"),
		EventType:   r.GetString("event_type"),
		EventDate:   r.GetDateTime("event_date").Time(),
		Venue:       r.GetString("venue"),
		Guests:      r.GetInt("guests"),
		PackageType: r.GetString("package_type"),
		DistanceKm:  r.GetInt("distance_km"),
		Pricing: Pricing{
			Subtotal:        r.GetFloat("subtotal"),
			DeliveryCost:    r.GetFloat("delivery_cost"),
			Tax:             r.GetFloat("tax"),
			Total:           r.GetFloat("total"),
			DepositRequired: r.GetFloat("deposit_required"),
		},
		Status:    r.GetString("status"),
		CreatedAt: r.GetDateTime("created").Time(),
	}
}
