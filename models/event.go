package models

import (
	"time"

	"github.com/pocketbase/pocketbase/core"
)

type Event struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	EventType      string    `json:"event_type"` // bush_party, corporate, private, wedding, festival
	Date           time.Time `json:"date"`
	Location       string    `json:"location"`
	MaxCapacity    int       `json:"max_capacity"`
	PricePerTicket float64   `json:"price_per_ticket"`
	IsActive       bool      `json:"is_active"`
}

func EventFromRecord(r *core.Record) *Event {
	return &Event{
		ID:             r.Id,
		Name:           r.GetString("name"),
		Description:    r.GetString("description"),
		EventType:      r.GetString("event_type"),
		Date:           r.GetDateTime("date").Time(),
		Location:       r.GetString("location"),
		MaxCapacity:    r.GetInt("max_capacity"),
		PricePerTicket: r.GetFloat("price_per_ticket"),
		IsActive:       r.GetBool("is_active"),
	}
}

// EventStats reports the soft capacity figures for one event. Sold
// counts verified ticket quantities only.
type EventStats struct {
	EventID          string `json:"event_id"`
	TicketsSold      int    `json:"tickets_sold"`
	TicketsAvailable int    `json:"tickets_available"`
	MaxCapacity      int    `json:"max_capacity"`
}
