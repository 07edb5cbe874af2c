package handlers

import (
	"net/http"

	"events-system/models"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
)

type EventHandler struct {
	app *pocketbase.PocketBase
}

func NewEventHandler(app *pocketbase.PocketBase) *EventHandler {
	return &EventHandler{app: app}
}

// ListEvents - All events, newest first.
func (h *EventHandler) ListEvents(e *core.RequestEvent) error {
	records, err := h.app.FindRecordsByFilter("events", "id != ''", "-date", 0, 0)
	if err != nil {
		return apis.NewBadRequestError("Failed to list events", err)
	}

	events := make([]*models.Event, 0, len(records))
	for _, r := range records {
		events = append(events, models.EventFromRecord(r))
	}
	return e.JSON(http.StatusOK, events)
}

// GetEvent - One event by id.
func (h *EventHandler) GetEvent(e *core.RequestEvent) error {
	record, err := h.app.FindRecordById("events", e.Request.PathValue("eventId"))
	if err != nil {
		return apis.NewNotFoundError("Event not found", nil)
	}
	return e.JSON(http.StatusOK, models.EventFromRecord(record))
}

type eventUpsertRequest struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	EventType      string   `json:"event_type"`
	Date           string   `json:"date"`
	Location       string   `json:"location"`
	MaxCapacity    *int     `json:"max_capacity"`
	PricePerTicket *float64 `json:"price_per_ticket"`
	IsActive       *bool    `json:"is_active"`
}

// CreateEvent - Catalog-management creation path.
func (h *EventHandler) CreateEvent(e *core.RequestEvent) error {
	var req eventUpsertRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.Name == "" || req.Date == "" || req.Location == "" {
		return apis.NewBadRequestError("Missing required fields: name, date, location", nil)
	}

	date, err := types.ParseDateTime(req.Date)
	if err != nil {
		return apis.NewBadRequestError("Invalid date", err)
	}

	collection, err := h.app.FindCollectionByNameOrId("events")
	if err != nil {
		return apis.NewApiError(http.StatusInternalServerError, "Failed to create event", nil)
	}

	record := core.NewRecord(collection)
	record.Set("name", req.Name)
	record.Set("description", req.Description)
	record.Set("event_type", req.EventType)
	record.Set("date", date)
	record.Set("location", req.Location)
	if req.MaxCapacity != nil {
		record.Set("max_capacity", *req.MaxCapacity)
	} else {
		record.Set("max_capacity", 100)
	}
	if req.PricePerTicket != nil {
		record.Set("price_per_ticket", *req.PricePerTicket)
	}
	record.Set("is_active", true)

	if err := h.app.Save(record); err != nil {
		return apis.NewBadRequestError("Failed to create event", err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"success": true,
		"id":      record.Id,
		"message": "Event created successfully",
	})
}

// UpdateEvent - Partial update; absent fields keep their values.
func (h *EventHandler) UpdateEvent(e *core.RequestEvent) error {
	record, err := h.app.FindRecordById("events", e.Request.PathValue("eventId"))
	if err != nil {
		return apis.NewNotFoundError("Event not found", nil)
	}

	var req eventUpsertRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	if req.Name != "" {
		record.Set("name", req.Name)
	}
	if req.Description != "" {
		record.Set("description", req.Description)
	}
	if req.EventType != "" {
		record.Set("event_type", req.EventType)
	}
	if req.Date != "" {
		date, err := types.ParseDateTime(req.Date)
		if err != nil {
			return apis.NewBadRequestError("Invalid date", err)
		}
		record.Set("date", date)
	}
	if req.Location != "" {
		record.Set("location", req.Location)
	}
	if req.MaxCapacity != nil {
		record.Set("max_capacity", *req.MaxCapacity)
	}
	if req.PricePerTicket != nil {
		record.Set("price_per_ticket", *req.PricePerTicket)
	}
	if req.IsActive != nil {
		record.Set("is_active", *req.IsActive)
	}

	if err := h.app.Save(record); err != nil {
		return apis.NewBadRequestError("Failed to update event", err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Event updated successfully",
	})
}

// DeleteEvent - Administrative removal; tickets cascade.
func (h *EventHandler) DeleteEvent(e *core.RequestEvent) error {
	record, err := h.app.FindRecordById("events", e.Request.PathValue("eventId"))
	if err != nil {
		return apis.NewNotFoundError("Event not found", nil)
	}
	if err := h.app.Delete(record); err != nil {
		return apis.NewBadRequestError("Failed to delete event", err)
	}
	return e.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Event deleted successfully",
	})
}

// EventStats - Capacity figures. Sold counts verified quantities
// only; capacity is reported, not enforced, on the store path.
func (h *EventHandler) EventStats(e *core.RequestEvent) error {
	record, err := h.app.FindRecordById("events", e.Request.PathValue("eventId"))
	if err != nil {
		return apis.NewNotFoundError("Event not found", nil)
	}

	var sold int
	err = h.app.DB().
		NewQuery("SELECT COALESCE(SUM(quantity), 0) FROM tickets WHERE event = {:event} AND verified = 1").
		Bind(dbx.Params{"event": record.Id}).
		Row(&sold)
	if err != nil {
		return apis.NewApiError(http.StatusInternalServerError, "Failed to compute stats", nil)
	}

	capacity := record.GetInt("max_capacity")
	return e.JSON(http.StatusOK, models.EventStats{
		EventID:          record.Id,
		TicketsSold:      sold,
		TicketsAvailable: capacity - sold,
		MaxCapacity:      capacity,
	})
}
