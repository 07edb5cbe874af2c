package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"events-system/models"
	"events-system/services"
	"events-system/utils"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type BookingHandler struct {
	app            *pocketbase.PocketBase
	pricingService *services.PricingService
}

func NewBookingHandler(app *pocketbase.PocketBase, pricingService *services.PricingService) *BookingHandler {
	return &BookingHandler{
		app:            app,
		pricingService: pricingService,
	}
}

type bookingQuoteRequest struct {
	PackageType string `json:"package_type"`
	Guests      int    `json:"guests"`
	DistanceKm  int    `json:"distance_km"`
	ClientName  string `json:"client_name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	EventType   string `json:"event_type"`
	EventDate   string `json:"event_date"`
	Venue       string `json:"venue"`
}

// CreateQuote - Price a catering package and persist the booking.
func (h *BookingHandler) CreateQuote(e *core.RequestEvent) error {
	var req bookingQuoteRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	req.ClientName = strings.TrimSpace(req.ClientName)
	if req.ClientName == "" {
		return apis.NewBadRequestError("Missing client_name", nil)
	}
	if req.Guests < 1 {
		return apis.NewBadRequestError("Guests must be at least 1", nil)
	}
	if req.DistanceKm < 0 {
		return apis.NewBadRequestError("Distance cannot be negative", nil)
	}

	eventDate, err := time.Parse("2006-01-02", req.EventDate)
	if err != nil {
		return apis.NewBadRequestError("Invalid event_date, expected YYYY-MM-DD", nil)
	}

	pricing := h.pricingService.Quote(req.PackageType, req.Guests, req.DistanceKm)

	quoteID, err := utils.GenerateQuoteID(time.Now())
	if err != nil {
		slog.Error("createQuote: quote id", "error", err)
		return apis.NewApiError(http.StatusInternalServerError, "Error generating quote", nil)
	}

	collection, err := h.app.FindCollectionByNameOrId("bookings")
	if err != nil {
		slog.Error("createQuote: bookings collection", "error", err)
		return apis.NewApiError(http.StatusInternalServerError, "Error generating quote", nil)
	}

	booking := core.NewRecord(collection)
	booking.Set("quote_id", quoteID)
	booking.Set("client_name", req.ClientName)
	booking.Set("phone", req.Phone)
	booking.Set("email", req.Email)
	booking.Set("event_type", req.EventType)
	booking.Set("event_date", eventDate.Format("2006-01-02 15:04:05.000Z"))
	booking.Set("venue", req.Venue)
	booking.Set("guests", req.Guests)
	booking.Set("package_type", req.PackageType)
	booking.Set("distance_km", req.DistanceKm)
	booking.Set("subtotal", pricing.Subtotal)
	booking.Set("delivery_cost", pricing.DeliveryCost)
	booking.Set("tax", pricing.Tax)
	booking.Set("total", pricing.Total)
	booking.Set("deposit_required", pricing.DepositRequired)
	booking.Set("status", "pending")

	if err := h.app.Save(booking); err != nil {
		slog.Error("createQuote: save booking", "quote_id", quoteID, "error", err)
		return apis.NewBadRequestError("Error generating quote. Please check your details and try again.", nil)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"success":  true,
		"quote_id": quoteID,
		"pricing": map[string]any{
			"subtotal":         pricing.Subtotal,
			"delivery_cost":    pricing.DeliveryCost,
			"tax":              pricing.Tax,
			"total":            pricing.Total,
			"deposit_required": pricing.DepositRequired,
		},
		"booking_id": booking.Id,
	})
}

// GetQuote - Retrieve a previously issued quote by its public id.
func (h *BookingHandler) GetQuote(e *core.RequestEvent) error {
	quoteID := strings.TrimSpace(e.Request.PathValue("quoteId"))

	record, err := h.app.FindFirstRecordByFilter(
		"bookings",
		"quote_id = {:quote_id}",
		dbx.Params{"quote_id": quoteID},
	)
	if err != nil {
		return apis.NewNotFoundError("Quote not found", nil)
	}

	return e.JSON(http.StatusOK, models.BookingFromRecord(record))
}
