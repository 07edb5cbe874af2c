package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"events-system/internal/status"
	"events-system/models"
	"events-system/monitoring"
	"events-system/services"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type TicketHandler struct {
	app            *pocketbase.PocketBase
	catalogService *services.CatalogService
	ticketService  *services.TicketService
	paymentService *services.PaymentService
	verifyService  *services.VerifyService
	notifyService  *services.NotifyService
}

func NewTicketHandler(
	app *pocketbase.PocketBase,
	catalogService *services.CatalogService,
	ticketService *services.TicketService,
	paymentService *services.PaymentService,
	verifyService *services.VerifyService,
	notifyService *services.NotifyService,
) *TicketHandler {
	return &TicketHandler{
		app:            app,
		catalogService: catalogService,
		ticketService:  ticketService,
		paymentService: paymentService,
		verifyService:  verifyService,
		notifyService:  notifyService,
	}
}

type eventRef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Event       string `json:"event"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

type storeTicketRequest struct {
	Code         string   `json:"code"`
	Ref          string   `json:"ref"`
	Reference    string   `json:"reference"`
	CustomerName string   `json:"customerName"`
	Name         string   `json:"name"`
	Phone        string   `json:"phone"`
	Email        string   `json:"email"`
	Amount       any      `json:"amount"`
	AmountPaid   any      `json:"amountPaid"`
	Quantity     any      `json:"quantity"`
	Event        eventRef `json:"event"`
	EventDetails eventRef `json:"eventDetails"`
	EventID      string   `json:"event_id"`
}

// StoreTicket - Reconcile a payment-confirmation payload into ticket
// and payment records. Idempotent per ticket code.
func (h *TicketHandler) StoreTicket(e *core.RequestEvent) error {
	var req storeTicketRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	ctx := e.Request.Context()

	code := strings.TrimSpace(req.Code)
	ref := strings.TrimSpace(firstNonEmpty(req.Ref, req.Reference))
	name := strings.TrimSpace(firstNonEmpty(req.CustomerName, req.Name))
	phone := strings.TrimSpace(req.Phone)
	email := strings.TrimSpace(req.Email)
	if email == "" {
		email = "no-email@local"
	}

	amount := services.ParseAmount(firstNonNil(req.Amount, req.AmountPaid))
	quantity := coerceInt(req.Quantity)

	ev := req.EventDetails
	if ev.Name == "" && ev.Event == "" && ev.ID == "" {
		ev = req.Event
	}
	evName := strings.TrimSpace(firstNonEmpty(ev.Name, ev.Event))
	evID := strings.TrimSpace(firstNonEmpty(req.EventID, ev.ID))

	// A missing event is a soft failure downstream, not a rejection.
	eventRecord, err := h.catalogService.Resolve(ctx, evID, evName, ev.Location, ev.Description)
	if err != nil && !errors.Is(err, status.ErrEventNotFound) {
		slog.Error("storeTicket: resolve event", "event_id", evID, "event_name", evName, "error", err)
		eventRecord = nil
	}

	ticket, stored, err := h.ticketService.StoreTicket(ctx, services.StoreTicketRequest{
		Code:         code,
		Reference:    ref,
		CustomerName: name,
		Phone:        phone,
		Email:        email,
		Amount:       amount,
		Quantity:     quantity,
		Event:        eventRecord,
	})
	if err != nil {
		if ve, ok := status.AsValidation(err); ok {
			monitoring.TrackTicketStored("rejected")
			return e.JSON(http.StatusBadRequest, map[string]any{
				"success": false,
				"message": ve.Message,
				"details": ve.Details,
			})
		}
		slog.Error("storeTicket: store", "code", code, "error", err)
		monitoring.TrackTicketStored("error")
		return apis.NewBadRequestError("Store failed", nil)
	}

	var payment *models.Payment
	if stored {
		monitoring.TrackTicketStored("stored")
		payment, err = h.paymentService.RecordPayment(ctx, services.RecordPaymentRequest{
			Reference: ref,
			TicketID:  ticket.ID,
			PayerName: name,
			Phone:     phone,
			Email:     email,
			Amount:    amount,
			Method:    "paystack",
			Notes:     "Stored via API /api/store-ticket/",
		})
		if err != nil {
			// Ticket is durable; a payment bookkeeping failure must not
			// fail the reconciliation.
			slog.Error("storeTicket: record payment", "reference", ref, "error", err)
			payment = nil
		} else {
			monitoring.TrackPaymentRecorded(payment.Method)
			h.notifyService.PaymentRecorded(payment)
		}
	} else {
		monitoring.TrackTicketStored("skipped")
	}

	resp := map[string]any{
		"success": true,
		"stored":  stored,
		"ticket":  nil,
		"payment": nil,
	}
	if stored {
		resp["ticket"] = map[string]any{
			"id":              ticket.ID,
			"code":            ticket.Code,
			"event":           map[string]any{"id": eventRecord.Id, "name": eventRecord.GetString("name")},
			"customer_name":   name,
			"customer_email":  email,
			"amount_paid":     amount.InexactFloat64(),
			"order_reference": ref,
		}
	}
	if payment != nil {
		resp["payment"] = map[string]any{
			"id":        payment.ID,
			"amount":    payment.Amount,
			"reference": payment.Reference,
			"status":    payment.Status,
		}
	}
	return e.JSON(http.StatusOK, resp)
}

type verifyTicketRequest struct {
	TicketID          string `json:"ticket_id"`
	Code              string `json:"code"`
	QRData            string `json:"qrData"`
	ResetVerification bool   `json:"reset_verification"`
}

// VerifyTicket - Entry-point scan. Flips the ticket's verified state
// once per redemption cycle; re-scans report already_verified so the
// operator gets a warning instead of an error.
func (h *TicketHandler) VerifyTicket(e *core.RequestEvent) error {
	var req verifyTicketRequest
	if err := e.BindBody(&req); err != nil {
		return e.JSON(http.StatusBadRequest, map[string]any{
			"success": false,
			"valid":   false,
			"message": "Invalid JSON data",
		})
	}

	code := services.ExtractTicketCode(req.TicketID, req.Code, req.QRData)
	if code == "" {
		return e.JSON(http.StatusBadRequest, map[string]any{
			"success": false,
			"valid":   false,
			"message": "Ticket ID is required",
		})
	}

	ctx := services.WithActor(e.Request.Context(), actorName(e))

	if req.ResetVerification {
		result, err := h.verifyService.ResetVerification(ctx, code)
		if err != nil {
			return h.verifyError(e, code, err)
		}
		monitoring.TrackVerification("reset")
		return e.JSON(http.StatusOK, map[string]any{
			"success": true,
			"message": result.Message,
			"ticket_info": map[string]any{
				"code":        result.Ticket.Code,
				"verified":    false,
				"verified_at": nil,
			},
		})
	}

	result, err := h.verifyService.Verify(ctx, code)
	if err != nil {
		return h.verifyError(e, code, err)
	}

	if result.AlreadyVerified {
		monitoring.TrackVerification("already_verified")
	} else {
		monitoring.TrackVerification("verified")
	}

	return e.JSON(http.StatusOK, map[string]any{
		"success":          true,
		"valid":            result.Valid,
		"already_verified": result.AlreadyVerified,
		"message":          result.Message,
		"ticket_info":      ticketInfo(result),
	})
}

func (h *TicketHandler) verifyError(e *core.RequestEvent, code string, err error) error {
	if errors.Is(err, status.ErrTicketNotFound) {
		monitoring.TrackVerification("not_found")
		return e.JSON(http.StatusNotFound, map[string]any{
			"success": false,
			"valid":   false,
			"message": "Invalid ticket ID: " + code,
		})
	}
	slog.Error("verifyTicket", "code", code, "error", err)
	return e.JSON(http.StatusInternalServerError, map[string]any{
		"success": false,
		"valid":   false,
		"message": "Error verifying ticket",
	})
}

func ticketInfo(result *services.VerificationResult) map[string]any {
	t := result.Ticket
	info := map[string]any{
		"code":            t.Code,
		"customer_name":   t.CustomerName,
		"event_name":      "Unknown Event",
		"event_location":  "",
		"event_date":      "",
		"email":           t.CustomerEmail,
		"amount":          t.AmountPaid,
		"purchase_date":   t.PurchaseDate.Format("2006-01-02T15:04:05Z07:00"),
		"verified_by":     t.VerifiedBy,
		"ticket_quantity": max(1, t.Quantity),
		"order_reference": t.OrderReference,
	}
	if t.VerifiedAt != nil {
		info["verified_at"] = t.VerifiedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	if result.Event != nil {
		info["event_name"] = result.Event.Name
		info["event_location"] = result.Event.Location
		info["event_date"] = result.Event.Date.Format("2006-01-02T15:04:05Z07:00")
	}
	return info
}

func actorName(e *core.RequestEvent) string {
	if e.Auth == nil {
		return ""
	}
	if name := e.Auth.GetString("name"); name != "" {
		return name
	}
	return e.Auth.GetString("email")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonNil(values ...any) any {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

// coerceInt tolerates numbers arriving as floats or numeric strings;
// anything else counts as absent.
func coerceInt(raw any) int {
	switch v := raw.(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		n := 0
		for _, r := range v {
			if r < '0' || r > '9' {
				return 0
			}
			n = n*10 + int(r-'0')
		}
		return n
	default:
		return 0
	}
}
