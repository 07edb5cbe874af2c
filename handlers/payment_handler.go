package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"events-system/internal/gateway/paystack"
	"events-system/internal/status"
	"events-system/monitoring"
	"events-system/services"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
)

type PaymentHandler struct {
	app              *pocketbase.PocketBase
	gatewayService   *services.GatewayService
	paymentService   *services.PaymentService
	notifyService    *services.NotifyService
	webhookSecretKey string
}

func NewPaymentHandler(
	app *pocketbase.PocketBase,
	gatewayService *services.GatewayService,
	paymentService *services.PaymentService,
	notifyService *services.NotifyService,
	webhookSecretKey string,
) *PaymentHandler {
	return &PaymentHandler{
		app:              app,
		gatewayService:   gatewayService,
		paymentService:   paymentService,
		notifyService:    notifyService,
		webhookSecretKey: webhookSecretKey,
	}
}

// VerifyPayment - Confirm a gateway transaction reference. Read-only:
// the client decides whether to proceed to store_ticket.
func (h *PaymentHandler) VerifyPayment(e *core.RequestEvent) error {
	var req struct {
		Reference string `json:"reference"`
		Ref       string `json:"ref"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	reference := strings.TrimSpace(firstNonEmpty(req.Reference, req.Ref))
	if reference == "" {
		return apis.NewBadRequestError("Missing reference", nil)
	}

	verification, err := h.gatewayService.VerifyPayment(e.Request.Context(), reference)
	if err != nil {
		if errors.Is(err, status.ErrGatewayTimeout) {
			return apis.NewApiError(http.StatusGatewayTimeout, "Verification timed out", nil)
		}
		slog.Error("verifyPayment", "reference", reference, "error", err)
		return apis.NewApiError(http.StatusBadGateway, "Payment verification failed", nil)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"success":   true,
		"gateway":   "paystack",
		"verified":  verification.Verified,
		"reference": verification.Reference,
		"amount":    verification.Amount.InexactFloat64(),
		"currency":  verification.Currency,
		"paid_at":   verification.PaidAt,
		"status":    verification.Status,
	})
}

// PaystackWebhook - Signed gateway callback. charge.success events
// feed the payment ledger through the same dedup path as client
// submissions, so a webhook arriving after a store_ticket retry is a
// no-op.
func (h *PaymentHandler) PaystackWebhook(e *core.RequestEvent) error {
	body, err := io.ReadAll(e.Request.Body)
	if err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	signature := e.Request.Header.Get("x-paystack-signature")
	if !paystack.ValidSignature(body, signature, h.webhookSecretKey) {
		return apis.NewUnauthorizedError("Invalid signature", nil)
	}

	event, err := paystack.ParseWebhook(body)
	if err != nil {
		return apis.NewBadRequestError("Invalid webhook payload", err)
	}

	if event.Event != "charge.success" || strings.ToLower(event.Data.Status) != "success" {
		return e.JSON(http.StatusOK, map[string]any{"received": true})
	}

	ctx := e.Request.Context()
	reference := event.Data.Reference

	// Link to the ticket that referenced this transaction, if any was
	// stored before the webhook arrived.
	ticketID := ""
	if ticket, err := h.app.FindFirstRecordByFilter(
		"tickets",
		"order_reference = {:ref}",
		dbx.Params{"ref": reference},
	); err == nil {
		ticketID = ticket.Id
	}

	payerName := strings.TrimSpace(event.Data.Customer.FirstName + " " + event.Data.Customer.LastName)
	payment, err := h.paymentService.RecordPayment(ctx, services.RecordPaymentRequest{
		Reference: reference,
		TicketID:  ticketID,
		PayerName: payerName,
		Phone:     event.Data.Customer.Phone,
		Email:     event.Data.Customer.Email,
		Amount:    decimal.NewFromInt(event.Data.Amount).Div(decimal.NewFromInt(100)),
		Method:    "paystack",
		Notes:     "Recorded via gateway webhook",
	})
	if err != nil {
		slog.Error("paystackWebhook: record payment", "reference", reference, "error", err)
		return apis.NewApiError(http.StatusInternalServerError, "Failed to record payment", nil)
	}

	monitoring.TrackPaymentRecorded(payment.Method)
	h.notifyService.PaymentRecorded(payment)

	return e.JSON(http.StatusOK, map[string]any{"received": true})
}
