package services

import (
	"log/slog"
	"time"

	"events-system/models"

	pubnub "github.com/pubnub/go"
)

// Channels operator dashboards subscribe to.
const (
	verificationChannel = "ticket-verifications"
	paymentChannel      = "payment-records"
)

// NotifyService pushes reconciliation events to realtime dashboards.
// A nil service (or one without a PubNub client) is a no-op so tests
// and minimal deployments need no messaging backend.
type NotifyService struct {
	pn *pubnub.PubNub
}

func NewNotifyService(pn *pubnub.PubNub) *NotifyService {
	return &NotifyService{pn: pn}
}

func (s *NotifyService) TicketVerified(ticket *models.Ticket, alreadyVerified bool) {
	s.publish(verificationChannel, map[string]any{
		"type":             "ticket_verified",
		"code":             ticket.Code,
		"already_verified": alreadyVerified,
		"verified_by":      ticket.VerifiedBy,
		"quantity":         ticket.Quantity,
		"at":               time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *NotifyService) VerificationReset(code string) {
	s.publish(verificationChannel, map[string]any{
		"type": "verification_reset",
		"code": code,
		"at":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *NotifyService) PaymentRecorded(payment *models.Payment) {
	s.publish(paymentChannel, map[string]any{
		"type":      "payment_recorded",
		"reference": payment.Reference,
		"amount":    payment.Amount,
		"status":    payment.Status,
		"at":        time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *NotifyService) publish(channel string, message map[string]any) {
	if s == nil || s.pn == nil {
		return
	}
	_, _, err := s.pn.Publish().
		Channel(channel).
		Message(message).
		Execute()
	if err != nil {
		slog.Warn("notify: publish failed", "channel", channel, "error", err)
	}
}
