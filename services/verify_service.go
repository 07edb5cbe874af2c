package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"events-system/internal/status"
	"events-system/models"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
)

// VerifyService flips a ticket's verified state exactly once per
// redemption cycle. Re-presenting an already-verified ticket is the
// expected real-world failure mode, so it reports AlreadyVerified
// instead of erroring. Two near-simultaneous scans of the same code
// may both see "not yet verified" and both succeed; single-row
// atomicity is the only guarantee here.
type VerifyService struct {
	store    Store
	notifier *NotifyService
}

func NewVerifyService(store Store, notifier *NotifyService) *VerifyService {
	return &VerifyService{store: store, notifier: notifier}
}

type VerificationResult struct {
	Valid           bool
	AlreadyVerified bool
	Message         string
	Ticket          *models.Ticket
	Event           *models.Event
}

// ExtractTicketCode unwraps the code from whichever field the scanner
// sent. QR payloads arrive as JSON strings carrying {"code": ...};
// some clients paste that JSON into the ticket_id field directly.
func ExtractTicketCode(ticketID, code, qrData string) string {
	candidate := ticketID
	if candidate == "" {
		candidate = code
	}
	if candidate == "" {
		candidate = qrData
	}
	candidate = strings.TrimSpace(candidate)

	if strings.Contains(candidate, "{") {
		var embedded struct {
			Code string `json:"code"`
		}
		if err := json.Unmarshal([]byte(candidate), &embedded); err == nil && embedded.Code != "" {
			return embedded.Code
		}
	}
	return candidate
}

// Verify marks the ticket redeemed. Inconsistent stored state
// (verified without a timestamp, or a stray timestamp) is repaired to
// unverified before the transition; partial prior writes never
// surface as errors.
func (s *VerifyService) Verify(ctx context.Context, code string) (*VerificationResult, error) {
	record, err := s.store.FindFirstRecordByFilter("tickets", "code = {:code}", dbx.Params{"code": code})
	if err != nil {
		return nil, status.ErrTicketNotFound
	}

	verified := record.GetBool("verified")
	verifiedAt := record.GetDateTime("verified_at")

	if verified && !verifiedAt.IsZero() {
		ticket := models.TicketFromRecord(record)
		verifiedBy := ticket.VerifiedBy
		if verifiedBy == "" {
			verifiedBy = "System"
		}
		result := &VerificationResult{
			Valid:           true,
			AlreadyVerified: true,
			Message: fmt.Sprintf("Ticket was already verified on %s by %s",
				verifiedAt.Time().Format("2006-01-02 15:04:05"), verifiedBy),
			Ticket: ticket,
			Event:  s.loadEvent(record),
		}
		s.notifier.TicketVerified(result.Ticket, true)
		return result, nil
	}

	if verified && verifiedAt.IsZero() {
		record.Set("verified", false)
		if err := s.store.Save(record); err != nil {
			return nil, fmt.Errorf("verify: repair %q: %w", code, err)
		}
	} else if !verified && !verifiedAt.IsZero() {
		record.Set("verified_at", "")
		record.Set("verified_by", "")
		if err := s.store.Save(record); err != nil {
			return nil, fmt.Errorf("verify: repair %q: %w", code, err)
		}
	}

	actor := ActorFrom(ctx)
	if actor == "" {
		actor = "System"
	}

	record.Set("verified", true)
	record.Set("verified_at", types.NowDateTime())
	record.Set("verified_by", actor)
	if err := s.store.Save(record); err != nil {
		return nil, fmt.Errorf("verify: %q: %w", code, err)
	}

	result := &VerificationResult{
		Valid:   true,
		Message: "Ticket verified successfully",
		Ticket:  models.TicketFromRecord(record),
		Event:   s.loadEvent(record),
	}
	s.notifier.TicketVerified(result.Ticket, false)
	return result, nil
}

// ResetVerification returns the ticket to unverified, clearing the
// verifying actor. Used for operator-corrected mis-scans.
func (s *VerifyService) ResetVerification(_ context.Context, code string) (*VerificationResult, error) {
	record, err := s.store.FindFirstRecordByFilter("tickets", "code = {:code}", dbx.Params{"code": code})
	if err != nil {
		return nil, status.ErrTicketNotFound
	}

	record.Set("verified", false)
	record.Set("verified_at", "")
	record.Set("verified_by", "")
	if err := s.store.Save(record); err != nil {
		return nil, fmt.Errorf("verify: reset %q: %w", code, err)
	}

	result := &VerificationResult{
		Valid:   true,
		Message: "Verification status reset successfully",
		Ticket:  models.TicketFromRecord(record),
	}
	s.notifier.VerificationReset(code)
	return result, nil
}

func (s *VerifyService) loadEvent(ticket *core.Record) *models.Event {
	eventID := ticket.GetString("event")
	if eventID == "" {
		return nil
	}
	record, err := s.store.FindRecordById("events", eventID)
	if err != nil {
		return nil
	}
	return models.EventFromRecord(record)
}
