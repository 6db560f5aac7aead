package conversation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/astrotamil/support-engine/internal/storage"
)

// Handoff confirmation messages shown to the user.
const (
	HandoffSubmittedMessage = "Your request has been submitted. A human agent will contact you within 24 hours."
	HandoffQueuedMessage    = "Your request is already in queue. An agent will contact you shortly."
)

// SubmitRequest carries the contact details for a handoff ticket.
type SubmitRequest struct {
	SessionID string
	Name      string
	Phone     string
	Details   string
}

// SubmitResult reports the outcome of a handoff submission.
type SubmitResult struct {
	Created       bool
	AlreadyQueued bool
	Ticket        *storage.HandoffTicket
	Message       string
}

// SubmitHandoffDetails validates the request and creates a pending ticket.
// If the conversation already has one, the existing ticket is returned
// instead of a duplicate. The agent notification is sent asynchronously.
func (o *Orchestrator) SubmitHandoffDetails(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	if err := validateSubmit(req); err != nil {
		return nil, err
	}

	unlock := o.sessions.lock(req.SessionID)
	defer unlock()

	conv, err := o.conversations.GetBySession(ctx, req.SessionID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUnknownSession
	}
	if err != nil {
		return nil, err
	}

	if existing, err := o.tickets.FindPending(ctx, conv.ID); err == nil {
		return &SubmitResult{
			AlreadyQueued: true,
			Ticket:        existing,
			Message:       HandoffQueuedMessage,
		}, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	ticket := &storage.HandoffTicket{
		ConversationID: conv.ID,
		Name:           strings.TrimSpace(req.Name),
		Phone:          strings.TrimSpace(req.Phone),
		Details:        strings.TrimSpace(req.Details),
	}

	err = o.tickets.Create(ctx, ticket)
	if errors.Is(err, storage.ErrConflict) {
		// A concurrent submission won; return its ticket.
		existing, ferr := o.tickets.FindPending(ctx, conv.ID)
		if ferr != nil {
			return nil, ferr
		}
		return &SubmitResult{
			AlreadyQueued: true,
			Ticket:        existing,
			Message:       HandoffQueuedMessage,
		}, nil
	}
	if err != nil {
		return nil, err
	}

	if err := o.conversations.SetMode(ctx, conv.ID, storage.ModeNormal); err != nil {
		return nil, err
	}

	o.logger.WithSession(req.SessionID).Info().
		Str("ticket_id", ticket.ID.String()).
		Str("reference", ticket.Reference()).
		Msg("handoff ticket created")

	if o.notifier != nil {
		go func(t storage.HandoffTicket, c storage.Conversation) {
			notifyCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := o.notifier.TicketCreated(notifyCtx, &t, &c); err != nil {
				o.logger.Error().Err(err).
					Str("ticket_id", t.ID.String()).
					Msg("agent notification failed")
			}
		}(*ticket, *conv)
	}

	return &SubmitResult{
		Created: true,
		Ticket:  ticket,
		Message: HandoffSubmittedMessage,
	}, nil
}

// History returns a conversation and all of its turns in order.
func (o *Orchestrator) History(ctx context.Context, sessionID string) (*storage.Conversation, []storage.Turn, error) {
	conv, err := o.conversations.GetBySession(ctx, sessionID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, ErrUnknownSession
	}
	if err != nil {
		return nil, nil, err
	}

	turns, err := o.turns.ListAll(ctx, conv.ID)
	if err != nil {
		return nil, nil, err
	}

	return conv, turns, nil
}

func validateSubmit(req SubmitRequest) error {
	if strings.TrimSpace(req.SessionID) == "" {
		return &ValidationError{Field: "session_id", Message: "session_id is required"}
	}
	if strings.TrimSpace(req.Name) == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if !validPhone(req.Phone) {
		return &ValidationError{Field: "phone", Message: "Please enter a valid phone number"}
	}
	if strings.TrimSpace(req.Details) == "" {
		return &ValidationError{Field: "problem_summary", Message: "problem_summary is required"}
	}
	return nil
}

// validPhone accepts digits with optional plus signs and spaces.
func validPhone(phone string) bool {
	stripped := strings.NewReplacer("+", "", " ", "").Replace(strings.TrimSpace(phone))
	if stripped == "" {
		return false
	}
	for _, r := range stripped {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
