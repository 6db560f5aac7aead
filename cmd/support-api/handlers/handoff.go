package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/astrotamil/support-engine/internal/conversation"
	"github.com/astrotamil/support-engine/internal/observability"
)

// HandoffHandler handles human handoff submissions.
type HandoffHandler struct {
	logger *observability.Logger
	orch   *conversation.Orchestrator
}

// NewHandoffHandler creates a new handoff handler.
func NewHandoffHandler(logger *observability.Logger, orch *conversation.Orchestrator) *HandoffHandler {
	return &HandoffHandler{logger: logger, orch: orch}
}

// HandoffRequestDTO represents a handoff API request.
type HandoffRequestDTO struct {
	SessionID      string `json:"session_id"`
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	ProblemSummary string `json:"problem_summary"`
}

// HandoffResponseDTO represents a handoff API response.
type HandoffResponseDTO struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	TicketID        string `json:"ticket_id"`
	ReferenceNumber string `json:"reference_number,omitempty"`
	Status          string `json:"status,omitempty"`
}

// Post handles POST /api/v1/handoff.
func (h *HandoffHandler) Post(w http.ResponseWriter, r *http.Request) {
	var req HandoffRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.orch.SubmitHandoffDetails(r.Context(), conversation.SubmitRequest{
		SessionID: req.SessionID,
		Name:      req.Name,
		Phone:     req.Phone,
		Details:   req.ProblemSummary,
	})

	var verr *conversation.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]string{verr.Field: verr.Message})
		return
	case errors.Is(err, conversation.ErrUnknownSession):
		writeError(w, http.StatusBadRequest, "Invalid session")
		return
	case err != nil:
		h.logger.Error().Err(err).Msg("handoff submission failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := HandoffResponseDTO{
		Success:  true,
		Message:  result.Message,
		TicketID: result.Ticket.ID.String(),
	}
	if result.Created {
		resp.ReferenceNumber = result.Ticket.Reference()
	} else {
		resp.Status = string(result.Ticket.Status)
	}

	writeJSON(w, http.StatusOK, resp)
}
