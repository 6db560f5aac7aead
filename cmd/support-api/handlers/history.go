package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/astrotamil/support-engine/internal/conversation"
	"github.com/astrotamil/support-engine/internal/observability"
)

// HistoryHandler serves conversation transcripts.
type HistoryHandler struct {
	logger *observability.Logger
	orch   *conversation.Orchestrator
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(logger *observability.Logger, orch *conversation.Orchestrator) *HistoryHandler {
	return &HistoryHandler{logger: logger, orch: orch}
}

// MessageDTO represents one turn in a transcript.
type MessageDTO struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	IsUser    bool   `json:"is_user"`
	Timestamp string `json:"timestamp"`
}

// HistoryResponseDTO represents a transcript response.
type HistoryResponseDTO struct {
	SessionID      string       `json:"session_id"`
	ConversationID string       `json:"conversation_id"`
	Messages       []MessageDTO `json:"messages"`
	TotalMessages  int          `json:"total_messages"`
}

// Get handles GET /api/v1/conversations/{sessionID}/history.
func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	conv, turns, err := h.orch.History(r.Context(), sessionID)
	if errors.Is(err, conversation.ErrUnknownSession) {
		writeError(w, http.StatusNotFound, "Conversation not found")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("history lookup failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	messages := make([]MessageDTO, 0, len(turns))
	for _, turn := range turns {
		messages = append(messages, MessageDTO{
			ID:        turn.ID.String(),
			Content:   turn.Content,
			IsUser:    turn.IsUser,
			Timestamp: turn.Timestamp.Format(time.RFC3339),
		})
	}

	writeJSON(w, http.StatusOK, HistoryResponseDTO{
		SessionID:      sessionID,
		ConversationID: conv.ID.String(),
		Messages:       messages,
		TotalMessages:  len(messages),
	})
}
