package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/astrotamil/support-engine/internal/conversation"
	"github.com/astrotamil/support-engine/internal/observability"
)

// ChatHandler handles chat messages.
type ChatHandler struct {
	logger *observability.Logger
	orch   *conversation.Orchestrator
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(logger *observability.Logger, orch *conversation.Orchestrator) *ChatHandler {
	return &ChatHandler{logger: logger, orch: orch}
}

// ChatRequestDTO represents a chat API request.
type ChatRequestDTO struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	Language  string `json:"language,omitempty"`
}

// ChatResponseDTO represents a chat API response.
type ChatResponseDTO struct {
	SessionID       string  `json:"session_id"`
	UserMessage     string  `json:"user_message"`
	AIResponse      string  `json:"ai_response"`
	ResponseType    string  `json:"response_type"`
	Confidence      float64 `json:"confidence"`
	Timestamp       string  `json:"timestamp"`
	MatchedQuestion string  `json:"matched_question,omitempty"`
	Category        string  `json:"category,omitempty"`
}

// Post handles POST /api/v1/chat.
func (h *ChatHandler) Post(w http.ResponseWriter, r *http.Request) {
	var req ChatRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := h.orch.HandleUserMessage(r.Context(), req.SessionID, req.Message, req.Language)
	if errors.Is(err, conversation.ErrEmptyMessage) {
		writeError(w, http.StatusBadRequest, "Message cannot be empty")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("chat handling failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := ChatResponseDTO{
		SessionID:    reply.SessionID,
		UserMessage:  req.Message,
		AIResponse:   reply.Text,
		ResponseType: reply.Kind,
		Confidence:   reply.Confidence,
		Timestamp:    reply.Timestamp.Format(time.RFC3339),
	}
	if reply.Matched {
		resp.MatchedQuestion = reply.MatchedQuestion
		resp.Category = reply.MatchedCategory
	}

	writeJSON(w, http.StatusOK, resp)
}
