// Package storage provides the persistence layer: conversations, turns,
// handoff tickets, and the FAQ corpus, over SQLite or Postgres.
package storage

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TicketStatus is the lifecycle state of a handoff ticket.
type TicketStatus string

const (
	TicketPending   TicketStatus = "pending"
	TicketContacted TicketStatus = "contacted"
	TicketResolved  TicketStatus = "resolved"
)

// ConversationMode tells the orchestrator how to interpret the next user
// message.
type ConversationMode string

const (
	// ModeNormal routes messages through FAQ matching.
	ModeNormal ConversationMode = "normal"

	// ModeAwaitingHandoffDetails means the bot asked for contact details and
	// the next message should be treated as a handoff submission.
	ModeAwaitingHandoffDetails ConversationMode = "awaiting_handoff_details"
)

// Conversation is one chat session.
type Conversation struct {
	ID           uuid.UUID        `json:"id"`
	SessionID    string           `json:"session_id"`
	Language     string           `json:"language"`
	Mode         ConversationMode `json:"mode"`
	CreatedAt    time.Time        `json:"created_at"`
	LastActiveAt time.Time        `json:"last_active_at"`
}

// Turn is a single message within a conversation.
type Turn struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	Content        string    `json:"content"`
	IsUser         bool      `json:"is_user"`
	Timestamp      time.Time `json:"timestamp"`
}

// HandoffTicket records a request to be contacted by a human agent.
type HandoffTicket struct {
	ID             uuid.UUID    `json:"id"`
	ConversationID uuid.UUID    `json:"conversation_id"`
	Name           string       `json:"name"`
	Phone          string       `json:"phone"`
	Details        string       `json:"details"`
	Status         TicketStatus `json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
}

// Reference returns the short ticket reference shown to users: the first
// eight hex characters of the ticket ID, uppercased.
func (t *HandoffTicket) Reference() string {
	compact := strings.ReplaceAll(t.ID.String(), "-", "")
	return strings.ToUpper(compact[:8])
}

// FaqEntry is a stored FAQ question/answer pair.
type FaqEntry struct {
	ID        uuid.UUID `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Keywords  []string  `json:"keywords"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}
