package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors returned by repositories.
var (
	ErrNotFound = errors.New("storage: not found")
	ErrConflict = errors.New("storage: conflict")
)

// DB is the subset of *sql.DB the repositories need. Satisfied by *sql.DB
// and *sql.Tx.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// FAQRepository manages the FAQ corpus.
type FAQRepository struct {
	db DB
}

// NewFAQRepository creates an FAQRepository.
func NewFAQRepository(db DB) *FAQRepository {
	return &FAQRepository{db: db}
}

// List returns the full corpus in insertion order.
func (r *FAQRepository) List(ctx context.Context) ([]FaqEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, question, answer, keywords, category, created_at
		 FROM faq_entries
		 ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list faq entries: %w", err)
	}
	defer rows.Close()

	var entries []FaqEntry
	for rows.Next() {
		var (
			entry       FaqEntry
			id          string
			keywordsRaw string
		)
		if err := rows.Scan(&id, &entry.Question, &entry.Answer, &keywordsRaw,
			&entry.Category, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan faq entry: %w", err)
		}
		if entry.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse faq entry id: %w", err)
		}
		if err := json.Unmarshal([]byte(keywordsRaw), &entry.Keywords); err != nil {
			return nil, fmt.Errorf("decode faq keywords: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// Create inserts a new FAQ entry. The caller supplies precomputed keywords.
func (r *FAQRepository) Create(ctx context.Context, entry *FaqEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	keywords, err := json.Marshal(entry.Keywords)
	if err != nil {
		return fmt.Errorf("encode faq keywords: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO faq_entries (id, question, answer, keywords, category, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID.String(), entry.Question, entry.Answer, string(keywords),
		entry.Category, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("create faq entry: %w", err)
	}

	return nil
}

// ConversationRepository manages chat sessions.
type ConversationRepository struct {
	db DB
}

// NewConversationRepository creates a ConversationRepository.
func NewConversationRepository(db DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// GetOrCreate returns the conversation for sessionID, creating it if absent.
func (r *ConversationRepository) GetOrCreate(ctx context.Context, sessionID, language string) (*Conversation, error) {
	conv, err := r.GetBySession(ctx, sessionID)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	conv = &Conversation{
		ID:           uuid.New(),
		SessionID:    sessionID,
		Language:     language,
		Mode:         ModeNormal,
		CreatedAt:    now,
		LastActiveAt: now,
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO conversations (id, session_id, language, mode, created_at, last_active_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT DO NOTHING`,
		conv.ID.String(), conv.SessionID, conv.Language, string(conv.Mode),
		conv.CreatedAt, conv.LastActiveAt)
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}

	// A concurrent insert may have won; read back the stored row either way.
	return r.GetBySession(ctx, sessionID)
}

// GetBySession returns the conversation with the given session ID.
func (r *ConversationRepository) GetBySession(ctx context.Context, sessionID string) (*Conversation, error) {
	var (
		conv Conversation
		id   string
		mode string
	)

	err := r.db.QueryRowContext(ctx,
		`SELECT id, session_id, language, mode, created_at, last_active_at
		 FROM conversations WHERE session_id = $1`, sessionID).
		Scan(&id, &conv.SessionID, &conv.Language, &mode, &conv.CreatedAt, &conv.LastActiveAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}

	if conv.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse conversation id: %w", err)
	}
	conv.Mode = ConversationMode(mode)

	return &conv, nil
}

// Touch updates a conversation's last-active timestamp.
func (r *ConversationRepository) Touch(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE conversations SET last_active_at = $1 WHERE id = $2`,
		time.Now().UTC(), id.String())
	if err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}
	return nil
}

// SetMode updates a conversation's mode.
func (r *ConversationRepository) SetMode(ctx context.Context, id uuid.UUID, mode ConversationMode) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE conversations SET mode = $1 WHERE id = $2`,
		string(mode), id.String())
	if err != nil {
		return fmt.Errorf("set conversation mode: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// TurnRepository manages conversation messages.
type TurnRepository struct {
	db DB
}

// NewTurnRepository creates a TurnRepository.
func NewTurnRepository(db DB) *TurnRepository {
	return &TurnRepository{db: db}
}

// Append stores a new turn.
func (r *TurnRepository) Append(ctx context.Context, turn *Turn) error {
	if turn.ID == uuid.Nil {
		turn.ID = uuid.New()
	}
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO turns (id, conversation_id, content, is_user, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		turn.ID.String(), turn.ConversationID.String(), turn.Content,
		turn.IsUser, turn.Timestamp)
	if err != nil {
		return fmt.Errorf("append turn: %w", err)
	}

	return nil
}

// Recent returns up to limit turns of a conversation, newest first.
func (r *TurnRepository) Recent(ctx context.Context, conversationID uuid.UUID, limit int) ([]Turn, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, conversation_id, content, is_user, created_at
		 FROM turns WHERE conversation_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		conversationID.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("recent turns: %w", err)
	}
	defer rows.Close()

	return scanTurns(rows)
}

// ListAll returns every turn of a conversation in chronological order.
func (r *TurnRepository) ListAll(ctx context.Context, conversationID uuid.UUID) ([]Turn, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, conversation_id, content, is_user, created_at
		 FROM turns WHERE conversation_id = $1
		 ORDER BY created_at, id`,
		conversationID.String())
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	defer rows.Close()

	return scanTurns(rows)
}

func scanTurns(rows *sql.Rows) ([]Turn, error) {
	var turns []Turn
	for rows.Next() {
		var (
			turn   Turn
			id     string
			convID string
		)
		if err := rows.Scan(&id, &convID, &turn.Content, &turn.IsUser, &turn.Timestamp); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}

		var err error
		if turn.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse turn id: %w", err)
		}
		if turn.ConversationID, err = uuid.Parse(convID); err != nil {
			return nil, fmt.Errorf("parse turn conversation id: %w", err)
		}
		turns = append(turns, turn)
	}

	return turns, rows.Err()
}

// TicketRepository manages handoff tickets.
type TicketRepository struct {
	db DB
}

// NewTicketRepository creates a TicketRepository.
func NewTicketRepository(db DB) *TicketRepository {
	return &TicketRepository{db: db}
}

// FindPending returns the pending ticket for a conversation, or ErrNotFound.
func (r *TicketRepository) FindPending(ctx context.Context, conversationID uuid.UUID) (*HandoffTicket, error) {
	var (
		ticket HandoffTicket
		id     string
		convID string
		status string
	)

	err := r.db.QueryRowContext(ctx,
		`SELECT id, conversation_id, name, phone, details, status, created_at
		 FROM handoff_tickets
		 WHERE conversation_id = $1 AND status = 'pending'`,
		conversationID.String()).
		Scan(&id, &convID, &ticket.Name, &ticket.Phone, &ticket.Details,
			&status, &ticket.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find pending ticket: %w", err)
	}

	if ticket.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse ticket id: %w", err)
	}
	if ticket.ConversationID, err = uuid.Parse(convID); err != nil {
		return nil, fmt.Errorf("parse ticket conversation id: %w", err)
	}
	ticket.Status = TicketStatus(status)

	return &ticket, nil
}

// Create inserts a pending ticket. Returns ErrConflict if the conversation
// already has one; the partial unique index on pending status enforces this
// even under concurrent submissions.
func (r *TicketRepository) Create(ctx context.Context, ticket *HandoffTicket) error {
	if ticket.ID == uuid.Nil {
		ticket.ID = uuid.New()
	}
	if ticket.Status == "" {
		ticket.Status = TicketPending
	}
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = time.Now().UTC()
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO handoff_tickets (id, conversation_id, name, phone, details, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT DO NOTHING`,
		ticket.ID.String(), ticket.ConversationID.String(), ticket.Name,
		ticket.Phone, ticket.Details, string(ticket.Status), ticket.CreatedAt)
	if err != nil {
		return fmt.Errorf("create ticket: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrConflict
	}

	return nil
}

// SetStatus updates a ticket's status.
func (r *TicketRepository) SetStatus(ctx context.Context, id uuid.UUID, status TicketStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE handoff_tickets SET status = $1 WHERE id = $2`,
		string(status), id.String())
	if err != nil {
		return fmt.Errorf("set ticket status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
