package conversation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/astrotamil/support-engine/internal/storage"
)

type fakeStore struct {
	mu            sync.Mutex
	conversations map[string]*storage.Conversation
	turns         map[uuid.UUID][]storage.Turn
	tickets       map[uuid.UUID]*storage.HandoffTicket
	faqs          []storage.FaqEntry
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		conversations: make(map[string]*storage.Conversation),
		turns:         make(map[uuid.UUID][]storage.Turn),
		tickets:       make(map[uuid.UUID]*storage.HandoffTicket),
	}
}

func (f *fakeStore) GetOrCreate(ctx context.Context, sessionID, language string) (*storage.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if conv, ok := f.conversations[sessionID]; ok {
		copied := *conv
		return &copied, nil
	}

	now := time.Now().UTC()
	conv := &storage.Conversation{
		ID:           uuid.New(),
		SessionID:    sessionID,
		Language:     language,
		Mode:         storage.ModeNormal,
		CreatedAt:    now,
		LastActiveAt: now,
	}
	f.conversations[sessionID] = conv

	copied := *conv
	return &copied, nil
}

func (f *fakeStore) GetBySession(ctx context.Context, sessionID string) (*storage.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	conv, ok := f.conversations[sessionID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copied := *conv
	return &copied, nil
}

func (f *fakeStore) Touch(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, conv := range f.conversations {
		if conv.ID == id {
			conv.LastActiveAt = time.Now().UTC()
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeStore) SetMode(ctx context.Context, id uuid.UUID, mode storage.ConversationMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, conv := range f.conversations {
		if conv.ID == id {
			conv.Mode = mode
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeStore) Append(ctx context.Context, turn *storage.Turn) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if turn.ID == uuid.Nil {
		turn.ID = uuid.New()
	}
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now().UTC()
	}
	f.turns[turn.ConversationID] = append(f.turns[turn.ConversationID], *turn)
	return nil
}

func (f *fakeStore) Recent(ctx context.Context, conversationID uuid.UUID, limit int) ([]storage.Turn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	all := f.turns[conversationID]
	out := make([]storage.Turn, 0, limit)
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

func (f *fakeStore) ListAll(ctx context.Context, conversationID uuid.UUID) ([]storage.Turn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]storage.Turn(nil), f.turns[conversationID]...), nil
}

func (f *fakeStore) FindPending(ctx context.Context, conversationID uuid.UUID) (*storage.HandoffTicket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ticket, ok := f.tickets[conversationID]
	if !ok || ticket.Status != storage.TicketPending {
		return nil, storage.ErrNotFound
	}
	copied := *ticket
	return &copied, nil
}

func (f *fakeStore) Create(ctx context.Context, ticket *storage.HandoffTicket) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if existing, ok := f.tickets[ticket.ConversationID]; ok && existing.Status == storage.TicketPending {
		return storage.ErrConflict
	}

	if ticket.ID == uuid.Nil {
		ticket.ID = uuid.New()
	}
	if ticket.Status == "" {
		ticket.Status = storage.TicketPending
	}
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = time.Now().UTC()
	}

	copied := *ticket
	f.tickets[ticket.ConversationID] = &copied
	return nil
}

func (f *fakeStore) List(ctx context.Context) ([]storage.FaqEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]storage.FaqEntry(nil), f.faqs...), nil
}

type fakeNotifier struct {
	mu      sync.Mutex
	tickets []storage.HandoffTicket
	done    chan struct{}
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{done: make(chan struct{}, 8)}
}

func (n *fakeNotifier) TicketCreated(ctx context.Context, ticket *storage.HandoffTicket, conv *storage.Conversation) error {
	n.mu.Lock()
	n.tickets = append(n.tickets, *ticket)
	n.mu.Unlock()
	n.done <- struct{}{}
	return nil
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.tickets)
}
