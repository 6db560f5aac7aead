package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	db, err := Open(ctx, "sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, InitSchema(ctx, db))
	return db
}

func TestFAQRepositoryCreateAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewFAQRepository(testDB(t))

	first := &FaqEntry{
		Question:  "What services do you provide?",
		Answer:    "We provide astrology consultations.",
		Keywords:  []string{"services", "provide"},
		Category:  "services",
		CreatedAt: time.Now().UTC().Add(-time.Minute),
	}
	second := &FaqEntry{
		Question: "How do I book a consultation?",
		Answer:   "Through the website booking page.",
		Keywords: []string{"book", "consultation"},
		Category: "booking",
	}

	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	entries, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "What services do you provide?", entries[0].Question)
	assert.Equal(t, []string{"services", "provide"}, entries[0].Keywords)
	assert.Equal(t, "How do I book a consultation?", entries[1].Question)
	assert.NotEqual(t, uuid.Nil, entries[0].ID)
}

func TestConversationGetOrCreate(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepository(testDB(t))

	conv, err := repo.GetOrCreate(ctx, "session-1", "en")
	require.NoError(t, err)
	assert.Equal(t, "session-1", conv.SessionID)
	assert.Equal(t, ModeNormal, conv.Mode)

	again, err := repo.GetOrCreate(ctx, "session-1", "en")
	require.NoError(t, err)
	assert.Equal(t, conv.ID, again.ID)
}

func TestConversationGetBySessionNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepository(testDB(t))

	_, err := repo.GetBySession(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConversationSetMode(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepository(testDB(t))

	conv, err := repo.GetOrCreate(ctx, "session-1", "en")
	require.NoError(t, err)

	require.NoError(t, repo.SetMode(ctx, conv.ID, ModeAwaitingHandoffDetails))

	reloaded, err := repo.GetBySession(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, ModeAwaitingHandoffDetails, reloaded.Mode)

	assert.ErrorIs(t, repo.SetMode(ctx, uuid.New(), ModeNormal), ErrNotFound)
}

func TestConversationTouch(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepository(testDB(t))

	conv, err := repo.GetOrCreate(ctx, "session-1", "en")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, repo.Touch(ctx, conv.ID))

	reloaded, err := repo.GetBySession(ctx, "session-1")
	require.NoError(t, err)
	assert.True(t, reloaded.LastActiveAt.After(conv.LastActiveAt))
}

func TestTurnAppendAndRecent(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	convs := NewConversationRepository(db)
	turns := NewTurnRepository(db)

	conv, err := convs.GetOrCreate(ctx, "session-1", "en")
	require.NoError(t, err)

	base := time.Now().UTC().Add(-time.Minute)
	for i, content := range []string{"first", "second", "third"} {
		require.NoError(t, turns.Append(ctx, &Turn{
			ConversationID: conv.ID,
			Content:        content,
			IsUser:         i%2 == 0,
			Timestamp:      base.Add(time.Duration(i) * time.Second),
		}))
	}

	recent, err := turns.Recent(ctx, conv.ID, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "third", recent[0].Content)
	assert.Equal(t, "second", recent[1].Content)

	all, err := turns.ListAll(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "first", all[0].Content)
	assert.True(t, all[0].IsUser)
	assert.False(t, all[1].IsUser)
}

func TestTicketCreateAndPendingUniqueness(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	convs := NewConversationRepository(db)
	tickets := NewTicketRepository(db)

	conv, err := convs.GetOrCreate(ctx, "session-1", "en")
	require.NoError(t, err)

	ticket := &HandoffTicket{
		ConversationID: conv.ID,
		Name:           "Priya",
		Phone:          "+91 98765 43210",
		Details:        "refund question",
	}
	require.NoError(t, tickets.Create(ctx, ticket))
	assert.Equal(t, TicketPending, ticket.Status)

	// Second pending ticket for the same conversation is rejected.
	dup := &HandoffTicket{ConversationID: conv.ID, Name: "Priya", Phone: "+91 98765 43210"}
	assert.ErrorIs(t, tickets.Create(ctx, dup), ErrConflict)

	pending, err := tickets.FindPending(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, pending.ID)

	// Resolving the ticket frees the slot.
	require.NoError(t, tickets.SetStatus(ctx, ticket.ID, TicketResolved))
	fresh := &HandoffTicket{ConversationID: conv.ID, Name: "Priya", Phone: "+91 98765 43210"}
	require.NoError(t, tickets.Create(ctx, fresh))
}

func TestTicketFindPendingNotFound(t *testing.T) {
	ctx := context.Background()
	tickets := NewTicketRepository(testDB(t))

	_, err := tickets.FindPending(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTicketReference(t *testing.T) {
	id := uuid.MustParse("a1b2c3d4-0000-0000-0000-000000000000")
	ticket := &HandoffTicket{ID: id}

	assert.Equal(t, "A1B2C3D4", ticket.Reference())
}
