// Package conversation orchestrates chat sessions: it routes user messages
// through FAQ matching, detects handoff acceptance, and manages handoff
// ticket intake.
package conversation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/astrotamil/support-engine/internal/cache"
	"github.com/astrotamil/support-engine/internal/matching"
	"github.com/astrotamil/support-engine/internal/notify"
	"github.com/astrotamil/support-engine/internal/observability"
	"github.com/astrotamil/support-engine/internal/storage"
)

// KindCollectDetails is the reply kind when the bot asks for contact details
// after the user accepts a handoff offer.
const KindCollectDetails = "collect_human_details"

// CollectDetailsPrompt asks the user for the information a human agent needs.
const CollectDetailsPrompt = "Please provide your details so our human agent can contact you:\n\n" +
	"1. Your Name\n2. Contact Number\n3. Brief summary of your issue"

// ConversationStore is the conversation persistence the orchestrator needs.
type ConversationStore interface {
	GetOrCreate(ctx context.Context, sessionID, language string) (*storage.Conversation, error)
	GetBySession(ctx context.Context, sessionID string) (*storage.Conversation, error)
	Touch(ctx context.Context, id uuid.UUID) error
	SetMode(ctx context.Context, id uuid.UUID, mode storage.ConversationMode) error
}

// TurnStore is the message persistence the orchestrator needs.
type TurnStore interface {
	Append(ctx context.Context, turn *storage.Turn) error
	Recent(ctx context.Context, conversationID uuid.UUID, limit int) ([]storage.Turn, error)
	ListAll(ctx context.Context, conversationID uuid.UUID) ([]storage.Turn, error)
}

// TicketStore is the ticket persistence the orchestrator needs.
type TicketStore interface {
	FindPending(ctx context.Context, conversationID uuid.UUID) (*storage.HandoffTicket, error)
	Create(ctx context.Context, ticket *storage.HandoffTicket) error
}

// CorpusStore loads the FAQ corpus.
type CorpusStore interface {
	List(ctx context.Context) ([]storage.FaqEntry, error)
}

// Config holds orchestration settings.
type Config struct {
	HistoryWindow     int
	HandoffPhrase     string
	Affirmatives      []string
	ReplyCacheEnabled bool
	ReplyCacheTTL     time.Duration
}

// DefaultConfig returns the standard orchestration settings.
func DefaultConfig() Config {
	return Config{
		HistoryWindow:     5,
		HandoffPhrase:     "human agent",
		Affirmatives:      []string{"yes", "ok", "sure"},
		ReplyCacheEnabled: true,
		ReplyCacheTTL:     5 * time.Minute,
	}
}

// Reply is the orchestrator's answer to one user message.
type Reply struct {
	SessionID       string    `json:"session_id"`
	Text            string    `json:"text"`
	Kind            string    `json:"kind"`
	Confidence      float64   `json:"confidence"`
	MatchedQuestion string    `json:"matched_question,omitempty"`
	MatchedCategory string    `json:"matched_category,omitempty"`
	Matched         bool      `json:"matched"`
	Timestamp       time.Time `json:"timestamp"`
}

// Orchestrator wires matching, storage, caching, and notification into the
// chat flow.
type Orchestrator struct {
	conversations ConversationStore
	turns         TurnStore
	tickets       TicketStore
	corpus        CorpusStore
	replyCache    cache.Client
	engine        *matching.Engine
	policy        *matching.Policy
	notifier      notify.Notifier
	logger        *observability.Logger
	cfg           Config
	sessions      keyedMutex
}

// New creates an Orchestrator. replyCache may be nil to disable caching.
func New(
	conversations ConversationStore,
	turns TurnStore,
	tickets TicketStore,
	corpus CorpusStore,
	replyCache cache.Client,
	engine *matching.Engine,
	policy *matching.Policy,
	notifier notify.Notifier,
	logger *observability.Logger,
	cfg Config,
) *Orchestrator {
	def := DefaultConfig()
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = def.HistoryWindow
	}
	if cfg.HandoffPhrase == "" {
		cfg.HandoffPhrase = def.HandoffPhrase
	}
	if len(cfg.Affirmatives) == 0 {
		cfg.Affirmatives = def.Affirmatives
	}
	if cfg.ReplyCacheTTL <= 0 {
		cfg.ReplyCacheTTL = def.ReplyCacheTTL
	}
	if replyCache == nil {
		cfg.ReplyCacheEnabled = false
	}

	return &Orchestrator{
		conversations: conversations,
		turns:         turns,
		tickets:       tickets,
		corpus:        corpus,
		replyCache:    replyCache,
		engine:        engine,
		policy:        policy,
		notifier:      notifier,
		logger:        logger.WithComponent("conversation"),
		cfg:           cfg,
	}
}

// HandleUserMessage processes one user message and returns the bot's reply.
// An empty sessionID starts a new auto-generated session.
func (o *Orchestrator) HandleUserMessage(ctx context.Context, sessionID, message, language string) (*Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	if sessionID == "" {
		sessionID = newSessionID()
	}
	if language == "" {
		language = "en"
	}

	unlock := o.sessions.lock(sessionID)
	defer unlock()

	conv, err := o.conversations.GetOrCreate(ctx, sessionID, language)
	if err != nil {
		return nil, err
	}
	if err := o.conversations.Touch(ctx, conv.ID); err != nil {
		return nil, err
	}

	if err := o.turns.Append(ctx, &storage.Turn{
		ConversationID: conv.ID,
		Content:        message,
		IsUser:         true,
	}); err != nil {
		return nil, err
	}

	recent, err := o.turns.Recent(ctx, conv.ID, o.cfg.HistoryWindow)
	if err != nil {
		return nil, err
	}

	log := o.logger.WithSession(sessionID)

	var reply *Reply
	if o.wantsHandoff(recent, message) {
		reply = &Reply{
			SessionID: sessionID,
			Text:      CollectDetailsPrompt,
			Kind:      KindCollectDetails,
			Timestamp: time.Now().UTC(),
		}
		if err := o.conversations.SetMode(ctx, conv.ID, storage.ModeAwaitingHandoffDetails); err != nil {
			return nil, err
		}
		log.Info().Msg("handoff accepted, collecting details")
	} else {
		resp, err := o.answer(ctx, conv, message)
		if err != nil {
			return nil, err
		}
		reply = &Reply{
			SessionID:       sessionID,
			Text:            resp.Text,
			Kind:            string(resp.Kind),
			Confidence:      resp.Confidence,
			MatchedQuestion: resp.Question,
			MatchedCategory: resp.Category,
			Matched:         resp.Matched,
			Timestamp:       time.Now().UTC(),
		}
		if conv.Mode == storage.ModeAwaitingHandoffDetails {
			if err := o.conversations.SetMode(ctx, conv.ID, storage.ModeNormal); err != nil {
				return nil, err
			}
		}
		log.Debug().
			Str("kind", reply.Kind).
			Float64("confidence", reply.Confidence).
			Msg("message answered")
	}

	if err := o.turns.Append(ctx, &storage.Turn{
		ConversationID: conv.ID,
		Content:        reply.Text,
		IsUser:         false,
	}); err != nil {
		return nil, err
	}

	return reply, nil
}

// wantsHandoff reports whether the message accepts a pending handoff offer:
// within the recent turns (newest first), the most recent bot turn mentions
// the handoff phrase and the user's message contains an affirmative.
func (o *Orchestrator) wantsHandoff(recent []storage.Turn, message string) bool {
	if len(recent) <= 1 {
		return false
	}

	var lastBot *storage.Turn
	for i := range recent {
		if !recent[i].IsUser {
			lastBot = &recent[i]
			break
		}
	}
	if lastBot == nil {
		return false
	}
	if !strings.Contains(strings.ToLower(lastBot.Content), o.cfg.HandoffPhrase) {
		return false
	}

	lowered := strings.ToLower(message)
	for _, affirmative := range o.cfg.Affirmatives {
		if strings.Contains(lowered, affirmative) {
			return true
		}
	}
	return false
}

// answer resolves a message through the reply cache, the FAQ corpus, and the
// response policy. The cache is bypassed while the conversation is collecting
// handoff details.
func (o *Orchestrator) answer(ctx context.Context, conv *storage.Conversation, message string) (*matching.Response, error) {
	useCache := o.cfg.ReplyCacheEnabled && conv.Mode == storage.ModeNormal
	key := replyCacheKey(message)

	if useCache {
		if data, err := o.replyCache.Get(ctx, key); err == nil {
			var resp matching.Response
			if err := json.Unmarshal(data, &resp); err == nil {
				return &resp, nil
			}
		}
	}

	entries, err := o.corpus.List(ctx)
	if err != nil {
		return nil, err
	}

	faqEntries := make([]matching.FaqEntry, 0, len(entries))
	for _, e := range entries {
		faqEntries = append(faqEntries, matching.FaqEntry{
			Question: e.Question,
			Answer:   e.Answer,
			Keywords: e.Keywords,
			Category: e.Category,
		})
	}

	result := o.engine.FindBestMatch(message, faqEntries)
	resp := o.policy.Classify(result)

	if useCache {
		if data, err := json.Marshal(resp); err == nil {
			if err := o.replyCache.Set(ctx, key, data, o.cfg.ReplyCacheTTL); err != nil {
				o.logger.Warn().Err(err).Msg("reply cache set failed")
			}
		}
	}

	return &resp, nil
}

// replyCacheKey derives the cache key from the normalized message so that
// punctuation and casing variants share an entry.
func replyCacheKey(message string) string {
	sum := sha256.Sum256([]byte(matching.Normalize(message)))
	return "reply:" + hex.EncodeToString(sum[:])
}

// newSessionID generates a session ID for clients that did not supply one.
func newSessionID() string {
	return fmt.Sprintf("auto_%d_%04d", time.Now().UnixNano(), rand.Intn(10000))
}
