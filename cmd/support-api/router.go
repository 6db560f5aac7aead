// Package main provides the API router setup.
package main

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/astrotamil/support-engine/cmd/support-api/handlers"
	"github.com/astrotamil/support-engine/cmd/support-api/middleware"
	"github.com/astrotamil/support-engine/internal/cache"
	"github.com/astrotamil/support-engine/internal/config"
	"github.com/astrotamil/support-engine/internal/conversation"
	"github.com/astrotamil/support-engine/internal/matching"
	"github.com/astrotamil/support-engine/internal/notify"
	"github.com/astrotamil/support-engine/internal/observability"
	"github.com/astrotamil/support-engine/internal/storage"
)

// NewRouter wires the storage, cache, matching, and conversation layers into
// the HTTP API.
func NewRouter(logger *observability.Logger, cfg *config.Config, db *sql.DB) (http.Handler, error) {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))
	r.Use(chimiddleware.Timeout(cfg.Server.ReadTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"support-engine"}`))
	})

	r.Get("/ready", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := db.PingContext(req.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.Write([]byte(`{"status":"ready"}`))
	})

	replyCache, err := newCacheClient(cfg)
	if err != nil {
		return nil, err
	}

	engineCfg := matching.Config{
		AcceptThreshold:    cfg.Matching.AcceptThreshold,
		ClarifyThreshold:   cfg.Matching.ClarifyThreshold,
		ClarifyBandEnabled: cfg.Matching.ClarifyBandEnabled,
		KeywordWeight:      cfg.Matching.KeywordWeight,
		IntentBoost:        cfg.Matching.IntentBoost,
		TokenSortWeight:    cfg.Matching.TokenSortWeight,
		PartialWeight:      cfg.Matching.PartialWeight,
		TokenSetWeight:     cfg.Matching.TokenSetWeight,
		MinKeywordLength:   cfg.Matching.MinKeywordLength,
		IntentMarkers:      cfg.Matching.IntentMarkers,
		StopWords:          cfg.Matching.StopWords,
	}
	engine := matching.NewEngine(engineCfg)
	policy := matching.NewPolicy(engine.Config())

	orch := conversation.New(
		storage.NewConversationRepository(db),
		storage.NewTurnRepository(db),
		storage.NewTicketRepository(db),
		storage.NewFAQRepository(db),
		replyCache,
		engine,
		policy,
		newNotifier(cfg, logger),
		logger,
		conversation.Config{
			HistoryWindow:     cfg.Conversation.HistoryWindow,
			HandoffPhrase:     cfg.Conversation.HandoffPhrase,
			Affirmatives:      cfg.Conversation.Affirmatives,
			ReplyCacheEnabled: cfg.Conversation.ReplyCacheEnabled,
			ReplyCacheTTL:     cfg.Cache.TTL,
		},
	)

	chatHandler := handlers.NewChatHandler(logger, orch)
	handoffHandler := handlers.NewHandoffHandler(logger, orch)
	historyHandler := handlers.NewHistoryHandler(logger, orch)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/chat", chatHandler.Post)
		r.Post("/handoff", handoffHandler.Post)
		r.Get("/conversations/{sessionID}/history", historyHandler.Get)
	})

	return r, nil
}

func newCacheClient(cfg *config.Config) (cache.Client, error) {
	if cfg.Cache.Driver == "redis" {
		return cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			PoolSize: cfg.Cache.Redis.PoolSize,
		})
	}
	return cache.NewMemoryClient(cfg.Cache.MaxEntries), nil
}

func newNotifier(cfg *config.Config, logger *observability.Logger) notify.Notifier {
	if cfg.Notify.SMTP.Host == "" {
		return notify.NewLogNotifier(logger)
	}
	return notify.NewSMTPNotifier(notify.SMTPConfig{
		Host:     cfg.Notify.SMTP.Host,
		Port:     cfg.Notify.SMTP.Port,
		Username: cfg.Notify.SMTP.Username,
		Password: cfg.Notify.SMTP.Password,
		From:     cfg.Notify.SMTP.From,
		To:       cfg.Notify.AgentEmail,
	}, logger)
}
