// Package main provides the interactive chat command.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/astrotamil/support-engine/internal/cache"
	"github.com/astrotamil/support-engine/internal/conversation"
	"github.com/astrotamil/support-engine/internal/matching"
	"github.com/astrotamil/support-engine/internal/notify"
	"github.com/astrotamil/support-engine/internal/storage"
)

// newChatCmd creates the chat subcommand, a local REPL against the engine.
func newChatCmd() *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the bot from the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			db, err := storage.Open(ctx, cfg.Database.Driver, cfg.DatabaseDSN())
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			if err := storage.InitSchema(ctx, db); err != nil {
				return fmt.Errorf("init schema: %w", err)
			}

			engine := matching.NewEngine(matching.Config{
				AcceptThreshold:    cfg.Matching.AcceptThreshold,
				ClarifyThreshold:   cfg.Matching.ClarifyThreshold,
				ClarifyBandEnabled: cfg.Matching.ClarifyBandEnabled,
				KeywordWeight:      cfg.Matching.KeywordWeight,
				IntentBoost:        cfg.Matching.IntentBoost,
				MinKeywordLength:   cfg.Matching.MinKeywordLength,
				IntentMarkers:      cfg.Matching.IntentMarkers,
				StopWords:          cfg.Matching.StopWords,
			})

			replyCache := cache.NewMemoryClient(cfg.Cache.MaxEntries)
			defer replyCache.Close()

			orch := conversation.New(
				storage.NewConversationRepository(db),
				storage.NewTurnRepository(db),
				storage.NewTicketRepository(db),
				storage.NewFAQRepository(db),
				replyCache,
				engine,
				matching.NewPolicy(engine.Config()),
				notify.NewLogNotifier(logger),
				logger,
				conversation.Config{
					HistoryWindow:     cfg.Conversation.HistoryWindow,
					HandoffPhrase:     cfg.Conversation.HandoffPhrase,
					Affirmatives:      cfg.Conversation.Affirmatives,
					ReplyCacheEnabled: cfg.Conversation.ReplyCacheEnabled,
					ReplyCacheTTL:     cfg.Cache.TTL,
				},
			)

			if sessionID == "" {
				sessionID = "cli_" + uuid.NewString()[:8]
			}

			color.New(color.FgCyan, color.Bold).Println("Support chat. Type 'exit' to quit.")
			color.New(color.FgCyan).Printf("session: %s\n\n", sessionID)

			scanner := bufio.NewScanner(os.Stdin)
			for {
				color.New(color.FgGreen, color.Bold).Print("you> ")
				if !scanner.Scan() {
					break
				}

				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "exit" || line == "quit" {
					break
				}

				reqCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
				reply, err := orch.HandleUserMessage(reqCtx, sessionID, line, "en")
				cancel()
				if err != nil {
					color.New(color.FgRed).Printf("✗ %v\n", err)
					continue
				}

				color.New(color.FgBlue, color.Bold).Print("bot> ")
				fmt.Println(reply.Text)
				if reply.Matched {
					color.New(color.FgYellow).Printf("     (%s, confidence %.2f)\n", reply.Kind, reply.Confidence)
				}
			}

			return scanner.Err()
		},
	}

	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "session ID to resume")

	return cmd
}
