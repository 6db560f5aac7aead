// Package main provides the FAQ corpus import command.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/astrotamil/support-engine/internal/matching"
	"github.com/astrotamil/support-engine/internal/storage"
)

// faqRecord is one entry in an import file. Keywords may be a JSON array or
// a comma-separated string.
type faqRecord struct {
	Question string          `json:"question"`
	Answer   string          `json:"answer"`
	Keywords json.RawMessage `json:"keywords,omitempty"`
	Category string          `json:"category,omitempty"`
}

func (r *faqRecord) keywordList() []string {
	if len(r.Keywords) == 0 {
		return nil
	}

	var list []string
	if err := json.Unmarshal(r.Keywords, &list); err == nil {
		return list
	}

	var joined string
	if err := json.Unmarshal(r.Keywords, &joined); err == nil {
		var out []string
		for _, k := range strings.Split(joined, ",") {
			if k = strings.TrimSpace(k); k != "" {
				out = append(out, k)
			}
		}
		return out
	}

	return nil
}

// newImportFaqsCmd creates the import-faqs subcommand.
func newImportFaqsCmd() *cobra.Command {
	var filePath string

	cmd := &cobra.Command{
		Use:   "import-faqs",
		Short: "Import FAQ entries from a JSON file",
		Long: `Import FAQ entries from a JSON file into the corpus.

The file must contain an array of objects with "question" and "answer"
fields. "keywords" may be an array of strings or a comma-separated string;
when omitted, keywords are extracted from the question text.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()

			data, err := os.ReadFile(filePath)
			if err != nil {
				return fmt.Errorf("read import file: %w", err)
			}

			var records []faqRecord
			if err := json.Unmarshal(data, &records); err != nil {
				return fmt.Errorf("parse import file: %w", err)
			}

			db, err := storage.Open(ctx, cfg.Database.Driver, cfg.DatabaseDSN())
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			if err := storage.InitSchema(ctx, db); err != nil {
				return fmt.Errorf("init schema: %w", err)
			}

			repo := storage.NewFAQRepository(db)
			engine := matching.NewEngine(matching.Config{
				MinKeywordLength: cfg.Matching.MinKeywordLength,
				StopWords:        cfg.Matching.StopWords,
			})

			bar := progressbar.Default(int64(len(records)), "importing")

			imported := 0
			skipped := 0
			for _, rec := range records {
				bar.Add(1)

				if strings.TrimSpace(rec.Question) == "" || strings.TrimSpace(rec.Answer) == "" {
					skipped++
					continue
				}

				keywords := rec.keywordList()
				if len(keywords) == 0 {
					keywords = engine.ExtractKeywords(rec.Question)
				}

				if err := repo.Create(ctx, &storage.FaqEntry{
					Question: rec.Question,
					Answer:   rec.Answer,
					Keywords: keywords,
					Category: rec.Category,
				}); err != nil {
					return fmt.Errorf("import %q: %w", rec.Question, err)
				}
				imported++
			}

			color.New(color.FgGreen).Printf("✓ Imported %d FAQs from %d records\n", imported, len(records))
			if skipped > 0 {
				color.New(color.FgYellow).Printf("⚠ Skipped %d records with missing fields\n", skipped)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "path to the JSON import file")
	cmd.MarkFlagRequired("file")

	return cmd
}

// newListFaqsCmd creates the list-faqs subcommand.
func newListFaqsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-faqs",
		Short: "List the FAQ corpus",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			db, err := storage.Open(ctx, cfg.Database.Driver, cfg.DatabaseDSN())
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			if err := storage.InitSchema(ctx, db); err != nil {
				return fmt.Errorf("init schema: %w", err)
			}

			entries, err := storage.NewFAQRepository(db).List(ctx)
			if err != nil {
				return fmt.Errorf("list faqs: %w", err)
			}

			if outputJSON {
				return json.NewEncoder(os.Stdout).Encode(entries)
			}

			for _, entry := range entries {
				color.New(color.FgCyan, color.Bold).Printf("Q: %s\n", entry.Question)
				fmt.Printf("A: %s\n", entry.Answer)
				if entry.Category != "" {
					color.New(color.FgYellow).Printf("   [%s]", entry.Category)
				}
				fmt.Printf("   keywords: %s\n\n", strings.Join(entry.Keywords, ", "))
			}
			color.New(color.FgGreen).Printf("✓ %d FAQ entries\n", len(entries))

			return nil
		},
	}
}
