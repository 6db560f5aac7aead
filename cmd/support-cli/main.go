// Package main provides the support engine CLI entrypoint.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/astrotamil/support-engine/internal/config"
	"github.com/astrotamil/support-engine/internal/observability"
)

var (
	cfgFile    string
	outputJSON bool

	cfg    *config.Config
	logger *observability.Logger
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "support-cli",
	Short: "Support engine CLI for FAQ corpus management and local chat",
	Long: `Support engine CLI provides commands for operating the FAQ chatbot.

Use this tool to:
- Import FAQ entries from a JSON file
- List the current FAQ corpus
- Chat with the bot from the terminal`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logFormat := "console"
		if outputJSON {
			logFormat = "json"
		}

		logger = observability.NewLogger(observability.LogConfig{
			Level:       cfg.Observability.LogLevel,
			Format:      logFormat,
			ServiceName: "support-cli",
		})

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: uses env vars)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")

	rootCmd.AddCommand(newImportFaqsCmd())
	rootCmd.AddCommand(newListFaqsCmd())
	rootCmd.AddCommand(newChatCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
