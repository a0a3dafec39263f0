// Package cli implements the papersumm command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/papersumm/papersumm/internal/config"
	"github.com/papersumm/papersumm/internal/logging"
)

var (
	configPath string
	logLevel   string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "papersumm",
	Short: "Summarize research papers with structural validation",
	Long: `papersumm builds prompts from section templates, invokes a language
model, validates that the answer actually follows the requested
structure, and retries with corrective instructions when it does not.

The daily pipeline fetches the Hugging Face paper feed, summarizes
every paper, and maintains a markdown archive.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			loaded.LogLevel = logLevel
		}
		cfg = loaded
		logging.Setup(cfg.LogLevel, os.Stderr)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: ./papersumm.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
