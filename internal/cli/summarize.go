package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papersumm/papersumm/internal/engine"
	"github.com/papersumm/papersumm/internal/models"
)

var (
	summarizeTitle    string
	summarizeAbstract string
	summarizeTemplate string
	summarizeReport   bool
)

func init() {
	rootCmd.AddCommand(summarizeCmd)

	summarizeCmd.Flags().StringVar(&summarizeTitle, "title", "", "paper title (required)")
	summarizeCmd.Flags().StringVar(&summarizeAbstract, "abstract", "", "paper abstract (required)")
	summarizeCmd.Flags().StringVar(&summarizeTemplate, "template", "", "template variant (default: from config)")
	summarizeCmd.Flags().BoolVar(&summarizeReport, "report", false, "print the compliance report")
	summarizeCmd.MarkFlagRequired("title")
	summarizeCmd.MarkFlagRequired("abstract")
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Summarize a single paper",
	Example: `  papersumm summarize \
    --title "Scaling Laws for Neural Language Models" \
    --abstract "We study empirical scaling laws for language model performance..."`,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := buildRegistry()
		if err != nil {
			return err
		}
		clients, err := buildClients()
		if err != nil {
			return err
		}

		templateID := cfg.Pipeline.TemplateID
		if summarizeTemplate != "" {
			templateID = summarizeTemplate
		}

		request := models.SummaryRequest{
			Title:    summarizeTitle,
			Abstract: summarizeAbstract,
		}

		eng := buildEngine(registry)
		var result *engine.Result
		for _, client := range clients {
			result, err = eng.Run(cmd.Context(), client, templateID, request)
			if err == nil || errors.Is(err, engine.ErrRetriesExhausted) {
				break
			}
		}
		if result == nil {
			return err
		}

		fmt.Println(result.Text)

		if summarizeReport && result.Report != nil {
			fmt.Printf("\nVerdict: %s (%d attempts, model %s)\n",
				result.Report.Verdict, result.Attempts, result.Model)
			if len(result.Report.Violations) > 0 {
				fmt.Println("Violations:")
				for _, v := range result.Report.Violations {
					fmt.Printf("  - %s\n", v)
				}
			}
		}

		return err
	},
}
