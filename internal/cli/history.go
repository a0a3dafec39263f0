package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/papersumm/papersumm/internal/db"
	"github.com/papersumm/papersumm/internal/models"
)

var (
	historyVerdict  string
	historyTemplate string
	historyLimit    int

	usageSince string
	usageModel string
)

func init() {
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(usageCmd)

	historyCmd.Flags().StringVar(&historyVerdict, "verdict", "", "filter by verdict (compliant, partial, non_compliant)")
	historyCmd.Flags().StringVar(&historyTemplate, "template", "", "filter by template variant")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "max results")

	usageCmd.Flags().StringVar(&usageSince, "since", "", "only count records at or after YYYY-MM-DD")
	usageCmd.Flags().StringVar(&usageModel, "model", "", "filter by model")
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored summary results",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		query := db.SummaryQuery{Limit: historyLimit}
		if historyVerdict != "" {
			verdict := models.Verdict(historyVerdict)
			query.Verdict = &verdict
		}
		if historyTemplate != "" {
			query.TemplateID = &historyTemplate
		}

		results, err := db.NewSummaryRepository(database).List(cmd.Context(), query)
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(results))
		for _, r := range results {
			rows = append(rows, []string{
				r.CreatedAt.Local().Format("2006-01-02 15:04"),
				truncate(r.Title, 50),
				string(r.Verdict),
				fmt.Sprintf("%d", r.Attempts),
				r.Model,
			})
		}
		return writeTable(os.Stdout, []string{"CREATED", "TITLE", "VERDICT", "ATTEMPTS", "MODEL"}, rows)
	},
}

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show aggregate token usage",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		query := models.UsageQuery{}
		if usageSince != "" {
			since, err := time.Parse("2006-01-02", usageSince)
			if err != nil {
				return fmt.Errorf("invalid date %q: %w", usageSince, err)
			}
			query.Since = &since
		}
		if usageModel != "" {
			query.Model = &usageModel
		}

		totals, err := db.NewUsageRepository(database).Totals(cmd.Context(), query)
		if err != nil {
			return err
		}

		fmt.Printf("Requests:      %d\n", totals.RequestCount)
		fmt.Printf("Input tokens:  %d\n", totals.InputTokens)
		fmt.Printf("Output tokens: %d\n", totals.OutputTokens)
		fmt.Printf("Total tokens:  %d\n", totals.TotalTokens)
		return nil
	},
}
