package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/papersumm/papersumm/internal/archive"
	"github.com/papersumm/papersumm/internal/db"
	"github.com/papersumm/papersumm/internal/feed"
	"github.com/papersumm/papersumm/internal/models"
	"github.com/papersumm/papersumm/internal/pipeline"
)

var (
	runDate     string
	runTemplate string
	runCached   bool
	runDry      bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runDate, "date", "", "feed date YYYY-MM-DD (default: yesterday UTC)")
	runCmd.Flags().StringVar(&runTemplate, "template", "", "template variant (default: from config)")
	runCmd.Flags().BoolVar(&runCached, "cached", false, "reuse the saved paper list instead of fetching")
	runCmd.Flags().BoolVar(&runDry, "dry-run", false, "fetch and list papers without summarizing")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Summarize all papers for a feed date",
	Long: `Fetch the daily paper feed, summarize every paper through the
compliance engine, store the results, and update the markdown archive.`,
	Example: `  # Summarize yesterday's papers
  papersumm run

  # Summarize a specific date with the brief template
  papersumm run --date 2025-03-14 --template paper-brief`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		dateStr := runDate
		if dateStr == "" {
			dateStr = feed.PreviousDay(time.Now().UTC())
		}
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", dateStr, err)
		}

		papers, err := fetchPapers(ctx, dateStr)
		if err != nil {
			return err
		}
		if len(papers) == 0 {
			fmt.Printf("No papers found for %s\n", dateStr)
			return nil
		}

		if runDry {
			rows := make([][]string, 0, len(papers))
			for _, p := range papers {
				rows = append(rows, []string{p.ArxivID, truncate(p.Title, 70)})
			}
			return writeTable(os.Stdout, []string{"ARXIV", "TITLE"}, rows)
		}

		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		registry, err := buildRegistry()
		if err != nil {
			return err
		}
		clients, err := buildClients()
		if err != nil {
			return err
		}

		pipeConfig := pipeline.Config{
			TemplateID:    cfg.Pipeline.TemplateID,
			MaxConcurrent: cfg.Pipeline.MaxConcurrent,
			PaperTimeout:  cfg.Pipeline.PaperTimeout,
		}
		if runTemplate != "" {
			pipeConfig.TemplateID = runTemplate
		}

		runner, err := pipeline.New(pipeConfig, buildEngine(registry), clients,
			pipeline.WithStorage(
				db.NewSummaryRepository(database),
				db.NewUsageRepository(database),
				db.NewEventRepository(database),
			),
			pipeline.WithArchive(archive.NewWriter(cfg.ArchiveDir)),
		)
		if err != nil {
			return err
		}

		stats, err := runner.Run(ctx, date, papers)
		if err != nil {
			return err
		}

		fmt.Printf("Processed %d papers in %s: %d compliant, %d failed\n",
			stats.Processed, stats.Duration.Round(time.Second), stats.Compliant, stats.Failed)
		return nil
	},
}

// fetchPapers returns the paper list for a date, preferring the cached
// list when requested and saving fresh fetches for later reuse.
func fetchPapers(ctx context.Context, date string) ([]*models.Paper, error) {
	cachePath := feed.PapersPath(cfg.DataDir, date)

	if runCached {
		papers, err := feed.LoadPapers(cachePath)
		if err != nil {
			return nil, fmt.Errorf("load cached papers: %w", err)
		}
		return papers, nil
	}

	var opts []feed.Option
	if cfg.Feed.BaseURL != "" {
		opts = append(opts, feed.WithBaseURL(cfg.Feed.BaseURL))
	}
	papers, err := feed.NewClient(opts...).FetchDaily(ctx, date)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err == nil {
		if err := feed.SavePapers(cachePath, papers); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not cache paper list: %v\n", err)
		}
	}
	return papers, nil
}
