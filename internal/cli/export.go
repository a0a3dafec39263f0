package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/papersumm/papersumm/internal/archive"
)

var exportDate string

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportDate, "date", "", "archive date YYYY-MM-DD (required)")
	exportCmd.MarkFlagRequired("date")
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a day's archive page as HTML",
	Example: `  papersumm export --date 2025-03-14`,
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := time.Parse("2006-01-02", exportDate)
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", exportDate, err)
		}

		writer := archive.NewWriter(cfg.ArchiveDir)
		path, err := writer.ExportHTML(date)
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}
