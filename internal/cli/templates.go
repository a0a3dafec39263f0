package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(templatesCmd)
	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesShowCmd)
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Inspect template variants",
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered template variants",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := buildRegistry()
		if err != nil {
			return err
		}

		rows := [][]string{}
		for _, variant := range registry.List() {
			rows = append(rows, []string{
				variant.ID,
				string(variant.Language),
				fmt.Sprintf("%d", len(variant.Sections)),
				variant.Source,
				truncate(variant.Description, 60),
			})
		}
		return writeTable(os.Stdout, []string{"ID", "LANG", "SECTIONS", "SOURCE", "DESCRIPTION"}, rows)
	},
}

var templatesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a template variant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := buildRegistry()
		if err != nil {
			return err
		}
		variant, err := registry.Get(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("ID:          %s\n", variant.ID)
		fmt.Printf("Language:    %s\n", variant.Language)
		fmt.Printf("Source:      %s\n", variant.Source)
		if variant.Description != "" {
			fmt.Printf("Description: %s\n", variant.Description)
		}
		fmt.Println("Sections:")
		for i, section := range variant.Sections {
			bounds := ""
			if section.MinSentences > 0 || section.MaxSentences > 0 {
				bounds = fmt.Sprintf("  (%d-%d sentences)", section.MinSentences, section.MaxSentences)
			}
			fmt.Printf("  %d. %s%s\n", i+1, section.Label, bounds)
		}
		fmt.Println("\nPrompt text:")
		fmt.Println(variant.Text)
		return nil
	},
}
