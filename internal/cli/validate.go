package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/papersumm/papersumm/internal/compliance"
	"github.com/papersumm/papersumm/internal/models"
)

var validateTemplate string

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVar(&validateTemplate, "template", "", "template variant (default: from config)")
}

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a summary text against a template's structure",
	Long: `Validate reads a summary from a file (or stdin when the file is "-")
and reports whether it complies with the template's required sections
and language.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var text []byte
		var err error
		if args[0] == "-" {
			text, err = io.ReadAll(cmd.InOrStdin())
		} else {
			text, err = os.ReadFile(args[0])
		}
		if err != nil {
			return err
		}

		registry, err := buildRegistry()
		if err != nil {
			return err
		}

		templateID := cfg.Pipeline.TemplateID
		if validateTemplate != "" {
			templateID = validateTemplate
		}
		variant, err := registry.Get(templateID)
		if err != nil {
			return err
		}

		validator := compliance.NewValidator(compliance.WithCJKThreshold(cfg.Compliance.CJKThreshold))
		report := validator.Validate(variant, string(text))

		fmt.Printf("Verdict: %s\n", report.Verdict)
		fmt.Printf("Language OK: %s (CJK fraction %.2f)\n", formatYesNo(report.LanguageOK), report.CJKFraction)

		rows := make([][]string, 0, len(report.Sections))
		for _, section := range report.Sections {
			rows = append(rows, []string{
				section.Label,
				formatYesNo(section.Present),
				formatYesNo(!section.Empty),
				fmt.Sprintf("%d", section.Sentences),
			})
		}
		if err := writeTable(os.Stdout, []string{"SECTION", "PRESENT", "NON-EMPTY", "SENTENCES"}, rows); err != nil {
			return err
		}

		if len(report.Violations) > 0 {
			fmt.Println("Violations:")
			for _, v := range report.Violations {
				fmt.Printf("  - %s\n", v)
			}
		}

		if report.Verdict == models.VerdictNonCompliant {
			return fmt.Errorf("summary is non-compliant")
		}
		return nil
	},
}
