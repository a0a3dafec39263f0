// Package compliance checks generated text against a template variant's
// structural contract.
package compliance

import (
	"fmt"
	"strings"

	"github.com/papersumm/papersumm/internal/models"
	"github.com/papersumm/papersumm/internal/templates"
)

// DefaultCJKThreshold is the minimum fraction of CJK ideographs required
// in the content of a Chinese-output variant.
const DefaultCJKThreshold = 0.5

// SectionResult records how one required section fared.
type SectionResult struct {
	// Label is the required section label.
	Label string `json:"label"`

	// Present is true when the label was found at or after the previous
	// section's match, so presence implies ordering.
	Present bool `json:"present"`

	// Empty is true when the label was found but carries no content
	// before the next section or end of text.
	Empty bool `json:"empty"`

	// Sentences is the sentence count of the section body.
	Sentences int `json:"sentences"`
}

// Report is the outcome of validating one generated text.
// Identical (variant, text) inputs always produce identical reports.
type Report struct {
	// TemplateID names the variant the text was checked against.
	TemplateID string `json:"template_id"`

	// Verdict is the overall classification.
	Verdict models.Verdict `json:"verdict"`

	// Sections holds per-section results in contract order.
	Sections []SectionResult `json:"sections"`

	// LanguageOK is false when a Chinese-output variant's content falls
	// below the CJK threshold.
	LanguageOK bool `json:"language_ok"`

	// CJKFraction is the measured ideograph fraction of the content.
	CJKFraction float64 `json:"cjk_fraction"`

	// Violations lists every violated constraint in human-readable form.
	Violations []string `json:"violations,omitempty"`
}

// Validator checks text against variant contracts.
type Validator struct {
	cjkThreshold float64
}

// Option configures the Validator.
type Option func(*Validator)

// WithCJKThreshold overrides the minimum CJK fraction.
func WithCJKThreshold(threshold float64) Option {
	return func(v *Validator) {
		if threshold > 0 {
			v.cjkThreshold = threshold
		}
	}
}

// NewValidator creates a validator with the given options.
func NewValidator(opts ...Option) *Validator {
	v := &Validator{cjkThreshold: DefaultCJKThreshold}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks text against the variant's structural contract.
// It never fails: every outcome is expressed through the report.
func (v *Validator) Validate(variant *templates.Variant, text string) *Report {
	report := &Report{
		TemplateID: variant.ID,
		LanguageOK: true,
	}

	matches := locateSections(variant, text)
	bodies := sectionBodies(variant, text, matches)

	okCount := 0
	for i, section := range variant.Sections {
		result := SectionResult{Label: section.Label}

		if matches[i] < 0 {
			report.Violations = append(report.Violations,
				fmt.Sprintf("section missing or out of order: %s", section.Label))
			report.Sections = append(report.Sections, result)
			continue
		}
		result.Present = true

		body := bodies[i]
		if isBlankBody(body) {
			result.Empty = true
			report.Violations = append(report.Violations,
				fmt.Sprintf("section has no content: %s", section.Label))
			report.Sections = append(report.Sections, result)
			continue
		}

		result.Sentences = countSentences(body)
		if section.MinSentences > 0 && section.MaxSentences > 0 {
			if result.Sentences < section.MinSentences || result.Sentences > section.MaxSentences {
				// Length breaches are advisory: reported for the
				// corrective follow-up, not counted in the verdict.
				report.Violations = append(report.Violations,
					fmt.Sprintf("section %s expects %d-%d sentences, found %d",
						section.Label, section.MinSentences, section.MaxSentences, result.Sentences))
			}
		}

		okCount++
		report.Sections = append(report.Sections, result)
	}

	if variant.Language == templates.LanguageChinese {
		var content strings.Builder
		for i, body := range bodies {
			if matches[i] >= 0 && !isBlankBody(body) {
				content.WriteString(body)
			}
		}
		if content.Len() > 0 {
			report.CJKFraction = cjkFraction(content.String())
			if report.CJKFraction < v.cjkThreshold {
				report.LanguageOK = false
				report.Violations = append(report.Violations,
					fmt.Sprintf("content is not Chinese enough: %.0f%% CJK, need %.0f%%",
						report.CJKFraction*100, v.cjkThreshold*100))
			}
		}
	}

	report.Verdict = verdictFor(len(variant.Sections), okCount, report.LanguageOK)
	return report
}

func verdictFor(total, ok int, languageOK bool) models.Verdict {
	if total == 0 {
		return models.VerdictNonCompliant
	}
	if ok == total && languageOK {
		return models.VerdictCompliant
	}
	if float64(ok)/float64(total) >= 0.6 {
		return models.VerdictPartial
	}
	return models.VerdictNonCompliant
}

// locateSections finds each section label in order, case-insensitively.
// A label only counts when it appears at or after the previous match, so a
// reordered section reads as missing. Returns -1 for unmatched sections.
func locateSections(variant *templates.Variant, text string) []int {
	lower := strings.ToLower(text)
	matches := make([]int, len(variant.Sections))

	searchFrom := 0
	for i, section := range variant.Sections {
		label := strings.ToLower(section.Label)
		idx := strings.Index(lower[searchFrom:], label)
		if idx < 0 {
			matches[i] = -1
			continue
		}
		matches[i] = searchFrom + idx
		searchFrom = matches[i] + len(label)
	}

	return matches
}

// sectionBodies slices the text between each matched label and the next
// matched label (or end of text).
func sectionBodies(variant *templates.Variant, text string, matches []int) []string {
	bodies := make([]string, len(matches))
	for i, start := range matches {
		if start < 0 {
			continue
		}
		bodyStart := start + len(variant.Sections[i].Label)
		bodyEnd := len(text)
		for j := i + 1; j < len(matches); j++ {
			if matches[j] >= 0 {
				bodyEnd = matches[j]
				break
			}
		}
		bodies[i] = text[bodyStart:bodyEnd]
	}
	return bodies
}

// isBlankBody reports whether a section body has no real content once
// markdown decoration is stripped.
func isBlankBody(body string) bool {
	trimmed := strings.TrimFunc(body, func(r rune) bool {
		switch r {
		case '*', '#', ':', '：', '-', '|', '`':
			return true
		}
		return r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	return trimmed == ""
}
