// Package templates provides prompt template variants and their registry.
package templates

import (
	"fmt"
	"strings"
)

// Language identifies the expected output language of a variant.
type Language string

const (
	// LanguageChinese requires the output body to be majority CJK text.
	LanguageChinese Language = "zh"

	// LanguageAny skips the language check.
	LanguageAny Language = "any"
)

// Section is one required labeled section of the output contract.
type Section struct {
	// Label is matched case-insensitively against the generated text.
	Label string `yaml:"label"`

	// MinSentences / MaxSentences bound the section length when both are
	// set. Zero values leave the section unrestricted.
	MinSentences int `yaml:"min_sentences,omitempty"`
	MaxSentences int `yaml:"max_sentences,omitempty"`
}

// Variant is a named prompt skeleton with placeholders and a structural
// output contract. Variants are immutable once registered.
type Variant struct {
	// ID uniquely identifies the variant.
	ID string `yaml:"id"`

	// Description is a human-readable summary.
	Description string `yaml:"description"`

	// Language is the expected output language.
	Language Language `yaml:"language"`

	// Placeholders are the field names that must appear in Text as
	// {name} tokens and be supplied at render time.
	Placeholders []string `yaml:"placeholders"`

	// Sections is the ordered list of required output sections.
	Sections []Section `yaml:"sections"`

	// Text is the raw prompt template.
	Text string `yaml:"text"`

	// Source records where the variant was loaded from ("builtin" or a
	// file path).
	Source string `yaml:"-"`
}

// PlaceholderToken returns the literal token for a placeholder name.
func PlaceholderToken(name string) string {
	return "{" + name + "}"
}

// Validate checks the variant's internal consistency.
// A failure here means the template configuration itself is defective.
func (v *Variant) Validate() error {
	if strings.TrimSpace(v.ID) == "" {
		return fmt.Errorf("%w: variant id is required", ErrTemplateIntegrity)
	}
	if strings.TrimSpace(v.Text) == "" {
		return fmt.Errorf("%w: variant %q has no template text", ErrTemplateIntegrity, v.ID)
	}
	if len(v.Sections) == 0 {
		return fmt.Errorf("%w: variant %q declares no sections", ErrTemplateIntegrity, v.ID)
	}
	if v.Language == "" {
		return fmt.Errorf("%w: variant %q has no language", ErrTemplateIntegrity, v.ID)
	}

	seen := make(map[string]struct{}, len(v.Sections))
	for _, section := range v.Sections {
		label := strings.ToLower(strings.TrimSpace(section.Label))
		if label == "" {
			return fmt.Errorf("%w: variant %q has an empty section label", ErrTemplateIntegrity, v.ID)
		}
		if _, dup := seen[label]; dup {
			return fmt.Errorf("%w: variant %q repeats section label %q", ErrTemplateIntegrity, v.ID, section.Label)
		}
		seen[label] = struct{}{}
		if section.MaxSentences > 0 && section.MinSentences > section.MaxSentences {
			return fmt.Errorf("%w: variant %q section %q has min_sentences > max_sentences",
				ErrTemplateIntegrity, v.ID, section.Label)
		}
	}

	for _, name := range v.Placeholders {
		if !strings.Contains(v.Text, PlaceholderToken(name)) {
			return fmt.Errorf("%w: variant %q text is missing placeholder %s",
				ErrTemplateIntegrity, v.ID, PlaceholderToken(name))
		}
	}

	return nil
}

// SectionLabels returns the ordered required section labels.
func (v *Variant) SectionLabels() []string {
	labels := make([]string, 0, len(v.Sections))
	for _, s := range v.Sections {
		labels = append(labels, s.Label)
	}
	return labels
}
