// Package prompt renders template variants into model-ready prompts.
package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/papersumm/papersumm/internal/models"
	"github.com/papersumm/papersumm/internal/templates"
)

// ErrMissingField indicates a request field required by the variant is
// empty or whitespace-only.
var ErrMissingField = errors.New("missing request field")

// Rendered is a fully substituted prompt ready for submission.
// Its text never contains unresolved placeholder tokens.
type Rendered struct {
	// TemplateID names the variant the prompt was rendered from.
	TemplateID string

	// Text is the substituted prompt text, including any corrective
	// follow-up appended for retries.
	Text string

	// Corrections accumulates the violation lists appended across
	// retries, oldest first.
	Corrections [][]string
}

// Render substitutes the request fields into the variant's template text.
// It returns ErrMissingField for empty title/abstract and
// templates.ErrTemplateIntegrity when the variant's raw text lacks a
// required placeholder token.
func Render(variant *templates.Variant, request models.SummaryRequest) (*Rendered, error) {
	if variant == nil {
		return nil, fmt.Errorf("%w: nil variant", templates.ErrTemplateIntegrity)
	}

	fields := map[string]string{
		"title":    strings.TrimSpace(request.Title),
		"abstract": strings.TrimSpace(request.Abstract),
	}

	text := variant.Text
	for _, name := range variant.Placeholders {
		value, known := fields[name]
		if !known {
			return nil, fmt.Errorf("%w: variant %q uses unsupported placeholder %s",
				templates.ErrTemplateIntegrity, variant.ID, templates.PlaceholderToken(name))
		}
		if value == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, name)
		}

		token := templates.PlaceholderToken(name)
		if !strings.Contains(text, token) {
			return nil, fmt.Errorf("%w: variant %q text is missing placeholder %s",
				templates.ErrTemplateIntegrity, variant.ID, token)
		}
		text = strings.ReplaceAll(text, token, value)
	}

	return &Rendered{TemplateID: variant.ID, Text: text}, nil
}
