package templates

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// VariantSeparator is the sentinel line that splits concatenated prompt
// texts in a legacy bundle file.
const VariantSeparator = "===== TEMPLATE VARIANT ====="

func parseVariant(data []byte) (*Variant, error) {
	var variant Variant
	if err := yaml.Unmarshal(data, &variant); err != nil {
		return nil, fmt.Errorf("unmarshal variant: %w", err)
	}
	if variant.Language == "" {
		variant.Language = LanguageAny
	}
	return &variant, nil
}

// LoadVariant reads a single variant from a YAML file.
func LoadVariant(path string) (*Variant, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("variant path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read variant %s: %w", path, err)
	}

	variant, err := parseVariant(data)
	if err != nil {
		return nil, fmt.Errorf("parse variant %s: %w", path, err)
	}
	variant.Source = path
	return variant, nil
}

// LoadVariantsFromDir loads all variant YAML files from a directory.
// A missing directory yields an empty slice.
func LoadVariantsFromDir(dir string) ([]*Variant, error) {
	if strings.TrimSpace(dir) == "" {
		return []*Variant{}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []*Variant{}, nil
		}
		return nil, fmt.Errorf("read variants dir %s: %w", dir, err)
	}

	variants := make([]*Variant, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		variant, err := LoadVariant(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		variants = append(variants, variant)
	}

	return variants, nil
}

// SplitTextBundle splits a concatenated prompt bundle on the separator
// sentinel and assigns the resulting texts to the given variants in
// declaration order. The chunk count must match the variant count exactly.
func SplitTextBundle(data []byte, variants []*Variant) error {
	chunks := splitOnSentinel(string(data))
	if len(chunks) != len(variants) {
		return fmt.Errorf("%w: bundle has %d sections, expected %d",
			ErrTemplateIntegrity, len(chunks), len(variants))
	}

	for i, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			return fmt.Errorf("%w: bundle section %d is empty", ErrTemplateIntegrity, i+1)
		}
		variants[i].Text = strings.TrimSpace(chunk) + "\n"
	}

	return nil
}

// LoadTextBundle reads a bundle file and fills the texts of the given
// variants.
func LoadTextBundle(path string, variants []*Variant) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read bundle %s: %w", path, err)
	}
	if err := SplitTextBundle(data, variants); err != nil {
		return fmt.Errorf("bundle %s: %w", path, err)
	}
	for _, variant := range variants {
		variant.Source = path
	}
	return nil
}

func splitOnSentinel(text string) []string {
	lines := strings.Split(text, "\n")
	chunks := make([]string, 0, 2)
	var current []string
	for _, line := range lines {
		if strings.TrimSpace(line) == VariantSeparator {
			chunks = append(chunks, strings.Join(current, "\n"))
			current = current[:0]
			continue
		}
		current = append(current, line)
	}
	chunks = append(chunks, strings.Join(current, "\n"))
	return chunks
}
