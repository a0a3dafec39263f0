package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// LoadBuiltinVariants returns the built-in variants bundled with papersumm.
func LoadBuiltinVariants() ([]*Variant, error) {
	entries, err := fs.ReadDir(builtinFS, "builtin")
	if err != nil {
		return nil, fmt.Errorf("read builtin variants: %w", err)
	}

	variants := make([]*Variant, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := "builtin/" + entry.Name()
		data, err := builtinFS.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read builtin variant %s: %w", entry.Name(), err)
		}
		variant, err := parseVariant(data)
		if err != nil {
			return nil, fmt.Errorf("parse builtin variant %s: %w", entry.Name(), err)
		}
		variant.Source = "builtin"
		variants = append(variants, variant)
	}

	sort.Slice(variants, func(i, j int) bool {
		return variants[i].ID < variants[j].ID
	})

	return variants, nil
}

// DefaultRegistry builds a registry containing the built-in variants.
func DefaultRegistry() (*Registry, error) {
	variants, err := LoadBuiltinVariants()
	if err != nil {
		return nil, err
	}

	registry := NewRegistry()
	for _, variant := range variants {
		if err := registry.Register(variant); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
