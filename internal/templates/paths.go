package templates

import (
	"os"
	"path/filepath"
)

// VariantSearchPaths returns variant search directories in precedence order.
func VariantSearchPaths(projectDir string) []string {
	paths := make([]string, 0, 3)
	if projectDir != "" {
		paths = append(paths, filepath.Join(projectDir, ".papersumm", "templates"))
	}

	if home, err := os.UserHomeDir(); err == nil && home != "" {
		paths = append(paths, filepath.Join(home, ".config", "papersumm", "templates"))
	}

	paths = append(paths, filepath.Join(string(filepath.Separator), "usr", "share", "papersumm", "templates"))
	return paths
}

// LoadRegistryFromSearchPaths builds a registry from search paths with
// first-hit precedence, falling back to the built-in variants.
func LoadRegistryFromSearchPaths(projectDir string) (*Registry, error) {
	paths := VariantSearchPaths(projectDir)
	registry := NewRegistry()
	seen := make(map[string]struct{})

	for _, path := range paths {
		variants, err := LoadVariantsFromDir(path)
		if err != nil {
			return nil, err
		}
		for _, variant := range variants {
			if _, exists := seen[variant.ID]; exists {
				continue
			}
			if err := registry.Register(variant); err != nil {
				return nil, err
			}
			seen[variant.ID] = struct{}{}
		}
	}

	builtins, err := LoadBuiltinVariants()
	if err != nil {
		return nil, err
	}
	for _, variant := range builtins {
		if _, exists := seen[variant.ID]; exists {
			continue
		}
		if err := registry.Register(variant); err != nil {
			return nil, err
		}
		seen[variant.ID] = struct{}{}
	}

	return registry, nil
}
