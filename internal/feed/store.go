package feed

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/papersumm/papersumm/internal/models"
)

// PapersPath returns the conventional location of a saved paper list.
func PapersPath(dataDir, date string) string {
	return filepath.Join(dataDir, fmt.Sprintf("%s_papers.json", date))
}

// SavePapers writes the paper list as indented JSON, creating the parent
// directory if needed.
func SavePapers(path string, papers []*models.Paper) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	data, err := json.MarshalIndent(papers, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal papers: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write papers %s: %w", path, err)
	}
	return nil
}

// LoadPapers reads a previously saved paper list.
func LoadPapers(path string) ([]*models.Paper, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read papers %s: %w", path, err)
	}

	var papers []*models.Paper
	if err := json.Unmarshal(data, &papers); err != nil {
		return nil, fmt.Errorf("parse papers %s: %w", path, err)
	}
	return papers, nil
}
