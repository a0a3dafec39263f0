// Package archive writes daily summary digests to the markdown archive.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/papersumm/papersumm/internal/logging"
)

const readmeMarker = "## Papers for"

// defaultIntro heads the README; {DATE} carries the last-update badge date.
const defaultIntro = `# Daily AI Paper Digests

Structured Chinese summaries of the daily Hugging Face papers.

![Last Update](https://img.shields.io/badge/Last%20Update-{DATE}-blue)
`

// Entry is one summarized paper.
type Entry struct {
	// Title is the paper title.
	Title string

	// Link is the paper's canonical link.
	Link string

	// Summary is the generated summary text.
	Summary string
}

// Writer maintains the archive directory and README of a digest repo.
type Writer struct {
	rootDir string
	intro   string
	logger  zerolog.Logger
}

// Option configures the Writer.
type Option func(*Writer)

// WithIntro overrides the README intro template. It may contain a {DATE}
// token.
func WithIntro(intro string) Option {
	return func(w *Writer) {
		w.intro = intro
	}
}

// NewWriter creates a writer rooted at dir.
func NewWriter(rootDir string, opts ...Option) *Writer {
	w := &Writer{
		rootDir: rootDir,
		intro:   defaultIntro,
		logger:  logging.Component("archive"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// DayPath returns the archive file location for a date.
func (w *Writer) DayPath(date time.Time) string {
	return filepath.Join(w.rootDir, "archive",
		date.Format("2006"), date.Format("01"), date.Format("02")+".md")
}

// renderDay builds the markdown block for one day's entries.
// Summary line breaks are flattened so each paper stays a single block.
func renderDay(date time.Time, entries []Entry) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Papers for %s\n\n", date.Format("2006-01-02")))
	for _, entry := range entries {
		flat := strings.Join(strings.Fields(entry.Summary), " ")
		sb.WriteString(fmt.Sprintf("## [%s](%s)\n", entry.Title, entry.Link))
		sb.WriteString(fmt.Sprintf("summary:%s\n\n", flat))
	}
	return sb.String()
}

// WriteDay writes the day's digest into archive/<year>/<month>/<day>.md
// and returns the file path.
func (w *Writer) WriteDay(date time.Time, entries []Entry) (string, error) {
	path := w.DayPath(date)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("create archive dir: %w", err)
	}

	content := renderDay(date, entries)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("write archive %s: %w", path, err)
	}

	w.logger.Info().Str("path", path).Int("entries", len(entries)).Msg("archive written")
	return path, nil
}

// UpdateReadme prepends the day's digest to README.md, refreshing the
// intro header. Older digests already in the README are preserved.
func (w *Writer) UpdateReadme(date time.Time, entries []Entry) error {
	readmePath := filepath.Join(w.rootDir, "README.md")

	existing := ""
	if data, err := os.ReadFile(readmePath); err == nil {
		existing = string(data)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("read README: %w", err)
	}

	// Everything from the first day header onward survives.
	if idx := strings.Index(existing, readmeMarker); idx >= 0 {
		existing = existing[idx:]
	} else {
		existing = ""
	}

	badgeDate := strings.ReplaceAll(date.Format("2006-01-02"), "-", "--")
	intro := strings.ReplaceAll(w.intro, "{DATE}", badgeDate)

	day := renderDay(date, entries)
	// Day headers inside the README sit one level down.
	day = strings.Replace(day, "# Papers for", readmeMarker, 1)

	var sb strings.Builder
	sb.WriteString(intro)
	sb.WriteString("\n")
	sb.WriteString(day)
	if existing != "" {
		sb.WriteString("\n")
		sb.WriteString(existing)
	}

	if err := os.WriteFile(readmePath, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("write README: %w", err)
	}
	return nil
}
