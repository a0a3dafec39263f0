package archive

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/yuin/goldmark"
)

const htmlShell = `<!DOCTYPE html>
<html lang="zh">
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
%s</body>
</html>
`

// ExportHTML renders the day's archive file to a standalone HTML page
// next to it and returns the HTML path.
func (w *Writer) ExportHTML(date time.Time) (string, error) {
	mdPath := w.DayPath(date)
	md, err := os.ReadFile(mdPath)
	if err != nil {
		return "", fmt.Errorf("read archive %s: %w", mdPath, err)
	}

	var buf bytes.Buffer
	if err := goldmark.Convert(md, &buf); err != nil {
		return "", fmt.Errorf("render archive html: %w", err)
	}

	htmlPath := strings.TrimSuffix(mdPath, ".md") + ".html"
	title := "Papers for " + date.Format("2006-01-02")
	page := fmt.Sprintf(htmlShell, title, buf.String())

	if err := os.WriteFile(htmlPath, []byte(page), 0644); err != nil {
		return "", fmt.Errorf("write archive html %s: %w", htmlPath, err)
	}
	return htmlPath, nil
}
