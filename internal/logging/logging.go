// Package logging provides the shared zerolog setup for papersumm.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu   sync.RWMutex
	root = zerolog.New(consoleWriter(os.Stderr)).With().Timestamp().Logger()
)

func consoleWriter(w io.Writer) io.Writer {
	return zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
}

// Setup configures the global log level and output writer.
// An empty level leaves the default (info) in place.
func Setup(level string, w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	if w == nil {
		w = os.Stderr
	}

	parsed := zerolog.InfoLevel
	if strings.TrimSpace(level) != "" {
		if lvl, err := zerolog.ParseLevel(strings.ToLower(level)); err == nil {
			parsed = lvl
		}
	}

	root = zerolog.New(consoleWriter(w)).Level(parsed).With().Timestamp().Logger()
}

// Component returns a logger tagged with the given component name.
func Component(name string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root.With().Str("component", name).Logger()
}
