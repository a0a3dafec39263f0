// Package feed retrieves the daily paper list from Hugging Face.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/papersumm/papersumm/internal/logging"
	"github.com/papersumm/papersumm/internal/models"
)

// DefaultBaseURL is the Hugging Face API endpoint.
const DefaultBaseURL = "https://huggingface.co"

// Client fetches the daily papers feed.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     zerolog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL overrides the feed endpoint, mainly for tests.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(base, "/")
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a feed client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    DefaultBaseURL,
		logger:     logging.Component("feed"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// feedEntry mirrors the daily_papers API response shape.
type feedEntry struct {
	Paper struct {
		ID      string `json:"id"`
		Title   string `json:"title"`
		Summary string `json:"summary"`
	} `json:"paper"`
}

// FetchDaily returns the papers listed for the given date (YYYY-MM-DD).
// Entries with a duplicate arXiv id or missing title/abstract are skipped.
func (c *Client) FetchDaily(ctx context.Context, date string) ([]*models.Paper, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	endpoint := fmt.Sprintf("%s/api/daily_papers?date=%s", c.baseURL, url.QueryEscape(date))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch daily papers: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch daily papers: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var entries []feedEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode daily papers: %w", err)
	}

	seen := make(map[string]struct{}, len(entries))
	papers := make([]*models.Paper, 0, len(entries))
	for _, entry := range entries {
		id := strings.TrimSpace(entry.Paper.ID)
		title := cleanWhitespace(entry.Paper.Title)
		abstract := cleanWhitespace(entry.Paper.Summary)

		if id == "" || title == "" || abstract == "" {
			c.logger.Warn().Str("arxiv_id", id).Msg("skipping incomplete feed entry")
			continue
		}
		if _, dup := seen[id]; dup {
			c.logger.Debug().Str("arxiv_id", id).Msg("skipping duplicate feed entry")
			continue
		}
		seen[id] = struct{}{}

		papers = append(papers, &models.Paper{
			Title:     title,
			ArxivID:   id,
			ArxivLink: fmt.Sprintf("https://arxiv.org/pdf/%s", id),
			FeedLink:  fmt.Sprintf("%s/papers/%s", DefaultBaseURL, id),
			Abstract:  abstract,
		})
	}

	c.logger.Info().Str("date", date).Int("papers", len(papers)).Msg("fetched daily papers")
	return papers, nil
}

// PreviousDay returns the date one day before now, formatted YYYY-MM-DD.
func PreviousDay(now time.Time) string {
	return now.AddDate(0, 0, -1).Format("2006-01-02")
}

func cleanWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
