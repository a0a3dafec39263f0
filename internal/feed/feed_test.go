package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/papersumm/papersumm/internal/models"
)

const feedFixture = `[
  {"paper": {"id": "2408.01234", "title": "Scaling Laws Revisited", "summary": "We revisit scaling laws."}},
  {"paper": {"id": "2408.01234", "title": "Scaling Laws Revisited", "summary": "Duplicate entry."}},
  {"paper": {"id": "2408.05678", "title": "Efficient  Attention\n Mechanisms", "summary": "A study of attention."}},
  {"paper": {"id": "", "title": "Broken", "summary": "No id."}}
]`

func TestFetchDaily(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/daily_papers" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("date"); got != "2026-08-30" {
			t.Fatalf("unexpected date %q", got)
		}
		w.Write([]byte(feedFixture))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	papers, err := client.FetchDaily(context.Background(), "2026-08-30")
	if err != nil {
		t.Fatalf("FetchDaily: %v", err)
	}

	if len(papers) != 2 {
		t.Fatalf("expected 2 papers after dedupe and filtering, got %d", len(papers))
	}
	if papers[0].ArxivID != "2408.01234" {
		t.Fatalf("unexpected first paper %+v", papers[0])
	}
	if papers[0].ArxivLink != "https://arxiv.org/pdf/2408.01234" {
		t.Fatalf("unexpected arxiv link %q", papers[0].ArxivLink)
	}
	if papers[1].Title != "Efficient Attention Mechanisms" {
		t.Fatalf("whitespace not normalized: %q", papers[1].Title)
	}
}

func TestFetchDailyRejectsBadDate(t *testing.T) {
	client := NewClient()

	if _, err := client.FetchDaily(context.Background(), "08/30/2026"); err == nil {
		t.Fatalf("expected error for malformed date")
	}
}

func TestFetchDailyServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	if _, err := client.FetchDaily(context.Background(), "2026-08-30"); err == nil {
		t.Fatalf("expected error on 502 response")
	}
}

func TestSaveAndLoadPapers(t *testing.T) {
	dir := t.TempDir()
	path := PapersPath(dir, "2026-08-30")

	papers := []*models.Paper{
		{Title: "A", ArxivID: "1", ArxivLink: "https://arxiv.org/pdf/1", Abstract: "About A."},
		{Title: "B", ArxivID: "2", ArxivLink: "https://arxiv.org/pdf/2", Abstract: "About B."},
	}

	if err := SavePapers(path, papers); err != nil {
		t.Fatalf("SavePapers: %v", err)
	}

	loaded, err := LoadPapers(path)
	if err != nil {
		t.Fatalf("LoadPapers: %v", err)
	}
	if len(loaded) != 2 || loaded[0].Title != "A" || loaded[1].ArxivID != "2" {
		t.Fatalf("round trip mismatch: %+v", loaded)
	}
}

func TestPreviousDay(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	if got := PreviousDay(now); got != "2026-08-30" {
		t.Fatalf("PreviousDay = %q", got)
	}
}
