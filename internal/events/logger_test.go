package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/papersumm/papersumm/internal/models"
)

type captureRepo struct {
	events []*models.Event
}

func (r *captureRepo) Create(_ context.Context, event *models.Event) error {
	r.events = append(r.events, event)
	return nil
}

func TestLogSummaryCompleted(t *testing.T) {
	repo := &captureRepo{}

	err := LogSummaryCompleted(context.Background(), repo, "sum-1", models.SummaryCompletedPayload{
		TemplateID: "paper-digest",
		Verdict:    models.VerdictCompliant,
		Attempts:   2,
	})
	if err != nil {
		t.Fatalf("LogSummaryCompleted: %v", err)
	}

	if len(repo.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(repo.events))
	}
	event := repo.events[0]
	if event.Type != models.EventTypeSummaryCompleted {
		t.Fatalf("unexpected type %q", event.Type)
	}
	if event.EntityID != "sum-1" {
		t.Fatalf("unexpected entity id %q", event.EntityID)
	}

	var payload models.SummaryCompletedPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Attempts != 2 || payload.Verdict != models.VerdictCompliant {
		t.Fatalf("payload mismatch: %+v", payload)
	}
}

func TestLogRequiresRepository(t *testing.T) {
	err := LogSummaryFailed(context.Background(), nil, "sum-1", models.SummaryFailedPayload{})
	if err == nil {
		t.Fatalf("expected error for nil repository")
	}
}

func TestLogRequiresEntityID(t *testing.T) {
	repo := &captureRepo{}
	err := LogBatchFinished(context.Background(), repo, "", models.BatchFinishedPayload{})
	if err == nil {
		t.Fatalf("expected error for empty entity id")
	}
}
