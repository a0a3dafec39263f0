// Package events provides helper functions for recording papersumm events.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/papersumm/papersumm/internal/models"
)

// Repository is the minimal interface needed to write events.
type Repository interface {
	Create(ctx context.Context, event *models.Event) error
}

func record(ctx context.Context, repo Repository, eventType models.EventType, entityType models.EntityType, entityID string, payload any) error {
	if repo == nil {
		return fmt.Errorf("event repository is required")
	}
	if entityID == "" {
		return fmt.Errorf("entity id is required")
	}

	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s payload: %w", eventType, err)
		}
		raw = data
	}

	return repo.Create(ctx, &models.Event{
		Type:       eventType,
		EntityType: entityType,
		EntityID:   entityID,
		Payload:    raw,
	})
}

// LogSummaryCompleted records a compliant summary run.
func LogSummaryCompleted(ctx context.Context, repo Repository, summaryID string, payload models.SummaryCompletedPayload) error {
	return record(ctx, repo, models.EventTypeSummaryCompleted, models.EntityTypeSummary, summaryID, payload)
}

// LogSummaryFailed records a terminally failed summary run.
func LogSummaryFailed(ctx context.Context, repo Repository, summaryID string, payload models.SummaryFailedPayload) error {
	return record(ctx, repo, models.EventTypeSummaryFailed, models.EntityTypeSummary, summaryID, payload)
}

// LogModelFallback records a switch to the fallback model.
func LogModelFallback(ctx context.Context, repo Repository, summaryID string, payload models.ModelFallbackPayload) error {
	return record(ctx, repo, models.EventTypeModelFallback, models.EntityTypeSummary, summaryID, payload)
}

// LogBatchFinished records the end of a daily batch.
func LogBatchFinished(ctx context.Context, repo Repository, batchID string, payload models.BatchFinishedPayload) error {
	return record(ctx, repo, models.EventTypeBatchFinished, models.EntityTypeBatch, batchID, payload)
}
