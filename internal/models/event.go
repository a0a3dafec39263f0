package models

import (
	"encoding/json"
	"strings"
	"time"
)

// EventType categorizes events in the system.
type EventType string

const (
	// Template events
	EventTypeTemplateRegistered EventType = "template.registered"
	EventTypeTemplateRejected   EventType = "template.rejected"

	// Summary events
	EventTypeSummaryStarted   EventType = "summary.started"
	EventTypeSummaryCompleted EventType = "summary.completed"
	EventTypeSummaryFailed    EventType = "summary.failed"

	// Retry events
	EventTypeRetryScheduled EventType = "retry.scheduled"
	EventTypeRetryExhausted EventType = "retry.exhausted"

	// Model events
	EventTypeModelFallback    EventType = "model.fallback"
	EventTypeRateLimitWaited  EventType = "rate_limit.waited"
	EventTypeTransientFailure EventType = "model.transient_failure"

	// Batch events
	EventTypeBatchStarted  EventType = "batch.started"
	EventTypeBatchFinished EventType = "batch.finished"

	// System events
	EventTypeError   EventType = "error"
	EventTypeWarning EventType = "warning"
)

// EntityType identifies the type of entity an event relates to.
type EntityType string

const (
	EntityTypeTemplate EntityType = "template"
	EntityTypeSummary  EntityType = "summary"
	EntityTypeBatch    EntityType = "batch"
	EntityTypeSystem   EntityType = "system"
)

// Event represents an append-only log entry.
type Event struct {
	// ID is the unique identifier for the event.
	ID string `json:"id"`

	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// Type categorizes the event.
	Type EventType `json:"type"`

	// EntityType identifies what kind of entity this event relates to.
	EntityType EntityType `json:"entity_type"`

	// EntityID is the ID of the related entity.
	EntityID string `json:"entity_id"`

	// Payload contains event-specific data.
	Payload json.RawMessage `json:"payload,omitempty"`

	// Metadata contains additional context.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Validate checks if the event is valid.
func (e *Event) Validate() error {
	validation := &ValidationErrors{}
	if strings.TrimSpace(string(e.Type)) == "" {
		validation.AddMessage("type", "event type is required")
	}
	if strings.TrimSpace(string(e.EntityType)) == "" {
		validation.AddMessage("entity_type", "entity_type is required")
	}
	if strings.TrimSpace(e.EntityID) == "" {
		validation.AddMessage("entity_id", "entity_id is required")
	}
	return validation.Err()
}

// SummaryCompletedPayload is the payload for summary.completed events.
type SummaryCompletedPayload struct {
	TemplateID string  `json:"template_id"`
	Verdict    Verdict `json:"verdict"`
	Attempts   int     `json:"attempts"`
	Model      string  `json:"model,omitempty"`
}

// SummaryFailedPayload is the payload for summary.failed events.
type SummaryFailedPayload struct {
	TemplateID string   `json:"template_id"`
	Verdict    Verdict  `json:"verdict,omitempty"`
	Violations []string `json:"violations,omitempty"`
	Error      string   `json:"error,omitempty"`
	Attempts   int      `json:"attempts"`
}

// RetryScheduledPayload is the payload for retry.scheduled events.
type RetryScheduledPayload struct {
	Attempt    int      `json:"attempt"`
	Verdict    Verdict  `json:"verdict"`
	Violations []string `json:"violations,omitempty"`
}

// ModelFallbackPayload is the payload for model.fallback events.
type ModelFallbackPayload struct {
	FromModel string `json:"from_model"`
	ToModel   string `json:"to_model"`
	Reason    string `json:"reason,omitempty"`
}

// BatchFinishedPayload is the payload for batch.finished events.
type BatchFinishedPayload struct {
	Date      string `json:"date"`
	Processed int    `json:"processed"`
	Compliant int    `json:"compliant"`
	Failed    int    `json:"failed"`
}

// ErrorPayload is the payload for error events.
type ErrorPayload struct {
	Error   string `json:"error"`
	Context string `json:"context,omitempty"`
}
