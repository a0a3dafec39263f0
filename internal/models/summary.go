// Package models contains the shared domain types for papersumm.
package models

import (
	"strings"
	"time"
)

// SummaryRequest is a single paper to summarize.
type SummaryRequest struct {
	// Title is the paper title.
	Title string `json:"title"`

	// Abstract is the paper abstract.
	Abstract string `json:"abstract"`
}

// Validate checks that both fields carry non-whitespace content.
func (r *SummaryRequest) Validate() error {
	validation := &ValidationErrors{}
	if strings.TrimSpace(r.Title) == "" {
		validation.AddMessage("title", "title is required")
	}
	if strings.TrimSpace(r.Abstract) == "" {
		validation.AddMessage("abstract", "abstract is required")
	}
	return validation.Err()
}

// Verdict classifies generated text against a template's structural contract.
type Verdict string

const (
	VerdictCompliant    Verdict = "compliant"
	VerdictPartial      Verdict = "partial"
	VerdictNonCompliant Verdict = "non_compliant"
)

// RunState tracks a summary run through the retry controller.
type RunState string

const (
	RunStatePending  RunState = "pending"
	RunStateInvoked  RunState = "invoked"
	RunStateRetrying RunState = "retrying"
	RunStateComplete RunState = "complete"
	RunStateFailed   RunState = "failed"
)

// Terminal reports whether the state admits no further transitions.
func (s RunState) Terminal() bool {
	return s == RunStateComplete || s == RunStateFailed
}

// SummaryResult is the persisted outcome of one summary run.
type SummaryResult struct {
	// ID is the unique identifier for the result.
	ID string `json:"id"`

	// TemplateID names the template variant used.
	TemplateID string `json:"template_id"`

	// Title and Abstract echo the originating request.
	Title    string `json:"title"`
	Abstract string `json:"abstract"`

	// Text is the last model output, compliant or not.
	Text string `json:"text"`

	// Verdict is the final compliance verdict.
	Verdict Verdict `json:"verdict"`

	// State is the terminal run state.
	State RunState `json:"state"`

	// Violations lists the constraints the final text violated, if any.
	Violations []string `json:"violations,omitempty"`

	// Attempts is the number of model invocations made.
	Attempts int `json:"attempts"`

	// Model is the model that produced the final text.
	Model string `json:"model,omitempty"`

	// CreatedAt is when the result was recorded.
	CreatedAt time.Time `json:"created_at"`
}
