package models

import "time"

// UsageRecord tracks token consumption for a single model invocation.
type UsageRecord struct {
	// ID is the unique identifier for the record.
	ID string `json:"id"`

	// SummaryID links the record to the summary run it belongs to.
	SummaryID string `json:"summary_id"`

	// Model is the model that served the request.
	Model string `json:"model"`

	// InputTokens is the prompt token count reported by the provider.
	InputTokens int64 `json:"input_tokens"`

	// OutputTokens is the completion token count reported by the provider.
	OutputTokens int64 `json:"output_tokens"`

	// TotalTokens is input plus output.
	TotalTokens int64 `json:"total_tokens"`

	// RecordedAt is when the record was written.
	RecordedAt time.Time `json:"recorded_at"`
}

// UsageQuery defines filters for querying usage records.
type UsageQuery struct {
	SummaryID *string    // Filter by summary run
	Model     *string    // Filter by model
	Since     *time.Time // Records at or after this time
	Limit     int        // Max results to return
}

// UsageTotals aggregates token consumption over a query window.
type UsageTotals struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
	TotalTokens  int64 `json:"total_tokens"`
	RequestCount int64 `json:"request_count"`
}
