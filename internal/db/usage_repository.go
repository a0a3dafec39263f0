package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/papersumm/papersumm/internal/models"
)

// Usage repository errors.
var ErrInvalidUsageRecord = errors.New("invalid usage record")

// UsageRepository handles usage record persistence.
type UsageRepository struct {
	db *DB
}

// NewUsageRepository creates a new UsageRepository.
func NewUsageRepository(db *DB) *UsageRepository {
	return &UsageRepository{db: db}
}

// Create inserts a new usage record.
func (r *UsageRepository) Create(ctx context.Context, record *models.UsageRecord) error {
	if record.SummaryID == "" || record.Model == "" {
		return ErrInvalidUsageRecord
	}

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.RecordedAt.IsZero() {
		record.RecordedAt = time.Now().UTC()
	}
	if record.TotalTokens == 0 {
		record.TotalTokens = record.InputTokens + record.OutputTokens
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO usage_records (
			id, summary_id, model, input_tokens, output_tokens, total_tokens, recorded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		record.ID,
		record.SummaryID,
		record.Model,
		record.InputTokens,
		record.OutputTokens,
		record.TotalTokens,
		record.RecordedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert usage record: %w", err)
	}

	return nil
}

// Totals aggregates token usage over the matching records.
func (r *UsageRepository) Totals(ctx context.Context, q models.UsageQuery) (*models.UsageTotals, error) {
	query := `SELECT
		COALESCE(SUM(input_tokens), 0),
		COALESCE(SUM(output_tokens), 0),
		COALESCE(SUM(total_tokens), 0),
		COUNT(*)
		FROM usage_records WHERE 1=1`
	args := []any{}

	if q.SummaryID != nil {
		query += ` AND summary_id = ?`
		args = append(args, *q.SummaryID)
	}
	if q.Model != nil {
		query += ` AND model = ?`
		args = append(args, *q.Model)
	}
	if q.Since != nil {
		query += ` AND recorded_at >= ?`
		args = append(args, q.Since.UTC().Format(time.RFC3339))
	}

	var totals models.UsageTotals
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&totals.InputTokens,
		&totals.OutputTokens,
		&totals.TotalTokens,
		&totals.RequestCount,
	)
	if err != nil {
		return nil, fmt.Errorf("aggregate usage: %w", err)
	}

	return &totals, nil
}
