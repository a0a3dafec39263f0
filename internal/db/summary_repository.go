package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/papersumm/papersumm/internal/models"
)

// Summary repository errors.
var (
	ErrSummaryNotFound = errors.New("summary not found")
	ErrInvalidSummary  = errors.New("invalid summary")
)

// SummaryRepository handles summary result persistence.
type SummaryRepository struct {
	db *DB
}

// NewSummaryRepository creates a new SummaryRepository.
func NewSummaryRepository(db *DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

// SummaryQuery defines filters for listing summary results.
type SummaryQuery struct {
	Verdict    *models.Verdict // Filter by verdict
	TemplateID *string         // Filter by template variant
	Since      *time.Time      // Results at or after this time
	Limit      int             // Max results to return
}

// Create inserts a new summary result.
func (r *SummaryRepository) Create(ctx context.Context, result *models.SummaryResult) error {
	if result.TemplateID == "" || result.Title == "" {
		return ErrInvalidSummary
	}

	if result.ID == "" {
		result.ID = uuid.New().String()
	}
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now().UTC()
	} else {
		result.CreatedAt = result.CreatedAt.UTC()
	}

	var violationsJSON *string
	if len(result.Violations) > 0 {
		data, err := json.Marshal(result.Violations)
		if err != nil {
			return fmt.Errorf("marshal violations: %w", err)
		}
		s := string(data)
		violationsJSON = &s
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO summaries (
			id, template_id, title, abstract, text, verdict, state,
			violations_json, attempts, model, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		result.ID,
		result.TemplateID,
		result.Title,
		result.Abstract,
		result.Text,
		string(result.Verdict),
		string(result.State),
		violationsJSON,
		result.Attempts,
		nullString(result.Model),
		result.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert summary: %w", err)
	}

	return nil
}

// Get retrieves a summary result by ID.
func (r *SummaryRepository) Get(ctx context.Context, id string) (*models.SummaryResult, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, template_id, title, abstract, text, verdict, state,
			violations_json, attempts, model, created_at
		FROM summaries WHERE id = ?
	`, id)

	result, err := scanSummary(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSummaryNotFound
		}
		return nil, err
	}
	return result, nil
}

// List retrieves summary results matching the given filters, newest first.
func (r *SummaryRepository) List(ctx context.Context, q SummaryQuery) ([]*models.SummaryResult, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT id, template_id, title, abstract, text, verdict, state,
		violations_json, attempts, model, created_at
		FROM summaries WHERE 1=1`
	args := []any{}

	if q.Verdict != nil {
		query += ` AND verdict = ?`
		args = append(args, string(*q.Verdict))
	}
	if q.TemplateID != nil {
		query += ` AND template_id = ?`
		args = append(args, *q.TemplateID)
	}
	if q.Since != nil {
		query += ` AND created_at >= ?`
		args = append(args, q.Since.UTC().Format(time.RFC3339))
	}

	query += ` ORDER BY created_at DESC, id LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query summaries: %w", err)
	}
	defer rows.Close()

	var results []*models.SummaryResult
	for rows.Next() {
		result, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summaries: %w", err)
	}

	return results, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSummary(row rowScanner) (*models.SummaryResult, error) {
	var result models.SummaryResult
	var verdict, state, createdAt string
	var violationsJSON, model sql.NullString

	err := row.Scan(
		&result.ID,
		&result.TemplateID,
		&result.Title,
		&result.Abstract,
		&result.Text,
		&verdict,
		&state,
		&violationsJSON,
		&result.Attempts,
		&model,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("scan summary: %w", err)
	}

	result.Verdict = models.Verdict(verdict)
	result.State = models.RunState(state)
	if model.Valid {
		result.Model = model.String
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		result.CreatedAt = t
	}
	if violationsJSON.Valid {
		if err := json.Unmarshal([]byte(violationsJSON.String), &result.Violations); err != nil {
			return nil, fmt.Errorf("parse violations: %w", err)
		}
	}

	return &result, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
