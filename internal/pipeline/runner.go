// Package pipeline runs the daily summarization batch.
package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/papersumm/papersumm/internal/archive"
	"github.com/papersumm/papersumm/internal/db"
	"github.com/papersumm/papersumm/internal/engine"
	"github.com/papersumm/papersumm/internal/events"
	"github.com/papersumm/papersumm/internal/llm"
	"github.com/papersumm/papersumm/internal/logging"
	"github.com/papersumm/papersumm/internal/models"
)

// ErrNoClients indicates the runner was built without any model client.
var ErrNoClients = errors.New("at least one model client is required")

// Config contains pipeline configuration.
type Config struct {
	// TemplateID selects the template variant for the batch.
	// Default: "paper-digest".
	TemplateID string

	// MaxConcurrent limits how many papers are processed at once.
	// Default: 4.
	MaxConcurrent int

	// PaperTimeout bounds the processing of a single paper, retries
	// included. Default: 5 minutes.
	PaperTimeout time.Duration
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		TemplateID:    "paper-digest",
		MaxConcurrent: 4,
		PaperTimeout:  5 * time.Minute,
	}
}

// Stats summarizes a batch run.
type Stats struct {
	// Processed is the number of papers attempted.
	Processed int

	// Compliant is the number of papers that produced a compliant
	// summary.
	Compliant int

	// Failed is the number of papers whose run ended in failure.
	Failed int

	// Duration is the wall time of the batch.
	Duration time.Duration
}

// Runner processes paper batches through the engine.
type Runner struct {
	config  Config
	engine  *engine.Engine
	clients []llm.Client

	summaries *db.SummaryRepository
	usage     *db.UsageRepository
	eventLog  events.Repository
	archiver  *archive.Writer

	logger zerolog.Logger
}

// Option configures the Runner.
type Option func(*Runner)

// WithStorage enables result, usage, and event persistence.
func WithStorage(summaries *db.SummaryRepository, usage *db.UsageRepository, eventLog events.Repository) Option {
	return func(r *Runner) {
		r.summaries = summaries
		r.usage = usage
		r.eventLog = eventLog
	}
}

// WithArchive enables markdown archive and README updates.
func WithArchive(archiver *archive.Writer) Option {
	return func(r *Runner) {
		r.archiver = archiver
	}
}

// New creates a Runner. Clients are tried in order: the first is the
// primary model, the rest are fallbacks.
func New(config Config, eng *engine.Engine, clients []llm.Client, opts ...Option) (*Runner, error) {
	if len(clients) == 0 {
		return nil, ErrNoClients
	}

	defaults := DefaultConfig()
	if config.TemplateID == "" {
		config.TemplateID = defaults.TemplateID
	}
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = defaults.MaxConcurrent
	}
	if config.PaperTimeout <= 0 {
		config.PaperTimeout = defaults.PaperTimeout
	}

	r := &Runner{
		config:  config,
		engine:  eng,
		clients: clients,
		logger:  logging.Component("pipeline"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run processes all papers for the given date. A failing paper never
// aborts the batch; its failure is recorded and the batch moves on.
func (r *Runner) Run(ctx context.Context, date time.Time, papers []*models.Paper) (*Stats, error) {
	started := time.Now()
	batchID := uuid.New().String()

	r.logger.Info().
		Str("batch", batchID).
		Str("date", date.Format("2006-01-02")).
		Int("papers", len(papers)).
		Int("max_concurrent", r.config.MaxConcurrent).
		Msg("batch starting")

	outcomes := make([]*models.SummaryResult, len(papers))
	sem := make(chan struct{}, r.config.MaxConcurrent)
	var wg sync.WaitGroup

	for i, paper := range papers {
		wg.Add(1)
		go func(i int, paper *models.Paper) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			outcomes[i] = r.processPaper(ctx, paper)
		}(i, paper)
	}
	wg.Wait()

	stats := &Stats{Duration: time.Since(started)}
	entries := make([]archive.Entry, 0, len(papers))
	for i, outcome := range outcomes {
		if outcome == nil {
			continue
		}
		stats.Processed++
		if outcome.State == models.RunStateComplete {
			stats.Compliant++
			entries = append(entries, archive.Entry{
				Title:   papers[i].Title,
				Link:    papers[i].ArxivLink,
				Summary: outcome.Text,
			})
		} else {
			stats.Failed++
		}
	}

	if r.archiver != nil && len(entries) > 0 {
		if _, err := r.archiver.WriteDay(date, entries); err != nil {
			return stats, err
		}
		if err := r.archiver.UpdateReadme(date, entries); err != nil {
			return stats, err
		}
	}

	if r.eventLog != nil {
		payload := models.BatchFinishedPayload{
			Date:      date.Format("2006-01-02"),
			Processed: stats.Processed,
			Compliant: stats.Compliant,
			Failed:    stats.Failed,
		}
		if err := events.LogBatchFinished(ctx, r.eventLog, batchID, payload); err != nil {
			r.logger.Warn().Err(err).Msg("failed to record batch event")
		}
	}

	r.logger.Info().
		Str("batch", batchID).
		Int("processed", stats.Processed).
		Int("compliant", stats.Compliant).
		Int("failed", stats.Failed).
		Dur("duration", stats.Duration).
		Msg("batch finished")

	return stats, ctx.Err()
}

// processPaper runs one paper through the engine, falling back to the
// next client when the current one fails terminally.
func (r *Runner) processPaper(ctx context.Context, paper *models.Paper) *models.SummaryResult {
	ctx, cancel := context.WithTimeout(ctx, r.config.PaperTimeout)
	defer cancel()

	request := paper.Request()
	summaryID := uuid.New().String()

	var result *engine.Result
	var runErr error
	for i, client := range r.clients {
		result, runErr = r.engine.Run(ctx, client, r.config.TemplateID, request)
		if runErr == nil {
			break
		}
		if ctx.Err() != nil {
			break
		}
		if i < len(r.clients)-1 {
			next := r.clients[i+1]
			r.logger.Warn().
				Err(runErr).
				Str("paper", paper.ArxivID).
				Str("from_model", client.Model()).
				Str("to_model", next.Model()).
				Msg("falling back to next model")
			if r.eventLog != nil {
				payload := models.ModelFallbackPayload{
					FromModel: client.Model(),
					ToModel:   next.Model(),
					Reason:    runErr.Error(),
				}
				if err := events.LogModelFallback(ctx, r.eventLog, summaryID, payload); err != nil {
					r.logger.Warn().Err(err).Str("paper", paper.ArxivID).Msg("failed to record fallback event")
				}
			}
		}
	}

	record := r.toRecord(summaryID, paper, result)
	r.persist(ctx, paper, record, result, runErr)

	if runErr != nil {
		r.logger.Error().
			Err(runErr).
			Str("paper", paper.ArxivID).
			Msg("paper failed")
	}
	return record
}

func (r *Runner) toRecord(id string, paper *models.Paper, result *engine.Result) *models.SummaryResult {
	record := &models.SummaryResult{
		ID:         id,
		TemplateID: r.config.TemplateID,
		Title:      paper.Title,
		Abstract:   paper.Abstract,
		State:      models.RunStateFailed,
		Verdict:    models.VerdictNonCompliant,
	}
	if result == nil {
		return record
	}

	record.State = result.State
	record.Verdict = result.Verdict()
	record.Text = result.Text
	record.Attempts = result.Attempts
	record.Model = result.Model
	if result.Report != nil {
		record.Violations = result.Report.Violations
	}
	return record
}

func (r *Runner) persist(ctx context.Context, paper *models.Paper, record *models.SummaryResult, result *engine.Result, runErr error) {
	if r.summaries != nil {
		if err := r.summaries.Create(ctx, record); err != nil {
			r.logger.Warn().Err(err).Str("paper", paper.ArxivID).Msg("failed to store summary")
		}
	}

	if r.usage != nil && result != nil && result.Usage.InputTokens+result.Usage.OutputTokens > 0 {
		usageRecord := &models.UsageRecord{
			SummaryID:    record.ID,
			Model:        record.Model,
			InputTokens:  result.Usage.InputTokens,
			OutputTokens: result.Usage.OutputTokens,
		}
		if usageRecord.Model == "" {
			usageRecord.Model = r.clients[0].Model()
		}
		if err := r.usage.Create(ctx, usageRecord); err != nil {
			r.logger.Warn().Err(err).Str("paper", paper.ArxivID).Msg("failed to store usage")
		}
	}

	if r.eventLog == nil {
		return
	}

	var err error
	if record.State == models.RunStateComplete {
		err = events.LogSummaryCompleted(ctx, r.eventLog, record.ID, models.SummaryCompletedPayload{
			TemplateID: record.TemplateID,
			Verdict:    record.Verdict,
			Attempts:   record.Attempts,
			Model:      record.Model,
		})
	} else {
		payload := models.SummaryFailedPayload{
			TemplateID: record.TemplateID,
			Verdict:    record.Verdict,
			Violations: record.Violations,
			Attempts:   record.Attempts,
		}
		if runErr != nil {
			payload.Error = runErr.Error()
		}
		err = events.LogSummaryFailed(ctx, r.eventLog, record.ID, payload)
	}
	if err != nil {
		r.logger.Warn().Err(err).Str("paper", paper.ArxivID).Msg("failed to record summary event")
	}
}
