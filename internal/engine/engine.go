// Package engine drives prompt rendering, model invocation, and
// compliance-checked retries for summary requests.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/papersumm/papersumm/internal/compliance"
	"github.com/papersumm/papersumm/internal/llm"
	"github.com/papersumm/papersumm/internal/logging"
	"github.com/papersumm/papersumm/internal/models"
	"github.com/papersumm/papersumm/internal/prompt"
	"github.com/papersumm/papersumm/internal/templates"
)

// Engine errors.
var (
	ErrRetriesExhausted   = errors.New("compliance retries exhausted")
	ErrTransientExhausted = errors.New("transient retry budget exhausted")
)

// Config contains engine configuration.
type Config struct {
	// MaxComplianceRetries is how many corrective re-invocations are
	// allowed after a partial or non-compliant verdict.
	// Default: 2.
	MaxComplianceRetries int

	// MaxTransientRetries is how many times a transient invocation
	// failure is retried with the same prompt.
	// Default: 3.
	MaxTransientRetries int

	// BackoffBase is the first transient-retry delay; each further
	// retry doubles it.
	// Default: 500ms.
	BackoffBase time.Duration
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MaxComplianceRetries: 2,
		MaxTransientRetries:  3,
		BackoffBase:          500 * time.Millisecond,
	}
}

// Result is the terminal outcome of one summary run.
type Result struct {
	// State is RunStateComplete or RunStateFailed.
	State models.RunState

	// Text is the last model output, compliant or not. Empty when no
	// invocation succeeded.
	Text string

	// Report is the compliance report for Text, nil when no invocation
	// succeeded.
	Report *compliance.Report

	// Attempts counts every model invocation made, including transient
	// retries.
	Attempts int

	// Model is the model that produced the final text.
	Model string

	// Usage aggregates token consumption across all invocations.
	Usage llm.Usage

	// Prompt is the last rendered prompt submitted.
	Prompt *prompt.Rendered
}

// Verdict returns the final compliance verdict, or non-compliant when no
// report was produced.
func (r *Result) Verdict() models.Verdict {
	if r.Report == nil {
		return models.VerdictNonCompliant
	}
	return r.Report.Verdict
}

// Engine runs summary requests against the template registry.
type Engine struct {
	config    Config
	registry  *templates.Registry
	validator *compliance.Validator
	logger    zerolog.Logger
}

// New creates a new Engine.
func New(config Config, registry *templates.Registry, validator *compliance.Validator) *Engine {
	defaults := DefaultConfig()
	if config.MaxComplianceRetries <= 0 {
		config.MaxComplianceRetries = defaults.MaxComplianceRetries
	}
	if config.MaxTransientRetries <= 0 {
		config.MaxTransientRetries = defaults.MaxTransientRetries
	}
	if config.BackoffBase <= 0 {
		config.BackoffBase = defaults.BackoffBase
	}
	if validator == nil {
		validator = compliance.NewValidator()
	}

	return &Engine{
		config:    config,
		registry:  registry,
		validator: validator,
		logger:    logging.Component("engine"),
	}
}

// Run renders the request against the named template variant, invokes the
// client, and validates the output, retrying with corrective follow-ups
// until the verdict is compliant or the retry budget runs out.
//
// The returned Result always carries the last output and report for
// diagnostics, even when err is non-nil.
func (e *Engine) Run(ctx context.Context, client llm.Client, templateID string, request models.SummaryRequest) (*Result, error) {
	result := &Result{State: models.RunStatePending}

	if err := request.Validate(); err != nil {
		result.State = models.RunStateFailed
		return result, err
	}

	variant, err := e.registry.Get(templateID)
	if err != nil {
		result.State = models.RunStateFailed
		return result, err
	}

	rendered, err := prompt.Render(variant, request)
	if err != nil {
		result.State = models.RunStateFailed
		return result, err
	}

	current := rendered
	for round := 0; ; round++ {
		result.State = models.RunStateInvoked
		result.Prompt = current

		gen, err := e.invoke(ctx, client, current.Text, result)
		if err != nil {
			result.State = models.RunStateFailed
			return result, err
		}

		result.Text = gen.Text
		result.Model = gen.Model

		report := e.validator.Validate(variant, gen.Text)
		result.Report = report

		if report.Verdict == models.VerdictCompliant {
			result.State = models.RunStateComplete
			e.logger.Info().
				Str("template", templateID).
				Int("attempts", result.Attempts).
				Msg("summary compliant")
			return result, nil
		}

		if round >= e.config.MaxComplianceRetries {
			result.State = models.RunStateFailed
			e.logger.Warn().
				Str("template", templateID).
				Str("verdict", string(report.Verdict)).
				Strs("violations", report.Violations).
				Int("attempts", result.Attempts).
				Msg("summary failed compliance")
			return result, fmt.Errorf("%w: verdict %s after %d attempts",
				ErrRetriesExhausted, report.Verdict, result.Attempts)
		}

		result.State = models.RunStateRetrying
		e.logger.Debug().
			Str("template", templateID).
			Str("verdict", string(report.Verdict)).
			Int("round", round+1).
			Msg("retrying with corrective follow-up")
		current = current.WithCorrections(report.Violations)
	}
}

// invoke calls the client, retrying the same prompt on transient failures
// with exponential backoff. Every actual invocation counts toward
// result.Attempts.
func (e *Engine) invoke(ctx context.Context, client llm.Client, text string, result *Result) (*llm.Generation, error) {
	var lastErr error
	for try := 0; try <= e.config.MaxTransientRetries; try++ {
		if try > 0 {
			delay := e.config.BackoffBase << (try - 1)
			if err := sleep(ctx, delay); err != nil {
				return nil, err
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result.Attempts++
		gen, err := client.Generate(ctx, text)
		if err == nil {
			result.Usage.InputTokens += gen.Usage.InputTokens
			result.Usage.OutputTokens += gen.Usage.OutputTokens
			return gen, nil
		}
		if !llm.IsTransient(err) {
			return nil, err
		}

		lastErr = err
		e.logger.Debug().Err(err).Int("try", try+1).Msg("transient invocation failure")
	}

	return nil, fmt.Errorf("%w: %v", ErrTransientExhausted, lastErr)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
