// Package llm abstracts the generative model boundary.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Usage reports the token consumption of one invocation.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

// Generation is the result of one model invocation.
type Generation struct {
	// Text is the raw model output.
	Text string

	// Model is the model that served the request.
	Model string

	// Usage is the provider-reported token usage, zero if unknown.
	Usage Usage
}

// Client is the model invocation boundary. Implementations must wrap
// failures with MarkTransient or MarkFatal so callers can decide whether
// to retry.
type Client interface {
	// Generate submits a prompt and returns the generated text.
	Generate(ctx context.Context, prompt string) (*Generation, error)

	// Model names the model the client targets.
	Model() string
}

// InvocationError classifies a model invocation failure.
type InvocationError struct {
	// Transient marks failures worth retrying (timeouts, rate limits,
	// server errors). Non-transient failures are fatal.
	Transient bool

	// Err is the underlying cause.
	Err error
}

func (e *InvocationError) Error() string {
	kind := "fatal"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("%s invocation failure: %v", kind, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// MarkTransient wraps err as a retryable invocation failure.
func MarkTransient(err error) error {
	if err == nil {
		return nil
	}
	return &InvocationError{Transient: true, Err: err}
}

// MarkFatal wraps err as a non-retryable invocation failure.
func MarkFatal(err error) error {
	if err == nil {
		return nil
	}
	return &InvocationError{Transient: false, Err: err}
}

// IsTransient reports whether err is a retryable invocation failure.
// Unclassified errors are treated as fatal.
func IsTransient(err error) bool {
	var invErr *InvocationError
	return errors.As(err, &invErr) && invErr.Transient
}
