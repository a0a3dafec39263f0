package llm

import (
	"context"
	"sync"
	"time"
)

// RateLimitConfig defines the sustainable model invocation rate.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustainable rate (tokens added per second).
	// Zero or negative disables rate limiting.
	RequestsPerSecond float64

	// BurstSize is the maximum number of requests allowed in a burst.
	BurstSize int
}

// tokenBucket implements the token bucket algorithm.
type tokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	lastUpdate time.Time
	ratePerSec float64
	maxTokens  float64
}

func newTokenBucket(cfg RateLimitConfig) *tokenBucket {
	burst := cfg.BurstSize
	if burst <= 0 {
		burst = 1
	}
	return &tokenBucket{
		tokens:     float64(burst),
		lastUpdate: time.Now(),
		ratePerSec: cfg.RequestsPerSecond,
		maxTokens:  float64(burst),
	}
}

// allow consumes a token if one is available. When it is not, it returns
// the wait until the next token accrues.
func (tb *tokenBucket) allow() (bool, time.Duration) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastUpdate).Seconds()
	tb.tokens += elapsed * tb.ratePerSec
	if tb.tokens > tb.maxTokens {
		tb.tokens = tb.maxTokens
	}
	tb.lastUpdate = now

	if tb.tokens >= 1.0 {
		tb.tokens--
		return true, 0
	}

	deficit := 1.0 - tb.tokens
	wait := time.Duration(deficit / tb.ratePerSec * float64(time.Second))
	return false, wait
}

// RateLimitedClient wraps a Client and gates Generate calls behind a
// token bucket. It replaces the fixed inter-request sleep the upstream
// provider would otherwise force on us.
type RateLimitedClient struct {
	client Client
	bucket *tokenBucket
}

// NewRateLimited wraps client with the given rate limit. A non-positive
// rate returns the client unchanged.
func NewRateLimited(client Client, cfg RateLimitConfig) Client {
	if cfg.RequestsPerSecond <= 0 {
		return client
	}
	return &RateLimitedClient{client: client, bucket: newTokenBucket(cfg)}
}

// Generate waits for a token, then delegates to the wrapped client.
func (c *RateLimitedClient) Generate(ctx context.Context, prompt string) (*Generation, error) {
	for {
		ok, wait := c.bucket.allow()
		if ok {
			break
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, MarkFatal(ctx.Err())
		case <-timer.C:
		}
	}

	return c.client.Generate(ctx, prompt)
}

// Model returns the wrapped client's model name.
func (c *RateLimitedClient) Model() string {
	return c.client.Model()
}
