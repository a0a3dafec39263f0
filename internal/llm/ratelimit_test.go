package llm

import (
	"context"
	"testing"
	"time"
)

func TestTokenBucketBurstThenDeny(t *testing.T) {
	bucket := newTokenBucket(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 2})

	for i := 0; i < 2; i++ {
		ok, _ := bucket.allow()
		if !ok {
			t.Fatalf("burst request %d denied", i+1)
		}
	}

	ok, wait := bucket.allow()
	if ok {
		t.Fatalf("request beyond burst should be denied")
	}
	if wait <= 0 || wait > time.Second {
		t.Fatalf("unexpected wait %v", wait)
	}
}

func TestNewRateLimitedDisabled(t *testing.T) {
	inner := &ScriptedClient{Steps: []Step{{Text: "ok"}}}

	client := NewRateLimited(inner, RateLimitConfig{})
	if client != Client(inner) {
		t.Fatalf("zero rate should return the client unchanged")
	}
}

func TestRateLimitedClientDelegates(t *testing.T) {
	inner := &ScriptedClient{ModelName: "m1", Steps: []Step{{Text: "生成结果"}}}
	client := NewRateLimited(inner, RateLimitConfig{RequestsPerSecond: 100, BurstSize: 5})

	gen, err := client.Generate(context.Background(), "提示词")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if gen.Text != "生成结果" {
		t.Fatalf("unexpected text %q", gen.Text)
	}
	if client.Model() != "m1" {
		t.Fatalf("unexpected model %q", client.Model())
	}
	if inner.Calls() != 1 {
		t.Fatalf("expected 1 delegated call, got %d", inner.Calls())
	}
}

func TestRateLimitedClientHonorsCancellation(t *testing.T) {
	inner := &ScriptedClient{Steps: []Step{{Text: "ok"}}}
	client := NewRateLimited(inner, RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 1})

	// Drain the single burst token.
	if _, err := client.Generate(context.Background(), "first"); err != nil {
		t.Fatalf("first Generate: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Generate(ctx, "second")
	if err == nil {
		t.Fatalf("expected cancellation error")
	}
	if IsTransient(err) {
		t.Fatalf("cancellation should not read as transient")
	}
	if inner.Calls() != 1 {
		t.Fatalf("cancelled call must not reach the model, calls=%d", inner.Calls())
	}
}

func TestInvocationErrorClassification(t *testing.T) {
	transient := MarkTransient(context.DeadlineExceeded)
	fatal := MarkFatal(context.Canceled)

	if !IsTransient(transient) {
		t.Fatalf("expected transient classification")
	}
	if IsTransient(fatal) {
		t.Fatalf("fatal error misread as transient")
	}
	if IsTransient(nil) {
		t.Fatalf("nil error misread as transient")
	}
}
