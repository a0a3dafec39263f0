package llm

import (
	"context"
	"sync"
)

// Step is one scripted invocation outcome.
type Step struct {
	Text string
	Err  error
}

// ScriptedClient is a Client test double that replays a fixed script.
// Calls past the end of the script repeat the final step.
type ScriptedClient struct {
	ModelName string
	Steps     []Step

	mu      sync.Mutex
	prompts []string
}

// Generate returns the next scripted step.
func (c *ScriptedClient) Generate(ctx context.Context, prompt string) (*Generation, error) {
	if err := ctx.Err(); err != nil {
		return nil, MarkFatal(err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	idx := len(c.prompts)
	c.prompts = append(c.prompts, prompt)

	if len(c.Steps) == 0 {
		return &Generation{Model: c.Model()}, nil
	}
	if idx >= len(c.Steps) {
		idx = len(c.Steps) - 1
	}

	step := c.Steps[idx]
	if step.Err != nil {
		return nil, step.Err
	}
	return &Generation{Text: step.Text, Model: c.Model()}, nil
}

// Model returns the scripted model name.
func (c *ScriptedClient) Model() string {
	if c.ModelName == "" {
		return "scripted"
	}
	return c.ModelName
}

// Calls returns how many times Generate was invoked.
func (c *ScriptedClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.prompts)
}

// Prompts returns a copy of the prompts received so far.
func (c *ScriptedClient) Prompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.prompts))
	copy(out, c.prompts)
	return out
}
