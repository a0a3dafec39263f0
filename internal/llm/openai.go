package llm

import (
	"context"
	"errors"
	"net/http"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Settings configures the OpenAI-compatible client.
type Settings struct {
	Model   string
	APIKey  string
	BaseURL string

	// Timeout bounds each Generate call. Zero disables the per-call
	// deadline.
	Timeout time.Duration
}

// OpenAIClient implements Client using the openai-go chat completions API.
type OpenAIClient struct {
	model   string
	timeout time.Duration
	opts    []option.RequestOption
}

// NewOpenAIClient creates a client from the given settings.
func NewOpenAIClient(cfg Settings) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("api key is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("model is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIClient{model: cfg.Model, timeout: cfg.Timeout, opts: opts}, nil
}

// Model returns the configured model name.
func (c *OpenAIClient) Model() string {
	return c.model
}

// Generate submits the prompt as a single user message.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (*Generation, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	client := openai.NewClient(c.opts...)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return nil, classify(err)
	}
	if len(resp.Choices) == 0 {
		return nil, MarkTransient(errors.New("openai: empty choices"))
	}

	return &Generation{
		Text:  resp.Choices[0].Message.Content,
		Model: string(resp.Model),
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}

// classify maps provider failures onto the invocation error taxonomy.
// A per-call deadline reads as transient, as do rate limits and server
// errors; everything else (bad request, auth) is fatal.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return MarkTransient(err)
	}
	if errors.Is(err, context.Canceled) {
		return MarkFatal(err)
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests,
			apiErr.StatusCode == http.StatusRequestTimeout,
			apiErr.StatusCode >= http.StatusInternalServerError:
			return MarkTransient(err)
		default:
			return MarkFatal(err)
		}
	}

	// Network-level failures reach here without a status code.
	return MarkTransient(err)
}
