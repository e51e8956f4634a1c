package openai

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	domain "github.com/bryanwahyu/cyber-assistant/internal/domain/analysis"
	"github.com/bryanwahyu/cyber-assistant/internal/infra/ai/prompt"
)

const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "llama-3.1-8b-instant"
	DefaultTimeout = 30 * time.Second

	fallbackLimit = 1000
	errorLimit    = 500
)

// Client talks to any OpenAI-compatible chat completion endpoint (Groq by default).
type Client struct {
	*openai.Client
	Model  string
	apiKey string
	logger *slog.Logger
}

type Options struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	Logger  *slog.Logger
}

func NewClient(opts Options) *Client {
	cfg := openai.DefaultConfig(opts.APIKey)
	cfg.BaseURL = DefaultBaseURL
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	cfg.HTTPClient = &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	model := opts.Model
	if model == "" {
		model = DefaultModel
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{Client: openai.NewClientWithConfig(cfg), Model: model, apiKey: opts.APIKey, logger: logger}
}

// Complete sends the fixed system instruction plus prompt and returns the first message content.
func (c *Client) Complete(ctx context.Context, userPrompt string, maxTokens int) domain.UpstreamResult {
	if c.apiKey == "" {
		return domain.Unavailable(domain.ReasonNoCredential)
	}
	req := openai.ChatCompletionRequest{
		Model: c.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.GetSystemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		MaxTokens: maxTokens,
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		status := statusOf(err)
		c.logger.Warn("completion call failed", slog.Int("status", status), slog.String("error", err.Error()))
		return domain.Failure(domain.Truncate(err.Error(), errorLimit), status)
	}

	if len(resp.Choices) > 0 {
		if content := strings.TrimSpace(resp.Choices[0].Message.Content); content != "" {
			return domain.Success(content)
		}
	}
	// unexpected shape: hand back the raw response rather than an empty verdict
	raw, _ := json.Marshal(resp)
	return domain.Success(domain.Truncate(string(raw), fallbackLimit))
}

func statusOf(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
