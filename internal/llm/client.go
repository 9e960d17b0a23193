package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/hunterjsb/clubscout/internal/club"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const DefaultModel = openai.GPT4oMini

// Config configures the completion client
type Config struct {
	APIKey      string
	BaseURL     string // optional, for OpenAI-compatible endpoints
	Model       string
	MaxTokens   int
	Temperature float64
	Logger      *zap.Logger
}

// Client wraps the OpenAI chat completion API
type Client struct {
	client      *openai.Client
	hasKey      bool
	model       string
	maxTokens   int
	temperature float32
	logger      *zap.Logger
}

func NewClient(cfg Config) *Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		client:      openai.NewClientWithConfig(oc),
		hasKey:      strings.TrimSpace(cfg.APIKey) != "",
		model:       model,
		maxTokens:   cfg.MaxTokens,
		temperature: float32(cfg.Temperature),
		logger:      logger,
	}
}

// Summarize sends a report prompt and returns the generated text
func (c *Client) Summarize(ctx context.Context, prompt club.ReportPrompt) (string, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: prompt.System},
		{Role: openai.ChatMessageRoleUser, Content: prompt.User},
	}
	return c.complete(ctx, messages)
}

// Chat answers a free-form single-turn prompt
func (c *Client) Chat(ctx context.Context, prompt string) (string, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	}
	return c.complete(ctx, messages)
}

func (c *Client) complete(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	if !c.hasKey {
		return "", errors.Wrap(club.ErrUpstreamUnavailable, "OPENAI_API_KEY not configured")
	}

	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:       c.model,
			Messages:    messages,
			MaxTokens:   c.maxTokens,
			Temperature: c.temperature,
		},
	)
	if err != nil {
		return "", classify(err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.Wrap(club.ErrEmptyResponse, "no choices in completion")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.Wrapf(club.ErrEmptyResponse, "blank completion (finish reason %q)", resp.Choices[0].FinishReason)
	}

	c.logger.Debug("completion received",
		zap.String("model", resp.Model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)
	return text, nil
}

// classify marks provider errors with the matching sentinel, keeping the cause for logs
func classify(err error) error {
	wrapped := fmt.Errorf("ChatCompletion error: %w", err)

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		code := fmt.Sprint(apiErr.Code)
		msg := strings.ToLower(apiErr.Message)
		switch {
		case code == "context_length_exceeded",
			apiErr.HTTPStatusCode == http.StatusBadRequest && strings.Contains(msg, "context length"):
			return errors.Mark(wrapped, club.ErrContextTooLarge)
		case code == "insufficient_quota", apiErr.Type == "insufficient_quota",
			apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return errors.Mark(wrapped, club.ErrQuotaExceeded)
		}
		return markStatus(wrapped, apiErr.HTTPStatusCode)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return markStatus(wrapped, reqErr.HTTPStatusCode)
	}

	return wrapped
}

func markStatus(err error, status int) error {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return errors.Mark(err, club.ErrUpstreamUnavailable)
	case status == http.StatusTooManyRequests:
		return errors.Mark(err, club.ErrQuotaExceeded)
	case status >= 500:
		return errors.Mark(err, club.ErrUpstreamUnavailable)
	}
	return err
}
