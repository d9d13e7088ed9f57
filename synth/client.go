package synth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Summarizer turns a prompt into a short text.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

const (
	DefaultEndpoint = "https://api.together.xyz/v1"
	DefaultModel    = "deepseek-ai/DeepSeek-V3"
)

type clientOptions struct {
	logger      *zap.Logger
	endpoint    string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	timeout     time.Duration
}

var defaultClientOptions = clientOptions{
	logger:      zap.NewNop(),
	endpoint:    DefaultEndpoint,
	model:       DefaultModel,
	maxTokens:   500,
	temperature: 0.2,
	timeout:     60 * time.Second,
}

type ClientOption func(opts *clientOptions)

func WithClientLogger(logger *zap.Logger) ClientOption {
	return func(opts *clientOptions) {
		opts.logger = logger
	}
}

// WithEndpoint sets the base URL of an OpenAI compatible API.
func WithEndpoint(endpoint string) ClientOption {
	return func(opts *clientOptions) {
		opts.endpoint = endpoint
	}
}

func WithAPIKey(key string) ClientOption {
	return func(opts *clientOptions) {
		opts.apiKey = key
	}
}

func WithModel(model string) ClientOption {
	return func(opts *clientOptions) {
		opts.model = model
	}
}

func WithMaxTokens(n int) ClientOption {
	return func(opts *clientOptions) {
		opts.maxTokens = n
	}
}

func WithTemperature(t float64) ClientOption {
	return func(opts *clientOptions) {
		opts.temperature = t
	}
}

func WithClientTimeout(d time.Duration) ClientOption {
	return func(opts *clientOptions) {
		opts.timeout = d
	}
}

// ChatClient calls the chat completions route of an OpenAI compatible API.
type ChatClient struct {
	client *resty.Client
	clientOptions
}

func NewChatClient(opts ...ClientOption) *ChatClient {
	options := defaultClientOptions
	for _, opt := range opts {
		opt(&options)
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(options.endpoint, "/")).
		SetTimeout(options.timeout).
		SetHeader("Content-Type", "application/json")
	if options.apiKey != "" {
		client.SetAuthToken(options.apiKey)
	}
	return &ChatClient{client: client, clientOptions: options}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

func (c *ChatClient) Summarize(ctx context.Context, prompt string) (string, error) {
	var out chatResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model:       c.model,
			Messages:    []chatMessage{{Role: "user", Content: prompt}},
			MaxTokens:   c.maxTokens,
			Temperature: c.temperature,
		}).
		SetResult(&out).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("chat completion: status %d: %s", resp.StatusCode(), truncate(resp.String(), 200))
	}
	if len(out.Choices) == 0 {
		return "", errors.New("chat completion: no choices")
	}
	c.logger.Debug("chat completion",
		zap.Int("tokens", out.Usage.TotalTokens),
		zap.Duration("took", resp.Time()),
	)
	return out.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
