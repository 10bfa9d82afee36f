package ai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"os"
	"time"

	"orc/internal/config"
	orcerrors "orc/internal/errors"
)

const baseRetryDelay = 1 * time.Second

// ErrProviderFailure indicates the provider call failed after retries
// (network, auth, rate limit).
var ErrProviderFailure = errors.New("provider failure")

// Client is one LLM provider connection.
type Client interface {
	// Chat sends the conversation and offered tools, returning the next
	// assistant message.
	Chat(ctx context.Context, messages []Message, tools []ToolSpec) (*ChatResponse, error)

	// Model returns the configured model name.
	Model() string
}

// httpStatusError marks a non-2xx provider response; 429 and 5xx retry.
type httpStatusError struct {
	status int
	body   string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("provider returned HTTP %d: %s", e.status, e.body)
}

func isRetryable(err error) bool {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.status == http.StatusTooManyRequests || statusErr.status >= 500
	}
	// Transport-level failures (connection refused, timeouts) retry.
	var urlErr interface{ Timeout() bool }
	if errors.As(err, &urlErr) {
		return true
	}
	return false
}

// retryClient wraps a provider with exponential-backoff retries.
type retryClient struct {
	inner      Client
	maxRetries int
}

func (c *retryClient) Model() string { return c.inner.Model() }

func (c *retryClient) Chat(ctx context.Context, messages []Message, tools []ToolSpec) (*ChatResponse, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := baseRetryDelay * time.Duration(math.Pow(2, float64(attempt-1)))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: context cancelled during retry: %v", ErrProviderFailure, ctx.Err())
			}
		}

		resp, err := c.inner.Chat(ctx, messages, tools)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !isRetryable(err) {
			break
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrProviderFailure, lastErr)
}

// New builds the configured provider client, wrapped with retries.
// The API key is read from the environment variable named in the config.
func New(cfg config.AIConfig) (Client, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}

	apiKey := ""
	if cfg.APIKeyEnv != "" {
		apiKey = os.Getenv(cfg.APIKeyEnv)
	}

	var inner Client
	switch cfg.Provider {
	case "openai":
		if apiKey == "" {
			return nil, orcerrors.New(orcerrors.ProviderUnavailable,
				fmt.Sprintf("no API key in $%s", cfg.APIKeyEnv), nil)
		}
		inner = newOpenAIClient(cfg, apiKey, httpClient)
	case "anthropic":
		if apiKey == "" {
			return nil, orcerrors.New(orcerrors.ProviderUnavailable,
				fmt.Sprintf("no API key in $%s", cfg.APIKeyEnv), nil)
		}
		inner = newAnthropicClient(cfg, apiKey, httpClient)
	case "ollama":
		inner = newOllamaClient(cfg, httpClient)
	default:
		return nil, orcerrors.New(orcerrors.ProviderUnavailable,
			"unknown provider: "+cfg.Provider, nil)
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &retryClient{inner: inner, maxRetries: maxRetries}, nil
}
