package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"golang.org/x/time/rate"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOllamaBaseURL = "http://localhost:11434/v1"

	embeddingTimeout  = 60 * time.Second
	generationTimeout = 120 * time.Second
)

// Option customises an OpenAI-compatible adapter.
type Option func(*clientOptions)

type clientOptions struct {
	limiter *rate.Limiter
	timeout time.Duration
}

// WithLimiter throttles provider calls through a shared token bucket.
func WithLimiter(l *rate.Limiter) Option {
	return func(o *clientOptions) { o.limiter = l }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) { o.timeout = d }
}

// NewLimiter builds a token bucket allowing requestsPerMinute calls.
// Zero or less means unlimited.
func NewLimiter(requestsPerMinute int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), requestsPerMinute)
}

func newClient(apiKey, baseURL string, timeout time.Duration, opts []Option) (openai.Client, clientOptions) {
	o := clientOptions{timeout: timeout}
	for _, opt := range opts {
		opt(&o)
	}

	// Ollama ignores the key but the SDK always sends one.
	if apiKey == "" {
		apiKey = "unused"
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(o.timeout),
	)
	return client, o
}

func (o clientOptions) wait(ctx context.Context) error {
	if o.limiter == nil {
		return nil
	}
	return o.limiter.Wait(ctx)
}

// describe flattens SDK errors into a short message.
func describe(err error) string {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("provider returned status %d: %s", apiErr.StatusCode, apiErr.Message)
	}
	return err.Error()
}
