package ai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure OpenAILLM implements LLMService
var _ driven.LLMService = (*OpenAILLM)(nil)

// OpenAILLM implements LLMService with chat completions on OpenAI or an
// OpenAI-compatible endpoint.
type OpenAILLM struct {
	client  openai.Client
	opts    clientOptions
	model   string
	baseURL string
}

// NewOpenAILLM creates an OpenAI chat completion service
func NewOpenAILLM(apiKey, model, baseURL string, opts ...Option) (*OpenAILLM, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if model == "" {
		model = "gpt-4o"
	}
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return newLLM(apiKey, model, baseURL, opts), nil
}

// NewOllamaLLM creates a chat service on Ollama's OpenAI-compatible API
func NewOllamaLLM(baseURL, model string, opts ...Option) (*OpenAILLM, error) {
	if model == "" {
		model = "llama3.2"
	}
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	return newLLM("", model, baseURL, opts), nil
}

func newLLM(apiKey, model, baseURL string, opts []Option) *OpenAILLM {
	client, o := newClient(apiKey, baseURL, generationTimeout, opts)
	return &OpenAILLM{
		client:  client,
		opts:    o,
		model:   model,
		baseURL: baseURL,
	}
}

// Complete sends a system + user prompt and returns the first choice's text
func (l *OpenAILLM) Complete(ctx context.Context, req driven.CompletionRequest) (string, error) {
	if err := l.opts.wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(req.UserPrompt))

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(l.model),
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.JSONMode {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := l.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrGenerationFailed, describe(err))
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// Model returns the model name being used
func (l *OpenAILLM) Model() string {
	return l.model
}

// Ping lists models to verify the endpoint answers
func (l *OpenAILLM) Ping(ctx context.Context) error {
	if _, err := l.client.Models.List(ctx); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrServiceUnavailable, describe(err))
	}
	return nil
}

// Close is a no-op; the SDK client holds no resources
func (l *OpenAILLM) Close() error {
	return nil
}
