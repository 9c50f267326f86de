package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

const (
	maxSampledChunks    = 5
	sampleLength        = 200
	maxExampleQuestions = 3
	questionTemperature = 0.7
	questionMaxTokens   = 300
)

// FallbackQuestions are suggested when no questions can be synthesized
var FallbackQuestions = []string{
	"How do I reset my password?",
	"What are your pricing plans?",
	"How do I contact customer support?",
}

const questionSystemPrompt = `You generate example questions that customers might ask a support assistant.
Respond with a JSON object of the form {"questions": ["...", "...", "..."]} containing exactly 3 short, natural questions answerable from the provided content.`

// QuestionSynthesizer suggests example questions from indexed content.
// It never fails: every problem degrades to FallbackQuestions.
type QuestionSynthesizer struct {
	llm    driven.LLMService
	logger *slog.Logger
}

// NewQuestionSynthesizer creates a question synthesizer. llm may be nil.
func NewQuestionSynthesizer(llm driven.LLMService, logger *slog.Logger) *QuestionSynthesizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuestionSynthesizer{llm: llm, logger: logger}
}

// Suggest returns up to three questions based on the leading content of
// the first few chunks.
func (s *QuestionSynthesizer) Suggest(ctx context.Context, chunks []*domain.Chunk) []string {
	if len(chunks) == 0 || s.llm == nil {
		return fallbackQuestions()
	}

	samples := make([]string, 0, maxSampledChunks)
	for _, chunk := range chunks {
		if len(samples) == maxSampledChunks {
			break
		}
		if chunk == nil || strings.TrimSpace(chunk.Content) == "" {
			continue
		}
		samples = append(samples, leadingRunes(chunk.Content, sampleLength))
	}
	if len(samples) == 0 {
		return fallbackQuestions()
	}

	text, err := s.llm.Complete(ctx, driven.CompletionRequest{
		SystemPrompt: questionSystemPrompt,
		UserPrompt:   "Content:\n" + strings.Join(samples, "\n\n"),
		Temperature:  questionTemperature,
		MaxTokens:    questionMaxTokens,
		JSONMode:     true,
	})
	if err != nil {
		s.logger.Warn("example question generation failed", "error", err)
		return fallbackQuestions()
	}

	questions := parseQuestions(text)
	if len(questions) == 0 {
		s.logger.Warn("example question response was unusable", "response_length", len(text))
		return fallbackQuestions()
	}
	return questions
}

func parseQuestions(text string) []string {
	var payload struct {
		Questions []string `json:"questions"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &payload); err != nil {
		return nil
	}

	questions := make([]string, 0, maxExampleQuestions)
	for _, q := range payload.Questions {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		questions = append(questions, q)
		if len(questions) == maxExampleQuestions {
			break
		}
	}
	return questions
}

func fallbackQuestions() []string {
	return append([]string(nil), FallbackQuestions...)
}

func leadingRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		return string(runes[:n])
	}
	return s
}
