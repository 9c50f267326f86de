package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/retrieval"
)

const (
	// NoRelevantInformationAnswer is returned when retrieval finds nothing
	NoRelevantInformationAnswer = "I couldn't find relevant information in the uploaded documents to answer your question. " +
		"Please try rephrasing your question or ensure you've uploaded relevant documents."

	// EmptyCompletionAnswer replaces a blank provider response
	EmptyCompletionAnswer = "I apologize, but I couldn't generate a proper response."

	// MaxConfidence caps the retrieval-derived confidence
	MaxConfidence = 0.95

	confidenceScale = 1.2
)

const answerSystemPrompt = `You are a helpful customer support assistant. Answer questions using only the information in the provided context.

Guidelines:
- Answer only from the context. Never make up information.
- If the context does not contain enough information, say so clearly.
- Use bulleted or numbered lists for steps, procedures and instructions.
- Be concise, accurate and professional.
- Mention which source the information comes from when it helps the reader.`

// AnswerGenerator turns an assembled context block into an answer using the
// generation provider.
type AnswerGenerator struct {
	llm         driven.LLMService
	temperature float64
	maxTokens   int
}

// NewAnswerGenerator creates an answer generator using the generation
// parameters from settings.
func NewAnswerGenerator(llm driven.LLMService, settings domain.RAGSettings) *AnswerGenerator {
	def := domain.DefaultRAGSettings()
	if settings.MaxTokens <= 0 {
		settings.MaxTokens = def.MaxTokens
	}
	if settings.Temperature < 0 {
		settings.Temperature = def.Temperature
	}
	return &AnswerGenerator{
		llm:         llm,
		temperature: settings.Temperature,
		maxTokens:   settings.MaxTokens,
	}
}

// Answer makes a single completion call for the question against the context.
func (g *AnswerGenerator) Answer(ctx context.Context, question, contextText string) (string, error) {
	if g.llm == nil {
		return "", fmt.Errorf("%w: no generation provider configured", domain.ErrServiceUnavailable)
	}

	text, err := g.llm.Complete(ctx, driven.CompletionRequest{
		SystemPrompt: answerSystemPrompt,
		UserPrompt:   answerUserPrompt(question, contextText),
		Temperature:  g.temperature,
		MaxTokens:    g.maxTokens,
	})
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(text) == "" {
		return EmptyCompletionAnswer, nil
	}
	return text, nil
}

func answerUserPrompt(question, contextText string) string {
	return fmt.Sprintf("Context: %s\n\nQuestion: %s\n\nPlease provide a helpful answer based on the context above.",
		contextText, question)
}

// Confidence derives answer confidence from retrieval quality:
// min(0.95, average similarity * 1.2), rounded to two decimals.
func Confidence(ranked []domain.RankedChunk) float64 {
	if len(ranked) == 0 {
		return 0
	}
	c := math.Min(MaxConfidence, retrieval.AverageScore(ranked)*confidenceScale)
	if c < 0 {
		c = 0
	}
	return math.Round(c*100) / 100
}
