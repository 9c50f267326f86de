package services

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven/mocks"
)

func textChunks(contents ...string) []*domain.Chunk {
	chunks := make([]*domain.Chunk, len(contents))
	for i, c := range contents {
		chunks[i] = &domain.Chunk{ID: domain.GenerateID(), Index: i, Content: c}
	}
	return chunks
}

func TestQuestionSynthesizer_Suggest(t *testing.T) {
	llm := mocks.NewMockLLMService(`{"questions": ["How do refunds work?", "What plans exist?", "Who do I call?", "Extra?"]}`)
	synth := NewQuestionSynthesizer(llm, nil)

	got := synth.Suggest(context.Background(), textChunks("Refunds are issued within 5 days.", "Plans: Basic, Pro."))

	want := []string{"How do refunds work?", "What plans exist?", "Who do I call?"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Suggest() = %v, want %v", got, want)
	}

	req := llm.Requests()[0]
	if !req.JSONMode {
		t.Error("expected JSON mode")
	}
	if req.Temperature != 0.7 {
		t.Errorf("expected temperature 0.7, got %v", req.Temperature)
	}
}

func TestQuestionSynthesizer_SamplesLeadingContent(t *testing.T) {
	llm := mocks.NewMockLLMService(`{"questions": ["q?"]}`)
	synth := NewQuestionSynthesizer(llm, nil)

	long := strings.Repeat("a", 250)
	chunks := textChunks(long, "two", "three", "four", "five", "six-should-not-appear")
	_ = synth.Suggest(context.Background(), chunks)

	prompt := llm.Requests()[0].UserPrompt
	if strings.Contains(prompt, strings.Repeat("a", 201)) {
		t.Error("expected each sample truncated to 200 characters")
	}
	if !strings.Contains(prompt, strings.Repeat("a", 200)) {
		t.Error("expected the first 200 characters of the first chunk")
	}
	if strings.Contains(prompt, "six-should-not-appear") {
		t.Error("expected at most 5 sampled chunks")
	}
}

func TestQuestionSynthesizer_Fallbacks(t *testing.T) {
	failing := mocks.NewMockLLMService("")
	failing.Err = errors.New("provider down")

	tests := []struct {
		name   string
		llm    *mocks.MockLLMService
		chunks []*domain.Chunk
	}{
		{"no chunks", mocks.NewMockLLMService(`{"questions": ["q?"]}`), nil},
		{"only blank chunks", mocks.NewMockLLMService(`{"questions": ["q?"]}`), textChunks("   ")},
		{"provider error", failing, textChunks("content")},
		{"not json", mocks.NewMockLLMService("Here are some questions"), textChunks("content")},
		{"empty list", mocks.NewMockLLMService(`{"questions": []}`), textChunks("content")},
		{"blank entries", mocks.NewMockLLMService(`{"questions": ["", "  "]}`), textChunks("content")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewQuestionSynthesizer(tt.llm, nil).Suggest(context.Background(), tt.chunks)
			if !reflect.DeepEqual(got, FallbackQuestions) {
				t.Errorf("expected fallback questions, got %v", got)
			}
		})
	}
}

func TestQuestionSynthesizer_NilProvider(t *testing.T) {
	got := NewQuestionSynthesizer(nil, nil).Suggest(context.Background(), textChunks("content"))
	if len(got) != 3 {
		t.Fatalf("expected 3 fallback questions, got %d", len(got))
	}

	// The returned slice must not alias the package defaults
	got[0] = "changed"
	if FallbackQuestions[0] == "changed" {
		t.Error("fallback slice was shared with caller")
	}
}
