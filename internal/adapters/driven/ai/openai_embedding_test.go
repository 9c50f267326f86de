package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

type embeddingItem struct {
	Object    string    `json:"object"`
	Index     int       `json:"index"`
	Embedding []float64 `json:"embedding"`
}

func embeddingServer(t *testing.T, status int, items []embeddingItem) (*httptest.Server, *int) {
	t.Helper()
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/embeddings" {
			t.Errorf("expected /embeddings, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("unexpected Authorization header %q", r.Header.Get("Authorization"))
		}

		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if req.Model != "text-embedding-3-small" {
			t.Errorf("unexpected model %s", req.Model)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"Invalid API key","type":"invalid_request_error","code":"invalid_api_key"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   items,
			"model":  "text-embedding-3-small",
			"usage":  map[string]int{"prompt_tokens": 1, "total_tokens": 1},
		})
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func TestNewOpenAIEmbedding_RequiresAPIKey(t *testing.T) {
	if _, err := NewOpenAIEmbedding("", "text-embedding-3-small", ""); err == nil {
		t.Error("expected error for empty API key")
	}
}

func TestNewOpenAIEmbedding_Defaults(t *testing.T) {
	emb, err := NewOpenAIEmbedding("sk-test", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if emb.Model() != "text-embedding-3-small" {
		t.Errorf("expected default model, got %s", emb.Model())
	}
	if emb.baseURL != defaultOpenAIBaseURL {
		t.Errorf("expected default base URL, got %s", emb.baseURL)
	}
	if err := emb.Close(); err != nil {
		t.Errorf("expected no error from Close, got %v", err)
	}
}

func TestOpenAIEmbedding_Dimensions(t *testing.T) {
	testCases := []struct {
		model      string
		dimensions int
	}{
		{"text-embedding-3-small", 1536},
		{"text-embedding-3-large", 3072},
		{"text-embedding-ada-002", 1536},
		{"unknown-model", 0}, // learned from the first response
	}

	for _, tc := range testCases {
		t.Run(tc.model, func(t *testing.T) {
			emb, err := NewOpenAIEmbedding("sk-test", tc.model, "")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if emb.Dimensions() != tc.dimensions {
				t.Errorf("expected dimensions %d, got %d", tc.dimensions, emb.Dimensions())
			}
		})
	}
}

func TestOpenAIEmbedding_Embed_EmptyInput(t *testing.T) {
	server, calls := embeddingServer(t, http.StatusOK, nil)
	emb, _ := NewOpenAIEmbedding("sk-test", "text-embedding-3-small", server.URL)

	result, err := emb.Embed(context.Background(), nil)
	if err != nil {
		t.Errorf("unexpected error for empty input: %v", err)
	}
	if result != nil {
		t.Error("expected nil result for empty input")
	}
	if *calls != 0 {
		t.Errorf("expected no provider call, got %d", *calls)
	}
}

func TestOpenAIEmbedding_Embed_OrdersByIndex(t *testing.T) {
	server, _ := embeddingServer(t, http.StatusOK, []embeddingItem{
		{Object: "embedding", Index: 1, Embedding: []float64{0.4, 0.5, 0.6}},
		{Object: "embedding", Index: 0, Embedding: []float64{0.1, 0.2, 0.3}},
	})
	emb, _ := NewOpenAIEmbedding("sk-test", "text-embedding-3-small", server.URL)

	result, err := emb.Embed(context.Background(), []string{"hello", "world"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 embeddings, got %d", len(result))
	}
	if result[0][0] != float32(0.1) || result[1][0] != float32(0.4) {
		t.Errorf("embeddings out of order: %v", result)
	}
	if emb.Dimensions() != 3 {
		t.Errorf("expected observed dimension 3, got %d", emb.Dimensions())
	}
}

func TestOpenAIEmbedding_EmbedQuery(t *testing.T) {
	server, _ := embeddingServer(t, http.StatusOK, []embeddingItem{
		{Object: "embedding", Index: 0, Embedding: []float64{0.1, 0.2, 0.3}},
	})
	emb, _ := NewOpenAIEmbedding("sk-test", "text-embedding-3-small", server.URL)

	result, err := emb.EmbedQuery(context.Background(), "test query")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 3 {
		t.Errorf("expected 3 dimensions, got %d", len(result))
	}
	if err := emb.HealthCheck(context.Background()); err != nil {
		t.Errorf("expected healthy, got %v", err)
	}
}

func TestOpenAIEmbedding_MissingVector(t *testing.T) {
	server, _ := embeddingServer(t, http.StatusOK, []embeddingItem{
		{Object: "embedding", Index: 0, Embedding: []float64{0.1}},
	})
	emb, _ := NewOpenAIEmbedding("sk-test", "text-embedding-3-small", server.URL)

	_, err := emb.Embed(context.Background(), []string{"a", "b"})
	if !errors.Is(err, domain.ErrEmbeddingFailed) {
		t.Errorf("expected ErrEmbeddingFailed, got %v", err)
	}
}

func TestOpenAIEmbedding_APIError(t *testing.T) {
	server, calls := embeddingServer(t, http.StatusUnauthorized, nil)
	emb, _ := NewOpenAIEmbedding("sk-test", "text-embedding-3-small", server.URL)

	_, err := emb.Embed(context.Background(), []string{"hello"})
	if !errors.Is(err, domain.ErrEmbeddingFailed) {
		t.Fatalf("expected ErrEmbeddingFailed, got %v", err)
	}
	if *calls != 1 {
		t.Errorf("expected a single attempt, got %d", *calls)
	}
}

func TestOpenAIEmbedding_LimiterHonoursContext(t *testing.T) {
	server, calls := embeddingServer(t, http.StatusOK, []embeddingItem{
		{Object: "embedding", Index: 0, Embedding: []float64{1}},
	})
	limiter := NewLimiter(1)
	emb, _ := NewOpenAIEmbedding("sk-test", "text-embedding-3-small", server.URL, WithLimiter(limiter))

	if _, err := emb.Embed(context.Background(), []string{"first"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := emb.Embed(ctx, []string{"second"})
	if !errors.Is(err, domain.ErrEmbeddingFailed) {
		t.Errorf("expected ErrEmbeddingFailed when throttled past the deadline, got %v", err)
	}
	if *calls != 1 {
		t.Errorf("expected throttled call to be skipped, got %d calls", *calls)
	}
}

func TestNewOllamaEmbedding_NoKeyNeeded(t *testing.T) {
	emb, err := NewOllamaEmbedding("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if emb.baseURL != defaultOllamaBaseURL {
		t.Errorf("expected default ollama URL, got %s", emb.baseURL)
	}
}
