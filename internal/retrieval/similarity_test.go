package retrieval

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func chunkWith(id string, embedding ...float32) *domain.Chunk {
	return &domain.Chunk{ID: id, DocumentID: "doc-" + id, Content: "content " + id, Embedding: embedding}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"scaled", []float32{1, 2, 3}, []float32{2, 4, 6}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 1}, []float32{-1, -1}, -1},
		{"length mismatch", []float32{1, 2}, []float32{1, 2, 3}, 0},
		{"zero vector", []float32{0, 0, 0}, []float32{1, 2, 3}, 0},
		{"both zero", []float32{0, 0}, []float32{0, 0}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestCosineSimilarity_Symmetric(t *testing.T) {
	pairs := [][2][]float32{
		{{0.1, 0.7, -0.3}, {0.5, -0.2, 0.9}},
		{{3, 4}, {4, 3}},
		{{1, 0, 0, 2}, {0.5, 0.5, 0.5, 0.5}},
	}
	for _, p := range pairs {
		assert.Equal(t, CosineSimilarity(p[0], p[1]), CosineSimilarity(p[1], p[0]))
	}
}

func TestRank_FiltersSortsAndTruncates(t *testing.T) {
	query := []float32{1, 0}
	chunks := []*domain.Chunk{
		chunkWith("low", 0.1, 1),        // ~0.0995
		chunkWith("high", 1, 0.1),       // ~0.995
		chunkWith("mid", 1, 1),          // ~0.707
		chunkWith("none"),               // no embedding
		chunkWith("wrong-dim", 1, 0, 0), // dimension mismatch
		chunkWith("neg", -1, 0),         // -1
	}

	ranked := Rank(query, chunks, 5, 0.15)

	require.Len(t, ranked, 2)
	assert.Equal(t, "high", ranked[0].Chunk.ID)
	assert.Equal(t, "mid", ranked[1].Chunk.ID)
	assert.Greater(t, ranked[0].Score, ranked[1].Score)
}

func TestRank_DropsNaNScores(t *testing.T) {
	nan := float32(math.NaN())
	chunks := []*domain.Chunk{
		chunkWith("a", nan, 0),
		chunkWith("b", 1, 0),
	}

	ranked := Rank([]float32{1, 0}, chunks, 5, 0.15)

	require.Len(t, ranked, 1)
	assert.Equal(t, "b", ranked[0].Chunk.ID)
	assert.InDelta(t, 1.0, ranked[0].Score, 1e-9)
}

func TestRank_Bounds(t *testing.T) {
	query := []float32{1, 1, 1}
	var chunks []*domain.Chunk
	for i := 0; i < 20; i++ {
		chunks = append(chunks, chunkWith(fmt.Sprintf("c%d", i), 1, float32(i)/10, float32(20-i)/10))
	}

	for _, topK := range []int{1, 3, 5, 50} {
		for _, threshold := range []float64{-1, 0, 0.5, 0.9, 0.99} {
			ranked := Rank(query, chunks, topK, threshold)
			assert.LessOrEqual(t, len(ranked), topK)
			for i, r := range ranked {
				assert.GreaterOrEqual(t, r.Score, threshold)
				if i > 0 {
					assert.GreaterOrEqual(t, ranked[i-1].Score, r.Score)
				}
			}
		}
	}
}

func TestRank_StableTies(t *testing.T) {
	query := []float32{1, 0}
	chunks := []*domain.Chunk{
		chunkWith("a", 2, 0),
		chunkWith("b", 1, 0),
		chunkWith("c", 3, 0),
	}

	for i := 0; i < 10; i++ {
		ranked := Rank(query, chunks, 5, 0.15)
		require.Len(t, ranked, 3)
		assert.Equal(t, []string{"a", "b", "c"}, []string{ranked[0].Chunk.ID, ranked[1].Chunk.ID, ranked[2].Chunk.ID})
	}
}

func TestRank_IdenticalEmbeddingScoresOne(t *testing.T) {
	vec := []float32{0.3, 0.1, 0.8}
	ranked := Rank(vec, []*domain.Chunk{chunkWith("only", vec...)}, DefaultTopK, DefaultThreshold)

	require.Len(t, ranked, 1)
	assert.InDelta(t, 1.0, ranked[0].Score, 1e-6)
}

func TestRank_Empty(t *testing.T) {
	assert.Empty(t, Rank([]float32{1}, nil, 5, 0.15))
	assert.Empty(t, Rank([]float32{1}, []*domain.Chunk{chunkWith("a", 1)}, 0, 0.15))
}

func TestAverageScore(t *testing.T) {
	assert.Equal(t, 0.0, AverageScore(nil))

	ranked := []domain.RankedChunk{{Score: 0.4}, {Score: 0.6}}
	assert.True(t, math.Abs(AverageScore(ranked)-0.5) < 1e-12)
}
