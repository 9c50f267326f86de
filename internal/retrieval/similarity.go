// Package retrieval ranks stored chunks against a query embedding and
// assembles the ranked chunks into a grounded context block.
package retrieval

import (
	"math"
	"sort"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

const (
	// DefaultTopK is the number of chunks passed to the answer generator
	DefaultTopK = 5

	// DefaultThreshold favours recall over precision
	DefaultThreshold = 0.15
)

// CosineSimilarity returns the cosine of the angle between a and b.
// Vectors of different length, empty vectors and zero vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Rank scores every chunk against the query vector, drops chunks scoring
// below threshold, and returns at most topK results sorted by descending
// score. Ties keep the input order. Chunks without an embedding score 0.
func Rank(query []float32, chunks []*domain.Chunk, topK int, threshold float64) []domain.RankedChunk {
	if topK <= 0 {
		return nil
	}

	ranked := make([]domain.RankedChunk, 0, len(chunks))
	for _, chunk := range chunks {
		if chunk == nil {
			continue
		}
		var score float64
		if chunk.HasEmbedding() {
			score = CosineSimilarity(query, chunk.Embedding)
		}
		if !(score >= threshold) {
			continue
		}
		ranked = append(ranked, domain.RankedChunk{Chunk: chunk, Score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked
}

// AverageScore returns the mean score of the ranked chunks, or 0 when empty.
func AverageScore(ranked []domain.RankedChunk) float64 {
	if len(ranked) == 0 {
		return 0
	}
	var sum float64
	for _, r := range ranked {
		sum += r.Score
	}
	return sum / float64(len(ranked))
}
