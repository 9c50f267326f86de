package domain

// RankedChunk is a chunk scored against a query embedding
type RankedChunk struct {
	Chunk *Chunk  `json:"chunk"`
	Score float64 `json:"score"`
}
