package domain

// Stats summarises the state of the corpus and the question history
type Stats struct {
	TotalDocuments            int `json:"totalDocuments"`
	ProcessedDocuments        int `json:"processedDocuments"`
	TotalQueries              int `json:"totalQueries"`
	QueriesToday              int `json:"queriesToday"`
	AvgAccuracy               int `json:"avgAccuracy"` // percent
	TotalChunks               int `json:"totalChunks"`
	ChunksWithEmbeddings      int `json:"chunksWithEmbeddings"`
	AverageEmbeddingDimension int `json:"averageEmbeddingDimension"`
	IndexingProgress          int `json:"indexingProgress"` // percent
}

// ChunkDebugInfo is a compact view of a stored chunk
type ChunkDebugInfo struct {
	ID              string        `json:"id"`
	DocumentID      string        `json:"documentId"`
	ChunkIndex      int           `json:"chunkIndex"`
	ContentPreview  string        `json:"contentPreview"`
	HasEmbedding    bool          `json:"hasEmbedding"`
	EmbeddingLength int           `json:"embeddingLength"`
	Metadata        ChunkMetadata `json:"metadata"`
}

// ChunkListing is the debug listing of all stored chunks
type ChunkListing struct {
	Total          int              `json:"total"`
	WithEmbeddings int              `json:"withEmbeddings"`
	Chunks         []ChunkDebugInfo `json:"chunks"`
}
