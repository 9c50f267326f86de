package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ChunkStore = (*ChunkStore)(nil)

const chunkColumns = `id, document_id, chunk_index, content, embedding, metadata, created_at`

// ChunkStore implements driven.ChunkStore using PostgreSQL.
// Embeddings live in a pgvector column next to the chunk text.
type ChunkStore struct {
	db *DB
}

// NewChunkStore creates a new ChunkStore
func NewChunkStore(db *DB) *ChunkStore {
	return &ChunkStore{db: db}
}

// SaveBatch saves multiple chunks in a transaction
func (s *ChunkStore) SaveBatch(ctx context.Context, chunks []*domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO chunks (` + chunkColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE SET
				chunk_index = EXCLUDED.chunk_index,
				content = EXCLUDED.content,
				embedding = EXCLUDED.embedding,
				metadata = EXCLUDED.metadata
		`

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, chunk := range chunks {
			metadataJSON, err := json.Marshal(chunk.Metadata)
			if err != nil {
				return fmt.Errorf("marshal metadata for chunk %s: %w", chunk.ID, err)
			}

			var embedding any
			if chunk.HasEmbedding() {
				embedding = pgvector.NewVector(chunk.Embedding)
			}

			_, err = stmt.ExecContext(ctx,
				chunk.ID,
				chunk.DocumentID,
				chunk.Index,
				chunk.Content,
				embedding,
				string(metadataJSON),
				chunk.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("insert chunk %s: %w", chunk.ID, err)
			}
		}

		return nil
	})
}

// GetByDocument retrieves all chunks for a document ordered by index
func (s *ChunkStore) GetByDocument(ctx context.Context, documentID string) ([]*domain.Chunk, error) {
	query := `
		SELECT ` + chunkColumns + `
		FROM chunks
		WHERE document_id = $1
		ORDER BY chunk_index
	`
	return s.query(ctx, query, documentID)
}

// List returns every stored chunk grouped by document
func (s *ChunkStore) List(ctx context.Context) ([]*domain.Chunk, error) {
	query := `
		SELECT ` + chunkColumns + `
		FROM chunks
		ORDER BY document_id, chunk_index
	`
	return s.query(ctx, query)
}

// DeleteByDocument deletes all chunks for a document
func (s *ChunkStore) DeleteByDocument(ctx context.Context, documentID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = $1`, documentID)
	return err
}

func (s *ChunkStore) query(ctx context.Context, query string, args ...any) ([]*domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*domain.Chunk
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

func scanChunk(row rowScanner) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var embedding *pgvector.Vector
	var metadataJSON []byte

	err := row.Scan(
		&chunk.ID,
		&chunk.DocumentID,
		&chunk.Index,
		&chunk.Content,
		&embedding,
		&metadataJSON,
		&chunk.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if embedding != nil {
		chunk.Embedding = embedding.Slice()
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &chunk.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata for chunk %s: %w", chunk.ID, err)
		}
	}
	return &chunk, nil
}
