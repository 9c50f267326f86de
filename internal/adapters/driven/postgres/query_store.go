package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.QueryStore = (*QueryStore)(nil)

const queryColumns = `id, question, status, answer, confidence, sources, error_message, created_at`

// QueryStore implements driven.QueryStore using PostgreSQL
type QueryStore struct {
	db *DB
}

// NewQueryStore creates a new QueryStore
func NewQueryStore(db *DB) *QueryStore {
	return &QueryStore{db: db}
}

// Save creates or updates a query
func (s *QueryStore) Save(ctx context.Context, q *domain.Query) error {
	var sources sql.NullString
	if q.Sources != nil {
		b, err := json.Marshal(q.Sources)
		if err != nil {
			return fmt.Errorf("marshal sources: %w", err)
		}
		sources = sql.NullString{String: string(b), Valid: true}
	}

	var confidence sql.NullFloat64
	if q.Confidence != nil {
		confidence = sql.NullFloat64{Float64: *q.Confidence, Valid: true}
	}

	query := `
		INSERT INTO queries (` + queryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			answer = EXCLUDED.answer,
			confidence = EXCLUDED.confidence,
			sources = EXCLUDED.sources,
			error_message = EXCLUDED.error_message
	`

	_, err := s.db.ExecContext(ctx, query,
		q.ID,
		q.Question,
		q.Status,
		q.Answer,
		confidence,
		sources,
		q.ErrorMessage,
		q.CreatedAt,
	)
	return err
}

// Get retrieves a query by ID
func (s *QueryStore) Get(ctx context.Context, id string) (*domain.Query, error) {
	query := `SELECT ` + queryColumns + ` FROM queries WHERE id = $1`
	q, err := scanQuery(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return q, err
}

// List returns every stored query, newest first
func (s *QueryStore) List(ctx context.Context) ([]*domain.Query, error) {
	return s.list(ctx, `SELECT `+queryColumns+` FROM queries ORDER BY created_at DESC`)
}

// ListRecent returns up to limit queries, newest first
func (s *QueryStore) ListRecent(ctx context.Context, limit int) ([]*domain.Query, error) {
	if limit <= 0 {
		return nil, nil
	}
	return s.list(ctx, `SELECT `+queryColumns+` FROM queries ORDER BY created_at DESC LIMIT $1`, limit)
}

func (s *QueryStore) list(ctx context.Context, query string, args ...any) ([]*domain.Query, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var queries []*domain.Query
	for rows.Next() {
		q, err := scanQuery(rows)
		if err != nil {
			return nil, err
		}
		queries = append(queries, q)
	}
	return queries, rows.Err()
}

func scanQuery(row rowScanner) (*domain.Query, error) {
	var q domain.Query
	var confidence sql.NullFloat64
	var sourcesJSON []byte

	err := row.Scan(
		&q.ID,
		&q.Question,
		&q.Status,
		&q.Answer,
		&confidence,
		&sourcesJSON,
		&q.ErrorMessage,
		&q.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if confidence.Valid {
		c := confidence.Float64
		q.Confidence = &c
	}
	if len(sourcesJSON) > 0 {
		if err := json.Unmarshal(sourcesJSON, &q.Sources); err != nil {
			return nil, fmt.Errorf("unmarshal sources: %w", err)
		}
	}
	return &q, nil
}
