package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// QueryService accepts questions and serves their answers
type QueryService interface {
	// Ask stores a new question and schedules it for answering
	Ask(ctx context.Context, question string) (*domain.Query, error)

	// Get retrieves a query by ID
	Get(ctx context.Context, id string) (*domain.Query, error)

	// ListRecent returns up to limit queries, newest first
	ListRecent(ctx context.Context, limit int) ([]*domain.Query, error)

	// ExampleQuestions suggests questions derived from indexed content.
	// It always returns a usable list.
	ExampleQuestions(ctx context.Context) []string
}

// QueryProcessor runs the answering job for a submitted question
type QueryProcessor interface {
	// ProcessQuery answers a query and stores the result.
	// Failures are recorded on the query before being returned.
	ProcessQuery(ctx context.Context, queryID string) error
}
