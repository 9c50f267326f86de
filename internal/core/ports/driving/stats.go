package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// StatsService aggregates corpus and question statistics
type StatsService interface {
	Get(ctx context.Context) (*domain.Stats, error)
}
