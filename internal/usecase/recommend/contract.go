package recommend

import (
	"context"

	"github.com/kailas-cloud/travelrag/internal/domain/collection"
	"github.com/kailas-cloud/travelrag/internal/domain/search/result"
)

// Retriever answers filtered similarity queries against one collection.
type Retriever interface {
	Query(ctx context.Context, kind collection.Kind, query string, rawFilters map[string]any, limit int) ([]result.Result, error)
}

// Scorer returns one personalized score per candidate, in candidate order.
type Scorer interface {
	Score(ctx context.Context, userID string, candidates []result.Result, category string) ([]float64, error)
}
