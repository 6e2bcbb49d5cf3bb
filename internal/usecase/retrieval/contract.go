package retrieval

import (
	"context"

	"github.com/kailas-cloud/travelrag/internal/domain/collection"
	domdoc "github.com/kailas-cloud/travelrag/internal/domain/document"
	"github.com/kailas-cloud/travelrag/internal/domain/search/filter"
	"github.com/kailas-cloud/travelrag/internal/domain/search/result"
)

// Repository defines the storage contract for indexing and querying collections.
type Repository interface {
	EnsureCollection(ctx context.Context, kind collection.Kind, vectorDim int) error
	Upsert(ctx context.Context, kind collection.Kind, docs []domdoc.Document) error
	SearchKNN(
		ctx context.Context, kind collection.Kind,
		vector []float32, filters filter.Expression, k int,
	) ([]result.Result, error)
	List(ctx context.Context, kind collection.Kind, filters filter.Expression, limit int) ([]result.Result, error)
}
