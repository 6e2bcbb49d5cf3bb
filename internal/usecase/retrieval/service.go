// Package retrieval indexes travel documents and answers filtered similarity queries.
package retrieval

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/travelrag/internal/domain"
	"github.com/kailas-cloud/travelrag/internal/domain/collection"
	domdoc "github.com/kailas-cloud/travelrag/internal/domain/document"
	"github.com/kailas-cloud/travelrag/internal/domain/search/filter"
	"github.com/kailas-cloud/travelrag/internal/domain/search/request"
	"github.com/kailas-cloud/travelrag/internal/domain/search/result"
	"github.com/kailas-cloud/travelrag/internal/logger"
	"github.com/kailas-cloud/travelrag/internal/metrics"
)

// Service is the document store facade over a repository and two embedders.
// Documents and queries may use different instructions of the same model.
type Service struct {
	repo     Repository
	docEmbed domain.Embedder
	qryEmbed domain.Embedder
	dim      int
	limits   request.Limits
}

// New creates a retrieval service. dim is the vector dimension of every collection.
func New(repo Repository, docEmbed, qryEmbed domain.Embedder, dim int, limits request.Limits) *Service {
	return &Service{repo: repo, docEmbed: docEmbed, qryEmbed: qryEmbed, dim: dim, limits: limits}
}

// Index encodes all document texts in one batch and upserts them. Existing ids are overwritten.
func (s *Service) Index(ctx context.Context, kind collection.Kind, docs []domdoc.Document) (int, error) {
	if _, err := collection.Parse(string(kind)); err != nil {
		return 0, err
	}
	if len(docs) == 0 {
		return 0, nil
	}

	texts := make([]string, len(docs))
	for i := range docs {
		texts[i] = docs[i].Text()
	}
	vecs, err := domain.EmbedAll(ctx, s.docEmbed, texts)
	if err != nil {
		return 0, fmt.Errorf("encode %s documents: %w", kind, err)
	}

	withVecs := make([]domdoc.Document, len(docs))
	for i := range docs {
		withVecs[i] = docs[i].WithVector(vecs[i])
	}

	dim := s.dim
	if dim <= 0 {
		dim = len(vecs[0])
	}
	if err := s.repo.EnsureCollection(ctx, kind, dim); err != nil {
		return 0, fmt.Errorf("ensure collection %s: %w", kind, err)
	}
	if err := s.repo.Upsert(ctx, kind, withVecs); err != nil {
		return 0, fmt.Errorf("upsert %s: %w", kind, err)
	}

	metrics.IndexedDocumentsTotal.WithLabelValues(string(kind)).Add(float64(len(docs)))
	logger.FromContext(ctx).Info("Indexed documents",
		zap.String("collection", string(kind)),
		zap.Int("count", len(docs)),
	)
	return len(docs), nil
}

// Query coerces raw filters and returns up to limit candidates.
// With query text the nearest neighbours come back ascending by distance; without it every
// document passing the filters is listed in id order with distance 0 and no encoder call.
// Filters that cannot be coerced are dropped and logged, never rejected.
func (s *Service) Query(
	ctx context.Context, kind collection.Kind, query string, rawFilters map[string]any, limit int,
) ([]result.Result, error) {
	if _, err := collection.Parse(string(kind)); err != nil {
		return nil, err
	}

	expr, dropped := filter.Coerce(kind, rawFilters)
	s.reportDropped(ctx, kind, dropped)

	req, err := request.New(kind, query, expr, limit, s.limits)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	return s.Search(ctx, &req)
}

// Search runs an already validated request.
func (s *Service) Search(ctx context.Context, req *request.Request) ([]result.Result, error) {
	if req.IsListing() {
		metrics.QueriesTotal.WithLabelValues(string(req.Kind()), "list").Inc()
		results, err := s.repo.List(ctx, req.Kind(), req.Filters(), req.Limit())
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", req.Kind(), err)
		}
		return results, nil
	}

	metrics.QueriesTotal.WithLabelValues(string(req.Kind()), "knn").Inc()
	emb, err := s.qryEmbed.Embed(ctx, req.Query())
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	results, err := s.repo.SearchKNN(ctx, req.Kind(), emb.Embedding, req.Filters(), req.Limit())
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", req.Kind(), err)
	}
	return results, nil
}

// EmbedTexts encodes candidate texts with the document embedder, for scoring
// candidates whose stored vector was not returned.
func (s *Service) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	return domain.EmbedAll(ctx, s.docEmbed, texts) //nolint:wrapcheck // thin forwarder
}

func (s *Service) reportDropped(ctx context.Context, kind collection.Kind, dropped []filter.Dropped) {
	if len(dropped) == 0 {
		return
	}
	log := logger.FromContext(ctx)
	for _, d := range dropped {
		metrics.DroppedFiltersTotal.WithLabelValues(string(kind), d.Reason).Inc()
		log.Debug("Dropped filter",
			zap.String("collection", string(kind)),
			zap.String("key", d.Key),
			zap.Any("value", d.Value),
			zap.String("reason", d.Reason),
		)
	}
}
