package retrieval

import (
	"context"

	"github.com/kailas-cloud/travelrag/internal/domain"
	"github.com/kailas-cloud/travelrag/internal/domain/collection"
	domdoc "github.com/kailas-cloud/travelrag/internal/domain/document"
	"github.com/kailas-cloud/travelrag/internal/domain/search/filter"
	"github.com/kailas-cloud/travelrag/internal/domain/search/request"
	"github.com/kailas-cloud/travelrag/internal/domain/search/result"
)

type mockRepo struct {
	ensureFn func(ctx context.Context, kind collection.Kind, dim int) error
	upsertFn func(ctx context.Context, kind collection.Kind, docs []domdoc.Document) error
	knnFn    func(ctx context.Context, kind collection.Kind, vec []float32, f filter.Expression, k int) ([]result.Result, error)
	listFn   func(ctx context.Context, kind collection.Kind, f filter.Expression, limit int) ([]result.Result, error)
}

func (m *mockRepo) EnsureCollection(ctx context.Context, kind collection.Kind, dim int) error {
	if m.ensureFn != nil {
		return m.ensureFn(ctx, kind, dim)
	}
	return nil
}

func (m *mockRepo) Upsert(ctx context.Context, kind collection.Kind, docs []domdoc.Document) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, kind, docs)
	}
	return nil
}

func (m *mockRepo) SearchKNN(
	ctx context.Context, kind collection.Kind, vec []float32, f filter.Expression, k int,
) ([]result.Result, error) {
	if m.knnFn != nil {
		return m.knnFn(ctx, kind, vec, f, k)
	}
	return nil, nil
}

func (m *mockRepo) List(
	ctx context.Context, kind collection.Kind, f filter.Expression, limit int,
) ([]result.Result, error) {
	if m.listFn != nil {
		return m.listFn(ctx, kind, f, limit)
	}
	return nil, nil
}

type mockEmbedder struct {
	vec        []float32
	err        error
	calls      int
	batchCalls int
	texts      []string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls++
	m.texts = append(m.texts, text)
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec}, nil
}

func (m *mockEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.batchCalls++
	m.texts = append(m.texts, texts...)
	if m.err != nil {
		return domain.BatchEmbeddingResult{}, m.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = m.vec
	}
	return domain.BatchEmbeddingResult{Embeddings: out}, nil
}

func newTestService(repo *mockRepo, emb *mockEmbedder) *Service {
	return New(repo, emb, emb, 3, request.Limits{})
}
