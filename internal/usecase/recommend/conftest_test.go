package recommend

import (
	"context"
	"sync"
	"time"

	"github.com/kailas-cloud/travelrag/internal/domain/collection"
	"github.com/kailas-cloud/travelrag/internal/domain/search/result"
)

type queryCall struct {
	kind    collection.Kind
	query   string
	filters map[string]any
	limit   int
}

type mockRetriever struct {
	mu      sync.Mutex
	calls   []queryCall
	queryFn func(ctx context.Context, kind collection.Kind, query string, f map[string]any, limit int) ([]result.Result, error)
}

func (m *mockRetriever) Query(
	ctx context.Context, kind collection.Kind, query string, f map[string]any, limit int,
) ([]result.Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, queryCall{kind: kind, query: query, filters: f, limit: limit})
	m.mu.Unlock()
	if m.queryFn != nil {
		return m.queryFn(ctx, kind, query, f, limit)
	}
	return nil, nil
}

type mockScorer struct {
	scoreFn func(ctx context.Context, userID string, c []result.Result, category string) ([]float64, error)
}

func (m *mockScorer) Score(ctx context.Context, userID string, c []result.Result, category string) ([]float64, error) {
	return m.scoreFn(ctx, userID, c, category)
}

func fixedClock() time.Time { return time.Date(2026, time.October, 19, 15, 30, 0, 0, time.UTC) }
