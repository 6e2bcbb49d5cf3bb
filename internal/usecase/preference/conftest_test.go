package preference

import (
	"context"
	"sync"
	"time"

	"github.com/kailas-cloud/travelrag/internal/domain"
	"github.com/kailas-cloud/travelrag/internal/domain/preference"
)

type mockStore struct {
	mu       sync.Mutex
	profiles map[string]*preference.Profile
	saves    int
	getFn    func(ctx context.Context, userID string) (*preference.Profile, error)
	saveFn   func(ctx context.Context, p *preference.Profile) error
}

func newMockStore() *mockStore {
	return &mockStore{profiles: make(map[string]*preference.Profile)}
}

func (m *mockStore) Get(ctx context.Context, userID string) (*preference.Profile, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p.Clone(), nil
}

func (m *mockStore) Save(ctx context.Context, p *preference.Profile) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.profiles[p.UserID] = p.Clone()
	return nil
}

// mockEncoder returns a fixed vector per text, fallback for unknown texts.
type mockEncoder struct {
	mu       sync.Mutex
	vectors  map[string][]float32
	fallback []float32
	err      error
	calls    int
	texts    [][]string
}

func (m *mockEncoder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.texts = append(m.texts, texts)
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := m.vectors[t]; ok {
			out[i] = v
		} else {
			out[i] = m.fallback
		}
	}
	return out, nil
}

func october() time.Time { return time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC) }

func newTestService(store *mockStore, enc *mockEncoder) *Service {
	return New(store, enc, WithClock(october))
}

func ratingOf(v float64) *float64 { return &v }
