package document

import (
	"context"
	"testing"

	"github.com/kailas-cloud/travelrag/internal/db"
	"github.com/kailas-cloud/travelrag/internal/domain/collection"
	domdoc "github.com/kailas-cloud/travelrag/internal/domain/document"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetMultiFn   func(ctx context.Context, items []db.HashSetItem) error
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	indexExistsFn func(ctx context.Context, name string) (bool, error)
	searchKNNFn   func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	searchListFn  func(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error)
}

func (m *mockStore) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if m.hsetMultiFn != nil {
		return m.hsetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error) {
	if m.searchListFn != nil {
		return m.searchListFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, "travelrag:"), ms
}

func testHotel(t *testing.T, id string, price float64) domdoc.Document {
	t.Helper()
	doc, err := domdoc.New(id, collection.Hotels, "Seaside stay "+id, domdoc.Metadata{
		Name:      "Hotel " + id,
		Type:      "resort",
		Location:  "North Goa",
		Amenities: []string{"pool", "spa"},
		Seasons:   []string{"winter"},
		Price:     domdoc.Float(price),
		Rating:    domdoc.Float(4.5),
	})
	if err != nil {
		t.Fatalf("build document: %v", err)
	}
	return doc.WithVector([]float32{0.1, 0.2, 0.3})
}
