package document

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/kailas-cloud/travelrag/internal/db"
	"github.com/kailas-cloud/travelrag/internal/domain/collection"
	domdoc "github.com/kailas-cloud/travelrag/internal/domain/document"
	"github.com/kailas-cloud/travelrag/internal/domain/search/filter"
	"github.com/kailas-cloud/travelrag/internal/domain/search/result"
)

// ListFetchLimit bounds how many hashes a filter-only listing loads before ordering by id.
const ListFetchLimit = 1000

// store is the consumer interface for documents (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error)
}

// Repo stores travel documents as hashes under one FT index per collection.
type Repo struct {
	store  store
	prefix string
	hnsw   HNSWConfig

	mu    sync.Mutex
	ready map[collection.Kind]bool
}

// New creates a document repository. prefix namespaces every key and index name.
func New(s store, prefix string) *Repo {
	return &Repo{
		store:  s,
		prefix: prefix,
		hnsw:   HNSWConfig{M: 16, EFConstruct: 200},
		ready:  make(map[collection.Kind]bool),
	}
}

// WithHNSW configures HNSW index parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	if cfg.M > 0 {
		r.hnsw.M = cfg.M
	}
	if cfg.EFConstruct > 0 {
		r.hnsw.EFConstruct = cfg.EFConstruct
	}
	return r
}

// EnsureCollection creates the FT index of a collection unless it already exists.
func (r *Repo) EnsureCollection(ctx context.Context, kind collection.Kind, vectorDim int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ready[kind] {
		return nil
	}

	name := r.indexName(kind)
	exists, err := r.store.IndexExists(ctx, name)
	if err != nil {
		return fmt.Errorf("check index %s: %w", name, err)
	}
	if !exists {
		def, err := buildIndex(name, r.keyPrefix(kind), kind, vectorDim, r.hnsw)
		if err != nil {
			return fmt.Errorf("build index %s: %w", name, err)
		}
		if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
			return fmt.Errorf("create index %s: %w", name, err)
		}
	}

	r.ready[kind] = true
	return nil
}

// Upsert writes documents in one pipelined round-trip. Existing ids are overwritten.
func (r *Repo) Upsert(ctx context.Context, kind collection.Kind, docs []domdoc.Document) error {
	if len(docs) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, len(docs))
	for i := range docs {
		items[i] = db.HashSetItem{
			Key:    r.docKey(kind, docs[i].ID()),
			Fields: buildHashFields(&docs[i]),
		}
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("upsert %s: %w", kind, err)
	}
	return nil
}

// SearchKNN returns the k nearest documents passing the filters, ascending by distance.
// A missing index yields no results.
func (r *Repo) SearchKNN(
	ctx context.Context, kind collection.Kind, vector []float32, filters filter.Expression, k int,
) ([]result.Result, error) {
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.indexName(kind),
		Filters:      filters,
		Vector:       vector,
		K:            k,
		ReturnFields: returnFields(kind),
	})
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("search knn %s: %w", kind, err)
	}

	results := r.parseEntries(kind, sr)
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance() < results[j].Distance()
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// List returns up to limit documents passing the filters, in id order, with distance 0.
func (r *Repo) List(
	ctx context.Context, kind collection.Kind, filters filter.Expression, limit int,
) ([]result.Result, error) {
	sr, err := r.store.SearchList(ctx, &db.ListQuery{
		IndexName:    r.indexName(kind),
		Prefix:       r.keyPrefix(kind),
		Filters:      filters,
		Limit:        ListFetchLimit,
		ReturnFields: returnFields(kind),
	})
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("search list %s: %w", kind, err)
	}

	results := r.parseEntries(kind, sr)
	for i := range results {
		results[i] = result.New(results[i].ID(), 0, results[i].Text(), results[i].Metadata(), results[i].Vector())
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID() < results[j].ID() })
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (r *Repo) parseEntries(kind collection.Kind, sr *db.SearchResult) []result.Result {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}
	prefix := r.keyPrefix(kind)
	results := make([]result.Result, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		id := strings.TrimPrefix(entry.Key, prefix)
		results = append(results, parseEntry(id, entry.Score, entry.Fields))
	}
	return results
}

func (r *Repo) indexName(kind collection.Kind) string {
	return r.prefix + "idx:" + string(kind)
}

func (r *Repo) keyPrefix(kind collection.Kind) string {
	return r.prefix + string(kind) + ":"
}

func (r *Repo) docKey(kind collection.Kind, id string) string {
	return r.keyPrefix(kind) + id
}
