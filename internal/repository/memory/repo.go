// Package memory is an in-process document store with brute-force cosine search.
// It backs the "memory" database driver and local development without Redis.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/kailas-cloud/travelrag/internal/domain"
	"github.com/kailas-cloud/travelrag/internal/domain/collection"
	domdoc "github.com/kailas-cloud/travelrag/internal/domain/document"
	"github.com/kailas-cloud/travelrag/internal/domain/search/filter"
	"github.com/kailas-cloud/travelrag/internal/domain/search/result"
	"github.com/kailas-cloud/travelrag/internal/domain/vecmath"
)

type bucket struct {
	dim  int
	docs map[string]domdoc.Document
}

// Repo keeps every collection in memory. Safe for concurrent use.
type Repo struct {
	mu      sync.RWMutex
	buckets map[collection.Kind]*bucket
	path    string
}

// New creates an empty store. When snapshotPath is non-empty, Load and Save persist to it.
func New(snapshotPath string) *Repo {
	return &Repo{
		buckets: make(map[collection.Kind]*bucket),
		path:    snapshotPath,
	}
}

// EnsureCollection registers a collection with its vector dimension.
func (r *Repo) EnsureCollection(_ context.Context, kind collection.Kind, vectorDim int) error {
	if vectorDim <= 0 {
		return fmt.Errorf("vector dimension must be positive, got %d", vectorDim)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.buckets[kind]
	if !ok {
		r.buckets[kind] = &bucket{dim: vectorDim, docs: make(map[string]domdoc.Document)}
		return nil
	}
	if b.dim == 0 {
		b.dim = vectorDim
		return nil
	}
	if b.dim != vectorDim {
		return fmt.Errorf("collection %s has dim %d, got %d: %w", kind, b.dim, vectorDim, domain.ErrVectorDimMismatch)
	}
	return nil
}

// Upsert stores documents, overwriting existing ids.
func (r *Repo) Upsert(_ context.Context, kind collection.Kind, docs []domdoc.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.buckets[kind]
	if !ok {
		b = &bucket{docs: make(map[string]domdoc.Document)}
		r.buckets[kind] = b
	}

	for i := range docs {
		n := len(docs[i].Vector())
		if b.dim == 0 {
			b.dim = n
		}
		if n != b.dim {
			return fmt.Errorf("document %s has dim %d, want %d: %w",
				docs[i].ID(), n, b.dim, domain.ErrVectorDimMismatch)
		}
	}
	for i := range docs {
		b.docs[docs[i].ID()] = docs[i]
	}
	return nil
}

// SearchKNN scores every document passing the filters and returns the k closest.
// Ties keep id order.
func (r *Repo) SearchKNN(
	_ context.Context, kind collection.Kind, vector []float32, filters filter.Expression, k int,
) ([]result.Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.buckets[kind]
	if !ok || len(b.docs) == 0 {
		return nil, nil
	}
	if len(vector) != b.dim {
		return nil, fmt.Errorf("query has dim %d, collection %s has %d: %w",
			len(vector), kind, b.dim, domain.ErrVectorDimMismatch)
	}

	results := make([]result.Result, 0, len(b.docs))
	for _, id := range sortedIDs(b) {
		doc := b.docs[id]
		if !filters.Matches(doc.Metadata()) {
			continue
		}
		dist := max(vecmath.CosineDistance(vector, doc.Vector()), 0)
		results = append(results, toResult(&doc, dist))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance() < results[j].Distance()
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// List returns up to limit documents passing the filters in id order.
func (r *Repo) List(
	_ context.Context, kind collection.Kind, filters filter.Expression, limit int,
) ([]result.Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.buckets[kind]
	if !ok {
		return nil, nil
	}

	var results []result.Result
	for _, id := range sortedIDs(b) {
		if len(results) >= limit {
			break
		}
		doc := b.docs[id]
		if filters.Matches(doc.Metadata()) {
			results = append(results, toResult(&doc, 0))
		}
	}
	return results, nil
}

// Count returns the number of documents in a collection.
func (r *Repo) Count(kind collection.Kind) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if b, ok := r.buckets[kind]; ok {
		return len(b.docs)
	}
	return 0
}

// Ping always succeeds.
func (r *Repo) Ping(context.Context) error { return nil }

func sortedIDs(b *bucket) []string {
	ids := make([]string, 0, len(b.docs))
	for id := range b.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func toResult(doc *domdoc.Document, distance float64) result.Result {
	return result.New(doc.ID(), distance, doc.Text(), doc.Metadata().Clone(), doc.Vector())
}

// --- snapshot ---

type snapshot struct {
	Collections map[collection.Kind]snapshotBucket `json:"collections"`
	SavedAt     time.Time                          `json:"saved_at"`
}

type snapshotBucket struct {
	Dim  int           `json:"dim"`
	Docs []snapshotDoc `json:"docs"`
}

type snapshotDoc struct {
	ID       string          `json:"id"`
	Text     string          `json:"text"`
	Metadata domdoc.Metadata `json:"metadata"`
	Vector   []float32       `json:"vector"`
}

// Load restores the snapshot file. A missing file or empty path is not an error.
func (r *Repo) Load() error {
	if r.path == "" {
		return nil
	}

	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}

	buckets := make(map[collection.Kind]*bucket, len(snap.Collections))
	for kind, sb := range snap.Collections {
		if _, err := collection.Parse(string(kind)); err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
		b := &bucket{dim: sb.Dim, docs: make(map[string]domdoc.Document, len(sb.Docs))}
		for _, d := range sb.Docs {
			b.docs[d.ID] = domdoc.Reconstruct(d.ID, kind, d.Text, d.Metadata, d.Vector)
		}
		buckets[kind] = b
	}

	r.mu.Lock()
	r.buckets = buckets
	r.mu.Unlock()
	return nil
}

// Save writes every collection to the snapshot file. No-op without a path.
func (r *Repo) Save() error {
	if r.path == "" {
		return nil
	}

	r.mu.RLock()
	snap := snapshot{
		Collections: make(map[collection.Kind]snapshotBucket, len(r.buckets)),
		SavedAt:     time.Now().UTC(),
	}
	for kind, b := range r.buckets {
		sb := snapshotBucket{Dim: b.dim, Docs: make([]snapshotDoc, 0, len(b.docs))}
		for _, id := range sortedIDs(b) {
			doc := b.docs[id]
			sb.Docs = append(sb.Docs, snapshotDoc{
				ID: doc.ID(), Text: doc.Text(), Metadata: doc.Metadata(), Vector: doc.Vector(),
			})
		}
		snap.Collections[kind] = sb
	}
	r.mu.RUnlock()

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
