// Package valkey adapts the rueidis store to valkey-search, which cannot run FT.SEARCH
// without a KNN clause. Filter-only listings fall back to SCAN + HGETALL.
package valkey

import (
	"context"
	"fmt"
	"sort"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/travelrag/internal/db"
	"github.com/kailas-cloud/travelrag/internal/db/redis"
	"github.com/kailas-cloud/travelrag/internal/domain/document"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Store is a redis.Store with a SCAN-based listing path.
type Store struct {
	*redis.Store
}

// NewStore creates a Valkey store via rueidis.
func NewStore(cfg redis.Config) (*Store, error) {
	client, err := redis.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Store: redis.NewStoreFromClient(client)}, nil
}

// NewStoreForTest creates a Store with the provided rueidis client (test-only).
func NewStoreForTest(c rueidis.Client) *Store {
	return &Store{Store: redis.NewStoreFromClient(c)}
}

// SearchList scans the key prefix, loads every hash and applies the filters in memory.
// Keys are returned in lexical order; Total is the number of matching documents.
func (s *Store) SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error) {
	if q.Prefix == "" {
		return nil, fmt.Errorf("prefix is required")
	}
	if q.Limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}

	keys, err := s.Scan(ctx, q.Prefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan for list: %w", err)
	}
	if len(keys) == 0 {
		return &db.SearchResult{}, nil
	}
	sort.Strings(keys) // deterministic ordering

	hashes, err := s.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load for list: %w", err)
	}

	var (
		total   int
		entries []db.SearchEntry
	)
	for i, fields := range hashes {
		if len(fields) == 0 {
			continue // deleted between SCAN and HGETALL
		}
		if !q.Filters.Matches(document.MetadataFromFields(fields)) {
			continue
		}
		total++
		if len(entries) < q.Limit {
			entries = append(entries, db.SearchEntry{Key: keys[i], Fields: project(fields, q.ReturnFields)})
		}
	}

	return &db.SearchResult{Total: total, Entries: entries}, nil
}

func project(fields map[string]string, keep []string) map[string]string {
	if len(keep) == 0 {
		return fields
	}
	out := make(map[string]string, len(keep))
	for _, k := range keep {
		if v, ok := fields[k]; ok {
			out[k] = v
		}
	}
	return out
}
