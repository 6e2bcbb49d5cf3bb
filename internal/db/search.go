package db

import "github.com/kailas-cloud/travelrag/internal/domain/search/filter"

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	Filters      filter.Expression
	Vector       []float32
	K            int
	ReturnFields []string
}

// ListQuery is the input for a filter-only listing without a query vector.
// Prefix is the key prefix of the indexed hashes, used by backends that list by SCAN.
type ListQuery struct {
	IndexName    string
	Prefix       string
	Filters      filter.Expression
	Limit        int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
// Score is the raw vector distance reported by the index (cosine distance for cosine indexes).
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
