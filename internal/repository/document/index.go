package document

import (
	"fmt"

	"github.com/kailas-cloud/travelrag/internal/db"
	"github.com/kailas-cloud/travelrag/internal/domain/collection"
	domdoc "github.com/kailas-cloud/travelrag/internal/domain/document"
)

// HNSWConfig HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// buildIndex creates the FT index definition of a collection from its schema.
// Tags use the list separator so multi-valued fields match per item.
func buildIndex(indexName, keyPrefix string, kind collection.Kind, vectorDim int, hnsw HNSWConfig) (*db.IndexDefinition, error) {
	if vectorDim <= 0 {
		return nil, fmt.Errorf("vector dimension must be positive, got %d", vectorDim)
	}

	b := db.NewIndex(indexName).Prefix(keyPrefix)
	for _, f := range kind.Schema() {
		switch f.Type {
		case collection.Tag:
			b.TagWithOpts(f.Name, domdoc.ListSeparator, false)
		case collection.Numeric:
			b.Numeric(f.Name)
		default:
			return nil, fmt.Errorf("unknown field type: %v", f.Type)
		}
	}
	b.VectorHNSW(fieldVector, "vector", vectorDim, db.DistanceCosine, hnsw.M, hnsw.EFConstruct)

	return b.Build()
}
