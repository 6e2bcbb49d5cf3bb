package result

import "github.com/kailas-cloud/travelrag/internal/domain/document"

// Result is a single candidate returned by a collection query.
type Result struct {
	id       string
	distance float64
	text     string
	metadata document.Metadata
	vector   []float32
}

// New creates a candidate result.
func New(id string, distance float64, text string, md document.Metadata, vector []float32) Result {
	return Result{id: id, distance: distance, text: text, metadata: md, vector: vector}
}

// ID returns the document identifier.
func (r *Result) ID() string { return r.id }

// Distance returns the vector distance to the query (lower is closer, 0 for listings).
func (r *Result) Distance() float64 { return r.distance }

// Text returns the document text.
func (r *Result) Text() string { return r.text }

// Metadata returns the document metadata.
func (r *Result) Metadata() document.Metadata { return r.metadata }

// Vector returns the stored embedding, nil when the backend did not return it.
func (r *Result) Vector() []float32 { return r.vector }

// WithVector returns a copy carrying the given embedding.
func (r *Result) WithVector(v []float32) Result {
	c := *r
	c.vector = v
	return c
}
