package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/travelrag/internal/domain/collection"
	"github.com/kailas-cloud/travelrag/internal/domain/search/filter"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed query text length.
	MaxQueryLength = 4096
	DefaultLimit   = 5
	MaxLimit       = 50
)

// Limits overrides the default and maximum result counts. Zero fields use the package defaults.
type Limits struct {
	Default int
	Max     int
}

func (l Limits) normalize() Limits {
	if l.Max <= 0 {
		l.Max = MaxLimit
	}
	if l.Default <= 0 {
		l.Default = DefaultLimit
	}
	if l.Default > l.Max {
		l.Default = l.Max
	}
	return l
}

// Request is a validated collection query.
type Request struct {
	kind    collection.Kind
	query   string
	filters filter.Expression
	limit   int
}

// New validates and normalizes query parameters.
// An empty query is valid and lists documents passing the filters.
// A non-positive limit falls back to the default; limits above the maximum are clamped.
func New(kind collection.Kind, query string, filters filter.Expression, limit int, lim Limits) (Request, error) {
	if _, err := collection.Parse(string(kind)); err != nil {
		return Request{}, err
	}
	query = strings.TrimSpace(query)
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}

	lim = lim.normalize()
	if limit <= 0 {
		limit = lim.Default
	}
	if limit > lim.Max {
		limit = lim.Max
	}

	return Request{kind: kind, query: query, filters: filters, limit: limit}, nil
}

// Kind returns the queried collection.
func (r *Request) Kind() collection.Kind { return r.kind }

// Query returns the trimmed query text.
func (r *Request) Query() string { return r.query }

// IsListing reports whether the request has no query text and only filters apply.
func (r *Request) IsListing() bool { return r.query == "" }

// Filters returns the pre-filter expression.
func (r *Request) Filters() filter.Expression { return r.filters }

// Limit returns the maximum number of results.
func (r *Request) Limit() int { return r.limit }
