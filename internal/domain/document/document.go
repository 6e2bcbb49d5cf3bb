package document

import (
	"fmt"
	"regexp"

	"github.com/kailas-cloud/travelrag/internal/domain/collection"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// MaxTextSize is the maximum denormalized text size in bytes.
const MaxTextSize = 163840 // 160KB

// Document is an indexed travel entry (immutable value object).
type Document struct {
	id       string
	kind     collection.Kind
	text     string
	metadata Metadata
	vector   []float32
}

// ValidID reports whether id can be used as a storage key suffix.
func ValidID(id string) bool {
	return id != "" && len(id) <= 256 && idRegex.MatchString(id)
}

// New validates and creates a Document without an embedding.
func New(id string, kind collection.Kind, text string, md Metadata) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("document ID is required")
	}
	if !ValidID(id) {
		return Document{}, fmt.Errorf("document ID %q must be 1-256 chars of letters, digits, '.', '_' or '-'", id)
	}
	if _, err := collection.Parse(string(kind)); err != nil {
		return Document{}, err
	}
	if text == "" {
		return Document{}, fmt.Errorf("text is required")
	}
	if len(text) > MaxTextSize {
		return Document{}, fmt.Errorf("text too large (max %d bytes)", MaxTextSize)
	}

	return Document{id: id, kind: kind, text: text, metadata: md.Clone()}, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(id string, kind collection.Kind, text string, md Metadata, vector []float32) Document {
	return Document{id: id, kind: kind, text: text, metadata: md, vector: vector}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Kind returns the owning collection.
func (d *Document) Kind() collection.Kind { return d.kind }

// Text returns the denormalized text that is embedded.
func (d *Document) Text() string { return d.text }

// Metadata returns the typed metadata.
func (d *Document) Metadata() Metadata { return d.metadata }

// Vector returns the embedding vector.
func (d *Document) Vector() []float32 { return d.vector }

// WithVector returns a copy with the given vector set.
func (d *Document) WithVector(v []float32) Document {
	return Document{id: d.id, kind: d.kind, text: d.text, metadata: d.metadata, vector: v}
}
