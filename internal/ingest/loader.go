// Package ingest turns raw travel JSON into indexable documents.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/travelrag/internal/domain"
	"github.com/kailas-cloud/travelrag/internal/domain/collection"
	"github.com/kailas-cloud/travelrag/internal/domain/document"
	"github.com/kailas-cloud/travelrag/internal/logger"
)

// Namespace seeds deterministic ids for records without one.
var Namespace = uuid.MustParse("6f1c2a43-8d0e-4d59-9a57-3c1f0e2b7d64")

// rootKeys are the top-level keys holding the record array, tried in order.
var rootKeys = map[collection.Kind][]string{
	collection.Hotels:      {"hotels"},
	collection.Attractions: {"attractions"},
	collection.Itineraries: {"templates", "itineraries"},
}

// Skipped describes a record that could not become a document.
type Skipped struct {
	Index  int
	Reason string
}

// Parse decodes a raw collection payload. The payload is either an object holding the
// record array under the collection's key or a bare array. Bad records are skipped.
// A repeated id replaces the earlier document in place and the earlier record is
// reported as skipped.
func Parse(kind collection.Kind, data []byte) ([]document.Document, []Skipped, error) {
	build, ok := builders[kind]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", domain.ErrUnknownCollection, kind)
	}

	raw, err := recordsOf(kind, data)
	if err != nil {
		return nil, nil, err
	}

	docs := make([]document.Document, 0, len(raw))
	var skipped []Skipped
	type slot struct{ pos, src int }
	seen := make(map[string]slot, len(raw))
	for i, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			skipped = append(skipped, Skipped{Index: i, Reason: "record is not an object"})
			continue
		}
		r := record(m)

		text, md := build(r)
		id := recordID(kind, r, md.Name)
		if id == "" {
			skipped = append(skipped, Skipped{Index: i, Reason: "record has neither id nor name"})
			continue
		}

		d, err := document.New(id, kind, text, md)
		if err != nil {
			skipped = append(skipped, Skipped{Index: i, Reason: err.Error()})
			continue
		}
		if prev, dup := seen[id]; dup {
			skipped = append(skipped, Skipped{
				Index:  prev.src,
				Reason: fmt.Sprintf("duplicate id %s replaced by record %d", id, i),
			})
			docs[prev.pos] = d
			seen[id] = slot{pos: prev.pos, src: i}
			continue
		}
		seen[id] = slot{pos: len(docs), src: i}
		docs = append(docs, d)
	}
	return docs, skipped, nil
}

func recordsOf(kind collection.Kind, data []byte) ([]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("%w: decode %s payload: %w", domain.ErrInvalidInput, kind, err)
	}

	switch v := root.(type) {
	case []any:
		return v, nil
	case map[string]any:
		for _, k := range rootKeys[kind] {
			if arr, ok := v[k].([]any); ok && len(arr) > 0 {
				return arr, nil
			}
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %s payload must be an object or an array", domain.ErrInvalidInput, kind)
	}
}

// recordID keeps a usable source id, otherwise derives a UUIDv5 from kind and name.
func recordID(kind collection.Kind, r record, name string) string {
	if id := r.str("id"); document.ValidID(id) {
		return id
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ""
	}
	return uuid.NewSHA1(Namespace, []byte(string(kind)+":"+name)).String()
}

// LoadFile reads and parses a raw collection file.
func LoadFile(kind collection.Kind, path string) ([]document.Document, []Skipped, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(kind, data)
}

// Indexer writes parsed documents into a collection.
type Indexer interface {
	Index(ctx context.Context, kind collection.Kind, docs []document.Document) (int, error)
}

// IndexFiles loads and indexes every configured file concurrently. Empty paths are skipped.
// Returns the number of indexed documents per collection.
func IndexFiles(ctx context.Context, idx Indexer, paths map[collection.Kind]string) (map[collection.Kind]int, error) {
	kinds := collection.All()
	counts := make([]int, len(kinds))

	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		path := strings.TrimSpace(paths[kind])
		if path == "" {
			continue
		}
		g.Go(func() error {
			docs, skipped, err := LoadFile(kind, path)
			if err != nil {
				return fmt.Errorf("load %s: %w", kind, err)
			}
			LogSkipped(gctx, kind, skipped)

			n, err := idx.Index(gctx, kind, docs)
			if err != nil {
				return fmt.Errorf("index %s: %w", kind, err)
			}
			counts[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err //nolint:wrapcheck // wrapped per collection
	}

	out := make(map[collection.Kind]int, len(kinds))
	for i, kind := range kinds {
		if strings.TrimSpace(paths[kind]) != "" {
			out[kind] = counts[i]
		}
	}
	return out, nil
}

// LogSkipped reports skipped records at warn level.
func LogSkipped(ctx context.Context, kind collection.Kind, skipped []Skipped) {
	if len(skipped) == 0 {
		return
	}
	log := logger.FromContext(ctx)
	for _, s := range skipped {
		log.Warn("Skipped raw record",
			zap.String("collection", string(kind)),
			zap.Int("index", s.Index),
			zap.String("reason", s.Reason),
		)
	}
}
