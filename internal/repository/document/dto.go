package document

import (
	"github.com/kailas-cloud/travelrag/internal/db/redis"
	"github.com/kailas-cloud/travelrag/internal/domain/collection"
	domdoc "github.com/kailas-cloud/travelrag/internal/domain/document"
	"github.com/kailas-cloud/travelrag/internal/domain/search/result"
)

// Reserved hash fields.
const (
	fieldContent = "__content"
	fieldVector  = "__vector"
)

// buildHashFields flattens a document into HSET fields.
func buildHashFields(doc *domdoc.Document) map[string]string {
	md := doc.Metadata()
	tags := md.Tags()
	nums := md.Numerics()

	m := make(map[string]string, 2+len(tags)+len(nums))
	m[fieldContent] = doc.Text()
	m[fieldVector] = redis.VectorToBytes(doc.Vector())
	for k, v := range tags {
		m[k] = v
	}
	for k, v := range nums {
		m[k] = domdoc.FormatFloat(v)
	}
	return m
}

// parseEntry rebuilds a candidate from hash fields.
func parseEntry(id string, distance float64, fields map[string]string) result.Result {
	var vector []float32
	if raw, ok := fields[fieldVector]; ok {
		vector = redis.BytesToVector(raw)
	}
	return result.New(id, distance, fields[fieldContent], domdoc.MetadataFromFields(fields), vector)
}

// returnFields lists every hash field a candidate needs.
func returnFields(kind collection.Kind) []string {
	schema := kind.Schema()
	out := make([]string, 0, len(schema)+3)
	out = append(out, fieldContent, fieldVector, collection.FieldName)
	for _, f := range schema {
		out = append(out, f.Name)
	}
	return out
}
