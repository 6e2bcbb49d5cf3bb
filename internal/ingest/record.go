package ingest

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/travelrag/internal/domain/document"
)

// record is a loosely typed raw JSON object. Accessors never fail: missing or
// mistyped values come back empty.
type record map[string]any

func (r record) obj(key string) record {
	if m, ok := r[key].(map[string]any); ok {
		return m
	}
	return nil
}

func (r record) str(keys ...string) string {
	for _, k := range keys {
		switch v := r[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case json.Number:
			return v.String()
		case float64:
			return document.FormatFloat(v)
		}
	}
	return ""
}

// num returns the first key holding a number or a numeric string.
func (r record) num(keys ...string) *float64 {
	for _, k := range keys {
		switch v := r[k].(type) {
		case json.Number:
			if f, err := v.Float64(); err == nil {
				return &f
			}
		case float64:
			return &v
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

// list returns string items of an array, or a single-string value as a one-item list.
func (r record) list(keys ...string) []string {
	for _, k := range keys {
		switch v := r[k].(type) {
		case []any:
			out := make([]string, 0, len(v))
			for _, it := range v {
				if s := scalar(it); s != "" {
					out = append(out, s)
				}
			}
			if len(out) > 0 {
				return out
			}
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return []string{s}
			}
		}
	}
	return nil
}

func (r record) items(key string) []any {
	v, _ := r[key].([]any)
	return v
}

func scalar(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return x.String()
	case float64:
		return document.FormatFloat(x)
	case bool:
		return strconv.FormatBool(x)
	}
	return ""
}

func orNA(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return document.FormatFloat(*v)
}

func join(items []string) string { return strings.Join(items, ", ") }

func lowerAll(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = strings.ToLower(s)
	}
	return out
}

func lines(parts ...string) string {
	return strings.Join(parts, "\n")
}

func line(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
