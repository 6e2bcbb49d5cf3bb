package filter

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/kailas-cloud/travelrag/internal/domain/collection"
)

type comparison int

const (
	lessOrEqual comparison = iota
	greaterOrEqual
	equalInt
	tagEqual
)

type shortcut struct {
	field string
	cmp   comparison
}

// Request keys accepted per collection. Tag keys apply to any collection whose schema has the field.
var shortcuts = map[collection.Kind]map[string]shortcut{
	collection.Hotels: {
		"max_price":  {collection.FieldPrice, lessOrEqual},
		"min_rating": {collection.FieldRating, greaterOrEqual},
	},
	collection.Attractions: {
		"max_entry_fee": {collection.FieldEntryFee, lessOrEqual},
		"max_duration":  {collection.FieldDuration, lessOrEqual},
	},
	collection.Itineraries: {
		"duration":   {collection.FieldDuration, equalInt},
		"max_budget": {collection.FieldBudgetAvg, lessOrEqual},
	},
}

var tagKeys = map[string]struct{}{
	collection.FieldType:     {},
	collection.FieldTheme:    {},
	collection.FieldLocation: {},
}

// Dropped describes a raw filter entry that was ignored.
type Dropped struct {
	Key    string
	Value  any
	Reason string
}

// Drop reasons.
const (
	ReasonUnknownKey = "unknown filter key"
	ReasonNotNumeric = "value is not numeric"
	ReasonNotString  = "value is not a non-empty string"
)

// Coerce turns request-level filter keys into an Expression for the given collection.
// Entries that cannot be applied are returned as Dropped instead of failing the query,
// so a malformed filter behaves exactly as if it were absent.
func Coerce(kind collection.Kind, raw map[string]any) (Expression, []Dropped) {
	if len(raw) == 0 {
		return Expression{}, nil
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var (
		conds   []Condition
		dropped []Dropped
	)
	drop := func(k string, v any, reason string) {
		dropped = append(dropped, Dropped{Key: k, Value: v, Reason: reason})
	}

	for _, k := range keys {
		v := raw[k]
		if v == nil {
			continue
		}

		if sc, ok := shortcuts[kind][k]; ok {
			n, ok := ToFloat(v)
			if !ok {
				drop(k, v, ReasonNotNumeric)
				continue
			}
			conds = append(conds, numericCondition(sc, n))
			continue
		}

		if _, ok := tagKeys[k]; ok {
			if f, ok := kind.Lookup(k); ok && f.Type == collection.Tag {
				s, ok := v.(string)
				s = strings.TrimSpace(s)
				if !ok || s == "" {
					drop(k, v, ReasonNotString)
					continue
				}
				conds = append(conds, Condition{key: k, match: s})
				continue
			}
		}

		drop(k, v, ReasonUnknownKey)
	}

	if len(conds) > MaxConditions {
		conds = conds[:MaxConditions]
	}
	return Expression{must: conds}, dropped
}

func numericCondition(sc shortcut, n float64) Condition {
	var r Range
	switch sc.cmp {
	case lessOrEqual:
		r.lte = &n
	case greaterOrEqual:
		r.gte = &n
	case equalInt:
		t := math.Trunc(n)
		r.gte, r.lte = &t, &t
	}
	return Condition{key: sc.field, rangeExpr: &r}
}

// ToFloat coerces JSON numbers, Go numeric types and numeric strings to a finite float64.
// Booleans, non-numeric strings and composite values do not coerce.
func ToFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		p, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = p
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = p
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
