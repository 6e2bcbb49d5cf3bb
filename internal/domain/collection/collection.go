package collection

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/travelrag/internal/domain"
)

// Kind names one of the three travel collections.
type Kind string

// Supported collections.
const (
	Hotels      Kind = "hotels"
	Attractions Kind = "attractions"
	Itineraries Kind = "itineraries"
)

// Metadata field names shared by storage, filters and the scorer.
const (
	FieldName      = "name"
	FieldType      = "type"
	FieldTheme     = "theme"
	FieldLocation  = "location"
	FieldAmenities = "amenities"
	FieldSeasons   = "seasons"
	FieldPrice     = "price"
	FieldRating    = "rating"
	FieldDuration  = "duration"
	FieldBudgetAvg = "budget_avg"
	FieldEntryFee  = "entry_fee"
)

// IndexType is the indexing type of a metadata field.
type IndexType string

// Field types.
const (
	// Tag fields are matched exactly (case-insensitive). Multi-valued tags are comma separated.
	Tag     IndexType = "tag"
	Numeric IndexType = "numeric"
)

// Field describes one indexed metadata field of a collection.
type Field struct {
	Name string
	Type IndexType
}

var schemas = map[Kind][]Field{
	Hotels: {
		{FieldPrice, Numeric},
		{FieldRating, Numeric},
		{FieldType, Tag},
		{FieldLocation, Tag},
		{FieldAmenities, Tag},
		{FieldSeasons, Tag},
	},
	Attractions: {
		{FieldDuration, Numeric},
		{FieldEntryFee, Numeric},
		{FieldType, Tag},
		{FieldLocation, Tag},
		{FieldAmenities, Tag},
		{FieldSeasons, Tag},
	},
	Itineraries: {
		{FieldDuration, Numeric},
		{FieldBudgetAvg, Numeric},
		{FieldTheme, Tag},
		{FieldLocation, Tag},
		{FieldSeasons, Tag},
	},
}

// All returns every collection in a stable order.
func All() []Kind {
	return []Kind{Hotels, Attractions, Itineraries}
}

// Parse resolves a collection name, case-insensitively.
func Parse(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := schemas[k]; !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownCollection, s)
	}
	return k, nil
}

// String implements fmt.Stringer.
func (k Kind) String() string { return string(k) }

// Schema returns the indexed metadata fields of the collection.
func (k Kind) Schema() []Field {
	fields := schemas[k]
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

// Lookup returns the schema field with the given name.
func (k Kind) Lookup(name string) (Field, bool) {
	for _, f := range schemas[k] {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// PreferenceCategory maps a collection onto the preference category its interactions
// are recorded under. Itinerary packages are learned as activities.
func (k Kind) PreferenceCategory() string {
	switch k {
	case Hotels:
		return "hotels"
	case Attractions:
		return "attractions"
	default:
		return "activities"
	}
}
