package document

import (
	"strconv"
	"strings"

	"github.com/kailas-cloud/travelrag/internal/domain/collection"
)

// ListSeparator joins multi-valued tag fields in flat storage.
const ListSeparator = ","

// Metadata is the typed, flat metadata of a travel document. Absent numeric values are nil.
// Type, Theme and Location may carry several ListSeparator-joined values; a tag filter
// matches any one of them.
type Metadata struct {
	Name      string   `json:"name,omitempty"`
	Type      string   `json:"type,omitempty"`
	Theme     string   `json:"theme,omitempty"`
	Location  string   `json:"location,omitempty"`
	Amenities []string `json:"amenities,omitempty"`
	Seasons   []string `json:"seasons,omitempty"` // lower-cased month or season names

	Price     *float64 `json:"price,omitempty"`
	Rating    *float64 `json:"rating,omitempty"`
	Duration  *float64 `json:"duration,omitempty"`
	BudgetAvg *float64 `json:"budget_avg,omitempty"`
	EntryFee  *float64 `json:"entry_fee,omitempty"`
}

// Clone returns a deep copy.
func (m Metadata) Clone() Metadata {
	c := m
	c.Amenities = cloneStrings(m.Amenities)
	c.Seasons = cloneStrings(m.Seasons)
	c.Price = cloneFloat(m.Price)
	c.Rating = cloneFloat(m.Rating)
	c.Duration = cloneFloat(m.Duration)
	c.BudgetAvg = cloneFloat(m.BudgetAvg)
	c.EntryFee = cloneFloat(m.EntryFee)
	return c
}

// Tags returns the non-empty string fields, lists joined with ListSeparator.
func (m Metadata) Tags() map[string]string {
	out := make(map[string]string, 6)
	put := func(k, v string) {
		if v != "" {
			out[k] = v
		}
	}
	put(collection.FieldName, m.Name)
	put(collection.FieldType, JoinList(SplitList(m.Type)))
	put(collection.FieldTheme, JoinList(SplitList(m.Theme)))
	put(collection.FieldLocation, JoinList(SplitList(m.Location)))
	put(collection.FieldAmenities, JoinList(m.Amenities))
	put(collection.FieldSeasons, JoinList(m.Seasons))
	return out
}

// Numerics returns the present numeric fields.
func (m Metadata) Numerics() map[string]float64 {
	out := make(map[string]float64, 5)
	put := func(k string, v *float64) {
		if v != nil {
			out[k] = *v
		}
	}
	put(collection.FieldPrice, m.Price)
	put(collection.FieldRating, m.Rating)
	put(collection.FieldDuration, m.Duration)
	put(collection.FieldBudgetAvg, m.BudgetAvg)
	put(collection.FieldEntryFee, m.EntryFee)
	return out
}

// TagValues returns the values of a tag field; multi-valued fields yield one entry per item.
func (m Metadata) TagValues(name string) []string {
	switch name {
	case collection.FieldName:
		return single(m.Name)
	case collection.FieldType:
		return SplitList(m.Type)
	case collection.FieldTheme:
		return SplitList(m.Theme)
	case collection.FieldLocation:
		return SplitList(m.Location)
	case collection.FieldAmenities:
		return m.Amenities
	case collection.FieldSeasons:
		return m.Seasons
	}
	return nil
}

// Numeric returns a numeric field value.
func (m Metadata) Numeric(name string) (float64, bool) {
	var p *float64
	switch name {
	case collection.FieldPrice:
		p = m.Price
	case collection.FieldRating:
		p = m.Rating
	case collection.FieldDuration:
		p = m.Duration
	case collection.FieldBudgetAvg:
		p = m.BudgetAvg
	case collection.FieldEntryFee:
		p = m.EntryFee
	}
	if p == nil {
		return 0, false
	}
	return *p, true
}

// MetadataFromFields rebuilds Metadata from flat string fields, as stored in a hash.
// Unknown keys are ignored; unparsable numbers are treated as absent.
func MetadataFromFields(fields map[string]string) Metadata {
	var m Metadata
	for k, v := range fields {
		switch k {
		case collection.FieldName:
			m.Name = v
		case collection.FieldType:
			m.Type = v
		case collection.FieldTheme:
			m.Theme = v
		case collection.FieldLocation:
			m.Location = v
		case collection.FieldAmenities:
			m.Amenities = SplitList(v)
		case collection.FieldSeasons:
			m.Seasons = SplitList(v)
		case collection.FieldPrice:
			m.Price = parseFloat(v)
		case collection.FieldRating:
			m.Rating = parseFloat(v)
		case collection.FieldDuration:
			m.Duration = parseFloat(v)
		case collection.FieldBudgetAvg:
			m.BudgetAvg = parseFloat(v)
		case collection.FieldEntryFee:
			m.EntryFee = parseFloat(v)
		}
	}
	return m
}

// SplitList splits a ListSeparator-joined value, trimming blanks.
func SplitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ListSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// JoinList joins items with ListSeparator. Separators inside an item become spaces.
func JoinList(items []string) string {
	clean := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(strings.ReplaceAll(it, ListSeparator, " "))
		if it != "" {
			clean = append(clean, it)
		}
	}
	return strings.Join(clean, ListSeparator)
}

func single(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}

func parseFloat(s string) *float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	c := make([]string, len(s))
	copy(c, s)
	return c
}

// FormatFloat renders a numeric field the way it is stored.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
