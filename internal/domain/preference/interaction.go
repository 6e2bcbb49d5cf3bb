package preference

import (
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/travelrag/internal/domain"
)

// Preference categories used for category vectors.
const (
	CategoryHotels      = "hotels"
	CategoryAttractions = "attractions"
	CategoryActivities  = "activities"
)

// Categories lists every category that gets a rating-weighted vector.
var Categories = []string{CategoryHotels, CategoryAttractions, CategoryActivities}

// Rating bounds.
const (
	MinRating = 0.0
	MaxRating = 5.0
)

var groupTypes = map[string]struct{}{
	"solo": {}, "couple": {}, "family": {}, "friends": {}, "business": {},
}

var seasonNames = func() map[string]struct{} {
	m := map[string]struct{}{"summer": {}, "monsoon": {}, "winter": {}}
	for mo := time.January; mo <= time.December; mo++ {
		m[strings.ToLower(mo.String())] = struct{}{}
	}
	return m
}()

// Interaction is one user event. Every field is optional.
type Interaction struct {
	Query    string   `json:"query,omitempty"`
	ItemName string   `json:"item_name,omitempty"`
	Category string   `json:"category,omitempty"`
	Rating   *float64 `json:"rating,omitempty"`
}

// Rated reports whether the interaction contributes to its category vector.
// A zero rating counts as unrated.
func (i Interaction) Rated() bool {
	return i.Rating != nil && *i.Rating != 0 && strings.TrimSpace(i.ItemName) != ""
}

// Fields are declared profile attributes sent with an interaction batch.
type Fields struct {
	Interests           []string `json:"interests,omitempty"`
	TravelStyle         string   `json:"travel_style,omitempty"`
	PreferredActivities []string `json:"preferred_activities,omitempty"`
	Season              string   `json:"season,omitempty"`
	GroupType           string   `json:"group_type,omitempty"`
	SpecialRequirements []string `json:"special_requirements,omitempty"`
	PreferredAmenities  []string `json:"preferred_amenities,omitempty"`
}

// Validate checks an interaction batch before any state is touched.
func Validate(userID string, interactions []Interaction, f Fields) error {
	if strings.TrimSpace(userID) == "" {
		return domain.NewValidationError("user_id", "is required")
	}
	for i, it := range interactions {
		if it.Rating != nil && (*it.Rating < MinRating || *it.Rating > MaxRating) {
			return domain.NewValidationError(
				fmt.Sprintf("interactions[%d].rating", i),
				fmt.Sprintf("must be between %g and %g", MinRating, MaxRating))
		}
	}
	if f.GroupType != "" {
		if _, ok := groupTypes[normalize(f.GroupType)]; !ok {
			return domain.NewValidationError("group_type", "must be one of solo, couple, family, friends, business")
		}
	}
	if f.Season != "" {
		if _, ok := seasonNames[normalize(f.Season)]; !ok {
			return domain.NewValidationError("season", "must be a month name or summer, monsoon, winter")
		}
	}
	return nil
}

// Texts collects the strings that feed the general embedding, in order:
// queries, item names, interests, travel style, preferred activities.
func Texts(interactions []Interaction, f Fields) []string {
	var texts []string
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			texts = append(texts, s)
		}
	}
	for _, it := range interactions {
		add(it.Query)
	}
	for _, it := range interactions {
		add(it.ItemName)
	}
	for _, s := range f.Interests {
		add(s)
	}
	add(f.TravelStyle)
	for _, s := range f.PreferredActivities {
		add(s)
	}
	return texts
}

// RatedByCategory groups rated interactions per category, preserving order.
func RatedByCategory(interactions []Interaction) map[string][]Interaction {
	out := make(map[string][]Interaction)
	for _, it := range interactions {
		if !it.Rated() {
			continue
		}
		cat := normalize(it.Category)
		out[cat] = append(out[cat], it)
	}
	return out
}

// RatingWeights min-max normalizes ratings: the lowest gets 0, the highest 1.
// All-equal ratings yield all zeros.
func RatingWeights(items []Interaction) []float64 {
	w := make([]float64, len(items))
	if len(items) == 0 {
		return w
	}
	lo, hi := *items[0].Rating, *items[0].Rating
	for _, it := range items[1:] {
		lo = min(lo, *it.Rating)
		hi = max(hi, *it.Rating)
	}
	if hi == lo {
		return w
	}
	for i, it := range items {
		w[i] = (*it.Rating - lo) / (hi - lo)
	}
	return w
}
