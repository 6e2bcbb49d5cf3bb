// Package preference holds the per-user preference profile learned from interaction events.
package preference

import (
	"sort"
	"strings"
	"time"
)

// Weights added to a seasonal entry per update.
const (
	CurrentMonthWeight = 0.7
	OtherSeasonWeight  = 0.3
)

// Profile is the mutable preference aggregate for one user.
// Each sub-map is independently optional; an empty one means no signal.
type Profile struct {
	UserID            string               `json:"user_id"`
	GeneralEmbedding  []float32            `json:"general_embedding,omitempty"`
	CategoryVectors   map[string][]float32 `json:"category_vectors,omitempty"`
	SeasonalWeights   map[string]float64   `json:"seasonal_weights,omitempty"`
	GroupTypeCounts   map[string]int       `json:"group_type_counts,omitempty"`
	GroupRequirements []string             `json:"group_requirements,omitempty"`
	AmenityCounts     map[string]int       `json:"amenity_counts,omitempty"`
	UpdatedAt         time.Time            `json:"updated_at"`
}

// New creates an empty profile.
func New(userID string) *Profile {
	return &Profile{UserID: userID}
}

// HasEmbedding reports whether the profile carries a general or the given category vector.
func (p *Profile) HasEmbedding(category string) bool {
	if p == nil {
		return false
	}
	_, ok := p.CategoryVector(category)
	return len(p.GeneralEmbedding) > 0 || ok
}

// CategoryVector returns the rating-weighted vector of a category.
func (p *Profile) CategoryVector(category string) ([]float32, bool) {
	v, ok := p.CategoryVectors[category]
	return v, ok && len(v) > 0
}

// SetCategoryVector stores the vector of a category.
func (p *Profile) SetCategoryVector(category string, v []float32) {
	if p.CategoryVectors == nil {
		p.CategoryVectors = make(map[string][]float32)
	}
	p.CategoryVectors[category] = v
}

// HasSeasonalData reports whether any seasonal weight was recorded.
func (p *Profile) HasSeasonalData() bool { return len(p.SeasonalWeights) > 0 }

// HasGroupData reports whether any travel group was recorded.
func (p *Profile) HasGroupData() bool {
	return len(p.GroupTypeCounts) > 0 || len(p.GroupRequirements) > 0
}

// HasAmenityData reports whether any amenity count was recorded.
func (p *Profile) HasAmenityData() bool { return len(p.AmenityCounts) > 0 }

// AddSeason accumulates weight for a season label. The label matching the month of now
// gets CurrentMonthWeight, anything else OtherSeasonWeight. Weights never decay.
func (p *Profile) AddSeason(season string, now time.Time) {
	key := normalize(season)
	if key == "" {
		return
	}
	if p.SeasonalWeights == nil {
		p.SeasonalWeights = make(map[string]float64)
	}
	w := OtherSeasonWeight
	if key == strings.ToLower(now.Month().String()) {
		w = CurrentMonthWeight
	}
	p.SeasonalWeights[key] += w
}

// AddGroup counts a travel group and merges its special requirements into the requirement set.
func (p *Profile) AddGroup(groupType string, requirements []string) {
	if key := normalize(groupType); key != "" {
		if p.GroupTypeCounts == nil {
			p.GroupTypeCounts = make(map[string]int)
		}
		p.GroupTypeCounts[key]++
	}

	set := make(map[string]struct{}, len(p.GroupRequirements)+len(requirements))
	for _, r := range p.GroupRequirements {
		set[r] = struct{}{}
	}
	for _, r := range requirements {
		if r = strings.TrimSpace(r); r != "" {
			set[r] = struct{}{}
		}
	}
	if len(set) == 0 {
		return
	}
	merged := make([]string, 0, len(set))
	for r := range set {
		merged = append(merged, r)
	}
	sort.Strings(merged)
	p.GroupRequirements = merged
}

// AddAmenities increments the count of each amenity. Keys are lower-cased.
func (p *Profile) AddAmenities(amenities []string) {
	for _, a := range amenities {
		key := normalize(a)
		if key == "" {
			continue
		}
		if p.AmenityCounts == nil {
			p.AmenityCounts = make(map[string]int)
		}
		p.AmenityCounts[key]++
	}
}

// DominantGroup returns the most frequent travel group, ties broken alphabetically.
func (p *Profile) DominantGroup() string {
	var (
		best  string
		count int
	)
	for g, c := range p.GroupTypeCounts {
		if c > count || (c == count && g < best) {
			best, count = g, c
		}
	}
	return best
}

// TopAmenities returns up to n amenities ordered by count, then name.
func (p *Profile) TopAmenities(n int) []string {
	names := make([]string, 0, len(p.AmenityCounts))
	for a := range p.AmenityCounts {
		names = append(names, a)
	}
	sort.Slice(names, func(i, j int) bool {
		ci, cj := p.AmenityCounts[names[i]], p.AmenityCounts[names[j]]
		if ci != cj {
			return ci > cj
		}
		return names[i] < names[j]
	})
	if n > 0 && len(names) > n {
		names = names[:n]
	}
	return names
}

// Clone returns a deep copy.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := &Profile{UserID: p.UserID, UpdatedAt: p.UpdatedAt}
	c.GeneralEmbedding = cloneVec(p.GeneralEmbedding)
	if p.CategoryVectors != nil {
		c.CategoryVectors = make(map[string][]float32, len(p.CategoryVectors))
		for k, v := range p.CategoryVectors {
			c.CategoryVectors[k] = cloneVec(v)
		}
	}
	if p.SeasonalWeights != nil {
		c.SeasonalWeights = make(map[string]float64, len(p.SeasonalWeights))
		for k, v := range p.SeasonalWeights {
			c.SeasonalWeights[k] = v
		}
	}
	c.GroupTypeCounts = cloneCounts(p.GroupTypeCounts)
	c.AmenityCounts = cloneCounts(p.AmenityCounts)
	if p.GroupRequirements != nil {
		c.GroupRequirements = append([]string(nil), p.GroupRequirements...)
	}
	return c
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func cloneVec(v []float32) []float32 {
	if v == nil {
		return nil
	}
	c := make([]float32, len(v))
	copy(c, v)
	return c
}

func cloneCounts(m map[string]int) map[string]int {
	if m == nil {
		return nil
	}
	c := make(map[string]int, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
