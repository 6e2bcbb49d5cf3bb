package preference

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/travelrag/internal/domain"
	"github.com/kailas-cloud/travelrag/internal/domain/document"
	"github.com/kailas-cloud/travelrag/internal/domain/preference"
	"github.com/kailas-cloud/travelrag/internal/domain/search/result"
	"github.com/kailas-cloud/travelrag/internal/domain/vecmath"
	"github.com/kailas-cloud/travelrag/internal/metrics"
)

// Factor weights of the personalized score.
const (
	GeneralWeight  = 0.3
	CategoryWeight = 0.2
	SeasonalWeight = 0.15
	GroupWeight    = 0.2
	AmenityWeight  = 0.15

	// GroupTypeBoost multiplies the group factor when the property type suits the dominant group.
	GroupTypeBoost = 1.5
	// AmenityCountScale turns an amenity count into a multiplier of 1 + count/scale.
	AmenityCountScale = 10.0
)

// NeutralScore is returned for every candidate when nothing can be personalized.
const NeutralScore = 1.0

var groupTypeFit = map[string][]string{
	"family": {"family", "resort"},
	"couple": {"boutique", "villa"},
}

// Score returns one personalized score in [0, 1] per candidate, in candidate order.
// Without a profile, or without a general or category vector, every score is NeutralScore.
// Candidates missing a stored vector are encoded from their text in one batch.
func (s *Service) Score(
	ctx context.Context, userID string, candidates []result.Result, category string,
) ([]float64, error) {
	if len(candidates) == 0 {
		return []float64{}, nil
	}
	start := time.Now()

	p, err := s.store.Get(ctx, strings.TrimSpace(userID))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if !p.HasEmbedding(category) {
		metrics.ScoringDuration.WithLabelValues(category, "false").Observe(time.Since(start).Seconds())
		return neutral(len(candidates)), nil
	}

	vecs, err := s.candidateVectors(ctx, candidates)
	if err != nil {
		return nil, err
	}

	raw := make([]float64, len(candidates))
	for i := range candidates {
		raw[i] = rawScore(p, category, vecs[i], candidates[i].Metadata())
	}

	scores, ok := vecmath.MinMax(raw)
	if !ok {
		scores = neutral(len(candidates))
	}
	metrics.ScoringDuration.WithLabelValues(category, "true").Observe(time.Since(start).Seconds())
	return scores, nil
}

func (s *Service) candidateVectors(ctx context.Context, candidates []result.Result) ([][]float32, error) {
	vecs := make([][]float32, len(candidates))
	var (
		missing []int
		texts   []string
	)
	for i := range candidates {
		if v := candidates[i].Vector(); len(v) > 0 {
			vecs[i] = v
			continue
		}
		missing = append(missing, i)
		texts = append(texts, candidates[i].Text())
	}
	if len(missing) == 0 {
		return vecs, nil
	}

	encoded, err := s.encoder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("encode candidates: %w", err)
	}
	if len(encoded) != len(missing) {
		return nil, fmt.Errorf("got %d vectors for %d candidates: %w",
			len(encoded), len(missing), domain.ErrEmbeddingProviderError)
	}
	for j, i := range missing {
		vecs[i] = encoded[j]
	}
	return vecs, nil
}

func rawScore(p *preference.Profile, category string, vec []float32, md document.Metadata) float64 {
	score := 1.0

	if len(p.GeneralEmbedding) > 0 {
		score *= GeneralWeight * (1 + vecmath.Cosine(vec, p.GeneralEmbedding))
	}
	if cv, ok := p.CategoryVector(category); ok {
		score *= CategoryWeight * (1 + vecmath.Cosine(vec, cv))
	}
	if p.HasSeasonalData() {
		score *= SeasonalWeight * seasonFactor(p, md)
	}
	if p.HasGroupData() {
		score *= GroupWeight * groupFactor(p, md)
	}
	if p.HasAmenityData() {
		score *= AmenityWeight * amenityFactor(p, md)
	}
	return score
}

func seasonFactor(p *preference.Profile, md document.Metadata) float64 {
	f := 1.0
	for _, s := range md.Seasons {
		if w, ok := p.SeasonalWeights[strings.ToLower(strings.TrimSpace(s))]; ok {
			f *= 1 + w
		}
	}
	return f
}

func groupFactor(p *preference.Profile, md document.Metadata) float64 {
	g := 1.0
	if n := len(p.GroupRequirements); n > 0 {
		have := lowerSet(md.Amenities)
		matches := 0
		for _, r := range p.GroupRequirements {
			if _, ok := have[strings.ToLower(strings.TrimSpace(r))]; ok {
				matches++
			}
		}
		g = 1 + float64(matches)/float64(n)
	}

	kind := strings.ToLower(strings.TrimSpace(md.Type))
	for _, t := range groupTypeFit[p.DominantGroup()] {
		if kind == t {
			g *= GroupTypeBoost
			break
		}
	}
	return g
}

func amenityFactor(p *preference.Profile, md document.Metadata) float64 {
	have := lowerSet(md.Amenities)
	a := 1.0
	for name, count := range p.AmenityCounts {
		if _, ok := have[name]; ok {
			a *= 1 + float64(count)/AmenityCountScale
		}
	}
	return a
}

func lowerSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[strings.ToLower(strings.TrimSpace(it))] = struct{}{}
	}
	return set
}

func neutral(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = NeutralScore
	}
	return out
}
