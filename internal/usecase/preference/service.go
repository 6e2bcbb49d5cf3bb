// Package preference learns per-user travel preferences and scores candidates against them.
package preference

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/travelrag/internal/domain"
	"github.com/kailas-cloud/travelrag/internal/domain/preference"
	"github.com/kailas-cloud/travelrag/internal/domain/vecmath"
	"github.com/kailas-cloud/travelrag/internal/logger"
	"github.com/kailas-cloud/travelrag/internal/metrics"
)

// Service coordinates profile updates and personalized scoring.
type Service struct {
	store   ProfileStore
	encoder TextEncoder
	locks   *keyedMutex
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the clock used for seasonal weights and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a preference service.
func New(store ProfileStore, encoder TextEncoder, opts ...Option) *Service {
	s := &Service{store: store, encoder: encoder, locks: newKeyedMutex(), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// RecordInteraction folds a batch of interaction events and declared fields into the user's
// profile, creating it on first use. Updates for one user are serialized.
func (s *Service) RecordInteraction(
	ctx context.Context, userID string, interactions []preference.Interaction, fields preference.Fields,
) (*preference.Profile, error) {
	userID = strings.TrimSpace(userID)
	if err := preference.Validate(userID, interactions, fields); err != nil {
		return nil, err //nolint:wrapcheck // validation error carries the field
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	p, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()

	if err := s.updateEmbeddings(ctx, p, interactions, fields); err != nil {
		return nil, err
	}
	if fields.Season != "" {
		p.AddSeason(fields.Season, now)
	}
	if fields.GroupType != "" || len(fields.SpecialRequirements) > 0 {
		p.AddGroup(fields.GroupType, fields.SpecialRequirements)
	}
	p.AddAmenities(fields.PreferredAmenities)
	p.UpdatedAt = now

	if err := s.store.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}

	metrics.InteractionsTotal.Add(float64(len(interactions)))
	logger.FromContext(ctx).Info("Preferences updated",
		zap.String("user_id", userID),
		zap.Int("interactions", len(interactions)),
		zap.Bool("has_embedding", len(p.GeneralEmbedding) > 0),
	)
	return p, nil
}

// Profile returns the stored profile or domain.ErrNotFound.
func (s *Service) Profile(ctx context.Context, userID string) (*preference.Profile, error) {
	p, err := s.store.Get(ctx, strings.TrimSpace(userID))
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// Summary is a readable digest of a profile.
type Summary struct {
	UserID            string             `json:"user_id"`
	HasGeneral        bool               `json:"has_general_embedding"`
	Categories        []string           `json:"category_embeddings"`
	SeasonalWeights   map[string]float64 `json:"seasonal_weights,omitempty"`
	DominantGroup     string             `json:"dominant_group,omitempty"`
	GroupRequirements []string           `json:"group_requirements,omitempty"`
	TopAmenities      []string           `json:"top_amenities,omitempty"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// TopAmenityCount caps the amenities listed in a summary.
const TopAmenityCount = 5

// Summarize builds the profile digest for userID.
func (s *Service) Summarize(ctx context.Context, userID string) (Summary, error) {
	p, err := s.Profile(ctx, userID)
	if err != nil {
		return Summary{}, err
	}

	cats := make([]string, 0, len(preference.Categories))
	for _, c := range preference.Categories {
		if _, ok := p.CategoryVector(c); ok {
			cats = append(cats, c)
		}
	}
	return Summary{
		UserID:            p.UserID,
		HasGeneral:        len(p.GeneralEmbedding) > 0,
		Categories:        cats,
		SeasonalWeights:   p.SeasonalWeights,
		DominantGroup:     p.DominantGroup(),
		GroupRequirements: p.GroupRequirements,
		TopAmenities:      p.TopAmenities(TopAmenityCount),
		UpdatedAt:         p.UpdatedAt,
	}, nil
}

func (s *Service) load(ctx context.Context, userID string) (*preference.Profile, error) {
	p, err := s.store.Get(ctx, userID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return preference.New(userID), nil
	case err != nil:
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return p, nil
}

// updateEmbeddings encodes the general texts and the rated item names in a single batch.
// With no texts the embedding maps stay untouched.
func (s *Service) updateEmbeddings(
	ctx context.Context, p *preference.Profile, interactions []preference.Interaction, fields preference.Fields,
) error {
	texts := preference.Texts(interactions, fields)
	if len(texts) == 0 {
		return nil
	}

	rated := preference.RatedByCategory(interactions)
	cats := make([]string, 0, len(rated))
	all := append([]string(nil), texts...)
	for _, c := range preference.Categories {
		items, ok := rated[c]
		if !ok {
			continue
		}
		cats = append(cats, c)
		for _, it := range items {
			all = append(all, strings.TrimSpace(it.ItemName))
		}
	}

	vecs, err := s.encoder.EmbedTexts(ctx, all)
	if err != nil {
		return fmt.Errorf("encode interaction texts: %w", err)
	}
	if len(vecs) != len(all) {
		return fmt.Errorf("got %d vectors for %d texts: %w", len(vecs), len(all), domain.ErrEmbeddingProviderError)
	}

	p.GeneralEmbedding = vecmath.Mean(vecs[:len(texts)])

	offset := len(texts)
	for _, c := range cats {
		items := rated[c]
		catVecs := vecs[offset : offset+len(items)]
		offset += len(items)
		if v := vecmath.WeightedMean(catVecs, preference.RatingWeights(items)); v != nil {
			p.SetCategoryVector(c, v)
		}
	}
	return nil
}
