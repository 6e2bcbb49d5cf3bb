// Package recommend orchestrates retrieval and personalized re-ranking for travel queries.
package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/travelrag/internal/domain"
	"github.com/kailas-cloud/travelrag/internal/domain/collection"
	"github.com/kailas-cloud/travelrag/internal/domain/search/result"
	"github.com/kailas-cloud/travelrag/internal/logger"
)

// Pricing constants applied to a hotel stay.
const (
	StayTaxRate    = 0.18
	StayServiceFee = 500.0
	// DefaultDealRating is the minimum rating of a deal when none is given.
	DefaultDealRating = 3.0
	// DateLayout is the accepted stay date format.
	DateLayout = "2006-01-02"
)

// Item is a candidate with its optional personalized score.
type Item struct {
	result.Result
	PersonalScore *float64
}

// Service combines a retriever with a personalized scorer.
type Service struct {
	retriever Retriever
	scorer    Scorer
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the clock used for date validation and the current season.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a recommend service. scorer may be nil, which disables personalization.
func New(retriever Retriever, scorer Scorer, opts ...Option) *Service {
	s := &Service{retriever: retriever, scorer: scorer, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SearchParams describes one collection search.
type SearchParams struct {
	Kind    collection.Kind
	Query   string
	Filters map[string]any
	Limit   int
	UserID  string
}

// Search queries a collection and, when a user id is given, re-ranks the candidates
// by personalized score. The sort is stable with ties broken by distance.
func (s *Service) Search(ctx context.Context, p SearchParams) ([]Item, error) {
	candidates, err := s.retriever.Query(ctx, p.Kind, p.Query, p.Filters, p.Limit)
	if err != nil {
		return nil, err //nolint:wrapcheck // retriever errors carry context
	}

	items := make([]Item, len(candidates))
	for i := range candidates {
		items[i] = Item{Result: candidates[i]}
	}

	userID := strings.TrimSpace(p.UserID)
	if userID == "" || s.scorer == nil || len(items) == 0 {
		return items, nil
	}

	scores, err := s.scorer.Score(ctx, userID, candidates, p.Kind.PreferenceCategory())
	if err != nil {
		return nil, fmt.Errorf("personalize %s: %w", p.Kind, err)
	}
	for i := range items {
		items[i].PersonalScore = &scores[i]
	}
	sort.SliceStable(items, func(i, j int) bool {
		si, sj := *items[i].PersonalScore, *items[j].PersonalScore
		if si != sj {
			return si > sj
		}
		return items[i].Distance() < items[j].Distance()
	})

	logger.FromContext(ctx).Debug("Personalized ranking",
		zap.String("collection", string(p.Kind)),
		zap.String("user_id", userID),
		zap.Int("candidates", len(items)),
	)
	return items, nil
}

// ExploreParams queries every collection with the same text.
type ExploreParams struct {
	Query   string
	Limit   int
	UserID  string
	Filters map[collection.Kind]map[string]any
}

// Explore searches all collections concurrently. Any failure fails the whole call.
func (s *Service) Explore(ctx context.Context, p ExploreParams) (map[collection.Kind][]Item, error) {
	kinds := collection.All()
	lists := make([][]Item, len(kinds))

	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		g.Go(func() error {
			items, err := s.Search(gctx, SearchParams{
				Kind:    kind,
				Query:   p.Query,
				Filters: p.Filters[kind],
				Limit:   p.Limit,
				UserID:  p.UserID,
			})
			if err != nil {
				return fmt.Errorf("explore %s: %w", kind, err)
			}
			lists[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err //nolint:wrapcheck // already wrapped per collection
	}

	out := make(map[collection.Kind][]Item, len(kinds))
	for i, kind := range kinds {
		out[kind] = lists[i]
	}
	return out, nil
}

// DealsParams filters hotels by budget.
type DealsParams struct {
	Budget    float64
	Location  string
	MinRating *float64
	Limit     int
}

// Deals lists hotels within budget and above the minimum rating, without query text.
func (s *Service) Deals(ctx context.Context, p DealsParams) ([]Item, error) {
	if p.Budget <= 0 {
		return nil, domain.NewValidationError("budget", "must be positive")
	}
	minRating := DefaultDealRating
	if p.MinRating != nil {
		minRating = *p.MinRating
	}
	filters := map[string]any{
		"max_price":  p.Budget,
		"min_rating": minRating,
	}
	if loc := strings.TrimSpace(p.Location); loc != "" {
		filters[collection.FieldLocation] = loc
	}
	return s.Search(ctx, SearchParams{Kind: collection.Hotels, Filters: filters, Limit: p.Limit})
}

// CompareParams describes a stay to price.
type CompareParams struct {
	Location string
	CheckIn  string
	CheckOut string
	MaxPrice *float64
	Limit    int
}

// Quote is the priced stay of one hotel.
type Quote struct {
	Item
	Nights    int
	BasePrice float64
	Total     float64
	CheckIn   string
	CheckOut  string
}

// CompareHotels prices a stay at every hotel matching the location, cheapest first.
// Check-in may not be in the past and check-out must follow check-in.
func (s *Service) CompareHotels(ctx context.Context, p CompareParams) ([]Quote, error) {
	loc := strings.TrimSpace(p.Location)
	if loc == "" {
		return nil, domain.NewValidationError("location", "is required")
	}
	nights, err := s.stayNights(p.CheckIn, p.CheckOut)
	if err != nil {
		return nil, err
	}

	filters := map[string]any{collection.FieldLocation: loc}
	if p.MaxPrice != nil {
		filters["max_price"] = *p.MaxPrice
	}
	items, err := s.Search(ctx, SearchParams{Kind: collection.Hotels, Query: loc, Filters: filters, Limit: p.Limit})
	if err != nil {
		return nil, err
	}

	quotes := make([]Quote, 0, len(items))
	for _, it := range items {
		var base float64
		if v, ok := it.Metadata().Numeric(collection.FieldPrice); ok {
			base = v
		}
		quotes = append(quotes, Quote{
			Item:      it,
			Nights:    nights,
			BasePrice: base,
			Total:     StayTotal(base, nights),
			CheckIn:   p.CheckIn,
			CheckOut:  p.CheckOut,
		})
	}
	sort.SliceStable(quotes, func(i, j int) bool { return quotes[i].Total < quotes[j].Total })
	return quotes, nil
}

func (s *Service) stayNights(checkIn, checkOut string) (int, error) {
	in, err := time.Parse(DateLayout, strings.TrimSpace(checkIn))
	if err != nil {
		return 0, fmt.Errorf("%w: check_in %q is not YYYY-MM-DD", domain.ErrInvalidDateRange, checkIn)
	}
	out, err := time.Parse(DateLayout, strings.TrimSpace(checkOut))
	if err != nil {
		return 0, fmt.Errorf("%w: check_out %q is not YYYY-MM-DD", domain.ErrInvalidDateRange, checkOut)
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if in.Before(today) {
		return 0, fmt.Errorf("%w: check_in is in the past", domain.ErrInvalidDateRange)
	}
	if !out.After(in) {
		return 0, fmt.Errorf("%w: check_out must be after check_in", domain.ErrInvalidDateRange)
	}
	return int(out.Sub(in).Hours() / 24), nil
}

// StayTotal is base*nights plus tax and the fixed service fee, rounded to cents.
func StayTotal(base float64, nights int) float64 {
	subtotal := base * float64(nights)
	total := subtotal + subtotal*StayTaxRate + StayServiceFee
	return math.Round(total*100) / 100
}

// Season labels.
const (
	SeasonSummer  = "summer"
	SeasonMonsoon = "monsoon"
	SeasonWinter  = "winter"
)

// SeasonInfo is the season of a calendar month.
type SeasonInfo struct {
	Season string
	Month  string
}

// CurrentSeason returns the season of the current month.
func (s *Service) CurrentSeason() SeasonInfo {
	m := s.now().Month()
	return SeasonInfo{Season: SeasonOf(m), Month: strings.ToLower(m.String())}
}

// SeasonOf maps March-May to summer, June-September to monsoon and the rest to winter.
func SeasonOf(m time.Month) string {
	switch {
	case m >= time.March && m <= time.May:
		return SeasonSummer
	case m >= time.June && m <= time.September:
		return SeasonMonsoon
	default:
		return SeasonWinter
	}
}
