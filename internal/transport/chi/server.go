// Package chi exposes the travel retrieval API over HTTP with the chi router.
package chi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/travelrag/internal/domain/collection"
	domdoc "github.com/kailas-cloud/travelrag/internal/domain/document"
	"github.com/kailas-cloud/travelrag/internal/domain/preference"
	"github.com/kailas-cloud/travelrag/internal/ingest"
	"github.com/kailas-cloud/travelrag/internal/logger"
	healthuc "github.com/kailas-cloud/travelrag/internal/usecase/health"
	prefuc "github.com/kailas-cloud/travelrag/internal/usecase/preference"
	"github.com/kailas-cloud/travelrag/internal/usecase/recommend"
)

// MaxIndexBodyBytes caps the raw payload of an indexing request.
const MaxIndexBodyBytes = 32 << 20

// Query parameters with a fixed meaning on GET search; every other parameter is a filter.
var reservedSearchParams = map[string]struct{}{"q": {}, "query": {}, "limit": {}, "user_id": {}}

// Recommender serves collection searches and the travel helpers built on them.
type Recommender interface {
	Search(ctx context.Context, p recommend.SearchParams) ([]recommend.Item, error)
	Explore(ctx context.Context, p recommend.ExploreParams) (map[collection.Kind][]recommend.Item, error)
	Deals(ctx context.Context, p recommend.DealsParams) ([]recommend.Item, error)
	CompareHotels(ctx context.Context, p recommend.CompareParams) ([]recommend.Quote, error)
	CurrentSeason() recommend.SeasonInfo
}

// Preferences records interactions and summarizes profiles.
type Preferences interface {
	RecordInteraction(
		ctx context.Context, userID string, interactions []preference.Interaction, fields preference.Fields,
	) (*preference.Profile, error)
	Summarize(ctx context.Context, userID string) (prefuc.Summary, error)
}

// Indexer writes documents into a collection.
type Indexer interface {
	Index(ctx context.Context, kind collection.Kind, docs []domdoc.Document) (int, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server holds the HTTP handlers.
type Server struct {
	recommend   Recommender
	preferences Preferences
	indexer     Indexer
	health      HealthChecker
}

// NewServer creates an HTTP API server.
func NewServer(rec Recommender, prefs Preferences, indexer Indexer, health HealthChecker) *Server {
	return &Server{recommend: rec, preferences: prefs, indexer: indexer, health: health}
}

// Register mounts all routes on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api", func(r chi.Router) {
		r.Get("/seasons/current", s.CurrentSeason)
		r.Get("/deals", s.Deals)
		r.Post("/explore", s.Explore)
		r.Post("/hotels/compare", s.CompareHotels)
		r.Get("/{collection}/search", s.SearchGet)
		r.Post("/{collection}/search", s.SearchPost)
		r.Post("/index/{collection}", s.IndexCollection)
		r.Post("/profile/{user_id}/interactions", s.RecordInteractions)
		r.Get("/profile/{user_id}/preferences", s.GetPreferences)
	})
}

// SearchGet handles GET /api/{collection}/search?q=&limit=&user_id=&<filter>=.
func (s *Server) SearchGet(w http.ResponseWriter, r *http.Request) {
	kind, ok := collectionParam(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	var (
		query, alias, userID string
		limit                int
	)
	if err := bindQuery(q, "q", &query); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	if err := bindQuery(q, "query", &alias); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	if err := bindQuery(q, "limit", &limit); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "limit must be an integer")
		return
	}
	if err := bindQuery(q, "user_id", &userID); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	if query == "" {
		query = alias
	}

	filters := make(map[string]any)
	for k, v := range q {
		if _, reserved := reservedSearchParams[k]; reserved || len(v) == 0 {
			continue
		}
		filters[k] = v[0]
	}

	s.search(w, r, recommend.SearchParams{Kind: kind, Query: query, Filters: filters, Limit: limit, UserID: userID})
}

// SearchPost handles POST /api/{collection}/search.
func (s *Server) SearchPost(w http.ResponseWriter, r *http.Request) {
	kind, ok := collectionParam(w, r)
	if !ok {
		return
	}
	var req SearchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.search(w, r, recommend.SearchParams{
		Kind: kind, Query: req.Query, Filters: req.Filters, Limit: req.Limit, UserID: req.UserID,
	})
}

func (s *Server) search(w http.ResponseWriter, r *http.Request, p recommend.SearchParams) {
	items, err := s.recommend.Search(r.Context(), p)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{
		Collection: string(p.Kind),
		Results:    toResultItems(items),
		Count:      len(items),
	})
}

// Explore handles POST /api/explore.
func (s *Server) Explore(w http.ResponseWriter, r *http.Request) {
	var req ExploreRequest
	if !decodeBody(w, r, &req) {
		return
	}

	filters := make(map[collection.Kind]map[string]any, len(req.Filters))
	for name, f := range req.Filters {
		kind, err := collection.Parse(name)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		filters[kind] = f
	}

	lists, err := s.recommend.Explore(r.Context(), recommend.ExploreParams{
		Query: req.Query, Limit: req.Limit, UserID: req.UserID, Filters: filters,
	})
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	resp := ExploreResponse{Results: make(map[string][]ResultItem, len(lists))}
	for kind, items := range lists {
		resp.Results[string(kind)] = toResultItems(items)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Deals handles GET /api/deals?budget=&location=&min_rating=&limit=.
func (s *Server) Deals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		budget    float64
		location  string
		minRating *float64
		limit     int
	)
	if err := runtime.BindQueryParameter("form", true, true, "budget", q, &budget); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "budget is required and must be a number")
		return
	}
	if err := bindQuery(q, "location", &location); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	if err := bindQuery(q, "min_rating", &minRating); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "min_rating must be a number")
		return
	}
	if err := bindQuery(q, "limit", &limit); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "limit must be an integer")
		return
	}

	items, err := s.recommend.Deals(r.Context(), recommend.DealsParams{
		Budget: budget, Location: location, MinRating: minRating, Limit: limit,
	})
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DealsResponse{Deals: toResultItems(items), Count: len(items)})
}

// CompareHotels handles POST /api/hotels/compare.
func (s *Server) CompareHotels(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if !decodeBody(w, r, &req) {
		return
	}

	quotes, err := s.recommend.CompareHotels(r.Context(), recommend.CompareParams{
		Location: req.Location, CheckIn: req.CheckIn, CheckOut: req.CheckOut, MaxPrice: req.MaxPrice, Limit: req.Limit,
	})
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	resp := CompareResponse{Hotels: make([]QuoteItem, len(quotes)), Count: len(quotes)}
	for i := range quotes {
		q := &quotes[i]
		resp.Hotels[i] = QuoteItem{
			ResultItem: toResultItem(&q.Item),
			Nights:     q.Nights,
			BasePrice:  q.BasePrice,
			Total:      q.Total,
			CheckIn:    q.CheckIn,
			CheckOut:   q.CheckOut,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// CurrentSeason handles GET /api/seasons/current.
func (s *Server) CurrentSeason(w http.ResponseWriter, _ *http.Request) {
	info := s.recommend.CurrentSeason()
	writeJSON(w, http.StatusOK, SeasonResponse{Season: info.Season, Month: info.Month})
}

// RecordInteractions handles POST /api/profile/{user_id}/interactions.
func (s *Server) RecordInteractions(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathParam(w, r, "user_id")
	if !ok {
		return
	}
	var req InteractionsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	p, err := s.preferences.RecordInteraction(r.Context(), userID, req.Interactions, req.Fields)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, InteractionsResponse{
		UserID:    p.UserID,
		Recorded:  len(req.Interactions),
		UpdatedAt: p.UpdatedAt,
	})
}

// GetPreferences handles GET /api/profile/{user_id}/preferences.
func (s *Server) GetPreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathParam(w, r, "user_id")
	if !ok {
		return
	}
	sum, err := s.preferences.Summarize(r.Context(), userID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// IndexCollection handles POST /api/index/{collection} with a raw source payload.
func (s *Server) IndexCollection(w http.ResponseWriter, r *http.Request) {
	kind, ok := collectionParam(w, r)
	if !ok {
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxIndexBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, CodeBadRequest, "request body too large")
		return
	}

	docs, skipped, err := ingest.Parse(kind, data)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	ingest.LogSkipped(r.Context(), kind, skipped)

	n, err := s.indexer.Index(r.Context(), kind, docs)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, IndexResponse{Collection: string(kind), Indexed: n, Skipped: len(skipped)})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func collectionParam(w http.ResponseWriter, r *http.Request) (collection.Kind, bool) {
	name, ok := pathParam(w, r, "collection")
	if !ok {
		return "", false
	}
	kind, err := collection.Parse(name)
	if err != nil {
		handleDomainError(w, r, err)
		return "", false
	}
	return kind, true
}

func pathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	var v string
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &v,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath})
	if err != nil || v == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid path parameter "+name)
		return "", false
	}
	return v, true
}

func bindQuery(q url.Values, name string, dest any) error {
	return runtime.BindQueryParameter("form", true, false, name, q, dest) //nolint:wrapcheck // message built by caller
}

func decodeBody(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		logger.FromContext(r.Context()).Debug("Invalid request body", zap.Error(err))
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}
