package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/travelrag/internal/domain/collection"
	domdoc "github.com/kailas-cloud/travelrag/internal/domain/document"
	"github.com/kailas-cloud/travelrag/internal/domain/preference"
	healthuc "github.com/kailas-cloud/travelrag/internal/usecase/health"
	prefuc "github.com/kailas-cloud/travelrag/internal/usecase/preference"
	"github.com/kailas-cloud/travelrag/internal/usecase/recommend"
)

type mockRecommender struct {
	searchFn  func(ctx context.Context, p recommend.SearchParams) ([]recommend.Item, error)
	exploreFn func(ctx context.Context, p recommend.ExploreParams) (map[collection.Kind][]recommend.Item, error)
	dealsFn   func(ctx context.Context, p recommend.DealsParams) ([]recommend.Item, error)
	compareFn func(ctx context.Context, p recommend.CompareParams) ([]recommend.Quote, error)
	season    recommend.SeasonInfo
}

func (m *mockRecommender) Search(ctx context.Context, p recommend.SearchParams) ([]recommend.Item, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, p)
	}
	return nil, nil
}

func (m *mockRecommender) Explore(
	ctx context.Context, p recommend.ExploreParams,
) (map[collection.Kind][]recommend.Item, error) {
	if m.exploreFn != nil {
		return m.exploreFn(ctx, p)
	}
	return nil, nil
}

func (m *mockRecommender) Deals(ctx context.Context, p recommend.DealsParams) ([]recommend.Item, error) {
	if m.dealsFn != nil {
		return m.dealsFn(ctx, p)
	}
	return nil, nil
}

func (m *mockRecommender) CompareHotels(ctx context.Context, p recommend.CompareParams) ([]recommend.Quote, error) {
	if m.compareFn != nil {
		return m.compareFn(ctx, p)
	}
	return nil, nil
}

func (m *mockRecommender) CurrentSeason() recommend.SeasonInfo { return m.season }

type mockPreferences struct {
	recordFn    func(ctx context.Context, userID string, it []preference.Interaction, f preference.Fields) (*preference.Profile, error)
	summarizeFn func(ctx context.Context, userID string) (prefuc.Summary, error)
}

func (m *mockPreferences) RecordInteraction(
	ctx context.Context, userID string, it []preference.Interaction, f preference.Fields,
) (*preference.Profile, error) {
	if m.recordFn != nil {
		return m.recordFn(ctx, userID, it, f)
	}
	return preference.New(userID), nil
}

func (m *mockPreferences) Summarize(ctx context.Context, userID string) (prefuc.Summary, error) {
	if m.summarizeFn != nil {
		return m.summarizeFn(ctx, userID)
	}
	return prefuc.Summary{UserID: userID}, nil
}

type mockIndexer struct {
	indexFn func(ctx context.Context, kind collection.Kind, docs []domdoc.Document) (int, error)
}

func (m *mockIndexer) Index(ctx context.Context, kind collection.Kind, docs []domdoc.Document) (int, error) {
	if m.indexFn != nil {
		return m.indexFn(ctx, kind, docs)
	}
	return len(docs), nil
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

type testDeps struct {
	rec     *mockRecommender
	prefs   *mockPreferences
	indexer *mockIndexer
	health  *mockHealth
}

func newTestRouter(t *testing.T, d *testDeps, apiKeys ...string) http.Handler {
	t.Helper()
	if d.rec == nil {
		d.rec = &mockRecommender{}
	}
	if d.prefs == nil {
		d.prefs = &mockPreferences{}
	}
	if d.indexer == nil {
		d.indexer = &mockIndexer{}
	}
	if d.health == nil {
		d.health = &mockHealth{report: healthuc.Report{Status: healthuc.Healthy}}
	}
	return NewRouter(NewServer(d.rec, d.prefs, d.indexer, d.health), apiKeys, zap.NewNop())
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}
