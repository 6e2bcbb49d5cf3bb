package preference

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/travelrag/internal/domain"
	"github.com/kailas-cloud/travelrag/internal/domain/document"
	"github.com/kailas-cloud/travelrag/internal/domain/preference"
	"github.com/kailas-cloud/travelrag/internal/domain/search/result"
)

func candidate(id string, vec []float32, md document.Metadata) result.Result {
	return result.New(id, 0.1, "text of "+id, md, vec)
}

func storeWith(p *preference.Profile) *mockStore {
	s := newMockStore()
	s.profiles[p.UserID] = p
	return s
}

func TestScore_EmptyCandidates(t *testing.T) {
	got, err := newTestService(newMockStore(), &mockEncoder{}).Score(context.Background(), "u1", nil, "hotels")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", got)
	}
}

func TestScore_NoProfileIsNeutral(t *testing.T) {
	enc := &mockEncoder{}
	cands := []result.Result{candidate("a", nil, document.Metadata{}), candidate("b", nil, document.Metadata{})}

	got, err := newTestService(newMockStore(), enc).Score(context.Background(), "ghost", cands, "hotels")
	if err != nil {
		t.Fatal(err)
	}
	for i, s := range got {
		if s != NeutralScore {
			t.Errorf("score[%d] = %f, want 1.0", i, s)
		}
	}
	if enc.calls != 0 {
		t.Error("candidates must not be encoded without a profile")
	}
}

func TestScore_NoVectorsIsNeutral(t *testing.T) {
	p := preference.New("u1")
	p.SeasonalWeights = map[string]float64{"may": 0.7}
	p.SetCategoryVector(preference.CategoryAttractions, []float32{1, 0})
	cands := []result.Result{
		candidate("a", []float32{1, 0}, document.Metadata{Seasons: []string{"may"}}),
		candidate("b", []float32{0, 1}, document.Metadata{}),
	}

	got, err := newTestService(storeWith(p), &mockEncoder{}).Score(context.Background(), "u1", cands, "hotels")
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != 1 || got[1] != 1 {
		t.Errorf("expected neutral scores for a category without vectors, got %v", got)
	}
}

func TestScore_GeneralOnlyNormalized(t *testing.T) {
	p := preference.New("u1")
	p.GeneralEmbedding = []float32{1, 0}
	cands := []result.Result{
		candidate("far", []float32{0, 1}, document.Metadata{}),
		candidate("near", []float32{1, 0}, document.Metadata{}),
		candidate("mid", []float32{1, 1}, document.Metadata{}),
	}

	got, err := newTestService(storeWith(p), &mockEncoder{}).Score(context.Background(), "u1", cands, "hotels")
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != 0 || got[1] != 1 {
		t.Errorf("expected min 0 and max 1, got %v", got)
	}
	if got[2] <= 0 || got[2] >= 1 {
		t.Errorf("expected middle candidate strictly inside (0,1), got %f", got[2])
	}
}

func TestScore_AllEqualIsOne(t *testing.T) {
	p := preference.New("u1")
	p.GeneralEmbedding = []float32{1, 0}
	cands := []result.Result{
		candidate("a", []float32{1, 0}, document.Metadata{}),
		candidate("b", []float32{2, 0}, document.Metadata{}),
	}

	got, err := newTestService(storeWith(p), &mockEncoder{}).Score(context.Background(), "u1", cands, "hotels")
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != 1 || got[1] != 1 {
		t.Errorf("expected all 1.0, got %v", got)
	}
}

func TestScore_EncodesOnlyMissingVectors(t *testing.T) {
	p := preference.New("u1")
	p.GeneralEmbedding = []float32{1, 0}
	enc := &mockEncoder{vectors: map[string][]float32{"text of b": {1, 0}}}
	cands := []result.Result{
		candidate("a", []float32{0, 1}, document.Metadata{}),
		candidate("b", nil, document.Metadata{}),
	}

	got, err := newTestService(storeWith(p), enc).Score(context.Background(), "u1", cands, "hotels")
	if err != nil {
		t.Fatal(err)
	}
	if enc.calls != 1 || len(enc.texts[0]) != 1 || enc.texts[0][0] != "text of b" {
		t.Errorf("expected one batch with the missing text, got %v", enc.texts)
	}
	if got[1] != 1 || got[0] != 0 {
		t.Errorf("expected encoded candidate to win, got %v", got)
	}
}

func TestScore_EncoderFailure(t *testing.T) {
	p := preference.New("u1")
	p.GeneralEmbedding = []float32{1, 0}
	enc := &mockEncoder{err: domain.ErrEmbeddingProviderError}

	_, err := newTestService(storeWith(p), enc).Score(context.Background(), "u1",
		[]result.Result{candidate("a", nil, document.Metadata{})}, "hotels")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Errorf("expected ErrEmbeddingProviderError, got %v", err)
	}
}

func TestScore_StoreError(t *testing.T) {
	store := newMockStore()
	store.getFn = func(context.Context, string) (*preference.Profile, error) {
		return nil, errors.New("timeout")
	}
	_, err := newTestService(store, &mockEncoder{}).Score(context.Background(), "u1",
		[]result.Result{candidate("a", nil, document.Metadata{})}, "hotels")
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestRawScore_AllFactors(t *testing.T) {
	p := preference.New("u1")
	p.GeneralEmbedding = []float32{1, 0}
	p.SetCategoryVector(preference.CategoryHotels, []float32{1, 0})
	p.SeasonalWeights = map[string]float64{"october": 0.7}
	p.GroupTypeCounts = map[string]int{"family": 2}
	p.GroupRequirements = []string{"Pool"}
	p.AmenityCounts = map[string]int{"spa": 2}

	md := document.Metadata{
		Type:      "Resort",
		Amenities: []string{"pool", "SPA"},
		Seasons:   []string{"october", "november"},
	}

	// 0.3*2 * 0.2*2 * 0.15*1.7 * 0.2*(2*1.5) * 0.15*1.2
	want := 0.6 * 0.4 * 0.255 * 0.6 * 0.18
	if got := rawScore(p, preference.CategoryHotels, []float32{1, 0}, md); !approx(got, want) {
		t.Errorf("rawScore = %f, want %f", got, want)
	}
}

func TestRawScore_MissingMetadataIsNeutral(t *testing.T) {
	p := preference.New("u1")
	p.GeneralEmbedding = []float32{1, 0}
	p.SeasonalWeights = map[string]float64{"may": 1}
	p.GroupTypeCounts = map[string]int{"solo": 1}
	p.AmenityCounts = map[string]int{"wifi": 3}

	want := 0.6 * 0.15 * 0.2 * 0.15
	if got := rawScore(p, "hotels", []float32{1, 0}, document.Metadata{}); !approx(got, want) {
		t.Errorf("rawScore = %f, want %f", got, want)
	}
}

func TestGroupFactor(t *testing.T) {
	tests := []struct {
		name     string
		counts   map[string]int
		reqs     []string
		md       document.Metadata
		expected float64
	}{
		{"couple boutique", map[string]int{"couple": 1}, nil, document.Metadata{Type: "Boutique"}, 1.5},
		{"couple resort", map[string]int{"couple": 1}, nil, document.Metadata{Type: "resort"}, 1},
		{"family villa", map[string]int{"family": 1}, nil, document.Metadata{Type: "villa"}, 1},
		{"half requirements", nil, []string{"crib", "pool"}, document.Metadata{Amenities: []string{"Pool"}}, 1.5},
		{"requirements and boost", map[string]int{"family": 1}, []string{"crib"},
			document.Metadata{Type: "family", Amenities: []string{"CRIB"}}, 3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := preference.New("u1")
			p.GroupTypeCounts = tc.counts
			p.GroupRequirements = tc.reqs
			if got := groupFactor(p, tc.md); !approx(got, tc.expected) {
				t.Errorf("groupFactor = %f, want %f", got, tc.expected)
			}
		})
	}
}

func TestAmenityFactor(t *testing.T) {
	p := preference.New("u1")
	p.AmenityCounts = map[string]int{"pool": 5, "spa": 10, "gym": 3}
	md := document.Metadata{Amenities: []string{"Pool", "spa"}}
	if got := amenityFactor(p, md); !approx(got, 1.5*2) {
		t.Errorf("amenityFactor = %f, want 3", got)
	}
}
