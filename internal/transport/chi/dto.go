package chi

import (
	"time"

	"github.com/kailas-cloud/travelrag/internal/domain/document"
	"github.com/kailas-cloud/travelrag/internal/domain/preference"
	"github.com/kailas-cloud/travelrag/internal/usecase/recommend"
)

// SearchRequest is the body of POST /api/{collection}/search.
type SearchRequest struct {
	Query   string         `json:"query"`
	Filters map[string]any `json:"filters,omitempty"`
	Limit   int            `json:"limit,omitempty"`
	UserID  string         `json:"user_id,omitempty"`
}

// ResultItem is one ranked candidate.
type ResultItem struct {
	ID            string            `json:"id"`
	Text          string            `json:"text"`
	Distance      float64           `json:"distance"`
	Metadata      document.Metadata `json:"metadata"`
	PersonalScore *float64          `json:"personal_score,omitempty"`
}

// SearchResponse lists ranked candidates of one collection.
type SearchResponse struct {
	Collection string       `json:"collection"`
	Results    []ResultItem `json:"results"`
	Count      int          `json:"count"`
}

// ExploreRequest is the body of POST /api/explore.
type ExploreRequest struct {
	Query   string                    `json:"query"`
	Limit   int                       `json:"limit,omitempty"`
	UserID  string                    `json:"user_id,omitempty"`
	Filters map[string]map[string]any `json:"filters,omitempty"`
}

// ExploreResponse holds one list per collection.
type ExploreResponse struct {
	Results map[string][]ResultItem `json:"results"`
}

// DealsResponse lists hotels within budget.
type DealsResponse struct {
	Deals []ResultItem `json:"deals"`
	Count int          `json:"count"`
}

// CompareRequest is the body of POST /api/hotels/compare.
type CompareRequest struct {
	Location string   `json:"location"`
	CheckIn  string   `json:"check_in"`
	CheckOut string   `json:"check_out"`
	MaxPrice *float64 `json:"max_price,omitempty"`
	Limit    int      `json:"limit,omitempty"`
}

// QuoteItem is the priced stay at one hotel.
type QuoteItem struct {
	ResultItem
	Nights    int     `json:"nights"`
	BasePrice float64 `json:"base_price"`
	Total     float64 `json:"total_price"`
	CheckIn   string  `json:"check_in"`
	CheckOut  string  `json:"check_out"`
}

// CompareResponse lists priced stays, cheapest first.
type CompareResponse struct {
	Hotels []QuoteItem `json:"hotels"`
	Count  int         `json:"count"`
}

// SeasonResponse is the body of GET /api/seasons/current.
type SeasonResponse struct {
	Season string `json:"season"`
	Month  string `json:"month"`
}

// InteractionsRequest is the body of POST /api/profile/{user_id}/interactions.
type InteractionsRequest struct {
	Interactions []preference.Interaction `json:"interactions,omitempty"`
	preference.Fields
}

// InteractionsResponse acknowledges a profile update.
type InteractionsResponse struct {
	UserID    string    `json:"user_id"`
	Recorded  int       `json:"recorded"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IndexResponse reports an indexing run.
type IndexResponse struct {
	Collection string `json:"collection"`
	Indexed    int    `json:"indexed"`
	Skipped    int    `json:"skipped"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func toResultItems(items []recommend.Item) []ResultItem {
	out := make([]ResultItem, len(items))
	for i := range items {
		out[i] = toResultItem(&items[i])
	}
	return out
}

func toResultItem(it *recommend.Item) ResultItem {
	return ResultItem{
		ID:            it.ID(),
		Text:          it.Text(),
		Distance:      it.Distance(),
		Metadata:      it.Metadata(),
		PersonalScore: it.PersonalScore,
	}
}
