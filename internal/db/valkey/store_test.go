package valkey

import (
	"context"
	"testing"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/travelrag/internal/db"
	"github.com/kailas-cloud/travelrag/internal/domain/collection"
	"github.com/kailas-cloud/travelrag/internal/domain/search/filter"
)

func hash(kv ...string) rueidis.RedisMessage {
	m := make(map[string]rueidis.RedisMessage, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i]] = mock.RedisString(kv[i+1])
	}
	return mock.RedisMap(m)
}

func TestSearchList_ScanAndFilter(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "SCAN"
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(0),
			mock.RedisArray(
				mock.RedisString("h:b"),
				mock.RedisString("h:a"),
				mock.RedisString("h:c"),
			),
		)))

	// keys are sorted before loading: h:a, h:b, h:c
	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(hash("name", "A", "price", "3000", "__vector", "xxxx")),
			mock.Result(hash("name", "B", "price", "8000")),
			mock.Result(hash("name", "C", "price", "1000")),
		})

	lte := 5000.0
	rng, _ := filter.NewRangeFilter(nil, nil, nil, &lte)
	cond, _ := filter.NewRange("price", rng)
	expr, _ := filter.NewExpression(cond)

	s := NewStoreForTest(c)
	res, err := s.SearchList(context.Background(), &db.ListQuery{
		IndexName:    "idx",
		Prefix:       "h:",
		Filters:      expr,
		Limit:        1,
		ReturnFields: []string{"name", "price"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 2 {
		t.Errorf("Total = %d, want 2", res.Total)
	}
	if len(res.Entries) != 1 || res.Entries[0].Key != "h:a" {
		t.Fatalf("unexpected entries: %+v", res.Entries)
	}
	if _, ok := res.Entries[0].Fields["__vector"]; ok {
		t.Error("fields must be projected to the requested ones")
	}
}

func TestSearchList_ListValuedTheme(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "SCAN"
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(0),
			mock.RedisArray(mock.RedisString("i:kerala"), mock.RedisString("i:ladakh")),
		)))
	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(hash("name", "Kerala", "theme", "culture,nature", "location", "Kochi,Alleppey")),
			mock.Result(hash("name", "Ladakh", "theme", "adventure", "location", "Leh")),
		})

	expr, dropped := filter.Coerce(collection.Itineraries, map[string]any{"theme": "nature", "location": "kochi"})
	if len(dropped) != 0 {
		t.Fatalf("unexpected drops: %+v", dropped)
	}

	s := NewStoreForTest(c)
	res, err := s.SearchList(context.Background(), &db.ListQuery{Prefix: "i:", Filters: expr, Limit: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 1 || res.Entries[0].Key != "i:kerala" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestSearchList_EmptyPrefix(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "SCAN"
		})).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0), mock.RedisArray())))

	s := NewStoreForTest(c)
	res, err := s.SearchList(context.Background(), &db.ListQuery{Prefix: "h:", Limit: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Entries) != 0 || res.Total != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
}

func TestSearchList_Validation(t *testing.T) {
	s := NewStoreForTest(nil)
	if _, err := s.SearchList(context.Background(), &db.ListQuery{Limit: 5}); err == nil {
		t.Error("expected error for empty prefix")
	}
	if _, err := s.SearchList(context.Background(), &db.ListQuery{Prefix: "h:"}); err == nil {
		t.Error("expected error for zero limit")
	}
}
