package recommend

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rushteam/moviekit/core"
	"github.com/rushteam/moviekit/filter"
	"github.com/rushteam/moviekit/ratings"
)

// alice/bob 是团体；p1 与两人都相似，p2 只与 alice 相似。
// 协同候选：4 -> 5.0、6 -> 5.0、5 -> 4.0。
func demoCorpus() core.Corpus {
	return core.Corpus{
		"alice": {1: 5, 2: 4},
		"bob":   {1: 4, 3: 3},
		"p1":    {1: 5, 2: 4, 3: 3, 4: 5, 5: 4},
		"p2":    {1: 4, 2: 5, 6: 5},
	}
}

func TestRecommender_Recommend(t *testing.T) {
	rec := New(ratings.NewMemory(demoCorpus()), WithMinCoRated(2))

	result, err := rec.Recommend(context.Background(), []string{"alice", "bob"}, 11)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	// 同分（4、6 都是 5.0）按 movie_id 升序
	wantIDs := []int64{4, 6, 5}
	gotIDs := result.MovieIDs()
	if len(gotIDs) != len(wantIDs) {
		t.Fatalf("Recommend() = %v, want %v", gotIDs, wantIDs)
	}
	for i := range wantIDs {
		if gotIDs[i] != wantIDs[i] {
			t.Errorf("MovieIDs()[%d] = %d, want %d", i, gotIDs[i], wantIDs[i])
		}
	}
	if result.Degraded {
		t.Error("Degraded = true, want false")
	}

	// 排名从 1 开始连续
	for i, entry := range result.Recommendations {
		if entry.Rank != i+1 {
			t.Errorf("Recommendations[%d].Rank = %d, want %d", i, entry.Rank, i+1)
		}
	}

	// 不变式：与已看集合零交集，且无重复
	watched := core.WatchedByGroup(demoCorpus(), []string{"alice", "bob"})
	seen := make(map[int64]struct{})
	for _, id := range gotIDs {
		if watched.Contains(id) {
			t.Errorf("watched movie %d in result", id)
		}
		if _, dup := seen[id]; dup {
			t.Errorf("duplicate movie %d in result", id)
		}
		seen[id] = struct{}{}
	}
}

func TestRecommender_TruncatesToN(t *testing.T) {
	rec := New(ratings.NewMemory(demoCorpus()), WithMinCoRated(2))

	result, err := rec.Recommend(context.Background(), []string{"alice", "bob"}, 2)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	gotIDs := result.MovieIDs()
	if len(gotIDs) != 2 || gotIDs[0] != 4 || gotIDs[1] != 6 {
		t.Errorf("Recommend() = %v, want [4 6]", gotIDs)
	}
}

func TestRecommender_DuplicateMembers(t *testing.T) {
	// 重复成员去重后结果与去重前一致（相似度不重复累加）
	rec := New(ratings.NewMemory(demoCorpus()), WithMinCoRated(2))

	unique, err := rec.Recommend(context.Background(), []string{"alice", "bob"}, 11)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	doubled, err := rec.Recommend(context.Background(), []string{"alice", "bob", "alice"}, 11)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	uniqueIDs := unique.MovieIDs()
	doubledIDs := doubled.MovieIDs()
	if len(uniqueIDs) != len(doubledIDs) {
		t.Fatalf("results differ in length: %v vs %v", uniqueIDs, doubledIDs)
	}
	for i := range uniqueIDs {
		if uniqueIDs[i] != doubledIDs[i] {
			t.Errorf("result[%d] differs: %d vs %d", i, uniqueIDs[i], doubledIDs[i])
		}
	}
}

func TestRecommender_EmptyGroup(t *testing.T) {
	rec := New(ratings.NewMemory(demoCorpus()))

	_, err := rec.Recommend(context.Background(), nil, 11)
	if err == nil {
		t.Fatal("Recommend() with empty group: want error, got nil")
	}
	if !core.IsInvalidRequest(err) {
		t.Errorf("Recommend() error = %v, want INVALID_REQUEST", err)
	}
}

func TestRecommender_FallbackOnlyWithoutSignal(t *testing.T) {
	// zoe 与 alice 只共享 1 部电影，低于阈值：没有协同信号，
	// 结果完全来自全局榜单（去掉已看）。
	corpus := core.Corpus{
		"alice": {1: 5},
		"zoe":   {1: 3, 9: 4},
	}
	rec := New(ratings.NewMemory(corpus), WithMinCoRated(2))

	result, err := rec.Recommend(context.Background(), []string{"alice"}, 11)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	gotIDs := result.MovieIDs()
	if len(gotIDs) != 1 || gotIDs[0] != 9 {
		t.Errorf("Recommend() = %v, want [9]", gotIDs)
	}
	if result.Degraded {
		t.Error("Degraded = true; missing signal is not degradation")
	}
}

func TestRecommender_AllWatchedIsEmptySuccess(t *testing.T) {
	// 快照里只有团体自己的评分：全部已看，空结果是成功不是错误。
	corpus := core.Corpus{
		"alice": {1: 5, 2: 4},
		"bob":   {2: 3},
	}
	rec := New(ratings.NewMemory(corpus), WithMinCoRated(2))

	result, err := rec.Recommend(context.Background(), []string{"alice", "bob"}, 11)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(result.Recommendations) != 0 {
		t.Errorf("Recommend() = %v, want empty", result.MovieIDs())
	}
}

func TestRecommender_ExtraFilter(t *testing.T) {
	rec := New(
		ratings.NewMemory(demoCorpus()),
		WithMinCoRated(2),
		WithFilters(&filter.RuleFilter{Expr: "movie.id in [4]"}),
	)

	result, err := rec.Recommend(context.Background(), []string{"alice", "bob"}, 11)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	gotIDs := result.MovieIDs()
	if len(gotIDs) != 2 || gotIDs[0] != 6 || gotIDs[1] != 5 {
		t.Errorf("Recommend() = %v, want [6 5]", gotIDs)
	}
}

type failingRatings struct{}

func (s *failingRatings) Name() string { return "ratings.failing" }

func (s *failingRatings) UserVector(_ context.Context, _ string) (core.RatingVector, error) {
	return nil, fmt.Errorf("%w: %v", core.ErrRatingsUnavailable, errors.New("redis down"))
}

func (s *failingRatings) Snapshot(_ context.Context) (core.Corpus, error) {
	return nil, fmt.Errorf("%w: %v", core.ErrRatingsUnavailable, errors.New("redis down"))
}

func TestRecommender_StoreUnavailable(t *testing.T) {
	rec := New(&failingRatings{})

	_, err := rec.Recommend(context.Background(), []string{"alice"}, 11)
	if err == nil {
		t.Fatal("Recommend() with failing store: want error, got nil")
	}
	if !core.IsUnavailable(err) {
		t.Errorf("Recommend() error = %v, want UNAVAILABLE", err)
	}
}
