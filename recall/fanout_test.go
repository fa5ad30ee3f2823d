package recall

import (
	"context"
	"errors"
	"testing"

	"github.com/rushteam/moviekit/core"
)

type stubSource struct {
	name   string
	movies []*core.Movie
	err    error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Recall(_ context.Context, _ *core.GroupContext) ([]*core.Movie, error) {
	return s.movies, s.err
}

func movieWithScore(id int64, score float64) *core.Movie {
	m := core.NewMovie(id)
	m.Score = score
	return m
}

func TestFanout_MergeByPriority(t *testing.T) {
	// 0 位源按分数降序排前，1 位源按自身顺序补后，重复 ID 保留 0 位源的候选。
	primary := &stubSource{
		name:   "primary",
		movies: []*core.Movie{movieWithScore(10, 2), movieWithScore(11, 5)},
	}
	secondary := &stubSource{
		name:   "secondary",
		movies: []*core.Movie{movieWithScore(11, 9), movieWithScore(12, 1)},
	}

	n := &Fanout{Sources: []Source{primary, secondary}}
	gctx := &core.GroupContext{Members: []string{"g"}}

	movies, err := n.Process(context.Background(), gctx, nil)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	wantIDs := []int64{11, 10, 12}
	if len(movies) != len(wantIDs) {
		t.Fatalf("Process() returned %d movies, want %d", len(movies), len(wantIDs))
	}
	for i, m := range movies {
		if m.ID != wantIDs[i] {
			t.Errorf("movies[%d].ID = %d, want %d", i, m.ID, wantIDs[i])
		}
	}
	// 重复的 11 必须来自高优先级源（分数 5，不是 9）
	if !almostEqual(movies[0].Score, 5) {
		t.Errorf("duplicate kept from wrong source: score = %v, want 5", movies[0].Score)
	}
}

func TestFanout_DegradeOnSourceFailure(t *testing.T) {
	failing := &stubSource{name: "primary", err: errors.New("backend down")}
	healthy := &stubSource{
		name:   "secondary",
		movies: []*core.Movie{movieWithScore(1, 4)},
	}

	n := &Fanout{Sources: []Source{failing, healthy}}
	gctx := &core.GroupContext{Members: []string{"g"}}

	movies, err := n.Process(context.Background(), gctx, nil)
	if err != nil {
		t.Fatalf("Process() error = %v, want degraded success", err)
	}
	if len(movies) != 1 || movies[0].ID != 1 {
		t.Fatalf("Process() = %v, want movie 1 from healthy source", movies)
	}
	if lbl, ok := gctx.GetLabel("degraded"); !ok || lbl.Value != "primary" {
		t.Errorf("degraded label = %v, want primary", lbl.Value)
	}
}

func TestFanout_ConcurrentFailuresLabelOnce(t *testing.T) {
	// 多个召回源并发失败：标签在合并阶段统一写入，
	// 结果仍是健康源的候选，且每个失败源都被记录
	failedNames := []string{"a", "b", "c", "d"}
	sources := make([]Source, 0, len(failedNames)+1)
	for _, name := range failedNames {
		sources = append(sources, &stubSource{name: name, err: errors.New(name + " down")})
	}
	sources = append(sources, &stubSource{
		name:   "healthy",
		movies: []*core.Movie{movieWithScore(1, 4)},
	})

	n := &Fanout{Sources: sources}
	gctx := &core.GroupContext{Members: []string{"g"}}

	movies, err := n.Process(context.Background(), gctx, nil)
	if err != nil {
		t.Fatalf("Process() error = %v, want degraded success", err)
	}
	if len(movies) != 1 || movies[0].ID != 1 {
		t.Fatalf("Process() = %v, want movie 1 from healthy source", movies)
	}

	lbl, ok := gctx.GetLabel("degraded")
	if !ok {
		t.Fatal("degraded label missing")
	}
	// 失败源名排序后合并，保证可复现
	if lbl.Value != "a|b|c|d" {
		t.Errorf("degraded label = %q, want a|b|c|d", lbl.Value)
	}
}

func TestFanout_InvalidRequestAborts(t *testing.T) {
	invalid := &stubSource{name: "primary", err: core.ErrEmptyGroup}
	healthy := &stubSource{
		name:   "secondary",
		movies: []*core.Movie{movieWithScore(1, 4)},
	}

	n := &Fanout{Sources: []Source{invalid, healthy}}

	_, err := n.Process(context.Background(), &core.GroupContext{}, nil)
	if err == nil {
		t.Fatal("Process() with invalid request: want error, got nil")
	}
	if !core.IsInvalidRequest(err) {
		t.Errorf("Process() error = %v, want INVALID_REQUEST", err)
	}
}

func TestFanout_AllSourcesFailed(t *testing.T) {
	n := &Fanout{Sources: []Source{
		&stubSource{name: "a", err: errors.New("a down")},
		&stubSource{name: "b", err: errors.New("b down")},
	}}

	_, err := n.Process(context.Background(), &core.GroupContext{Members: []string{"g"}}, nil)
	if err == nil {
		t.Fatal("Process() with all sources failed: want error, got nil")
	}
}

func TestFanout_NoSources(t *testing.T) {
	n := &Fanout{}

	movies, err := n.Process(context.Background(), &core.GroupContext{}, nil)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(movies) != 0 {
		t.Errorf("Process() = %v, want empty", movies)
	}
}
