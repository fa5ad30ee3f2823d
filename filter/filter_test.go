package filter

import (
	"context"
	"errors"
	"testing"

	"github.com/rushteam/moviekit/core"
	"github.com/rushteam/moviekit/pkg/utils"
)

func TestWatchedFilter(t *testing.T) {
	corpus := core.Corpus{
		"alice": {1: 5, 2: 4},
		"bob":   {2: 3, 3: 5},
	}
	members := []string{"alice", "bob"}
	gctx := &core.GroupContext{
		Members: members,
		Corpus:  corpus,
		Watched: core.WatchedByGroup(corpus, members),
	}

	f := &WatchedFilter{}
	tests := []struct {
		movieID int64
		want    bool
	}{
		{1, true},
		{2, true},
		{3, true},
		{4, false},
	}
	for _, tt := range tests {
		got, err := f.ShouldFilter(context.Background(), gctx, core.NewMovie(tt.movieID))
		if err != nil {
			t.Fatalf("ShouldFilter(%d) error = %v", tt.movieID, err)
		}
		if got != tt.want {
			t.Errorf("ShouldFilter(%d) = %v, want %v", tt.movieID, got, tt.want)
		}
	}
}

func TestWatchedFilter_DerivesFromCorpus(t *testing.T) {
	// gctx.Watched 未预计算时从 Corpus 推导
	gctx := &core.GroupContext{
		Members: []string{"alice"},
		Corpus:  core.Corpus{"alice": {7: 5}},
	}

	f := &WatchedFilter{}
	got, err := f.ShouldFilter(context.Background(), gctx, core.NewMovie(7))
	if err != nil {
		t.Fatalf("ShouldFilter() error = %v", err)
	}
	if !got {
		t.Error("ShouldFilter(7) = false, want true when derived from corpus")
	}
}

func TestRuleFilter(t *testing.T) {
	gctx := &core.GroupContext{
		Members: []string{"alice"},
		Scene:   "movie_night",
	}

	lowFallback := core.NewMovie(2)
	lowFallback.Score = 2.0
	lowFallback.PutLabel("recall_source", utils.Label{Value: "fallback", Source: "recall"})

	highFallback := core.NewMovie(3)
	highFallback.Score = 4.5
	highFallback.PutLabel("recall_source", utils.Label{Value: "fallback", Source: "recall"})

	tests := []struct {
		name  string
		expr  string
		movie *core.Movie
		want  bool
	}{
		{
			name:  "banned movie id",
			expr:  "movie.id in [599, 641]",
			movie: core.NewMovie(599),
			want:  true,
		},
		{
			name:  "id not banned",
			expr:  "movie.id in [599, 641]",
			movie: core.NewMovie(7),
			want:  false,
		},
		{
			name:  "low score fallback candidate",
			expr:  `label.recall_source == "fallback" && movie.score < 3.0`,
			movie: lowFallback,
			want:  true,
		},
		{
			name:  "high score fallback candidate survives",
			expr:  `label.recall_source == "fallback" && movie.score < 3.0`,
			movie: highFallback,
			want:  false,
		},
		{
			name:  "empty expression filters nothing",
			expr:  "",
			movie: core.NewMovie(1),
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &RuleFilter{Expr: tt.expr}
			got, err := f.ShouldFilter(context.Background(), gctx, tt.movie)
			if err != nil {
				t.Fatalf("ShouldFilter() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ShouldFilter() = %v, want %v", got, tt.want)
			}
		})
	}
}

type errFilter struct{}

func (f *errFilter) Name() string { return "filter.err" }

func (f *errFilter) ShouldFilter(_ context.Context, _ *core.GroupContext, _ *core.Movie) (bool, error) {
	return true, errors.New("rule broken")
}

func TestFilterNode(t *testing.T) {
	corpus := core.Corpus{"alice": {1: 5}}
	gctx := &core.GroupContext{
		Members: []string{"alice"},
		Corpus:  corpus,
		Watched: core.WatchedByGroup(corpus, []string{"alice"}),
	}

	// 出错的过滤器被跳过，不拖垮请求，也不误杀候选
	n := &FilterNode{Filters: []Filter{&errFilter{}, &WatchedFilter{}}}

	in := []*core.Movie{core.NewMovie(1), core.NewMovie(2), nil, core.NewMovie(3)}
	out, err := n.Process(context.Background(), gctx, in)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	wantIDs := []int64{2, 3}
	if len(out) != len(wantIDs) {
		t.Fatalf("Process() returned %d movies, want %d", len(out), len(wantIDs))
	}
	for i, m := range out {
		if m.ID != wantIDs[i] {
			t.Errorf("out[%d].ID = %d, want %d", i, m.ID, wantIDs[i])
		}
	}
}
