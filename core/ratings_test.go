package core

import "testing"

func TestWatchedByGroup(t *testing.T) {
	corpus := Corpus{
		"alice": {1: 5, 2: 4},
		"bob":   {2: 3, 3: 5},
		"zoe":   {9: 1},
	}

	watched := WatchedByGroup(corpus, []string{"alice", "bob", "ghost"})

	for _, id := range []int64{1, 2, 3} {
		if !watched.Contains(id) {
			t.Errorf("Contains(%d) = false, want true", id)
		}
	}
	// 非成员的评分不算已看；不在快照中的成员贡献空集
	if watched.Contains(9) {
		t.Error("Contains(9) = true; zoe is not a member")
	}
	if len(watched) != 3 {
		t.Errorf("len(watched) = %d, want 3", len(watched))
	}
}

func TestWatchedSet_NilContains(t *testing.T) {
	var w WatchedSet
	if w.Contains(1) {
		t.Error("nil WatchedSet.Contains(1) = true, want false")
	}
}

func TestClampScore(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{-1, 0},
		{0, 0},
		{3.5, 3.5},
		{5, 5},
		{99, 5},
	}
	for _, tt := range tests {
		if got := ClampScore(tt.in); got != tt.want {
			t.Errorf("ClampScore(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCorpusMovies(t *testing.T) {
	corpus := Corpus{
		"alice": {1: 5, 2: 4},
		"bob":   {2: 3, 3: 5},
	}

	movies := corpus.Movies()
	if len(movies) != 3 {
		t.Errorf("Movies() has %d entries, want 3 (deduplicated)", len(movies))
	}
}

func TestRatingVector_Clone(t *testing.T) {
	vec := RatingVector{1: 5}
	clone := vec.Clone()
	clone[1] = 2
	if vec[1] != 5 {
		t.Error("Clone() shares storage with original")
	}

	var nilVec RatingVector
	if got := nilVec.Clone(); got == nil || len(got) != 0 {
		t.Errorf("nil Clone() = %v, want empty vector", got)
	}
}
