package metadata

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/moviekit/core"
	"github.com/rushteam/moviekit/store"
)

func seededResolver(t *testing.T) *StoreResolver {
	t.Helper()
	s := store.NewMemoryStore()
	t.Cleanup(func() { s.Close() })

	r := NewStoreResolver(s, "movie:meta")
	err := r.Seed(context.Background(), []*core.MovieMeta{
		{ID: 101, Title: "The Long Voyage", Genres: []string{"Drama"}},
		{ID: 102, Title: "Night Market"},
	})
	if err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	return r
}

func TestStoreResolver_Resolve(t *testing.T) {
	r := seededResolver(t)

	meta, err := r.Resolve(context.Background(), 101)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if meta.ID != 101 || meta.Title != "The Long Voyage" {
		t.Errorf("Resolve() = %+v", meta)
	}

	_, err = r.Resolve(context.Background(), 999)
	if !core.IsNotFound(err) {
		t.Errorf("Resolve(999) error = %v, want NOT_FOUND", err)
	}
}

func TestStoreResolver_BatchResolve(t *testing.T) {
	r := seededResolver(t)

	// 缺失的电影不出现在结果里，不是错误
	got, err := r.BatchResolve(context.Background(), []int64{101, 102, 999})
	if err != nil {
		t.Fatalf("BatchResolve() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("BatchResolve() returned %d entries, want 2", len(got))
	}
	if _, ok := got[999]; ok {
		t.Error("BatchResolve() contains missing movie 999")
	}
}

// countingResolver 统计底层查询次数。
type countingResolver struct {
	inner core.MovieResolver
	calls int
}

func (r *countingResolver) Name() string { return "counting" }

func (r *countingResolver) Resolve(ctx context.Context, movieID int64) (*core.MovieMeta, error) {
	r.calls++
	return r.inner.Resolve(ctx, movieID)
}

func (r *countingResolver) BatchResolve(ctx context.Context, movieIDs []int64) (map[int64]*core.MovieMeta, error) {
	r.calls++
	return r.inner.BatchResolve(ctx, movieIDs)
}

func TestCachedResolver(t *testing.T) {
	counting := &countingResolver{inner: seededResolver(t)}
	cached := NewCachedResolver(counting, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		meta, err := cached.Resolve(ctx, 101)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if meta.Title != "The Long Voyage" {
			t.Errorf("Resolve().Title = %q", meta.Title)
		}
	}
	if counting.calls != 1 {
		t.Errorf("inner resolver called %d times, want 1", counting.calls)
	}

	// NOT_FOUND 不缓存：每次都落到底层
	if _, err := cached.Resolve(ctx, 999); !core.IsNotFound(err) {
		t.Fatalf("Resolve(999) error = %v, want NOT_FOUND", err)
	}
	if _, err := cached.Resolve(ctx, 999); !core.IsNotFound(err) {
		t.Fatalf("Resolve(999) error = %v, want NOT_FOUND", err)
	}
	if counting.calls != 3 {
		t.Errorf("inner resolver called %d times, want 3", counting.calls)
	}
}

func TestCachedResolver_BatchResolve(t *testing.T) {
	counting := &countingResolver{inner: seededResolver(t)}
	cached := NewCachedResolver(counting, time.Minute)
	ctx := context.Background()

	if _, err := cached.BatchResolve(ctx, []int64{101, 102}); err != nil {
		t.Fatalf("BatchResolve() error = %v", err)
	}
	got, err := cached.BatchResolve(ctx, []int64{101, 102})
	if err != nil {
		t.Fatalf("BatchResolve() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("BatchResolve() returned %d entries, want 2", len(got))
	}
	if counting.calls != 1 {
		t.Errorf("inner resolver called %d times, want 1", counting.calls)
	}
}
