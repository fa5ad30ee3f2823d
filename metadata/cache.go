package metadata

import (
	"context"
	"sync"
	"time"

	"github.com/rushteam/moviekit/core"
)

// CachedResolver 在任意 MovieResolver 前加一层 TTL 内存缓存。
// 电影元信息变化很慢，短 TTL 能挡掉绝大部分重复查询。
// NOT_FOUND 不缓存：新上架电影应该在下一次查询就能出现。
type CachedResolver struct {
	inner core.MovieResolver
	ttl   time.Duration

	mu    sync.RWMutex
	cache map[int64]*cacheEntry
}

type cacheEntry struct {
	meta     *core.MovieMeta
	expireAt time.Time
}

// NewCachedResolver 创建一个带缓存的查询器；ttl <= 0 时默认 5 分钟。
func NewCachedResolver(inner core.MovieResolver, ttl time.Duration) *CachedResolver {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedResolver{
		inner: inner,
		ttl:   ttl,
		cache: make(map[int64]*cacheEntry),
	}
}

func (r *CachedResolver) Name() string {
	return "metadata.cached:" + r.inner.Name()
}

func (r *CachedResolver) Resolve(ctx context.Context, movieID int64) (*core.MovieMeta, error) {
	r.mu.RLock()
	e, ok := r.cache[movieID]
	r.mu.RUnlock()
	if ok && time.Now().Before(e.expireAt) {
		return e.meta, nil
	}

	meta, err := r.inner.Resolve(ctx, movieID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[movieID] = &cacheEntry{meta: meta, expireAt: time.Now().Add(r.ttl)}
	r.mu.Unlock()
	return meta, nil
}

func (r *CachedResolver) BatchResolve(ctx context.Context, movieIDs []int64) (map[int64]*core.MovieMeta, error) {
	out := make(map[int64]*core.MovieMeta, len(movieIDs))
	missing := make([]int64, 0)

	now := time.Now()
	r.mu.RLock()
	for _, movieID := range movieIDs {
		if e, ok := r.cache[movieID]; ok && now.Before(e.expireAt) {
			out[movieID] = e.meta
		} else {
			missing = append(missing, movieID)
		}
	}
	r.mu.RUnlock()

	if len(missing) == 0 {
		return out, nil
	}

	fetched, err := r.inner.BatchResolve(ctx, missing)
	if err != nil {
		return nil, err
	}

	expireAt := time.Now().Add(r.ttl)
	r.mu.Lock()
	for movieID, meta := range fetched {
		r.cache[movieID] = &cacheEntry{meta: meta, expireAt: expireAt}
		out[movieID] = meta
	}
	r.mu.Unlock()
	return out, nil
}

var _ core.MovieResolver = (*CachedResolver)(nil)
