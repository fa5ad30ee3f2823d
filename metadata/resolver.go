package metadata

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/rushteam/moviekit/core"
)

// StoreResolver 是基于 core.KeyValueStore 的电影元信息查询实现。
//
// key 约定：Hash {HashKey}，field 为十进制 movie_id，value 为
// core.MovieMeta 的 JSON。元信息由外部目录服务写入，这里只读。
type StoreResolver struct {
	store core.KeyValueStore

	// HashKey 是电影元信息 Hash 的 key，默认 "movie:meta"
	HashKey string
}

// NewStoreResolver 创建一个基于 KeyValueStore 的元信息查询器。
func NewStoreResolver(s core.KeyValueStore, hashKey string) *StoreResolver {
	if hashKey == "" {
		hashKey = "movie:meta"
	}
	return &StoreResolver{
		store:   s,
		HashKey: hashKey,
	}
}

func (r *StoreResolver) Name() string {
	return "metadata.store_resolver"
}

// Resolve 实现 core.MovieResolver。电影不存在时返回 core.ErrMovieNotFound。
func (r *StoreResolver) Resolve(ctx context.Context, movieID int64) (*core.MovieMeta, error) {
	data, err := r.store.HGet(ctx, r.HashKey, strconv.FormatInt(movieID, 10))
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, core.ErrMovieNotFound
		}
		return nil, err
	}

	var meta core.MovieMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	meta.ID = movieID
	return &meta, nil
}

// BatchResolve 实现 core.MovieResolver。缺失的电影不出现在返回 map 中。
func (r *StoreResolver) BatchResolve(ctx context.Context, movieIDs []int64) (map[int64]*core.MovieMeta, error) {
	out := make(map[int64]*core.MovieMeta, len(movieIDs))
	for _, movieID := range movieIDs {
		meta, err := r.Resolve(ctx, movieID)
		if err != nil {
			if core.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		out[movieID] = meta
	}
	return out, nil
}

// Seed 将元信息写入 Hash，供开发环境与测试准备数据。
func (r *StoreResolver) Seed(ctx context.Context, metas []*core.MovieMeta) error {
	for _, meta := range metas {
		data, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		if err := r.store.HSet(ctx, r.HashKey, strconv.FormatInt(meta.ID, 10), data); err != nil {
			return err
		}
	}
	return nil
}

var _ core.MovieResolver = (*StoreResolver)(nil)
