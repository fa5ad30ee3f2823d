package filter

import (
	"context"

	"github.com/rushteam/moviekit/core"
)

// WatchedFilter 是已看过滤器：剔除团体成员看过（评过分）的电影。
//
// 这是结果不变式的兜底防线：GroupCF 对自己的候选已经排除了已看电影，
// 但全局榜单不知道团体是谁，必须在这里统一过滤。
type WatchedFilter struct{}

func (f *WatchedFilter) Name() string {
	return "filter.watched"
}

func (f *WatchedFilter) ShouldFilter(
	_ context.Context,
	gctx *core.GroupContext,
	movie *core.Movie,
) (bool, error) {
	if movie == nil {
		return true, nil
	}
	if gctx == nil {
		return false, nil
	}

	watched := gctx.Watched
	if watched == nil {
		watched = core.WatchedByGroup(gctx.Corpus, gctx.Members)
	}
	return watched.Contains(movie.ID), nil
}

var _ Filter = (*WatchedFilter)(nil)
