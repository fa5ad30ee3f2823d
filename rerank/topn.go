package rerank

import (
	"context"

	"github.com/rushteam/moviekit/core"
	"github.com/rushteam/moviekit/pipeline"
)

// TopN 是截断节点：在合并、过滤之后截取前 N 部电影。
// 产品形态是 3 个领奖台位 + 8 个替补位，所以默认 N = 11。
//
// 结果比 N 短是合法的成功（快照太小），不是错误。
type TopN struct {
	// N 要保留的电影数量；<=0 时取 core.DefaultEngineConfig 的默认值
	N int
}

func (n *TopN) Name() string {
	return "rerank.topn"
}

func (n *TopN) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopN) Process(
	_ context.Context,
	_ *core.GroupContext,
	movies []*core.Movie,
) ([]*core.Movie, error) {
	limit := n.N
	if limit <= 0 {
		limit = (&core.DefaultEngineConfig{}).DefaultResultSize()
	}

	if len(movies) <= limit {
		return movies, nil
	}
	return movies[:limit], nil
}

var _ pipeline.Node = (*TopN)(nil)
