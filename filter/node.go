package filter

import (
	"context"

	"github.com/rushteam/moviekit/core"
	"github.com/rushteam/moviekit/pipeline"
	"github.com/rushteam/moviekit/pkg/utils"
)

// FilterNode 是过滤 Node：组合多个过滤器，任何一个命中即剔除候选。
//
// 过滤器自身出错（如规则表达式写错）时跳过该过滤器并在请求上下文
// 打标记，不中断请求——过滤是保护性环节，不应成为新的故障点。
type FilterNode struct {
	Filters []Filter
}

func (n *FilterNode) Name() string {
	return "filter.node"
}

func (n *FilterNode) Kind() pipeline.Kind {
	return pipeline.KindFilter
}

func (n *FilterNode) Process(
	ctx context.Context,
	gctx *core.GroupContext,
	movies []*core.Movie,
) ([]*core.Movie, error) {
	if len(n.Filters) == 0 || len(movies) == 0 {
		return movies, nil
	}

	out := make([]*core.Movie, 0, len(movies))
	for _, movie := range movies {
		if movie == nil {
			continue
		}
		if reason := n.firstMatch(ctx, gctx, movie); reason != "" {
			// 记录过滤原因，用于调试/观测
			movie.PutLabel("filtered", utils.Label{Value: "true", Source: reason})
			continue
		}
		out = append(out, movie)
	}
	return out, nil
}

// firstMatch 返回第一个命中的过滤器名；没有命中返回空串。
func (n *FilterNode) firstMatch(
	ctx context.Context,
	gctx *core.GroupContext,
	movie *core.Movie,
) string {
	for _, f := range n.Filters {
		matched, err := f.ShouldFilter(ctx, gctx, movie)
		if err != nil {
			if gctx != nil {
				gctx.PutLabel("filter_error", utils.Label{Value: f.Name(), Source: "filter"})
			}
			continue
		}
		if matched {
			return f.Name()
		}
	}
	return ""
}

var _ pipeline.Node = (*FilterNode)(nil)
