package filter

import (
	"context"

	"github.com/rushteam/moviekit/core"
	"github.com/rushteam/moviekit/pkg/dsl"
)

// RuleFilter 是规则过滤器：用 CEL 表达式描述运营侧的候选排除规则。
// 表达式求值为 true 的电影会被过滤掉。
//
// 示例：
//   - `movie.id in [599, 641]` → 指定电影临时下线
//   - `label.recall_source == "fallback" && movie.score < 3.0`
type RuleFilter struct {
	// Expr 是 CEL 表达式；为空时不过滤任何电影
	Expr string
}

func (f *RuleFilter) Name() string {
	return "filter.rule"
}

func (f *RuleFilter) ShouldFilter(
	_ context.Context,
	gctx *core.GroupContext,
	movie *core.Movie,
) (bool, error) {
	if f.Expr == "" || movie == nil {
		return false, nil
	}

	matched, err := dsl.NewEval(movie, gctx).Evaluate(f.Expr)
	if err != nil {
		// 规则写错不应拖垮请求：保留候选并上抛错误给 FilterNode 记录
		return false, err
	}
	return matched, nil
}

var _ Filter = (*RuleFilter)(nil)
