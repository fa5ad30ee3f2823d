package pipeline

import (
	"context"

	"github.com/rushteam/moviekit/core"
)

// Pipeline 是 moviekit 的核心抽象：把推荐逻辑拆成可组合的 Node 链。
type Pipeline struct {
	Nodes []Node
}

func (p *Pipeline) Run(
	ctx context.Context,
	gctx *core.GroupContext,
	movies []*core.Movie,
) ([]*core.Movie, error) {
	cur := movies
	for _, node := range p.Nodes {
		next, err := node.Process(ctx, gctx, cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}
