package recall

import (
	"context"

	"github.com/rushteam/moviekit/core"
)

// Source 是召回源的抽象：给定一次团体请求，产出候选电影。
type Source interface {
	Name() string
	Recall(ctx context.Context, gctx *core.GroupContext) ([]*core.Movie, error)
}
