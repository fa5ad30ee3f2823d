package metadata

import (
	"context"

	"github.com/rushteam/moviekit/core"
	"github.com/rushteam/moviekit/pipeline"
	"github.com/rushteam/moviekit/pkg/utils"
)

// EnrichNode 是后处理节点：为最终候选补充电影元信息与统计特征。
//
// 降级语义：元信息查询失败时结果退化为裸 ID，绝不让请求失败——
// 推荐列表本身比标题海报重要。
type EnrichNode struct {
	// Resolver 提供展示性元信息（标题 / 类型 / 海报）
	Resolver core.MovieResolver

	// Features 提供数值特征（可选，如 Feast 的热度统计）
	Features core.MovieFeatureService
}

func (n *EnrichNode) Name() string {
	return "metadata.enrich"
}

func (n *EnrichNode) Kind() pipeline.Kind {
	return pipeline.KindPostProcess
}

func (n *EnrichNode) Process(
	ctx context.Context,
	_ *core.GroupContext,
	movies []*core.Movie,
) ([]*core.Movie, error) {
	if len(movies) == 0 {
		return movies, nil
	}

	movieIDs := make([]int64, 0, len(movies))
	for _, m := range movies {
		movieIDs = append(movieIDs, m.ID)
	}

	if n.Resolver != nil {
		metas, err := n.Resolver.BatchResolve(ctx, movieIDs)
		if err == nil {
			for _, m := range movies {
				meta, ok := metas[m.ID]
				if !ok {
					m.PutLabel("meta_missing", utils.Label{Value: "true", Source: "postprocess"})
					continue
				}
				m.PutMeta("title", meta.Title)
				if len(meta.Genres) > 0 {
					m.PutMeta("genres", meta.Genres)
				}
				if meta.Poster != "" {
					m.PutMeta("poster", meta.Poster)
				}
				if meta.Overview != "" {
					m.PutMeta("overview", meta.Overview)
				}
			}
		}
	}

	if n.Features != nil {
		features, err := n.Features.BatchMovieFeatures(ctx, movieIDs)
		if err == nil {
			for _, m := range movies {
				if fv, ok := features[m.ID]; ok && len(fv) > 0 {
					m.PutMeta("features", fv)
				}
			}
		}
	}

	return movies, nil
}

var _ pipeline.Node = (*EnrichNode)(nil)
