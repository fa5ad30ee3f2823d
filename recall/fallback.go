package recall

import (
	"context"
	"sort"

	"github.com/rushteam/moviekit/core"
	"github.com/rushteam/moviekit/pipeline"
	"github.com/rushteam/moviekit/pkg/utils"
)

// Fallback 是全局榜单召回源：与协同信号无关的确定性排序。
//
// 排序规则：全快照平均分降序，同分按 movie_id 升序（可复现）。
// 这里不做任何排除——排除已看电影是合并方（过滤节点）的事。
//
// 纯函数性质：对同一份快照两次调用产出完全相同的顺序。
// 成本是 O(快照内评分总数)，每次请求只取一次快照、算一次榜单，
// 因此不在快照之间做缓存（跨快照缓存需要显式失效，得不偿失）。
type Fallback struct {
	// MaxCandidates 输出的候选上限；<=0 表示不截断
	MaxCandidates int
}

func (r *Fallback) Name() string        { return "recall.fallback" }
func (r *Fallback) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 pipeline.Node 接口，直接调用 Recall。
func (r *Fallback) Process(
	ctx context.Context,
	gctx *core.GroupContext,
	_ []*core.Movie,
) ([]*core.Movie, error) {
	return r.Recall(ctx, gctx)
}

// Recall 实现 Source 接口。
func (r *Fallback) Recall(
	ctx context.Context,
	gctx *core.GroupContext,
) ([]*core.Movie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if gctx == nil {
		return nil, nil
	}

	ranked := r.Rank(gctx.Corpus)

	if r.MaxCandidates > 0 && len(ranked) > r.MaxCandidates {
		ranked = ranked[:r.MaxCandidates]
	}

	out := make([]*core.Movie, 0, len(ranked))
	for _, entry := range ranked {
		m := core.NewMovie(entry.MovieID)
		m.Score = entry.Mean
		m.PutLabel("recall_source", utils.Label{Value: "fallback", Source: "recall"})
		out = append(out, m)
	}
	return out, nil
}

// RankedMovie 是榜单条目：电影与其全局平均分。
type RankedMovie struct {
	MovieID int64
	Mean    float64
}

// Rank 计算快照的全局榜单：平均分降序，同分按 movie_id 升序。
// 对同一份快照是纯函数，多次调用结果一致。
func (r *Fallback) Rank(corpus core.Corpus) []RankedMovie {
	type stat struct {
		sum   float64
		count int
	}
	stats := make(map[int64]*stat)
	for _, vec := range corpus {
		for movieID, score := range vec {
			s, ok := stats[movieID]
			if !ok {
				s = &stat{}
				stats[movieID] = s
			}
			s.sum += score
			s.count++
		}
	}

	ranked := make([]RankedMovie, 0, len(stats))
	for movieID, s := range stats {
		ranked = append(ranked, RankedMovie{
			MovieID: movieID,
			Mean:    s.sum / float64(s.count),
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Mean != ranked[j].Mean {
			return ranked[i].Mean > ranked[j].Mean
		}
		return ranked[i].MovieID < ranked[j].MovieID
	})
	return ranked
}

var _ Source = (*Fallback)(nil)
var _ pipeline.Node = (*Fallback)(nil)
