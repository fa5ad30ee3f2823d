package recall

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/moviekit/core"
	"github.com/rushteam/moviekit/pipeline"
	"github.com/rushteam/moviekit/pkg/utils"
)

// GroupCF 是团体协同打分引擎（Group User-CF）。
//
// 核心思想："和这群人口味相似的观众，喜欢什么电影"
//
// 算法流程：
//  1. 每个团体成员对快照中的每个非成员用户，在共同评分电影子集上
//     计算相似度（cosine / pearson）；共同评分少于 MinCoRated 的
//     用户贡献零权重（冷启动保护）
//  2. 非成员用户的团体权重 = 各成员相似度之和（只累加正相似度）
//  3. 对每部没有任何成员看过的候选电影，预测分 = 按权重的加权平均：
//     Σ(weight * rating) / Σ(weight)，只统计真实评过这部电影的用户
//  4. 权重和为 0 的候选不出现在输出中——"未知"与"预测为低分"
//     必须可区分，合并方据此决定回退
//
// 边界行为：
//  - 空团体 -> core.ErrEmptyGroup（INVALID_REQUEST）
//  - 成员评分向量为空：不贡献信号，也不阻塞打分
//  - 快照里只有团体自己（没有外部观众）：返回空结果，不是错误，
//    表示合并方应完全依赖全局榜单
//
// 并发模型：逐成员的相似度计算相互独立，用 errgroup 并行；
// 一次请求共享同一份快照，无共享可变状态。
type GroupCF struct {
	// SimilarityMetric 相似度度量方式：cosine / pearson，默认 cosine
	SimilarityMetric string

	// MinCoRated 计算相似度所需的最小共同评分电影数，默认 3
	MinCoRated int

	// MaxCandidates 输出的候选上限；<=0 表示不截断
	MaxCandidates int

	// Config 提供默认值；为空时使用 core.DefaultEngineConfig
	Config core.EngineConfig
}

func (r *GroupCF) Name() string        { return "recall.group_cf" }
func (r *GroupCF) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 pipeline.Node 接口，直接调用 Recall。
func (r *GroupCF) Process(
	ctx context.Context,
	gctx *core.GroupContext,
	_ []*core.Movie,
) ([]*core.Movie, error) {
	return r.Recall(ctx, gctx)
}

// Recall 实现 Source 接口。
func (r *GroupCF) Recall(
	ctx context.Context,
	gctx *core.GroupContext,
) ([]*core.Movie, error) {
	if gctx == nil || len(gctx.Members) == 0 {
		return nil, core.ErrEmptyGroup
	}

	cfg := r.Config
	if cfg == nil {
		cfg = &core.DefaultEngineConfig{}
	}
	metric := r.SimilarityMetric
	if metric == "" {
		metric = cfg.DefaultSimilarityMetric()
	}
	minCoRated := r.MinCoRated
	if minCoRated <= 0 {
		minCoRated = cfg.DefaultMinCoRated()
	}

	corpus := gctx.Corpus
	watched := gctx.Watched
	if watched == nil {
		watched = core.WatchedByGroup(corpus, gctx.Members)
	}

	// 非成员用户列表
	peers := make([]string, 0, len(corpus))
	for userID := range corpus {
		if !gctx.IsMember(userID) {
			peers = append(peers, userID)
		}
	}
	if len(peers) == 0 {
		// 快照里只有团体自己：没有协同信号，交给全局榜单
		return nil, nil
	}

	// 逐成员并行累加每个 peer 的团体权重
	var (
		mu      sync.Mutex
		weights = make(map[string]float64, len(peers))
	)
	eg, egCtx := errgroup.WithContext(ctx)
	seen := make(map[string]struct{}, len(gctx.Members))
	for _, member := range gctx.Members {
		if _, dup := seen[member]; dup {
			continue // 重复成员只算一次，避免相似度被重复累加
		}
		seen[member] = struct{}{}

		vec := gctx.MemberVector(member)
		if len(vec) == 0 {
			continue // 没有评分的成员不贡献信号，也不阻塞
		}
		eg.Go(func() error {
			local := make(map[string]float64, len(peers))
			for _, peer := range peers {
				// 超时/取消及时生效（快照大时逐 peer 计算可能很长）
				if err := egCtx.Err(); err != nil {
					return err
				}
				sim := similarity(vec, corpus[peer], metric, minCoRated)
				if sim > 0 { // 只保留正相似度
					local[peer] = sim
				}
			}
			mu.Lock()
			for peer, sim := range local {
				weights[peer] += sim
			}
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	// 加权平均预测每部未看候选的团体分
	type accum struct {
		weighted float64
		weight   float64
	}
	scores := make(map[int64]*accum)
	for peer, weight := range weights {
		for movieID, rating := range corpus[peer] {
			if watched.Contains(movieID) {
				continue // 已看电影绝不出现在输出里
			}
			acc, ok := scores[movieID]
			if !ok {
				acc = &accum{}
				scores[movieID] = acc
			}
			acc.weighted += weight * rating
			acc.weight += weight
		}
	}

	out := make([]*core.Movie, 0, len(scores))
	for movieID, acc := range scores {
		if acc.weight == 0 {
			continue // 没有相似用户评过：缺席，而不是 0 分
		}
		m := core.NewMovie(movieID)
		m.Score = acc.weighted / acc.weight
		m.PutLabel("recall_source", utils.Label{Value: "group_cf", Source: "recall"})
		m.PutLabel("cf_metric", utils.Label{Value: metric, Source: "recall"})
		out = append(out, m)
	}

	// 分数降序；同分按 movie_id 升序，保证可复现
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})

	if r.MaxCandidates > 0 && len(out) > r.MaxCandidates {
		out = out[:r.MaxCandidates]
	}
	return out, nil
}

var _ Source = (*GroupCF)(nil)
var _ pipeline.Node = (*GroupCF)(nil)
