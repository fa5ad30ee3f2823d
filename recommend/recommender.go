package recommend

import (
	"context"
	"time"

	"github.com/rushteam/moviekit/core"
	"github.com/rushteam/moviekit/filter"
	"github.com/rushteam/moviekit/pipeline"
	"github.com/rushteam/moviekit/recall"
	"github.com/rushteam/moviekit/rerank"
)

// Recommender 是团体推荐的聚合器：一次请求从快照到排名的完整编排。
//
// 数据流：
//   校验团体 -> 取评分快照 -> 构建 GroupContext（Corpus / WatchedSet）
//   -> Fanout{GroupCF, Fallback} -> WatchedFilter(+规则过滤) -> TopN
//   -> Result（rank 1..len）
//
// 语义保证：
//   - 结果长度 = min(N, 快照内未看电影数)；短结果是成功，不是错误
//   - 结果与 WatchedSet 零交集，且无重复
//   - GroupCF 中途失败时退化为纯榜单（Fanout 负责），请求不失败
//   - 快照读取失败（UNAVAILABLE）原样上抛，调用方可整体重试
//
// 请求之间无共享可变状态，可被并发请求安全复用。
type Recommender struct {
	ratings core.RatingStore

	engine   *recall.GroupCF
	fallback *recall.Fallback
	filters  []filter.Filter
	enrich   pipeline.Node
	timeout  time.Duration
	cfg      core.EngineConfig
}

// Option 配置 Recommender。
type Option func(*Recommender)

// WithSimilarityMetric 设置相似度度量方式（cosine / pearson）。
func WithSimilarityMetric(metric string) Option {
	return func(r *Recommender) { r.engine.SimilarityMetric = metric }
}

// WithMinCoRated 设置相似度计算的最小共同评分电影数。
func WithMinCoRated(min int) Option {
	return func(r *Recommender) { r.engine.MinCoRated = min }
}

// WithFilters 追加过滤器（已看过滤之外的，如运营规则过滤）。
func WithFilters(filters ...filter.Filter) Option {
	return func(r *Recommender) { r.filters = append(r.filters, filters...) }
}

// WithEnrichNode 设置后处理节点（如 metadata.EnrichNode 补充元信息）。
func WithEnrichNode(node pipeline.Node) Option {
	return func(r *Recommender) { r.enrich = node }
}

// WithSourceTimeout 设置单个召回源的超时时间。
func WithSourceTimeout(d time.Duration) Option {
	return func(r *Recommender) { r.timeout = d }
}

// WithConfig 设置引擎配置（默认 core.DefaultEngineConfig）。
func WithConfig(cfg core.EngineConfig) Option {
	return func(r *Recommender) {
		r.cfg = cfg
		r.engine.Config = cfg
	}
}

// New 创建一个 Recommender。ratings 是注入的评分存储（接口依赖，
// 测试时可用 ratings.Memory 替换）。
func New(ratingStore core.RatingStore, opts ...Option) *Recommender {
	r := &Recommender{
		ratings:  ratingStore,
		engine:   &recall.GroupCF{},
		fallback: &recall.Fallback{},
		cfg:      &core.DefaultEngineConfig{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Recommendation 是结果中的一个排位。
type Recommendation struct {
	Rank  int
	Movie *core.Movie
}

// Result 是一次团体推荐的最终产物：有序、无重复、与已看集合零交集。
type Result struct {
	Recommendations []Recommendation

	// Degraded 标记本次结果是否因协同引擎失败而退化为纯榜单
	Degraded bool
}

// MovieIDs 按排名返回结果的 movie_id 序列。
func (r *Result) MovieIDs() []int64 {
	out := make([]int64, 0, len(r.Recommendations))
	for _, rec := range r.Recommendations {
		out = append(out, rec.Movie.ID)
	}
	return out
}

// dedupeMembers 去除重复成员，保持首次出现的顺序。
// 重复的成员不应让同一份相似度被重复累加进 peer 权重。
func dedupeMembers(members []string) []string {
	seen := make(map[string]struct{}, len(members))
	out := make([]string, 0, len(members))
	for _, m := range members {
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}

// Recommend 为一个团体产出排名推荐。
//
// members 至少 1 个（重复成员只算一次），否则返回 INVALID_REQUEST；
// n <= 0 时取默认值（11）。
func (r *Recommender) Recommend(ctx context.Context, members []string, n int) (*Result, error) {
	members = dedupeMembers(members)
	if len(members) == 0 {
		return nil, core.ErrEmptyGroup
	}
	if n <= 0 {
		n = r.cfg.DefaultResultSize()
	}

	// 一次请求一份快照；引擎与榜单共享同一份，互相可比
	corpus, err := r.ratings.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	gctx := &core.GroupContext{
		Members: members,
		Scene:   "movie_night",
		Corpus:  corpus,
		Watched: core.WatchedByGroup(corpus, members),
	}

	filters := append([]filter.Filter{&filter.WatchedFilter{}}, r.filters...)
	nodes := []pipeline.Node{
		&recall.Fanout{
			Sources: []recall.Source{r.engine, r.fallback},
			Timeout: r.timeout,
		},
		&filter.FilterNode{Filters: filters},
		&rerank.TopN{N: n},
	}
	if r.enrich != nil {
		nodes = append(nodes, r.enrich)
	}

	p := &pipeline.Pipeline{Nodes: nodes}
	movies, err := p.Run(ctx, gctx, nil)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Recommendations: make([]Recommendation, 0, len(movies)),
	}
	if _, ok := gctx.GetLabel("degraded"); ok {
		result.Degraded = true
	}
	for i, m := range movies {
		result.Recommendations = append(result.Recommendations, Recommendation{
			Rank:  i + 1,
			Movie: m,
		})
	}
	return result, nil
}
