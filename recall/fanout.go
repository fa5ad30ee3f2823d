package recall

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/moviekit/core"
	"github.com/rushteam/moviekit/pipeline"
	"github.com/rushteam/moviekit/pkg/utils"
)

// Fanout 是一个 Recall Node：并发执行多个召回源，按优先级合并结果。
//
// 合并规则（优先级按 Sources 顺序，索引越小优先级越高）：
//  1. 先比优先级，再比分数（降序），同分比 movie_id（升序）
//  2. 去重时保留优先级更高的那条
//
// 把 GroupCF 放在 0 位、Fallback 放在 1 位，上面的规则恰好实现
// "协同候选按分数排前，榜单候选按榜单顺序补后，重复的跳过"。
//
// 降级语义：
//  - 某个召回源失败时，请求不失败，结果退化为其余源（并打 degraded 标签）
//  - 例外是 INVALID_REQUEST：请求本身不合法，立即上抛，不做任何退化
//  - 所有源都失败时上抛最后一个错误——错误绝不静默成空结果
type Fanout struct {
	Sources []Source

	// Timeout 是每个召回源的超时时间；<=0 表示不限制
	Timeout time.Duration
}

func (n *Fanout) Name() string        { return "recall.fanout" }
func (n *Fanout) Kind() pipeline.Kind { return pipeline.KindRecall }

type fanoutEntry struct {
	movie    *core.Movie
	priority int
}

func (n *Fanout) Process(
	ctx context.Context,
	gctx *core.GroupContext,
	_ []*core.Movie,
) ([]*core.Movie, error) {
	if len(n.Sources) == 0 {
		return nil, nil
	}

	var (
		mu      sync.Mutex
		all     []fanoutEntry
		failed  []string
		lastErr error
		eg, _   = errgroup.WithContext(ctx)
	)

	for i, src := range n.Sources {
		s := src
		priority := i

		eg.Go(func() error {
			recallCtx := ctx
			if n.Timeout > 0 {
				var cancel context.CancelFunc
				recallCtx, cancel = context.WithTimeout(ctx, n.Timeout)
				defer cancel()
			}

			movies, err := s.Recall(recallCtx, gctx)
			if err != nil {
				if core.IsInvalidRequest(err) {
					return err // 请求本身不合法，不退化
				}
				// gctx.Labels 不是并发安全的：失败源先收集，
				// eg.Wait 之后再统一打 degraded 标签
				mu.Lock()
				failed = append(failed, s.Name())
				lastErr = err
				mu.Unlock()
				return nil
			}

			// 记录召回来源与优先级，方便 explain / 观测
			for _, m := range movies {
				m.PutLabel("recall_priority", utils.Label{Value: strconv.Itoa(priority), Source: "recall"})
			}

			mu.Lock()
			for _, m := range movies {
				all = append(all, fanoutEntry{movie: m, priority: priority})
			}
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if len(failed) == len(n.Sources) && lastErr != nil {
		return nil, lastErr
	}
	if gctx != nil && len(failed) > 0 {
		sort.Strings(failed) // 标签值可复现
		for _, name := range failed {
			gctx.PutLabel("degraded", utils.Label{Value: name, Source: "recall"})
		}
	}

	return mergeByPriority(all), nil
}

// mergeByPriority 按（优先级, 分数降序, movie_id 升序）排序并去重，
// 重复 ID 保留优先级更高（排序后先出现）的那条。
func mergeByPriority(all []fanoutEntry) []*core.Movie {
	sort.Slice(all, func(i, j int) bool {
		if all[i].priority != all[j].priority {
			return all[i].priority < all[j].priority
		}
		if all[i].movie.Score != all[j].movie.Score {
			return all[i].movie.Score > all[j].movie.Score
		}
		return all[i].movie.ID < all[j].movie.ID
	})

	seen := make(map[int64]struct{}, len(all))
	out := make([]*core.Movie, 0, len(all))
	for _, e := range all {
		if e.movie == nil {
			continue
		}
		if _, ok := seen[e.movie.ID]; ok {
			continue
		}
		seen[e.movie.ID] = struct{}{}
		out = append(out, e.movie)
	}
	return out
}

var _ pipeline.Node = (*Fanout)(nil)
