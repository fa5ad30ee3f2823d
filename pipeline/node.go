package pipeline

import (
	"context"

	"github.com/rushteam/moviekit/core"
)

// Kind 用于标记 Node 类型，方便观测/治理/编排（例如按阶段打点）。
type Kind string

const (
	KindRecall      Kind = "recall"      // 召回阶段：生成候选集（协同打分 / 全局榜单）
	KindFilter      Kind = "filter"      // 过滤阶段：剔除已看电影等不符合约束的候选
	KindReRank      Kind = "rerank"      // 重排阶段：截断、排位
	KindPostProcess Kind = "postprocess" // 后处理阶段：补充电影元信息等最终修饰
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用“输入 movies -> 输出 movies”的形态，方便召回生成、过滤截断、重排等操作。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		gctx *core.GroupContext,
		movies []*core.Movie,
	) ([]*core.Movie, error)
}
