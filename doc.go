// Package moviekit 是一个团体观影推荐引擎（Movie-night Recommender Kit）。
//
// 给定一群用户（watch party）、每人一份稀疏的电影评分，以及全量历史
// 评分快照，产出整个团体都可能喜欢的排名电影列表，排除任何成员已经
// 看过的电影。
//
// 设计要点：
//   - Pipeline-first: 推荐逻辑通过 Node 串联（Recall → Filter → ReRank → PostProcess）
//   - 协同打分 + 全局榜单双路召回，按优先级有序合并
//   - 请求级快照：一次请求一份 Corpus，请求之间无共享可变状态
//   - Labels 全链路透传，支持 explain / 观测 / 降级标记
package moviekit

import "github.com/rushteam/moviekit/pipeline"

// 轻量 facade：便于用户直接 import "moviekit" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
