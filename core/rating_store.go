package core

import "context"

// RatingStore 是评分存储的领域接口（Rating Store Adapter 的契约）。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（ratings）实现
//   - 打分引擎只消费物化后的 Corpus 快照，保持纯函数/无状态
//   - 实现方内部可以分页/流式读取，但对引擎必须呈现完整快照
//
// 失败语义：
//   - 底层不可达时返回 UNAVAILABLE 级 DomainError（ErrRatingsUnavailable）
//   - 对请求是致命的；适配器内部至多做一次带退避的重试，更多重试是
//     基础设施的事，不是引擎的事
//
// 实现：
//   - ratings.StoreAdapter（基于 core.Store，Redis/内存均可）
//   - ratings.Memory（请求级内存快照，测试与边界内联数据使用）
type RatingStore interface {
	// Name 返回存储名称（用于日志/监控）
	Name() string

	// UserVector 返回单个用户的评分向量。
	// 用户没有任何评分时返回空向量，不是错误。
	UserVector(ctx context.Context, userID string) (RatingVector, error)

	// Snapshot 返回全量评分快照（有界但不限大小的完整读取）。
	Snapshot(ctx context.Context) (Corpus, error)
}

// ErrRatingsUnavailable 表示评分存储不可达，本次请求无法继续。
var ErrRatingsUnavailable = NewDomainError(ModuleRatings, ErrorCodeUnavailable, "ratings: store unavailable")
