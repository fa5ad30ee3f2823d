package core

import "github.com/rushteam/moviekit/pkg/utils"

// GroupContext 承载一次团体推荐请求的全部输入，贯穿整个 Pipeline 透传。
//
// 团体（watch party）没有持久身份：它只是一次请求的参数。
// 一次请求内快照不变、请求之间互不共享，因此 GroupContext 天然支持并发请求。
type GroupContext struct {
	// Members 是团体成员的用户 ID（至少 1 个）。
	Members []string

	// Scene 标记请求场景（如 "movie_night"），用于观测与策略切换。
	Scene string

	// Corpus 是本次请求的全量评分快照（user -> movie -> score）。
	// 由 Recommender 在请求入口处读取一次，后续所有 Node 共享同一份。
	Corpus Corpus

	// Watched 是团体成员已看过的电影集合，最终结果必须与其零交集。
	Watched WatchedSet

	// Labels 是请求级标签，可驱动整个 Pipeline 行为（如冷启动团体）。
	Labels map[string]utils.Label

	// Params 请求级上下文参数（如 n、客户端版本等）。
	Params map[string]any
}

// MemberVector 返回成员的评分向量；成员没有评分时返回空向量（不是错误）。
func (gctx *GroupContext) MemberVector(userID string) RatingVector {
	if gctx.Corpus == nil {
		return RatingVector{}
	}
	if vec, ok := gctx.Corpus[userID]; ok {
		return vec
	}
	return RatingVector{}
}

// IsMember 判断 userID 是否为团体成员。
func (gctx *GroupContext) IsMember(userID string) bool {
	for _, m := range gctx.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// PutLabel 写入请求级 Label。
func (gctx *GroupContext) PutLabel(key string, lbl utils.Label) {
	if gctx.Labels == nil {
		gctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := gctx.Labels[key]; ok {
		gctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	gctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (gctx *GroupContext) GetLabel(key string) (utils.Label, bool) {
	if gctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := gctx.Labels[key]
	return lbl, ok
}
