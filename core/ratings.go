package core

// 评分领域模型。
//
// Rating 三元组 (user_id, movie_id, score) 满足唯一性约束：
// 每个 (user, movie) 至多一条，新评分覆盖旧值（last-write-wins，不留历史）。
// RatingVector 与 Corpus 都是按需重建的只读视图，不独立持久化。

// RatingVector 是单个用户的评分向量：movie_id -> score，score ∈ [0, 5]。
type RatingVector map[int64]float64

// Clone 返回向量的深拷贝。
func (v RatingVector) Clone() RatingVector {
	if v == nil {
		return RatingVector{}
	}
	out := make(RatingVector, len(v))
	for id, score := range v {
		out[id] = score
	}
	return out
}

// Corpus 是全量评分快照：user_id -> RatingVector。
// 一次推荐请求内视为不可变；请求之间不保证一致性（各取各的快照）。
type Corpus map[string]RatingVector

// Movies 返回快照内出现过的全部 movie_id（去重，顺序不定）。
func (c Corpus) Movies() []int64 {
	seen := make(map[int64]struct{})
	for _, vec := range c {
		for id := range vec {
			seen[id] = struct{}{}
		}
	}
	out := make([]int64, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	return out
}

// Users 返回快照内的全部 user_id（顺序不定）。
func (c Corpus) Users() []string {
	out := make([]string, 0, len(c))
	for id := range c {
		out = append(out, id)
	}
	return out
}

// WatchedSet 是团体已看过的电影集合。
// 不变式：最终推荐结果与 WatchedSet 的交集必须为空。
type WatchedSet map[int64]struct{}

// Contains 判断 movieID 是否在已看集合中。
func (w WatchedSet) Contains(movieID int64) bool {
	if w == nil {
		return false
	}
	_, ok := w[movieID]
	return ok
}

// WatchedByGroup 计算团体成员评分向量 key 的并集。
// 不在快照中的成员贡献空集（不是错误）。
func WatchedByGroup(corpus Corpus, members []string) WatchedSet {
	watched := make(WatchedSet)
	for _, userID := range members {
		for movieID := range corpus[userID] {
			watched[movieID] = struct{}{}
		}
	}
	return watched
}

// ClampScore 将评分收敛到合法区间 [0, 5]。
func ClampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 5 {
		return 5
	}
	return score
}
