package ratings

import (
	"context"

	"github.com/rushteam/moviekit/core"
)

// Memory 是内存实现的 core.RatingStore。
//
// 两个用途：
//   - 请求边界把内联的 all_user_ratings 包成请求级快照
//   - 测试中代替真实存储（引擎核心对存储只有接口依赖）
//
// 构造后视为只读，可被并发请求安全共享。
type Memory struct {
	corpus core.Corpus
}

// NewMemory 用一份 Corpus 创建内存评分存储。
// 写入的评分会被收敛到 [0, 5]；同一 (user, movie) 后写覆盖先写。
func NewMemory(corpus core.Corpus) *Memory {
	cloned := make(core.Corpus, len(corpus))
	for userID, vec := range corpus {
		cv := make(core.RatingVector, len(vec))
		for movieID, score := range vec {
			cv[movieID] = core.ClampScore(score)
		}
		cloned[userID] = cv
	}
	return &Memory{corpus: cloned}
}

func (m *Memory) Name() string { return "ratings.memory" }

func (m *Memory) UserVector(_ context.Context, userID string) (core.RatingVector, error) {
	if vec, ok := m.corpus[userID]; ok {
		return vec, nil
	}
	return core.RatingVector{}, nil
}

func (m *Memory) Snapshot(_ context.Context) (core.Corpus, error) {
	return m.corpus, nil
}

var _ core.RatingStore = (*Memory)(nil)
