package ratings

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rushteam/moviekit/core"
)

// Seed 将一份 Corpus 写入 core.Store，按 StoreAdapter 的 key 约定。
// 用于初始化开发环境、离线导入和测试准备。
func Seed(ctx context.Context, s core.Store, keyPrefix string, corpus core.Corpus) error {
	if keyPrefix == "" {
		keyPrefix = "ratings"
	}

	kvs := make(map[string][]byte, len(corpus)+1)
	userIDs := make([]string, 0, len(corpus))
	for userID, vec := range corpus {
		data, err := json.Marshal(vec)
		if err != nil {
			return err
		}
		kvs[keyPrefix+":user:"+userID] = data
		userIDs = append(userIDs, userID)
	}

	usersData, err := json.Marshal(userIDs)
	if err != nil {
		return err
	}
	kvs[keyPrefix+":users"] = usersData

	return s.BatchSet(ctx, kvs)
}

// putRatingMu 串行化进程内的 PutRating：读-改-写向量与用户列表
// 不是存储级原子操作。
var putRatingMu sync.Mutex

// PutRating 写入/覆盖单条评分（last-write-wins，不留历史）。
// score 会被收敛到 [0, 5]。用户首次评分时会被加入用户列表。
//
// 进程内并发调用是安全的（内部互斥）；多进程同时写同一存储需要
// 外部协调，这里定位是开发环境与离线导入的单写入方工具。
func PutRating(ctx context.Context, s core.Store, keyPrefix string, userID string, movieID int64, score float64) error {
	putRatingMu.Lock()
	defer putRatingMu.Unlock()

	if keyPrefix == "" {
		keyPrefix = "ratings"
	}
	userKey := keyPrefix + ":user:" + userID

	vec := core.RatingVector{}
	if data, err := s.Get(ctx, userKey); err == nil {
		if err := json.Unmarshal(data, &vec); err != nil {
			return err
		}
	} else if !core.IsStoreNotFound(err) {
		return err
	}
	vec[movieID] = core.ClampScore(score)

	data, err := json.Marshal(vec)
	if err != nil {
		return err
	}
	if err := s.Set(ctx, userKey, data); err != nil {
		return err
	}

	// 维护用户列表
	usersKey := keyPrefix + ":users"
	var userIDs []string
	if data, err := s.Get(ctx, usersKey); err == nil {
		if err := json.Unmarshal(data, &userIDs); err != nil {
			return err
		}
	} else if !core.IsStoreNotFound(err) {
		return err
	}
	for _, id := range userIDs {
		if id == userID {
			return nil
		}
	}
	userIDs = append(userIDs, userID)
	usersData, err := json.Marshal(userIDs)
	if err != nil {
		return err
	}
	return s.Set(ctx, usersKey, usersData)
}
