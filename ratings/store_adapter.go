package ratings

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rushteam/moviekit/core"
)

// StoreAdapter 是基于 core.Store 的评分存储适配器，实现 core.RatingStore。
//
// key 约定：
//   单用户评分向量：{KeyPrefix}:user:{userID} -> JSON {movieID: score}
//   全量用户列表：  {KeyPrefix}:users -> JSON [userID]
//
// 快照语义：Snapshot 先读用户列表，再 BatchGet 物化所有向量，
// 对引擎呈现一份完整的 Corpus。底层读取是分批的，但引擎看不到分批。
//
// 失败语义：底层不可达时，至多做一次带退避的重试，然后以
// core.ErrRatingsUnavailable 上抛；key 不存在不算失败。
type StoreAdapter struct {
	store core.Store

	// KeyPrefix 是存储 key 的前缀，默认 "ratings"
	KeyPrefix string

	// RetryBackoff 是单次重试前的退避时间；<=0 时取默认值
	RetryBackoff time.Duration
}

// NewStoreAdapter 创建一个基于 core.Store 的评分适配器。
func NewStoreAdapter(s core.Store, keyPrefix string) *StoreAdapter {
	if keyPrefix == "" {
		keyPrefix = "ratings"
	}
	return &StoreAdapter{
		store:     s,
		KeyPrefix: keyPrefix,
	}
}

func (a *StoreAdapter) Name() string {
	return "ratings.store_adapter"
}

func (a *StoreAdapter) userKey(userID string) string {
	return a.KeyPrefix + ":user:" + userID
}

func (a *StoreAdapter) usersKey() string {
	return a.KeyPrefix + ":users"
}

// UserVector 实现 core.RatingStore。用户没有评分时返回空向量。
func (a *StoreAdapter) UserVector(ctx context.Context, userID string) (core.RatingVector, error) {
	var data []byte
	err := a.withRetry(ctx, func() error {
		var getErr error
		data, getErr = a.store.Get(ctx, a.userKey(userID))
		return getErr
	})
	if err != nil {
		if core.IsStoreNotFound(err) {
			return core.RatingVector{}, nil
		}
		return nil, fmt.Errorf("%w: %v", core.ErrRatingsUnavailable, err)
	}
	return decodeVector(data)
}

// Snapshot 实现 core.RatingStore：物化全量评分快照。
func (a *StoreAdapter) Snapshot(ctx context.Context) (core.Corpus, error) {
	var usersData []byte
	err := a.withRetry(ctx, func() error {
		var getErr error
		usersData, getErr = a.store.Get(ctx, a.usersKey())
		return getErr
	})
	if err != nil {
		if core.IsStoreNotFound(err) {
			// 没有任何用户：空快照是合法的
			return core.Corpus{}, nil
		}
		return nil, fmt.Errorf("%w: %v", core.ErrRatingsUnavailable, err)
	}

	var userIDs []string
	if err := json.Unmarshal(usersData, &userIDs); err != nil {
		return nil, fmt.Errorf("%w: decode user list: %v", core.ErrRatingsUnavailable, err)
	}

	keys := make([]string, 0, len(userIDs))
	for _, userID := range userIDs {
		keys = append(keys, a.userKey(userID))
	}

	var kvs map[string][]byte
	err = a.withRetry(ctx, func() error {
		var getErr error
		kvs, getErr = a.store.BatchGet(ctx, keys)
		return getErr
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrRatingsUnavailable, err)
	}

	corpus := make(core.Corpus, len(userIDs))
	for _, userID := range userIDs {
		data, ok := kvs[a.userKey(userID)]
		if !ok {
			corpus[userID] = core.RatingVector{}
			continue
		}
		vec, err := decodeVector(data)
		if err != nil {
			return nil, err
		}
		corpus[userID] = vec
	}
	return corpus, nil
}

// withRetry 执行 fn，失败且非 NOT_FOUND 时退避后重试一次。
// 更多重试是调用方整体重试的事，不在适配器内做。
func (a *StoreAdapter) withRetry(ctx context.Context, fn func() error) error {
	err := fn()
	if err == nil || core.IsStoreNotFound(err) {
		return err
	}

	backoff := a.RetryBackoff
	if backoff <= 0 {
		backoff = (&core.DefaultEngineConfig{}).DefaultRetryBackoff()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(backoff):
	}
	return fn()
}

func decodeVector(data []byte) (core.RatingVector, error) {
	var vec core.RatingVector
	if err := json.Unmarshal(data, &vec); err != nil {
		return nil, fmt.Errorf("%w: decode rating vector: %v", core.ErrRatingsUnavailable, err)
	}
	for movieID, score := range vec {
		vec[movieID] = core.ClampScore(score)
	}
	return vec, nil
}

// 确保实现 core.RatingStore 接口
var _ core.RatingStore = (*StoreAdapter)(nil)
