// Package feast 提供基于 Feast Feature Store 的电影特征服务。
//
// Feast 的在线存储里维护电影级统计特征（热度、近 7 日播放量等），
// 由离线任务物化；moviekit 只读，用于结果后处理的观测与调权。
package feast

import (
	"context"
	"fmt"
	"strconv"
	"time"

	feastsdk "github.com/feast-dev/feast/sdk/go"

	"github.com/rushteam/moviekit/core"
)

// FeatureService 是基于官方 Feast Go SDK 的 core.MovieFeatureService 实现。
//
// 实体约定：entity key 为 "movie_id"（int64）。
// 特征名采用 Feast 标准写法，如 "movie_stats:popularity"。
type FeatureService struct {
	client *feastsdk.GrpcClient

	// Project 项目名称
	Project string

	// Features 要获取的特征名列表，例如
	// ["movie_stats:popularity", "movie_stats:play_count_7d"]
	Features []string

	// Timeout 单次请求超时
	Timeout time.Duration
}

// Option 配置 FeatureService。
type Option func(*FeatureService)

// WithFeatures 设置要获取的特征名列表。
func WithFeatures(features []string) Option {
	return func(s *FeatureService) { s.Features = features }
}

// WithTimeout 设置单次请求超时。
func WithTimeout(d time.Duration) Option {
	return func(s *FeatureService) { s.Timeout = d }
}

// NewFeatureService 创建一个 Feast 电影特征服务。
//
// host/port 指向 Feast Feature Server（gRPC，默认端口 6565）。
func NewFeatureService(host string, port int, project string, opts ...Option) (*FeatureService, error) {
	if port == 0 {
		port = 6565
	}

	client, err := feastsdk.NewGrpcClient(host, port)
	if err != nil {
		return nil, fmt.Errorf("create feast grpc client: %w", err)
	}

	s := &FeatureService{
		client:  client,
		Project: project,
		Features: []string{
			"movie_stats:popularity",
			"movie_stats:mean_rating",
		},
		Timeout: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *FeatureService) Name() string {
	return "feast.feature_service"
}

// MovieFeatures 实现 core.MovieFeatureService。
func (s *FeatureService) MovieFeatures(ctx context.Context, movieID int64) (map[string]float64, error) {
	batch, err := s.BatchMovieFeatures(ctx, []int64{movieID})
	if err != nil {
		return nil, err
	}
	if fv, ok := batch[movieID]; ok {
		return fv, nil
	}
	return map[string]float64{}, nil
}

// BatchMovieFeatures 实现 core.MovieFeatureService。
func (s *FeatureService) BatchMovieFeatures(ctx context.Context, movieIDs []int64) (map[int64]map[string]float64, error) {
	if len(movieIDs) == 0 {
		return map[int64]map[string]float64{}, nil
	}
	if s.client == nil {
		return nil, core.NewDomainError(core.ModuleMetadata, core.ErrorCodeUnavailable, "feast: client closed")
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	entityRows := make([]feastsdk.Row, len(movieIDs))
	for i, movieID := range movieIDs {
		entityRows[i] = feastsdk.Row{
			"movie_id": feastsdk.Int64Val(movieID),
		}
	}

	resp, err := s.client.GetOnlineFeatures(ctx, &feastsdk.OnlineFeaturesRequest{
		Features: s.Features,
		Entities: entityRows,
		Project:  s.Project,
	})
	if err != nil {
		return nil, fmt.Errorf("feast get online features: %w", err)
	}

	rows := resp.Rows()
	if len(rows) != len(movieIDs) {
		return nil, fmt.Errorf("feast response row count mismatch: expected %d, got %d", len(movieIDs), len(rows))
	}

	out := make(map[int64]map[string]float64, len(movieIDs))
	for i, movieID := range movieIDs {
		values := make(map[string]float64)
		for _, featureName := range s.Features {
			val, exists := rows[i][featureName]
			if !exists {
				continue
			}
			if f, ok := toFloat64(val); ok {
				values[featureName] = f
			}
		}
		out[movieID] = values
	}
	return out, nil
}

// Close 实现 core.MovieFeatureService。
// 官方 SDK 没有显式的 Close 方法，连接由 gRPC 库管理。
func (s *FeatureService) Close() error {
	s.client = nil
	return nil
}

// toFloat64 把 SDK 返回的值统一为 float64。
func toFloat64(val interface{}) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case int:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f, true
		}
		return 0, false
	default:
		if f, err := strconv.ParseFloat(fmt.Sprintf("%v", val), 64); err == nil {
			return f, true
		}
		return 0, false
	}
}

var _ core.MovieFeatureService = (*FeatureService)(nil)
