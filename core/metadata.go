package core

import "context"

// MovieMeta 是电影元信息（外部协作方的最小投影）。
// 推荐核心只透传，不依赖任何字段参与打分。
type MovieMeta struct {
	ID       int64    `json:"id"`
	Title    string   `json:"title"`
	Genres   []string `json:"genres,omitempty"`
	Poster   string   `json:"poster,omitempty"`
	Overview string   `json:"overview,omitempty"`
}

// MovieResolver 是电影元信息查询的领域接口。
//
// 约定：
//   - 电影不存在时返回 ErrMovieNotFound
//   - 元信息缺失不应让推荐请求失败：消费方（metadata.EnrichNode）
//     在查询失败时降级为裸 ID
//
// 实现：
//   - metadata.StoreResolver（KeyValueStore 电影 hash）
//   - metadata.CachedResolver（任意 Resolver 前的 TTL 内存缓存）
type MovieResolver interface {
	// Name 返回实现名称（用于日志/监控）
	Name() string

	// Resolve 查询单部电影的元信息。
	Resolve(ctx context.Context, movieID int64) (*MovieMeta, error)

	// BatchResolve 批量查询（推荐使用，减少网络往返）。
	// 缺失的电影不出现在返回 map 中，不是错误。
	BatchResolve(ctx context.Context, movieIDs []int64) (map[int64]*MovieMeta, error)
}

// MovieFeatureService 是电影统计特征的领域接口（Feature Store 的抽象）。
//
// 与 MovieResolver 的分工：Resolver 负责展示性元信息（标题、海报），
// FeatureService 负责数值特征（热度、近期播放量等），用于链路观测与
// 后处理调权。
//
// 实现：
//   - feast.FeatureService（Feast Online Store）
type MovieFeatureService interface {
	// Name 返回服务名称（用于日志/监控）
	Name() string

	// MovieFeatures 获取单部电影的数值特征。
	MovieFeatures(ctx context.Context, movieID int64) (map[string]float64, error)

	// BatchMovieFeatures 批量获取电影特征。
	BatchMovieFeatures(ctx context.Context, movieIDs []int64) (map[int64]map[string]float64, error)

	// Close 关闭服务，释放连接。
	Close() error
}
