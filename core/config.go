package core

import "time"

// EngineConfig 是打分引擎相关的配置接口，用于提供默认值。
//
// 相似度函数与共同评分阈值是配置，不是契约：原始打分服务的权重与
// 阈值并不可考，这里给出工程上合理的默认值，允许按业务调参。
type EngineConfig interface {
	// DefaultSimilarityMetric 返回默认的相似度度量方式：cosine / pearson
	DefaultSimilarityMetric() string

	// DefaultMinCoRated 返回计算相似度所需的最小共同评分电影数。
	// 低于阈值的用户贡献零权重（冷启动保护，不是错误）。
	DefaultMinCoRated() int

	// DefaultResultSize 返回默认结果条数（3 个领奖台位 + 8 个替补位）
	DefaultResultSize() int

	// DefaultRetryBackoff 返回评分存储单次重试前的退避时间
	DefaultRetryBackoff() time.Duration
}

// DefaultEngineConfig 是默认的引擎配置实现。
type DefaultEngineConfig struct{}

func (c *DefaultEngineConfig) DefaultSimilarityMetric() string {
	return "cosine"
}

func (c *DefaultEngineConfig) DefaultMinCoRated() int {
	return 3
}

func (c *DefaultEngineConfig) DefaultResultSize() int {
	return 11
}

func (c *DefaultEngineConfig) DefaultRetryBackoff() time.Duration {
	return 200 * time.Millisecond
}
