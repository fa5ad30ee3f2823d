package recall

import (
	"math"

	"github.com/rushteam/moviekit/core"
)

// 相似度计算：统一在两个用户共同评分的电影子集上进行。
// 度量方式（cosine / pearson）是配置，不是契约。

// sharedScores 提取两个评分向量在共同 key 上的对齐分数。
// 返回的两个 slice 等长，下标对应同一部电影。
func sharedScores(a, b core.RatingVector) ([]float64, []float64) {
	as := make([]float64, 0)
	bs := make([]float64, 0)
	for movieID, scoreA := range a {
		if scoreB, ok := b[movieID]; ok {
			as = append(as, scoreA)
			bs = append(bs, scoreB)
		}
	}
	return as, bs
}

// cosineSimilarity 计算余弦相似度。
func cosineSimilarity(x, y []float64) float64 {
	if len(x) != len(y) || len(x) == 0 {
		return 0
	}

	var dot, normX, normY float64
	for i := range x {
		dot += x[i] * y[i]
		normX += x[i] * x[i]
		normY += y[i] * y[i]
	}

	if normX == 0 || normY == 0 {
		return 0
	}

	return dot / (math.Sqrt(normX) * math.Sqrt(normY))
}

// pearsonCorrelation 计算皮尔逊相关系数。
func pearsonCorrelation(x, y []float64) float64 {
	if len(x) != len(y) || len(x) == 0 {
		return 0
	}

	var meanX, meanY float64
	for i := range x {
		meanX += x[i]
		meanY += y[i]
	}
	meanX /= float64(len(x))
	meanY /= float64(len(y))

	var cov, varX, varY float64
	for i := range x {
		dx := x[i] - meanX
		dy := y[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}

	if varX == 0 || varY == 0 {
		return 0
	}

	return cov / math.Sqrt(varX*varY)
}

// similarity 按 metric 计算两个向量在共同评分子集上的相似度。
// 共同评分少于 minCoRated 时返回 0（冷启动保护，不是错误）。
func similarity(a, b core.RatingVector, metric string, minCoRated int) float64 {
	as, bs := sharedScores(a, b)
	if len(as) < minCoRated {
		return 0
	}

	switch metric {
	case "pearson":
		return pearsonCorrelation(as, bs)
	case "cosine":
		fallthrough
	default:
		return cosineSimilarity(as, bs)
	}
}
