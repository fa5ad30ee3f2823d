// Package builders 注册内置 Node 的配置构建器。
// 入口处 import _ 本包即可启用配置驱动的 Pipeline。
package builders

import (
	"fmt"
	"time"

	"github.com/rushteam/moviekit/config"
	"github.com/rushteam/moviekit/filter"
	"github.com/rushteam/moviekit/pipeline"
	"github.com/rushteam/moviekit/pkg/conv"
	"github.com/rushteam/moviekit/recall"
	"github.com/rushteam/moviekit/rerank"
)

func init() {
	config.Register("recall.group_cf", buildGroupCFNode)
	config.Register("recall.fallback", buildFallbackNode)
	config.Register("recall.fanout", buildFanoutNode)
	config.Register("filter", buildFilterNode)
	config.Register("rerank.topn", buildTopNNode)
}

func buildGroupCFNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return &recall.GroupCF{
		SimilarityMetric: conv.ConfigGet[string](cfg, "metric", ""),
		MinCoRated:       conv.ConfigGetInt(cfg, "min_co_rated", 0),
		MaxCandidates:    conv.ConfigGetInt(cfg, "max_candidates", 0),
	}, nil
}

func buildFallbackNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return &recall.Fallback{
		MaxCandidates: conv.ConfigGetInt(cfg, "max_candidates", 0),
	}, nil
}

func buildFanoutNode(cfg map[string]interface{}) (pipeline.Node, error) {
	sourcesConfig, ok := cfg["sources"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("sources not found or invalid")
	}

	sources := make([]recall.Source, 0, len(sourcesConfig))
	for _, sc := range sourcesConfig {
		sourceMap, ok := sc.(map[string]interface{})
		if !ok {
			continue
		}
		sourceType := conv.ConfigGet[string](sourceMap, "type", "")
		switch sourceType {
		case "group_cf":
			sources = append(sources, &recall.GroupCF{
				SimilarityMetric: conv.ConfigGet[string](sourceMap, "metric", ""),
				MinCoRated:       conv.ConfigGetInt(sourceMap, "min_co_rated", 0),
				MaxCandidates:    conv.ConfigGetInt(sourceMap, "max_candidates", 0),
			})
		case "fallback":
			sources = append(sources, &recall.Fallback{
				MaxCandidates: conv.ConfigGetInt(sourceMap, "max_candidates", 0),
			})
		default:
			return nil, fmt.Errorf("unknown source type: %s", sourceType)
		}
	}

	fanout := &recall.Fanout{Sources: sources}
	if sec := conv.ConfigGetInt(cfg, "timeout", 0); sec > 0 {
		fanout.Timeout = time.Duration(sec) * time.Second
	}
	return fanout, nil
}

func buildFilterNode(cfg map[string]interface{}) (pipeline.Node, error) {
	filters := make([]filter.Filter, 0)

	if conv.ConfigGet[bool](cfg, "watched", true) {
		filters = append(filters, &filter.WatchedFilter{})
	}
	if expr := conv.ConfigGet[string](cfg, "rule", ""); expr != "" {
		filters = append(filters, &filter.RuleFilter{Expr: expr})
	}

	return &filter.FilterNode{Filters: filters}, nil
}

func buildTopNNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return &rerank.TopN{
		N: conv.ConfigGetInt(cfg, "n", 0),
	}, nil
}
