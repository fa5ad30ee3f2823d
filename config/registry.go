// Package config 维护内置 Node 的构建器注册表，支撑配置驱动的 Pipeline。
//
// 使用配置驱动时，在 main 或入口处
// import _ "github.com/rushteam/moviekit/config/builders"
// 以触发内置 Node（recall.group_cf、recall.fallback、recall.fanout、
// filter、rerank.topn）的 init 注册。
package config

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rushteam/moviekit/pipeline"
)

// NodeBuilder 与 pipeline.NodeBuilder 一致：根据 config 构建 Node。
type NodeBuilder = pipeline.NodeBuilder

type registry struct {
	mu       sync.RWMutex
	builders map[string]NodeBuilder
}

var defaultRegistry = &registry{
	builders: make(map[string]NodeBuilder),
}

// Register 注册一种 Node 的构建逻辑，供 DefaultFactory 与配置校验使用。
// 空类型名或空构建器被忽略。
func Register(typeName string, builder NodeBuilder) {
	if typeName == "" || builder == nil {
		return
	}
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	defaultRegistry.builders[typeName] = builder
}

// SupportedTypes 返回已注册的 Node 类型列表（排序），用于错误提示。
func SupportedTypes() []string {
	defaultRegistry.mu.RLock()
	defer defaultRegistry.mu.RUnlock()
	types := make([]string, 0, len(defaultRegistry.builders))
	for t := range defaultRegistry.builders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// DefaultFactory 返回包含当前注册表全部构建器的 NodeFactory。
func DefaultFactory() *pipeline.NodeFactory {
	defaultRegistry.mu.RLock()
	defer defaultRegistry.mu.RUnlock()
	f := pipeline.NewNodeFactory()
	for typeName, builder := range defaultRegistry.builders {
		f.Register(typeName, builder)
	}
	return f
}

// ValidatePipelineConfig 校验配置中所有 node 类型均已注册；
// 发现未支持的类型时报错并附上已支持列表。
func ValidatePipelineConfig(cfg *pipeline.Config) error {
	if cfg == nil {
		return nil
	}
	defaultRegistry.mu.RLock()
	defer defaultRegistry.mu.RUnlock()
	for _, nc := range cfg.Pipeline.Nodes {
		if nc.Type == "" {
			continue
		}
		if _, ok := defaultRegistry.builders[nc.Type]; !ok {
			supported := make([]string, 0, len(defaultRegistry.builders))
			for t := range defaultRegistry.builders {
				supported = append(supported, t)
			}
			sort.Strings(supported)
			return fmt.Errorf("unsupported node type %q (supported: %v)", nc.Type, supported)
		}
	}
	return nil
}
