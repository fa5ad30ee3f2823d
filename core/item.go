package core

import "github.com/rushteam/moviekit/pkg/utils"

// Movie 是推荐链路中的统一承载结构：分数、元信息、标签。
// Labels 用于解释与策略驱动；Score 用于排序决策。
type Movie struct {
	ID     int64
	Score  float64
	Meta   map[string]any
	Labels map[string]utils.Label
}

func NewMovie(id int64) *Movie {
	return &Movie{
		ID:     id,
		Score:  0,
		Meta:   make(map[string]any),
		Labels: make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (m *Movie) PutLabel(key string, lbl utils.Label) {
	if m.Labels == nil {
		m.Labels = make(map[string]utils.Label)
	}
	if old, ok := m.Labels[key]; ok {
		m.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	m.Labels[key] = lbl
}

// GetLabel 读取 Label。
func (m *Movie) GetLabel(key string) (utils.Label, bool) {
	if m.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := m.Labels[key]
	return lbl, ok
}

// PutMeta 写入元信息（title / genres / poster 等）。
func (m *Movie) PutMeta(key string, value any) {
	if m.Meta == nil {
		m.Meta = make(map[string]any)
	}
	m.Meta[key] = value
}
