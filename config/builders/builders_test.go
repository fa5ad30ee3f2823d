package builders

import (
	"context"
	"testing"

	"github.com/rushteam/moviekit/config"
	"github.com/rushteam/moviekit/core"
	"github.com/rushteam/moviekit/pipeline"
)

func TestBuiltinNodesRegistered(t *testing.T) {
	factory := config.DefaultFactory()

	for _, typeName := range []string{
		"recall.group_cf",
		"recall.fallback",
		"recall.fanout",
		"filter",
		"rerank.topn",
	} {
		if _, err := factory.Build(typeName, map[string]interface{}{
			"sources": []interface{}{
				map[string]interface{}{"type": "fallback"},
			},
		}); err != nil {
			t.Errorf("Build(%s) error = %v", typeName, err)
		}
	}
}

func TestBuildPipelineFromConfig(t *testing.T) {
	cfg := &pipeline.Config{}
	cfg.Pipeline.Name = "movie_night"
	cfg.Pipeline.Nodes = []pipeline.NodeConfig{
		{
			Type: "recall.fanout",
			Config: map[string]interface{}{
				"sources": []interface{}{
					map[string]interface{}{"type": "group_cf", "min_co_rated": 2},
					map[string]interface{}{"type": "fallback"},
				},
			},
		},
		{Type: "filter", Config: map[string]interface{}{"watched": true}},
		{Type: "rerank.topn", Config: map[string]interface{}{"n": 3}},
	}

	if err := config.ValidatePipelineConfig(cfg); err != nil {
		t.Fatalf("ValidatePipelineConfig() error = %v", err)
	}

	p, err := cfg.BuildPipeline(config.DefaultFactory())
	if err != nil {
		t.Fatalf("BuildPipeline() error = %v", err)
	}
	if len(p.Nodes) != 3 {
		t.Fatalf("pipeline has %d nodes, want 3", len(p.Nodes))
	}

	// 端到端跑一遍：alice 的协同信号来自 p1
	corpus := core.Corpus{
		"alice": {1: 5, 2: 4},
		"p1":    {1: 5, 2: 4, 3: 5, 4: 4, 5: 3, 6: 2},
	}
	gctx := &core.GroupContext{
		Members: []string{"alice"},
		Corpus:  corpus,
		Watched: core.WatchedByGroup(corpus, []string{"alice"}),
	}

	movies, err := p.Run(context.Background(), gctx, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	wantIDs := []int64{3, 4, 5}
	if len(movies) != len(wantIDs) {
		t.Fatalf("Run() returned %d movies, want %d", len(movies), len(wantIDs))
	}
	for i, m := range movies {
		if m.ID != wantIDs[i] {
			t.Errorf("movies[%d].ID = %d, want %d", i, m.ID, wantIDs[i])
		}
	}
}

func TestValidatePipelineConfig_UnknownType(t *testing.T) {
	cfg := &pipeline.Config{}
	cfg.Pipeline.Nodes = []pipeline.NodeConfig{{Type: "recall.nonexistent"}}

	if err := config.ValidatePipelineConfig(cfg); err == nil {
		t.Error("ValidatePipelineConfig() error = nil, want unsupported type error")
	}
}
