package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/moviekit/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		cel.Variable("movie", cel.DynType),
		cel.Variable("label", cel.DynType),
		cel.Variable("group", cel.DynType),
	)
	return env, err
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	var err error
	celEnvOnce.Do(func() {
		celEnv, err = initCELEnv()
	})
	return celEnv, err
}

// Eval 是规则 DSL 解释器，使用 CEL (Common Expression Language) 实现。
// 用于运营侧的候选排除规则（例如按召回来源、分数、场景下线候选）。
//
// 表达式语法（CEL 标准语法）：
//   - 基础：label.recall_source == "fallback"
//   - 数值：movie.score < 2.5
//   - 逻辑：group.scene == "movie_night" && movie.score < 1.0
//   - 存在性：label.filtered != null
//
// 示例：
//   - `movie.id in [599, 641]` → 指定电影下线
//   - `label.recall_source == "fallback" && movie.score < 3.0` → 低分榜单候选不出
type Eval struct {
	movie *core.Movie
	gctx  *core.GroupContext
	env   *cel.Env
}

// NewEval 创建一个新的 DSL 解释器。
func NewEval(movie *core.Movie, gctx *core.GroupContext) *Eval {
	env, _ := getCELEnv()
	return &Eval{
		movie: movie,
		gctx:  gctx,
		env:   env,
	}
}

// Evaluate 解析并执行 DSL 表达式，返回布尔结果。
// 空表达式视为 true。
func (e *Eval) Evaluate(expr string) (bool, error) {
	if expr == "" {
		return true, nil
	}
	if e.env == nil {
		return false, fmt.Errorf("cel env not initialized")
	}

	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return false, fmt.Errorf("compile error: %v", issues.Err())
	}

	prg, err := e.env.Program(ast)
	if err != nil {
		return false, fmt.Errorf("program error: %v", err)
	}

	out, _, err := prg.Eval(e.buildInput())
	if err != nil {
		return false, fmt.Errorf("eval error: %v", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression did not evaluate to bool: %v", out.Value())
	}
	return result, nil
}

// buildInput 把 movie / label / group 展平为 CEL 输入。
func (e *Eval) buildInput() map[string]interface{} {
	movieMap := map[string]interface{}{}
	labelMap := map[string]interface{}{}
	groupMap := map[string]interface{}{}

	if e.movie != nil {
		movieMap["id"] = e.movie.ID
		movieMap["score"] = e.movie.Score
		for k, lbl := range e.movie.Labels {
			labelMap[k] = lbl.Value
		}
	}
	if e.gctx != nil {
		groupMap["scene"] = e.gctx.Scene
		groupMap["size"] = len(e.gctx.Members)
	}

	return map[string]interface{}{
		"movie": movieMap,
		"label": labelMap,
		"group": groupMap,
	}
}
