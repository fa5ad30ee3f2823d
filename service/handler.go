// Package service 提供团体推荐的 HTTP 请求边界。
//
// 契约与既有调用方保持兼容：POST /api/recommend，请求携带
// user_id / user_ratings / all_user_ratings，响应返回字符串形式的
// movie_id 有序数组。user_ratings 是 Corpus 的冗余子集（历史原因），
// 服务端一律以 all_user_ratings 为准推导团体向量。
package service

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rushteam/moviekit/core"
	"github.com/rushteam/moviekit/ratings"
	"github.com/rushteam/moviekit/recommend"
)

// RecommendRequest 是推荐请求的 JSON 形态。
// movie_id 在 JSON 里是字符串 key，解析时转为 int64。
type RecommendRequest struct {
	// UserID 团体成员；历史调用方单人场景会传裸字符串，两种都接受
	UserID UserIDList `json:"user_id"`

	// UserRatings 团体成员的评分子集（冗余字段，服务端忽略内容，
	// 只为请求形态兼容而保留）
	UserRatings map[string]map[string]float64 `json:"user_ratings"`

	// AllUserRatings 全量评分快照；提供时本次请求用它构建请求级
	// Corpus，不再读注入的评分存储
	AllUserRatings map[string]map[string]float64 `json:"all_user_ratings"`

	// N 期望的结果条数；缺省 11
	N int `json:"n,omitempty"`
}

// UserIDList 兼容 JSON 里的 "abc" 与 ["abc", "def"] 两种写法。
type UserIDList []string

func (l *UserIDList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*l = UserIDList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = UserIDList(many)
	return nil
}

// RecommendResponse 是推荐响应的 JSON 形态。
type RecommendResponse struct {
	// Recommendations 按排名的 movie_id（字符串，兼容既有调用方）
	Recommendations []string `json:"recommendations"`

	// Movies 附带元信息的明细（有 EnrichNode 时才有内容）
	Movies []MovieEntry `json:"movies,omitempty"`

	// Degraded 标记结果是否因协同引擎失败退化为纯榜单
	Degraded bool `json:"degraded,omitempty"`
}

// MovieEntry 是结果明细中的一条。
type MovieEntry struct {
	Rank  int            `json:"rank"`
	ID    string         `json:"id"`
	Score float64        `json:"score"`
	Meta  map[string]any `json:"meta,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler 是推荐请求的 HTTP 处理器。
//
// Ratings 是注入的评分存储；请求内联 all_user_ratings 时优先使用
// 请求级快照。Options 透传给每次请求构建的 Recommender。
type Handler struct {
	Ratings core.RatingStore
	Options []recommend.Option
}

// NewHandler 创建一个推荐处理器。
func NewHandler(ratingStore core.RatingStore, opts ...recommend.Option) *Handler {
	return &Handler{
		Ratings: ratingStore,
		Options: opts,
	}
}

// Routes 把处理器挂到 mux 上。
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/api/recommend", h.Recommend)
}

// Recommend 处理 POST /api/recommend。
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if len(req.UserID) == 0 {
		writeError(w, http.StatusBadRequest, core.ErrEmptyGroup.Error())
		return
	}

	ratingStore := h.Ratings
	if len(req.AllUserRatings) > 0 {
		corpus, err := parseCorpus(req.AllUserRatings)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		ratingStore = ratings.NewMemory(corpus)
	}
	if ratingStore == nil {
		writeError(w, http.StatusBadRequest, "all_user_ratings is required")
		return
	}

	rec := recommend.New(ratingStore, h.Options...)
	result, err := rec.Recommend(r.Context(), req.UserID, req.N)
	if err != nil {
		switch {
		case core.IsInvalidRequest(err):
			writeError(w, http.StatusBadRequest, err.Error())
		case core.IsUnavailable(err):
			writeError(w, http.StatusServiceUnavailable, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	resp := RecommendResponse{
		Recommendations: make([]string, 0, len(result.Recommendations)),
		Degraded:        result.Degraded,
	}
	for _, entry := range result.Recommendations {
		id := strconv.FormatInt(entry.Movie.ID, 10)
		resp.Recommendations = append(resp.Recommendations, id)
		if len(entry.Movie.Meta) > 0 {
			resp.Movies = append(resp.Movies, MovieEntry{
				Rank:  entry.Rank,
				ID:    id,
				Score: entry.Movie.Score,
				Meta:  entry.Movie.Meta,
			})
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// parseCorpus 把 JSON 形态的评分快照转为领域模型。
// movie_id 无法解析为整数时视为畸形请求；评分收敛到 [0, 5]。
func parseCorpus(raw map[string]map[string]float64) (core.Corpus, error) {
	corpus := make(core.Corpus, len(raw))
	for userID, movieScores := range raw {
		vec := make(core.RatingVector, len(movieScores))
		for movieKey, score := range movieScores {
			movieID, err := strconv.ParseInt(movieKey, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("malformed movie id %q for user %s", movieKey, userID)
			}
			vec[movieID] = core.ClampScore(score)
		}
		corpus[userID] = vec
	}
	return corpus, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
