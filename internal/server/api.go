package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"
	"github.com/rs/zerolog/log"

	"github.com/palemoky/apple-clash/internal/logger"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

func apiLogMiddleware() func(http.Handler) http.Handler {
	return httplog.RequestLogger(
		slog.New(slog.NewJSONHandler(logger.Writer(), &slog.HandlerOptions{})),
		&httplog.Options{
			Level:              slog.LevelInfo,
			Schema:             httplog.Schema{ResponseStatus: "status", ResponseDuration: "duration_ms"},
			LogRequestBody:     func(*http.Request) bool { return false },
			LogResponseBody:    func(*http.Request) bool { return false },
			LogRequestHeaders:  []string{},
			LogResponseHeaders: []string{},
			LogExtraAttrs: func(req *http.Request, _ string, _ int) []slog.Attr {
				rc := chi.RouteContext(req.Context())
				route := req.URL.Path
				if rc != nil && rc.RoutePattern() != "" {
					route = rc.RoutePattern()
				}
				return []slog.Attr{
					slog.String("request_id", chimw.GetReqID(req.Context())),
					slog.String("method", req.Method),
					slog.String("route", route),
				}
			},
		},
	)
}

// handleHealth 健康检查
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"online":      s.GetOnlineCount(),
		"rooms":       s.roomManager.RoomCount(),
		"activeGames": s.roomManager.GetActiveGamesCount(),
		"queue":       s.matcher.GetQueueLength(),
		"maintenance": s.IsMaintenanceMode(),
	})
}

// handleRooms 可加入的公开房间
func (s *Server) handleRooms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"rooms": s.roomManager.GetRoomList()})
}

// handleLeaderboard 排行榜，scope=daily 时返回今日榜
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r)

	get := s.leaderboard.GetLeaderboard
	if r.URL.Query().Get("scope") == "daily" {
		get = s.leaderboard.GetDailyLeaderboard
	}
	entries, err := get(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("读取排行榜失败")
		writeHTTPError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": entries, "limit": limit})
}

// handleHistory 最近的对局
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r)
	results, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("读取对局历史失败")
		writeHTTPError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": results, "limit": limit})
}

func parseLimit(r *http.Request) int {
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	return min(max(limit, 1), maxListLimit)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeHTTPError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]any{"error": code})
}
