// File: internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"quarto_go/internal/config"
)

// Server HTTP 决策接口 + 自对弈 WebSocket 流
type Server struct {
	store    *config.Store
	router   chi.Router
	upgrader websocket.Upgrader
}

func New(store *config.Store) *Server {
	s := &Server{
		store:    store,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	r.Get("/api/config", s.getConfig)
	r.Put("/api/config", s.putConfig)
	r.Post("/api/decide", s.decide)
	r.Get("/ws/selfplay", s.selfPlay)

	s.router = r
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe 直到 ctx 结束，然后优雅关闭
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := s.store.Get().Server.Listen
	srv := &http.Server{Addr: addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	log.Info().Str("addr", addr).Msg("server-listening")

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("server-shutdown")
	case err, ok := <-errCh:
		if ok {
			runErr = err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Warn().Err(err).Msg("graceful shutdown failed")
		_ = srv.Close()
	}
	return runErr
}

// ———————————————————————————— 配置 ————————————————————————————

func (s *Server) getConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Get())
}

// putConfig 在当前配置上覆盖请求体里出现的字段
func (s *Server) putConfig(w http.ResponseWriter, r *http.Request) {
	cfg := s.store.Get()
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := s.store.Update(cfg); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	log.Info().Interface("engine", cfg.Engine).Msg("config-updated")
	writeJSON(w, http.StatusOK, cfg)
}

// ———————————————————————————— 工具 ————————————————————————————

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("write-json")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// requestLogger 用 zerolog 记录每个请求
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("http")
	})
}
