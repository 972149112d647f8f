// Package api exposes the uniqueness engine over HTTP. The engine itself is
// a plain library; this surface exists for deployments that run the tracker
// as a sidecar service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/storyunending/prosedex/internal/common"
	"github.com/storyunending/prosedex/internal/tracker"
)

type Server struct {
	router chi.Router
	engine *tracker.Engine
}

// NewServer wires the HTTP routes around the provided engine.
func NewServer(engine *tracker.Engine) (*Server, error) {
	if engine == nil {
		return nil, errors.New("engine required")
	}
	s := &Server{
		router: chi.NewRouter(),
		engine: engine,
	}
	s.routes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	logger := common.Logger()
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
		})
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.router.Post("/api/check", s.handleCheck)
	s.router.Post("/api/register", s.handleRegister)
	s.router.Post("/api/usage", s.handleTrackUsage)
	s.router.Get("/api/usage", s.handleUsageStats)
	s.router.Get("/api/most-used", s.handleMostUsed)
	s.router.Get("/api/stats", s.handleStats)
	s.router.Get("/api/config", s.handleGetConfig)
	s.router.Post("/api/config", s.handleUpdateConfig)
	s.router.Post("/api/clear", s.handleClear)
	s.router.Post("/api/save", s.handleSave)
	s.router.Post("/api/load", s.handleLoad)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
