package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/storyunending/prosedex/internal/common"
	"github.com/storyunending/prosedex/internal/tracker"
)

type contentRequest struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type usageRequest struct {
	Fingerprint string         `json:"fingerprint"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

func decodeBody(r *http.Request, target any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result := s.engine.CheckUniqueness(req.Content, req.Metadata)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result := s.engine.RegisterContent(r.Context(), req.Content, req.Metadata)
	if !result.Registered {
		common.Logger().Debug("api: registration rejected", "reason", result.Reason)
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleTrackUsage(w http.ResponseWriter, r *http.Request) {
	var req usageRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Fingerprint) == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("fingerprint required"))
		return
	}
	s.engine.TrackUsage(req.Fingerprint, req.Metadata)
	stats, _ := s.engine.UsageStats(req.Fingerprint)
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleUsageStats(w http.ResponseWriter, r *http.Request) {
	fingerprint := strings.TrimSpace(r.URL.Query().Get("fingerprint"))
	if fingerprint == "" {
		writeJSON(w, http.StatusOK, s.engine.GlobalUsageStats())
		return
	}
	stats, ok := s.engine.UsageStats(fingerprint)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("fingerprint not found"))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleMostUsed(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("limit must be a positive integer"))
			return
		}
		limit = parsed
	}
	writeJSON(w, http.StatusOK, s.engine.MostUsed(limit))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.GlobalStats())
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Config())
}

func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var overrides tracker.Overrides
	if err := decodeBody(r, &overrides); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	updated := s.engine.UpdateConfig(overrides)
	common.Logger().Info("api: config updated", "similarity_threshold", updated.SimilarityThreshold)
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.engine.Clear(r.Context())
	common.Logger().Info("api: registry cleared")
	writeJSON(w, http.StatusOK, s.engine.GlobalStats())
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Save(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"saved": true})
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Load(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.GlobalStats())
}
