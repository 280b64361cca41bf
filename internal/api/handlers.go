package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/girishnp17/avaa-interview-engine/internal/report"
)

// Response helpers

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiErr     `json:"error,omitempty"`
}

type apiErr struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error: &apiErr{
			Code:    code,
			Message: message,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":          "ready",
		"active_sessions": s.registry.Len(),
	})
}

// Report handlers

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	names, err := s.reports.List()
	if err != nil {
		slog.Error("failed to list reports", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list reports")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"reports": names,
		"total":   len(names),
	})
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "report name is required")
		return
	}

	data, err := s.reports.Open(name)
	if err != nil {
		if errors.Is(err, report.ErrInvalidName) {
			respondError(w, http.StatusBadRequest, "validation_error", "invalid report name")
			return
		}
		if errors.Is(err, report.ErrNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "report not found")
			return
		}
		slog.Error("failed to read report", "error", err, "name", name)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to read report")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write report response", "error", err)
	}
}
