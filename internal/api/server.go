package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/girishnp17/avaa-interview-engine/internal/config"
	"github.com/girishnp17/avaa-interview-engine/internal/interview"
	"github.com/girishnp17/avaa-interview-engine/internal/models"
	"github.com/girishnp17/avaa-interview-engine/internal/report"
	"github.com/girishnp17/avaa-interview-engine/internal/session"
)

// Engine is the interview orchestration surface the protocol layer drives.
type Engine interface {
	CreateSession(ctx context.Context, resumePath, jobDescription string) (*interview.CreatedSession, error)
	NextQuestion(ctx context.Context, sessionID string) (*interview.NextResult, error)
	AppendAudio(sessionID string, chunk []byte, mimeType string) error
	FinishRecording(sessionID string) (*interview.FinishResult, error)
	Transcription(sessionID string, questionNumber int) (*models.TranscriptionResult, error)
	Status(sessionID string) (models.SessionStatus, error)
	End(ctx context.Context, sessionID string) (*interview.CompletionResult, error)
	Abort(sessionID string)
}

// TranscriptionNotifier delivers finished transcriptions to the connection
// that owns the session.
type TranscriptionNotifier interface {
	Subscribe(sessionID string, fn func(models.TranscriptionResult))
	Unsubscribe(sessionID string)
}

// Server represents the HTTP API server
type Server struct {
	config   config.ServerConfig
	router   *chi.Mux
	engine   Engine
	notifier TranscriptionNotifier
	registry *session.Registry
	reports  *report.Store
}

// NewServer creates a new API server
func NewServer(
	cfg config.ServerConfig,
	engine Engine,
	notifier TranscriptionNotifier,
	registry *session.Registry,
	reports *report.Store,
) *Server {
	s := &Server{
		config:   cfg,
		engine:   engine,
		notifier: notifier,
		registry: registry,
		reports:  reports,
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check (public)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	// Interview protocol websocket. Long-lived, so it stays outside any
	// timeout middleware.
	r.Get("/ws/interview", s.handleInterviewWS)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		r.Route("/reports", func(r chi.Router) {
			r.Get("/", s.handleListReports)
			r.Get("/{name}", s.handleGetReport)
		})
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
