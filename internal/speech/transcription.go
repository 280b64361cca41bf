package speech

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/girishnp17/avaa-interview-engine/internal/models"
	"github.com/girishnp17/avaa-interview-engine/internal/session"
)

// Transcriber converts recorded answer audio to text. Implemented by the
// speech-to-text collaborator.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// TranscriptionPipeline runs answer transcription asynchronously: each
// dispatched recording gets its own worker goroutine so a slow upstream never
// stalls question delivery or other sessions. Results land in the session's
// transcript cache through the registry accessor; if the session is gone by
// then, the result is discarded.
type TranscriptionPipeline struct {
	registry    *session.Registry
	transcriber Transcriber
	timeout     time.Duration
	maxAttempts int

	mu        sync.Mutex
	listeners map[string]func(models.TranscriptionResult)
}

// NewTranscriptionPipeline creates a pipeline. timeout bounds each upstream
// call; each recording gets at most maxAttempts attempts before a terminal
// failure marker is cached.
func NewTranscriptionPipeline(registry *session.Registry, transcriber Transcriber, timeout time.Duration) *TranscriptionPipeline {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &TranscriptionPipeline{
		registry:    registry,
		transcriber: transcriber,
		timeout:     timeout,
		maxAttempts: 2,
		listeners:   make(map[string]func(models.TranscriptionResult)),
	}
}

// Dispatch starts a worker for the recording. The caller has already
// registered the in-flight slot under the session lock; empty recordings must
// not be dispatched at all.
func (p *TranscriptionPipeline) Dispatch(sessionID string, rec models.Recording) {
	go p.work(sessionID, rec)
}

// Subscribe registers a callback invoked whenever a transcription result is
// stored for the session. At most one listener per session.
func (p *TranscriptionPipeline) Subscribe(sessionID string, fn func(models.TranscriptionResult)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners[sessionID] = fn
}

// Unsubscribe removes the session's listener.
func (p *TranscriptionPipeline) Unsubscribe(sessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.listeners, sessionID)
}

func (p *TranscriptionPipeline) work(sessionID string, rec models.Recording) {
	text, err := p.transcribe(rec)
	failed := err != nil
	if failed {
		slog.Error("transcription failed terminally",
			"session_id", sessionID,
			"question_number", rec.QuestionNumber,
			"error", err,
		)
		text = fmt.Sprintf("[Transcription failed: %v]", err)
	}

	result := models.TranscriptionResult{
		QuestionNumber: rec.QuestionNumber,
		Text:           text,
		Failed:         failed,
		Timestamp:      time.Now(),
	}

	storeErr := p.registry.With(sessionID, func(s *models.Session) error {
		if _, exists := s.Transcripts[rec.QuestionNumber]; exists {
			return nil
		}
		s.Transcripts[rec.QuestionNumber] = &result
		delete(s.InFlight, rec.QuestionNumber)

		questionText := ""
		if idx := rec.QuestionNumber - 1; idx >= 0 && idx < len(s.Questions) {
			questionText = s.Questions[idx].Text
		}
		s.QAHistory = append(s.QAHistory, models.QAExchange{
			QuestionNumber: rec.QuestionNumber,
			Question:       questionText,
			Answer:         result.Text,
			Timestamp:      result.Timestamp,
		})
		s.CurrentQuestionIndex = len(s.QAHistory)

		if s.State == models.StateTranscribing {
			s.State = models.StateAnswerReviewed
		}
		return nil
	})
	if storeErr != nil {
		if errors.Is(storeErr, session.ErrNotFound) {
			slog.Info("discarding transcription for retired session",
				"session_id", sessionID,
				"question_number", rec.QuestionNumber,
			)
			return
		}
		slog.Error("failed to store transcription", "session_id", sessionID, "error", storeErr)
		return
	}

	slog.Info("transcription stored",
		"session_id", sessionID,
		"question_number", rec.QuestionNumber,
		"failed", failed,
	)

	p.mu.Lock()
	listener := p.listeners[sessionID]
	p.mu.Unlock()
	if listener != nil {
		listener(result)
	}
}

func (p *TranscriptionPipeline) transcribe(rec models.Recording) (string, error) {
	if p.transcriber == nil {
		return "", errors.New("no transcriber configured")
	}

	var lastErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		text, err := p.transcriber.Transcribe(ctx, rec.Data, rec.MIMEType)
		cancel()
		if err == nil {
			return text, nil
		}
		lastErr = err
		slog.Warn("transcription attempt failed",
			"question_number", rec.QuestionNumber,
			"attempt", attempt,
			"error", err,
		)
	}
	return "", lastErr
}
