package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/girishnp17/avaa-interview-engine/internal/models"
)

// Common errors
var (
	ErrInvalidInput = errors.New("a resume profile or a job profile is required")
	ErrNotFound     = errors.New("session not found")
	ErrInvalidState = errors.New("operation not allowed in current session state")
)

// Registry owns every active interview session. The registry lock guards only
// insert/delete of the session map; each session carries its own exclusive
// lock so that no two operations on the same session ever run concurrently.
type Registry struct {
	mu             sync.RWMutex
	sessions       map[string]*entry
	totalQuestions int
}

type entry struct {
	mu      sync.Mutex
	session *models.Session
}

// NewRegistry creates an empty registry. totalQuestions is the per-session
// question budget.
func NewRegistry(totalQuestions int) *Registry {
	return &Registry{
		sessions:       make(map[string]*entry),
		totalQuestions: totalQuestions,
	}
}

// Create allocates a new session in the created state and returns its id.
// Fails when both profiles are empty.
func (r *Registry) Create(resume models.ResumeProfile, job models.JobProfile) (string, error) {
	if resume.IsEmpty() && job.IsEmpty() {
		return "", ErrInvalidInput
	}

	now := time.Now()
	sess := &models.Session{
		ID:             uuid.New().String(),
		Resume:         resume,
		Job:            job,
		State:          models.StateCreated,
		TotalQuestions: r.totalQuestions,
		CoveredTopics:  make(map[string]models.TopicCategory),
		Transcripts:    make(map[int]*models.TranscriptionResult),
		InFlight:       make(map[int]bool),
		CreatedAt:      now,
		LastActivity:   now,
	}

	r.mu.Lock()
	r.sessions[sess.ID] = &entry{session: sess}
	r.mu.Unlock()

	slog.Info("session created", "id", sess.ID, "total_questions", r.totalQuestions)

	return sess.ID, nil
}

// With runs fn with exclusive access to the session. All reads and mutations
// of session state go through here; fn must not retain the pointer.
func (r *Registry) With(id string, fn func(*models.Session) error) error {
	r.mu.RLock()
	e, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.session.Touch()
	return fn(e.session)
}

// Terminate moves the session to a terminal state, removes it from the
// registry and returns it. Completed sessions (full question budget answered)
// end completed, everything else aborted. Idempotent: a second call returns
// nil without error.
func (r *Registry) Terminate(id string) *models.Session {
	r.mu.Lock()
	e, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()
	if !ok {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	sess := e.session
	if !sess.State.IsTerminal() {
		if len(sess.QAHistory) >= sess.TotalQuestions {
			sess.State = models.StateCompleted
		} else {
			sess.State = models.StateAborted
		}
	}

	slog.Info("session retired", "id", id, "state", sess.State, "answered", len(sess.QAHistory))

	return sess
}

// Expired returns ids of sessions idle longer than the given timeout.
func (r *Registry) Expired(idle time.Duration) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cutoff := time.Now().Add(-idle)
	var ids []string
	for id, e := range r.sessions {
		e.mu.Lock()
		last := e.session.LastActivity
		e.mu.Unlock()
		if last.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	return ids
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Transition moves the session to the next state, rejecting illegal moves.
func Transition(s *models.Session, next models.SessionState) error {
	if !s.State.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidState, s.State, next)
	}
	s.State = next
	return nil
}
