package interview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/girishnp17/avaa-interview-engine/internal/models"
	"github.com/girishnp17/avaa-interview-engine/internal/planner"
	"github.com/girishnp17/avaa-interview-engine/internal/session"
)

// Engine-level errors, surfaced to the protocol layer.
var (
	ErrTranscriptionPending = errors.New("transcription not ready yet")
	ErrNoRecording          = errors.New("no recording submitted for this question")
	ErrUnknownQuestion      = errors.New("unknown question number")
)

// ResumeParser turns a resume file into a structured profile.
type ResumeParser interface {
	Parse(ctx context.Context, path string) (models.ResumeProfile, error)
}

// JobAnalyzer turns a raw job description into a structured profile.
type JobAnalyzer interface {
	AnalyzeJob(ctx context.Context, jobDescription string) (models.JobProfile, error)
}

// SpeechRenderer synthesizes question audio. A nil payload means delivery
// proceeds text-only.
type SpeechRenderer interface {
	Render(ctx context.Context, text string) *models.AudioPayload
}

// AnswerDispatcher hands a recording to the asynchronous transcription
// pipeline.
type AnswerDispatcher interface {
	Dispatch(sessionID string, rec models.Recording)
}

// Evaluator scores a finished interview. Always returns a report.
type Evaluator interface {
	Evaluate(ctx context.Context, qaHistory []models.QAExchange, resume models.ResumeProfile, job models.JobProfile, totalPlanned int) *models.EvaluationReport
}

// ReportSaver persists a completed interview record and returns its filename.
type ReportSaver interface {
	Save(record models.InterviewRecord) (string, error)
}

// Engine orchestrates the interview lifecycle: session creation, question
// planning and delivery, answer capture, transcription polling and final
// evaluation. All session state lives in the registry; the engine holds the
// session lock only around state reads and transitions, never across a call
// to a collaborator.
type Engine struct {
	registry   *session.Registry
	planner    *planner.Planner
	renderer   SpeechRenderer
	dispatcher AnswerDispatcher
	parser     ResumeParser
	analyzer   JobAnalyzer
	evaluator  Evaluator
	reports    ReportSaver
}

// New wires the engine.
func New(
	registry *session.Registry,
	qplanner *planner.Planner,
	renderer SpeechRenderer,
	dispatcher AnswerDispatcher,
	parser ResumeParser,
	analyzer JobAnalyzer,
	evaluator Evaluator,
	reports ReportSaver,
) *Engine {
	return &Engine{
		registry:   registry,
		planner:    qplanner,
		renderer:   renderer,
		dispatcher: dispatcher,
		parser:     parser,
		analyzer:   analyzer,
		evaluator:  evaluator,
		reports:    reports,
	}
}

// CreatedSession is the outcome of CreateSession.
type CreatedSession struct {
	SessionID      string
	Candidate      string
	JobTitle       string
	TotalQuestions int
	Resume         models.ResumeProfile
	FixedQuestions []string
}

// CreateSession builds both profiles, registers the session and pre-renders
// audio for the fixed starter questions. Profile extraction degrades rather
// than fails: an unreadable resume yields an empty resume profile, and a job
// description the analyzer cannot structure is kept verbatim as the job
// title. Only a session with no usable profile at all is rejected.
func (e *Engine) CreateSession(ctx context.Context, resumePath, jobDescription string) (*CreatedSession, error) {
	var resumeProfile models.ResumeProfile
	if resumePath != "" && e.parser != nil {
		profile, err := e.parser.Parse(ctx, resumePath)
		if err != nil {
			slog.Warn("resume parsing failed, continuing without resume profile",
				"path", resumePath,
				"error", err,
			)
		} else {
			resumeProfile = profile
		}
	}

	var jobProfile models.JobProfile
	if jobDescription != "" {
		if e.analyzer != nil {
			profile, err := e.analyzer.AnalyzeJob(ctx, jobDescription)
			if err != nil {
				slog.Warn("job analysis failed, using raw description", "error", err)
				jobProfile = models.JobProfile{JobTitle: jobDescription}
			} else {
				jobProfile = profile
			}
		} else {
			jobProfile = models.JobProfile{JobTitle: jobDescription}
		}
	}

	id, err := e.registry.Create(resumeProfile, jobProfile)
	if err != nil {
		return nil, err
	}

	fixed := e.prerenderFixed(ctx)
	if err := e.registry.With(id, func(s *models.Session) error {
		s.FixedQueue = fixed
		return nil
	}); err != nil {
		return nil, err
	}

	result := &CreatedSession{
		SessionID: id,
		Candidate: resumeProfile.Name,
		JobTitle:  jobProfile.JobTitle,
		Resume:    resumeProfile,
	}
	for _, q := range fixed {
		result.FixedQuestions = append(result.FixedQuestions, q.Text)
	}
	_ = e.registry.With(id, func(s *models.Session) error {
		result.TotalQuestions = s.TotalQuestions
		return nil
	})
	return result, nil
}

// prerenderFixed synthesizes the fixed starters concurrently so the first
// get_next_question is served from memory.
func (e *Engine) prerenderFixed(ctx context.Context) []models.Question {
	drafts := e.planner.Fixed()
	questions := make([]models.Question, len(drafts))

	var wg sync.WaitGroup
	for i, d := range drafts {
		questions[i] = models.Question{
			Text:   d.Text,
			Type:   d.Type,
			Source: d.Source,
		}
		if e.renderer == nil {
			continue
		}
		wg.Add(1)
		go func(i int, text string) {
			defer wg.Done()
			questions[i].Audio = e.renderer.Render(ctx, text)
		}(i, d.Text)
	}
	wg.Wait()
	return questions
}

// NextResult is the outcome of NextQuestion: either a delivered question or
// a signal that the interview has no questions left.
type NextResult struct {
	Question       *models.Question
	TotalQuestions int
	Completed      bool
}

// NextQuestion plans, synthesizes and delivers the next question. Delivery is
// two-phase around the slow external calls: the session is moved to
// question_pending under its lock, the question is produced outside the lock,
// then the delivery is finalized under the lock again. A concurrent second
// call therefore fails the first phase with an invalid-state error instead of
// producing a duplicate sequence number.
//
// Completed=true means the question budget or the topic supply is exhausted;
// the caller should drive the interview to completion.
func (e *Engine) NextQuestion(ctx context.Context, sessionID string) (*NextResult, error) {
	var (
		resumeProfile models.ResumeProfile
		jobProfile    models.JobProfile
		covered       map[string]models.TopicCategory
		delivered     int
		total         int
		fixed         *models.Question
		budgetDone    bool
	)

	err := e.registry.With(sessionID, func(s *models.Session) error {
		total = s.TotalQuestions
		if s.QuestionsAsked() >= s.TotalQuestions {
			budgetDone = true
			return nil
		}
		if err := session.Transition(s, models.StateQuestionPending); err != nil {
			return err
		}
		resumeProfile = s.Resume
		jobProfile = s.Job
		delivered = s.QuestionsAsked()
		covered = make(map[string]models.TopicCategory, len(s.CoveredTopics))
		for topic, cat := range s.CoveredTopics {
			covered[topic] = cat
		}
		if len(s.FixedQueue) > 0 {
			q := s.FixedQueue[0]
			s.FixedQueue = s.FixedQueue[1:]
			fixed = &q
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if budgetDone {
		return &NextResult{Completed: true, TotalQuestions: total}, nil
	}

	var draft planner.Draft
	var audio *models.AudioPayload
	if fixed != nil {
		draft = planner.Draft{
			Text:   fixed.Text,
			Type:   fixed.Type,
			Source: fixed.Source,
		}
		audio = fixed.Audio
	} else {
		draft, err = e.planner.Next(ctx, resumeProfile, jobProfile, covered, delivered)
		if errors.Is(err, planner.ErrTopicsExhausted) {
			slog.Info("topics exhausted, ending interview early",
				"session_id", sessionID,
				"delivered", delivered,
			)
			return &NextResult{Completed: true, TotalQuestions: total}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("plan question: %w", err)
		}
		if e.renderer != nil {
			audio = e.renderer.Render(ctx, draft.Text)
		}
	}

	var question models.Question
	err = e.registry.With(sessionID, func(s *models.Session) error {
		question = models.Question{
			Number: s.QuestionsAsked() + 1,
			Text:   draft.Text,
			Type:   draft.Type,
			Source: draft.Source,
			Topic:  draft.Topic,
			Audio:  audio,
		}
		s.Questions = append(s.Questions, question)
		s.CoverTopic(draft.Topic, draft.Category)
		return session.Transition(s, models.StateQuestionDelivered)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("question delivered",
		"session_id", sessionID,
		"question_number", question.Number,
		"source", question.Source,
		"has_audio", question.HasAudio(),
	)
	return &NextResult{Question: &question, TotalQuestions: total}, nil
}

// AppendAudio buffers one recorded answer chunk. The first chunk moves the
// session into the recording state.
func (e *Engine) AppendAudio(sessionID string, chunk []byte, mimeType string) error {
	return e.registry.With(sessionID, func(s *models.Session) error {
		if s.State != models.StateRecording {
			if err := session.Transition(s, models.StateRecording); err != nil {
				return err
			}
		}
		s.ChunkBuffer = append(s.ChunkBuffer, chunk...)
		if s.ChunkMIME == "" && mimeType != "" {
			s.ChunkMIME = mimeType
		}
		return nil
	})
}

// FinishResult describes the recording that was closed.
type FinishResult struct {
	QuestionNumber int
	Bytes          int
}

// FinishRecording seals the chunk buffer, registers the transcription slot
// and dispatches the recording. An empty buffer still registers the slot but
// is never dispatched, so its transcription stays pending; delivering a
// fabricated answer would be worse than letting the client time out.
func (e *Engine) FinishRecording(sessionID string) (*FinishResult, error) {
	var rec models.Recording
	err := e.registry.With(sessionID, func(s *models.Session) error {
		if s.State == models.StateQuestionDelivered {
			// finish without a single chunk: pass through recording so the
			// transition chain stays legal
			if err := session.Transition(s, models.StateRecording); err != nil {
				return err
			}
		}
		if err := session.Transition(s, models.StateProcessingAudio); err != nil {
			return err
		}

		cq := s.CurrentQuestion()
		if cq == nil {
			return ErrUnknownQuestion
		}
		rec = models.Recording{
			QuestionNumber: cq.Number,
			Data:           s.ChunkBuffer,
			MIMEType:       s.ChunkMIME,
			SubmittedAt:    time.Now(),
		}
		s.ChunkBuffer = nil
		s.ChunkMIME = ""
		s.InFlight[cq.Number] = true

		return session.Transition(s, models.StateTranscribing)
	})
	if err != nil {
		return nil, err
	}

	if len(rec.Data) > 0 && e.dispatcher != nil {
		e.dispatcher.Dispatch(sessionID, rec)
	} else {
		slog.Warn("empty recording, transcription will not be dispatched",
			"session_id", sessionID,
			"question_number", rec.QuestionNumber,
		)
	}

	return &FinishResult{QuestionNumber: rec.QuestionNumber, Bytes: len(rec.Data)}, nil
}

// Transcription polls for the cached transcription of a question. Read-only:
// repeated polls return the same value and never advance session state. A
// zero question number means the most recently delivered question.
func (e *Engine) Transcription(sessionID string, questionNumber int) (*models.TranscriptionResult, error) {
	var result *models.TranscriptionResult
	err := e.registry.With(sessionID, func(s *models.Session) error {
		if questionNumber == 0 {
			questionNumber = s.QuestionsAsked()
		}
		if questionNumber < 1 || questionNumber > s.QuestionsAsked() {
			return fmt.Errorf("%w: %d", ErrUnknownQuestion, questionNumber)
		}
		if cached, ok := s.Transcripts[questionNumber]; ok {
			copied := *cached
			result = &copied
			return nil
		}
		if s.InFlight[questionNumber] {
			return ErrTranscriptionPending
		}
		return fmt.Errorf("%w: question %d", ErrNoRecording, questionNumber)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Status returns the session's progress snapshot.
func (e *Engine) Status(sessionID string) (models.SessionStatus, error) {
	var status models.SessionStatus
	err := e.registry.With(sessionID, func(s *models.Session) error {
		status = ProgressOf(s)
		return nil
	})
	return status, err
}

// CompletionResult is the outcome of End: the evaluation plus where the full
// record was saved.
type CompletionResult struct {
	SessionID         string
	State             models.SessionState
	QuestionsAnswered int
	TotalQuestions    int
	QAHistory         []models.QAExchange
	Report            *models.EvaluationReport
	ReportFile        string
}

// End evaluates the interview, persists the record and retires the session.
// Works from any live state; an interview ended before the full budget is
// evaluated on the answers given.
func (e *Engine) End(ctx context.Context, sessionID string) (*CompletionResult, error) {
	var (
		resumeProfile models.ResumeProfile
		jobProfile    models.JobProfile
		qaHistory     []models.QAExchange
		total         int
	)
	err := e.registry.With(sessionID, func(s *models.Session) error {
		resumeProfile = s.Resume
		jobProfile = s.Job
		qaHistory = append([]models.QAExchange(nil), s.QAHistory...)
		total = s.TotalQuestions
		return nil
	})
	if err != nil {
		return nil, err
	}

	report := e.evaluator.Evaluate(ctx, qaHistory, resumeProfile, jobProfile, total)

	sess := e.registry.Terminate(sessionID)
	if sess == nil {
		return nil, session.ErrNotFound
	}

	result := &CompletionResult{
		SessionID:         sessionID,
		State:             sess.State,
		QuestionsAnswered: len(sess.QAHistory),
		TotalQuestions:    sess.TotalQuestions,
		QAHistory:         sess.QAHistory,
		Report:            report,
	}

	if e.reports != nil {
		record := models.InterviewRecord{
			SessionID:         sess.ID,
			Candidate:         sess.Resume.Name,
			JobTitle:          sess.Job.JobTitle,
			CompletedAt:       time.Now(),
			TotalQuestions:    sess.TotalQuestions,
			QuestionsAnswered: len(sess.QAHistory),
			SkillsDiscussed:   sess.SkillsDiscussed,
			ProjectsDiscussed: sess.ProjectsDiscussed,
			QAHistory:         sess.QAHistory,
			Report:            *report,
		}
		name, saveErr := e.reports.Save(record)
		if saveErr != nil {
			slog.Error("failed to save interview record", "session_id", sessionID, "error", saveErr)
		} else {
			result.ReportFile = name
		}
	}

	slog.Info("interview ended",
		"session_id", sessionID,
		"state", result.State,
		"answered", result.QuestionsAnswered,
		"score", report.OverallScore,
	)
	return result, nil
}

// Abort retires a session without evaluation, for disconnects and idle
// expiry. Idempotent.
func (e *Engine) Abort(sessionID string) {
	if sess := e.registry.Terminate(sessionID); sess != nil {
		slog.Info("session aborted", "session_id", sessionID, "answered", len(sess.QAHistory))
	}
}

// ExpiredSessions returns ids of sessions idle longer than the timeout.
func (e *Engine) ExpiredSessions(idle time.Duration) []string {
	return e.registry.Expired(idle)
}
