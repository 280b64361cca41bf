package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/girishnp17/avaa-interview-engine/internal/interview"
	"github.com/girishnp17/avaa-interview-engine/internal/models"
	"github.com/girishnp17/avaa-interview-engine/internal/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsConn wraps one interview connection. All writes go through the outbound
// channel so the transcription push listener and the reader loop never write
// to the socket concurrently.
type wsConn struct {
	conn     *websocket.Conn
	outbound chan []byte
	done     chan struct{}

	sessionID string
	ended     bool
}

func (c *wsConn) send(eventType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("failed to marshal event payload", "type", eventType, "error", err)
		return
	}
	frame, err := json.Marshal(Envelope{Type: eventType, Data: data})
	if err != nil {
		slog.Error("failed to marshal event envelope", "type", eventType, "error", err)
		return
	}

	select {
	case c.outbound <- frame:
	case <-c.done:
	}
}

func (c *wsConn) sendError(code, message string) {
	c.send(EventError, errorPayload{Code: code, Message: message})
}

// handleInterviewWS runs one interview over a websocket. The connection owns
// at most one session; disconnecting before end_interview aborts it.
func (s *Server) handleInterviewWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	c := &wsConn{
		conn:     conn,
		outbound: make(chan []byte, 16),
		done:     make(chan struct{}),
	}

	slog.Info("interview websocket connected", "remote_addr", r.RemoteAddr)

	// Writer: single goroutine draining outbound
	go func() {
		for {
			select {
			case <-c.done:
				return
			case frame := <-c.outbound:
				if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
					slog.Debug("websocket write error", "error", err)
					return
				}
			}
		}
	}()

	// Reader loop
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("websocket read error", "error", err)
			}
			break
		}

		var env Envelope
		if err := json.Unmarshal(message, &env); err != nil {
			c.sendError("invalid_message", "message is not valid JSON")
			continue
		}

		s.dispatch(r.Context(), c, env)
	}

	close(c.done)

	if c.sessionID != "" {
		s.notifier.Unsubscribe(c.sessionID)
		if !c.ended {
			slog.Info("client disconnected mid-interview, aborting session", "session_id", c.sessionID)
			s.engine.Abort(c.sessionID)
		}
	}

	slog.Info("interview websocket disconnected", "remote_addr", r.RemoteAddr)
}

func (s *Server) dispatch(ctx context.Context, c *wsConn, env Envelope) {
	switch env.Type {
	case EventCreateSession:
		s.handleCreateSession(ctx, c, env.Data)
	case EventGetNextQuestion:
		s.handleNextQuestion(ctx, c, env.Data)
	case EventAudioChunk:
		s.handleAudioChunk(c, env.Data)
	case EventFinishRecording:
		s.handleFinishRecording(c, env.Data)
	case EventGetTranscription:
		s.handleGetTranscription(c, env.Data)
	case EventGetSessionStatus:
		s.handleSessionStatus(c, env.Data)
	case EventEndInterview:
		s.handleEndInterview(ctx, c, env.Data)
	default:
		c.sendError("unknown_event", "unsupported event type: "+env.Type)
	}
}

func (s *Server) handleCreateSession(ctx context.Context, c *wsConn, data json.RawMessage) {
	if c.sessionID != "" {
		c.sendError("session_active", "this connection already has a session")
		return
	}

	var req createSessionRequest
	if len(data) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			c.sendError("invalid_message", "malformed create_interview_session payload")
			return
		}
	}

	created, err := s.engine.CreateSession(ctx, req.ResumePath, req.JobDescription)
	if err != nil {
		s.sendEngineError(c, err)
		return
	}

	c.sessionID = created.SessionID
	c.ended = false

	// Push completed transcriptions so polling is a fallback, not the only
	// delivery path.
	s.notifier.Subscribe(created.SessionID, func(res models.TranscriptionResult) {
		c.send(EventTranscriptionReady, transcriptionReadyPayload{
			QuestionNumber: res.QuestionNumber,
			Transcription:  res.Text,
			Timestamp:      res.Timestamp.UTC().Format(time.RFC3339),
		})
	})

	payload := sessionCreatedPayload{
		SessionID:      created.SessionID,
		TotalQuestions: created.TotalQuestions,
		JobTitle:       created.JobTitle,
		FixedQuestions: created.FixedQuestions,
	}
	if !created.Resume.IsEmpty() {
		resume := created.Resume
		payload.ResumeData = &resume
	}
	c.send(EventSessionCreated, payload)
}

func (s *Server) handleNextQuestion(ctx context.Context, c *wsConn, data json.RawMessage) {
	sid, ok := c.boundSession(data)
	if !ok {
		return
	}

	res, err := s.engine.NextQuestion(ctx, sid)
	if err != nil {
		s.sendEngineError(c, err)
		return
	}

	if res.Completed {
		s.complete(ctx, c, sid)
		return
	}

	q := res.Question
	payload := nextQuestionPayload{
		QuestionNumber: q.Number,
		QuestionText:   q.Text,
		QuestionType:   q.Type,
		HasAudio:       q.HasAudio(),
		TotalQuestions: res.TotalQuestions,
	}
	if q.HasAudio() {
		payload.AudioData = q.Audio.Data
		payload.AudioMIMEType = q.Audio.MIMEType
		payload.AltMIMETypes = q.Audio.AltMIMETypes
	}
	c.send(EventNextQuestion, payload)
}

func (s *Server) handleAudioChunk(c *wsConn, data json.RawMessage) {
	var req audioChunkRequest
	if err := json.Unmarshal(data, &req); err != nil {
		c.sendError("invalid_message", "malformed audio_chunk payload")
		return
	}
	if !c.ownsSession(req.SessionID) {
		return
	}
	if len(req.Audio) == 0 {
		c.sendError("invalid_input", "audio chunk is empty")
		return
	}

	if err := s.engine.AppendAudio(req.SessionID, req.Audio, req.MIMEType); err != nil {
		s.sendEngineError(c, err)
	}
}

func (s *Server) handleFinishRecording(c *wsConn, data json.RawMessage) {
	sid, ok := c.boundSession(data)
	if !ok {
		return
	}

	res, err := s.engine.FinishRecording(sid)
	if err != nil {
		s.sendEngineError(c, err)
		return
	}

	c.send(EventRecordingProcessed, recordingProcessedPayload{
		QuestionNumber: res.QuestionNumber,
		Bytes:          res.Bytes,
	})
	c.send(EventTranscriptionStarted, transcriptionStartedPayload{
		QuestionNumber: res.QuestionNumber,
	})
}

func (s *Server) handleGetTranscription(c *wsConn, data json.RawMessage) {
	var req transcriptionRequest
	if err := json.Unmarshal(data, &req); err != nil {
		c.sendError("invalid_message", "malformed get_transcription payload")
		return
	}
	if !c.ownsSession(req.SessionID) {
		return
	}

	res, err := s.engine.Transcription(req.SessionID, req.QuestionNumber)
	if err != nil {
		if errors.Is(err, interview.ErrTranscriptionPending) {
			c.send(EventTranscriptionPending, transcriptionPendingPayload{
				QuestionNumber: req.QuestionNumber,
			})
			return
		}
		s.sendEngineError(c, err)
		return
	}

	c.send(EventTranscriptionReady, transcriptionReadyPayload{
		QuestionNumber: res.QuestionNumber,
		Transcription:  res.Text,
		Timestamp:      res.Timestamp.UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleSessionStatus(c *wsConn, data json.RawMessage) {
	sid, ok := c.boundSession(data)
	if !ok {
		return
	}

	status, err := s.engine.Status(sid)
	if err != nil {
		s.sendEngineError(c, err)
		return
	}
	c.send(EventSessionStatus, status)
}

func (s *Server) handleEndInterview(ctx context.Context, c *wsConn, data json.RawMessage) {
	sid, ok := c.boundSession(data)
	if !ok {
		return
	}
	s.complete(ctx, c, sid)
}

// complete drives evaluation and sends the final report.
func (s *Server) complete(ctx context.Context, c *wsConn, sessionID string) {
	if c.ended {
		c.send(EventError, errorPayload{
			Code:      "session_ended",
			Message:   "interview already completed",
			Completed: true,
		})
		return
	}

	res, err := s.engine.End(ctx, sessionID)
	if err != nil {
		s.sendEngineError(c, err)
		return
	}

	c.ended = true
	s.notifier.Unsubscribe(sessionID)

	qa := res.QAHistory
	if qa == nil {
		qa = []models.QAExchange{}
	}
	c.send(EventInterviewCompleted, interviewCompletedPayload{
		SessionID:           res.SessionID,
		Status:              string(res.State),
		FinalReport:         res.Report,
		SavedFile:           res.ReportFile,
		QAHistory:           qa,
		TotalQuestionsAsked: res.QuestionsAnswered,
		TotalQuestions:      res.TotalQuestions,
	})
}

// boundSession parses a bare session_id payload and checks it against the
// connection's session.
func (c *wsConn) boundSession(data json.RawMessage) (string, bool) {
	var req sessionRequest
	if len(data) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			c.sendError("invalid_message", "malformed payload")
			return "", false
		}
	}
	if !c.ownsSession(req.SessionID) {
		return "", false
	}
	return req.SessionID, true
}

func (c *wsConn) ownsSession(sessionID string) bool {
	if c.sessionID == "" {
		c.sendError("no_session", "create a session first")
		return false
	}
	if sessionID != c.sessionID {
		c.sendError("session_not_found", "unknown session id")
		return false
	}
	return true
}

func (s *Server) sendEngineError(c *wsConn, err error) {
	switch {
	case errors.Is(err, session.ErrInvalidInput):
		c.sendError("invalid_input", err.Error())
	case errors.Is(err, session.ErrNotFound):
		c.sendError("session_not_found", "session not found or expired")
	case errors.Is(err, session.ErrInvalidState):
		c.sendError("invalid_state", err.Error())
	case errors.Is(err, interview.ErrUnknownQuestion):
		c.sendError("unknown_question", err.Error())
	case errors.Is(err, interview.ErrNoRecording):
		c.sendError("no_recording", err.Error())
	default:
		slog.Error("interview operation failed", "error", err)
		c.sendError("internal_error", "internal error")
	}
}
