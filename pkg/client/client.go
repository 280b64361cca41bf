package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Client is a Go SDK for the interview-engine websocket protocol. One client
// drives one interview session over one connection. Not safe for concurrent
// use: the protocol itself is strictly request/response per session.
type Client struct {
	conn      *websocket.Conn
	sessionID string

	// completed transcriptions pushed by the server while the client was
	// waiting for some other response
	pushed map[int]*Transcription

	onTranscription func(Transcription)
}

// Option configures the client
type Option func(*dialConfig)

type dialConfig struct {
	handshakeTimeout time.Duration
	onTranscription  func(Transcription)
}

// WithHandshakeTimeout sets the websocket handshake timeout
func WithHandshakeTimeout(timeout time.Duration) Option {
	return func(c *dialConfig) {
		c.handshakeTimeout = timeout
	}
}

// WithTranscriptionHandler registers a callback for transcriptions the server
// pushes between requests. Without a handler, pushed transcriptions are kept
// and served by Transcription.
func WithTranscriptionHandler(fn func(Transcription)) Option {
	return func(c *dialConfig) {
		c.onTranscription = fn
	}
}

// Dial connects to an interview-engine instance. baseURL may use the http,
// https, ws or wss scheme.
func Dial(ctx context.Context, baseURL string, opts ...Option) (*Client, error) {
	cfg := &dialConfig{handshakeTimeout: 15 * time.Second}
	for _, opt := range opts {
		opt(cfg)
	}

	url := strings.TrimSuffix(baseURL, "/")
	url = strings.Replace(url, "http://", "ws://", 1)
	url = strings.Replace(url, "https://", "wss://", 1)
	url += "/ws/interview"

	dialer := websocket.Dialer{HandshakeTimeout: cfg.handshakeTimeout}
	conn, resp, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket dial failed: %w (HTTP %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}

	return &Client{
		conn:            conn,
		pushed:          make(map[int]*Transcription),
		onTranscription: cfg.onTranscription,
	}, nil
}

// Close closes the connection. An interview that was not ended with End is
// aborted by the server.
func (c *Client) Close() error {
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return c.conn.Close()
}

// SessionID returns the active session id, empty before CreateSession.
func (c *Client) SessionID() string {
	return c.sessionID
}

// Protocol payloads

// SessionInfo describes a freshly created session.
type SessionInfo struct {
	SessionID      string          `json:"session_id"`
	TotalQuestions int             `json:"total_questions"`
	ResumeData     json.RawMessage `json:"resume_data,omitempty"`
	JobTitle       string          `json:"job_title,omitempty"`
	FixedQuestions []string        `json:"fixed_questions,omitempty"`
}

// Question is a delivered interview question, with optional synthesized
// audio.
type Question struct {
	QuestionNumber int      `json:"question_number"`
	QuestionText   string   `json:"question_text"`
	QuestionType   string   `json:"question_type"`
	HasAudio       bool     `json:"has_audio"`
	AudioData      []byte   `json:"audio_data,omitempty"`
	AudioMIMEType  string   `json:"audio_mime_type,omitempty"`
	AltMIMETypes   []string `json:"alt_mime_types,omitempty"`
	TotalQuestions int      `json:"total_questions"`
}

// RecordingAck confirms a sealed recording.
type RecordingAck struct {
	QuestionNumber int `json:"question_number"`
	Bytes          int `json:"bytes"`
}

// Transcription is a transcribed answer.
type Transcription struct {
	QuestionNumber int    `json:"question_number"`
	Transcription  string `json:"transcription"`
	Timestamp      string `json:"timestamp"`
}

// SessionStatus is a progress snapshot.
type SessionStatus struct {
	SessionID         string   `json:"session_id"`
	QuestionsAsked    int      `json:"questions_asked"`
	TotalQuestions    int      `json:"total_questions"`
	ProgressPercent   int      `json:"progress_percent"`
	SkillsDiscussed   []string `json:"skills_discussed"`
	ProjectsDiscussed []string `json:"projects_discussed"`
	IsComplete        bool     `json:"is_complete"`
}

// Report is the final evaluation.
type Report struct {
	OverallScore        int      `json:"overall_score"`
	Selected            bool     `json:"selected"`
	SelectionReason     string   `json:"selection_reason"`
	Strengths           []string `json:"strengths"`
	ImprovementAreas    []string `json:"improvement_areas"`
	Recommendations     []string `json:"recommendations"`
	TechnicalCompetency string   `json:"technical_competency"`
	CommunicationSkills string   `json:"communication_skills"`
	ProblemSolving      string   `json:"problem_solving"`
	CulturalFit         string   `json:"cultural_fit"`
	AnswerQuality       string   `json:"answer_quality"`
	Summary             string   `json:"summary"`
}

// QAEntry is one question/answer pair from the interview transcript.
type QAEntry struct {
	QuestionNumber int    `json:"question_number"`
	Question       string `json:"question"`
	Answer         string `json:"answer"`
	Timestamp      string `json:"timestamp"`
}

// Completion is the outcome of a finished interview.
type Completion struct {
	SessionID           string    `json:"session_id"`
	Status              string    `json:"status"`
	FinalReport         *Report   `json:"final_report,omitempty"`
	SavedFile           string    `json:"saved_file,omitempty"`
	QAHistory           []QAEntry `json:"qa_history"`
	TotalQuestionsAsked int       `json:"total_questions_asked"`
	TotalQuestions      int       `json:"total_questions"`
}

// APIError is a protocol-level error event from the server.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// true when the request failed because the interview already completed
	Completed bool `json:"completed,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %s - %s", e.Code, e.Message)
}

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// CreateSession starts a new interview for the given resume file and job
// description. Either may be empty, not both.
func (c *Client) CreateSession(ctx context.Context, resumePath, jobDescription string) (*SessionInfo, error) {
	err := c.write("create_interview_session", map[string]string{
		"resume_path":     resumePath,
		"job_description": jobDescription,
	})
	if err != nil {
		return nil, err
	}

	env, err := c.expect(ctx, "session_created")
	if err != nil {
		return nil, err
	}

	var info SessionInfo
	if err := json.Unmarshal(env.Data, &info); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	c.sessionID = info.SessionID
	return &info, nil
}

// NextQuestion requests the next question. When question budget or topics
// are exhausted the server completes the interview instead; the returned
// Completion is non-nil in that case and Question is nil.
func (c *Client) NextQuestion(ctx context.Context) (*Question, *Completion, error) {
	if err := c.write("get_next_question", c.sessionRef()); err != nil {
		return nil, nil, err
	}

	env, err := c.expect(ctx, "next_question", "interview_completed")
	if err != nil {
		return nil, nil, err
	}

	if env.Type == "interview_completed" {
		var done Completion
		if err := json.Unmarshal(env.Data, &done); err != nil {
			return nil, nil, fmt.Errorf("failed to unmarshal response: %w", err)
		}
		return nil, &done, nil
	}

	var q Question
	if err := json.Unmarshal(env.Data, &q); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &q, nil, nil
}

// SendAudioChunk streams one chunk of recorded answer audio. Chunks are not
// individually acknowledged.
func (c *Client) SendAudioChunk(chunk []byte, mimeType string) error {
	return c.write("audio_chunk", map[string]interface{}{
		"session_id": c.sessionID,
		"audio_data": chunk,
		"mime_type":  mimeType,
	})
}

// FinishRecording seals the current recording and starts transcription.
func (c *Client) FinishRecording(ctx context.Context) (*RecordingAck, error) {
	if err := c.write("finish_recording", c.sessionRef()); err != nil {
		return nil, err
	}

	env, err := c.expect(ctx, "recording_processed")
	if err != nil {
		return nil, err
	}

	var ack RecordingAck
	if err := json.Unmarshal(env.Data, &ack); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &ack, nil
}

// Transcription polls for the transcription of a question. ready=false with
// a nil error means the transcription is still in flight.
func (c *Client) Transcription(ctx context.Context, questionNumber int) (result *Transcription, ready bool, err error) {
	if t, ok := c.pushed[questionNumber]; ok {
		return t, true, nil
	}

	err = c.write("get_transcription", map[string]interface{}{
		"session_id":      c.sessionID,
		"question_number": questionNumber,
	})
	if err != nil {
		return nil, false, err
	}

	env, err := c.expect(ctx, "transcription_ready", "transcription_pending")
	if err != nil {
		return nil, false, err
	}
	if env.Type == "transcription_pending" {
		return nil, false, nil
	}

	var t Transcription
	if err := json.Unmarshal(env.Data, &t); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &t, true, nil
}

// WaitForTranscription polls until the transcription is ready or the context
// expires.
func (c *Client) WaitForTranscription(ctx context.Context, questionNumber int, interval time.Duration) (*Transcription, error) {
	if interval <= 0 {
		interval = time.Second
	}
	for {
		t, ready, err := c.Transcription(ctx, questionNumber)
		if err != nil {
			return nil, err
		}
		if ready {
			return t, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}
}

// Status fetches the session progress snapshot.
func (c *Client) Status(ctx context.Context) (*SessionStatus, error) {
	if err := c.write("get_session_status", c.sessionRef()); err != nil {
		return nil, err
	}

	env, err := c.expect(ctx, "session_status")
	if err != nil {
		return nil, err
	}

	var status SessionStatus
	if err := json.Unmarshal(env.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &status, nil
}

// End finishes the interview and returns the evaluation.
func (c *Client) End(ctx context.Context) (*Completion, error) {
	if err := c.write("end_interview", c.sessionRef()); err != nil {
		return nil, err
	}

	env, err := c.expect(ctx, "interview_completed")
	if err != nil {
		return nil, err
	}

	var done Completion
	if err := json.Unmarshal(env.Data, &done); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &done, nil
}

// Health checks the HTTP health endpoint of the same instance.
func Health(ctx context.Context, baseURL string) error {
	url := strings.TrimSuffix(baseURL, "/")
	url = strings.Replace(url, "ws://", "http://", 1)
	url = strings.Replace(url, "wss://", "https://", 1)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) sessionRef() map[string]string {
	return map[string]string{"session_id": c.sessionID}
}

func (c *Client) write(eventType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	frame, err := json.Marshal(envelope{Type: eventType, Data: data})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("websocket write failed: %w", err)
	}
	return nil
}

// expect reads frames until one of the wanted event types or an error event
// arrives. Pushed transcriptions encountered on the way are handed to the
// handler or cached.
func (c *Client) expect(ctx context.Context, want ...string) (*envelope, error) {
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetReadDeadline(deadline)
	} else {
		_ = c.conn.SetReadDeadline(time.Time{})
	}

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("websocket read failed: %w", err)
		}

		var env envelope
		if err := json.Unmarshal(message, &env); err != nil {
			return nil, fmt.Errorf("failed to unmarshal response: %w", err)
		}

		if env.Type == "error" {
			var apiErr APIError
			if err := json.Unmarshal(env.Data, &apiErr); err != nil {
				return nil, fmt.Errorf("failed to unmarshal error: %w", err)
			}
			return nil, &apiErr
		}

		for _, w := range want {
			if env.Type == w {
				return &env, nil
			}
		}

		// unsolicited push
		if env.Type == "transcription_ready" {
			var t Transcription
			if err := json.Unmarshal(env.Data, &t); err == nil {
				if c.onTranscription != nil {
					c.onTranscription(t)
				} else {
					c.pushed[t.QuestionNumber] = &t
				}
			}
		}
	}
}
