package api

import (
	"encoding/json"

	"github.com/girishnp17/avaa-interview-engine/internal/models"
)

// Client-to-server event types.
const (
	EventCreateSession    = "create_interview_session"
	EventGetNextQuestion  = "get_next_question"
	EventAudioChunk       = "audio_chunk"
	EventFinishRecording  = "finish_recording"
	EventGetTranscription = "get_transcription"
	EventGetSessionStatus = "get_session_status"
	EventEndInterview     = "end_interview"
)

// Server-to-client event types.
const (
	EventSessionCreated       = "session_created"
	EventNextQuestion         = "next_question"
	EventRecordingProcessed   = "recording_processed"
	EventTranscriptionStarted = "transcription_started"
	EventTranscriptionPending = "transcription_pending"
	EventTranscriptionReady   = "transcription_ready"
	EventSessionStatus        = "session_status"
	EventInterviewCompleted   = "interview_completed"
	EventError                = "error"
)

// Envelope is the wire frame for every websocket message, both directions.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Inbound payloads.

type createSessionRequest struct {
	ResumePath     string `json:"resume_path,omitempty"`
	JobDescription string `json:"job_description,omitempty"`
}

type sessionRequest struct {
	SessionID string `json:"session_id"`
}

type audioChunkRequest struct {
	SessionID string `json:"session_id"`
	Audio     []byte `json:"audio_data"`
	MIMEType  string `json:"mime_type,omitempty"`
}

type transcriptionRequest struct {
	SessionID string `json:"session_id"`
	// optional; zero means the most recently delivered question
	QuestionNumber int `json:"question_number,omitempty"`
}

// Outbound payloads.

type sessionCreatedPayload struct {
	SessionID      string                `json:"session_id"`
	TotalQuestions int                   `json:"total_questions"`
	ResumeData     *models.ResumeProfile `json:"resume_data,omitempty"`
	JobTitle       string                `json:"job_title,omitempty"`
	FixedQuestions []string              `json:"fixed_questions,omitempty"`
}

type nextQuestionPayload struct {
	QuestionNumber int      `json:"question_number"`
	QuestionText   string   `json:"question_text"`
	QuestionType   string   `json:"question_type"`
	HasAudio       bool     `json:"has_audio"`
	AudioData      []byte   `json:"audio_data,omitempty"`
	AudioMIMEType  string   `json:"audio_mime_type,omitempty"`
	AltMIMETypes   []string `json:"alt_mime_types,omitempty"`
	TotalQuestions int      `json:"total_questions"`
}

type recordingProcessedPayload struct {
	QuestionNumber int `json:"question_number"`
	Bytes          int `json:"bytes"`
}

type transcriptionStartedPayload struct {
	QuestionNumber int `json:"question_number"`
}

type transcriptionPendingPayload struct {
	QuestionNumber int `json:"question_number"`
}

type transcriptionReadyPayload struct {
	QuestionNumber int    `json:"question_number"`
	Transcription  string `json:"transcription"`
	Timestamp      string `json:"timestamp"`
}

type interviewCompletedPayload struct {
	SessionID           string                   `json:"session_id"`
	Status              string                   `json:"status"`
	FinalReport         *models.EvaluationReport `json:"final_report,omitempty"`
	SavedFile           string                   `json:"saved_file,omitempty"`
	QAHistory           []models.QAExchange      `json:"qa_history"`
	TotalQuestionsAsked int                      `json:"total_questions_asked"`
	TotalQuestions      int                      `json:"total_questions"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// set when the operation failed because the interview already completed
	Completed bool `json:"completed,omitempty"`
}
