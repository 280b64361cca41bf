package models

import "time"

// QuestionSource tells whether a question came from the fixed starter set or
// was generated from an uncovered resume/job topic.
type QuestionSource string

const (
	SourceFixed     QuestionSource = "fixed"
	SourceGenerated QuestionSource = "generated"
)

// TopicCategory classifies a covered topic for status reporting.
type TopicCategory string

const (
	TopicSkill          TopicCategory = "skill"
	TopicProject        TopicCategory = "project"
	TopicResponsibility TopicCategory = "responsibility"
	TopicSoftSkill      TopicCategory = "soft_skill"
)

// Question is a single interview question. Immutable once delivered.
type Question struct {
	Number int            `json:"question_number"`
	Text   string         `json:"question_text"`
	Type   string         `json:"question_type"`
	Source QuestionSource `json:"source"`
	Topic  string         `json:"topic,omitempty"`
	Audio  *AudioPayload  `json:"-"`
}

// HasAudio reports whether a pre-rendered audio payload is attached.
func (q Question) HasAudio() bool {
	return q.Audio != nil && len(q.Audio.Data) > 0
}

// AudioPayload carries synthesized speech plus enough format metadata for the
// client to try alternate container interpretations before giving up.
type AudioPayload struct {
	Data         []byte
	MIMEType     string
	AltMIMETypes []string
}

// Recording is a captured answer. Transient: discarded once transcription
// completes or fails terminally.
type Recording struct {
	QuestionNumber int
	Data           []byte
	MIMEType       string
	SubmittedAt    time.Time
}

// TranscriptionResult is the cached outcome of transcribing one recording.
// Retrieval is idempotent: repeated polls return the same value.
type TranscriptionResult struct {
	QuestionNumber int       `json:"question_number"`
	Text           string    `json:"transcription"`
	Failed         bool      `json:"-"`
	Timestamp      time.Time `json:"timestamp"`
}

// QAExchange is one question/answer pair in delivery order.
type QAExchange struct {
	QuestionNumber int       `json:"question_number"`
	Question       string    `json:"question"`
	Answer         string    `json:"answer"`
	Timestamp      time.Time `json:"timestamp"`
}
