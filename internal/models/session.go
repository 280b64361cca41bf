package models

import "time"

// SessionState represents the current state of an interview session.
type SessionState string

const (
	StateCreated           SessionState = "created"
	StateQuestionPending   SessionState = "question_pending"
	StateQuestionDelivered SessionState = "question_delivered"
	StateRecording         SessionState = "recording"
	StateProcessingAudio   SessionState = "processing_audio"
	StateTranscribing      SessionState = "transcribing"
	StateAnswerReviewed    SessionState = "answer_reviewed"
	StateCompleted         SessionState = "completed"
	StateAborted           SessionState = "aborted"
)

// IsTerminal returns true if the state is final.
func (s SessionState) IsTerminal() bool {
	return s == StateCompleted || s == StateAborted
}

// validTransitions encodes the per-session state machine. Termination
// (completed/aborted) is reachable from every non-terminal state and is
// handled separately in CanTransitionTo.
var validTransitions = map[SessionState][]SessionState{
	StateCreated:           {StateQuestionPending},
	StateQuestionPending:   {StateQuestionDelivered},
	StateQuestionDelivered: {StateRecording},
	StateRecording:         {StateRecording, StateProcessingAudio},
	StateProcessingAudio:   {StateTranscribing},
	StateTranscribing:      {StateAnswerReviewed},
	StateAnswerReviewed:    {StateQuestionPending},
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s SessionState) CanTransitionTo(next SessionState) bool {
	if s.IsTerminal() {
		return false
	}
	if next == StateCompleted || next == StateAborted {
		return true
	}
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Session is one complete interview attempt, from creation to completion or
// abort. It is owned exclusively by the session registry; every other
// component reaches it through the registry's accessor so that mutation stays
// single-threaded per session.
type Session struct {
	ID             string
	Resume         ResumeProfile
	Job            JobProfile
	State          SessionState
	TotalQuestions int

	// Delivered questions in order; sequence numbers are 1-based with no gaps.
	Questions []Question

	// QAHistory grows by one entry each time an answer's transcription is
	// stored. Invariant: len(QAHistory) == CurrentQuestionIndex.
	QAHistory            []QAExchange
	CurrentQuestionIndex int

	// Covered topics accumulate monotonically across the session's life.
	CoveredTopics     map[string]TopicCategory
	SkillsDiscussed   []string
	ProjectsDiscussed []string

	// Pre-rendered fixed starter questions, consumed in order.
	FixedQueue []Question

	// Answer capture plumbing, all guarded by the session's registry lock.
	ChunkBuffer []byte
	ChunkMIME   string
	Transcripts map[int]*TranscriptionResult
	InFlight    map[int]bool

	CreatedAt    time.Time
	LastActivity time.Time
}

// CurrentQuestion returns the most recently delivered question, or nil.
func (s *Session) CurrentQuestion() *Question {
	if len(s.Questions) == 0 {
		return nil
	}
	return &s.Questions[len(s.Questions)-1]
}

// QuestionsAsked returns the number of questions delivered so far.
func (s *Session) QuestionsAsked() int {
	return len(s.Questions)
}

// CoverTopic records a topic as discussed. Topics never leave the set.
func (s *Session) CoverTopic(topic string, category TopicCategory) {
	if topic == "" {
		return
	}
	if _, seen := s.CoveredTopics[topic]; seen {
		return
	}
	s.CoveredTopics[topic] = category
	switch category {
	case TopicProject:
		s.ProjectsDiscussed = append(s.ProjectsDiscussed, topic)
	default:
		s.SkillsDiscussed = append(s.SkillsDiscussed, topic)
	}
}

// Touch refreshes the idle-timeout clock.
func (s *Session) Touch() {
	s.LastActivity = time.Now()
}

// SessionStatus is the progress snapshot returned to the client.
type SessionStatus struct {
	SessionID         string   `json:"session_id"`
	QuestionsAsked    int      `json:"questions_asked"`
	TotalQuestions    int      `json:"total_questions"`
	ProgressPercent   int      `json:"progress_percent"`
	SkillsDiscussed   []string `json:"skills_discussed"`
	ProjectsDiscussed []string `json:"projects_discussed"`
	IsComplete        bool     `json:"is_complete"`
}
