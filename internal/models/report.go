package models

import "time"

// EvaluationReport is the scored assessment produced once, at session
// completion. Immutable thereafter.
type EvaluationReport struct {
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

// InterviewRecord is the full artifact persisted when a session completes:
// the report plus the transcript and analytics that produced it.
type InterviewRecord struct {
	SessionID         string           `json:"session_id"`
	Candidate         string           `json:"candidate,omitempty"`
	JobTitle          string           `json:"job_title,omitempty"`
	CompletedAt       time.Time        `json:"completed_at"`
	TotalQuestions    int              `json:"total_questions"`
	QuestionsAnswered int              `json:"questions_answered"`
	SkillsDiscussed   []string         `json:"skills_discussed,omitempty"`
	ProjectsDiscussed []string         `json:"projects_discussed,omitempty"`
	QAHistory         []QAExchange     `json:"qa_history"`
	Report            EvaluationReport `json:"report"`
}
