package interview

import (
	"math"

	"github.com/girishnp17/avaa-interview-engine/internal/models"
)

// ProgressOf computes the status snapshot for a session. Pure: calling it
// never mutates the session, so repeated status polls always agree.
func ProgressOf(s *models.Session) models.SessionStatus {
	percent := 0
	if s.TotalQuestions > 0 {
		percent = int(math.Round(float64(s.QuestionsAsked()) / float64(s.TotalQuestions) * 100))
	}
	if percent > 100 {
		percent = 100
	}
	return models.SessionStatus{
		SessionID:         s.ID,
		QuestionsAsked:    s.QuestionsAsked(),
		TotalQuestions:    s.TotalQuestions,
		ProgressPercent:   percent,
		SkillsDiscussed:   append([]string(nil), s.SkillsDiscussed...),
		ProjectsDiscussed: append([]string(nil), s.ProjectsDiscussed...),
		IsComplete:        s.State.IsTerminal() || s.QuestionsAsked() >= s.TotalQuestions,
	}
}
