package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/girishnp17/avaa-interview-engine/internal/models"
)

// ErrTopicsExhausted signals that every resume/job topic has already been
// covered. Topic exhaustion is a valid terminal condition for an interview,
// not a failure.
var ErrTopicsExhausted = errors.New("no uncovered topics remain")

// QuestionGenerator phrases a question bound to a topic. Implemented by the
// language-generation collaborator.
type QuestionGenerator interface {
	GenerateQuestion(ctx context.Context, topic string, category models.TopicCategory, resume models.ResumeProfile, job models.JobProfile) (string, error)
}

// Draft is a planned question before it receives a sequence number and audio.
type Draft struct {
	Text     string
	Type     string
	Topic    string
	Category models.TopicCategory
	Source   models.QuestionSource
}

// Planner produces the fixed-then-generated question sequence for a session.
// It is stateless: topic accounting lives on the session, which the engine
// passes in as the covered set.
type Planner struct {
	bank       *Bank
	gen        QuestionGenerator
	fixedCount int
}

// New creates a planner. fixedCount is clamped to the bank's starter count.
func New(bank *Bank, gen QuestionGenerator, fixedCount int) *Planner {
	if fixedCount <= 0 || fixedCount > len(bank.Starters) {
		fixedCount = len(bank.Starters)
	}
	return &Planner{bank: bank, gen: gen, fixedCount: fixedCount}
}

// FixedCount returns the number of fixed starter questions.
func (p *Planner) FixedCount() int {
	return p.fixedCount
}

// Fixed returns the fixed starter drafts, identical for every session.
func (p *Planner) Fixed() []Draft {
	drafts := make([]Draft, 0, p.fixedCount)
	for _, q := range p.bank.Starters[:p.fixedCount] {
		drafts = append(drafts, Draft{
			Text:   q.Text,
			Type:   q.Type,
			Source: models.SourceFixed,
		})
	}
	return drafts
}

// Next plans the question for the slot after `delivered` questions. It selects
// the highest-priority uncovered topic, phrases a question for it, and returns
// the draft. The caller marks Draft.Topic as covered before delivery.
//
// When the generator fails, Next retries once and then falls back to a
// topic-agnostic behavioral question instead of blocking the interview.
func (p *Planner) Next(ctx context.Context, resume models.ResumeProfile, job models.JobProfile, covered map[string]models.TopicCategory, delivered int) (Draft, error) {
	topic, category, ok := pickTopic(resume, job, covered)
	if !ok {
		return Draft{}, ErrTopicsExhausted
	}

	text, err := p.generate(ctx, topic, category, resume, job)
	if err != nil {
		slog.Warn("question generation failed, using behavioral fallback",
			"topic", topic,
			"error", err,
		)
		return p.fallback(delivered), nil
	}

	return Draft{
		Text:     text,
		Type:     questionType(category),
		Topic:    topic,
		Category: category,
		Source:   models.SourceGenerated,
	}, nil
}

func (p *Planner) generate(ctx context.Context, topic string, category models.TopicCategory, resume models.ResumeProfile, job models.JobProfile) (string, error) {
	if p.gen == nil {
		return "", fmt.Errorf("no question generator configured")
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		text, err := p.gen.GenerateQuestion(ctx, topic, category, resume, job)
		if err == nil && text != "" {
			return text, nil
		}
		if err == nil {
			err = fmt.Errorf("generator returned empty question")
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}
	}
	return "", lastErr
}

// fallback returns a generic behavioral question. Deliberately topic-agnostic:
// no coverage is consumed, so a later successful generation can still reach
// the skipped topic.
func (p *Planner) fallback(delivered int) Draft {
	idx := delivered - p.fixedCount
	if idx < 0 {
		idx = 0
	}
	return Draft{
		Text:   p.bank.Behavioral[idx%len(p.bank.Behavioral)],
		Type:   "behavioral",
		Source: models.SourceGenerated,
	}
}

// pickTopic walks candidate topics in priority order: required skills,
// preferred skills, resume skills and certifications, projects,
// responsibilities, then soft skills. The first uncovered topic wins.
func pickTopic(resume models.ResumeProfile, job models.JobProfile, covered map[string]models.TopicCategory) (string, models.TopicCategory, bool) {
	groups := []struct {
		topics   []string
		category models.TopicCategory
	}{
		{job.RequiredSkills, models.TopicSkill},
		{job.PreferredSkills, models.TopicSkill},
		{resume.Skills, models.TopicSkill},
		{resume.Certifications, models.TopicSkill},
		{projectNames(resume.Projects), models.TopicProject},
		{job.KeyResponsibilities, models.TopicResponsibility},
		{job.SoftSkillsNeeded, models.TopicSoftSkill},
		{resume.SoftSkills, models.TopicSoftSkill},
	}

	for _, group := range groups {
		for _, topic := range group.topics {
			if topic == "" {
				continue
			}
			if _, seen := covered[topic]; seen {
				continue
			}
			return topic, group.category, true
		}
	}
	return "", "", false
}

func projectNames(projects []models.Project) []string {
	names := make([]string, 0, len(projects))
	for _, p := range projects {
		names = append(names, p.Name)
	}
	return names
}

func questionType(category models.TopicCategory) string {
	switch category {
	case models.TopicProject:
		return "projects_deep_dive"
	case models.TopicResponsibility:
		return "situational"
	case models.TopicSoftSkill:
		return "behavioral"
	default:
		return "technical_skills"
	}
}
