package planner

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/girishnp17/avaa-interview-engine/internal/models"
)

type stubGenerator struct {
	fail  bool
	calls int
}

func (g *stubGenerator) GenerateQuestion(ctx context.Context, topic string, category models.TopicCategory, resume models.ResumeProfile, job models.JobProfile) (string, error) {
	g.calls++
	if g.fail {
		return "", fmt.Errorf("upstream unavailable")
	}
	return "Tell me about your experience with " + topic + ".", nil
}

func mustBank(t *testing.T) *Bank {
	t.Helper()
	bank, err := DefaultBank()
	if err != nil {
		t.Fatalf("DefaultBank failed: %v", err)
	}
	return bank
}

func TestDefaultBank(t *testing.T) {
	bank := mustBank(t)
	if len(bank.Starters) != 3 {
		t.Errorf("expected 3 starters, got %d", len(bank.Starters))
	}
	if len(bank.Behavioral) < 10 {
		t.Errorf("expected a full behavioral set, got %d", len(bank.Behavioral))
	}
	if bank.Starters[0].Text != "Introduce yourself." {
		t.Errorf("unexpected first starter: %q", bank.Starters[0].Text)
	}
}

func TestFixedDrafts(t *testing.T) {
	p := New(mustBank(t), &stubGenerator{}, 3)

	fixed := p.Fixed()
	if len(fixed) != 3 {
		t.Fatalf("expected 3 fixed drafts, got %d", len(fixed))
	}
	for i, d := range fixed {
		if d.Source != models.SourceFixed {
			t.Errorf("draft %d has source %s", i, d.Source)
		}
		if d.Topic != "" {
			t.Errorf("fixed draft %d must not consume a topic, got %q", i, d.Topic)
		}
	}
}

func TestFixedCountClamped(t *testing.T) {
	bank := mustBank(t)
	if got := New(bank, nil, 99).FixedCount(); got != len(bank.Starters) {
		t.Errorf("expected clamp to %d, got %d", len(bank.Starters), got)
	}
	if got := New(bank, nil, 0).FixedCount(); got != len(bank.Starters) {
		t.Errorf("expected clamp to %d, got %d", len(bank.Starters), got)
	}
}

func TestNextFollowsTopicPriority(t *testing.T) {
	p := New(mustBank(t), &stubGenerator{}, 3)
	resume := models.ResumeProfile{
		Skills:   []string{"Python"},
		Projects: []models.Project{{Name: "Chat Service"}},
	}
	job := models.JobProfile{
		RequiredSkills:  []string{"Go", "PostgreSQL"},
		PreferredSkills: []string{"Kubernetes"},
	}
	covered := map[string]models.TopicCategory{}

	expected := []string{"Go", "PostgreSQL", "Kubernetes", "Python", "Chat Service"}
	for _, want := range expected {
		draft, err := p.Next(context.Background(), resume, job, covered, len(covered)+3)
		if err != nil {
			t.Fatalf("Next(%s) failed: %v", want, err)
		}
		if draft.Topic != want {
			t.Fatalf("expected topic %q, got %q", want, draft.Topic)
		}
		if draft.Source != models.SourceGenerated {
			t.Errorf("expected generated source, got %s", draft.Source)
		}
		covered[draft.Topic] = draft.Category
	}

	if _, err := p.Next(context.Background(), resume, job, covered, 8); !errors.Is(err, ErrTopicsExhausted) {
		t.Fatalf("expected ErrTopicsExhausted, got %v", err)
	}
}

func TestNextCategories(t *testing.T) {
	p := New(mustBank(t), &stubGenerator{}, 3)
	resume := models.ResumeProfile{Projects: []models.Project{{Name: "Billing"}}}
	job := models.JobProfile{
		KeyResponsibilities: []string{"Own the deploy pipeline"},
		SoftSkillsNeeded:    []string{"Communication"},
	}
	covered := map[string]models.TopicCategory{}

	wantTypes := map[string]string{
		"Billing":                 "projects_deep_dive",
		"Own the deploy pipeline": "situational",
		"Communication":           "behavioral",
	}
	for i := 0; i < 3; i++ {
		draft, err := p.Next(context.Background(), resume, job, covered, i)
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if want := wantTypes[draft.Topic]; draft.Type != want {
			t.Errorf("topic %q: expected type %q, got %q", draft.Topic, want, draft.Type)
		}
		covered[draft.Topic] = draft.Category
	}
}

func TestNextFallsBackOnGeneratorFailure(t *testing.T) {
	gen := &stubGenerator{fail: true}
	p := New(mustBank(t), gen, 3)
	job := models.JobProfile{RequiredSkills: []string{"Go"}}

	draft, err := p.Next(context.Background(), models.ResumeProfile{}, job, map[string]models.TopicCategory{}, 3)
	if err != nil {
		t.Fatalf("expected fallback draft, got error: %v", err)
	}
	if gen.calls != 2 {
		t.Errorf("expected 2 generation attempts, got %d", gen.calls)
	}
	if draft.Topic != "" {
		t.Errorf("fallback must not consume the topic, got %q", draft.Topic)
	}
	if draft.Type != "behavioral" {
		t.Errorf("expected behavioral fallback, got %q", draft.Type)
	}
	if draft.Text == "" {
		t.Error("fallback draft has no text")
	}
}

func TestFallbackRotates(t *testing.T) {
	p := New(mustBank(t), &stubGenerator{fail: true}, 3)
	job := models.JobProfile{RequiredSkills: []string{"Go"}}

	a, _ := p.Next(context.Background(), models.ResumeProfile{}, job, map[string]models.TopicCategory{}, 3)
	b, _ := p.Next(context.Background(), models.ResumeProfile{}, job, map[string]models.TopicCategory{}, 4)
	if a.Text == b.Text {
		t.Errorf("consecutive fallbacks repeated the same question: %q", a.Text)
	}
}

func TestLoadBankRejectsEmpty(t *testing.T) {
	if _, err := parseBank([]byte("starters: []\nbehavioral: []\n")); err == nil {
		t.Fatal("expected error for empty bank")
	}
}
