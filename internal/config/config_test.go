package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Interview.TotalQuestions != 15 {
		t.Errorf("expected 15 total questions, got %d", cfg.Interview.TotalQuestions)
	}
	if cfg.Interview.FixedQuestions != 3 {
		t.Errorf("expected 3 fixed questions, got %d", cfg.Interview.FixedQuestions)
	}
	if cfg.Interview.IdleTimeout != 30*time.Minute {
		t.Errorf("expected 30m idle timeout, got %s", cfg.Interview.IdleTimeout)
	}
	if cfg.Gemini.TextModel != "gemini-2.5-flash" {
		t.Errorf("unexpected text model: %s", cfg.Gemini.TextModel)
	}
	if cfg.Gemini.VoiceName != "Aoede" {
		t.Errorf("unexpected voice: %s", cfg.Gemini.VoiceName)
	}
	if cfg.Reports.Dir != "./reports" {
		t.Errorf("unexpected reports dir: %s", cfg.Reports.Dir)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("SERVER_PORT", "9191")
	t.Setenv("INTERVIEW_TOTAL_QUESTIONS", "7")
	t.Setenv("INTERVIEW_IDLE_TIMEOUT", "10m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9191 {
		t.Errorf("expected port 9191, got %d", cfg.Server.Port)
	}
	if cfg.Interview.TotalQuestions != 7 {
		t.Errorf("expected 7 total questions, got %d", cfg.Interview.TotalQuestions)
	}
	if cfg.Interview.IdleTimeout != 10*time.Minute {
		t.Errorf("expected 10m idle timeout, got %s", cfg.Interview.IdleTimeout)
	}
}

func TestValidate(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without API key")
	}

	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("SERVER_PORT", "70000")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for out-of-range port")
	}

	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("INTERVIEW_TOTAL_QUESTIONS", "2")
	t.Setenv("INTERVIEW_FIXED_QUESTIONS", "3")
	if _, err := Load(); err == nil {
		t.Fatal("expected error when fixed questions exceed the budget")
	}
}
