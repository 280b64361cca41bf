package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the interview engine
type Config struct {
	Server    ServerConfig
	Interview InterviewConfig
	Gemini    GeminiConfig
	Reports   ReportsConfig
	Cleanup   CleanupConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string
	Port int
}

// InterviewConfig holds per-session interview parameters
type InterviewConfig struct {
	TotalQuestions    int
	FixedQuestions    int
	QuestionBankPath  string
	IdleTimeout       time.Duration
	SynthTimeout      time.Duration
	TranscribeTimeout time.Duration
}

// GeminiConfig holds the AI collaborator configuration
type GeminiConfig struct {
	APIKey      string
	TextModel   string
	SpeechModel string
	VoiceName   string
}

// ReportsConfig holds interview report storage configuration
type ReportsConfig struct {
	Dir string
}

// CleanupConfig holds cleanup worker configuration
type CleanupConfig struct {
	Interval time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Interview: InterviewConfig{
			TotalQuestions:    getEnvAsInt("INTERVIEW_TOTAL_QUESTIONS", 15),
			FixedQuestions:    getEnvAsInt("INTERVIEW_FIXED_QUESTIONS", 3),
			QuestionBankPath:  getEnv("INTERVIEW_QUESTION_BANK", ""),
			IdleTimeout:       getEnvAsDuration("INTERVIEW_IDLE_TIMEOUT", 30*time.Minute),
			SynthTimeout:      getEnvAsDuration("SPEECH_SYNTH_TIMEOUT", 20*time.Second),
			TranscribeTimeout: getEnvAsDuration("SPEECH_TRANSCRIBE_TIMEOUT", 60*time.Second),
		},
		Gemini: GeminiConfig{
			APIKey:      getEnv("GEMINI_API_KEY", ""),
			TextModel:   getEnv("GEMINI_TEXT_MODEL", "gemini-2.5-flash"),
			SpeechModel: getEnv("GEMINI_SPEECH_MODEL", "gemini-2.5-flash-preview-tts"),
			VoiceName:   getEnv("GEMINI_VOICE_NAME", "Aoede"),
		},
		Reports: ReportsConfig{
			Dir: getEnv("REPORTS_DIR", "./reports"),
		},
		Cleanup: CleanupConfig{
			Interval: getEnvAsDuration("CLEANUP_INTERVAL", 5*time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Gemini.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}

	if c.Interview.TotalQuestions < 1 {
		return fmt.Errorf("invalid total questions: %d", c.Interview.TotalQuestions)
	}

	if c.Interview.FixedQuestions < 0 || c.Interview.FixedQuestions > c.Interview.TotalQuestions {
		return fmt.Errorf("invalid fixed questions: %d", c.Interview.FixedQuestions)
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
