package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	defaultTextModel   = "gemini-2.5-flash"
	defaultSpeechModel = "gemini-2.5-flash-preview-tts"
	defaultVoiceName   = "Aoede"
)

// Config holds the Gemini collaborator configuration.
type Config struct {
	APIKey      string
	TextModel   string
	SpeechModel string
	VoiceName   string
}

// Client wraps the Google GenAI client behind the narrow contracts the
// interview engine consumes: text generation, profile extraction, speech
// synthesis and transcription.
type Client struct {
	client      *genai.Client
	textModel   string
	speechModel string
	voiceName   string
}

// NewClient creates a client configured for the Gemini API backend.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	textModel := strings.TrimSpace(cfg.TextModel)
	if textModel == "" {
		textModel = defaultTextModel
	}
	speechModel := strings.TrimSpace(cfg.SpeechModel)
	if speechModel == "" {
		speechModel = defaultSpeechModel
	}
	voiceName := strings.TrimSpace(cfg.VoiceName)
	if voiceName == "" {
		voiceName = defaultVoiceName
	}

	return &Client{
		client:      client,
		textModel:   textModel,
		speechModel: speechModel,
		voiceName:   voiceName,
	}, nil
}

// GenerateText sends the prompt to the text model and returns the combined
// textual response.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.textModel, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := collectText(resp)
	if text == "" {
		return "", errors.New("gemini api returned empty response")
	}
	return text, nil
}

func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}
	return strings.TrimSpace(builder.String())
}

// extractJSON strips markdown fences the model sometimes wraps around JSON.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start != -1 && end > start {
		raw = raw[start : end+1]
	}
	return strings.TrimSpace(raw)
}
