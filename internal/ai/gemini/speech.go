package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/girishnp17/avaa-interview-engine/internal/models"
)

// pcmMIMEType is what the TTS model emits when no MIME type is attached:
// 16-bit little-endian mono PCM at 24kHz.
const pcmMIMEType = "audio/L16;rate=24000"

// Synthesize renders the question text to speech. The returned payload is raw
// model output; container wrapping is the synthesis pipeline's concern.
func (c *Client) Synthesize(ctx context.Context, text string) (*models.AudioPayload, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("text must not be empty")
	}

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{
					VoiceName: c.voiceName,
				},
			},
		},
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.speechModel, genai.Text(speechInstructionPrefix+text), config)
	if err != nil {
		return nil, fmt.Errorf("speech synthesis: %w", err)
	}

	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			mimeType := part.InlineData.MIMEType
			if mimeType == "" {
				mimeType = pcmMIMEType
			}
			return &models.AudioPayload{
				Data:     part.InlineData.Data,
				MIMEType: mimeType,
			}, nil
		}
	}

	return nil, errors.New("no audio in synthesis response")
}

// Transcribe converts recorded answer audio to text.
func (c *Client) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", errors.New("audio must not be empty")
	}
	if mimeType == "" {
		mimeType = "audio/webm"
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(audio, mimeType),
			genai.NewPartFromText(transcribeInstruction),
		}, genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.textModel, contents, nil)
	if err != nil {
		return "", fmt.Errorf("transcription: %w", err)
	}

	text := collectText(resp)
	if text == "" {
		return "", errors.New("empty transcription response")
	}
	return text, nil
}
