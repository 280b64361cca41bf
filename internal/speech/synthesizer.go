package speech

import (
	"context"
	"log/slog"
	"time"

	"github.com/girishnp17/avaa-interview-engine/internal/models"
)

// Synthesizer converts question text to audio. Implemented by the
// text-to-speech collaborator.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (*models.AudioPayload, error)
}

// SynthesisPipeline wraps the synthesis collaborator with a timeout and the
// degradation policy: any failure yields a nil payload, never an error, so
// absence of audio stays a legal state for every question.
type SynthesisPipeline struct {
	synth   Synthesizer
	timeout time.Duration
}

// NewSynthesisPipeline creates a pipeline. timeout bounds each upstream call;
// it must be shorter than the client's patience budget.
func NewSynthesisPipeline(synth Synthesizer, timeout time.Duration) *SynthesisPipeline {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &SynthesisPipeline{synth: synth, timeout: timeout}
}

// Render synthesizes speech for the text. Raw PCM output is wrapped in a WAV
// container, with the raw interpretation advertised as an alternate so the
// client can retry the same bytes under a different container before falling
// back to local synthesis.
func (p *SynthesisPipeline) Render(ctx context.Context, text string) *models.AudioPayload {
	if p.synth == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	payload, err := p.synth.Synthesize(ctx, text)
	if err != nil {
		slog.Warn("speech synthesis unavailable, delivering text-only", "error", err)
		return nil
	}
	if payload == nil || len(payload.Data) == 0 {
		return nil
	}

	if isRawPCM(payload.MIMEType) {
		return &models.AudioPayload{
			Data:         pcmToWAV(payload.Data, ttsSampleRate, ttsBitsPerSample, ttsChannels),
			MIMEType:     "audio/wav",
			AltMIMETypes: []string{payload.MIMEType},
		}
	}
	return payload
}
