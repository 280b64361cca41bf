package speech

import (
	"context"
	"encoding/binary"
	"fmt"
	"testing"
	"time"

	"github.com/girishnp17/avaa-interview-engine/internal/models"
)

type stubSynthesizer struct {
	payload *models.AudioPayload
	err     error
}

func (s *stubSynthesizer) Synthesize(ctx context.Context, text string) (*models.AudioPayload, error) {
	return s.payload, s.err
}

func TestRenderWrapsRawPCM(t *testing.T) {
	pcm := []byte{0x01, 0x02, 0x03, 0x04}
	p := NewSynthesisPipeline(&stubSynthesizer{
		payload: &models.AudioPayload{Data: pcm, MIMEType: "audio/L16;rate=24000"},
	}, time.Second)

	out := p.Render(context.Background(), "hello")
	if out == nil {
		t.Fatal("expected audio payload")
	}
	if out.MIMEType != "audio/wav" {
		t.Errorf("expected audio/wav, got %s", out.MIMEType)
	}
	if len(out.AltMIMETypes) != 1 || out.AltMIMETypes[0] != "audio/L16;rate=24000" {
		t.Errorf("expected raw PCM alternate, got %v", out.AltMIMETypes)
	}
	if len(out.Data) != 44+len(pcm) {
		t.Fatalf("expected 44-byte header plus data, got %d bytes", len(out.Data))
	}
	if string(out.Data[0:4]) != "RIFF" || string(out.Data[8:12]) != "WAVE" {
		t.Error("missing RIFF/WAVE markers")
	}
	if rate := binary.LittleEndian.Uint32(out.Data[24:28]); rate != 24000 {
		t.Errorf("expected 24000 sample rate, got %d", rate)
	}
	if dataLen := binary.LittleEndian.Uint32(out.Data[40:44]); dataLen != uint32(len(pcm)) {
		t.Errorf("expected data length %d, got %d", len(pcm), dataLen)
	}
}

func TestRenderPassesThroughContainers(t *testing.T) {
	payload := &models.AudioPayload{Data: []byte("webm-bytes"), MIMEType: "audio/webm"}
	p := NewSynthesisPipeline(&stubSynthesizer{payload: payload}, time.Second)

	out := p.Render(context.Background(), "hello")
	if out == nil || out.MIMEType != "audio/webm" {
		t.Fatalf("expected pass-through payload, got %+v", out)
	}
}

func TestRenderDegradesToNil(t *testing.T) {
	cases := []struct {
		name string
		stub *stubSynthesizer
	}{
		{"upstream error", &stubSynthesizer{err: fmt.Errorf("quota exceeded")}},
		{"empty payload", &stubSynthesizer{payload: &models.AudioPayload{}}},
		{"nil payload", &stubSynthesizer{}},
	}
	for _, tc := range cases {
		p := NewSynthesisPipeline(tc.stub, time.Second)
		if out := p.Render(context.Background(), "hello"); out != nil {
			t.Errorf("%s: expected nil payload, got %+v", tc.name, out)
		}
	}

	if out := NewSynthesisPipeline(nil, time.Second).Render(context.Background(), "x"); out != nil {
		t.Errorf("nil synthesizer: expected nil payload, got %+v", out)
	}
}

func TestIsRawPCM(t *testing.T) {
	if !isRawPCM("audio/L16;rate=24000") || !isRawPCM("audio/l16") {
		t.Error("L16 types must be detected as raw PCM")
	}
	if isRawPCM("audio/wav") || isRawPCM("audio/webm") || isRawPCM("") {
		t.Error("container types must not be detected as raw PCM")
	}
}
