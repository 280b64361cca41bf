package speech

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/girishnp17/avaa-interview-engine/internal/models"
	"github.com/girishnp17/avaa-interview-engine/internal/session"
)

type stubTranscriber struct {
	text     string
	failures int // errors returned before succeeding
	calls    int
}

func (s *stubTranscriber) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	s.calls++
	if s.calls <= s.failures {
		return "", fmt.Errorf("upstream unavailable")
	}
	return s.text, nil
}

func newTranscribingSession(t *testing.T, r *session.Registry) string {
	t.Helper()
	id, err := r.Create(models.ResumeProfile{}, models.JobProfile{JobTitle: "SRE"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := r.With(id, func(s *models.Session) error {
		s.Questions = append(s.Questions, models.Question{Number: 1, Text: "Introduce yourself."})
		s.State = models.StateTranscribing
		s.InFlight[1] = true
		return nil
	}); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	return id
}

func TestDispatchStoresResult(t *testing.T) {
	r := session.NewRegistry(15)
	id := newTranscribingSession(t, r)

	p := NewTranscriptionPipeline(r, &stubTranscriber{text: "I am a site reliability engineer."}, time.Second)

	done := make(chan models.TranscriptionResult, 1)
	p.Subscribe(id, func(res models.TranscriptionResult) { done <- res })

	p.Dispatch(id, models.Recording{QuestionNumber: 1, Data: []byte("audio"), MIMEType: "audio/webm"})

	var res models.TranscriptionResult
	select {
	case res = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for transcription")
	}

	if res.Failed {
		t.Error("expected successful transcription")
	}
	if res.Text != "I am a site reliability engineer." {
		t.Errorf("unexpected text: %q", res.Text)
	}

	_ = r.With(id, func(s *models.Session) error {
		if s.Transcripts[1] == nil {
			t.Fatal("transcript not cached")
		}
		if s.InFlight[1] {
			t.Error("in-flight flag not cleared")
		}
		if s.State != models.StateAnswerReviewed {
			t.Errorf("expected answer_reviewed, got %s", s.State)
		}
		if len(s.QAHistory) != 1 {
			t.Fatalf("expected 1 qa entry, got %d", len(s.QAHistory))
		}
		if s.QAHistory[0].Question != "Introduce yourself." {
			t.Errorf("qa entry lost question text: %q", s.QAHistory[0].Question)
		}
		if s.CurrentQuestionIndex != 1 {
			t.Errorf("expected index 1, got %d", s.CurrentQuestionIndex)
		}
		return nil
	})
}

func TestDispatchRetriesOnce(t *testing.T) {
	r := session.NewRegistry(15)
	id := newTranscribingSession(t, r)

	stub := &stubTranscriber{text: "recovered answer", failures: 1}
	p := NewTranscriptionPipeline(r, stub, time.Second)

	done := make(chan models.TranscriptionResult, 1)
	p.Subscribe(id, func(res models.TranscriptionResult) { done <- res })
	p.Dispatch(id, models.Recording{QuestionNumber: 1, Data: []byte("audio")})

	select {
	case res := <-done:
		if res.Failed {
			t.Errorf("expected recovery on retry, got failure: %q", res.Text)
		}
		if stub.calls != 2 {
			t.Errorf("expected 2 attempts, got %d", stub.calls)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for transcription")
	}
}

func TestDispatchCachesFailureMarker(t *testing.T) {
	r := session.NewRegistry(15)
	id := newTranscribingSession(t, r)

	p := NewTranscriptionPipeline(r, &stubTranscriber{failures: 10}, time.Second)

	done := make(chan models.TranscriptionResult, 1)
	p.Subscribe(id, func(res models.TranscriptionResult) { done <- res })
	p.Dispatch(id, models.Recording{QuestionNumber: 1, Data: []byte("audio")})

	select {
	case res := <-done:
		if !res.Failed {
			t.Error("expected failure marker")
		}
		if !strings.HasPrefix(res.Text, "[Transcription failed:") {
			t.Errorf("unexpected failure text: %q", res.Text)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for transcription")
	}

	// The marker is cached like a normal result, so the answer flow continues
	_ = r.With(id, func(s *models.Session) error {
		if s.State != models.StateAnswerReviewed {
			t.Errorf("expected answer_reviewed after terminal failure, got %s", s.State)
		}
		return nil
	})
}

func TestResultForRetiredSessionIsDiscarded(t *testing.T) {
	r := session.NewRegistry(15)
	id := newTranscribingSession(t, r)

	block := make(chan struct{})
	p := NewTranscriptionPipeline(r, &blockingTranscriber{unblock: block}, time.Second)
	p.Dispatch(id, models.Recording{QuestionNumber: 1, Data: []byte("audio")})

	r.Terminate(id)
	close(block)

	// The worker must finish without panicking or resurrecting the session
	time.Sleep(100 * time.Millisecond)
	if r.Len() != 0 {
		t.Errorf("expected empty registry, got %d", r.Len())
	}
}

type blockingTranscriber struct {
	unblock chan struct{}
}

func (b *blockingTranscriber) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	<-b.unblock
	return "late answer", nil
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	r := session.NewRegistry(15)
	id := newTranscribingSession(t, r)

	p := NewTranscriptionPipeline(r, &stubTranscriber{text: "answer"}, time.Second)

	delivered := make(chan models.TranscriptionResult, 1)
	p.Subscribe(id, func(res models.TranscriptionResult) { delivered <- res })
	p.Unsubscribe(id)

	p.Dispatch(id, models.Recording{QuestionNumber: 1, Data: []byte("audio")})

	select {
	case <-delivered:
		t.Fatal("listener invoked after unsubscribe")
	case <-time.After(300 * time.Millisecond):
	}
}
