package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/girishnp17/avaa-interview-engine/internal/config"
	"github.com/girishnp17/avaa-interview-engine/internal/evaluate"
	"github.com/girishnp17/avaa-interview-engine/internal/interview"
	"github.com/girishnp17/avaa-interview-engine/internal/models"
	"github.com/girishnp17/avaa-interview-engine/internal/planner"
	"github.com/girishnp17/avaa-interview-engine/internal/report"
	"github.com/girishnp17/avaa-interview-engine/internal/session"
	"github.com/girishnp17/avaa-interview-engine/internal/speech"
	"github.com/girishnp17/avaa-interview-engine/pkg/client"
)

// Fake AI collaborators

type fakeSynthesizer struct{}

func (fakeSynthesizer) Synthesize(ctx context.Context, text string) (*models.AudioPayload, error) {
	return &models.AudioPayload{Data: []byte{0x01, 0x02}, MIMEType: "audio/L16;rate=24000"}, nil
}

type fakeTranscriber struct{}

func (fakeTranscriber) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	return "I have five years of Go experience.", nil
}

type fakeGenerator struct{}

func (fakeGenerator) GenerateQuestion(ctx context.Context, topic string, category models.TopicCategory, resume models.ResumeProfile, job models.JobProfile) (string, error) {
	return "Walk me through how you have used " + topic + ".", nil
}

type fakeAnalyzer struct{}

func (fakeAnalyzer) AnalyzeJob(ctx context.Context, jobDescription string) (models.JobProfile, error) {
	return models.JobProfile{
		JobTitle:       "Backend Engineer",
		RequiredSkills: []string{"Go", "PostgreSQL"},
	}, nil
}

type fakeParser struct{}

func (fakeParser) Parse(ctx context.Context, path string) (models.ResumeProfile, error) {
	return models.ResumeProfile{}, nil
}

type fakeReportGenerator struct{}

func (fakeReportGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	return `{"overall_score": 8, "selected": true, "selection_reason": "strong answers",
		"technical_competency": "good", "communication_skills": "good",
		"problem_solving": "good", "cultural_fit": "good",
		"answer_quality": "specific", "summary": "Solid interview."}`, nil
}

func newTestServer(t *testing.T, totalQuestions int) (*httptest.Server, *report.Store) {
	t.Helper()

	bank, err := planner.DefaultBank()
	if err != nil {
		t.Fatalf("DefaultBank failed: %v", err)
	}

	registry := session.NewRegistry(totalQuestions)
	transcription := speech.NewTranscriptionPipeline(registry, fakeTranscriber{}, time.Second)
	reports := report.NewStore(t.TempDir())

	engine := interview.New(
		registry,
		planner.New(bank, fakeGenerator{}, 3),
		speech.NewSynthesisPipeline(fakeSynthesizer{}, time.Second),
		transcription,
		fakeParser{},
		fakeAnalyzer{},
		evaluate.New(fakeReportGenerator{}),
		reports,
	)

	server := NewServer(config.ServerConfig{}, engine, transcription, registry, reports)
	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)
	return ts, reports
}

func TestFullInterviewOverWebsocket(t *testing.T) {
	ts, _ := newTestServer(t, 4)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c, err := client.Dial(ctx, ts.URL)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	info, err := c.CreateSession(ctx, "", "We need a Go backend engineer.")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if info.SessionID == "" {
		t.Fatal("expected a session id")
	}
	if info.TotalQuestions != 4 {
		t.Errorf("expected 4 questions, got %d", info.TotalQuestions)
	}
	if info.JobTitle != "Backend Engineer" {
		t.Errorf("unexpected job title: %q", info.JobTitle)
	}

	for i := 1; i <= 4; i++ {
		q, done, err := c.NextQuestion(ctx)
		if err != nil {
			t.Fatalf("NextQuestion %d failed: %v", i, err)
		}
		if done != nil {
			t.Fatalf("interview completed early at question %d", i)
		}
		if q.QuestionNumber != i {
			t.Fatalf("expected question %d, got %d", i, q.QuestionNumber)
		}
		if len(q.AudioData) == 0 || q.AudioMIMEType != "audio/wav" {
			t.Errorf("question %d: expected WAV audio, got %d bytes of %q",
				i, len(q.AudioData), q.AudioMIMEType)
		}

		if err := c.SendAudioChunk([]byte("pretend-opus-frames"), "audio/webm"); err != nil {
			t.Fatalf("SendAudioChunk failed: %v", err)
		}
		ack, err := c.FinishRecording(ctx)
		if err != nil {
			t.Fatalf("FinishRecording failed: %v", err)
		}
		if ack.QuestionNumber != i {
			t.Errorf("ack for question %d, expected %d", ack.QuestionNumber, i)
		}

		tr, err := c.WaitForTranscription(ctx, i, 50*time.Millisecond)
		if err != nil {
			t.Fatalf("WaitForTranscription failed: %v", err)
		}
		if tr.Transcription != "I have five years of Go experience." {
			t.Errorf("unexpected transcription: %q", tr.Transcription)
		}
	}

	status, err := c.Status(ctx)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.QuestionsAsked != 4 || status.ProgressPercent != 100 {
		t.Errorf("unexpected status: %+v", status)
	}

	// Budget exhausted: the next request completes the interview
	q, done, err := c.NextQuestion(ctx)
	if err != nil {
		t.Fatalf("final NextQuestion failed: %v", err)
	}
	if q != nil || done == nil {
		t.Fatalf("expected completion, got question %+v", q)
	}
	if done.Status != string(models.StateCompleted) {
		t.Errorf("expected completed, got %s", done.Status)
	}
	if done.FinalReport == nil || done.FinalReport.OverallScore != 8 {
		t.Errorf("unexpected report: %+v", done.FinalReport)
	}
	if done.SavedFile == "" {
		t.Fatal("expected a saved report file")
	}

	// The saved record is retrievable over HTTP
	resp, err := http.Get(ts.URL + "/api/v1/reports/" + done.SavedFile)
	if err != nil {
		t.Fatalf("report fetch failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for saved report, got %d", resp.StatusCode)
	}
}

func TestEndInterviewEarly(t *testing.T) {
	ts, _ := newTestServer(t, 15)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c, err := client.Dial(ctx, ts.URL)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	if _, err := c.CreateSession(ctx, "", "We need a Go backend engineer."); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if _, _, err := c.NextQuestion(ctx); err != nil {
		t.Fatalf("NextQuestion failed: %v", err)
	}

	done, err := c.End(ctx)
	if err != nil {
		t.Fatalf("End failed: %v", err)
	}
	if done.Status != string(models.StateAborted) {
		t.Errorf("early end should abort, got %s", done.Status)
	}
	if done.FinalReport == nil {
		t.Error("early end must still produce a report")
	}

	// Session is gone: further requests fail
	if _, err := c.Status(ctx); err == nil {
		t.Fatal("expected error after interview ended")
	}
}

func TestProtocolErrors(t *testing.T) {
	ts, _ := newTestServer(t, 15)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c, err := client.Dial(ctx, ts.URL)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	// Requests before a session exists
	if _, _, err := c.NextQuestion(ctx); err == nil {
		t.Fatal("expected no_session error")
	} else if apiErr, ok := err.(*client.APIError); !ok || apiErr.Code != "no_session" {
		t.Errorf("expected no_session, got %v", err)
	}

	if _, err := c.CreateSession(ctx, "", "We need a Go backend engineer."); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	// Finishing a recording before any question was delivered
	if _, err := c.FinishRecording(ctx); err == nil {
		t.Fatal("expected invalid_state error")
	} else if apiErr, ok := err.(*client.APIError); !ok || apiErr.Code != "invalid_state" {
		t.Errorf("expected invalid_state, got %v", err)
	}

	// A second session on the same connection
	if _, err := c.CreateSession(ctx, "", "another role"); err == nil {
		t.Fatal("expected session_active error")
	} else if apiErr, ok := err.(*client.APIError); !ok || apiErr.Code != "session_active" {
		t.Errorf("expected session_active, got %v", err)
	}
}

func TestCreateSessionRequiresInput(t *testing.T) {
	ts, _ := newTestServer(t, 15)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c, err := client.Dial(ctx, ts.URL)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	if _, err := c.CreateSession(ctx, "", ""); err == nil {
		t.Fatal("expected invalid_input error")
	} else if apiErr, ok := err.(*client.APIError); !ok || apiErr.Code != "invalid_input" {
		t.Errorf("expected invalid_input, got %v", err)
	}
}

func TestHealthEndpoints(t *testing.T) {
	ts, _ := newTestServer(t, 15)

	for _, path := range []string{"/health", "/ready"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s failed: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s: expected 200, got %d", path, resp.StatusCode)
		}
	}
}

func TestReportEndpointRejectsBadNames(t *testing.T) {
	ts, _ := newTestServer(t, 15)

	resp, err := http.Get(ts.URL + "/api/v1/reports/notes.txt")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid name, got %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/api/v1/reports/interview_20200101_000000.json")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for missing report, got %d", resp.StatusCode)
	}
}
