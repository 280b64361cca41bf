package evaluate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/girishnp17/avaa-interview-engine/internal/models"
)

type contentGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Evaluator compiles qa history into a scored report. It delegates the
// substantive scoring to the language-reasoning collaborator but owns the
// report shape and the policy that a report is always produced, even for
// partial interviews or a failed collaborator.
type Evaluator struct {
	gen contentGenerator
}

// New creates an evaluator.
func New(gen contentGenerator) *Evaluator {
	return &Evaluator{gen: gen}
}

// Evaluate scores the interview. Never returns nil: collaborator failures
// degrade to a neutral report with the failure noted in the summary, and a
// partial interview is scored on what was answered with the shortfall noted.
func (e *Evaluator) Evaluate(ctx context.Context, qaHistory []models.QAExchange, resume models.ResumeProfile, job models.JobProfile, totalPlanned int) *models.EvaluationReport {
	report := e.score(ctx, qaHistory, resume, job)

	if len(qaHistory) < totalPlanned {
		note := fmt.Sprintf("Note: the interview ended after %d of %d planned questions; the assessment covers only the answered questions.",
			len(qaHistory), totalPlanned)
		if report.Summary == "" {
			report.Summary = note
		} else {
			report.Summary = strings.TrimSpace(report.Summary) + " " + note
		}
	}

	return report
}

func (e *Evaluator) score(ctx context.Context, qaHistory []models.QAExchange, resume models.ResumeProfile, job models.JobProfile) *models.EvaluationReport {
	if e.gen == nil {
		return fallbackReport("no evaluation collaborator configured")
	}

	prompt, err := buildPrompt(qaHistory, resume, job)
	if err != nil {
		return fallbackReport(err.Error())
	}

	raw, err := e.gen.GenerateText(ctx, prompt)
	if err != nil {
		slog.Error("evaluation generation failed", "error", err)
		return fallbackReport(err.Error())
	}

	var report models.EvaluationReport
	if err := json.Unmarshal([]byte(extractJSON(raw)), &report); err != nil {
		slog.Error("evaluation response unparseable", "error", err)
		return fallbackReport("evaluation response could not be parsed")
	}

	if report.OverallScore < 1 {
		report.OverallScore = 1
	}
	if report.OverallScore > 10 {
		report.OverallScore = 10
	}
	return &report
}

func fallbackReport(reason string) *models.EvaluationReport {
	return &models.EvaluationReport{
		OverallScore:        5,
		Selected:            false,
		SelectionReason:     "Automatic evaluation was unavailable; manual review required.",
		TechnicalCompetency: "fair",
		CommunicationSkills: "fair",
		ProblemSolving:      "fair",
		CulturalFit:         "fair",
		AnswerQuality:       "not assessed",
		Summary:             "Evaluation unavailable: " + reason + ".",
	}
}

const evaluationPrompt = `You are an expert interviewer evaluating a candidate's interview performance.
Analyze the complete interview conversation and provide a comprehensive assessment.

COMPLETE INTERVIEW TRANSCRIPT:
%s

CANDIDATE PROFILE:
%s

JOB REQUIREMENTS:
%s

EVALUATION INSTRUCTIONS:
Analyze EACH answer the candidate gave. Look for technical accuracy, communication
clarity, problem-solving approach, relevant experience, cultural fit, honesty and
enthusiasm. Base your evaluation ENTIRELY on what the candidate actually said.

Return ONLY JSON:
{
    "overall_score": <integer 1-10>,
    "selected": <boolean>,
    "selection_reason": "justification based on specific answers given",
    "strengths": ["specific strength based on their responses"],
    "improvement_areas": ["specific areas where answers were weak"],
    "recommendations": ["actionable advice based on interview performance"],
    "technical_competency": "poor/fair/good/excellent",
    "communication_skills": "poor/fair/good/excellent",
    "problem_solving": "poor/fair/good/excellent",
    "cultural_fit": "poor/fair/good/excellent",
    "answer_quality": "assessment of how well they answered questions",
    "summary": "4-5 sentence summary of their actual interview performance"
}`

func buildPrompt(qaHistory []models.QAExchange, resume models.ResumeProfile, job models.JobProfile) (string, error) {
	transcript, err := json.MarshalIndent(qaHistory, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal transcript: %w", err)
	}
	resumeJSON, err := json.MarshalIndent(resume, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal resume profile: %w", err)
	}
	jobJSON, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal job profile: %w", err)
	}
	return fmt.Sprintf(evaluationPrompt, transcript, resumeJSON, jobJSON), nil
}

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
