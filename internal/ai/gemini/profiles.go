package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/girishnp17/avaa-interview-engine/internal/models"
)

// ExtractProfile parses raw resume text into a structured profile.
func (c *Client) ExtractProfile(ctx context.Context, resumeText string) (models.ResumeProfile, error) {
	raw, err := c.GenerateText(ctx, fmt.Sprintf(resumePromptTemplate, resumeText))
	if err != nil {
		return models.ResumeProfile{}, fmt.Errorf("resume extraction: %w", err)
	}

	var profile models.ResumeProfile
	if err := json.Unmarshal([]byte(extractJSON(raw)), &profile); err != nil {
		return models.ResumeProfile{}, fmt.Errorf("parse resume profile: %w", err)
	}
	return profile, nil
}

// AnalyzeJob parses a job description into a structured profile.
func (c *Client) AnalyzeJob(ctx context.Context, jobDescription string) (models.JobProfile, error) {
	raw, err := c.GenerateText(ctx, fmt.Sprintf(jobPromptTemplate, jobDescription))
	if err != nil {
		return models.JobProfile{}, fmt.Errorf("job analysis: %w", err)
	}

	var profile models.JobProfile
	if err := json.Unmarshal([]byte(extractJSON(raw)), &profile); err != nil {
		return models.JobProfile{}, fmt.Errorf("parse job profile: %w", err)
	}
	return profile, nil
}

// GenerateQuestion phrases an interview question bound to the given topic.
func (c *Client) GenerateQuestion(ctx context.Context, topic string, category models.TopicCategory, resume models.ResumeProfile, job models.JobProfile) (string, error) {
	background := resume.Name
	if len(resume.Skills) > 0 {
		background += " (" + strings.Join(resume.Skills, ", ") + ")"
	}
	if strings.TrimSpace(background) == "" {
		background = "not provided"
	}

	prompt := fmt.Sprintf(questionPromptTemplate, job.JobTitle, topic, category, background)
	text, err := c.GenerateText(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("question generation: %w", err)
	}

	// The model occasionally returns several lines; the question is the first.
	if idx := strings.Index(text, "\n"); idx != -1 {
		text = text[:idx]
	}
	return strings.TrimSpace(text), nil
}
