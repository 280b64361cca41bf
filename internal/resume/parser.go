package resume

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/girishnp17/avaa-interview-engine/internal/models"
)

// ProfileExtractor turns raw resume text into a structured profile.
// Implemented by the language-reasoning collaborator.
type ProfileExtractor interface {
	ExtractProfile(ctx context.Context, resumeText string) (models.ResumeProfile, error)
}

// Parser reads a resume PDF from disk and extracts a structured profile.
type Parser struct {
	extractor ProfileExtractor
}

// NewParser creates a resume parser.
func NewParser(extractor ProfileExtractor) *Parser {
	return &Parser{extractor: extractor}
}

// Parse extracts a profile from the PDF at path. An empty path yields an
// empty profile without error: an interview may run on the job description
// alone.
func (p *Parser) Parse(ctx context.Context, path string) (models.ResumeProfile, error) {
	if strings.TrimSpace(path) == "" {
		return models.ResumeProfile{}, nil
	}

	text, err := ExtractText(path)
	if err != nil {
		return models.ResumeProfile{}, err
	}

	if p.extractor == nil {
		return models.ResumeProfile{}, fmt.Errorf("no profile extractor configured")
	}

	profile, err := p.extractor.ExtractProfile(ctx, text)
	if err != nil {
		return models.ResumeProfile{}, err
	}
	return profile, nil
}

// ExtractText pulls plain text out of a PDF file, page by page. Pages that
// fail to decode are skipped.
func ExtractText(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("resume file not readable: %w", err)
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var builder strings.Builder
	totalPages := r.NumPage()
	for pageIndex := 1; pageIndex <= totalPages; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(text)
		builder.WriteString("\n\n")
	}

	text := strings.TrimSpace(builder.String())
	if text == "" {
		return "", fmt.Errorf("no text content found in PDF")
	}
	return text, nil
}
