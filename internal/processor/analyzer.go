package processor

import (
	"context"

	"github.com/DovudAsadov/ai-hr-platform/internal/llm"
	"github.com/DovudAsadov/ai-hr-platform/pkg/logger"
)

const analysisSystemPrompt = `You are an expert HR professional and resume reviewer.
Analyze the provided resume and give structured feedback covering:
1. Clarity: is the resume easy to read and well organized?
2. Impact: are achievements concrete, quantified, and compelling?
3. ATS keyword coverage: does it contain the terms applicant tracking systems look for?
4. Formatting and presentation: layout, consistency, length.
5. Specific recommendations for enhancement.

Provide your analysis in a structured, professional format.`

// ResumeAnalyzer produces narrative feedback on a resume. The backend's
// response is passed through verbatim, preserving its formatting.
type ResumeAnalyzer struct {
	base
	backend llm.Client
	logger  logger.Logger
}

// NewResumeAnalyzer creates an analyzer bound to a backend and extractor.
func NewResumeAnalyzer(backend llm.Client, extractor Extractor, log logger.Logger) *ResumeAnalyzer {
	return &ResumeAnalyzer{
		base:    base{extractor: extractor},
		backend: backend,
		logger:  log,
	}
}

func (a *ResumeAnalyzer) Name() string { return "resume-analyzer" }

func (a *ResumeAnalyzer) PayloadKey() string { return "analysis" }

func (a *ResumeAnalyzer) BuildPrompt(text string) llm.Request {
	return llm.Request{
		System:      analysisSystemPrompt,
		User:        "Please analyze this resume:\n\n" + text,
		MaxTokens:   2000,
		Temperature: 0.7,
	}
}

func (a *ResumeAnalyzer) Postprocess(raw string) string { return raw }

// Process runs the full analysis lifecycle on doc.
func (a *ResumeAnalyzer) Process(ctx context.Context, doc Document) Result {
	a.logger.Info("analyzing resume",
		logger.String("processor", a.Name()),
		logger.Bool("from_file", doc.Path != "" || len(doc.Data) > 0),
	)
	result := Process(ctx, a, a.backend, doc)
	if !result.OK() {
		a.logger.Warn("analysis failed", logger.String("error", result.ErrMessage()))
	}
	return result
}
