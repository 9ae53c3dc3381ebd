package processor

import (
	"context"

	"github.com/DovudAsadov/ai-hr-platform/internal/llm"
	"github.com/DovudAsadov/ai-hr-platform/pkg/logger"
)

const optimizationSystemPrompt = `You are an expert resume writer and career coach.
Rewrite the provided resume to make it more compelling and effective.

Focus on:
1. Improving language and impact statements
2. Enhancing formatting and structure
3. Optimizing for ATS (applicant tracking system) compatibility
4. Strengthening achievements with metrics
5. Ensuring consistency and professional presentation

Return the optimized resume in a well-formatted structure.`

// ResumeOptimizer rewrites a resume for ATS compatibility.
type ResumeOptimizer struct {
	base
	backend llm.Client
	logger  logger.Logger
}

// NewResumeOptimizer creates an optimizer bound to a backend and extractor.
func NewResumeOptimizer(backend llm.Client, extractor Extractor, log logger.Logger) *ResumeOptimizer {
	return &ResumeOptimizer{
		base:    base{extractor: extractor},
		backend: backend,
		logger:  log,
	}
}

func (o *ResumeOptimizer) Name() string { return "resume-optimizer" }

func (o *ResumeOptimizer) PayloadKey() string { return "optimized_resume" }

func (o *ResumeOptimizer) BuildPrompt(text string) llm.Request {
	return llm.Request{
		System:      optimizationSystemPrompt,
		User:        "Please optimize this resume:\n\n" + text,
		MaxTokens:   3000,
		Temperature: 0.5,
	}
}

func (o *ResumeOptimizer) Postprocess(raw string) string { return raw }

// Process runs the full optimization lifecycle on doc.
func (o *ResumeOptimizer) Process(ctx context.Context, doc Document) Result {
	o.logger.Info("optimizing resume",
		logger.String("processor", o.Name()),
		logger.Bool("from_file", doc.Path != "" || len(doc.Data) > 0),
	)
	result := Process(ctx, o, o.backend, doc)
	if !result.OK() {
		o.logger.Warn("optimization failed", logger.String("error", result.ErrMessage()))
	}
	return result
}
