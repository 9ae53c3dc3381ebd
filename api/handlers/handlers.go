package handlers

import (
	"github.com/DovudAsadov/ai-hr-platform/internal/processor"
	"github.com/DovudAsadov/ai-hr-platform/pkg/logger"
)

// Handlers bundles the API handler groups.
type Handlers struct {
	Resume *ResumeHandler
}

// NewHandlers wires the handler groups to their processors.
func NewHandlers(
	analyzer *processor.ResumeAnalyzer,
	optimizer *processor.ResumeOptimizer,
	log logger.Logger,
) *Handlers {
	return &Handlers{
		Resume: NewResumeHandler(analyzer, optimizer, log),
	}
}
