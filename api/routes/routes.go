package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/DovudAsadov/ai-hr-platform/api/handlers"
	"github.com/DovudAsadov/ai-hr-platform/api/middleware"
)

// SetupRoutes registers all API routes on the engine.
func SetupRoutes(r *gin.Engine, h *handlers.Handlers) {
	r.Use(middleware.CORS())
	r.Use(middleware.RequestID())

	v1 := r.Group("/api/v1")

	v1.GET("/health", h.Resume.Health)

	resume := v1.Group("/resume")
	{
		resume.POST("/analyze", h.Resume.Analyze)
		resume.POST("/optimize", h.Resume.Optimize)
		resume.POST("/batch", h.Resume.AnalyzeBatch)
	}
}
