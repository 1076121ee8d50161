package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/tandemstudy/tandem-backend/internal/http/handlers"
	httpMW "github.com/tandemstudy/tandem-backend/internal/http/middleware"
	"github.com/tandemstudy/tandem-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	StudySessionHandler    *httpH.StudySessionHandler
	SourceStudyHandler     *httpH.SourceStudyHandler
	LearningPartnerHandler *httpH.LearningPartnerHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("tandem-backend"))
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Study sessions
		if cfg.StudySessionHandler != nil {
			api.POST("/sources/:id/study-session", cfg.StudySessionHandler.StartOrResume)
			api.GET("/study-sessions/:id", cfg.StudySessionHandler.GetSession)
			api.POST("/study-sessions/:id/grade", cfg.StudySessionHandler.Grade)
		}

		// Per-source study surfaces
		if cfg.SourceStudyHandler != nil {
			api.GET("/sources/:id/due-counts", cfg.SourceStudyHandler.GetDueCounts)
			api.GET("/sources/:id/study-settings", cfg.SourceStudyHandler.GetStudySettings)
			api.PUT("/sources/:id/study-settings", cfg.SourceStudyHandler.UpdateStudySettings)
		}

		// Learning partners
		if cfg.LearningPartnerHandler != nil {
			api.POST("/learning-partners", cfg.LearningPartnerHandler.Create)
			api.GET("/learning-partners", cfg.LearningPartnerHandler.List)
			api.PATCH("/learning-partners/:id", cfg.LearningPartnerHandler.SetEnabled)
		}
	}

	return r
}
