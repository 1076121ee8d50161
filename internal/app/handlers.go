package app

import (
	"gorm.io/gorm"

	"github.com/tandemstudy/tandem-backend/internal/http/handlers"
	"github.com/tandemstudy/tandem-backend/internal/pkg/logger"
)

type Handlers struct {
	StudySession    *handlers.StudySessionHandler
	SourceStudy     *handlers.SourceStudyHandler
	LearningPartner *handlers.LearningPartnerHandler
	Health          *handlers.HealthHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, s Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		StudySession:    handlers.NewStudySessionHandler(s.StudySession, s.Grading),
		SourceStudy:     handlers.NewSourceStudyHandler(s.DueCounts, s.StudySettings),
		LearningPartner: handlers.NewLearningPartnerHandler(s.LearningPartner),
		Health:          handlers.NewHealthHandler(db),
	}
}
