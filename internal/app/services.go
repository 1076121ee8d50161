package app

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/tandemstudy/tandem-backend/internal/fsrs"
	"github.com/tandemstudy/tandem-backend/internal/pkg/logger"
	"github.com/tandemstudy/tandem-backend/internal/services"
)

type Services struct {
	StudySession    services.StudySessionService
	Grading         services.GradingService
	DueCounts       services.DueCountsService
	StudySettings   services.StudySettingsService
	LearningPartner services.LearningPartnerService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, cache *redis.Client) (Services, error) {
	log.Info("Wiring services...")

	scheduler, err := fsrs.NewScheduler(cfg.Study)
	if err != nil {
		return Services{}, fmt.Errorf("init scheduler: %w", err)
	}

	return Services{
		StudySession: services.NewStudySessionService(
			db, log,
			r.Source, r.Card, r.ReviewLog, r.StudySettings, r.LearningPartner, r.StudySession,
		),
		Grading: services.NewGradingService(
			db, log, scheduler,
			r.Card, r.ReviewLog, r.LearningPartner, r.StudySession,
		),
		DueCounts:       services.NewDueCountsService(db, log, r.Source, r.Card, cache),
		StudySettings:   services.NewStudySettingsService(db, log, r.Source, r.StudySettings),
		LearningPartner: services.NewLearningPartnerService(db, log, r.LearningPartner),
	}, nil
}
