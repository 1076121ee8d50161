package app

import (
	"gorm.io/gorm"

	"github.com/tandemstudy/tandem-backend/internal/data/repos"
	"github.com/tandemstudy/tandem-backend/internal/pkg/logger"
)

type Repos struct {
	Source          repos.SourceRepo
	Card            repos.CardRepo
	ReviewLog       repos.ReviewLogRepo
	LearningPartner repos.LearningPartnerRepo
	StudySettings   repos.StudySettingsRepo
	StudySession    repos.StudySessionRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Source:          repos.NewSourceRepo(db, log),
		Card:            repos.NewCardRepo(db, log),
		ReviewLog:       repos.NewReviewLogRepo(db, log),
		LearningPartner: repos.NewLearningPartnerRepo(db, log),
		StudySettings:   repos.NewStudySettingsRepo(db, log),
		StudySession:    repos.NewStudySessionRepo(db, log),
	}
}
