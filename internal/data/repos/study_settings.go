package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/tandemstudy/tandem-backend/internal/domain"
	"github.com/tandemstudy/tandem-backend/internal/pkg/logger"
)

type StudySettingsRepo interface {
	GetBySourceID(ctx context.Context, tx *gorm.DB, sourceID uuid.UUID) (*types.StudySettings, error)
	Upsert(ctx context.Context, tx *gorm.DB, sourceID uuid.UUID, mode types.StudyMode) error
}

type studySettingsRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStudySettingsRepo(db *gorm.DB, baseLog *logger.Logger) StudySettingsRepo {
	return &studySettingsRepo{db: db, log: baseLog.With("repo", "StudySettingsRepo")}
}

func (r *studySettingsRepo) GetBySourceID(ctx context.Context, tx *gorm.DB, sourceID uuid.UUID) (*types.StudySettings, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if sourceID == uuid.Nil {
		return nil, nil
	}

	var row types.StudySettings
	err := transaction.WithContext(ctx).
		Where("source_id = ?", sourceID).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *studySettingsRepo) Upsert(ctx context.Context, tx *gorm.DB, sourceID uuid.UUID, mode types.StudyMode) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if sourceID == uuid.Nil {
		return nil
	}

	row := &types.StudySettings{
		ID:        uuid.New(),
		SourceID:  sourceID,
		StudyMode: mode,
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "source_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"study_mode", "updated_at"}),
		}).
		Create(row).Error
}
