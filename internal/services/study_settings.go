package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tandemstudy/tandem-backend/internal/data/repos"
	types "github.com/tandemstudy/tandem-backend/internal/domain"
	apperrors "github.com/tandemstudy/tandem-backend/internal/pkg/errors"
	"github.com/tandemstudy/tandem-backend/internal/pkg/logger"
)

// StudySettingsService reads and writes the per-source study configuration.
type StudySettingsService interface {
	// Get returns the source's settings, falling back to solo mode when none
	// have been saved yet.
	Get(ctx context.Context, sourceID uuid.UUID) (*types.StudySettings, error)
	Update(ctx context.Context, sourceID uuid.UUID, mode types.StudyMode) (*types.StudySettings, error)
}

type studySettingsService struct {
	db       *gorm.DB
	log      *logger.Logger
	sources  repos.SourceRepo
	settings repos.StudySettingsRepo
}

func NewStudySettingsService(db *gorm.DB, baseLog *logger.Logger, sources repos.SourceRepo, settings repos.StudySettingsRepo) StudySettingsService {
	return &studySettingsService{
		db:       db,
		log:      baseLog.With("service", "StudySettingsService"),
		sources:  sources,
		settings: settings,
	}
}

func (s *studySettingsService) Get(ctx context.Context, sourceID uuid.UUID) (*types.StudySettings, error) {
	if err := s.requireSource(ctx, sourceID); err != nil {
		return nil, err
	}
	row, err := s.settings.GetBySourceID(ctx, nil, sourceID)
	if err != nil {
		return nil, fmt.Errorf("get study settings: %w", err)
	}
	if row == nil {
		return &types.StudySettings{SourceID: sourceID, StudyMode: types.StudyModeSolo}, nil
	}
	return row, nil
}

func (s *studySettingsService) Update(ctx context.Context, sourceID uuid.UUID, mode types.StudyMode) (*types.StudySettings, error) {
	if !mode.IsValid() {
		return nil, fmt.Errorf("study mode %q: %w", mode, apperrors.ErrInvalidArgument)
	}
	if err := s.requireSource(ctx, sourceID); err != nil {
		return nil, err
	}

	var row *types.StudySettings
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.settings.Upsert(ctx, tx, sourceID, mode); err != nil {
			return fmt.Errorf("upsert study settings: %w", err)
		}
		var err error
		row, err = s.settings.GetBySourceID(ctx, tx, sourceID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Updated study settings", "source_id", sourceID, "study_mode", mode)
	return row, nil
}

func (s *studySettingsService) requireSource(ctx context.Context, sourceID uuid.UUID) error {
	source, err := s.sources.GetByID(ctx, nil, sourceID)
	if err != nil {
		return fmt.Errorf("get source: %w", err)
	}
	if source == nil {
		return fmt.Errorf("source %s: %w", sourceID, apperrors.ErrNotFound)
	}
	return nil
}
