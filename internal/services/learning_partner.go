package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tandemstudy/tandem-backend/internal/data/repos"
	types "github.com/tandemstudy/tandem-backend/internal/domain"
	apperrors "github.com/tandemstudy/tandem-backend/internal/pkg/errors"
	"github.com/tandemstudy/tandem-backend/internal/pkg/logger"
)

type LearningPartnerService interface {
	Create(ctx context.Context, name string) (*types.LearningPartner, error)
	ListEnabled(ctx context.Context) ([]*types.LearningPartner, error)
	SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) (*types.LearningPartner, error)
}

type learningPartnerService struct {
	db       *gorm.DB
	log      *logger.Logger
	partners repos.LearningPartnerRepo
}

func NewLearningPartnerService(db *gorm.DB, baseLog *logger.Logger, partners repos.LearningPartnerRepo) LearningPartnerService {
	return &learningPartnerService{
		db:       db,
		log:      baseLog.With("service", "LearningPartnerService"),
		partners: partners,
	}
}

func (s *learningPartnerService) Create(ctx context.Context, name string) (*types.LearningPartner, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("partner name is required: %w", apperrors.ErrInvalidArgument)
	}

	rows, err := s.partners.Create(ctx, nil, []*types.LearningPartner{{
		Name:      name,
		IsEnabled: true,
	}})
	if err != nil {
		return nil, fmt.Errorf("create learning partner: %w", err)
	}

	s.log.Info("Created learning partner", "partner_id", rows[0].ID, "name", name)
	return rows[0], nil
}

func (s *learningPartnerService) ListEnabled(ctx context.Context) ([]*types.LearningPartner, error) {
	rows, err := s.partners.ListEnabled(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list enabled partners: %w", err)
	}
	return rows, nil
}

func (s *learningPartnerService) SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) (*types.LearningPartner, error) {
	var row *types.LearningPartner
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.partners.GetByID(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("get partner: %w", err)
		}
		if existing == nil {
			return fmt.Errorf("learning partner %s: %w", id, apperrors.ErrNotFound)
		}
		if err := s.partners.SetEnabled(ctx, tx, id, enabled); err != nil {
			return fmt.Errorf("set partner enabled: %w", err)
		}
		existing.IsEnabled = enabled
		row = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Toggled learning partner", "partner_id", id, "enabled", enabled)
	return row, nil
}
