package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/tandemstudy/tandem-backend/internal/domain"
	"github.com/tandemstudy/tandem-backend/internal/pkg/logger"
)

type LearningPartnerRepo interface {
	Create(ctx context.Context, tx *gorm.DB, partners []*types.LearningPartner) ([]*types.LearningPartner, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.LearningPartner, error)
	ListEnabled(ctx context.Context, tx *gorm.DB) ([]*types.LearningPartner, error)
	SetEnabled(ctx context.Context, tx *gorm.DB, id uuid.UUID, enabled bool) error
}

type learningPartnerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLearningPartnerRepo(db *gorm.DB, baseLog *logger.Logger) LearningPartnerRepo {
	return &learningPartnerRepo{db: db, log: baseLog.With("repo", "LearningPartnerRepo")}
}

func (r *learningPartnerRepo) Create(ctx context.Context, tx *gorm.DB, partners []*types.LearningPartner) ([]*types.LearningPartner, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(partners) == 0 {
		return []*types.LearningPartner{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&partners).Error; err != nil {
		return nil, err
	}
	return partners, nil
}

func (r *learningPartnerRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.LearningPartner, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if id == uuid.Nil {
		return nil, nil
	}

	var row types.LearningPartner
	err := transaction.WithContext(ctx).
		Where("id = ?", id).
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

func (r *learningPartnerRepo) ListEnabled(ctx context.Context, tx *gorm.DB) ([]*types.LearningPartner, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.LearningPartner
	if err := transaction.WithContext(ctx).
		Where("is_enabled = ?", true).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *learningPartnerRepo) SetEnabled(ctx context.Context, tx *gorm.DB, id uuid.UUID, enabled bool) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if id == uuid.Nil {
		return nil
	}

	return transaction.WithContext(ctx).
		Model(&types.LearningPartner{}).
		Where("id = ?", id).
		Update("is_enabled", enabled).Error
}
