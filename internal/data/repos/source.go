package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/tandemstudy/tandem-backend/internal/domain"
	"github.com/tandemstudy/tandem-backend/internal/pkg/logger"
)

type SourceRepo interface {
	Create(ctx context.Context, tx *gorm.DB, sources []*types.Source) ([]*types.Source, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Source, error)
}

type sourceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSourceRepo(db *gorm.DB, baseLog *logger.Logger) SourceRepo {
	return &sourceRepo{db: db, log: baseLog.With("repo", "SourceRepo")}
}

func (r *sourceRepo) Create(ctx context.Context, tx *gorm.DB, sources []*types.Source) ([]*types.Source, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(sources) == 0 {
		return []*types.Source{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&sources).Error; err != nil {
		return nil, err
	}
	return sources, nil
}

func (r *sourceRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Source, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if id == uuid.Nil {
		return nil, nil
	}

	var row types.Source
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
