package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/tandemstudy/tandem-backend/internal/domain"
	"github.com/tandemstudy/tandem-backend/internal/pkg/logger"
)

type CardRepo interface {
	Create(ctx context.Context, tx *gorm.DB, cards []*types.Card) ([]*types.Card, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Card, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Card, error)
	// ListStudiable returns the source's cards eligible for a session:
	// readiness permits study and due falls within the look-ahead horizon.
	ListStudiable(ctx context.Context, tx *gorm.DB, sourceID uuid.UUID, dueBefore time.Time) ([]*types.Card, error)
	// UpdateScheduling persists the FSRS fields after a grade.
	UpdateScheduling(ctx context.Context, tx *gorm.DB, card *types.Card) error
	CountDueByState(ctx context.Context, tx *gorm.DB, sourceID uuid.UUID, state types.CardState, dueBefore time.Time) (int64, error)
}

type cardRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCardRepo(db *gorm.DB, baseLog *logger.Logger) CardRepo {
	return &cardRepo{db: db, log: baseLog.With("repo", "CardRepo")}
}

func (r *cardRepo) Create(ctx context.Context, tx *gorm.DB, cards []*types.Card) ([]*types.Card, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(cards) == 0 {
		return []*types.Card{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}

func (r *cardRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Card, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if id == uuid.Nil {
		return nil, nil
	}

	var row types.Card
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

func (r *cardRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Card, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Card
	if len(ids) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *cardRepo) ListStudiable(ctx context.Context, tx *gorm.DB, sourceID uuid.UUID, dueBefore time.Time) ([]*types.Card, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Card
	if sourceID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("source_id = ? AND readiness <> ? AND due <= ?", sourceID, types.ReadinessInReview, dueBefore).
		Order("due ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *cardRepo) UpdateScheduling(ctx context.Context, tx *gorm.DB, card *types.Card) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if card == nil || card.ID == uuid.Nil {
		return nil
	}

	return transaction.WithContext(ctx).
		Model(&types.Card{}).
		Where("id = ?", card.ID).
		Updates(map[string]any{
			"state":          card.State,
			"stability":      card.Stability,
			"difficulty":     card.Difficulty,
			"learning_steps": card.LearningSteps,
			"due":            card.Due,
			"last_review":    card.LastReview,
			"elapsed_days":   card.ElapsedDays,
			"scheduled_days": card.ScheduledDays,
			"reps":           card.Reps,
			"lapses":         card.Lapses,
		}).Error
}

func (r *cardRepo) CountDueByState(ctx context.Context, tx *gorm.DB, sourceID uuid.UUID, state types.CardState, dueBefore time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if sourceID == uuid.Nil {
		return 0, nil
	}

	var count int64
	err := transaction.WithContext(ctx).
		Model(&types.Card{}).
		Where("source_id = ? AND state = ? AND readiness <> ? AND due <= ?",
			sourceID, state, types.ReadinessInReview, dueBefore).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
