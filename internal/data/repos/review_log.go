package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/tandemstudy/tandem-backend/internal/domain"
	"github.com/tandemstudy/tandem-backend/internal/pkg/logger"
)

// ReviewLogRepo is append-only: rows are created once and never updated
// or deleted.
type ReviewLogRepo interface {
	Create(ctx context.Context, tx *gorm.DB, logs []*types.ReviewLog) ([]*types.ReviewLog, error)
	ListByCardID(ctx context.Context, tx *gorm.DB, cardID uuid.UUID) ([]*types.ReviewLog, error)
	// LatestByParticipant returns, per card, the most recent log written by the
	// given participant (nil partnerID = the primary learner). Cards the
	// participant has never studied are absent from the map.
	LatestByParticipant(ctx context.Context, tx *gorm.DB, cardIDs []uuid.UUID, partnerID *uuid.UUID) (map[uuid.UUID]*types.ReviewLog, error)
}

type reviewLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReviewLogRepo(db *gorm.DB, baseLog *logger.Logger) ReviewLogRepo {
	return &reviewLogRepo{db: db, log: baseLog.With("repo", "ReviewLogRepo")}
}

func (r *reviewLogRepo) Create(ctx context.Context, tx *gorm.DB, logs []*types.ReviewLog) ([]*types.ReviewLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(logs) == 0 {
		return []*types.ReviewLog{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *reviewLogRepo) ListByCardID(ctx context.Context, tx *gorm.DB, cardID uuid.UUID) ([]*types.ReviewLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ReviewLog
	if cardID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("card_id = ?", cardID).
		Order("review ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *reviewLogRepo) LatestByParticipant(ctx context.Context, tx *gorm.DB, cardIDs []uuid.UUID, partnerID *uuid.UUID) (map[uuid.UUID]*types.ReviewLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	out := map[uuid.UUID]*types.ReviewLog{}
	if len(cardIDs) == 0 {
		return out, nil
	}

	q := transaction.WithContext(ctx).Where("card_id IN ?", cardIDs)
	if partnerID == nil {
		q = q.Where("learning_partner_id IS NULL")
	} else {
		q = q.Where("learning_partner_id = ?", *partnerID)
	}

	var rows []*types.ReviewLog
	if err := q.Order("review DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	// Rows arrive newest-first; keep the first one seen per card.
	for _, row := range rows {
		if _, ok := out[row.CardID]; !ok {
			out[row.CardID] = row
		}
	}
	return out, nil
}
