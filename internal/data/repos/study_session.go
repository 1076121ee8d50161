package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/tandemstudy/tandem-backend/internal/domain"
	"github.com/tandemstudy/tandem-backend/internal/pkg/logger"
)

type StudySessionRepo interface {
	// Create persists the session together with its ordered card rows.
	Create(ctx context.Context, tx *gorm.DB, session *types.StudySession) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.StudySession, error)
	GetBySourceAndDay(ctx context.Context, tx *gorm.DB, sourceID uuid.UUID, day time.Time) (*types.StudySession, error)
	// GetCard returns the queue row for a card, or nil when the card is no
	// longer part of the session.
	GetCard(ctx context.Context, tx *gorm.DB, sessionID, cardID uuid.UUID) (*types.StudySessionCard, error)
	// Head returns the lowest-position remaining row, or nil when the queue
	// is empty.
	Head(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (*types.StudySessionCard, error)
	// MoveToBack re-appends the card at the current maximum position + 1.
	// No other row is touched: the queue is never re-sorted after construction.
	MoveToBack(ctx context.Context, tx *gorm.DB, sessionID, cardID uuid.UUID) error
	RemoveCard(ctx context.Context, tx *gorm.DB, sessionID, cardID uuid.UUID) error
	CountRemaining(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (int64, error)
}

type studySessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStudySessionRepo(db *gorm.DB, baseLog *logger.Logger) StudySessionRepo {
	return &studySessionRepo{db: db, log: baseLog.With("repo", "StudySessionRepo")}
}

func (r *studySessionRepo) Create(ctx context.Context, tx *gorm.DB, session *types.StudySession) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if session == nil {
		return nil
	}

	return transaction.WithContext(ctx).Create(session).Error
}

func (r *studySessionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.StudySession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if id == uuid.Nil {
		return nil, nil
	}

	var row types.StudySession
	err := transaction.WithContext(ctx).
		Preload("Cards", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
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

func (r *studySessionRepo) GetBySourceAndDay(ctx context.Context, tx *gorm.DB, sourceID uuid.UUID, day time.Time) (*types.StudySession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if sourceID == uuid.Nil {
		return nil, nil
	}

	var row types.StudySession
	err := transaction.WithContext(ctx).
		Preload("Cards", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("source_id = ? AND day = ?", sourceID, day).
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

func (r *studySessionRepo) GetCard(ctx context.Context, tx *gorm.DB, sessionID, cardID uuid.UUID) (*types.StudySessionCard, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if sessionID == uuid.Nil || cardID == uuid.Nil {
		return nil, nil
	}

	var row types.StudySessionCard
	err := transaction.WithContext(ctx).
		Where("session_id = ? AND card_id = ?", sessionID, cardID).
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

func (r *studySessionRepo) Head(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (*types.StudySessionCard, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if sessionID == uuid.Nil {
		return nil, nil
	}

	var row types.StudySessionCard
	err := transaction.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("position ASC").
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

func (r *studySessionRepo) MoveToBack(ctx context.Context, tx *gorm.DB, sessionID, cardID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if sessionID == uuid.Nil || cardID == uuid.Nil {
		return nil
	}

	var maxPosition int64
	err := transaction.WithContext(ctx).
		Model(&types.StudySessionCard{}).
		Where("session_id = ?", sessionID).
		Select("COALESCE(MAX(position), -1)").
		Scan(&maxPosition).Error
	if err != nil {
		return err
	}

	return transaction.WithContext(ctx).
		Model(&types.StudySessionCard{}).
		Where("session_id = ? AND card_id = ?", sessionID, cardID).
		Update("position", maxPosition+1).Error
}

func (r *studySessionRepo) RemoveCard(ctx context.Context, tx *gorm.DB, sessionID, cardID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if sessionID == uuid.Nil || cardID == uuid.Nil {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("session_id = ? AND card_id = ?", sessionID, cardID).
		Delete(&types.StudySessionCard{}).Error
}

func (r *studySessionRepo) CountRemaining(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if sessionID == uuid.Nil {
		return 0, nil
	}

	var count int64
	err := transaction.WithContext(ctx).
		Model(&types.StudySessionCard{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
