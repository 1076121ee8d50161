package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Rating is the learner's assessment of recall quality.
type Rating int

const (
	RatingAgain Rating = iota + 1
	RatingHard
	RatingGood
	RatingEasy
)

func (r Rating) IsValid() bool {
	return r >= RatingAgain && r <= RatingEasy
}

// ReviewLog is the immutable record of one grading event. Rows are append-only:
// the audit trail and the complexity estimator both depend on them never changing.
type ReviewLog struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CardID uuid.UUID `gorm:"type:uuid;not null;index:idx_review_log_card" json:"card_id"`
	Card   *Card     `gorm:"constraint:OnDelete:CASCADE;foreignKey:CardID;references:ID" json:"card,omitempty"`

	// LearningPartnerID is nil when the primary learner graded the card.
	LearningPartnerID *uuid.UUID       `gorm:"type:uuid;column:learning_partner_id;index" json:"learning_partner_id,omitempty"`
	LearningPartner   *LearningPartner `gorm:"constraint:OnDelete:SET NULL;foreignKey:LearningPartnerID;references:ID" json:"learning_partner,omitempty"`

	Rating Rating    `gorm:"column:rating;not null" json:"rating"`
	Review time.Time `gorm:"column:review;not null;index:idx_review_log_card" json:"review"`

	// FSRS snapshot after the grade was applied.
	State      CardState `gorm:"column:state;not null" json:"state"`
	Stability  float64   `gorm:"column:stability;not null;default:0" json:"stability"`
	Difficulty float64   `gorm:"column:difficulty;not null;default:0" json:"difficulty"`

	CreatedAt time.Time `json:"created_at"`
}

func (ReviewLog) TableName() string { return "review_log" }

func (l *ReviewLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
