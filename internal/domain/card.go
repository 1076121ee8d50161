package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CardState is the FSRS learning stage of a card.
type CardState string

const (
	StateNew        CardState = "new"
	StateLearning   CardState = "learning"
	StateReview     CardState = "review"
	StateRelearning CardState = "relearning"
)

func (s CardState) IsValid() bool {
	switch s {
	case StateNew, StateLearning, StateReview, StateRelearning:
		return true
	}
	return false
}

// Readiness gates whether a card may enter a study session at all.
// Cards still being authored (in_review) never reach the queue.
type Readiness string

const (
	ReadinessInReview Readiness = "in_review"
	ReadinessReviewed Readiness = "reviewed"
	ReadinessReady    Readiness = "ready"
	ReadinessKnown    Readiness = "known"
)

type Card struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SourceID uuid.UUID `gorm:"type:uuid;not null;index:idx_card_source_due,priority:1" json:"source_id"`
	Source   *Source   `gorm:"constraint:OnDelete:CASCADE;foreignKey:SourceID;references:ID" json:"source,omitempty"`

	// Content is an opaque payload owned by the card editor.
	Content datatypes.JSON `gorm:"column:content" json:"content,omitempty"`

	State         CardState  `gorm:"column:state;not null;default:'new'" json:"state"`
	Stability     float64    `gorm:"column:stability;not null;default:0" json:"stability"`
	Difficulty    float64    `gorm:"column:difficulty;not null;default:0" json:"difficulty"`
	LearningSteps int        `gorm:"column:learning_steps;not null;default:0" json:"learning_steps"`
	Due           time.Time  `gorm:"column:due;not null;index:idx_card_source_due,priority:2" json:"due"`
	LastReview    *time.Time `gorm:"column:last_review" json:"last_review,omitempty"`
	ElapsedDays   float64    `gorm:"column:elapsed_days;not null;default:0" json:"elapsed_days"`
	ScheduledDays float64    `gorm:"column:scheduled_days;not null;default:0" json:"scheduled_days"`
	Reps          int        `gorm:"column:reps;not null;default:0" json:"reps"`
	Lapses        int        `gorm:"column:lapses;not null;default:0" json:"lapses"`

	Readiness Readiness `gorm:"column:readiness;not null;default:'ready'" json:"readiness"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Card) TableName() string { return "card" }

// BeforeCreate assigns the ID and guarantees the due invariant: a freshly
// created card is immediately reviewable.
func (c *Card) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Due.IsZero() {
		c.Due = time.Now().UTC()
	}
	return nil
}
