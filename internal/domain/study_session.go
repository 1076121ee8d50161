package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StudySession is the day-scoped ordered queue of cards for one source.
// The (source_id, day) uniqueness is what makes concurrent session starts
// collapse into one row; see the session service's get-or-create.
type StudySession struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SourceID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_study_session_source_day,priority:1" json:"source_id"`
	Source   *Source   `gorm:"constraint:OnDelete:CASCADE;foreignKey:SourceID;references:ID" json:"source,omitempty"`

	// Day is the UTC calendar date the session belongs to, stored at midnight.
	Day time.Time `gorm:"column:day;not null;uniqueIndex:idx_study_session_source_day,priority:2" json:"day"`

	Cards []StudySessionCard `gorm:"foreignKey:SessionID;references:ID" json:"cards,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (StudySession) TableName() string { return "study_session" }

func (s *StudySession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// SessionDay truncates t to the UTC calendar date used as the session key.
func SessionDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// StudySessionCard is one queue row. Position defines serving order and only
// ever grows: requeues append at max position + 1, removals leave gaps.
type StudySessionCard struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_session_card,priority:1;index:idx_session_position,priority:1" json:"session_id"`
	Session   *StudySession `gorm:"constraint:OnDelete:CASCADE;foreignKey:SessionID;references:ID" json:"-"`

	CardID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_session_card,priority:2" json:"card_id"`
	Card   *Card     `gorm:"constraint:OnDelete:CASCADE;foreignKey:CardID;references:ID" json:"card,omitempty"`

	Position int `gorm:"column:position;not null;index:idx_session_position,priority:2" json:"position"`

	// LearningPartnerID is nil when the card is assigned to the primary learner.
	LearningPartnerID *uuid.UUID       `gorm:"type:uuid;column:learning_partner_id" json:"learning_partner_id,omitempty"`
	LearningPartner   *LearningPartner `gorm:"constraint:OnDelete:SET NULL;foreignKey:LearningPartnerID;references:ID" json:"learning_partner,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (StudySessionCard) TableName() string { return "study_session_card" }

func (c *StudySessionCard) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
