package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StudyMode selects whether the assignment engine splits work with a partner.
type StudyMode string

const (
	StudyModeSolo        StudyMode = "solo"
	StudyModeWithPartner StudyMode = "with_partner"
)

func (m StudyMode) IsValid() bool {
	return m == StudyModeSolo || m == StudyModeWithPartner
}

// StudySettings holds per-source study configuration. One row per source.
type StudySettings struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SourceID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_study_settings_source" json:"source_id"`
	Source    *Source   `gorm:"constraint:OnDelete:CASCADE;foreignKey:SourceID;references:ID" json:"source,omitempty"`
	StudyMode StudyMode `gorm:"column:study_mode;not null;default:'solo'" json:"study_mode"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (StudySettings) TableName() string { return "study_settings" }

func (s *StudySettings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
