package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Source owns a deck of cards. Source management screens live elsewhere;
// the scheduler only needs the row for foreign-key integrity.
type Source struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string         `gorm:"column:name;not null" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Source) TableName() string { return "source" }

func (s *Source) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
