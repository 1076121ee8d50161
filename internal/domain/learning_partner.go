package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LearningPartner is the second participant cards can be routed to in shared
// study mode. Partners are deactivated, never deleted, so their review logs
// keep their meaning.
type LearningPartner struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string         `gorm:"column:name;not null" json:"name"`
	IsEnabled bool           `gorm:"column:is_enabled;not null;default:true" json:"is_enabled"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (LearningPartner) TableName() string { return "learning_partner" }

func (p *LearningPartner) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
