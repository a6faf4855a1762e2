package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notification is a push message targeted at one user. SourceType and
// SourceID point back at the entity the event originated from.
type Notification struct {
	ID         string            `gorm:"primaryKey;size:36" json:"id"`
	UserID     string            `gorm:"size:36;index;not null" json:"user_id"`
	SourceType string            `gorm:"size:32" json:"source_type"`
	SourceID   string            `gorm:"size:36" json:"source_id"`
	Type       string            `gorm:"size:32;default:generic" json:"type"`
	Message    string            `gorm:"type:text;not null" json:"message"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	Read       bool              `gorm:"not null;default:false" json:"read"`
	SentAt     time.Time         `gorm:"index" json:"sent_at"`
	ReadAt     *time.Time        `json:"read_at"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// BeforeCreate assigns a server identifier and send timestamp when missing.
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.SentAt.IsZero() {
		n.SentAt = time.Now().UTC()
	}
	return nil
}
