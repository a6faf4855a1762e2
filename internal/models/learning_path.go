package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LearningPath is the root aggregate owning topics, notes and tag links.
type LearningPath struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	UserID          string    `gorm:"size:36;index;not null" json:"user_id"`
	Title           string    `gorm:"size:255;not null" json:"title"`
	Description     string    `gorm:"type:text" json:"description"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	Status          string    `gorm:"size:32;default:NOT_STARTED" json:"status"`
	ProgressPercent int       `gorm:"default:0" json:"progress_percent"`
	Deleted         bool      `gorm:"not null;default:false" json:"deleted"`
	Archived        bool      `gorm:"not null;default:false" json:"archived"`
	Favourite       bool      `gorm:"not null;default:false" json:"favourite"`
	OriginUserID    string    `gorm:"size:36" json:"origin_user_id"`
	OriginFullName  string    `gorm:"size:255" json:"origin_full_name"`
	OriginAvatarURL string    `gorm:"size:512" json:"origin_avatar_url"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Topics          []Topic   `gorm:"foreignKey:PathID;constraint:OnDelete:CASCADE" json:"topics,omitempty"`
	Tags            []Tag     `gorm:"many2many:learning_path_tags" json:"tags,omitempty"`
}

// BeforeCreate assigns a server identifier when none is provided.
func (p *LearningPath) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Tag is a shared lookup with many-to-many membership in learning paths.
type Tag struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;index" json:"user_id"`
	Name      string    `gorm:"size:120;not null" json:"name"`
	Color     string    `gorm:"size:16;default:#000000" json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a server identifier when none is provided.
func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
