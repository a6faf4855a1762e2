package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Topic is a child of exactly one learning path.
type Topic struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	PathID       string    `gorm:"size:36;index;not null" json:"path_id"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	DisplayIndex int       `gorm:"index" json:"display_index"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Status       string    `gorm:"size:32;default:NOT_STARTED" json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Lessons      []Lesson  `gorm:"constraint:OnDelete:CASCADE" json:"lessons,omitempty"`
}

// BeforeCreate assigns a server identifier when none is provided.
func (t *Topic) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// Lesson is a leaf child of exactly one topic.
type Lesson struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	TopicID      string     `gorm:"size:36;index;not null" json:"topic_id"`
	Title        string     `gorm:"size:255;not null" json:"title"`
	DisplayIndex int        `gorm:"index" json:"display_index"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      time.Time  `json:"end_time"`
	Status       string     `gorm:"size:32;default:NOT_STARTED" json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Resources    []Resource `gorm:"constraint:OnDelete:CASCADE" json:"resources,omitempty"`
}

// BeforeCreate assigns a server identifier when none is provided.
func (l *Lesson) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// Note attaches free text to a path, topic or lesson via (target_type, target_id).
type Note struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	TargetType   string    `gorm:"size:16;index:idx_note_target" json:"target_type"`
	TargetID     string    `gorm:"size:36;index:idx_note_target" json:"target_id"`
	Title        string    `gorm:"size:255" json:"title"`
	Content      string    `gorm:"type:text" json:"content"`
	DisplayIndex int       `gorm:"index" json:"display_index"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BeforeCreate assigns a server identifier when none is provided.
func (n *Note) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

// Resource is a link or uploaded file attached to one lesson. Type-specific
// extras beyond the dedicated columns live in the JSON metadata blob.
type Resource struct {
	ID           string            `gorm:"primaryKey;size:36" json:"id"`
	LessonID     string            `gorm:"size:36;index;not null" json:"lesson_id"`
	Name         string            `gorm:"size:255;not null" json:"name"`
	Type         string            `gorm:"size:16;not null" json:"type"`
	ExternalLink string            `gorm:"size:1024" json:"external_link"`
	SizeBytes    int64             `json:"size_bytes"`
	MimeType     string            `gorm:"size:128" json:"mime_type"`
	ResourceURL  string            `gorm:"size:1024" json:"resource_url"`
	Metadata     datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// BeforeCreate assigns a server identifier when none is provided.
func (r *Resource) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// LessonProgress records the latest status reported for a lesson.
type LessonProgress struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	LessonID  string    `gorm:"size:36;uniqueIndex;not null" json:"lesson_id"`
	Status    string    `gorm:"size:32;not null" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a server identifier when none is provided.
func (p *LessonProgress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
