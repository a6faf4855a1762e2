package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/pathway-api/internal/models"
)

// NoteRepository handles persistence for notes attached to paths, topics and
// lessons.
type NoteRepository interface {
	Create(ctx context.Context, note *models.Note) error
	FindByID(ctx context.Context, id string) (models.Note, error)
	ListByTarget(ctx context.Context, targetType, targetID string) ([]models.Note, error)
	Update(ctx context.Context, note *models.Note) error
	Delete(ctx context.Context, id string) error
	NextDisplayIndex(ctx context.Context, targetType, targetID string) (int, error)
}

type noteRepository struct {
	db *gorm.DB
}

// NewNoteRepository constructs a repository backed by GORM.
func NewNoteRepository(db *gorm.DB) NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) Create(ctx context.Context, note *models.Note) error {
	return r.db.WithContext(ctx).Create(note).Error
}

func (r *noteRepository) FindByID(ctx context.Context, id string) (models.Note, error) {
	var note models.Note
	if err := r.db.WithContext(ctx).First(&note, "id = ?", id).Error; err != nil {
		return models.Note{}, err
	}
	return note, nil
}

func (r *noteRepository) ListByTarget(ctx context.Context, targetType, targetID string) ([]models.Note, error) {
	var notes []models.Note
	if err := r.db.WithContext(ctx).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Order("display_index ASC").
		Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *noteRepository) Update(ctx context.Context, note *models.Note) error {
	return r.db.WithContext(ctx).Save(note).Error
}

func (r *noteRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.Note{}, "id = ?", id).Error
}

func (r *noteRepository) NextDisplayIndex(ctx context.Context, targetType, targetID string) (int, error) {
	var max int
	if err := r.db.WithContext(ctx).
		Model(&models.Note{}).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Select("COALESCE(MAX(display_index), 0)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	return max + 1, nil
}
