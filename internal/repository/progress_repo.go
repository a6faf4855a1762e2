package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/pathway-api/internal/models"
)

// ProgressRepository records per-lesson progress entries.
type ProgressRepository interface {
	Upsert(ctx context.Context, lessonID, status string) (models.LessonProgress, error)
	FindByLesson(ctx context.Context, lessonID string) (models.LessonProgress, error)
}

type progressRepository struct {
	db *gorm.DB
}

// NewProgressRepository constructs a repository backed by GORM.
func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) Upsert(ctx context.Context, lessonID, status string) (models.LessonProgress, error) {
	var progress models.LessonProgress
	err := r.db.WithContext(ctx).First(&progress, "lesson_id = ?", lessonID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		progress = models.LessonProgress{LessonID: lessonID, Status: status}
		if err := r.db.WithContext(ctx).Create(&progress).Error; err != nil {
			return models.LessonProgress{}, err
		}
		return progress, nil
	case err != nil:
		return models.LessonProgress{}, err
	}

	progress.Status = status
	if err := r.db.WithContext(ctx).Save(&progress).Error; err != nil {
		return models.LessonProgress{}, err
	}
	return progress, nil
}

func (r *progressRepository) FindByLesson(ctx context.Context, lessonID string) (models.LessonProgress, error) {
	var progress models.LessonProgress
	if err := r.db.WithContext(ctx).First(&progress, "lesson_id = ?", lessonID).Error; err != nil {
		return models.LessonProgress{}, err
	}
	return progress, nil
}
