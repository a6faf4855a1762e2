package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/pathway-api/internal/models"
)

// LessonRepository handles persistence for lesson entities.
type LessonRepository interface {
	Create(ctx context.Context, lesson *models.Lesson) error
	FindByID(ctx context.Context, id string) (models.Lesson, error)
	ListByTopic(ctx context.Context, topicID string) ([]models.Lesson, error)
	Update(ctx context.Context, lesson *models.Lesson) error
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
	NextDisplayIndex(ctx context.Context, topicID string) (int, error)
	CountByPath(ctx context.Context, pathID string) (total, completed int64, err error)
}

type lessonRepository struct {
	db *gorm.DB
}

// NewLessonRepository constructs a repository backed by GORM.
func NewLessonRepository(db *gorm.DB) LessonRepository {
	return &lessonRepository{db: db}
}

func (r *lessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	return r.db.WithContext(ctx).Create(lesson).Error
}

func (r *lessonRepository) FindByID(ctx context.Context, id string) (models.Lesson, error) {
	var lesson models.Lesson
	if err := r.db.WithContext(ctx).First(&lesson, "id = ?", id).Error; err != nil {
		return models.Lesson{}, err
	}
	return lesson, nil
}

func (r *lessonRepository) ListByTopic(ctx context.Context, topicID string) ([]models.Lesson, error) {
	var lessons []models.Lesson
	if err := r.db.WithContext(ctx).
		Where("topic_id = ?", topicID).
		Order("display_index ASC").
		Find(&lessons).Error; err != nil {
		return nil, err
	}
	return lessons, nil
}

func (r *lessonRepository) Update(ctx context.Context, lesson *models.Lesson) error {
	return r.db.WithContext(ctx).Save(lesson).Error
}

func (r *lessonRepository) UpdateStatus(ctx context.Context, id, status string) error {
	return r.db.WithContext(ctx).
		Model(&models.Lesson{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// Delete removes the lesson together with its resources and notes.
func (r *lessonRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lesson_id = ?", id).Delete(&models.Resource{}).Error; err != nil {
			return err
		}
		if err := tx.Where("lesson_id = ?", id).Delete(&models.LessonProgress{}).Error; err != nil {
			return err
		}
		if err := tx.Where("target_type = ? AND target_id = ?", "LESSON", id).Delete(&models.Note{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Lesson{}, "id = ?", id).Error
	})
}

func (r *lessonRepository) NextDisplayIndex(ctx context.Context, topicID string) (int, error) {
	var max int
	if err := r.db.WithContext(ctx).
		Model(&models.Lesson{}).
		Where("topic_id = ?", topicID).
		Select("COALESCE(MAX(display_index), 0)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	return max + 1, nil
}

func (r *lessonRepository) CountByPath(ctx context.Context, pathID string) (int64, int64, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).
			Model(&models.Lesson{}).
			Joins("JOIN topics ON topics.id = lessons.topic_id").
			Where("topics.path_id = ?", pathID)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return 0, 0, err
	}

	var completed int64
	if err := base().Where("lessons.status = ?", "COMPLETED").Count(&completed).Error; err != nil {
		return 0, 0, err
	}

	return total, completed, nil
}
