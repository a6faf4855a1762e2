package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/pathway-api/internal/models"
)

// TopicRepository handles persistence for topic entities.
type TopicRepository interface {
	Create(ctx context.Context, topic *models.Topic) error
	FindByID(ctx context.Context, id string) (models.Topic, error)
	ListByPath(ctx context.Context, pathID string) ([]models.Topic, error)
	Update(ctx context.Context, topic *models.Topic) error
	Delete(ctx context.Context, id string) error
	NextDisplayIndex(ctx context.Context, pathID string) (int, error)
}

type topicRepository struct {
	db *gorm.DB
}

// NewTopicRepository constructs a repository backed by GORM.
func NewTopicRepository(db *gorm.DB) TopicRepository {
	return &topicRepository{db: db}
}

func (r *topicRepository) Create(ctx context.Context, topic *models.Topic) error {
	return r.db.WithContext(ctx).Create(topic).Error
}

func (r *topicRepository) FindByID(ctx context.Context, id string) (models.Topic, error) {
	var topic models.Topic
	if err := r.db.WithContext(ctx).First(&topic, "id = ?", id).Error; err != nil {
		return models.Topic{}, err
	}
	return topic, nil
}

func (r *topicRepository) ListByPath(ctx context.Context, pathID string) ([]models.Topic, error) {
	var topics []models.Topic
	if err := r.db.WithContext(ctx).
		Where("path_id = ?", pathID).
		Order("display_index ASC").
		Find(&topics).Error; err != nil {
		return nil, err
	}
	return topics, nil
}

func (r *topicRepository) Update(ctx context.Context, topic *models.Topic) error {
	return r.db.WithContext(ctx).Save(topic).Error
}

// Delete removes the topic and cascades to its lessons, their resources, and
// the notes attached anywhere beneath it, in one transaction.
func (r *topicRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lessonIDs []string
		if err := tx.Model(&models.Lesson{}).
			Where("topic_id = ?", id).
			Pluck("id", &lessonIDs).Error; err != nil {
			return err
		}

		if len(lessonIDs) > 0 {
			if err := tx.Where("lesson_id IN ?", lessonIDs).Delete(&models.Resource{}).Error; err != nil {
				return err
			}
			if err := tx.Where("lesson_id IN ?", lessonIDs).Delete(&models.LessonProgress{}).Error; err != nil {
				return err
			}
			if err := tx.Where("target_type = ? AND target_id IN ?", "LESSON", lessonIDs).Delete(&models.Note{}).Error; err != nil {
				return err
			}
			if err := tx.Where("topic_id = ?", id).Delete(&models.Lesson{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("target_type = ? AND target_id = ?", "TOPIC", id).Delete(&models.Note{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Topic{}, "id = ?", id).Error
	})
}

func (r *topicRepository) NextDisplayIndex(ctx context.Context, pathID string) (int, error) {
	var max int
	if err := r.db.WithContext(ctx).
		Model(&models.Topic{}).
		Where("path_id = ?", pathID).
		Select("COALESCE(MAX(display_index), 0)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	return max + 1, nil
}
