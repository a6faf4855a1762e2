package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/pathway-api/internal/models"
)

// ResourceRepository handles persistence for lesson resources.
type ResourceRepository interface {
	Create(ctx context.Context, resource *models.Resource) error
	FindByID(ctx context.Context, id string) (models.Resource, error)
	ListByLesson(ctx context.Context, lessonID string) ([]models.Resource, error)
	Delete(ctx context.Context, id string) error
}

type resourceRepository struct {
	db *gorm.DB
}

// NewResourceRepository constructs a repository backed by GORM.
func NewResourceRepository(db *gorm.DB) ResourceRepository {
	return &resourceRepository{db: db}
}

func (r *resourceRepository) Create(ctx context.Context, resource *models.Resource) error {
	return r.db.WithContext(ctx).Create(resource).Error
}

func (r *resourceRepository) FindByID(ctx context.Context, id string) (models.Resource, error) {
	var resource models.Resource
	if err := r.db.WithContext(ctx).First(&resource, "id = ?", id).Error; err != nil {
		return models.Resource{}, err
	}
	return resource, nil
}

func (r *resourceRepository) ListByLesson(ctx context.Context, lessonID string) ([]models.Resource, error) {
	var resources []models.Resource
	if err := r.db.WithContext(ctx).
		Where("lesson_id = ?", lessonID).
		Order("created_at ASC").
		Find(&resources).Error; err != nil {
		return nil, err
	}
	return resources, nil
}

func (r *resourceRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.Resource{}, "id = ?", id).Error
}
