package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/pathway-api/internal/models"
)

// LearningPathRepository handles persistence for learning path aggregates.
type LearningPathRepository interface {
	Create(ctx context.Context, path *models.LearningPath) error
	FindByID(ctx context.Context, id string) (models.LearningPath, error)
	ListByUser(ctx context.Context, userID string, includeArchived bool) ([]models.LearningPath, error)
	Update(ctx context.Context, path *models.LearningPath) error
	UpdateProgress(ctx context.Context, id string, percent int) error
	SetArchived(ctx context.Context, id string, archived bool) error
	SetFavourite(ctx context.Context, id string, favourite bool) error
	SoftDelete(ctx context.Context, ids []string) error
	Tags(ctx context.Context, id string) ([]models.Tag, error)
	ReplaceTags(ctx context.Context, id string, tags []models.Tag) error
}

type learningPathRepository struct {
	db *gorm.DB
}

// NewLearningPathRepository constructs a repository backed by GORM.
func NewLearningPathRepository(db *gorm.DB) LearningPathRepository {
	return &learningPathRepository{db: db}
}

func (r *learningPathRepository) Create(ctx context.Context, path *models.LearningPath) error {
	return r.db.WithContext(ctx).Create(path).Error
}

func (r *learningPathRepository) FindByID(ctx context.Context, id string) (models.LearningPath, error) {
	var path models.LearningPath
	if err := r.db.WithContext(ctx).
		Where("id = ? AND deleted = ?", id, false).
		First(&path).Error; err != nil {
		return models.LearningPath{}, err
	}
	return path, nil
}

func (r *learningPathRepository) ListByUser(ctx context.Context, userID string, includeArchived bool) ([]models.LearningPath, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ? AND deleted = ?", userID, false).
		Order("created_at DESC")
	if !includeArchived {
		query = query.Where("archived = ?", false)
	}

	var paths []models.LearningPath
	if err := query.Find(&paths).Error; err != nil {
		return nil, err
	}
	return paths, nil
}

func (r *learningPathRepository) Update(ctx context.Context, path *models.LearningPath) error {
	return r.db.WithContext(ctx).Save(path).Error
}

func (r *learningPathRepository) UpdateProgress(ctx context.Context, id string, percent int) error {
	return r.db.WithContext(ctx).
		Model(&models.LearningPath{}).
		Where("id = ?", id).
		Update("progress_percent", percent).Error
}

func (r *learningPathRepository) SetArchived(ctx context.Context, id string, archived bool) error {
	return r.db.WithContext(ctx).
		Model(&models.LearningPath{}).
		Where("id = ?", id).
		Update("archived", archived).Error
}

func (r *learningPathRepository) SetFavourite(ctx context.Context, id string, favourite bool) error {
	return r.db.WithContext(ctx).
		Model(&models.LearningPath{}).
		Where("id = ?", id).
		Update("favourite", favourite).Error
}

func (r *learningPathRepository) SoftDelete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.LearningPath{}).
		Where("id IN ?", ids).
		Update("deleted", true).Error
}

func (r *learningPathRepository) Tags(ctx context.Context, id string) ([]models.Tag, error) {
	var path models.LearningPath
	path.ID = id
	var tags []models.Tag
	if err := r.db.WithContext(ctx).Model(&path).Association("Tags").Find(&tags); err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *learningPathRepository) ReplaceTags(ctx context.Context, id string, tags []models.Tag) error {
	var path models.LearningPath
	path.ID = id
	return r.db.WithContext(ctx).Model(&path).Association("Tags").Replace(tags)
}
