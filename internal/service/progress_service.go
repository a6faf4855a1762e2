package service

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/pathway-api/internal/repository"
	"github.com/noah-isme/pathway-api/internal/tree"
)

// ProgressService persists lesson status changes and the derived overall
// progress of a path.
type ProgressService interface {
	UpdateLessonStatus(ctx context.Context, lessonID string, status tree.Status) error
	SavePathProgress(ctx context.Context, pathID string, percent int) error
}

type progressService struct {
	lessons  repository.LessonRepository
	topics   repository.TopicRepository
	paths    repository.LearningPathRepository
	progress repository.ProgressRepository
	cache    *redis.Client
	logger   zerolog.Logger
}

// NewProgressService constructs the progress service.
func NewProgressService(
	lessons repository.LessonRepository,
	topics repository.TopicRepository,
	paths repository.LearningPathRepository,
	progress repository.ProgressRepository,
	cache *redis.Client,
	logger zerolog.Logger,
) ProgressService {
	return &progressService{
		lessons:  lessons,
		topics:   topics,
		paths:    paths,
		progress: progress,
		cache:    cache,
		logger:   logger.With().Str("component", "progress_service").Logger(),
	}
}

// UpdateLessonStatus writes the status both on the lesson row and in the
// per-lesson progress log, then drops the cached statistic for the owning
// path.
func (s *progressService) UpdateLessonStatus(ctx context.Context, lessonID string, status tree.Status) error {
	if !status.Valid() {
		return fmt.Errorf("unknown lesson status %q", status)
	}

	lesson, err := s.lessons.FindByID(ctx, lessonID)
	if err != nil {
		return err
	}

	if err := s.lessons.UpdateStatus(ctx, lessonID, string(status)); err != nil {
		return err
	}
	if _, err := s.progress.Upsert(ctx, lessonID, string(status)); err != nil {
		return err
	}

	if topic, err := s.topics.FindByID(ctx, lesson.TopicID); err == nil {
		invalidateStatistic(ctx, s.cache, topic.PathID, s.logger)
	}

	s.logger.Debug().
		Str("lesson_id", lessonID).
		Str("status", string(status)).
		Msg("lesson status persisted")
	return nil
}

func (s *progressService) SavePathProgress(ctx context.Context, pathID string, percent int) error {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	if err := s.paths.UpdateProgress(ctx, pathID, percent); err != nil {
		return err
	}
	invalidateStatistic(ctx, s.cache, pathID, s.logger)
	return nil
}
