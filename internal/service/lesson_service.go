package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/pathway-api/internal/dto"
	"github.com/noah-isme/pathway-api/internal/models"
	"github.com/noah-isme/pathway-api/internal/repository"
)

// LessonService persists lessons beneath their owning topics.
type LessonService interface {
	Create(ctx context.Context, req dto.LessonCreateRequest) (dto.LessonResponse, error)
	Update(ctx context.Context, lessonID string, req dto.LessonUpdateRequest) (dto.LessonResponse, error)
	Delete(ctx context.Context, lessonID string) error
}

type lessonService struct {
	lessons   repository.LessonRepository
	topics    repository.TopicRepository
	cache     *redis.Client
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewLessonService constructs the lesson service.
func NewLessonService(
	lessons repository.LessonRepository,
	topics repository.TopicRepository,
	cache *redis.Client,
	validate *validator.Validate,
	logger zerolog.Logger,
) LessonService {
	return &lessonService{
		lessons:   lessons,
		topics:    topics,
		cache:     cache,
		validator: validate,
		logger:    logger.With().Str("component", "lesson_service").Logger(),
	}
}

func (s *lessonService) Create(ctx context.Context, req dto.LessonCreateRequest) (dto.LessonResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.LessonResponse{}, err
	}

	topic, err := s.topics.FindByID(ctx, req.TopicID)
	if err != nil {
		return dto.LessonResponse{}, err
	}

	displayIndex, err := s.lessons.NextDisplayIndex(ctx, req.TopicID)
	if err != nil {
		return dto.LessonResponse{}, err
	}

	lesson := models.Lesson{
		TopicID:      req.TopicID,
		Title:        strings.TrimSpace(req.Title),
		DisplayIndex: displayIndex,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Status:       "NOT_STARTED",
	}
	if err := s.lessons.Create(ctx, &lesson); err != nil {
		return dto.LessonResponse{}, err
	}

	invalidateStatistic(ctx, s.cache, topic.PathID, s.logger)
	return dto.NewLessonResponse(lesson), nil
}

func (s *lessonService) Update(ctx context.Context, lessonID string, req dto.LessonUpdateRequest) (dto.LessonResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.LessonResponse{}, err
	}

	lesson, err := s.lessons.FindByID(ctx, lessonID)
	if err != nil {
		return dto.LessonResponse{}, err
	}

	lesson.Title = strings.TrimSpace(req.Title)
	lesson.StartTime = req.StartTime
	lesson.EndTime = req.EndTime
	if err := s.lessons.Update(ctx, &lesson); err != nil {
		return dto.LessonResponse{}, err
	}
	return dto.NewLessonResponse(lesson), nil
}

// Delete removes the lesson with its resources, notes and progress row.
func (s *lessonService) Delete(ctx context.Context, lessonID string) error {
	lesson, err := s.lessons.FindByID(ctx, lessonID)
	if err != nil {
		return err
	}

	if err := s.lessons.Delete(ctx, lessonID); err != nil {
		return err
	}

	if topic, err := s.topics.FindByID(ctx, lesson.TopicID); err == nil {
		invalidateStatistic(ctx, s.cache, topic.PathID, s.logger)
	}
	return nil
}
