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

// TopicService persists topics and loads the lazy child collections the
// editor session requests per topic.
type TopicService interface {
	Create(ctx context.Context, req dto.TopicCreateRequest) (dto.TopicResponse, error)
	Update(ctx context.Context, topicID string, req dto.TopicUpdateRequest) (dto.TopicResponse, error)
	Delete(ctx context.Context, topicID string) error
	ListLessons(ctx context.Context, topicID string) ([]dto.LessonResponse, error)
	ListNotes(ctx context.Context, topicID string) ([]dto.NoteResponse, error)
}

type topicService struct {
	topics    repository.TopicRepository
	lessons   repository.LessonRepository
	notes     repository.NoteRepository
	cache     *redis.Client
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewTopicService constructs the topic service.
func NewTopicService(
	topics repository.TopicRepository,
	lessons repository.LessonRepository,
	notes repository.NoteRepository,
	cache *redis.Client,
	validate *validator.Validate,
	logger zerolog.Logger,
) TopicService {
	return &topicService{
		topics:    topics,
		lessons:   lessons,
		notes:     notes,
		cache:     cache,
		validator: validate,
		logger:    logger.With().Str("component", "topic_service").Logger(),
	}
}

func (s *topicService) Create(ctx context.Context, req dto.TopicCreateRequest) (dto.TopicResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.TopicResponse{}, err
	}

	displayIndex, err := s.topics.NextDisplayIndex(ctx, req.PathID)
	if err != nil {
		return dto.TopicResponse{}, err
	}

	topic := models.Topic{
		PathID:       req.PathID,
		Title:        strings.TrimSpace(req.Title),
		DisplayIndex: displayIndex,
		Status:       "NOT_STARTED",
	}
	if err := s.topics.Create(ctx, &topic); err != nil {
		return dto.TopicResponse{}, err
	}

	invalidateStatistic(ctx, s.cache, topic.PathID, s.logger)
	return dto.NewTopicResponse(topic), nil
}

func (s *topicService) Update(ctx context.Context, topicID string, req dto.TopicUpdateRequest) (dto.TopicResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.TopicResponse{}, err
	}

	topic, err := s.topics.FindByID(ctx, topicID)
	if err != nil {
		return dto.TopicResponse{}, err
	}

	topic.Title = strings.TrimSpace(req.Title)
	if err := s.topics.Update(ctx, &topic); err != nil {
		return dto.TopicResponse{}, err
	}
	return dto.NewTopicResponse(topic), nil
}

// Delete removes the topic and everything beneath it: lessons, their
// resources and progress rows, and notes attached at either level.
func (s *topicService) Delete(ctx context.Context, topicID string) error {
	topic, err := s.topics.FindByID(ctx, topicID)
	if err != nil {
		return err
	}

	if err := s.topics.Delete(ctx, topicID); err != nil {
		return err
	}

	invalidateStatistic(ctx, s.cache, topic.PathID, s.logger)
	s.logger.Info().Str("topic_id", topicID).Str("path_id", topic.PathID).Msg("topic deleted with descendants")
	return nil
}

func (s *topicService) ListLessons(ctx context.Context, topicID string) ([]dto.LessonResponse, error) {
	lessons, err := s.lessons.ListByTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}
	return dto.NewLessonResponseSlice(lessons), nil
}

func (s *topicService) ListNotes(ctx context.Context, topicID string) ([]dto.NoteResponse, error) {
	notes, err := s.notes.ListByTarget(ctx, "TOPIC", topicID)
	if err != nil {
		return nil, err
	}
	return dto.NewNoteResponseSlice(notes), nil
}
