package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/pathway-api/internal/dto"
	"github.com/noah-isme/pathway-api/internal/models"
	"github.com/noah-isme/pathway-api/internal/observability"
	"github.com/noah-isme/pathway-api/internal/repository"
)

// ErrNotOwner rejects writes against a path the caller does not own.
var ErrNotOwner = errors.New("learning path does not belong to this user")

// PathService exposes the learning path aggregate: CRUD, lifecycle flags,
// the derived progress statistic, and the child collections the editor
// session loads.
type PathService interface {
	Create(ctx context.Context, userID string, req dto.LearningPathCreateRequest) (dto.LearningPathResponse, error)
	List(ctx context.Context, userID string, includeArchived bool) ([]dto.LearningPathResponse, error)
	Get(ctx context.Context, pathID string) (dto.LearningPathResponse, error)
	Update(ctx context.Context, userID, pathID string, req dto.LearningPathUpdateRequest) (dto.LearningPathResponse, error)
	SetArchived(ctx context.Context, userID, pathID string, archived bool) error
	SetFavourite(ctx context.Context, userID, pathID string, favourite bool) error
	Delete(ctx context.Context, userID string, pathIDs []string) error
	AssignTags(ctx context.Context, userID, pathID string, tagIDs []string) ([]dto.TagResponse, error)

	Topics(ctx context.Context, pathID string) ([]dto.TopicResponse, error)
	Notes(ctx context.Context, pathID string) ([]dto.NoteResponse, error)
	Tags(ctx context.Context, pathID string) ([]dto.TagResponse, error)
	Statistic(ctx context.Context, pathID string) (dto.LearningPathStatisticResponse, error)

	Clone(ctx context.Context, userID, sourcePathID string, origin dto.OriginAuthorResponse) (dto.LearningPathResponse, error)
	Export(ctx context.Context, userID, pathID string) (dto.LearningPathExport, error)
	Import(ctx context.Context, userID string, payload []byte) (dto.LearningPathResponse, error)
}

type pathService struct {
	paths     repository.LearningPathRepository
	topics    repository.TopicRepository
	lessons   repository.LessonRepository
	notes     repository.NoteRepository
	resources repository.ResourceRepository
	tags      repository.TagRepository
	cache     *redis.Client
	ttl       time.Duration
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewPathService constructs the learning path service.
func NewPathService(
	paths repository.LearningPathRepository,
	topics repository.TopicRepository,
	lessons repository.LessonRepository,
	notes repository.NoteRepository,
	resources repository.ResourceRepository,
	tags repository.TagRepository,
	cache *redis.Client,
	ttl time.Duration,
	validate *validator.Validate,
	logger zerolog.Logger,
) PathService {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &pathService{
		paths:     paths,
		topics:    topics,
		lessons:   lessons,
		notes:     notes,
		resources: resources,
		tags:      tags,
		cache:     cache,
		ttl:       ttl,
		validator: validate,
		logger:    logger.With().Str("component", "path_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/pathway-api/internal/service/path"),
	}
}

func (s *pathService) Create(ctx context.Context, userID string, req dto.LearningPathCreateRequest) (dto.LearningPathResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.LearningPathResponse{}, err
	}

	path := models.LearningPath{
		UserID:      userID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Status:      "NOT_STARTED",
	}
	if err := s.paths.Create(ctx, &path); err != nil {
		return dto.LearningPathResponse{}, err
	}
	return dto.NewLearningPathResponse(path), nil
}

func (s *pathService) List(ctx context.Context, userID string, includeArchived bool) ([]dto.LearningPathResponse, error) {
	paths, err := s.paths.ListByUser(ctx, userID, includeArchived)
	if err != nil {
		return nil, err
	}
	return dto.NewLearningPathResponseSlice(paths), nil
}

func (s *pathService) Get(ctx context.Context, pathID string) (dto.LearningPathResponse, error) {
	path, err := s.paths.FindByID(ctx, pathID)
	if err != nil {
		return dto.LearningPathResponse{}, err
	}
	return dto.NewLearningPathResponse(path), nil
}

func (s *pathService) Update(ctx context.Context, userID, pathID string, req dto.LearningPathUpdateRequest) (dto.LearningPathResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.LearningPathResponse{}, err
	}

	path, err := s.ownedPath(ctx, userID, pathID)
	if err != nil {
		return dto.LearningPathResponse{}, err
	}

	path.Title = strings.TrimSpace(req.Title)
	path.Description = req.Description
	if err := s.paths.Update(ctx, &path); err != nil {
		return dto.LearningPathResponse{}, err
	}
	return dto.NewLearningPathResponse(path), nil
}

func (s *pathService) SetArchived(ctx context.Context, userID, pathID string, archived bool) error {
	if _, err := s.ownedPath(ctx, userID, pathID); err != nil {
		return err
	}
	return s.paths.SetArchived(ctx, pathID, archived)
}

func (s *pathService) SetFavourite(ctx context.Context, userID, pathID string, favourite bool) error {
	if _, err := s.ownedPath(ctx, userID, pathID); err != nil {
		return err
	}
	return s.paths.SetFavourite(ctx, pathID, favourite)
}

func (s *pathService) Delete(ctx context.Context, userID string, pathIDs []string) error {
	owned := make([]string, 0, len(pathIDs))
	for _, id := range pathIDs {
		if _, err := s.ownedPath(ctx, userID, id); err != nil {
			return err
		}
		owned = append(owned, id)
	}
	if err := s.paths.SoftDelete(ctx, owned); err != nil {
		return err
	}
	for _, id := range owned {
		invalidateStatistic(ctx, s.cache, id, s.logger)
	}
	return nil
}

func (s *pathService) AssignTags(ctx context.Context, userID, pathID string, tagIDs []string) ([]dto.TagResponse, error) {
	if _, err := s.ownedPath(ctx, userID, pathID); err != nil {
		return nil, err
	}

	selected := make([]models.Tag, 0, len(tagIDs))
	for _, id := range tagIDs {
		tag, err := s.tags.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		selected = append(selected, tag)
	}

	if err := s.paths.ReplaceTags(ctx, pathID, selected); err != nil {
		return nil, err
	}
	return dto.NewTagResponseSlice(selected), nil
}

func (s *pathService) Topics(ctx context.Context, pathID string) ([]dto.TopicResponse, error) {
	topics, err := s.topics.ListByPath(ctx, pathID)
	if err != nil {
		return nil, err
	}
	return dto.NewTopicResponseSlice(topics), nil
}

func (s *pathService) Notes(ctx context.Context, pathID string) ([]dto.NoteResponse, error) {
	notes, err := s.notes.ListByTarget(ctx, "PATH", pathID)
	if err != nil {
		return nil, err
	}
	return dto.NewNoteResponseSlice(notes), nil
}

func (s *pathService) Tags(ctx context.Context, pathID string) ([]dto.TagResponse, error) {
	tags, err := s.paths.Tags(ctx, pathID)
	if err != nil {
		return nil, err
	}
	return dto.NewTagResponseSlice(tags), nil
}

// Statistic derives lesson totals for one path. Results are cached briefly;
// mutating services drop the cache entry so readers never see counts older
// than the TTL after a write.
func (s *pathService) Statistic(ctx context.Context, pathID string) (dto.LearningPathStatisticResponse, error) {
	spanCtx, span := s.tracer.Start(ctx, "paths.statistic", trace.WithAttributes(
		attribute.String("path.id", pathID),
	))
	defer span.End()

	if cached, ok := s.fetchStatisticCache(spanCtx, pathID); ok {
		observability.StatisticRequests().WithLabelValues("hit").Inc()
		return cached, nil
	}

	path, err := s.paths.FindByID(spanCtx, pathID)
	if err != nil {
		observability.StatisticRequests().WithLabelValues("error").Inc()
		span.RecordError(err)
		return dto.LearningPathStatisticResponse{}, err
	}

	topics, err := s.topics.ListByPath(spanCtx, pathID)
	if err != nil {
		observability.StatisticRequests().WithLabelValues("error").Inc()
		return dto.LearningPathStatisticResponse{}, err
	}

	total, completed, err := s.lessons.CountByPath(spanCtx, pathID)
	if err != nil {
		observability.StatisticRequests().WithLabelValues("error").Inc()
		return dto.LearningPathStatisticResponse{}, err
	}

	overall := 0
	if total > 0 {
		overall = int(completed * 100 / total)
	}

	result := dto.LearningPathStatisticResponse{
		PathID:           path.ID,
		PathTitle:        path.Title,
		TotalTopics:      len(topics),
		TotalLessons:     int(total),
		CompletedLessons: int(completed),
		RemainingLessons: int(total - completed),
		OverallProgress:  overall,
		DurationDays:     durationDays(path.StartTime, path.EndTime),
		StartDate:        path.StartTime,
		EndDate:          path.EndTime,
		LastUpdated:      time.Now().UTC(),
	}

	s.writeStatisticCache(spanCtx, pathID, result)
	observability.StatisticRequests().WithLabelValues("miss").Inc()
	return result, nil
}

func (s *pathService) fetchStatisticCache(ctx context.Context, pathID string) (dto.LearningPathStatisticResponse, bool) {
	if s.cache == nil {
		return dto.LearningPathStatisticResponse{}, false
	}
	payload, err := s.cache.Get(ctx, statisticCacheKey(pathID)).Result()
	if err != nil {
		return dto.LearningPathStatisticResponse{}, false
	}

	var result dto.LearningPathStatisticResponse
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		s.logger.Warn().Err(err).Msg("failed to decode statistic cache")
		return dto.LearningPathStatisticResponse{}, false
	}
	return result, true
}

func (s *pathService) writeStatisticCache(ctx context.Context, pathID string, result dto.LearningPathStatisticResponse) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(result)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode statistic cache")
		return
	}
	if err := s.cache.Set(ctx, statisticCacheKey(pathID), payload, s.ttl).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to store statistic cache")
	}
}

func (s *pathService) ownedPath(ctx context.Context, userID, pathID string) (models.LearningPath, error) {
	path, err := s.paths.FindByID(ctx, pathID)
	if err != nil {
		return models.LearningPath{}, err
	}
	if path.UserID != userID {
		return models.LearningPath{}, ErrNotOwner
	}
	return path, nil
}

func durationDays(start, end time.Time) int {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours() / 24)
}
