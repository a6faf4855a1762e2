package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/pathway-api/internal/dto"
	"github.com/noah-isme/pathway-api/internal/models"
	"github.com/noah-isme/pathway-api/internal/repository"
)

// TagService manages the shared tag lookup scoped per user.
type TagService interface {
	Create(ctx context.Context, userID string, req dto.TagCreateRequest) (dto.TagResponse, error)
	List(ctx context.Context, userID string) ([]dto.TagResponse, error)
	Update(ctx context.Context, tagID string, req dto.TagUpdateRequest) (dto.TagResponse, error)
	Delete(ctx context.Context, tagID string) error
}

type tagService struct {
	tags      repository.TagRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewTagService constructs the tag service.
func NewTagService(tags repository.TagRepository, validate *validator.Validate, logger zerolog.Logger) TagService {
	return &tagService{
		tags:      tags,
		validator: validate,
		logger:    logger.With().Str("component", "tag_service").Logger(),
	}
}

func (s *tagService) Create(ctx context.Context, userID string, req dto.TagCreateRequest) (dto.TagResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.TagResponse{}, err
	}

	tag := models.Tag{
		UserID: userID,
		Name:   strings.TrimSpace(req.Name),
		Color:  req.Color,
	}
	if err := s.tags.Create(ctx, &tag); err != nil {
		return dto.TagResponse{}, err
	}
	return dto.NewTagResponse(tag), nil
}

func (s *tagService) List(ctx context.Context, userID string) ([]dto.TagResponse, error) {
	tags, err := s.tags.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewTagResponseSlice(tags), nil
}

func (s *tagService) Update(ctx context.Context, tagID string, req dto.TagUpdateRequest) (dto.TagResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.TagResponse{}, err
	}

	tag, err := s.tags.FindByID(ctx, tagID)
	if err != nil {
		return dto.TagResponse{}, err
	}

	tag.Name = strings.TrimSpace(req.Name)
	if req.Color != "" {
		tag.Color = req.Color
	}
	if err := s.tags.Update(ctx, &tag); err != nil {
		return dto.TagResponse{}, err
	}
	return dto.NewTagResponse(tag), nil
}

// Delete removes the tag and its memberships; paths keep their other tags.
func (s *tagService) Delete(ctx context.Context, tagID string) error {
	return s.tags.Delete(ctx, tagID)
}
