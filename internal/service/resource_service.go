package service

import (
	"context"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/pathway-api/internal/dto"
	"github.com/noah-isme/pathway-api/internal/models"
	"github.com/noah-isme/pathway-api/internal/repository"
)

// ResourceService attaches links and file references to lessons.
type ResourceService interface {
	AttachLink(ctx context.Context, req dto.LinkResourceCreateRequest) (dto.ResourceResponse, error)
	AttachFile(ctx context.Context, req dto.FileResourceCreateRequest, sample []byte) (dto.ResourceResponse, error)
	ListByLesson(ctx context.Context, lessonID string) ([]dto.ResourceResponse, error)
	Delete(ctx context.Context, resourceID string) error
}

type resourceService struct {
	resources repository.ResourceRepository
	lessons   repository.LessonRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewResourceService constructs the resource service.
func NewResourceService(resources repository.ResourceRepository, lessons repository.LessonRepository, validate *validator.Validate, logger zerolog.Logger) ResourceService {
	return &resourceService{
		resources: resources,
		lessons:   lessons,
		validator: validate,
		logger:    logger.With().Str("component", "resource_service").Logger(),
	}
}

func (s *resourceService) AttachLink(ctx context.Context, req dto.LinkResourceCreateRequest) (dto.ResourceResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ResourceResponse{}, err
	}

	if _, err := s.lessons.FindByID(ctx, req.LessonID); err != nil {
		return dto.ResourceResponse{}, err
	}

	resource := models.Resource{
		LessonID:     req.LessonID,
		Name:         strings.TrimSpace(req.Name),
		Type:         "LINK",
		ExternalLink: req.ExternalLink,
	}
	if err := s.resources.Create(ctx, &resource); err != nil {
		return dto.ResourceResponse{}, err
	}
	return dto.NewResourceResponse(resource), nil
}

// AttachFile registers an already stored file. When the caller omits the
// mime type it is sniffed from the leading bytes of the upload.
func (s *resourceService) AttachFile(ctx context.Context, req dto.FileResourceCreateRequest, sample []byte) (dto.ResourceResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ResourceResponse{}, err
	}

	if _, err := s.lessons.FindByID(ctx, req.LessonID); err != nil {
		return dto.ResourceResponse{}, err
	}

	mimeType := strings.TrimSpace(req.MimeType)
	if mimeType == "" && len(sample) > 0 {
		mimeType = mimetype.Detect(sample).String()
	}

	resource := models.Resource{
		LessonID:    req.LessonID,
		Name:        strings.TrimSpace(req.Name),
		Type:        "FILE",
		ResourceURL: req.ResourceURL,
		SizeBytes:   req.SizeBytes,
		MimeType:    mimeType,
	}
	if err := s.resources.Create(ctx, &resource); err != nil {
		return dto.ResourceResponse{}, err
	}
	return dto.NewResourceResponse(resource), nil
}

func (s *resourceService) ListByLesson(ctx context.Context, lessonID string) ([]dto.ResourceResponse, error) {
	resources, err := s.resources.ListByLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	return dto.NewResourceResponseSlice(resources), nil
}

func (s *resourceService) Delete(ctx context.Context, resourceID string) error {
	return s.resources.Delete(ctx, resourceID)
}
