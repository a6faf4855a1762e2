package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/pathway-api/internal/dto"
	"github.com/noah-isme/pathway-api/internal/models"
	"github.com/noah-isme/pathway-api/internal/repository"
)

// ErrNoteContentEmpty is returned when the note body is blank after
// sanitization stripped all markup.
var ErrNoteContentEmpty = errors.New("note content empty after sanitization")

// NoteService persists free-text annotations on paths, topics and lessons.
// Content is user-authored rich text, so it passes through an HTML policy
// before it is stored.
type NoteService interface {
	Create(ctx context.Context, req dto.NoteCreateRequest) (dto.NoteResponse, error)
	Update(ctx context.Context, noteID string, req dto.NoteUpdateRequest) (dto.NoteResponse, error)
	Delete(ctx context.Context, noteID string) error
	ListByTarget(ctx context.Context, targetType, targetID string) ([]dto.NoteResponse, error)
}

type noteService struct {
	notes     repository.NoteRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewNoteService constructs the note service.
func NewNoteService(notes repository.NoteRepository, validate *validator.Validate, logger zerolog.Logger) NoteService {
	return &noteService{
		notes:     notes,
		validator: validate,
		sanitizer: bluemonday.UGCPolicy(),
		logger:    logger.With().Str("component", "note_service").Logger(),
	}
}

func (s *noteService) Create(ctx context.Context, req dto.NoteCreateRequest) (dto.NoteResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.NoteResponse{}, err
	}

	content := strings.TrimSpace(s.sanitizer.Sanitize(req.Content))
	if content == "" {
		return dto.NoteResponse{}, ErrNoteContentEmpty
	}

	displayIndex, err := s.notes.NextDisplayIndex(ctx, req.TargetType, req.TargetID)
	if err != nil {
		return dto.NoteResponse{}, err
	}

	note := models.Note{
		TargetType:   req.TargetType,
		TargetID:     req.TargetID,
		Title:        strings.TrimSpace(req.Title),
		Content:      content,
		DisplayIndex: displayIndex,
	}
	if err := s.notes.Create(ctx, &note); err != nil {
		return dto.NoteResponse{}, err
	}
	return dto.NewNoteResponse(note), nil
}

func (s *noteService) Update(ctx context.Context, noteID string, req dto.NoteUpdateRequest) (dto.NoteResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.NoteResponse{}, err
	}

	content := strings.TrimSpace(s.sanitizer.Sanitize(req.Content))
	if content == "" {
		return dto.NoteResponse{}, ErrNoteContentEmpty
	}

	note, err := s.notes.FindByID(ctx, noteID)
	if err != nil {
		return dto.NoteResponse{}, err
	}

	note.Title = strings.TrimSpace(req.Title)
	note.Content = content
	if err := s.notes.Update(ctx, &note); err != nil {
		return dto.NoteResponse{}, err
	}
	return dto.NewNoteResponse(note), nil
}

func (s *noteService) Delete(ctx context.Context, noteID string) error {
	return s.notes.Delete(ctx, noteID)
}

func (s *noteService) ListByTarget(ctx context.Context, targetType, targetID string) ([]dto.NoteResponse, error) {
	notes, err := s.notes.ListByTarget(ctx, targetType, targetID)
	if err != nil {
		return nil, err
	}
	return dto.NewNoteResponseSlice(notes), nil
}
