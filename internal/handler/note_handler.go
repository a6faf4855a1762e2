package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/pathway-api/internal/dto"
	"github.com/noah-isme/pathway-api/internal/service"
	"github.com/noah-isme/pathway-api/internal/utils"
)

// NoteHandler exposes note CRUD for paths, topics and lessons.
type NoteHandler struct {
	service service.NoteService
	logger  zerolog.Logger
}

// NewNoteHandler constructs a handler instance.
func NewNoteHandler(service service.NoteService, logger zerolog.Logger) *NoteHandler {
	return &NoteHandler{
		service: service,
		logger:  logger.With().Str("component", "note_handler").Logger(),
	}
}

// Register binds the note routes.
func (h *NoteHandler) Register(router fiber.Router) {
	router.Post("/", h.create)
	router.Get("/", h.list)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *NoteHandler) create(c *fiber.Ctx) error {
	var req dto.NoteCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	created, err := h.service.Create(requestContext(c), req)
	if err != nil {
		return h.sendServiceError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "note created", created)
}

func (h *NoteHandler) list(c *fiber.Ctx) error {
	targetType := strings.ToUpper(strings.TrimSpace(c.Query("target_type")))
	targetID := strings.TrimSpace(c.Query("target_id"))
	if targetType == "" || targetID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "target_type and target_id required")
	}

	notes, err := h.service.ListByTarget(requestContext(c), targetType, targetID)
	if err != nil {
		return h.sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "notes", notes)
}

func (h *NoteHandler) update(c *fiber.Ctx) error {
	var req dto.NoteUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	updated, err := h.service.Update(requestContext(c), c.Params("id"), req)
	if err != nil {
		return h.sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "note updated", updated)
}

func (h *NoteHandler) delete(c *fiber.Ctx) error {
	if err := h.service.Delete(requestContext(c), c.Params("id")); err != nil {
		return h.sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "note deleted", nil)
}

func (h *NoteHandler) sendServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "note not found")
	case errors.Is(err, service.ErrNoteContentEmpty):
		return utils.SendError(c, fiber.StatusBadRequest, service.ErrNoteContentEmpty.Error())
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("note operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
