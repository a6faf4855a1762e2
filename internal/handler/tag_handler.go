package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/pathway-api/internal/dto"
	"github.com/noah-isme/pathway-api/internal/service"
	"github.com/noah-isme/pathway-api/internal/utils"
)

// TagHandler exposes tag CRUD scoped to the authenticated user.
type TagHandler struct {
	service service.TagService
	logger  zerolog.Logger
}

// NewTagHandler constructs a handler instance.
func NewTagHandler(service service.TagService, logger zerolog.Logger) *TagHandler {
	return &TagHandler{
		service: service,
		logger:  logger.With().Str("component", "tag_handler").Logger(),
	}
}

// Register binds the tag routes.
func (h *TagHandler) Register(router fiber.Router) {
	router.Post("/", h.create)
	router.Get("/", h.list)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *TagHandler) create(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var req dto.TagCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	created, err := h.service.Create(requestContext(c), userID, req)
	if err != nil {
		return h.sendServiceError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "tag created", created)
}

func (h *TagHandler) list(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	tags, err := h.service.List(requestContext(c), userID)
	if err != nil {
		return h.sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "tags", tags)
}

func (h *TagHandler) update(c *fiber.Ctx) error {
	var req dto.TagUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	updated, err := h.service.Update(requestContext(c), c.Params("id"), req)
	if err != nil {
		return h.sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "tag updated", updated)
}

func (h *TagHandler) delete(c *fiber.Ctx) error {
	if err := h.service.Delete(requestContext(c), c.Params("id")); err != nil {
		return h.sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "tag deleted", nil)
}

func (h *TagHandler) sendServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "tag not found")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("tag operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
