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

// ResourceHandler exposes link and file resource operations on lessons.
type ResourceHandler struct {
	service service.ResourceService
	logger  zerolog.Logger
}

// NewResourceHandler constructs a handler instance.
func NewResourceHandler(service service.ResourceService, logger zerolog.Logger) *ResourceHandler {
	return &ResourceHandler{
		service: service,
		logger:  logger.With().Str("component", "resource_handler").Logger(),
	}
}

// Register binds the resource routes.
func (h *ResourceHandler) Register(router fiber.Router) {
	router.Post("/links", h.attachLink)
	router.Post("/files", h.attachFile)
	router.Get("/", h.list)
	router.Delete("/:id", h.delete)
}

func (h *ResourceHandler) attachLink(c *fiber.Ctx) error {
	var req dto.LinkResourceCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	created, err := h.service.AttachLink(requestContext(c), req)
	if err != nil {
		return h.sendServiceError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "link resource attached", created)
}

// attachFile accepts either a JSON body or a multipart form. The multipart
// variant may carry a "sample" file part whose leading bytes drive mime
// detection when the form does not name a type.
func (h *ResourceHandler) attachFile(c *fiber.Ctx) error {
	var req dto.FileResourceCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	var sample []byte
	if fileHeader, err := c.FormFile("sample"); err == nil && fileHeader != nil {
		file, err := fileHeader.Open()
		if err == nil {
			defer func() { _ = file.Close() }()
			buf := make([]byte, 3072)
			n, _ := file.Read(buf)
			sample = buf[:n]
		}
	}

	created, err := h.service.AttachFile(requestContext(c), req, sample)
	if err != nil {
		return h.sendServiceError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "file resource attached", created)
}

func (h *ResourceHandler) list(c *fiber.Ctx) error {
	lessonID := c.Query("lesson_id")
	if lessonID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "lesson_id required")
	}

	resources, err := h.service.ListByLesson(requestContext(c), lessonID)
	if err != nil {
		return h.sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "resources", resources)
}

func (h *ResourceHandler) delete(c *fiber.Ctx) error {
	if err := h.service.Delete(requestContext(c), c.Params("id")); err != nil {
		return h.sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "resource deleted", nil)
}

func (h *ResourceHandler) sendServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "not found")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("resource operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
