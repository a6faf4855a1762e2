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

// LearningPathHandler exposes CRUD and lifecycle operations on learning
// paths, plus export/import and cloning.
type LearningPathHandler struct {
	service service.PathService
	logger  zerolog.Logger
}

// NewLearningPathHandler constructs a handler instance.
func NewLearningPathHandler(service service.PathService, logger zerolog.Logger) *LearningPathHandler {
	return &LearningPathHandler{
		service: service,
		logger:  logger.With().Str("component", "learning_path_handler").Logger(),
	}
}

// Register binds the learning path routes.
func (h *LearningPathHandler) Register(router fiber.Router) {
	router.Post("/", h.create)
	router.Get("/", h.list)
	router.Post("/import", h.importPath)
	router.Delete("/", h.bulkDelete)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Patch("/:id/archive", h.archive)
	router.Patch("/:id/favourite", h.favourite)
	router.Put("/:id/tags", h.assignTags)
	router.Get("/:id/statistic", h.statistic)
	router.Get("/:id/export", h.export)
	router.Post("/:id/clone", h.clone)
}

func (h *LearningPathHandler) create(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var req dto.LearningPathCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	created, err := h.service.Create(requestContext(c), userID, req)
	if err != nil {
		return h.sendServiceError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "learning path created", created)
}

func (h *LearningPathHandler) list(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	includeArchived := c.QueryBool("include_archived")
	paths, err := h.service.List(requestContext(c), userID, includeArchived)
	if err != nil {
		return h.sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "learning paths", paths)
}

func (h *LearningPathHandler) get(c *fiber.Ctx) error {
	path, err := h.service.Get(requestContext(c), c.Params("id"))
	if err != nil {
		return h.sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "learning path", path)
}

func (h *LearningPathHandler) update(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var req dto.LearningPathUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	updated, err := h.service.Update(requestContext(c), userID, c.Params("id"), req)
	if err != nil {
		return h.sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "learning path updated", updated)
}

type archiveRequest struct {
	Archived bool `json:"archived"`
}

func (h *LearningPathHandler) archive(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var req archiveRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.SetArchived(requestContext(c), userID, c.Params("id"), req.Archived); err != nil {
		return h.sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "learning path archive flag updated", nil)
}

type favouriteRequest struct {
	Favourite bool `json:"favourite"`
}

func (h *LearningPathHandler) favourite(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var req favouriteRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.SetFavourite(requestContext(c), userID, c.Params("id"), req.Favourite); err != nil {
		return h.sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "learning path favourite flag updated", nil)
}

type bulkDeleteRequest struct {
	PathIDs []string `json:"path_ids"`
}

func (h *LearningPathHandler) bulkDelete(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var req bulkDeleteRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if len(req.PathIDs) == 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "path_ids required")
	}

	if err := h.service.Delete(requestContext(c), userID, req.PathIDs); err != nil {
		return h.sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "learning paths deleted", nil)
}

type assignTagsRequest struct {
	TagIDs []string `json:"tag_ids"`
}

func (h *LearningPathHandler) assignTags(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var req assignTagsRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	tags, err := h.service.AssignTags(requestContext(c), userID, c.Params("id"), req.TagIDs)
	if err != nil {
		return h.sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "learning path tags updated", tags)
}

func (h *LearningPathHandler) statistic(c *fiber.Ctx) error {
	stat, err := h.service.Statistic(requestContext(c), c.Params("id"))
	if err != nil {
		return h.sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "learning path statistic", stat)
}

func (h *LearningPathHandler) export(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	export, err := h.service.Export(requestContext(c), userID, c.Params("id"))
	if err != nil {
		return h.sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "learning path export", export)
}

func (h *LearningPathHandler) importPath(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	imported, err := h.service.Import(requestContext(c), userID, c.Body())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "not found")
		}
		// Schema violations and malformed JSON both land here.
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "learning path imported", imported)
}

type cloneRequest struct {
	OriginUserID    string `json:"origin_user_id"`
	OriginFullName  string `json:"origin_full_name"`
	OriginAvatarURL string `json:"origin_avatar_url"`
}

func (h *LearningPathHandler) clone(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var req cloneRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	clone, err := h.service.Clone(requestContext(c), userID, c.Params("id"), dto.OriginAuthorResponse{
		UserID:    req.OriginUserID,
		FullName:  req.OriginFullName,
		AvatarURL: req.OriginAvatarURL,
	})
	if err != nil {
		return h.sendServiceError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "learning path cloned", clone)
}

func (h *LearningPathHandler) sendServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "learning path not found")
	case errors.Is(err, service.ErrNotOwner):
		return utils.SendError(c, fiber.StatusForbidden, "learning path does not belong to this user")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("learning path operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
