package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/pathway-api/internal/dto"
	"github.com/noah-isme/pathway-api/internal/editor"
	"github.com/noah-isme/pathway-api/internal/utils"
)

// EditorHandler exposes the stateful editing session over HTTP. One session
// per path is held by the manager; every route below addresses the session
// of the path in the URL.
type EditorHandler struct {
	manager *editor.Manager
	logger  zerolog.Logger
}

// NewEditorHandler constructs a handler instance.
func NewEditorHandler(manager *editor.Manager, logger zerolog.Logger) *EditorHandler {
	return &EditorHandler{
		manager: manager,
		logger:  logger.With().Str("component", "editor_handler").Logger(),
	}
}

// Register binds the editor session routes.
func (h *EditorHandler) Register(router fiber.Router) {
	router.Post("/:pathId/open", h.open)
	router.Get("/:pathId/snapshot", h.snapshot)
	router.Post("/:pathId/close", h.close)
	router.Get("/:pathId/pending", h.pending)

	router.Post("/:pathId/topics/drafts", h.addTopicDraft)
	router.Post("/:pathId/topics/:topicId/load", h.loadTopic)
	router.Put("/:pathId/topics/:topicId", h.saveTopic)
	router.Delete("/:pathId/topics/:topicId", h.deleteTopic)

	router.Post("/:pathId/topics/:topicId/lessons/drafts", h.addLessonDraft)
	router.Put("/:pathId/topics/:topicId/lessons/:lessonId", h.saveLesson)
	router.Delete("/:pathId/topics/:topicId/lessons/:lessonId", h.deleteLesson)
	router.Post("/:pathId/lessons/:lessonId/advance", h.advanceLesson)

	router.Post("/:pathId/nodes/:nodeId/edit", h.beginEdit)
	router.Delete("/:pathId/nodes/:nodeId/edit", h.cancelEdit)
}

func (h *EditorHandler) open(c *fiber.Ctx) error {
	session, err := h.manager.Open(requestContext(c), c.Params("pathId"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "learning path not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to open editing session")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to open editing session")
	}

	path, stat := session.Snapshot()
	return utils.SendSuccess(c, "editing session open", dto.NewPathSnapshot(path, stat))
}

func (h *EditorHandler) snapshot(c *fiber.Ctx) error {
	session, ok := h.manager.Get(c.Params("pathId"))
	if !ok {
		return utils.SendError(c, fiber.StatusNotFound, "no editing session for this path")
	}

	path, stat := session.Snapshot()
	return utils.SendSuccess(c, "editing session snapshot", dto.NewPathSnapshot(path, stat))
}

func (h *EditorHandler) close(c *fiber.Ctx) error {
	h.manager.Close(c.Params("pathId"))
	return utils.SendSuccess(c, "editing session closed", nil)
}

func (h *EditorHandler) pending(c *fiber.Ctx) error {
	session, ok := h.manager.Get(c.Params("pathId"))
	if !ok {
		return utils.SendError(c, fiber.StatusNotFound, "no editing session for this path")
	}
	return utils.SendSuccess(c, "pending syncs", fiber.Map{
		"progress":      session.PendingProgress(),
		"lesson_status": session.PendingStatus(),
	})
}

type draftRequest struct {
	Title string `json:"title"`
}

func (h *EditorHandler) addTopicDraft(c *fiber.Ctx) error {
	session, ok := h.manager.Get(c.Params("pathId"))
	if !ok {
		return utils.SendError(c, fiber.StatusNotFound, "no editing session for this path")
	}

	var req draftRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	draft := session.AddTopicDraft(req.Title)
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "topic draft added", dto.NewTopicSnapshot(draft))
}

func (h *EditorHandler) loadTopic(c *fiber.Ctx) error {
	session, ok := h.manager.Get(c.Params("pathId"))
	if !ok {
		return utils.SendError(c, fiber.StatusNotFound, "no editing session for this path")
	}

	if err := session.LoadTopic(requestContext(c), parseNodeID(c.Params("topicId"))); err != nil {
		return h.sendSessionError(c, err, "failed to load topic")
	}

	path, stat := session.Snapshot()
	return utils.SendSuccess(c, "topic loaded", dto.NewPathSnapshot(path, stat))
}

type saveTopicRequest struct {
	Title string `json:"title"`
}

func (h *EditorHandler) saveTopic(c *fiber.Ctx) error {
	session, ok := h.manager.Get(c.Params("pathId"))
	if !ok {
		return utils.SendError(c, fiber.StatusNotFound, "no editing session for this path")
	}

	var req saveTopicRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	saved, err := session.SaveTopic(requestContext(c), parseNodeID(c.Params("topicId")), req.Title)
	if err != nil {
		return h.sendSessionError(c, err, "failed to save topic")
	}
	return utils.SendSuccess(c, "topic saved", dto.NewTopicSnapshot(saved))
}

func (h *EditorHandler) deleteTopic(c *fiber.Ctx) error {
	session, ok := h.manager.Get(c.Params("pathId"))
	if !ok {
		return utils.SendError(c, fiber.StatusNotFound, "no editing session for this path")
	}

	if err := session.DeleteTopic(requestContext(c), parseNodeID(c.Params("topicId"))); err != nil {
		return h.sendSessionError(c, err, "failed to delete topic")
	}
	return utils.SendSuccess(c, "topic deleted", nil)
}

func (h *EditorHandler) addLessonDraft(c *fiber.Ctx) error {
	session, ok := h.manager.Get(c.Params("pathId"))
	if !ok {
		return utils.SendError(c, fiber.StatusNotFound, "no editing session for this path")
	}

	var req draftRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	draft, err := session.AddLessonDraft(parseNodeID(c.Params("topicId")), req.Title)
	if err != nil {
		return h.sendSessionError(c, err, "failed to add lesson draft")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "lesson draft added", dto.NewLessonSnapshot(draft))
}

type saveLessonRequest struct {
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

func (h *EditorHandler) saveLesson(c *fiber.Ctx) error {
	session, ok := h.manager.Get(c.Params("pathId"))
	if !ok {
		return utils.SendError(c, fiber.StatusNotFound, "no editing session for this path")
	}

	var req saveLessonRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	saved, err := session.SaveLesson(
		requestContext(c),
		parseNodeID(c.Params("topicId")),
		parseNodeID(c.Params("lessonId")),
		req.Title,
		req.StartTime,
		req.EndTime,
	)
	if err != nil {
		return h.sendSessionError(c, err, "failed to save lesson")
	}
	return utils.SendSuccess(c, "lesson saved", dto.NewLessonSnapshot(saved))
}

func (h *EditorHandler) deleteLesson(c *fiber.Ctx) error {
	session, ok := h.manager.Get(c.Params("pathId"))
	if !ok {
		return utils.SendError(c, fiber.StatusNotFound, "no editing session for this path")
	}

	err := session.DeleteLesson(
		requestContext(c),
		parseNodeID(c.Params("topicId")),
		parseNodeID(c.Params("lessonId")),
	)
	if err != nil {
		return h.sendSessionError(c, err, "failed to delete lesson")
	}
	return utils.SendSuccess(c, "lesson deleted", nil)
}

func (h *EditorHandler) advanceLesson(c *fiber.Ctx) error {
	session, ok := h.manager.Get(c.Params("pathId"))
	if !ok {
		return utils.SendError(c, fiber.StatusNotFound, "no editing session for this path")
	}

	transition, err := session.AdvanceLessonStatus(requestContext(c), parseNodeID(c.Params("lessonId")))
	if err != nil {
		return h.sendSessionError(c, err, "failed to advance lesson status")
	}

	path, stat := session.Snapshot()
	return utils.SendSuccess(c, "lesson status advanced", fiber.Map{
		"from":      string(transition.From),
		"to":        string(transition.To),
		"statistic": dto.NewPathSnapshot(path, stat).Statistic,
	})
}

func (h *EditorHandler) beginEdit(c *fiber.Ctx) error {
	session, ok := h.manager.Get(c.Params("pathId"))
	if !ok {
		return utils.SendError(c, fiber.StatusNotFound, "no editing session for this path")
	}
	session.BeginEdit(parseNodeID(c.Params("nodeId")))
	return utils.SendSuccess(c, "node editing", nil)
}

func (h *EditorHandler) cancelEdit(c *fiber.Ctx) error {
	session, ok := h.manager.Get(c.Params("pathId"))
	if !ok {
		return utils.SendError(c, fiber.StatusNotFound, "no editing session for this path")
	}
	session.CancelEdit(parseNodeID(c.Params("nodeId")))
	return utils.SendSuccess(c, "edit cancelled", nil)
}

func (h *EditorHandler) sendSessionError(c *fiber.Ctx, err error, message string) error {
	switch {
	case errors.Is(err, editor.ErrEmptyTitle):
		return utils.SendError(c, fiber.StatusBadRequest, editor.ErrEmptyTitle.Error())
	case errors.Is(err, editor.ErrSaveInFlight):
		return utils.SendError(c, fiber.StatusConflict, editor.ErrSaveInFlight.Error())
	case errors.Is(err, editor.ErrNodeNotFound):
		return utils.SendError(c, fiber.StatusNotFound, editor.ErrNodeNotFound.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "not found")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(message)
		return utils.SendError(c, fiber.StatusInternalServerError, message)
	}
}
