package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/pathway-api/internal/dto"
	"github.com/noah-isme/pathway-api/internal/notify"
	"github.com/noah-isme/pathway-api/internal/service"
	"github.com/noah-isme/pathway-api/internal/utils"
)

// NotificationHandler manages notification CRUD, the merged per-user feed,
// and the two realtime delivery surfaces: an SSE stream and a websocket
// stream.
type NotificationHandler struct {
	service service.NotificationService
	feeds   *notify.Manager
	logger  zerolog.Logger
	timeout time.Duration
}

// NewNotificationHandler constructs a handler instance.
func NewNotificationHandler(service service.NotificationService, feeds *notify.Manager, logger zerolog.Logger, timeout time.Duration) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		feeds:   feeds,
		logger:  logger.With().Str("component", "notification_handler").Logger(),
		timeout: timeout,
	}
}

// Register binds the notification routes. The feed routes are registered
// before the parameterized ones so "/feed" never matches as an id.
func (h *NotificationHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Get("/unread-count", h.unreadCount)
	router.Get("/stream", h.stream)
	router.Get("/feed", h.feedSnapshot)
	router.Patch("/feed/read-all", h.feedMarkAllRead)
	router.Patch("/feed/:id/read", h.feedMarkRead)
	router.Post("/feed/close", h.feedClose)
	router.Delete("/feed", h.feedDeleteAll)
	router.Delete("/feed/:id", h.feedDelete)
	router.Patch("/read-all", h.markAllRead)
	router.Patch("/:id/read", h.markRead)
	router.Delete("/", h.deleteAll)
	router.Delete("/:id", h.delete)

	router.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("ws_user_id", userIDFromContext(c))
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/ws", websocket.New(h.handleWebsocket))
}

func (h *NotificationHandler) list(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	offset, err := parseQueryInt(c, "offset")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid offset")
	}

	notifications, err := h.service.List(requestContext(c), userID, limit, offset)
	if err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, err.Error())
	}

	return utils.SendSuccess(c, "notifications", notifications)
}

func (h *NotificationHandler) unreadCount(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	count, err := h.service.UnreadCount(requestContext(c), userID)
	if err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, err.Error())
	}

	return utils.SendSuccess(c, "unread count", dto.NotificationUnreadCountResponse{UnreadCount: int(count)})
}

func (h *NotificationHandler) markRead(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	id := c.Params("id")
	if id == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "notification id required")
	}

	if err := h.service.MarkRead(requestContext(c), id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "notification not found")
		}
		return utils.SendError(c, fiber.StatusInternalServerError, err.Error())
	}

	return utils.SendSuccess(c, "notification marked read", nil)
}

func (h *NotificationHandler) markAllRead(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	if err := h.service.MarkAllRead(requestContext(c), userID); err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, err.Error())
	}

	return utils.SendSuccess(c, "notifications marked read", nil)
}

func (h *NotificationHandler) delete(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	if err := h.service.Delete(requestContext(c), c.Params("id"), userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "notification not found")
		}
		return utils.SendError(c, fiber.StatusInternalServerError, err.Error())
	}

	return utils.SendSuccess(c, "notification deleted", nil)
}

func (h *NotificationHandler) deleteAll(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	if err := h.service.DeleteAll(requestContext(c), userID); err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, err.Error())
	}

	return utils.SendSuccess(c, "notifications deleted", nil)
}

type feedSnapshotResponse struct {
	Notifications []dto.NotificationResponse `json:"notifications"`
	UnreadCount   int                        `json:"unread_count"`
	PendingSync   []notify.PendingOp         `json:"pending_sync"`
}

func (h *NotificationHandler) userFeed(c *fiber.Ctx) (*notify.Feed, error) {
	userID := userIDFromContext(c)
	if userID == "" {
		return nil, utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	feed, err := h.feeds.Feed(requestContext(c), userID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to hydrate notification feed")
		return nil, utils.SendError(c, fiber.StatusInternalServerError, "failed to load notification feed")
	}
	return feed, nil
}

func (h *NotificationHandler) feedSnapshot(c *fiber.Ctx) error {
	feed, err := h.userFeed(c)
	if feed == nil {
		return err
	}

	items, unread := feed.Snapshot()
	return utils.SendSuccess(c, "notification feed", feedSnapshotResponse{
		Notifications: items,
		UnreadCount:   unread,
		PendingSync:   feed.PendingSync(),
	})
}

func (h *NotificationHandler) feedMarkRead(c *fiber.Ctx) error {
	feed, err := h.userFeed(c)
	if feed == nil {
		return err
	}

	feed.MarkRead(requestContext(c), c.Params("id"))
	return utils.SendSuccess(c, "notification marked read", dto.NotificationUnreadCountResponse{UnreadCount: feed.UnreadCount()})
}

func (h *NotificationHandler) feedMarkAllRead(c *fiber.Ctx) error {
	feed, err := h.userFeed(c)
	if feed == nil {
		return err
	}

	feed.MarkAllRead(requestContext(c))
	return utils.SendSuccess(c, "notifications marked read", dto.NotificationUnreadCountResponse{UnreadCount: feed.UnreadCount()})
}

func (h *NotificationHandler) feedDelete(c *fiber.Ctx) error {
	feed, err := h.userFeed(c)
	if feed == nil {
		return err
	}

	feed.Delete(requestContext(c), c.Params("id"))
	return utils.SendSuccess(c, "notification deleted", dto.NotificationUnreadCountResponse{UnreadCount: feed.UnreadCount()})
}

func (h *NotificationHandler) feedDeleteAll(c *fiber.Ctx) error {
	feed, err := h.userFeed(c)
	if feed == nil {
		return err
	}

	feed.DeleteAll(requestContext(c))
	return utils.SendSuccess(c, "notifications deleted", nil)
}

func (h *NotificationHandler) feedClose(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	h.feeds.Release(userID)
	return utils.SendSuccess(c, "notification feed closed", nil)
}

func (h *NotificationHandler) stream(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	ctx, cancel := context.WithCancel(requestContext(c))

	stream, cleanup := h.service.Subscribe(userID)

	keepAliveInterval := h.timeout
	if keepAliveInterval <= 0 {
		keepAliveInterval = 30 * time.Second
	}

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer func() {
			cleanup()
			cancel()
		}()

		ticker := time.NewTicker(keepAliveInterval / 2)
		defer ticker.Stop()

		for {
			select {
			case notification, ok := <-stream:
				if !ok {
					return
				}
				if err := writeNotificationEvent(w, notification); err != nil {
					h.logger.Debug().Err(err).Msg("failed to write notification event")
					return
				}
			case <-ticker.C:
				if err := writeKeepAlive(w); err != nil {
					h.logger.Debug().Err(err).Msg("failed to write notification keepalive")
					return
				}
			case <-ctx.Done():
				return
			}
		}
	})

	return nil
}

func (h *NotificationHandler) handleWebsocket(conn *websocket.Conn) {
	userID, _ := conn.Locals("ws_user_id").(string)
	if userID == "" {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(fiber.StatusUnauthorized, "user id missing"))
		_ = conn.Close()
		return
	}

	stream, cleanup := h.service.Subscribe(userID)
	defer cleanup()

	h.logger.Info().Str("user_id", userID).Msg("notification websocket connected")
	defer h.logger.Info().Str("user_id", userID).Msg("notification websocket disconnected")

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Drain client frames so close handshakes are noticed.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case notification, ok := <-stream:
			if !ok {
				return
			}
			if err := conn.WriteJSON(notification); err != nil {
				h.logger.Debug().Err(err).Msg("failed to write websocket notification")
				return
			}
		case <-done:
			return
		}
	}
}

func writeNotificationEvent(w *bufio.Writer, notification interface{}) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "event: notification\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return err
	}
	return w.Flush()
}

func writeKeepAlive(w *bufio.Writer) error {
	if _, err := fmt.Fprintf(w, ": keep-alive %s\n\n", time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	return w.Flush()
}
