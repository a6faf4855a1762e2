package handler_test

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/pathway-api/internal/dto"
	"github.com/noah-isme/pathway-api/internal/handler"
	"github.com/noah-isme/pathway-api/internal/notify"
)

type stubNotificationService struct {
	mu            sync.Mutex
	notifications []dto.NotificationResponse
	unread        int64
	markedRead    []string
	deleted       []string
	subscribers   []chan dto.NotificationResponse
}

func (s *stubNotificationService) Publish(_ context.Context, payload dto.NotificationCreateRequest) (dto.NotificationResponse, error) {
	return dto.NotificationResponse{}, errors.New("not implemented")
}

func (s *stubNotificationService) List(_ context.Context, userID string, limit, offset int) ([]dto.NotificationResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]dto.NotificationResponse(nil), s.notifications...), nil
}

func (s *stubNotificationService) UnreadCount(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread, nil
}

func (s *stubNotificationService) MarkRead(_ context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "missing" {
		return gorm.ErrRecordNotFound
	}
	s.markedRead = append(s.markedRead, id)
	return nil
}

func (s *stubNotificationService) MarkAllRead(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unread = 0
	return nil
}

func (s *stubNotificationService) Delete(_ context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubNotificationService) DeleteAll(_ context.Context, userID string) error {
	return nil
}

func (s *stubNotificationService) Subscribe(userID string) (<-chan dto.NotificationResponse, func()) {
	ch := make(chan dto.NotificationResponse, 4)
	s.mu.Lock()
	s.subscribers = append(s.subscribers, ch)
	s.mu.Unlock()
	return ch, func() {}
}

func (s *stubNotificationService) Start(ctx context.Context) {}

func (s *stubNotificationService) broadcast(notification dto.NotificationResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subscribers {
		ch <- notification
	}
}

func newNotificationTestApp(svc *stubNotificationService, userID string) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/notifications", func(c *fiber.Ctx) error {
		if userID != "" {
			c.Locals("user_id", userID)
		}
		return c.Next()
	})
	feeds := notify.NewManager(svc, zerolog.Nop())
	handler.NewNotificationHandler(svc, feeds, zerolog.Nop(), 30*time.Second).Register(group)
	return app
}

func startFiberServer(t *testing.T, app *fiber.App) (string, func()) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		if err := app.Listener(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.Logf("fiber listener stopped: %v", err)
		}
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)

	shutdown := func() {
		_ = app.Shutdown()
		_ = listener.Close()
		select {
		case <-done:
		case <-time.After(100 * time.Millisecond):
		}
	}

	return "http://" + listener.Addr().String(), shutdown
}

func TestNotificationHandler_ListAndUnreadCount(t *testing.T) {
	svc := &stubNotificationService{
		notifications: []dto.NotificationResponse{
			{NotificationID: "n1", UserID: "user-1", Message: "Lesson due soon", SentAt: time.Now()},
			{NotificationID: "n2", UserID: "user-1", Message: "Path shared with you", SentAt: time.Now()},
		},
		unread: 2,
	}
	app := newNotificationTestApp(svc, "user-1")

	req := httptest.NewRequest(http.MethodGet, "/api/notifications/?limit=10", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listed []dto.NotificationResponse
	decodeEnvelope(t, resp, &listed)
	require.Len(t, listed, 2)

	req = httptest.NewRequest(http.MethodGet, "/api/notifications/unread-count", nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var count dto.NotificationUnreadCountResponse
	decodeEnvelope(t, resp, &count)
	require.Equal(t, 2, count.UnreadCount)
}

func TestNotificationHandler_RequiresUser(t *testing.T) {
	app := newNotificationTestApp(&stubNotificationService{}, "")

	req := httptest.NewRequest(http.MethodGet, "/api/notifications/", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.NoError(t, resp.Body.Close())
}

func TestNotificationHandler_MarkReadUnknownIDIs404(t *testing.T) {
	app := newNotificationTestApp(&stubNotificationService{}, "user-1")

	req := httptest.NewRequest(http.MethodPatch, "/api/notifications/missing/read", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.NoError(t, resp.Body.Close())
}

func TestNotificationHandler_FeedMergesPushesAndRecountsUnread(t *testing.T) {
	svc := &stubNotificationService{
		notifications: []dto.NotificationResponse{
			{NotificationID: "n1", UserID: "user-1", Message: "Older", SentAt: time.Now().Add(-time.Hour)},
		},
	}
	app := newNotificationTestApp(svc, "user-1")

	req := httptest.NewRequest(http.MethodGet, "/api/notifications/feed", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snapshot struct {
		Notifications []dto.NotificationResponse `json:"notifications"`
		UnreadCount   int                        `json:"unread_count"`
	}
	decodeEnvelope(t, resp, &snapshot)
	require.Len(t, snapshot.Notifications, 1)
	require.Equal(t, 1, snapshot.UnreadCount)

	svc.broadcast(dto.NotificationResponse{NotificationID: "n2", UserID: "user-1", Message: "Newer", SentAt: time.Now()})

	require.Eventually(t, func() bool {
		req := httptest.NewRequest(http.MethodGet, "/api/notifications/feed", nil)
		resp, err := app.Test(req, -1)
		if err != nil || resp.StatusCode != http.StatusOK {
			return false
		}
		decodeEnvelope(t, resp, &snapshot)
		return len(snapshot.Notifications) == 2
	}, 2*time.Second, 20*time.Millisecond)
	require.Equal(t, "n2", snapshot.Notifications[0].NotificationID)
	require.Equal(t, 2, snapshot.UnreadCount)

	req = httptest.NewRequest(http.MethodPatch, "/api/notifications/feed/n2/read", nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var count dto.NotificationUnreadCountResponse
	decodeEnvelope(t, resp, &count)
	require.Equal(t, 1, count.UnreadCount)

	svc.mu.Lock()
	defer svc.mu.Unlock()
	require.Contains(t, svc.markedRead, "n2")
}

func TestNotificationHandler_SSEStreamDeliversEvents(t *testing.T) {
	svc := &stubNotificationService{}
	app := newNotificationTestApp(svc, "user-1")

	baseURL, shutdown := startFiberServer(t, app)
	defer shutdown()

	req, err := http.NewRequest(http.MethodGet, baseURL+"/api/notifications/stream", nil)
	require.NoError(t, err)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	// Give the stream writer a moment to register its subscriber.
	time.Sleep(100 * time.Millisecond)
	svc.broadcast(dto.NotificationResponse{NotificationID: "n1", UserID: "user-1", Message: "Lesson unlocked"})

	reader := bufio.NewReader(resp.Body)
	deadline := time.After(3 * time.Second)
	lines := make(chan string, 8)
	go func() {
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				close(lines)
				return
			}
			lines <- strings.TrimRight(line, "\n")
		}
	}()

	for {
		select {
		case line, ok := <-lines:
			require.True(t, ok, "stream closed before notification event")
			if strings.HasPrefix(line, "data: ") {
				var event dto.NotificationResponse
				require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event))
				require.Equal(t, "n1", event.NotificationID)
				require.Equal(t, "Lesson unlocked", event.Message)
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for SSE notification event")
		}
	}
}

func TestNotificationHandler_WebsocketDeliversEvents(t *testing.T) {
	svc := &stubNotificationService{}
	app := newNotificationTestApp(svc, "user-1")

	baseURL, shutdown := startFiberServer(t, app)
	defer shutdown()

	url := "ws" + strings.TrimPrefix(baseURL, "http") + "/api/notifications/ws"
	dialer := websocket.Dialer{HandshakeTimeout: 3 * time.Second}
	conn, resp, err := dialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		_ = resp.Body.Close()
	}
	defer conn.Close()

	time.Sleep(100 * time.Millisecond)
	svc.broadcast(dto.NotificationResponse{NotificationID: "n2", UserID: "user-1", Message: "Topic completed"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var event dto.NotificationResponse
	require.NoError(t, conn.ReadJSON(&event))
	require.Equal(t, "n2", event.NotificationID)
	require.Equal(t, "Topic completed", event.Message)
}
