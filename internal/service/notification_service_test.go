package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/pathway-api/internal/dto"
	"github.com/noah-isme/pathway-api/internal/models"
	"github.com/noah-isme/pathway-api/internal/repository"
)

func newNotificationTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := newServiceTestDB(t)
	require.NoError(t, db.AutoMigrate(&models.Notification{}))
	return db
}

func TestNotificationServicePublishPersistsAndBroadcasts(t *testing.T) {
	db := newNotificationTestDB(t)
	svc := NewNotificationService(repository.NewNotificationRepository(db), nil, "", nil, validator.New(), zerolog.Nop())

	stream, cleanup := svc.Subscribe("user-1")
	defer cleanup()

	published, err := svc.Publish(context.Background(), dto.NotificationCreateRequest{
		UserID:     "user-1",
		SourceType: "LESSON",
		SourceID:   "lesson-1",
		Type:       "lesson_due",
		Message:    "Channels is due tomorrow",
		Metadata:   map[string]string{"lesson_title": "Channels"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, published.NotificationID)
	require.False(t, published.IsRead)
	require.Equal(t, "Channels", published.Metadata["lesson_title"])

	select {
	case received := <-stream:
		require.Equal(t, published.NotificationID, received.NotificationID)
	case <-time.After(time.Second):
		t.Fatal("expected a broadcast notification")
	}

	listed, err := svc.List(context.Background(), "user-1", 10, 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
}

func TestNotificationServicePublishStripsMarkup(t *testing.T) {
	db := newNotificationTestDB(t)
	svc := NewNotificationService(repository.NewNotificationRepository(db), nil, "", nil, validator.New(), zerolog.Nop())

	published, err := svc.Publish(context.Background(), dto.NotificationCreateRequest{
		UserID:  "user-1",
		Message: `<b>lesson</b> <script>alert("x")</script>overdue`,
	})
	require.NoError(t, err)
	require.NotContains(t, published.Message, "<")

	_, err = svc.Publish(context.Background(), dto.NotificationCreateRequest{
		UserID:  "user-1",
		Message: `<script>only markup</script>`,
	})
	require.Error(t, err)
}

func TestNotificationServiceReadLifecycle(t *testing.T) {
	db := newNotificationTestDB(t)
	svc := NewNotificationService(repository.NewNotificationRepository(db), nil, "", nil, validator.New(), zerolog.Nop())

	var ids []string
	for i := 0; i < 3; i++ {
		published, err := svc.Publish(context.Background(), dto.NotificationCreateRequest{
			UserID:  "user-2",
			Message: "lesson reminder",
		})
		require.NoError(t, err)
		ids = append(ids, published.NotificationID)
	}

	unread, err := svc.UnreadCount(context.Background(), "user-2")
	require.NoError(t, err)
	require.Equal(t, int64(3), unread)

	require.NoError(t, svc.MarkRead(context.Background(), ids[0], "user-2"))
	unread, err = svc.UnreadCount(context.Background(), "user-2")
	require.NoError(t, err)
	require.Equal(t, int64(2), unread)

	require.NoError(t, svc.MarkAllRead(context.Background(), "user-2"))
	unread, err = svc.UnreadCount(context.Background(), "user-2")
	require.NoError(t, err)
	require.Zero(t, unread)

	require.NoError(t, svc.Delete(context.Background(), ids[1], "user-2"))
	require.NoError(t, svc.DeleteAll(context.Background(), "user-2"))

	listed, err := svc.List(context.Background(), "user-2", 10, 0)
	require.NoError(t, err)
	require.Empty(t, listed)
}

func TestNotificationServiceFansOutAcrossNodes(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	dbA := newNotificationTestDB(t)
	clientA := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	nodeA := NewNotificationService(repository.NewNotificationRepository(dbA), clientA, "pathway", nil, validator.New(), zerolog.Nop())

	clientB := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	nodeB := NewNotificationService(repository.NewNotificationRepository(dbA), clientB, "pathway", nil, validator.New(), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	nodeB.Start(ctx)

	stream, cleanup := nodeB.Subscribe("user-remote")
	defer cleanup()

	// Give the consumer a moment to establish its subscription.
	time.Sleep(50 * time.Millisecond)

	published, err := nodeA.Publish(context.Background(), dto.NotificationCreateRequest{
		UserID:  "user-remote",
		Message: "published on another node",
	})
	require.NoError(t, err)

	select {
	case received := <-stream:
		require.Equal(t, published.NotificationID, received.NotificationID)
	case <-time.After(2 * time.Second):
		t.Fatal("expected the event to cross nodes via redis")
	}
}
