package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pathway-api/internal/dto"
)

type fakeStore struct {
	markReadErr    error
	markAllReadErr error
	deleteErr      error
	deleteAllErr   error
	markReadCalls  []string
	deleteCalls    []string
}

func (s *fakeStore) MarkRead(ctx context.Context, id, userID string) error {
	s.markReadCalls = append(s.markReadCalls, id)
	return s.markReadErr
}

func (s *fakeStore) MarkAllRead(ctx context.Context, userID string) error {
	return s.markAllReadErr
}

func (s *fakeStore) Delete(ctx context.Context, id, userID string) error {
	s.deleteCalls = append(s.deleteCalls, id)
	return s.deleteErr
}

func (s *fakeStore) DeleteAll(ctx context.Context, userID string) error {
	return s.deleteAllErr
}

func notification(id string, sentAt time.Time, read bool) dto.NotificationResponse {
	return dto.NotificationResponse{
		NotificationID: id,
		UserID:         "user-1",
		Type:           "generic",
		Message:        "message " + id,
		IsRead:         read,
		SentAt:         sentAt,
	}
}

func TestFeedReplaceSortsMostRecentFirst(t *testing.T) {
	feed := NewFeed("user-1", &fakeStore{}, zerolog.Nop())
	base := time.Now()

	feed.Replace([]dto.NotificationResponse{
		notification("old", base.Add(-time.Hour), true),
		notification("new", base, false),
		notification("mid", base.Add(-time.Minute), false),
	})

	items, unread := feed.Snapshot()
	require.Equal(t, []string{"new", "mid", "old"}, []string{items[0].NotificationID, items[1].NotificationID, items[2].NotificationID})
	require.Equal(t, 2, unread)
}

func TestFeedPushPrependsWithoutDedupe(t *testing.T) {
	feed := NewFeed("user-1", &fakeStore{}, zerolog.Nop())
	base := time.Now()
	feed.Replace([]dto.NotificationResponse{notification("n1", base, false)})

	// A push carrying an id already present is appended again; the server
	// owns uniqueness.
	feed.Push(notification("n1", base.Add(time.Second), false))

	items, unread := feed.Snapshot()
	require.Len(t, items, 2)
	require.Equal(t, "n1", items[0].NotificationID)
	require.Equal(t, "n1", items[1].NotificationID)
	require.Equal(t, 2, unread, "unread equals the count of unread entries including the duplicate")
}

func TestFeedMarkReadIsOptimistic(t *testing.T) {
	store := &fakeStore{markReadErr: errors.New("boom")}
	feed := NewFeed("user-1", store, zerolog.Nop())
	feed.Replace([]dto.NotificationResponse{notification("n1", time.Now(), false)})

	feed.MarkRead(context.Background(), "n1")

	items, unread := feed.Snapshot()
	require.True(t, items[0].IsRead)
	require.NotNil(t, items[0].ReadAt)
	require.Equal(t, 0, unread)
	require.Equal(t, []string{"n1"}, store.markReadCalls)

	// The failed reconcile is recorded, not surfaced.
	pending := feed.PendingSync()
	require.Len(t, pending, 1)
	require.Equal(t, "mark_read", pending[0].Op)
	require.Equal(t, "n1", pending[0].NotificationID)
}

func TestFeedMarkAllRead(t *testing.T) {
	feed := NewFeed("user-1", &fakeStore{}, zerolog.Nop())
	base := time.Now()
	feed.Replace([]dto.NotificationResponse{
		notification("n1", base, false),
		notification("n2", base.Add(-time.Minute), false),
	})

	feed.MarkAllRead(context.Background())

	require.Equal(t, 0, feed.UnreadCount())
	require.Empty(t, feed.PendingSync())
}

func TestFeedDeleteRemovesEveryOccurrence(t *testing.T) {
	store := &fakeStore{}
	feed := NewFeed("user-1", store, zerolog.Nop())
	base := time.Now()
	feed.Replace([]dto.NotificationResponse{notification("n1", base, false)})
	feed.Push(notification("n1", base.Add(time.Second), false))

	feed.Delete(context.Background(), "n1")

	items, unread := feed.Snapshot()
	require.Empty(t, items)
	require.Equal(t, 0, unread)
	require.Equal(t, []string{"n1"}, store.deleteCalls)
}

func TestFeedDeleteAllFailureKeepsLocalState(t *testing.T) {
	feed := NewFeed("user-1", &fakeStore{deleteAllErr: errors.New("down")}, zerolog.Nop())
	feed.Replace([]dto.NotificationResponse{notification("n1", time.Now(), false)})

	feed.DeleteAll(context.Background())

	items, _ := feed.Snapshot()
	require.Empty(t, items, "local state is authoritative until the next full refetch")
	pending := feed.PendingSync()
	require.Len(t, pending, 1)
	require.Equal(t, "delete_all", pending[0].Op)
}
