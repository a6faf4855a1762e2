// Package notify maintains the per-user notification feed: an ordered,
// most-recent-first list with a derived unread counter, merged from initial
// fetches and realtime pushes.
package notify

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/pathway-api/internal/dto"
)

// Store is the persistence collaborator behind the feed's optimistic
// mutations.
type Store interface {
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, id, userID string) error
	DeleteAll(ctx context.Context, userID string) error
}

// PendingOp records a fire-and-forget persistence call that failed. The local
// list stays authoritative; the marker is kept instead of silently dropping
// the failure.
type PendingOp struct {
	Op             string    `json:"op"`
	NotificationID string    `json:"notification_id,omitempty"`
	At             time.Time `json:"at"`
}

// Feed holds one user's ordered notification list. All mutation funnels
// through the feed; the unread counter is recomputed as a pure count of
// unread entries on every change rather than maintained incrementally.
type Feed struct {
	mu      sync.Mutex
	userID  string
	items   []dto.NotificationResponse
	unread  int
	pending []PendingOp
	store   Store
	logger  zerolog.Logger
}

// NewFeed builds an empty feed for one user.
func NewFeed(userID string, store Store, logger zerolog.Logger) *Feed {
	return &Feed{
		userID: userID,
		store:  store,
		logger: logger.With().Str("component", "notification_feed").Str("user_id", userID).Logger(),
	}
}

// Replace installs a freshly fetched list, sorted most-recent-first.
func (f *Feed) Replace(items []dto.NotificationResponse) {
	sorted := make([]dto.NotificationResponse, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SentAt.After(sorted[j].SentAt)
	})

	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = sorted
	f.recountLocked()
}

// Push prepends a realtime notification. Pushes are not deduplicated against
// existing ids; the server owns uniqueness and a repeated id is surfaced
// twice on purpose.
func (f *Feed) Push(item dto.NotificationResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append([]dto.NotificationResponse{item}, f.items...)
	f.recountLocked()
}

// MarkRead flips the entry locally and reconciles with the store. A failed
// store call is recorded as a pending sync marker, never surfaced.
func (f *Feed) MarkRead(ctx context.Context, id string) {
	now := time.Now().UTC()

	f.mu.Lock()
	for i := range f.items {
		if f.items[i].NotificationID == id && !f.items[i].IsRead {
			f.items[i].IsRead = true
			f.items[i].ReadAt = &now
		}
	}
	f.recountLocked()
	f.mu.Unlock()

	if err := f.store.MarkRead(ctx, id, f.userID); err != nil {
		f.recordPending("mark_read", id, err)
	}
}

// MarkAllRead flips every entry locally and reconciles with the store.
func (f *Feed) MarkAllRead(ctx context.Context) {
	now := time.Now().UTC()

	f.mu.Lock()
	for i := range f.items {
		if !f.items[i].IsRead {
			f.items[i].IsRead = true
			f.items[i].ReadAt = &now
		}
	}
	f.recountLocked()
	f.mu.Unlock()

	if err := f.store.MarkAllRead(ctx, f.userID); err != nil {
		f.recordPending("mark_all_read", "", err)
	}
}

// Delete removes the entry locally and reconciles with the store. Every
// occurrence of the id is removed, which also covers duplicated pushes.
func (f *Feed) Delete(ctx context.Context, id string) {
	f.mu.Lock()
	kept := f.items[:0]
	for _, item := range f.items {
		if item.NotificationID == id {
			continue
		}
		kept = append(kept, item)
	}
	f.items = kept
	f.recountLocked()
	f.mu.Unlock()

	if err := f.store.Delete(ctx, id, f.userID); err != nil {
		f.recordPending("delete", id, err)
	}
}

// DeleteAll clears the feed and reconciles with the store.
func (f *Feed) DeleteAll(ctx context.Context) {
	f.mu.Lock()
	f.items = nil
	f.recountLocked()
	f.mu.Unlock()

	if err := f.store.DeleteAll(ctx, f.userID); err != nil {
		f.recordPending("delete_all", "", err)
	}
}

// Snapshot returns a copy of the current list and the unread count.
func (f *Feed) Snapshot() ([]dto.NotificationResponse, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := make([]dto.NotificationResponse, len(f.items))
	copy(items, f.items)
	return items, f.unread
}

// UnreadCount returns the derived unread counter.
func (f *Feed) UnreadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unread
}

// PendingSync returns the recorded reconciliation failures.
func (f *Feed) PendingSync() []PendingOp {
	f.mu.Lock()
	defer f.mu.Unlock()
	pending := make([]PendingOp, len(f.pending))
	copy(pending, f.pending)
	return pending
}

func (f *Feed) recordPending(op, id string, err error) {
	f.logger.Warn().Err(err).Str("op", op).Str("notification_id", id).Msg("notification sync failed, keeping local state")

	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = append(f.pending, PendingOp{Op: op, NotificationID: id, At: time.Now().UTC()})
}

func (f *Feed) recountLocked() {
	count := 0
	for _, item := range f.items {
		if !item.IsRead {
			count++
		}
	}
	f.unread = count
}
