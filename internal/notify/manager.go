package notify

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/noah-isme/pathway-api/internal/dto"
)

const hydrateLimit = 50

// Source supplies a feed with its initial list, its realtime pushes, and the
// persistence calls behind optimistic mutations.
type Source interface {
	Store
	List(ctx context.Context, userID string, limit, offset int) ([]dto.NotificationResponse, error)
	Subscribe(userID string) (<-chan dto.NotificationResponse, func())
}

// Manager keeps one live feed per user. A feed is hydrated from the source on
// first access and receives realtime pushes until it is released.
type Manager struct {
	source Source
	logger zerolog.Logger

	mu    sync.Mutex
	feeds map[string]*managedFeed
}

type managedFeed struct {
	feed   *Feed
	stop   func()
	closed chan struct{}
}

// NewManager constructs a feed manager around the notification source.
func NewManager(source Source, logger zerolog.Logger) *Manager {
	return &Manager{
		source: source,
		logger: logger.With().Str("component", "notification_feed_manager").Logger(),
		feeds:  make(map[string]*managedFeed),
	}
}

// Feed returns the live feed for the user, hydrating it on first use.
func (m *Manager) Feed(ctx context.Context, userID string) (*Feed, error) {
	m.mu.Lock()
	if entry, ok := m.feeds[userID]; ok {
		m.mu.Unlock()
		return entry.feed, nil
	}
	m.mu.Unlock()

	items, err := m.source.List(ctx, userID, hydrateLimit, 0)
	if err != nil {
		return nil, err
	}

	feed := NewFeed(userID, m.source, m.logger)
	feed.Replace(items)

	stream, cleanup := m.source.Subscribe(userID)
	closed := make(chan struct{})
	entry := &managedFeed{feed: feed, closed: closed}

	var once sync.Once
	entry.stop = func() {
		once.Do(func() {
			cleanup()
			close(closed)
		})
	}

	m.mu.Lock()
	if existing, ok := m.feeds[userID]; ok {
		// Another request raced us; keep the feed that won.
		m.mu.Unlock()
		entry.stop()
		return existing.feed, nil
	}
	m.feeds[userID] = entry
	m.mu.Unlock()

	go func() {
		for {
			select {
			case item, ok := <-stream:
				if !ok {
					return
				}
				feed.Push(item)
			case <-closed:
				return
			}
		}
	}()

	return feed, nil
}

// Release tears down the live feed for the user, if any.
func (m *Manager) Release(userID string) {
	m.mu.Lock()
	entry, ok := m.feeds[userID]
	if ok {
		delete(m.feeds, userID)
	}
	m.mu.Unlock()
	if ok {
		entry.stop()
	}
}
