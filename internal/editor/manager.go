package editor

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/noah-isme/pathway-api/internal/tree"
)

// Manager keeps one live editing session per learning path. Sessions are
// created on first open and torn down when the editor is closed; a session
// never outlives the manager.
type Manager struct {
	api    API
	idgen  tree.IDGenerator
	logger zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager constructs a session manager around the persistence API.
func NewManager(api API, logger zerolog.Logger) *Manager {
	return &Manager{
		api:      api,
		idgen:    tree.NewIDGenerator(),
		logger:   logger.With().Str("component", "editor_manager").Logger(),
		sessions: make(map[string]*Session),
	}
}

// Open returns the live session for the path, loading it on first use.
func (m *Manager) Open(ctx context.Context, pathID string) (*Session, error) {
	m.mu.Lock()
	session, ok := m.sessions[pathID]
	m.mu.Unlock()
	if ok {
		return session, nil
	}

	session = NewSession(pathID, m.api, m.idgen, m.logger)
	if err := session.Load(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sessions[pathID]; ok {
		// Another open raced us; keep the session that won.
		return existing, nil
	}
	m.sessions[pathID] = session
	return session, nil
}

// Get returns the live session without loading.
func (m *Manager) Get(pathID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[pathID]
	return session, ok
}

// Close discards the live session for the path.
func (m *Manager) Close(pathID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, pathID)
}
