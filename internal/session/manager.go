package session

import (
	"log/slog"
	"sync"
)

// Observer is notified when sessions open and close.
type Observer interface {
	SessionOpened()
	SessionClosed()
}

// Manager tracks the open sessions of a multi-client deployment.
type Manager struct {
	deps     Deps
	observer Observer
	logger   *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithSessionObserver registers an observer for session lifecycle events.
func WithSessionObserver(o Observer) ManagerOption {
	return func(m *Manager) {
		m.observer = o
	}
}

// NewManager creates a manager that builds sessions from deps.
func NewManager(deps Deps, opts ...ManagerOption) *Manager {
	m := &Manager{
		deps:     deps,
		logger:   deps.Logger,
		sessions: make(map[string]*Session),
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create opens a new session.
func (m *Manager) Create() *Session {
	s := New(m.deps)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	if m.observer != nil {
		m.observer.SessionOpened()
	}
	m.logger.Info("session opened", "session", s.ID)
	return s
}

// Get returns the open session with the given ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Close closes and forgets the session with the given ID.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	m.closeSession(s)
	return nil
}

// CloseAll closes every open session.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	open := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range open {
		m.closeSession(s)
	}
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) closeSession(s *Session) {
	s.Close()
	if m.observer != nil {
		m.observer.SessionClosed()
	}
	m.logger.Info("session closed", "session", s.ID, "age", s.Age())
}
