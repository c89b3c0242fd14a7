package session

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"podium/agent/internal/assistant"
	"podium/agent/internal/transport"
	"podium/agent/internal/types"
)

var (
	ErrUnknownSession = errors.New("unknown session")
	ErrOtherActive    = errors.New("another session is active")
)

// TransportFactory binds a session ID to its command surface.
type TransportFactory func(sessionID string) transport.Transport

// Manager holds all sessions and enforces the single-active-session rule:
// the transport connection is an exclusively owned resource, so starting a
// session while another is live is rejected rather than left undefined.
type Manager struct {
	mu       sync.RWMutex
	opts     Options
	newTr    TransportFactory
	sessions map[string]*Controller
}

func NewManager(newTr TransportFactory, opts Options) *Manager {
	return &Manager{
		opts:     opts,
		newTr:    newTr,
		sessions: make(map[string]*Controller),
	}
}

// Create registers a new session from its setup and returns its controller.
func (m *Manager) Create(setup assistant.Setup) *Controller {
	id := uuid.New().String()
	c := NewController(id, setup, m.newTr(id), m.opts)
	m.mu.Lock()
	m.sessions[id] = c
	m.mu.Unlock()
	return c
}

func (m *Manager) Get(id string) *Controller {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// Known reports whether a session ID exists (used to gate transport
// websocket attachment).
func (m *Manager) Known(id string) bool {
	return m.Get(id) != nil
}

// Start starts the named session, refusing if any other session is not
// INACTIVE.
func (m *Manager) Start(ctx context.Context, id string) error {
	c := m.Get(id)
	if c == nil {
		return ErrUnknownSession
	}
	m.mu.RLock()
	for otherID, other := range m.sessions {
		if otherID != id && other.Status() != types.StatusInactive {
			m.mu.RUnlock()
			return ErrOtherActive
		}
	}
	m.mu.RUnlock()
	return c.Start(ctx)
}

// Stop stops the named session; stopping an unknown session is an error,
// stopping an inactive one is not.
func (m *Manager) Stop(ctx context.Context, id string) error {
	c := m.Get(id)
	if c == nil {
		return ErrUnknownSession
	}
	return c.Stop(ctx)
}

// StopAll stops every non-inactive session, used on server shutdown.
func (m *Manager) StopAll(ctx context.Context) {
	m.mu.RLock()
	live := make([]*Controller, 0, len(m.sessions))
	for _, c := range m.sessions {
		live = append(live, c)
	}
	m.mu.RUnlock()
	for _, c := range live {
		if c.Status() != types.StatusInactive {
			_ = c.Stop(ctx)
		}
	}
}

// HandleEvent routes one decoded transport event to its session.
func (m *Manager) HandleEvent(sessionID string, ev transport.Event) {
	if c := m.Get(sessionID); c != nil {
		c.HandleEvent(ev)
	}
}

// HandleDetach reacts to the transport websocket dropping: an active session
// cannot continue without its event source.
func (m *Manager) HandleDetach(sessionID string) {
	if c := m.Get(sessionID); c != nil && c.Status() != types.StatusInactive {
		c.HandleEvent(transport.Failure{Message: "transport connection lost"})
	}
}
