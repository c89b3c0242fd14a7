package transport

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	ws "nhooyr.io/websocket"
)

var ErrNotAttached = errors.New("no transport connection for session")

// Registry keeps at most one transport connection per session.
type Registry struct {
	mu    sync.Mutex
	conns map[string]*ws.Conn
}

func NewRegistry() *Registry { return &Registry{conns: make(map[string]*ws.Conn)} }

// Replace sets the connection for a session and closes the previous one if present.
func (r *Registry) Replace(sessionID string, c *ws.Conn) (prevClosed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.conns[sessionID]; ok && old != nil {
		_ = old.Close(ws.StatusNormalClosure, "replaced")
		prevClosed = true
	}
	r.conns[sessionID] = c
	return
}

func (r *Registry) Remove(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, sessionID)
}

func (r *Registry) send(ctx context.Context, sessionID string, v any) error {
	r.mu.Lock()
	c := r.conns[sessionID]
	r.mu.Unlock()
	if c == nil {
		return ErrNotAttached
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Write(ctx, ws.MessageText, b)
}

// ForSession binds the registry to one session as a Transport.
func (r *Registry) ForSession(sessionID string) Transport {
	return &wsTransport{reg: r, sessionID: sessionID}
}

// wsTransport issues commands to the voice transport as JSON frames on the
// session's websocket.
type wsTransport struct {
	reg       *Registry
	sessionID string
}

type commandFrame struct {
	Type          string         `json:"type"`
	SessionConfig *SessionConfig `json:"session_config,omitempty"`
	Role          string         `json:"role,omitempty"`
	Content       string         `json:"content,omitempty"`
}

func (t *wsTransport) Connect(ctx context.Context, cfg SessionConfig) error {
	return t.reg.send(ctx, t.sessionID, commandFrame{Type: "connect", SessionConfig: &cfg})
}

func (t *wsTransport) Disconnect(ctx context.Context) error {
	err := t.reg.send(ctx, t.sessionID, commandFrame{Type: "disconnect"})
	if errors.Is(err, ErrNotAttached) {
		// Already gone; disconnect is idempotent.
		return nil
	}
	return err
}

func (t *wsTransport) SendSystemMessage(ctx context.Context, text string) error {
	return t.reg.send(ctx, t.sessionID, commandFrame{Type: "add-message", Role: "system", Content: text})
}

func (t *wsTransport) SendUserMessage(ctx context.Context, text string) error {
	return t.reg.send(ctx, t.sessionID, commandFrame{Type: "add-message", Role: "user", Content: text})
}
