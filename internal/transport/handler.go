package transport

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	ws "nhooyr.io/websocket"

	"podium/agent/internal/auth"
)

// EventSink receives decoded events for a session, in arrival order.
type EventSink func(sessionID string, ev Event)

// Server accepts the voice transport's websocket and pumps its frames,
// decoded, into the sink.
type Server struct {
	TokenSecret   string
	TokenSkewSecs int
	Reg           *Registry
	OnEvent       EventSink
	// KnownSession reports whether a session ID may attach.
	KnownSession func(sessionID string) bool
	// OnDetach is called after the connection is removed from the registry.
	OnDetach func(sessionID string)
}

func (s *Server) HandleTransportWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		http.Error(w, "missing session_id", http.StatusBadRequest)
		return
	}
	if s.KnownSession != nil && !s.KnownSession(sessionID) {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}
	authz := r.Header.Get("Authorization")
	if !strings.HasPrefix(authz, "Bearer ") {
		http.Error(w, "missing bearer token", http.StatusUnauthorized)
		return
	}
	if s.TokenSecret == "" {
		http.Error(w, "transport auth not configured", http.StatusUnauthorized)
		return
	}
	token := strings.TrimPrefix(authz, "Bearer ")
	if _, err := auth.ValidateTransportToken(s.TokenSecret, token, sessionID, time.Now(), s.TokenSkewSecs); err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	c, err := ws.Accept(w, r, nil)
	if err != nil {
		log.Printf("[transport] ws accept: %v", err)
		return
	}
	if s.Reg.Replace(sessionID, c) {
		log.Printf("[transport] replaced connection sid=%s", sessionID)
	}
	log.Printf("[transport] connected sid=%s", sessionID)

	// The read loop is the one goroutine delivering this session's events, so
	// the core sees them strictly in arrival order.
	ctx := r.Context()
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			break
		}
		if typ != ws.MessageText && typ != ws.MessageBinary {
			continue
		}
		ev, err := Decode(data)
		if err != nil {
			if errors.Is(err, ErrUnknownKind) {
				continue
			}
			log.Printf("[transport] bad frame sid=%s: %v", sessionID, err)
			continue
		}
		if s.OnEvent != nil {
			s.OnEvent(sessionID, ev)
		}
	}
	_ = c.Close(ws.StatusNormalClosure, "done")
	s.Reg.Remove(sessionID)
	log.Printf("[transport] disconnected sid=%s", sessionID)
	if s.OnDetach != nil {
		s.OnDetach(sessionID)
	}
}
