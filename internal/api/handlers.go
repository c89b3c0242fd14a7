package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"podium/agent/internal/analysis"
	"podium/agent/internal/assistant"
	"podium/agent/internal/auth"
	"podium/agent/internal/config"
	"podium/agent/internal/handraise"
	"podium/agent/internal/notes"
	"podium/agent/internal/session"
)

type Handlers struct {
	cfg      config.Config
	mgr      *session.Manager
	analysis analysis.Client
	notes    *notes.Store
}

func NewHandlers(cfg config.Config, mgr *session.Manager, an analysis.Client, ns *notes.Store) *Handlers {
	return &Handlers{cfg: cfg, mgr: mgr, analysis: an, notes: ns}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func sessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrUnknownSession), errors.Is(err, session.ErrUnknownHand):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, session.ErrSessionActive), errors.Is(err, session.ErrOtherActive),
		errors.Is(err, session.ErrSessionInactive):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}

func (h *Handlers) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	var setup assistant.Setup
	if err := json.NewDecoder(r.Body).Decode(&setup); err != nil {
		http.Error(w, "invalid body: "+err.Error(), http.StatusBadRequest)
		return
	}
	c := h.mgr.Create(setup)
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": c.ID(),
		"state":      c.Snapshot(),
	})
}

func (h *Handlers) HandleStartSession(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.mgr.Start(r.Context(), id); err != nil {
		sessionError(w, err)
		return
	}
	c := h.mgr.Get(id)
	writeJSON(w, http.StatusOK, c.Snapshot())
}

func (h *Handlers) HandleStopSession(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.mgr.Stop(r.Context(), id); err != nil {
		sessionError(w, err)
		return
	}
	c := h.mgr.Get(id)
	writeJSON(w, http.StatusOK, c.Snapshot())
}

func (h *Handlers) HandleSessionState(w http.ResponseWriter, r *http.Request, id string) {
	c := h.mgr.Get(id)
	if c == nil {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, c.Snapshot())
}

func (h *Handlers) HandleTranscript(w http.ResponseWriter, r *http.Request, id string) {
	c := h.mgr.Get(id)
	if c == nil {
		http.NotFound(w, r)
		return
	}
	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(c.ExportTranscript()))
		return
	}
	writeJSON(w, http.StatusOK, c.Transcript())
}

func (h *Handlers) HandleAdvancePhase(w http.ResponseWriter, r *http.Request, id string) {
	c := h.mgr.Get(id)
	if c == nil {
		http.NotFound(w, r)
		return
	}
	cur, err := c.AdvancePhase(r.Context())
	if err != nil {
		sessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"phase": cur})
}

func (h *Handlers) HandleWarnTime(w http.ResponseWriter, r *http.Request, id string) {
	c := h.mgr.Get(id)
	if c == nil {
		http.NotFound(w, r)
		return
	}
	if err := c.WarnTime(r.Context()); err != nil {
		sessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handlers) HandleListHands(w http.ResponseWriter, r *http.Request, id string) {
	c := h.mgr.Get(id)
	if c == nil {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"raised_hands": c.Snapshot().RaisedHands})
}

func (h *Handlers) HandleRaiseHand(w http.ResponseWriter, r *http.Request, id string) {
	c := h.mgr.Get(id)
	if c == nil {
		http.NotFound(w, r)
		return
	}
	var body struct {
		RequesterID  string `json:"requester_id"`
		QuestionType string `json:"question_type"`
		Preview      string `json:"preview"`
		Urgency      string `json:"urgency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if body.RequesterID == "" {
		http.Error(w, "requester_id required", http.StatusBadRequest)
		return
	}
	req, err := c.RaiseHand(body.RequesterID, handraise.QuestionType(body.QuestionType),
		body.Preview, handraise.Urgency(body.Urgency))
	if err != nil {
		sessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (h *Handlers) HandleResolveHand(w http.ResponseWriter, r *http.Request, id, handID, action string) {
	c := h.mgr.Get(id)
	if c == nil {
		http.NotFound(w, r)
		return
	}
	var err error
	switch action {
	case "acknowledge":
		err = c.AcknowledgeHand(handID)
	case "dismiss":
		err = c.DismissHand(handID)
	}
	if err != nil {
		sessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c.Snapshot())
}

func (h *Handlers) HandleFloorAction(w http.ResponseWriter, r *http.Request, id, action string) {
	c := h.mgr.Get(id)
	if c == nil {
		http.NotFound(w, r)
		return
	}
	var err error
	switch action {
	case "take":
		err = c.TakeFloor()
	case "pass":
		err = c.PassMicrophone(r.Context())
	case "transfer":
		var body struct {
			ParticipantID string `json:"participant_id"`
		}
		if derr := json.NewDecoder(r.Body).Decode(&body); derr != nil || body.ParticipantID == "" {
			http.Error(w, "participant_id required", http.StatusBadRequest)
			return
		}
		err = c.TransferTo(body.ParticipantID)
	default:
		http.NotFound(w, r)
		return
	}
	if err != nil {
		sessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c.Snapshot())
}

func (h *Handlers) HandleSendMessage(w http.ResponseWriter, r *http.Request, id string) {
	c := h.mgr.Get(id)
	if c == nil {
		http.NotFound(w, r)
		return
	}
	var body struct {
		Role string `json:"role"`
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if body.Role != "system" && body.Role != "user" {
		http.Error(w, "role must be system or user", http.StatusBadRequest)
		return
	}
	if err := c.SendMessage(r.Context(), body.Role, body.Text); err != nil {
		sessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// HandleMintTransportToken issues the short-lived credential the realtime
// worker presents on its websocket.
func (h *Handlers) HandleMintTransportToken(w http.ResponseWriter, r *http.Request, id string) {
	if !h.mgr.Known(id) {
		http.NotFound(w, r)
		return
	}
	exp := time.Now().Add(time.Duration(h.cfg.Transport.TokenExpMin) * time.Minute).Unix()
	token := auth.GenerateTransportToken(h.cfg.Transport.TokenSecret, id, exp)
	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"exp":   exp,
	})
}

// HandleSessionAnalysis resolves the session's provider call ID, then fetches
// its post-call report. Works after the session has ended.
func (h *Handlers) HandleSessionAnalysis(w http.ResponseWriter, r *http.Request, id string) {
	c := h.mgr.Get(id)
	if c == nil {
		http.NotFound(w, r)
		return
	}
	callID := c.LastCallID()
	if callID == "" {
		http.Error(w, "session has no call yet", http.StatusConflict)
		return
	}
	h.HandleAnalysis(w, r, callID)
}

func (h *Handlers) HandleAnalysis(w http.ResponseWriter, r *http.Request, callID string) {
	if h.analysis == nil {
		http.Error(w, "analysis not configured", http.StatusServiceUnavailable)
		return
	}
	rep, err := h.analysis.FetchCallReport(r.Context(), callID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *Handlers) HandleSaveNotes(w http.ResponseWriter, r *http.Request, id string) {
	var body struct {
		Notes   string          `json:"notes"`
		Session json.RawMessage `json:"session"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body: "+err.Error(), http.StatusBadRequest)
		return
	}
	rec := h.notes.Save(id, body.Notes, body.Session)
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handlers) HandleGetNotes(w http.ResponseWriter, r *http.Request, id string) {
	rec, ok := h.notes.Get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handlers) HandleLastNotes(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.notes.Last()
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
