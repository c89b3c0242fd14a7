package session

import (
	"context"
	"time"

	"podium/agent/internal/agenda"
	"podium/agent/internal/assistant"
	"podium/agent/internal/handraise"
	"podium/agent/internal/speaker"
	"podium/agent/internal/transcript"
	"podium/agent/internal/types"
)

// ops.go groups the user/system-initiated commands and the read-only
// snapshot. These are synchronous state transitions; only the message sends
// touch the transport.

// AdvancePhase moves the agenda cursor forward and announces the new phase
// in-band. At the last phase it is a no-op.
func (c *Controller) AdvancePhase(ctx context.Context) (agenda.Phase, error) {
	c.mu.Lock()
	if c.status != types.StatusActive || c.seq == nil {
		c.mu.Unlock()
		return agenda.Phase{}, ErrSessionInactive
	}
	wasLast := c.seq.IsLast()
	c.seq.Advance()
	cur := c.seq.Current()
	c.setup.Phase = cur.Code
	c.reconcileIdleLocked()
	c.mu.Unlock()

	if !wasLast {
		metricPhaseAdvances.Inc()
		_ = c.tr.SendSystemMessage(ctx, assistant.PhaseUpdateMessage(cur.DisplayName, cur.DurationSeconds))
	}
	return cur, nil
}

// WarnTime sends the low-time stage direction for the current phase. The UI
// drives when to call it; the server only knows the nominal remaining time.
func (c *Controller) WarnTime(ctx context.Context) error {
	c.mu.Lock()
	if c.status != types.StatusActive || c.seq == nil {
		c.mu.Unlock()
		return ErrSessionInactive
	}
	remaining := int(c.seq.Remaining() / time.Second)
	c.mu.Unlock()
	return c.tr.SendSystemMessage(ctx, assistant.TimeWarningMessage(remaining))
}

// RaiseHand queues a floor request.
func (c *Controller) RaiseHand(requesterID string, qt handraise.QuestionType, preview string, urgency handraise.Urgency) (handraise.FloorRequest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != types.StatusActive {
		return handraise.FloorRequest{}, ErrSessionInactive
	}
	return c.hands.Request(requesterID, qt, preview, urgency), nil
}

// AcknowledgeHand resolves a request and routes the floor to its requester:
// the human through the manual-override path, an AI through the transfer
// path.
func (c *Controller) AcknowledgeHand(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != types.StatusActive {
		return ErrSessionInactive
	}
	req, ok := c.hands.Acknowledge(id)
	if !ok {
		return ErrUnknownHand
	}
	if req.RequesterID == types.ParticipantUser {
		c.engine.RequestHumanFloor()
	} else {
		c.engine.TransferToAI(req.RequesterID)
	}
	c.reconcileIdleLocked()
	return nil
}

// DismissHand discards a request with no side effect.
func (c *Controller) DismissHand(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != types.StatusActive {
		return ErrSessionInactive
	}
	if !c.hands.Dismiss(id) {
		return ErrUnknownHand
	}
	return nil
}

// TakeFloor is the UI-driven "take the floor" control for the human.
func (c *Controller) TakeFloor() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != types.StatusActive {
		return ErrSessionInactive
	}
	c.engine.RequestHumanFloor()
	c.reconcileIdleLocked()
	return nil
}

// TransferTo hands the floor to a named AI participant.
func (c *Controller) TransferTo(participantID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != types.StatusActive {
		return ErrSessionInactive
	}
	c.engine.TransferToAI(participantID)
	c.reconcileIdleLocked()
	return nil
}

// PassMicrophone is the explicit "I'm done, your turn" control.
func (c *Controller) PassMicrophone(ctx context.Context) error {
	c.mu.Lock()
	if c.status != types.StatusActive {
		c.mu.Unlock()
		return ErrSessionInactive
	}
	c.mu.Unlock()
	return c.tr.SendSystemMessage(ctx, assistant.PassMicrophoneMessage)
}

// SendMessage forwards a user or system message in-band.
func (c *Controller) SendMessage(ctx context.Context, role, text string) error {
	c.mu.Lock()
	if c.status != types.StatusActive {
		c.mu.Unlock()
		return ErrSessionInactive
	}
	c.mu.Unlock()
	if role == "system" {
		return c.tr.SendSystemMessage(ctx, text)
	}
	return c.tr.SendUserMessage(ctx, text)
}

// PhaseInfo is the agenda position exposed to the UI.
type PhaseInfo struct {
	Current          agenda.Phase `json:"current"`
	Index            int          `json:"index"`
	Total            int          `json:"total"`
	RemainingSeconds int          `json:"remaining_seconds"`
}

// Snapshot is the read-only view of a session.
type Snapshot struct {
	ID           string                    `json:"id"`
	Status       types.CallStatus          `json:"status"`
	Error        string                    `json:"error,omitempty"`
	CallID       string                    `json:"call_id,omitempty"`
	AudioLevel   float64                   `json:"audio_level"`
	Speaker      speaker.State             `json:"speaker"`
	Participants []types.Participant       `json:"participants"`
	Phase        *PhaseInfo                `json:"phase,omitempty"`
	RaisedHands  []handraise.FloorRequest  `json:"raised_hands"`
	Partial      *transcript.Partial       `json:"active_transcript,omitempty"`
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{
		ID:           c.id,
		Status:       c.status,
		Error:        c.errMsg,
		CallID:       c.callID,
		AudioLevel:   c.audioLevel,
		Speaker:      c.engine.State(),
		Participants: c.engine.Roster(),
		RaisedHands:  c.hands.List(),
		Partial:      c.script.Active(),
	}
	if c.seq != nil {
		s.Phase = &PhaseInfo{
			Current:          c.seq.Current(),
			Index:            c.seq.Index(),
			Total:            len(c.seq.Phases()),
			RemainingSeconds: int(c.seq.Remaining() / time.Second),
		}
	}
	return s
}

// TranscriptView is the finalized history plus display labels.
type TranscriptView struct {
	Entries []TranscriptLine `json:"entries"`
}

type TranscriptLine struct {
	types.TranscriptEntry
	Elapsed string `json:"elapsed"`
}

func (c *Controller) Transcript() TranscriptView {
	c.mu.Lock()
	defer c.mu.Unlock()
	hist := c.script.History()
	out := TranscriptView{Entries: make([]TranscriptLine, 0, len(hist))}
	for _, e := range hist {
		out.Entries = append(out.Entries, TranscriptLine{TranscriptEntry: e, Elapsed: c.script.ElapsedLabel(e)})
	}
	return out
}

// ExportTranscript returns the plain-text debate record.
func (c *Controller) ExportTranscript() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.script.Export()
}
