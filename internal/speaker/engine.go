package speaker

import (
	"strings"

	"podium/agent/internal/types"
)

// State is the single source of truth for who has the floor right now.
type State struct {
	// CurrentSpeaker is a participant ID, or "" while the floor is unassigned.
	CurrentSpeaker string `json:"current_speaker"`
	IsSpeechActive bool   `json:"is_speech_active"`
	IsUserTurn     bool   `json:"is_user_turn"`
	// PendingHumanTransfer bridges the gap between an AI's hand-off intent and
	// the transport's confirmation that its audio has actually stopped.
	PendingHumanTransfer bool `json:"pending_human_transfer"`
	// LastAISpeaker corrects against speech-start events that fire for the new
	// AI speaker before any transfer confirmation arrives.
	LastAISpeaker  string `json:"last_ai_speaker"`
	UserIsSpeaking bool   `json:"user_is_speaking"`
}

// Engine reconciles three asynchronous signal sources (transfer events,
// speech start/end, transcript role hints) into one authoritative speaker.
//
// It is deliberately permissive: events arriving out of the expected order
// resolve last-write-wins, and no event is ever rejected. The transport is an
// untrusted source of truth.
//
// The engine is not safe for concurrent use; the session controller
// serializes all calls.
type Engine struct {
	st              State
	roster          []types.Participant
	minPartialChars int
}

func New(roster []types.Participant, minPartialChars int) *Engine {
	e := &Engine{minPartialChars: minPartialChars}
	e.Reset(roster)
	return e
}

// Reset clears all floor state and installs a fresh roster.
func (e *Engine) Reset(roster []types.Participant) {
	e.st = State{}
	e.roster = make([]types.Participant, len(roster))
	copy(e.roster, roster)
}

// OnTransferConfirmed handles the transport's transfer signal. A transfer to
// an AI participant is authoritative and commits immediately. A transfer
// naming the human is an intent only: the outgoing AI is usually still
// finishing its sentence, so the commit is deferred to speech end.
func (e *Engine) OnTransferConfirmed(destinationID string) {
	if destinationID == "" {
		return
	}
	if destinationID == types.ParticipantUser {
		e.st.PendingHumanTransfer = true
		return
	}
	e.st.CurrentSpeaker = destinationID
	e.st.LastAISpeaker = destinationID
	e.st.IsUserTurn = false
	// An AI-to-AI transfer supersedes any pending hand-off to the human.
	e.st.PendingHumanTransfer = false
	e.setActive(destinationID)
}

// OnSpeechStart handles the transport's speaker-agnostic "audio is playing"
// signal. If the human is not speaking, the speaker is assumed to be the last
// known AI: after a transfer this event can fire for the new AI before the
// transfer confirmation lands.
func (e *Engine) OnSpeechStart() {
	e.st.IsSpeechActive = true
	e.st.IsUserTurn = false
	if !e.st.UserIsSpeaking && e.st.LastAISpeaker != "" {
		e.st.CurrentSpeaker = e.st.LastAISpeaker
		e.setActive(e.st.LastAISpeaker)
	}
}

// OnSpeechEnd commits a pending human hand-off now that the AI's audio has
// fully finished. With no pending transfer the current speaker is left
// untouched; the next explicit signal decides.
func (e *Engine) OnSpeechEnd() {
	e.st.IsSpeechActive = false
	if !e.st.PendingHumanTransfer {
		e.st.IsUserTurn = false
		return
	}
	e.st.PendingHumanTransfer = false
	e.st.CurrentSpeaker = types.ParticipantUser
	e.st.IsUserTurn = true
	e.st.UserIsSpeaking = true
	e.setActive(types.ParticipantUser)
}

// OnPartialTranscript treats a human-attributed partial as high-confidence
// evidence the user took the floor: some transports never emit a formal
// speech-start for the local microphone. Fragments shorter than the
// configured minimum are ignored as noise.
func (e *Engine) OnPartialTranscript(role types.Role, text string) {
	if role != types.RoleHuman {
		return
	}
	if len(strings.TrimSpace(text)) < e.minPartialChars {
		return
	}
	e.claimHumanFloor()
}

// OnFinalTranscript updates the human-speech flag from finalized utterances.
func (e *Engine) OnFinalTranscript(role types.Role, text string) {
	if role == types.RoleHuman {
		e.claimHumanFloor()
		return
	}
	e.st.UserIsSpeaking = false
}

// RequestHumanFloor is the manual override for UI-driven "take the floor"
// controls. It bypasses the pending-transfer dance entirely.
func (e *Engine) RequestHumanFloor() {
	e.st.PendingHumanTransfer = false
	e.claimHumanFloor()
}

// TransferToAI is the manual override handing the floor to a named AI
// participant.
func (e *Engine) TransferToAI(participantID string) {
	e.st.CurrentSpeaker = participantID
	e.st.LastAISpeaker = participantID
	e.st.IsUserTurn = false
	e.st.PendingHumanTransfer = false
	e.setActive(participantID)
}

func (e *Engine) claimHumanFloor() {
	e.st.UserIsSpeaking = true
	if e.st.CurrentSpeaker != types.ParticipantUser {
		e.st.CurrentSpeaker = types.ParticipantUser
		e.st.IsUserTurn = true
		e.setActive(types.ParticipantUser)
	}
}

func (e *Engine) setActive(id string) {
	for i := range e.roster {
		e.roster[i].IsActive = e.roster[i].ID == id
	}
}

// State returns a snapshot of the floor state.
func (e *Engine) State() State { return e.st }

// Roster returns a copy of the participant roster with active flags.
func (e *Engine) Roster() []types.Participant {
	out := make([]types.Participant, len(e.roster))
	copy(out, e.roster)
	return out
}
