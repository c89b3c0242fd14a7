package transport

import (
	"time"

	"podium/agent/internal/types"
)

// Event is the closed set of signals the realtime-voice transport can
// deliver. Each kind carries its own payload; decoding from the wire happens
// once, in decode.go, before anything reaches the core.
type Event interface {
	isEvent()
}

// SpeechStart reports that audio is now playing. The transport does not say
// from whom.
type SpeechStart struct{}

// SpeechEnd reports that audio has stopped.
type SpeechEnd struct{}

// VolumeLevel is the current output level, 0..1.
type VolumeLevel struct {
	Level float64
}

// Transcript is a partial or final speech-to-text result.
type Transcript struct {
	Role      types.Role
	Text      string
	IsPartial bool
	// Timestamp is the transport's own claim; zero when absent.
	Timestamp time.Time
}

// TransferConfirmed is the authoritative signal that active audio routing has
// switched to a specific AI participant.
type TransferConfirmed struct {
	DestinationID string
}

// CallStarted confirms the transport connected and the call is live.
type CallStarted struct {
	CallID string
}

// CallEnded reports the transport tore the call down.
type CallEnded struct{}

// Failure is a mid-call or connect error surfaced by the transport.
type Failure struct {
	Message string
}

func (SpeechStart) isEvent()       {}
func (SpeechEnd) isEvent()         {}
func (VolumeLevel) isEvent()       {}
func (Transcript) isEvent()        {}
func (TransferConfirmed) isEvent() {}
func (CallStarted) isEvent()       {}
func (CallEnded) isEvent()         {}
func (Failure) isEvent()           {}
