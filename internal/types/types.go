package types

import "time"

// ParticipantKind distinguishes the three voice actor categories in a debate.
type ParticipantKind string

const (
	KindHuman     ParticipantKind = "human"
	KindModerator ParticipantKind = "ai-moderator"
	KindPanelist  ParticipantKind = "ai-panelist"
)

// Well-known participant IDs. Panelists are panelist_0, panelist_1, ...
const (
	ParticipantUser      = "user"
	ParticipantModerator = "moderator"
)

// Participant is one voice actor in a session. Membership is fixed for the
// session's lifetime once started.
type Participant struct {
	ID          string          `json:"id"`
	Kind        ParticipantKind `json:"kind"`
	DisplayName string          `json:"display_name"`
	IsActive    bool            `json:"is_active"`
}

// Role is the speaker attribution carried on transcript events. The transport
// only distinguishes the human from everyone else.
type Role string

const (
	RoleHuman     Role = "user"
	RoleAssistant Role = "assistant"
)

// CallStatus is the coarse session lifecycle state.
type CallStatus string

const (
	StatusInactive   CallStatus = "inactive"
	StatusConnecting CallStatus = "connecting"
	StatusActive     CallStatus = "active"
	StatusEnding     CallStatus = "ending"
)

// TranscriptEntry is one finalized utterance. Never mutated after creation.
type TranscriptEntry struct {
	SpeakerID  string    `json:"speaker_id"`
	Text       string    `json:"text"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Format selects the structured debate agenda.
type Format string

const (
	FormatLincolnDouglas Format = "lincoln-douglas"
	FormatPanel          Format = "panel"
)
