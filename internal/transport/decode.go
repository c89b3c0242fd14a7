package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"podium/agent/internal/types"
)

var ErrUnknownKind = errors.New("unknown event kind")

// wireMessage is the transport's frame shape: one tag plus overlapping
// optional fields. It exists only inside this file.
type wireMessage struct {
	Type           string  `json:"type"`
	Level          float64 `json:"level,omitempty"`
	Role           string  `json:"role,omitempty"`
	Transcript     string  `json:"transcript,omitempty"`
	TranscriptType string  `json:"transcript_type,omitempty"`
	Timestamp      string  `json:"timestamp,omitempty"`
	CallID         string  `json:"call_id,omitempty"`
	Message        string  `json:"message,omitempty"`
	Destination    struct {
		ParticipantID string `json:"participant_id"`
	} `json:"destination,omitempty"`
}

// Decode parses one transport frame into its typed event. Frames of a kind we
// do not know yield ErrUnknownKind so callers can skip them without treating
// the connection as broken.
func Decode(data []byte) (Event, error) {
	var w wireMessage
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode transport frame: %w", err)
	}

	switch w.Type {
	case "speech-start":
		return SpeechStart{}, nil
	case "speech-end":
		return SpeechEnd{}, nil
	case "volume-level":
		return VolumeLevel{Level: w.Level}, nil
	case "transcript":
		role := types.RoleAssistant
		if w.Role == string(types.RoleHuman) {
			role = types.RoleHuman
		}
		var ts time.Time
		if w.Timestamp != "" {
			// A bad claimed timestamp is treated as absent, not as an error.
			ts, _ = time.Parse(time.RFC3339, w.Timestamp)
		}
		return Transcript{
			Role:      role,
			Text:      w.Transcript,
			IsPartial: w.TranscriptType == "partial",
			Timestamp: ts,
		}, nil
	case "transfer-update":
		return TransferConfirmed{DestinationID: w.Destination.ParticipantID}, nil
	case "call-start":
		return CallStarted{CallID: w.CallID}, nil
	case "call-end":
		return CallEnded{}, nil
	case "error":
		return Failure{Message: w.Message}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, w.Type)
	}
}
