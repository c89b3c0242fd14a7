package transport

import "context"

// SessionConfig is the payload handed to Connect. The assistant configuration
// is opaque to the core; it is assembled by internal/assistant and passed
// through verbatim.
type SessionConfig struct {
	SessionID       string         `json:"session_id"`
	AssistantConfig map[string]any `json:"assistant_config"`
}

// Transport is the command surface of the realtime-voice collaborator.
// Connect and Disconnect await the transport's acknowledgement; the message
// sends are fire-and-forget frames.
type Transport interface {
	Connect(ctx context.Context, cfg SessionConfig) error
	Disconnect(ctx context.Context) error
	SendSystemMessage(ctx context.Context, text string) error
	SendUserMessage(ctx context.Context, text string) error
}
