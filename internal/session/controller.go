package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"podium/agent/internal/agenda"
	"podium/agent/internal/assistant"
	"podium/agent/internal/handraise"
	"podium/agent/internal/speaker"
	"podium/agent/internal/transcript"
	"podium/agent/internal/transport"
	"podium/agent/internal/types"
)

var (
	ErrSessionActive   = errors.New("session already active")
	ErrSessionInactive = errors.New("session not active")
	ErrBadSetup        = errors.New("invalid session setup")
	ErrUnknownHand     = errors.New("unknown floor request")
)

// Options are the reconciliation thresholds, sourced from config.
type Options struct {
	Debounce        time.Duration
	IdleTimeout     time.Duration
	MinPartialChars int
}

// Controller owns one session's lifecycle: the coarse call state machine,
// the per-session resources (speaker engine, transcript accumulator, agenda,
// hand-raise queue) and their teardown. Transport events and API commands
// both funnel through its mutex, so every component below it sees a
// serialized stream.
type Controller struct {
	mu sync.Mutex

	id    string
	setup assistant.Setup
	opts  Options
	tr    transport.Transport

	status types.CallStatus
	errMsg string
	callID string
	// lastCallID survives teardown so post-call analysis can still resolve
	// the provider's call record.
	lastCallID string
	audioLevel float64
	startedAt  time.Time
	// startGen discards stale async outcomes: stop bumps it, so a connect
	// attempt resolving late finds its generation gone.
	startGen int

	engine *speaker.Engine
	script *transcript.Accumulator
	seq    *agenda.Sequencer
	hands  *handraise.Queue

	// sawHumanSpeech is real evidence (a transcript) that the human talked
	// after taking the floor; it gates the idle auto-pass.
	sawHumanSpeech bool
	idleTimer      *time.Timer
}

func NewController(id string, setup assistant.Setup, tr transport.Transport, opts Options) *Controller {
	return &Controller{
		id:     id,
		setup:  setup,
		opts:   opts,
		tr:     tr,
		status: types.StatusInactive,
		engine: speaker.New(nil, opts.MinPartialChars),
		script: transcript.New(opts.Debounce, opts.MinPartialChars),
		hands:  handraise.NewQueue(),
	}
}

func (c *Controller) ID() string { return c.id }

func (c *Controller) Status() types.CallStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// LastCallID returns the provider call ID of the most recent call, live or
// ended. Empty until a call has started.
func (c *Controller) LastCallID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastCallID
}

func validateSetup(s assistant.Setup) error {
	if strings.TrimSpace(s.Resolution) == "" {
		return fmt.Errorf("%w: resolution required", ErrBadSetup)
	}
	switch s.Format {
	case types.FormatLincolnDouglas:
		if s.UserSide != "affirmative" && s.UserSide != "negative" {
			return fmt.Errorf("%w: user side must be affirmative or negative", ErrBadSetup)
		}
	case types.FormatPanel:
		if len(s.Panelists) == 0 {
			return fmt.Errorf("%w: panel needs at least one AI panelist", ErrBadSetup)
		}
	default:
		return fmt.Errorf("%w: unknown format %q", ErrBadSetup, s.Format)
	}
	return nil
}

// Start validates the setup, initializes per-session state and issues the
// transport connect. The session sits in CONNECTING until the transport's
// call-start event lands; a connect error returns it to INACTIVE with no
// automatic retry.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.status != types.StatusInactive {
		c.mu.Unlock()
		return ErrSessionActive
	}
	if err := validateSetup(c.setup); err != nil {
		c.mu.Unlock()
		return err
	}

	phases := agenda.ForFormat(c.setup.Format, c.setup.UserSide)
	c.setup.Phase = phases[0].Code
	c.engine.Reset(c.setup.Participants())
	c.script.Reset()
	c.seq = agenda.NewSequencer(phases)
	c.hands.Clear()
	c.errMsg = ""
	c.sawHumanSpeech = false
	c.setStatus(types.StatusConnecting)
	c.startGen++
	gen := c.startGen

	cfg := transport.SessionConfig{
		SessionID:       c.id,
		AssistantConfig: assistant.Build(c.setup),
	}
	c.mu.Unlock()

	if err := c.tr.Connect(ctx, cfg); err != nil {
		c.mu.Lock()
		if gen == c.startGen {
			c.errMsg = err.Error()
			c.teardownLocked()
		}
		c.mu.Unlock()
		return fmt.Errorf("transport connect: %w", err)
	}
	return nil
}

// Stop tears the session down. It is idempotent, and it supersedes any
// in-flight start: a late connect success finds the session INACTIVE and is
// discarded. In-memory state is cleared immediately, regardless of how long
// the transport takes to acknowledge the disconnect.
func (c *Controller) Stop(ctx context.Context) error {
	c.mu.Lock()
	if c.status == types.StatusInactive {
		c.mu.Unlock()
		return nil
	}
	c.setStatus(types.StatusEnding)
	c.startGen++
	c.teardownLocked()
	c.mu.Unlock()

	if err := c.tr.Disconnect(ctx); err != nil {
		log.Printf("[session] disconnect sid=%s: %v", c.id, err)
	}
	return nil
}

// teardownLocked resets every per-session resource and lands in INACTIVE.
// Debounce timers are cancelled, not just ignored, so nothing fires into the
// cleared state.
func (c *Controller) teardownLocked() {
	c.engine.Reset(nil)
	c.script.Reset()
	c.seq = nil
	c.hands.Clear()
	c.callID = ""
	c.audioLevel = 0
	c.startedAt = time.Time{}
	c.sawHumanSpeech = false
	c.cancelIdleLocked()
	c.setStatus(types.StatusInactive)
}

// HandleEvent consumes one decoded transport event. Events are processed
// only while the session is ACTIVE, except for the start transition
// (call-start during CONNECTING) and failures. Everything else is dropped.
func (c *Controller) HandleEvent(ev transport.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch e := ev.(type) {
	case transport.CallStarted:
		if c.status != types.StatusConnecting {
			metricStaleEvents.Inc()
			return
		}
		c.callID = e.CallID
		c.lastCallID = e.CallID
		c.startedAt = time.Now()
		c.script.Begin(c.startedAt)
		c.setStatus(types.StatusActive)
		log.Printf("[session] call started sid=%s call=%s", c.id, e.CallID)
		c.reconcileIdleLocked()
		return

	case transport.Failure:
		if c.status == types.StatusInactive {
			metricStaleEvents.Inc()
			return
		}
		c.errMsg = e.Message
		log.Printf("[session] transport error sid=%s: %s", c.id, e.Message)
		c.teardownLocked()
		return
	}

	if c.status != types.StatusActive {
		metricDroppedEvents.Inc()
		return
	}
	metricEventsProcessed.Inc()

	prev := c.engine.State().CurrentSpeaker

	switch e := ev.(type) {
	case transport.CallEnded:
		log.Printf("[session] call ended sid=%s", c.id)
		c.teardownLocked()
		return
	case transport.SpeechStart:
		c.engine.OnSpeechStart()
	case transport.SpeechEnd:
		c.engine.OnSpeechEnd()
	case transport.VolumeLevel:
		c.audioLevel = e.Level
	case transport.TransferConfirmed:
		c.engine.OnTransferConfirmed(e.DestinationID)
	case transport.Transcript:
		if e.Role == types.RoleHuman {
			c.sawHumanSpeech = true
		}
		if e.IsPartial {
			c.engine.OnPartialTranscript(e.Role, e.Text)
			c.script.OnPartial(c.speakerForLocked(e.Role), e.Text)
		} else {
			c.engine.OnFinalTranscript(e.Role, e.Text)
			c.script.OnFinal(c.speakerForLocked(e.Role), e.Text, e.Timestamp)
		}
	}

	if cur := c.engine.State().CurrentSpeaker; cur != prev {
		metricSpeakerChanges.Inc()
		if cur != types.ParticipantUser {
			c.sawHumanSpeech = false
		}
	}
	c.reconcileIdleLocked()
}

// speakerForLocked attributes a transcript role to a participant ID. The
// transport only distinguishes the human; AI utterances are attributed to
// whoever the engine says holds the floor.
func (c *Controller) speakerForLocked(role types.Role) string {
	if role == types.RoleHuman {
		return types.ParticipantUser
	}
	st := c.engine.State()
	if st.CurrentSpeaker != "" && st.CurrentSpeaker != types.ParticipantUser {
		return st.CurrentSpeaker
	}
	if st.LastAISpeaker != "" {
		return st.LastAISpeaker
	}
	return string(types.RoleAssistant)
}

func (c *Controller) setStatus(to types.CallStatus) {
	from := c.status
	if from == to {
		return
	}
	metricStateTransitions.WithLabelValues(string(from), string(to)).Inc()
	c.status = to
}
