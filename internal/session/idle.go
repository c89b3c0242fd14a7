package session

import (
	"context"
	"log"
	"time"

	"podium/agent/internal/assistant"
	"podium/agent/internal/types"
)

// Idle auto-pass: when an AI participant is waiting for the human to open
// and no human speech shows up within the idle window, the floor is passed
// to the AI. This is the liveness safeguard against both sides waiting on
// each other.

// humanHoldsOpenFloorLocked reports whether the session is in the "AI waits,
// human silent" posture.
func (c *Controller) humanHoldsOpenFloorLocked() bool {
	if c.status != types.StatusActive || c.sawHumanSpeech {
		return false
	}
	st := c.engine.State()
	if st.CurrentSpeaker == types.ParticipantUser {
		return true
	}
	// Floor unassigned at a phase where the AI deliberately waits for the
	// human to open.
	if st.CurrentSpeaker == "" && c.setup.Format == types.FormatLincolnDouglas && c.seq != nil {
		return assistant.WaitsForUser(c.seq.Current().Code, c.setup.UserSide)
	}
	return false
}

func (c *Controller) reconcileIdleLocked() {
	if c.humanHoldsOpenFloorLocked() {
		if c.idleTimer == nil && c.opts.IdleTimeout > 0 {
			c.idleTimer = time.AfterFunc(c.opts.IdleTimeout, c.autoPass)
		}
		return
	}
	c.cancelIdleLocked()
}

func (c *Controller) cancelIdleLocked() {
	if c.idleTimer != nil {
		c.idleTimer.Stop()
		c.idleTimer = nil
	}
}

func (c *Controller) autoPass() {
	c.mu.Lock()
	c.idleTimer = nil
	if !c.humanHoldsOpenFloorLocked() {
		c.mu.Unlock()
		return
	}
	target := c.engine.State().LastAISpeaker
	if target == "" {
		for _, p := range c.engine.Roster() {
			if p.Kind != types.KindHuman {
				target = p.ID
				break
			}
		}
	}
	if target == "" {
		c.mu.Unlock()
		return
	}
	c.engine.TransferToAI(target)
	metricAutoPasses.Inc()
	log.Printf("[session] idle auto-pass sid=%s to=%s", c.id, target)
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.tr.SendSystemMessage(ctx, assistant.PassMicrophoneMessage); err != nil {
		log.Printf("[session] auto-pass message sid=%s: %v", c.id, err)
	}
}
