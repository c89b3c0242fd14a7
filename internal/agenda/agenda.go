package agenda

import (
	"time"

	"podium/agent/internal/types"
)

// Phase is one named, time-boxed segment of a structured debate format.
// Agendas are fixed ordered lists defined at configuration time; only the
// cursor moves at runtime.
type Phase struct {
	Code            string                `json:"code"`
	DisplayName     string                `json:"display_name"`
	DurationSeconds int                   `json:"duration_seconds"`
	// ExpectedSpeaker is advisory, for UI highlighting. The sequencer never
	// enforces who may actually speak.
	ExpectedSpeaker types.ParticipantKind `json:"expected_speaker"`
}

// Sequencer is a strictly forward-only cursor over an agenda. Advance at the
// final phase is a no-op; it never errors and never wraps.
type Sequencer struct {
	phases  []Phase
	idx     int
	entered time.Time

	now func() time.Time
}

func NewSequencer(phases []Phase) *Sequencer {
	s := &Sequencer{phases: phases, now: time.Now}
	s.entered = s.now()
	return s
}

// Current returns the phase under the cursor.
func (s *Sequencer) Current() Phase { return s.phases[s.idx] }

// Index returns the cursor position.
func (s *Sequencer) Index() int { return s.idx }

// IsLast reports whether the cursor sits at the final phase.
func (s *Sequencer) IsLast() bool { return s.idx == len(s.phases)-1 }

// Advance moves the cursor one step and resets the phase-local timer. It
// deliberately does not touch transcript or speaker state.
func (s *Sequencer) Advance() {
	if s.IsLast() {
		return
	}
	s.idx++
	s.entered = s.now()
}

// Elapsed is the time spent in the current phase.
func (s *Sequencer) Elapsed() time.Duration {
	return s.now().Sub(s.entered)
}

// Remaining is the current phase's nominal time left, floored at zero.
func (s *Sequencer) Remaining() time.Duration {
	rem := time.Duration(s.Current().DurationSeconds)*time.Second - s.Elapsed()
	if rem < 0 {
		return 0
	}
	return rem
}

// Phases returns a copy of the full agenda.
func (s *Sequencer) Phases() []Phase {
	out := make([]Phase, len(s.phases))
	copy(out, s.phases)
	return out
}
