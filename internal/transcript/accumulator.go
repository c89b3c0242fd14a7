package transcript

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"podium/agent/internal/types"
)

// Partial is the in-progress utterance currently shown to the UI.
type Partial struct {
	SpeakerID string `json:"speaker_id"`
	Text      string `json:"text"`
}

// Accumulator turns the transport's noisy partial+final transcript stream
// into an append-only history. Partials are debounced (last one wins within
// the window); finals are deduplicated by (speaker, text) against the whole
// history to guard against duplicate delivery.
//
// History order is receipt order, immune to clock skew across speakers.
type Accumulator struct {
	mu       sync.Mutex
	debounce time.Duration
	minChars int

	entries      []types.TranscriptEntry
	pending      *Partial
	active       *Partial
	timer        *time.Timer
	sessionStart time.Time

	now func() time.Time
}

func New(debounce time.Duration, minChars int) *Accumulator {
	return &Accumulator{debounce: debounce, minChars: minChars, now: time.Now}
}

// Begin stamps the session start used for elapsed labels.
func (a *Accumulator) Begin(start time.Time) {
	a.mu.Lock()
	a.sessionStart = start
	a.mu.Unlock()
}

// OnPartial schedules a partial for display after the debounce window. A
// newer partial arriving first supersedes it. Fragments below the minimum
// length are dropped silently.
func (a *Accumulator) OnPartial(speakerID, text string) {
	if len(strings.TrimSpace(text)) < a.minChars {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pending = &Partial{SpeakerID: speakerID, Text: text}
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.debounce, a.applyPending)
}

func (a *Accumulator) applyPending() {
	a.mu.Lock()
	if a.pending != nil {
		a.active = a.pending
		a.pending = nil
	}
	a.mu.Unlock()
}

// OnFinal appends a finalized utterance unless an identical (speaker, text)
// entry already exists, and clears any partial display state. The entry is
// stamped with the event's claimed timestamp when present, wall clock
// otherwise.
func (a *Accumulator) OnFinal(speakerID, text string, claimed time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.pending = nil
	a.active = nil

	for _, e := range a.entries {
		if e.SpeakerID == speakerID && e.Text == text {
			return
		}
	}
	at := claimed
	if at.IsZero() {
		at = a.now()
	}
	a.entries = append(a.entries, types.TranscriptEntry{
		SpeakerID:  speakerID,
		Text:       text,
		OccurredAt: at,
	})
}

// History returns a copy of the finalized entries in receipt order.
func (a *Accumulator) History() []types.TranscriptEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]types.TranscriptEntry, len(a.entries))
	copy(out, a.entries)
	return out
}

// Active returns the debounced partial currently suitable for display.
func (a *Accumulator) Active() *Partial {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.active == nil {
		return nil
	}
	p := *a.active
	return &p
}

// ElapsedLabel renders an entry's offset from session start as MM:SS, floored
// at zero. An entry without a usable timestamp falls back to the running
// session timer.
func (a *Accumulator) ElapsedLabel(e types.TranscriptEntry) string {
	a.mu.Lock()
	start := a.sessionStart
	a.mu.Unlock()

	at := e.OccurredAt
	if at.IsZero() {
		at = a.now()
	}
	secs := int(at.Sub(start).Seconds())
	if secs < 0 || start.IsZero() {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// Export joins the history into a plain-text debate record.
func (a *Accumulator) Export() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	var b strings.Builder
	for _, e := range a.entries {
		fmt.Fprintf(&b, "%s: %s\n", e.SpeakerID, e.Text)
	}
	return b.String()
}

// Reset cancels any pending debounce timer and drops all state, so a late
// timer cannot fire into a cleared session.
func (a *Accumulator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.pending = nil
	a.active = nil
	a.entries = nil
	a.sessionStart = time.Time{}
}
