package transcript

import (
	"testing"
	"time"

	"podium/agent/internal/types"
)

const testDebounce = 5 * time.Millisecond

func TestFinalDedupBySpeakerAndText(t *testing.T) {
	a := New(testDebounce, 3)
	a.OnFinal("user", "I disagree", time.Time{})
	a.OnFinal("user", "I disagree", time.Time{})
	a.OnFinal("moderator", "I disagree", time.Time{})
	h := a.History()
	if len(h) != 2 {
		t.Fatalf("expected 2 entries after dedup, got %d", len(h))
	}
}

func TestDebounceCollapsesPartials(t *testing.T) {
	a := New(testDebounce, 3)
	a.OnPartial("user", "tech")
	a.OnPartial("user", "technology")
	a.OnPartial("user", "technology is")
	if a.Active() != nil {
		t.Fatalf("partial applied before debounce window elapsed")
	}
	time.Sleep(4 * testDebounce)
	got := a.Active()
	if got == nil || got.Text != "technology is" {
		t.Fatalf("expected last partial applied, got %+v", got)
	}
}

func TestShortPartialDropped(t *testing.T) {
	a := New(testDebounce, 3)
	a.OnPartial("user", " a ")
	time.Sleep(4 * testDebounce)
	if a.Active() != nil {
		t.Fatalf("noise fragment survived")
	}
}

func TestFinalClearsPartialState(t *testing.T) {
	a := New(testDebounce, 3)
	a.OnPartial("user", "technology is good")
	a.OnFinal("user", "technology is good", time.Time{})
	time.Sleep(4 * testDebounce)
	if a.Active() != nil {
		t.Fatalf("pending partial fired after final cleared it")
	}
	if len(a.History()) != 1 {
		t.Fatalf("final not appended")
	}
}

func TestHistoryIsReceiptOrdered(t *testing.T) {
	a := New(testDebounce, 3)
	later := time.Now().Add(time.Hour)
	earlier := time.Now().Add(-time.Hour)
	a.OnFinal("moderator", "welcome", later)
	a.OnFinal("user", "thanks", earlier)
	h := a.History()
	if h[0].Text != "welcome" || h[1].Text != "thanks" {
		t.Fatalf("history reordered by claimed timestamps: %+v", h)
	}
}

func TestElapsedLabel(t *testing.T) {
	a := New(testDebounce, 3)
	start := time.Now()
	a.Begin(start)

	e := types.TranscriptEntry{OccurredAt: start.Add(95 * time.Second)}
	if got := a.ElapsedLabel(e); got != "01:35" {
		t.Fatalf("expected 01:35, got %q", got)
	}

	// Claimed timestamp before session start floors at zero.
	e = types.TranscriptEntry{OccurredAt: start.Add(-10 * time.Second)}
	if got := a.ElapsedLabel(e); got != "00:00" {
		t.Fatalf("expected 00:00, got %q", got)
	}
}

func TestResetCancelsTimerAndClears(t *testing.T) {
	a := New(testDebounce, 3)
	a.OnFinal("user", "point one", time.Time{})
	a.OnPartial("user", "point two")
	a.Reset()
	time.Sleep(4 * testDebounce)
	if a.Active() != nil {
		t.Fatalf("late debounce timer fired into cleared state")
	}
	if len(a.History()) != 0 {
		t.Fatalf("history survived reset")
	}
}

func TestExport(t *testing.T) {
	a := New(testDebounce, 3)
	a.OnFinal("moderator", "welcome", time.Time{})
	a.OnFinal("user", "thank you", time.Time{})
	want := "moderator: welcome\nuser: thank you\n"
	if got := a.Export(); got != want {
		t.Fatalf("export mismatch: %q", got)
	}
}
