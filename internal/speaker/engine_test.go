package speaker

import (
	"testing"

	"podium/agent/internal/types"
)

func panelRoster() []types.Participant {
	return []types.Participant{
		{ID: "user", Kind: types.KindHuman, DisplayName: "You"},
		{ID: "moderator", Kind: types.KindModerator, DisplayName: "Moderator"},
		{ID: "panelist_0", Kind: types.KindPanelist, DisplayName: "Marcus"},
	}
}

func TestTransferConfirmedCommitsAISpeaker(t *testing.T) {
	e := New(panelRoster(), 3)
	e.OnTransferConfirmed("panelist_0")
	st := e.State()
	if st.CurrentSpeaker != "panelist_0" {
		t.Fatalf("expected panelist_0, got %q", st.CurrentSpeaker)
	}
	if st.LastAISpeaker != "panelist_0" {
		t.Fatalf("expected lastAISpeaker panelist_0, got %q", st.LastAISpeaker)
	}
	for _, p := range e.Roster() {
		if p.ID == "panelist_0" && !p.IsActive {
			t.Fatalf("expected panelist_0 active in roster")
		}
		if p.ID != "panelist_0" && p.IsActive {
			t.Fatalf("expected %s inactive", p.ID)
		}
	}
}

func TestPendingHumanTransferCommitsOnSpeechEnd(t *testing.T) {
	e := New(panelRoster(), 3)
	e.OnTransferConfirmed("moderator")

	// Hand-off intent; the AI is still finishing its sentence.
	e.OnTransferConfirmed("user")
	if got := e.State().CurrentSpeaker; got != "moderator" {
		t.Fatalf("speaker changed before speech end: %q", got)
	}

	e.OnSpeechStart()
	if got := e.State().CurrentSpeaker; got != "moderator" {
		t.Fatalf("speech start should keep AI speaker, got %q", got)
	}

	e.OnSpeechEnd()
	st := e.State()
	if st.CurrentSpeaker != "user" || !st.IsUserTurn || !st.UserIsSpeaking {
		t.Fatalf("expected committed user floor, got %+v", st)
	}
	if st.PendingHumanTransfer {
		t.Fatalf("pending flag not cleared")
	}
}

func TestSpeechEndWithoutPendingLeavesSpeakerUnchanged(t *testing.T) {
	e := New(panelRoster(), 3)
	e.OnTransferConfirmed("panelist_0")
	e.OnSpeechStart()
	e.OnSpeechEnd()
	st := e.State()
	if st.CurrentSpeaker != "panelist_0" {
		t.Fatalf("spurious reassignment after speech end: %q", st.CurrentSpeaker)
	}
	if st.IsSpeechActive {
		t.Fatalf("speech still marked active")
	}
}

func TestHumanPartialClaimsFloor(t *testing.T) {
	e := New(panelRoster(), 3)
	e.OnTransferConfirmed("panelist_0")
	e.OnSpeechEnd()
	e.OnPartialTranscript(types.RoleHuman, "I disagree")
	st := e.State()
	if st.CurrentSpeaker != "user" || !st.IsUserTurn {
		t.Fatalf("expected user floor from partial, got %+v", st)
	}
}

func TestShortPartialIgnoredAsNoise(t *testing.T) {
	e := New(panelRoster(), 3)
	e.OnTransferConfirmed("moderator")
	e.OnPartialTranscript(types.RoleHuman, " uh ")
	if got := e.State().CurrentSpeaker; got != "moderator" {
		t.Fatalf("noise fragment moved the floor: %q", got)
	}
}

func TestSpeechStartCorrectsToLastAISpeaker(t *testing.T) {
	e := New(panelRoster(), 3)
	e.OnTransferConfirmed("moderator")
	e.OnTransferConfirmed("user") // pending hand-off
	// The audio pipeline has not caught up: a fresh speech-start with the
	// human silent means the AI is still talking.
	e.OnSpeechStart()
	st := e.State()
	if st.CurrentSpeaker != "moderator" {
		t.Fatalf("expected correction to moderator, got %q", st.CurrentSpeaker)
	}
	if !st.PendingHumanTransfer {
		t.Fatalf("pending transfer must survive a speech start")
	}
}

func TestSpeechStartDoesNotOverrideSpeakingUser(t *testing.T) {
	e := New(panelRoster(), 3)
	e.OnTransferConfirmed("moderator")
	e.OnPartialTranscript(types.RoleHuman, "let me finish")
	e.OnSpeechStart()
	if got := e.State().CurrentSpeaker; got != "user" {
		t.Fatalf("speech start overrode the speaking user: %q", got)
	}
}

func TestAITransferClearsPendingHumanHandoff(t *testing.T) {
	e := New(panelRoster(), 3)
	e.OnTransferConfirmed("user")
	e.OnTransferConfirmed("panelist_0")
	e.OnSpeechEnd()
	st := e.State()
	if st.CurrentSpeaker != "panelist_0" {
		t.Fatalf("AI-to-AI transfer lost: %q", st.CurrentSpeaker)
	}
	if st.IsUserTurn {
		t.Fatalf("user turn set after superseded hand-off")
	}
}

func TestFinalAssistantTranscriptClearsUserSpeaking(t *testing.T) {
	e := New(panelRoster(), 3)
	e.OnPartialTranscript(types.RoleHuman, "my point stands")
	if !e.State().UserIsSpeaking {
		t.Fatalf("user speaking flag not set")
	}
	e.OnFinalTranscript(types.RoleAssistant, "noted")
	if e.State().UserIsSpeaking {
		t.Fatalf("assistant final did not clear user speaking flag")
	}
}

func TestManualOverrides(t *testing.T) {
	e := New(panelRoster(), 3)
	e.OnTransferConfirmed("user") // pending
	e.RequestHumanFloor()
	st := e.State()
	if st.CurrentSpeaker != "user" || st.PendingHumanTransfer {
		t.Fatalf("manual override must bypass pending dance, got %+v", st)
	}

	e.TransferToAI("panelist_0")
	st = e.State()
	if st.CurrentSpeaker != "panelist_0" || st.LastAISpeaker != "panelist_0" || st.IsUserTurn {
		t.Fatalf("manual AI transfer wrong: %+v", st)
	}
}

func TestDuplicateTransfersLastWriteWins(t *testing.T) {
	e := New(panelRoster(), 3)
	e.OnTransferConfirmed("moderator")
	e.OnTransferConfirmed("panelist_0")
	if got := e.State().CurrentSpeaker; got != "panelist_0" {
		t.Fatalf("expected last transfer to win, got %q", got)
	}
}

func TestResetClearsEverything(t *testing.T) {
	e := New(panelRoster(), 3)
	e.OnTransferConfirmed("moderator")
	e.OnSpeechStart()
	e.Reset(panelRoster())
	st := e.State()
	if st.CurrentSpeaker != "" || st.IsSpeechActive || st.LastAISpeaker != "" {
		t.Fatalf("state survived reset: %+v", st)
	}
}
