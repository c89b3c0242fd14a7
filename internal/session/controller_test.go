package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"podium/agent/internal/assistant"
	"podium/agent/internal/handraise"
	"podium/agent/internal/transport"
	"podium/agent/internal/types"
)

type fakeTransport struct {
	mu          sync.Mutex
	connects    int
	disconnects int
	system      []string
	user        []string
	connectErr  error
}

func (f *fakeTransport) Connect(ctx context.Context, cfg transport.SessionConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects++
	return f.connectErr
}

func (f *fakeTransport) Disconnect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnects++
	return nil
}

func (f *fakeTransport) SendSystemMessage(ctx context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.system = append(f.system, text)
	return nil
}

func (f *fakeTransport) SendUserMessage(ctx context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.user = append(f.user, text)
	return nil
}

func (f *fakeTransport) systemCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.system)
}

func (f *fakeTransport) disconnectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.disconnects
}

func testOpts() Options {
	return Options{Debounce: 5 * time.Millisecond, IdleTimeout: 0, MinPartialChars: 3}
}

func panelSetup() assistant.Setup {
	return assistant.Setup{
		Format:     types.FormatPanel,
		Resolution: "Social media does more harm than good",
		UserStance: "broadly against",
		Panelists:  []assistant.Panelist{{Name: "Marcus", Archetype: "pragmatist"}},
	}
}

func ldSetup(side string) assistant.Setup {
	return assistant.Setup{
		Format:     types.FormatLincolnDouglas,
		Resolution: "Technology does more harm than good",
		UserSide:   side,
	}
}

func startActive(t *testing.T, setup assistant.Setup, opts Options) (*Controller, *fakeTransport) {
	t.Helper()
	tr := &fakeTransport{}
	c := NewController("s1", setup, tr, opts)
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := c.Status(); got != types.StatusConnecting {
		t.Fatalf("expected CONNECTING after start, got %s", got)
	}
	c.HandleEvent(transport.CallStarted{CallID: "call-1"})
	if got := c.Status(); got != types.StatusActive {
		t.Fatalf("expected ACTIVE after call-start, got %s", got)
	}
	return c, tr
}

func TestStartValidation(t *testing.T) {
	tr := &fakeTransport{}

	c := NewController("s1", assistant.Setup{Format: types.FormatPanel}, tr, testOpts())
	if err := c.Start(context.Background()); !errors.Is(err, ErrBadSetup) {
		t.Fatalf("expected ErrBadSetup for empty resolution, got %v", err)
	}
	if c.Status() != types.StatusInactive {
		t.Fatalf("failed validation must leave session INACTIVE")
	}
	if tr.connects != 0 {
		t.Fatalf("no transport command may be issued before validation passes")
	}

	c = NewController("s2", assistant.Setup{Format: types.FormatPanel, Resolution: "r"}, tr, testOpts())
	if err := c.Start(context.Background()); !errors.Is(err, ErrBadSetup) {
		t.Fatalf("expected ErrBadSetup for panel without panelists, got %v", err)
	}
}

func TestConnectErrorReturnsToInactive(t *testing.T) {
	tr := &fakeTransport{connectErr: errors.New("dial refused")}
	c := NewController("s1", panelSetup(), tr, testOpts())
	if err := c.Start(context.Background()); err == nil {
		t.Fatalf("expected connect error")
	}
	snap := c.Snapshot()
	if snap.Status != types.StatusInactive || snap.Error == "" {
		t.Fatalf("connect failure must land INACTIVE with an error, got %+v", snap)
	}
}

func TestSpecScenarioPanelFloor(t *testing.T) {
	c, _ := startActive(t, panelSetup(), testOpts())

	c.HandleEvent(transport.TransferConfirmed{DestinationID: "panelist_0"})
	if got := c.Snapshot().Speaker.CurrentSpeaker; got != "panelist_0" {
		t.Fatalf("expected panelist_0 after transfer, got %q", got)
	}

	c.HandleEvent(transport.SpeechEnd{})
	if got := c.Snapshot().Speaker.CurrentSpeaker; got != "panelist_0" {
		t.Fatalf("speech end without pending transfer reassigned floor: %q", got)
	}

	c.HandleEvent(transport.Transcript{Role: types.RoleHuman, Text: "I disagree", IsPartial: true})
	if got := c.Snapshot().Speaker.CurrentSpeaker; got != "user" {
		t.Fatalf("human partial did not claim floor: %q", got)
	}
}

func TestEventsIgnoredUnlessActive(t *testing.T) {
	tr := &fakeTransport{}
	c := NewController("s1", panelSetup(), tr, testOpts())

	c.HandleEvent(transport.SpeechStart{})
	c.HandleEvent(transport.TransferConfirmed{DestinationID: "panelist_0"})
	if got := c.Snapshot().Speaker.CurrentSpeaker; got != "" {
		t.Fatalf("event processed while INACTIVE: %q", got)
	}
}

func TestIdempotentStop(t *testing.T) {
	c, tr := startActive(t, panelSetup(), testOpts())

	if err := c.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := c.Stop(context.Background()); err != nil {
		t.Fatalf("second stop: %v", err)
	}
	if got := c.Status(); got != types.StatusInactive {
		t.Fatalf("expected INACTIVE after stop, got %s", got)
	}
	if tr.disconnectCount() != 1 {
		t.Fatalf("duplicate teardown: %d disconnects", tr.disconnectCount())
	}
	snap := c.Snapshot()
	if len(snap.Participants) != 0 || snap.CallID != "" {
		t.Fatalf("stale session state leaked: %+v", snap)
	}
}

func TestStopSupersedesInflightStart(t *testing.T) {
	tr := &fakeTransport{}
	c := NewController("s1", panelSetup(), tr, testOpts())
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := c.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	// The connect attempt resolves late; its success must be discarded.
	c.HandleEvent(transport.CallStarted{CallID: "late"})
	if got := c.Status(); got != types.StatusInactive {
		t.Fatalf("late call-start applied after stop: %s", got)
	}
}

func TestDoubleStartRejected(t *testing.T) {
	c, _ := startActive(t, panelSetup(), testOpts())
	if err := c.Start(context.Background()); !errors.Is(err, ErrSessionActive) {
		t.Fatalf("expected ErrSessionActive, got %v", err)
	}
}

func TestTransportFailureIsTerminal(t *testing.T) {
	c, _ := startActive(t, panelSetup(), testOpts())
	c.HandleEvent(transport.TransferConfirmed{DestinationID: "moderator"})
	c.HandleEvent(transport.Failure{Message: "ice disconnected"})

	snap := c.Snapshot()
	if snap.Status != types.StatusInactive {
		t.Fatalf("failure must force INACTIVE, got %s", snap.Status)
	}
	if snap.Error != "ice disconnected" {
		t.Fatalf("error message lost: %q", snap.Error)
	}
	if snap.Speaker.CurrentSpeaker != "" {
		t.Fatalf("speaker state survived teardown")
	}
}

func TestCallEndedTearsDown(t *testing.T) {
	c, _ := startActive(t, panelSetup(), testOpts())
	c.HandleEvent(transport.CallEnded{})
	if got := c.Status(); got != types.StatusInactive {
		t.Fatalf("expected INACTIVE after call end, got %s", got)
	}
}

func TestFinalTranscriptAttribution(t *testing.T) {
	c, _ := startActive(t, panelSetup(), testOpts())
	c.HandleEvent(transport.TransferConfirmed{DestinationID: "moderator"})
	c.HandleEvent(transport.Transcript{Role: types.RoleAssistant, Text: "welcome to the panel"})
	c.HandleEvent(transport.Transcript{Role: types.RoleHuman, Text: "glad to be here"})

	tv := c.Transcript()
	if len(tv.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(tv.Entries))
	}
	if tv.Entries[0].SpeakerID != "moderator" {
		t.Fatalf("assistant utterance attributed to %q", tv.Entries[0].SpeakerID)
	}
	if tv.Entries[1].SpeakerID != "user" {
		t.Fatalf("human utterance attributed to %q", tv.Entries[1].SpeakerID)
	}
}

func TestHandRaiseResolution(t *testing.T) {
	c, _ := startActive(t, panelSetup(), testOpts())
	c.HandleEvent(transport.TransferConfirmed{DestinationID: "moderator"})

	first, err := c.RaiseHand("panelist_0", handraise.QuestionChallenge, "numbers are off", handraise.UrgencyHigh)
	if err != nil {
		t.Fatalf("raise: %v", err)
	}
	second, err := c.RaiseHand("user", handraise.QuestionFollowUp, "costs?", handraise.UrgencyMedium)
	if err != nil {
		t.Fatalf("raise: %v", err)
	}

	if err := c.DismissHand(first.ID); err != nil {
		t.Fatalf("dismiss: %v", err)
	}
	if got := c.Snapshot().Speaker.CurrentSpeaker; got != "moderator" {
		t.Fatalf("dismiss must have no floor side effect, got %q", got)
	}

	if err := c.AcknowledgeHand(second.ID); err != nil {
		t.Fatalf("acknowledge: %v", err)
	}
	snap := c.Snapshot()
	if snap.Speaker.CurrentSpeaker != "user" {
		t.Fatalf("acknowledged human request must transfer floor, got %q", snap.Speaker.CurrentSpeaker)
	}
	if len(snap.RaisedHands) != 0 {
		t.Fatalf("queue not empty: %+v", snap.RaisedHands)
	}
}

func TestAcknowledgeAIRequestTransfers(t *testing.T) {
	c, _ := startActive(t, panelSetup(), testOpts())
	req, _ := c.RaiseHand("panelist_0", handraise.QuestionCounterpoint, "", handraise.UrgencyLow)
	if err := c.AcknowledgeHand(req.ID); err != nil {
		t.Fatalf("acknowledge: %v", err)
	}
	if got := c.Snapshot().Speaker.CurrentSpeaker; got != "panelist_0" {
		t.Fatalf("AI request must route through the transfer path, got %q", got)
	}
}

func TestAdvancePhaseSendsStageDirection(t *testing.T) {
	c, tr := startActive(t, panelSetup(), testOpts())
	cur, err := c.AdvancePhase(context.Background())
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if cur.Code != "OPENING" {
		t.Fatalf("expected OPENING, got %q", cur.Code)
	}
	if tr.systemCount() != 1 {
		t.Fatalf("phase update message not sent")
	}

	// Hammer past the end: cursor pins to WRAP, no wrap-around.
	for i := 0; i < 10; i++ {
		if _, err := c.AdvancePhase(context.Background()); err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
	}
	if got := c.Snapshot().Phase.Current.Code; got != "WRAP" {
		t.Fatalf("agenda wrapped: %q", got)
	}
}

func TestIdleAutoPass(t *testing.T) {
	opts := testOpts()
	opts.IdleTimeout = 20 * time.Millisecond
	// User argues affirmative: the AI waits through AC, and the user never
	// speaks.
	c, tr := startActive(t, ldSetup("affirmative"), opts)

	time.Sleep(6 * opts.IdleTimeout)

	if got := c.Snapshot().Speaker.CurrentSpeaker; got != "opponent" {
		t.Fatalf("expected auto-pass to the AI opponent, got %q", got)
	}
	if tr.systemCount() == 0 {
		t.Fatalf("auto-pass must nudge the AI in-band")
	}
}

func TestIdleAutoPassCancelledByHumanSpeech(t *testing.T) {
	opts := testOpts()
	opts.IdleTimeout = 20 * time.Millisecond
	c, _ := startActive(t, ldSetup("affirmative"), opts)

	c.HandleEvent(transport.Transcript{Role: types.RoleHuman, Text: "I affirm the resolution", IsPartial: true})
	time.Sleep(6 * opts.IdleTimeout)

	if got := c.Snapshot().Speaker.CurrentSpeaker; got != "user" {
		t.Fatalf("auto-pass fired despite human speech: %q", got)
	}
}

func TestOpsRequireActiveSession(t *testing.T) {
	tr := &fakeTransport{}
	c := NewController("s1", panelSetup(), tr, testOpts())

	if err := c.TakeFloor(); !errors.Is(err, ErrSessionInactive) {
		t.Fatalf("TakeFloor on inactive session: %v", err)
	}
	if err := c.TransferTo("moderator"); !errors.Is(err, ErrSessionInactive) {
		t.Fatalf("TransferTo on inactive session: %v", err)
	}
	if _, err := c.RaiseHand("user", handraise.QuestionFollowUp, "", handraise.UrgencyLow); !errors.Is(err, ErrSessionInactive) {
		t.Fatalf("RaiseHand on inactive session: %v", err)
	}
	if err := c.SendMessage(context.Background(), "user", "hi"); !errors.Is(err, ErrSessionInactive) {
		t.Fatalf("SendMessage on inactive session: %v", err)
	}
}
