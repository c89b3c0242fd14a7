// Package assistant assembles the opaque per-participant configuration
// payloads handed to the voice transport. The core never interprets these;
// they travel verbatim inside the connect command.
package assistant

import (
	"fmt"
	"strings"

	"podium/agent/internal/types"
)

// Panelist describes one AI panelist requested at setup time.
type Panelist struct {
	Name         string `json:"name"`
	Archetype    string `json:"archetype"`
	CustomStance string `json:"custom_stance,omitempty"`
}

// Setup carries everything needed to configure a session's assistants.
type Setup struct {
	Format         types.Format `json:"format"`
	Resolution     string       `json:"resolution"`
	UserSide       string       `json:"user_side"`       // LD: affirmative|negative
	UserStance     string       `json:"user_stance"`     // panel: free-text position
	ModeratorStyle string       `json:"moderator_style"` // panel
	Panelists      []Panelist   `json:"panelists"`
	Phase          string       `json:"phase"`
}

var moderatorStyles = map[string]string{
	"neutral":        "Stay strictly neutral and give every participant equal speaking time.",
	"probing":        "Ask pointed follow-up questions and press participants to defend their positions.",
	"strict":         "Enforce time limits firmly and keep the discussion tightly on the resolution.",
	"conversational": "Keep the conversation flowing naturally while gently steering it.",
}

var archetypes = map[string]string{
	"pragmatist":  "Focus on practical solutions and what actually works in practice.",
	"idealist":    "Argue from principle and what ought to be, regardless of practical constraints.",
	"skeptic":     "Question assumptions and demand strong evidence for every claim.",
	"analyst":     "Lean on statistics and empirical evidence over emotional appeals.",
	"advocate":    "Argue with passion, personal conviction and concrete stories.",
	"economist":   "View the issue through market forces and cost-benefit analysis.",
	"philosopher": "Examine the fundamental principles beneath the question.",
	"historian":   "Draw on historical precedent and long-run patterns.",
	"scientist":   "Apply evidence-based reasoning and methodological rigor.",
	"activist":    "Push for action and social change to address injustice.",
}

var archetypeVoices = map[string]string{
	"pragmatist": "marcus",
	"idealist":   "sophia",
	"skeptic":    "david",
	"analyst":    "rachel",
	"advocate":   "alex",
}

const defaultVoice = "jason"

func archetypeDescription(p Panelist) string {
	if p.Archetype == "custom" && p.CustomStance != "" {
		return p.CustomStance
	}
	if d, ok := archetypes[p.Archetype]; ok {
		return d
	}
	return p.Archetype
}

func voiceFor(archetype string) string {
	if v, ok := archetypeVoices[archetype]; ok {
		return v
	}
	return defaultVoice
}

// Participants builds the fixed session roster implied by the setup.
func (s Setup) Participants() []types.Participant {
	if s.Format == types.FormatPanel {
		roster := []types.Participant{
			{ID: types.ParticipantModerator, Kind: types.KindModerator, DisplayName: "Moderator"},
		}
		for i, p := range s.Panelists {
			roster = append(roster, types.Participant{
				ID:          fmt.Sprintf("panelist_%d", i),
				Kind:        types.KindPanelist,
				DisplayName: p.Name,
			})
		}
		return append(roster, types.Participant{ID: types.ParticipantUser, Kind: types.KindHuman, DisplayName: "You"})
	}

	opponent := "Lincoln"
	if s.UserSide == "affirmative" {
		opponent = "Douglas"
	}
	return []types.Participant{
		{ID: types.ParticipantUser, Kind: types.KindHuman, DisplayName: "You"},
		{ID: "opponent", Kind: types.KindPanelist, DisplayName: opponent},
	}
}

// Build dispatches on the session format.
func Build(s Setup) map[string]any {
	if s.Format == types.FormatPanel {
		return BuildPanelSquad(s)
	}
	return BuildLincolnDouglas(s)
}

// BuildLincolnDouglas configures the single AI opponent taking the side the
// user did not.
func BuildLincolnDouglas(s Setup) map[string]any {
	aiStance := "negative"
	aiName := "Douglas"
	if s.UserSide == "negative" {
		aiStance = "affirmative"
		aiName = "Lincoln"
	}
	waits := WaitsForUser(s.Phase, s.UserSide)

	prompt := fmt.Sprintf(
		`You are %s, debating the %s side of: %q. Follow Lincoln-Douglas structure, argue only your assigned side, and stay within the current phase (%s). Keep speeches tight and clash directly with your opponent's arguments.`,
		aiName, aiStance, s.Resolution, s.Phase)

	firstMessageMode := "assistant-speaks-first-with-model-generated-message"
	if waits {
		firstMessageMode = "assistant-waits-for-user"
	}

	return map[string]any{
		"name":             aiName,
		"systemPrompt":     prompt,
		"firstMessageMode": firstMessageMode,
		"voice":            map[string]any{"voiceId": defaultVoice},
		"metadata": map[string]any{
			"stance":            aiStance,
			"phase":             s.Phase,
			"shouldWaitForUser": waits,
		},
	}
}

// BuildPanelSquad configures the moderator plus every panelist as one squad,
// with transfer destinations so the transport can route the floor.
func BuildPanelSquad(s Setup) map[string]any {
	style, ok := moderatorStyles[s.ModeratorStyle]
	if !ok {
		style = moderatorStyles["neutral"]
	}

	var roster strings.Builder
	fmt.Fprintf(&roster, "- You (the human participant): %s\n", s.UserStance)
	for _, p := range s.Panelists {
		fmt.Fprintf(&roster, "- %s: %s\n", p.Name, archetypeDescription(p))
	}

	members := []map[string]any{{
		"participantId": types.ParticipantModerator,
		"name":          "Moderator",
		"systemPrompt": fmt.Sprintf(
			"You moderate a panel debate on: %q. %s\nPanelists:\n%s", s.Resolution, style, roster.String()),
		"voice": map[string]any{"voiceId": defaultVoice},
	}}
	for i, p := range s.Panelists {
		members = append(members, map[string]any{
			"participantId": fmt.Sprintf("panelist_%d", i),
			"name":          p.Name,
			"systemPrompt": fmt.Sprintf(
				"You are %s, a panelist debating: %q. %s Engage with the other panelists and the human participant.",
				p.Name, s.Resolution, archetypeDescription(p)),
			"voice": map[string]any{"voiceId": voiceFor(p.Archetype)},
		})
	}

	return map[string]any{
		"squad": map[string]any{
			"members": members,
		},
		"metadata": map[string]any{
			"phase": s.Phase,
		},
	}
}

// WaitsForUser reports whether the AI opponent sits quiet until the human
// speaks first in the given LD phase. The questioner waits during
// cross-examination; otherwise the phase's speaker opens.
func WaitsForUser(phase, userSide string) bool {
	aiStance := "negative"
	if userSide == "negative" {
		aiStance = "affirmative"
	}
	switch phase {
	case "AC", "1AR", "2AR":
		return aiStance == "negative"
	case "NC", "NR":
		return aiStance == "affirmative"
	case "CX1":
		// The negative questions; the questioner waits for an answer.
		return aiStance == "negative"
	case "CX2":
		return aiStance == "affirmative"
	default:
		return false
	}
}

// PhaseUpdateMessage is the in-band stage direction sent when the agenda
// advances.
func PhaseUpdateMessage(phaseName string, durationSeconds int) string {
	return fmt.Sprintf(
		"PHASE UPDATE: The debate has moved to %s (%d seconds). Adjust your role accordingly and respect the phase's speaking order.",
		phaseName, durationSeconds)
}

// TimeWarningMessage is the in-band stage direction for low phase time.
func TimeWarningMessage(remainingSeconds int) string {
	return fmt.Sprintf("TIME WARNING: %d seconds remain in the current phase. Begin wrapping up.", remainingSeconds)
}

// PassMicrophoneMessage nudges the AI to take the floor when the human stays
// silent past the idle window.
const PassMicrophoneMessage = "I pass the microphone to you. Please proceed with your speech."
