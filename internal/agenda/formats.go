package agenda

import "podium/agent/internal/types"

// LincolnDouglas is the fixed one-on-one agenda. The expected speaker
// alternates with the side the human argues: the affirmative gives AC, 1AR
// and 2AR and conducts CX2; the negative gives NC and NR and conducts CX1.
func LincolnDouglas(userSide string) []Phase {
	aff := types.KindHuman
	neg := types.KindPanelist
	if userSide == "negative" {
		aff, neg = neg, aff
	}
	return []Phase{
		{Code: "AC", DisplayName: "Affirmative Constructive", DurationSeconds: 360, ExpectedSpeaker: aff},
		{Code: "CX1", DisplayName: "Cross-Examination", DurationSeconds: 180, ExpectedSpeaker: neg},
		{Code: "NC", DisplayName: "Negative Constructive", DurationSeconds: 420, ExpectedSpeaker: neg},
		{Code: "CX2", DisplayName: "Cross-Examination", DurationSeconds: 180, ExpectedSpeaker: aff},
		{Code: "1AR", DisplayName: "First Affirmative Rebuttal", DurationSeconds: 240, ExpectedSpeaker: aff},
		{Code: "NR", DisplayName: "Negative Rebuttal", DurationSeconds: 360, ExpectedSpeaker: neg},
		{Code: "2AR", DisplayName: "Second Affirmative Rebuttal", DurationSeconds: 180, ExpectedSpeaker: aff},
	}
}

// Panel is the fixed multi-party agenda, moderator-bookended.
func Panel() []Phase {
	return []Phase{
		{Code: "INTRO", DisplayName: "Introduction", DurationSeconds: 120, ExpectedSpeaker: types.KindModerator},
		{Code: "OPENING", DisplayName: "Opening Statements", DurationSeconds: 300, ExpectedSpeaker: types.KindPanelist},
		{Code: "DISCUSSION", DisplayName: "Open Discussion", DurationSeconds: 900, ExpectedSpeaker: types.KindPanelist},
		{Code: "QA", DisplayName: "Q&A Session", DurationSeconds: 600, ExpectedSpeaker: types.KindHuman},
		{Code: "CLOSING", DisplayName: "Closing Statements", DurationSeconds: 240, ExpectedSpeaker: types.KindPanelist},
		{Code: "WRAP", DisplayName: "Wrap-up", DurationSeconds: 120, ExpectedSpeaker: types.KindModerator},
	}
}

// ForFormat resolves the agenda for a session's format.
func ForFormat(f types.Format, userSide string) []Phase {
	if f == types.FormatPanel {
		return Panel()
	}
	return LincolnDouglas(userSide)
}
