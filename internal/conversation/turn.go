// Package conversation defines the core data types flowing through the yuban pipeline.
package conversation

import "time"

// Role identifies which side of the conversation produced a turn.
type Role string

const (
	// RoleUser marks a turn transcribed from the learner's recording.
	RoleUser Role = "user"

	// RoleAssistant marks a turn generated by the tutor.
	RoleAssistant Role = "assistant"
)

// Turn is one exchange in the conversation. Turns are immutable once
// persisted; ordering is ascending by CreatedAt and that order is the only
// consistency guarantee the store makes.
type Turn struct {
	// Role is "user" or "assistant".
	Role Role `json:"role"`

	// Hanzi is the Mandarin text of the turn. Never empty on a persisted
	// turn — every failure branch substitutes a fixed fallback string.
	Hanzi string `json:"hanzi"`

	// Pinyin is the tone-marked romanization of Hanzi. May be empty when
	// romanization failed; that is the only text field allowed to be blank.
	Pinyin string `json:"pinyin"`

	// English is the English rendering of Hanzi. Never empty.
	English string `json:"english"`

	// AudioURL points at synthesized speech for the turn. Nil when
	// synthesis or upload failed — audio is always best-effort.
	AudioURL *string `json:"audio_url"`

	// CreatedAt is when the turn was appended.
	CreatedAt time.Time `json:"created_at"`
}

// TurnText is the textual triple of a turn as returned to clients.
type TurnText struct {
	Hanzi   string `json:"hanzi"`
	Pinyin  string `json:"pinyin"`
	English string `json:"english"`
}

// TurnResponse is the combined payload for one request/response cycle:
// what the user said and what the tutor replied, plus the reply audio.
type TurnResponse struct {
	UserInput  TurnText `json:"user_input"`
	AIResponse TurnText `json:"ai_response"`

	// AudioURL references the synthesized tutor reply, or null when
	// synthesis was skipped or failed.
	AudioURL *string `json:"audio_url"`
}

// Text returns the turn's textual triple.
func (t Turn) Text() TurnText {
	return TurnText{Hanzi: t.Hanzi, Pinyin: t.Pinyin, English: t.English}
}

// CharacterInfo is the payload of the auxiliary single-character lookup.
type CharacterInfo struct {
	Character string `json:"character"`
	Pinyin    string `json:"pinyin"`
	English   string `json:"english"`

	// AudioURL references a synthesized pronunciation, or null when
	// synthesis or upload failed.
	AudioURL *string `json:"audio_url"`
}
