// Package scene runs narrative beats: it schedules turns, feeds the dialogue
// generator, and folds the results back into relationships and personalities.
package scene

import (
	"github.com/emberworks/dramatis/internal/conversation"
)

// Scene is a scripted situation played out over one or more beats.
type Scene struct {
	Title   string
	Premise string
	Stakes  string
	Beats   []Beat
}

// Beat is one conversational encounter within a scene.
type Beat struct {
	Situation string
	Location  string
	TimeOfDay string
	// Participants lists the present agents, in speaking-rotation order.
	Participants []string
	// Complications maps an agent to a secret they carry into this beat.
	Complications map[string]string
}

// Interjection is a recorded break into the rotation.
type Interjection struct {
	Observer string
	Round    int
	Content  string
	Tone     string
	Reason   string
}

// BeatResult is everything one beat produced.
type BeatResult struct {
	BeatNumber    int
	Turns         []conversation.Turn
	Interjections []Interjection
	EndReason     string
	Summary       string
	Stats         conversation.Stats
}
