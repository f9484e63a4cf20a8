package domain

import (
	"time"

	"github.com/google/uuid"
)

// Feedback records whether the user accepted or rejected a collaborator
// response. Recent records are fed back into later audits.
type Feedback struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Context   string
	Response  string
	Approved  bool
	CreatedAt time.Time
}

// Tone selects the voice of the audit summary.
type Tone string

const (
	ToneStrict Tone = "strict"
	ToneRoast  Tone = "roast"
	ToneGentle Tone = "gentle"
)

// ParseTone maps an API value to a Tone. An empty value selects ToneStrict.
func ParseTone(s string) (Tone, bool) {
	switch Tone(s) {
	case "", ToneStrict:
		return ToneStrict, true
	case ToneRoast, ToneGentle:
		return Tone(s), true
	}
	return "", false
}

// Audit is the collaborator's free-text summary of the user's day.
type Audit struct {
	Tone    Tone
	Summary string
}
