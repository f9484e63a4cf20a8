package domain

import (
	"time"

	"github.com/google/uuid"
)

// NoteKind selects which of the user's notes a write targets.
type NoteKind string

const (
	// QuickNote is the ephemeral note cleared by the manual end of day.
	QuickNote NoteKind = "quick_note"
	// Notebook is the long-lived note. Nothing in the day lifecycle touches it.
	Notebook NoteKind = "notebook"
)

// User holds the per-user state owned by this service. Credentials and
// profile data belong to the surrounding application.
//
// Streak and LastCheckIn are only ever written together.
type User struct {
	ID          uuid.UUID
	Streak      int
	LastCheckIn *time.Time // logical date of the latest check-in
	QuickNote   string
	Notebook    string
}
