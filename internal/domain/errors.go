package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing description, unknown note kind).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrForbidden is returned when the caller tries to change an entry it does
// not own. No state is changed. Handlers should map this to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrRateLimited is returned by the audit trigger while the caller's session
// is still inside its cooldown window. It is an expected outcome, not a
// failure of the collaborator. Handlers should map this to HTTP 429.
var ErrRateLimited = errors.New("rate limited")

// ErrCollaborator matches every *CollaboratorError via errors.Is.
// Handlers should map this to HTTP 502.
var ErrCollaborator = errors.New("collaborator failure")

// CollaboratorOutcome classifies the result of a call to the external
// categorization or audit collaborator.
type CollaboratorOutcome string

const (
	OutcomeSuccess     CollaboratorOutcome = "success"
	OutcomeTimeout     CollaboratorOutcome = "timeout"
	OutcomeMalformed   CollaboratorOutcome = "malformed"
	OutcomeUnavailable CollaboratorOutcome = "unavailable"
)

// CollaboratorError reports a failed collaborator call. Op names the call
// ("categorize" or "audit").
type CollaboratorError struct {
	Op      string
	Outcome CollaboratorOutcome
	Err     error
}

func (e *CollaboratorError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s: %s", ErrCollaborator, e.Op, e.Outcome)
	}
	return fmt.Sprintf("%s: %s: %s: %v", ErrCollaborator, e.Op, e.Outcome, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrCollaborator) match any CollaboratorError.
func (e *CollaboratorError) Is(target error) bool {
	return target == ErrCollaborator
}
