package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/daylog/internal/domain"
	"github.com/pkordes/daylog/internal/repo"
)

// NoteService writes the user's quick note and notebook.
type NoteService struct {
	tx repo.Transactor
}

// NewNoteService constructs a NoteService.
func NewNoteService(tx repo.Transactor) *NoteService {
	return &NoteService{tx: tx}
}

// SaveNote overwrites one of the user's notes. An empty content clears it.
// Returns domain.ErrValidation for an unknown kind.
func (s *NoteService) SaveNote(ctx context.Context, userID uuid.UUID, kind domain.NoteKind, content string) error {
	if kind != domain.QuickNote && kind != domain.Notebook {
		return fmt.Errorf("%w: unknown note kind %q", domain.ErrValidation, kind)
	}
	// The lock orders this write against a concurrent end of day.
	err := s.tx.WithinTx(ctx, func(r repo.Repos) error {
		if _, err := r.Users.GetForUpdate(ctx, userID); err != nil {
			return err
		}
		return r.Users.SaveNote(ctx, userID, kind, content)
	})
	if err != nil {
		return fmt.Errorf("service.NoteService.SaveNote: %w", err)
	}
	return nil
}

// FeedbackService records the user's verdicts on collaborator responses.
type FeedbackService struct {
	tx repo.Transactor
}

// NewFeedbackService constructs a FeedbackService.
func NewFeedbackService(tx repo.Transactor) *FeedbackService {
	return &FeedbackService{tx: tx}
}

// Submit validates and persists f.
// Returns domain.ErrValidation if the response is blank.
func (s *FeedbackService) Submit(ctx context.Context, f domain.Feedback) (domain.Feedback, error) {
	if strings.TrimSpace(f.Response) == "" {
		return domain.Feedback{}, fmt.Errorf("%w: response is required", domain.ErrValidation)
	}

	var out domain.Feedback
	err := s.tx.WithinTx(ctx, func(r repo.Repos) error {
		if _, err := r.Users.Get(ctx, f.UserID); err != nil {
			return err
		}
		var err error
		out, err = r.Feedback.Create(ctx, f)
		return err
	})
	if err != nil {
		return domain.Feedback{}, fmt.Errorf("service.FeedbackService.Submit: %w", err)
	}
	return out, nil
}
