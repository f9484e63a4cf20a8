package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/daylog/internal/domain"
)

// FeedbackRepo defines the persistence operations for audit feedback records.
type FeedbackRepo interface {
	// Create inserts a feedback record and returns it with ID and CreatedAt set.
	Create(ctx context.Context, f domain.Feedback) (domain.Feedback, error)

	// Recent returns up to limit of the user's records with the given verdict,
	// newest first.
	Recent(ctx context.Context, userID uuid.UUID, approved bool, limit int) ([]domain.Feedback, error)
}

// pgFeedbackRepo is the Postgres implementation of FeedbackRepo.
type pgFeedbackRepo struct {
	db db
}

// NewFeedbackRepo constructs a FeedbackRepo backed by the provided db connection.
func NewFeedbackRepo(db db) FeedbackRepo {
	return &pgFeedbackRepo{db: db}
}

func (r *pgFeedbackRepo) Create(ctx context.Context, f domain.Feedback) (domain.Feedback, error) {
	const q = `
		INSERT INTO feedback (user_id, context, response, approved)
		VALUES (@user_id, @context, @response, @approved)
		RETURNING id, user_id, context, response, approved, created_at`

	result, err := scanFeedback(r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"user_id":  f.UserID,
		"context":  f.Context,
		"response": f.Response,
		"approved": f.Approved,
	}))
	if err != nil {
		return domain.Feedback{}, fmt.Errorf("repo.FeedbackRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgFeedbackRepo) Recent(ctx context.Context, userID uuid.UUID, approved bool, limit int) ([]domain.Feedback, error) {
	const q = `
		SELECT id, user_id, context, response, approved, created_at
		FROM feedback
		WHERE user_id = @user_id AND approved = @approved
		ORDER BY created_at DESC
		LIMIT @limit`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"user_id": userID, "approved": approved, "limit": limit})
	if err != nil {
		return nil, fmt.Errorf("repo.FeedbackRepo.Recent: %w", err)
	}
	defer rows.Close()

	records := []domain.Feedback{}
	for rows.Next() {
		f, err := scanFeedback(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.FeedbackRepo.Recent: scan: %w", err)
		}
		records = append(records, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.FeedbackRepo.Recent: rows: %w", err)
	}
	return records, nil
}

func scanFeedback(s scanner) (domain.Feedback, error) {
	var (
		f          domain.Feedback
		id, userID pgtype.UUID
	)
	err := s.Scan(&id, &userID, &f.Context, &f.Response, &f.Approved, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Feedback{}, domain.ErrNotFound
		}
		return domain.Feedback{}, err
	}
	f.ID = uuid.UUID(id.Bytes)
	f.UserID = uuid.UUID(userID.Bytes)
	return f, nil
}
