package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/daylog/internal/domain"
	"github.com/pkordes/daylog/internal/metrics"
	"github.com/pkordes/daylog/internal/repo"
)

// Auditor is the audit collaborator. Implementations should return a
// *domain.CollaboratorError on failure.
type Auditor interface {
	Audit(ctx context.Context, req domain.AuditRequest) (string, error)
}

// AuditService triggers the audit collaborator, at most once per session per
// cooldown window.
type AuditService struct {
	cooldown *Cooldown
	today    todayReader
	feedback repo.FeedbackRepo
	ai       Auditor
	timeout  time.Duration
	log      *slog.Logger
	metrics  *metrics.Metrics
}

// NewAuditService constructs an AuditService.
func NewAuditService(cd *Cooldown, today todayReader, feedback repo.FeedbackRepo, ai Auditor, timeout time.Duration, log *slog.Logger, m *metrics.Metrics) *AuditService {
	return &AuditService{cooldown: cd, today: today, feedback: feedback, ai: ai, timeout: timeout, log: log, metrics: m}
}

// Run audits the user's day in the given tone. session keys the cooldown;
// an empty session falls back to the user ID.
//
// The cooldown is checked before anything else. A call inside the window
// returns domain.ErrRateLimited without reading data or calling out.
// Collaborator failures return a *domain.CollaboratorError.
func (s *AuditService) Run(ctx context.Context, userID uuid.UUID, session string, tone domain.Tone) (domain.Audit, error) {
	if session == "" {
		session = userID.String()
	}
	if !s.cooldown.Allow(session) {
		s.metrics.RateLimited()
		return domain.Audit{}, fmt.Errorf("service.AuditService.Run: %w: wait before requesting another audit", domain.ErrRateLimited)
	}

	req, err := s.gather(ctx, userID, tone)
	if err != nil {
		return domain.Audit{}, fmt.Errorf("service.AuditService.Run: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	summary, err := s.ai.Audit(callCtx, req)
	if err != nil {
		err = asCollaboratorError(domain.OpAudit, err)
		s.metrics.Collaborator(domain.OpAudit, string(outcomeOf(err)))
		s.log.WarnContext(ctx, "audit failed",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()),
		)
		return domain.Audit{}, fmt.Errorf("service.AuditService.Run: %w", err)
	}
	s.metrics.Collaborator(domain.OpAudit, string(domain.OutcomeSuccess))

	return domain.Audit{Tone: tone, Summary: summary}, nil
}

// gather assembles the collaborator input: notes, the swept active set and
// the latest approved and rejected feedback.
func (s *AuditService) gather(ctx context.Context, userID uuid.UUID, tone domain.Tone) (domain.AuditRequest, error) {
	view, err := s.today.Today(ctx, userID)
	if err != nil {
		return domain.AuditRequest{}, err
	}
	approved, err := s.feedback.Recent(ctx, userID, true, domain.FeedbackSamples)
	if err != nil {
		return domain.AuditRequest{}, err
	}
	rejected, err := s.feedback.Recent(ctx, userID, false, domain.FeedbackSamples)
	if err != nil {
		return domain.AuditRequest{}, err
	}
	return domain.AuditRequest{
		Tone:      tone,
		Notebook:  view.User.Notebook,
		QuickNote: view.User.QuickNote,
		Entries:   view.Entries,
		Approved:  approved,
		Rejected:  rejected,
	}, nil
}
