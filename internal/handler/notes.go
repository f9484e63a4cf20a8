package handler

import (
	"errors"
	"net/http"

	"github.com/pkordes/daylog/internal/domain"
	"github.com/pkordes/daylog/internal/middleware"
)

// SaveNote handles PUT /notes.
func (s *Server) SaveNote(w http.ResponseWriter, r *http.Request) {
	var body NoteRequest
	if err := decodeJSON(r, &body); err != nil {
		requestError(w, err)
		return
	}
	if body.Content == nil {
		requestError(w, errors.New("content is required"))
		return
	}

	if err := s.notes.SaveNote(r.Context(), caller(r), domain.NoteKind(body.Kind), *body.Content); err != nil {
		s.serviceError(w, r, err, "user not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SubmitFeedback handles POST /feedback.
func (s *Server) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var body FeedbackRequest
	if err := decodeJSON(r, &body); err != nil {
		requestError(w, err)
		return
	}
	if body.Approved == nil {
		requestError(w, errors.New("approved is required"))
		return
	}

	created, err := s.feedback.Submit(r.Context(), domain.Feedback{
		UserID:   caller(r),
		Context:  body.Context,
		Response: body.Response,
		Approved: *body.Approved,
	})
	if err != nil {
		s.serviceError(w, r, err, "user not found")
		return
	}
	writeJSON(w, http.StatusCreated, FeedbackResponse{Id: created.ID, Approved: created.Approved, CreatedAt: created.CreatedAt})
}

// RunAudit handles POST /audit.
// The body is optional; an empty tone selects strict. A call inside the
// session's cooldown is a 429.
func (s *Server) RunAudit(w http.ResponseWriter, r *http.Request) {
	var body AuditRequest
	if err := decodeJSON(r, &body); err != nil && !errors.Is(err, errEmptyBody) {
		requestError(w, err)
		return
	}
	tone, ok := domain.ParseTone(body.Tone)
	if !ok {
		requestError(w, errors.New("tone must be strict, roast or gentle"))
		return
	}

	audit, err := s.audit.Run(r.Context(), caller(r), middleware.SessionID(r.Context()), tone)
	if err != nil {
		s.serviceError(w, r, err, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, AuditResponse{Tone: string(audit.Tone), Summary: audit.Summary})
}
