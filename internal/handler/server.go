// Package handler implements the HTTP handlers for the Daylog API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, entry.go, history.go, etc.) but all share the same Server
// struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/daylog/internal/domain"
	"github.com/pkordes/daylog/internal/middleware"
	"github.com/pkordes/daylog/internal/service"
)

// EntryServicer defines the archive state machine operations the entry
// handlers depend on. Defining the interface here (in the consumer package)
// follows the Go convention: "accept interfaces, return concrete types". It
// lets handler tests inject a mock without touching the database.
type EntryServicer interface {
	Create(ctx context.Context, e domain.LogEntry) (domain.LogEntry, domain.User, error)
	Today(ctx context.Context, userID uuid.UUID) (service.TodayView, error)
	EndDay(ctx context.Context, userID uuid.UUID) (service.EndOfDay, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// CategoryServicer covers categorization and today's statistics.
type CategoryServicer interface {
	Categorize(ctx context.Context, userID uuid.UUID) ([]domain.LogEntry, error)
	Visualize(ctx context.Context, userID uuid.UUID) (service.Visualization, error)
}

// HistoryServicer covers the history navigator.
type HistoryServicer interface {
	Page(ctx context.Context, userID uuid.UUID, p domain.WindowParams) (domain.HistoryPage, error)
}

// AuditServicer covers the rate-limited audit trigger.
type AuditServicer interface {
	Run(ctx context.Context, userID uuid.UUID, session string, tone domain.Tone) (domain.Audit, error)
}

// NoteServicer covers the user's notes.
type NoteServicer interface {
	SaveNote(ctx context.Context, userID uuid.UUID, kind domain.NoteKind, content string) error
}

// FeedbackServicer covers audit feedback.
type FeedbackServicer interface {
	Submit(ctx context.Context, f domain.Feedback) (domain.Feedback, error)
}

// ExportServicer covers the flat data export.
type ExportServicer interface {
	Export(ctx context.Context, userID uuid.UUID) ([]domain.ExportRow, error)
}

// Services groups the Server's dependencies. A nil field leaves its routes
// unusable, which health-only tests rely on.
type Services struct {
	Entries    EntryServicer
	Categories CategoryServicer
	History    HistoryServicer
	Audit      AuditServicer
	Notes      NoteServicer
	Feedback   FeedbackServicer
	Export     ExportServicer
}

// Server holds the dependencies of every API handler.
// cmd/api mounts it via Handler(server).
type Server struct {
	entries    EntryServicer
	categories CategoryServicer
	history    HistoryServicer
	audit      AuditServicer
	notes      NoteServicer
	feedback   FeedbackServicer
	export     ExportServicer
	log        *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(svc Services, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		entries:    svc.Entries,
		categories: svc.Categories,
		history:    svc.History,
		audit:      svc.Audit,
		notes:      svc.Notes,
		feedback:   svc.Feedback,
		export:     svc.Export,
		log:        log,
	}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(Services{}, nil)
}

// Handler returns a chi router serving every API route of s.
// Everything except /healthz requires the identity headers.
func Handler(s *Server) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewIdentity())

		r.Get("/entries/today", s.GetToday)
		r.Post("/entries", s.CreateEntry)
		r.Post("/entries/end-day", s.EndDay)
		r.Post("/entries/categorize", s.Categorize)
		r.Delete("/entries/{entryId}", s.DeleteEntry)

		r.Get("/stats/today", s.GetTodayStats)
		r.Get("/history", s.GetHistory)

		r.Put("/notes", s.SaveNote)
		r.Post("/feedback", s.SubmitFeedback)
		r.Post("/audit", s.RunAudit)

		r.Get("/export", s.GetExport)
	})
	return r
}

// caller returns the identity placed in the context by middleware.NewIdentity.
func caller(r *http.Request) uuid.UUID {
	id, _ := middleware.UserID(r.Context())
	return id
}
