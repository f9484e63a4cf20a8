package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/daylog/internal/domain"
)

// GetToday handles GET /entries/today.
// The archive sweep runs first, so the response never shows stale entries.
func (s *Server) GetToday(w http.ResponseWriter, r *http.Request) {
	view, err := s.entries.Today(r.Context(), caller(r))
	if err != nil {
		s.serviceError(w, r, err, "user not found")
		return
	}

	writeJSON(w, http.StatusOK, TodayResponse{
		Date:        toDate(view.Day),
		Entries:     entriesToResponse(view.Entries),
		Streak:      view.User.Streak,
		LastCheckIn: toOptionalDate(view.User.LastCheckIn),
		QuickNote:   view.User.QuickNote,
		Notebook:    view.User.Notebook,
		Archived:    view.Archived,
	})
}

// CreateEntry handles POST /entries.
func (s *Server) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var body CreateEntryRequest
	if err := decodeJSON(r, &body); err != nil {
		requestError(w, err)
		return
	}

	created, user, err := s.entries.Create(r.Context(), domain.LogEntry{
		UserID:      caller(r),
		Description: body.Description,
		StartTime:   body.StartTime,
		EndTime:     body.EndTime,
	})
	if err != nil {
		s.serviceError(w, r, err, "user not found")
		return
	}

	writeJSON(w, http.StatusCreated, CreateEntryResponse{Entry: entryToResponse(created), Streak: user.Streak})
}

// EndDay handles POST /entries/end-day.
func (s *Server) EndDay(w http.ResponseWriter, r *http.Request) {
	res, err := s.entries.EndDay(r.Context(), caller(r))
	if err != nil {
		s.serviceError(w, r, err, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, EndDayResponse{Date: toDate(res.Day), Archived: res.Archived})
}

// DeleteEntry handles DELETE /entries/{entryId}.
func (s *Server) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "entryId", chi.URLParam(r, "entryId"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		requestError(w, errors.New("entryId must be a UUID"))
		return
	}

	if err := s.entries.Delete(r.Context(), caller(r), id); err != nil {
		s.serviceError(w, r, err, "entry not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Categorize handles POST /entries/categorize.
// A collaborator failure is a 502 and leaves every category unchanged.
func (s *Server) Categorize(w http.ResponseWriter, r *http.Request) {
	entries, err := s.categories.Categorize(r.Context(), caller(r))
	if err != nil {
		s.serviceError(w, r, err, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, CategorizeResponse{Entries: entriesToResponse(entries)})
}

// GetTodayStats handles GET /stats/today.
// Categorization failure degrades the response instead of failing it.
func (s *Server) GetTodayStats(w http.ResponseWriter, r *http.Request) {
	v, err := s.categories.Visualize(r.Context(), caller(r))
	if err != nil {
		s.serviceError(w, r, err, "user not found")
		return
	}

	resp := StatsResponse{
		Date:           toDate(v.Day),
		Entries:        entriesToResponse(v.Entries),
		Stats:          statsToResponse(v.Stats),
		Categorization: "ok",
	}
	if v.CategorizationFailed {
		resp.Categorization = "failed"
		resp.Outcome = string(v.Outcome)
	}
	writeJSON(w, http.StatusOK, resp)
}
