package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/daylog/internal/domain"
	"github.com/pkordes/daylog/internal/handler"
	"github.com/pkordes/daylog/internal/service"
)

func entryFixture() domain.LogEntry {
	return domain.LogEntry{
		ID:          uuid.New(),
		UserID:      testUser,
		Description: "Write report",
		StartTime:   "09:00",
		EndTime:     "10:30",
		Category:    domain.Uncategorized,
		CreatedAt:   time.Date(2025, 6, 11, 5, 30, 0, 0, time.UTC),
	}
}

// ---- GET /entries/today ----------------------------------------------------

func TestGetToday(t *testing.T) {
	e := entryFixture()
	last := day(2025, 6, 10)
	svc := &mockEntryServicer{
		today: func(_ context.Context, userID uuid.UUID) (service.TodayView, error) {
			assert.Equal(t, testUser, userID)
			return service.TodayView{
				Day:      day(2025, 6, 10),
				Entries:  []domain.LogEntry{e},
				User:     domain.User{ID: testUser, Streak: 3, LastCheckIn: &last, QuickNote: "q", Notebook: "n"},
				Archived: 2,
			}, nil
		},
	}

	rec := do(t, newHTTPHandler(handler.Services{Entries: svc}), http.MethodGet, "/entries/today", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "2025-06-10", body["date"])
	assert.EqualValues(t, 3, body["streak"])
	assert.Equal(t, "2025-06-10", body["last_check_in"])
	assert.EqualValues(t, 2, body["archived"])
	entries := body["entries"].([]any)
	require.Len(t, entries, 1)
	first := entries[0].(map[string]any)
	assert.Equal(t, e.ID.String(), first["id"])
	assert.Equal(t, "2025-06-10", first["logical_day"], "05:30 belongs to the previous logical day")
	assert.Nil(t, first["archive_date"])
}

func TestGetToday_EmptyIsArray(t *testing.T) {
	svc := &mockEntryServicer{
		today: func(_ context.Context, _ uuid.UUID) (service.TodayView, error) {
			return service.TodayView{Day: day(2025, 6, 11)}, nil
		},
	}

	rec := do(t, newHTTPHandler(handler.Services{Entries: svc}), http.MethodGet, "/entries/today", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"entries":[]`)
	assert.Contains(t, rec.Body.String(), `"last_check_in":null`)
}

func TestGetToday_InternalError(t *testing.T) {
	svc := &mockEntryServicer{
		today: func(_ context.Context, _ uuid.UUID) (service.TodayView, error) {
			return service.TodayView{}, errors.New("connection reset by peer")
		},
	}

	rec := do(t, newHTTPHandler(handler.Services{Entries: svc}), http.MethodGet, "/entries/today", "")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	detail := decodeError(t, rec)
	assert.Equal(t, "internal_error", detail.Code)
	assert.NotContains(t, detail.Message, "connection reset")
}

// ---- POST /entries -----------------------------------------------------------

func TestCreateEntry(t *testing.T) {
	var got domain.LogEntry
	svc := &mockEntryServicer{
		create: func(_ context.Context, e domain.LogEntry) (domain.LogEntry, domain.User, error) {
			got = e
			out := entryFixture()
			out.Description = e.Description
			return out, domain.User{Streak: 5}, nil
		},
	}

	rec := do(t, newHTTPHandler(handler.Services{Entries: svc}), http.MethodPost, "/entries",
		`{"description":"Write report","start_time":"09:00","end_time":"10:30"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, testUser, got.UserID, "the owner comes from the caller, never the body")
	assert.Equal(t, "09:00", got.StartTime)

	var body handler.CreateEntryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, 5, body.Streak)
	assert.Equal(t, "Write report", body.Entry.Description)
}

func TestCreateEntry_ValidationError(t *testing.T) {
	svc := &mockEntryServicer{
		create: func(_ context.Context, _ domain.LogEntry) (domain.LogEntry, domain.User, error) {
			return domain.LogEntry{}, domain.User{}, fmt.Errorf("%w: description required", domain.ErrValidation)
		},
	}

	rec := do(t, newHTTPHandler(handler.Services{Entries: svc}), http.MethodPost, "/entries",
		`{"description":"","start_time":"09:00","end_time":"10:30"}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	detail := decodeError(t, rec)
	assert.Equal(t, "validation_error", detail.Code)
	assert.Equal(t, "description required", detail.Message)
}

func TestCreateEntry_MalformedBody(t *testing.T) {
	svc := &mockEntryServicer{}

	for _, body := range []string{`not json`, `{"description":"x","owner":"someone"}`} {
		rec := do(t, newHTTPHandler(handler.Services{Entries: svc}), http.MethodPost, "/entries", body)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, body)
	}
}

// ---- POST /entries/end-day ---------------------------------------------------

func TestEndDay(t *testing.T) {
	svc := &mockEntryServicer{
		endDay: func(_ context.Context, _ uuid.UUID) (service.EndOfDay, error) {
			return service.EndOfDay{Day: day(2025, 6, 11), Archived: 4}, nil
		},
	}

	rec := do(t, newHTTPHandler(handler.Services{Entries: svc}), http.MethodPost, "/entries/end-day", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"date":"2025-06-11","archived":4}`, rec.Body.String())
}

// ---- DELETE /entries/{entryId} ----------------------------------------------

func TestDeleteEntry(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "owner", err: nil, status: http.StatusNoContent},
		{name: "not owner", err: fmt.Errorf("svc: %w: entry belongs to another user", domain.ErrForbidden), status: http.StatusForbidden, code: "forbidden"},
		{name: "missing", err: fmt.Errorf("svc: %w", domain.ErrNotFound), status: http.StatusNotFound, code: "not_found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockEntryServicer{
				delete: func(_ context.Context, userID, got uuid.UUID) error {
					assert.Equal(t, testUser, userID)
					assert.Equal(t, id, got)
					return tt.err
				},
			}

			rec := do(t, newHTTPHandler(handler.Services{Entries: svc}), http.MethodDelete, "/entries/"+id.String(), "")

			require.Equal(t, tt.status, rec.Code)
			if tt.code != "" {
				assert.Equal(t, tt.code, decodeError(t, rec).Code)
			}
		})
	}
}

func TestDeleteEntry_BadID(t *testing.T) {
	rec := do(t, newHTTPHandler(handler.Services{Entries: &mockEntryServicer{}}), http.MethodDelete, "/entries/not-a-uuid", "")

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

// ---- POST /entries/categorize ----------------------------------------------

func TestCategorize(t *testing.T) {
	e := entryFixture()
	e.Category = "Deep Work"
	svc := &mockCategoryServicer{
		categorize: func(_ context.Context, _ uuid.UUID) ([]domain.LogEntry, error) {
			return []domain.LogEntry{e}, nil
		},
	}

	rec := do(t, newHTTPHandler(handler.Services{Categories: svc}), http.MethodPost, "/entries/categorize", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body handler.CategorizeResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Entries, 1)
	assert.Equal(t, "Deep Work", body.Entries[0].Category)
}

func TestCategorize_CollaboratorFailure(t *testing.T) {
	svc := &mockCategoryServicer{
		categorize: func(_ context.Context, _ uuid.UUID) ([]domain.LogEntry, error) {
			return nil, fmt.Errorf("svc: %w", &domain.CollaboratorError{Op: domain.OpCategorize, Outcome: domain.OutcomeTimeout})
		},
	}

	rec := do(t, newHTTPHandler(handler.Services{Categories: svc}), http.MethodPost, "/entries/categorize", "")

	require.Equal(t, http.StatusBadGateway, rec.Code)
	detail := decodeError(t, rec)
	assert.Equal(t, "collaborator_failure", detail.Code)
	assert.Equal(t, "categorize timeout", detail.Message)
}

// ---- GET /stats/today --------------------------------------------------------

func TestGetTodayStats(t *testing.T) {
	svc := &mockCategoryServicer{
		visualize: func(_ context.Context, _ uuid.UUID) (service.Visualization, error) {
			return service.Visualization{
				Day: day(2025, 6, 11),
				Stats: domain.DayStats{
					TotalMinutes:    135,
					CategoryMinutes: map[string]float64{"Deep Work": 120, "Break": 15},
					Categories:      []string{"Deep Work", "Break"},
					FocusPct:        88,
					TopCategory:     "Deep Work",
					EntryCount:      3,
				},
				Outcome: domain.OutcomeSuccess,
			}, nil
		},
	}

	rec := do(t, newHTTPHandler(handler.Services{Categories: svc}), http.MethodGet, "/stats/today", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body handler.StatsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "ok", body.Categorization)
	assert.Empty(t, body.Outcome)
	assert.Equal(t, 135.0, body.Stats.TotalMinutes)
	assert.Equal(t, 88, body.Stats.FocusPct)
	assert.Equal(t, "Deep Work", body.Stats.TopCategory)
	assert.Equal(t, []string{"Deep Work", "Break"}, body.Stats.Categories)
	assert.Empty(t, body.Stats.Warnings)
}

func TestGetTodayStats_Degraded(t *testing.T) {
	svc := &mockCategoryServicer{
		visualize: func(_ context.Context, _ uuid.UUID) (service.Visualization, error) {
			return service.Visualization{
				Day:                  day(2025, 6, 11),
				Stats:                domain.DayStats{Warnings: []domain.ParseWarning{{Start: "noon", End: "13:00"}}},
				CategorizationFailed: true,
				Outcome:              domain.OutcomeUnavailable,
			}, nil
		},
	}

	rec := do(t, newHTTPHandler(handler.Services{Categories: svc}), http.MethodGet, "/stats/today", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `"categorization":"failed"`), body)
	assert.Contains(t, body, `"outcome":"unavailable"`)
	assert.Contains(t, body, `"warnings":[{"start_time":"noon","end_time":"13:00"}]`)
	assert.Contains(t, body, `"top_category":""`)
}
