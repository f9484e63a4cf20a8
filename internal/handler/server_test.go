package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/daylog/internal/domain"
	"github.com/pkordes/daylog/internal/handler"
	"github.com/pkordes/daylog/internal/middleware"
	"github.com/pkordes/daylog/internal/service"
)

// ---- mock servicers ----------------------------------------------------------
// Each method is a function field; set only the ones your test needs.

type mockEntryServicer struct {
	create func(ctx context.Context, e domain.LogEntry) (domain.LogEntry, domain.User, error)
	today  func(ctx context.Context, userID uuid.UUID) (service.TodayView, error)
	endDay func(ctx context.Context, userID uuid.UUID) (service.EndOfDay, error)
	delete func(ctx context.Context, userID, id uuid.UUID) error
}

func (m *mockEntryServicer) Create(ctx context.Context, e domain.LogEntry) (domain.LogEntry, domain.User, error) {
	return m.create(ctx, e)
}
func (m *mockEntryServicer) Today(ctx context.Context, userID uuid.UUID) (service.TodayView, error) {
	return m.today(ctx, userID)
}
func (m *mockEntryServicer) EndDay(ctx context.Context, userID uuid.UUID) (service.EndOfDay, error) {
	return m.endDay(ctx, userID)
}
func (m *mockEntryServicer) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.delete(ctx, userID, id)
}

type mockCategoryServicer struct {
	categorize func(ctx context.Context, userID uuid.UUID) ([]domain.LogEntry, error)
	visualize  func(ctx context.Context, userID uuid.UUID) (service.Visualization, error)
}

func (m *mockCategoryServicer) Categorize(ctx context.Context, userID uuid.UUID) ([]domain.LogEntry, error) {
	return m.categorize(ctx, userID)
}
func (m *mockCategoryServicer) Visualize(ctx context.Context, userID uuid.UUID) (service.Visualization, error) {
	return m.visualize(ctx, userID)
}

type mockHistoryServicer struct {
	page func(ctx context.Context, userID uuid.UUID, p domain.WindowParams) (domain.HistoryPage, error)
}

func (m *mockHistoryServicer) Page(ctx context.Context, userID uuid.UUID, p domain.WindowParams) (domain.HistoryPage, error) {
	return m.page(ctx, userID, p)
}

type mockAuditServicer struct {
	run func(ctx context.Context, userID uuid.UUID, session string, tone domain.Tone) (domain.Audit, error)
}

func (m *mockAuditServicer) Run(ctx context.Context, userID uuid.UUID, session string, tone domain.Tone) (domain.Audit, error) {
	return m.run(ctx, userID, session, tone)
}

type mockNoteServicer struct {
	saveNote func(ctx context.Context, userID uuid.UUID, kind domain.NoteKind, content string) error
}

func (m *mockNoteServicer) SaveNote(ctx context.Context, userID uuid.UUID, kind domain.NoteKind, content string) error {
	return m.saveNote(ctx, userID, kind, content)
}

type mockFeedbackServicer struct {
	submit func(ctx context.Context, f domain.Feedback) (domain.Feedback, error)
}

func (m *mockFeedbackServicer) Submit(ctx context.Context, f domain.Feedback) (domain.Feedback, error) {
	return m.submit(ctx, f)
}

type mockExportServicer struct {
	export func(ctx context.Context, userID uuid.UUID) ([]domain.ExportRow, error)
}

func (m *mockExportServicer) Export(ctx context.Context, userID uuid.UUID) ([]domain.ExportRow, error) {
	return m.export(ctx, userID)
}

// compile-time checks: the mocks must satisfy the handler interfaces.
var (
	_ handler.EntryServicer    = (*mockEntryServicer)(nil)
	_ handler.CategoryServicer = (*mockCategoryServicer)(nil)
	_ handler.HistoryServicer  = (*mockHistoryServicer)(nil)
	_ handler.AuditServicer    = (*mockAuditServicer)(nil)
	_ handler.NoteServicer     = (*mockNoteServicer)(nil)
	_ handler.FeedbackServicer = (*mockFeedbackServicer)(nil)
	_ handler.ExportServicer   = (*mockExportServicer)(nil)
)

// ---- helpers ---------------------------------------------------------------

// testUser is the caller of every request sent with do.
var testUser = uuid.MustParse("0b6f6d2e-3a59-4f4e-8d55-6f1a3c7f2a10")

func newHTTPHandler(svc handler.Services) http.Handler {
	return handler.Handler(handler.NewServer(svc, nil))
}

// do sends a request as testUser and returns the recorder.
func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set(middleware.HeaderUserID, testUser.String())
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// decodeError decodes an error envelope and returns its code.
func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorDetail {
	t.Helper()
	var body handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
