package service_test

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/daylog/internal/domain"
	"github.com/pkordes/daylog/internal/repo"
)

// memStore is an in-memory stand-in for the Postgres repos and Transactor.
// WithinTx restores a snapshot when fn fails, so rollback behaviour can be
// asserted without a database.
type memStore struct {
	mu       sync.Mutex
	users    map[uuid.UUID]domain.User
	entries  []domain.LogEntry
	feedback []domain.Feedback

	txCount   int
	lockCount int

	// failSaveStreak, when set, is returned by Users.SaveStreak.
	failSaveStreak error
}

func newMemStore() *memStore {
	return &memStore{users: map[uuid.UUID]domain.User{}}
}

func (s *memStore) WithinTx(_ context.Context, fn func(repo.Repos) error) error {
	s.mu.Lock()
	s.txCount++
	users := make(map[uuid.UUID]domain.User, len(s.users))
	for k, v := range s.users {
		users[k] = v
	}
	entries := slices.Clone(s.entries)
	feedback := slices.Clone(s.feedback)
	s.mu.Unlock()

	if err := fn(s.repos()); err != nil {
		s.mu.Lock()
		s.users, s.entries, s.feedback = users, entries, feedback
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *memStore) repos() repo.Repos {
	return repo.Repos{Entries: memEntries{s}, Users: memUsers{s}, Feedback: memFeedback{s}}
}

// seed stores e as-is, assigning an ID when missing.
func (s *memStore) seed(e domain.LogEntry) domain.LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Category == "" {
		e.Category = domain.Uncategorized
	}
	s.entries = append(s.entries, e)
	return e
}

func (s *memStore) entry(id uuid.UUID) (domain.LogEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.ID == id {
			return e, true
		}
	}
	return domain.LogEntry{}, false
}

func (s *memStore) user(id uuid.UUID) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id]
}

var _ repo.Transactor = (*memStore)(nil)

// ---- entries ---------------------------------------------------------------

type memEntries struct{ s *memStore }

var _ repo.EntryRepo = memEntries{}

func (m memEntries) Create(_ context.Context, e domain.LogEntry) (domain.LogEntry, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	e.ID = uuid.New()
	m.s.entries = append(m.s.entries, e)
	return e, nil
}

func (m memEntries) GetByID(_ context.Context, id uuid.UUID) (domain.LogEntry, error) {
	if e, ok := m.s.entry(id); ok {
		return e, nil
	}
	return domain.LogEntry{}, domain.ErrNotFound
}

func (m memEntries) ListActive(_ context.Context, userID uuid.UUID) ([]domain.LogEntry, error) {
	out := m.filter(func(e domain.LogEntry) bool { return e.UserID == userID && !e.IsArchived })
	slices.SortFunc(out, func(a, b domain.LogEntry) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (m memEntries) Archive(_ context.Context, userID uuid.UUID, stamps []domain.ArchiveStamp) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var n int64
	for _, st := range stamps {
		for i, e := range m.s.entries {
			if e.ID == st.ID && e.UserID == userID && !e.IsArchived {
				d := st.Date
				m.s.entries[i].IsArchived = true
				m.s.entries[i].ArchiveDate = &d
				n++
			}
		}
	}
	return n, nil
}

func (m memEntries) ArchiveAllActive(_ context.Context, userID uuid.UUID, day time.Time) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var n int64
	for i, e := range m.s.entries {
		if e.UserID == userID && !e.IsArchived {
			d := day
			m.s.entries[i].IsArchived = true
			m.s.entries[i].ArchiveDate = &d
			n++
		}
	}
	return n, nil
}

func (m memEntries) ListArchivedRange(_ context.Context, userID uuid.UUID, start, end time.Time) ([]domain.LogEntry, error) {
	out := m.filter(func(e domain.LogEntry) bool {
		return e.UserID == userID && e.IsArchived &&
			!e.ArchiveDate.Before(start) && !e.ArchiveDate.After(end)
	})
	slices.SortFunc(out, func(a, b domain.LogEntry) int {
		if c := b.ArchiveDate.Compare(*a.ArchiveDate); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (m memEntries) HasArchivedBefore(_ context.Context, userID uuid.UUID, day time.Time) (bool, error) {
	older := m.filter(func(e domain.LogEntry) bool {
		return e.UserID == userID && e.IsArchived && e.ArchiveDate.Before(day)
	})
	return len(older) > 0, nil
}

func (m memEntries) RecentCategories(_ context.Context, userID uuid.UUID, limit int) ([]string, error) {
	all := m.filter(func(e domain.LogEntry) bool { return e.UserID == userID })
	slices.SortFunc(all, func(a, b domain.LogEntry) int { return b.CreatedAt.Compare(a.CreatedAt) })
	var out []string
	for _, e := range all {
		if e.Category == domain.Uncategorized || slices.Contains(out, e.Category) {
			continue
		}
		out = append(out, e.Category)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m memEntries) SetCategories(_ context.Context, userID uuid.UUID, categories map[uuid.UUID]string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for i, e := range m.s.entries {
		if c, ok := categories[e.ID]; ok && e.UserID == userID {
			m.s.entries[i].Category = c
		}
	}
	return nil
}

func (m memEntries) ListAll(_ context.Context, userID uuid.UUID) ([]domain.LogEntry, error) {
	out := m.filter(func(e domain.LogEntry) bool { return e.UserID == userID })
	slices.SortFunc(out, func(a, b domain.LogEntry) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

func (m memEntries) Delete(_ context.Context, userID, id uuid.UUID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for i, e := range m.s.entries {
		if e.ID == id && e.UserID == userID {
			m.s.entries = slices.Delete(m.s.entries, i, i+1)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m memEntries) filter(keep func(domain.LogEntry) bool) []domain.LogEntry {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := []domain.LogEntry{}
	for _, e := range m.s.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// ---- users -----------------------------------------------------------------

type memUsers struct{ s *memStore }

var _ repo.UserRepo = memUsers{}

func (m memUsers) Get(_ context.Context, id uuid.UUID) (domain.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	u, ok := m.s.users[id]
	if !ok {
		u = domain.User{ID: id}
		m.s.users[id] = u
	}
	return u, nil
}

func (m memUsers) GetForUpdate(ctx context.Context, id uuid.UUID) (domain.User, error) {
	m.s.mu.Lock()
	m.s.lockCount++
	m.s.mu.Unlock()
	return m.Get(ctx, id)
}

func (m memUsers) SaveStreak(_ context.Context, id uuid.UUID, streak int, lastCheckIn time.Time) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.failSaveStreak != nil {
		return m.s.failSaveStreak
	}
	u := m.s.users[id]
	u.Streak = streak
	u.LastCheckIn = &lastCheckIn
	m.s.users[id] = u
	return nil
}

func (m memUsers) SaveNote(_ context.Context, id uuid.UUID, kind domain.NoteKind, content string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	u, ok := m.s.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	if kind == domain.QuickNote {
		u.QuickNote = content
	} else {
		u.Notebook = content
	}
	m.s.users[id] = u
	return nil
}

// ---- feedback --------------------------------------------------------------

type memFeedback struct{ s *memStore }

var _ repo.FeedbackRepo = memFeedback{}

func (m memFeedback) Create(_ context.Context, f domain.Feedback) (domain.Feedback, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	f.ID = uuid.New()
	f.CreatedAt = time.Now()
	m.s.feedback = append(m.s.feedback, f)
	return f, nil
}

func (m memFeedback) Recent(_ context.Context, userID uuid.UUID, approved bool, limit int) ([]domain.Feedback, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := []domain.Feedback{}
	for i := len(m.s.feedback) - 1; i >= 0 && len(out) < limit; i-- {
		if f := m.s.feedback[i]; f.UserID == userID && f.Approved == approved {
			out = append(out, f)
		}
	}
	return out, nil
}

// ---- function-field mocks ----------------------------------------------------

// mockEntryRepo is a hand-written test double for repo.EntryRepo.
// Each method is a function field; set only the ones your test needs.
type mockEntryRepo struct {
	repo.EntryRepo

	getByID           func(ctx context.Context, id uuid.UUID) (domain.LogEntry, error)
	delete            func(ctx context.Context, userID, id uuid.UUID) error
	listArchivedRange func(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]domain.LogEntry, error)
	hasArchivedBefore func(ctx context.Context, userID uuid.UUID, day time.Time) (bool, error)
	recentCategories  func(ctx context.Context, userID uuid.UUID, limit int) ([]string, error)
	listAll           func(ctx context.Context, userID uuid.UUID) ([]domain.LogEntry, error)
}

func (m *mockEntryRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.LogEntry, error) {
	return m.getByID(ctx, id)
}
func (m *mockEntryRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.delete(ctx, userID, id)
}
func (m *mockEntryRepo) ListArchivedRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]domain.LogEntry, error) {
	return m.listArchivedRange(ctx, userID, start, end)
}
func (m *mockEntryRepo) HasArchivedBefore(ctx context.Context, userID uuid.UUID, day time.Time) (bool, error) {
	return m.hasArchivedBefore(ctx, userID, day)
}
func (m *mockEntryRepo) RecentCategories(ctx context.Context, userID uuid.UUID, limit int) ([]string, error) {
	return m.recentCategories(ctx, userID, limit)
}
func (m *mockEntryRepo) ListAll(ctx context.Context, userID uuid.UUID) ([]domain.LogEntry, error) {
	return m.listAll(ctx, userID)
}

// mockSweeper is a test double for the sweep dependency of HistoryService.
type mockSweeper struct {
	calls int
	err   error
}

func (m *mockSweeper) Sweep(_ context.Context, _ uuid.UUID) error {
	m.calls++
	return m.err
}

// fakeAI is a test double for both collaborators.
type fakeAI struct {
	mu             sync.Mutex
	categorize     func(ctx context.Context, req domain.CategorizeRequest) (domain.Categorization, error)
	audit          func(ctx context.Context, req domain.AuditRequest) (string, error)
	categorizeReqs []domain.CategorizeRequest
	auditReqs      []domain.AuditRequest
}

func (f *fakeAI) Categorize(ctx context.Context, req domain.CategorizeRequest) (domain.Categorization, error) {
	f.mu.Lock()
	f.categorizeReqs = append(f.categorizeReqs, req)
	f.mu.Unlock()
	return f.categorize(ctx, req)
}

func (f *fakeAI) Audit(ctx context.Context, req domain.AuditRequest) (string, error) {
	f.mu.Lock()
	f.auditReqs = append(f.auditReqs, req)
	f.mu.Unlock()
	return f.audit(ctx, req)
}

// ---- helpers ---------------------------------------------------------------

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// clock is a settable time source.
type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

// at builds a local wall-clock time; the day boundary is read in the
// timestamp's own location.
func at(y int, m time.Month, d, hour, min int) time.Time {
	return time.Date(y, m, d, hour, min, 0, 0, time.UTC)
}

// date builds a logical date.
func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
