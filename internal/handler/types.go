package handler

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/daylog/internal/domain"
)

// Wire types. Dates are openapi_types.Date so they encode as "2006-01-02".

type HealthResponse struct {
	Status string `json:"status"`
}

type Entry struct {
	Id          openapi_types.UUID  `json:"id"`
	Description string              `json:"description"`
	StartTime   string              `json:"start_time"`
	EndTime     string              `json:"end_time"`
	Category    string              `json:"category"`
	IsArchived  bool                `json:"is_archived"`
	ArchiveDate *openapi_types.Date `json:"archive_date"`
	LogicalDay  openapi_types.Date  `json:"logical_day"`
	CreatedAt   time.Time           `json:"created_at"`
}

type CreateEntryRequest struct {
	Description string `json:"description"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
}

type CreateEntryResponse struct {
	Entry  Entry `json:"entry"`
	Streak int   `json:"streak"`
}

type TodayResponse struct {
	Date        openapi_types.Date  `json:"date"`
	Entries     []Entry             `json:"entries"`
	Streak      int                 `json:"streak"`
	LastCheckIn *openapi_types.Date `json:"last_check_in"`
	QuickNote   string              `json:"quick_note"`
	Notebook    string              `json:"notebook"`
	Archived    int64               `json:"archived"`
}

type EndDayResponse struct {
	Date     openapi_types.Date `json:"date"`
	Archived int64              `json:"archived"`
}

type CategorizeResponse struct {
	Entries []Entry `json:"entries"`
}

type ParseWarning struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type DayStats struct {
	TotalMinutes    float64            `json:"total_minutes"`
	CategoryMinutes map[string]float64 `json:"category_minutes"`
	Categories      []string           `json:"categories"`
	FocusPct        int                `json:"focus_pct"`
	TopCategory     string             `json:"top_category"`
	EntryCount      int                `json:"entry_count"`
	Warnings        []ParseWarning     `json:"warnings"`
}

// StatsResponse is today's statistics. Categorization is "ok" or "failed";
// Outcome names the collaborator outcome when it failed.
type StatsResponse struct {
	Date           openapi_types.Date `json:"date"`
	Entries        []Entry            `json:"entries"`
	Stats          DayStats           `json:"stats"`
	Categorization string             `json:"categorization"`
	Outcome        string             `json:"outcome,omitempty"`
}

type HistoryDay struct {
	Date    openapi_types.Date `json:"date"`
	Entries []Entry            `json:"entries"`
	Stats   DayStats           `json:"stats"`
}

type RangeStats struct {
	TotalMinutes float64 `json:"total_minutes"`
	DayCount     int     `json:"day_count"`
	EntryCount   int     `json:"entry_count"`
}

type HistoryResponse struct {
	Mode         string             `json:"mode"`
	Offset       int                `json:"offset"`
	Start        openapi_types.Date `json:"start"`
	End          openapi_types.Date `json:"end"`
	PrevOffset   int                `json:"prev_offset"`
	NextOffset   int                `json:"next_offset"`
	NextDisabled bool               `json:"next_disabled"`
	HasOlder     bool               `json:"has_older"`
	Days         []HistoryDay       `json:"days"`
	Totals       RangeStats         `json:"totals"`
}

type NoteRequest struct {
	Kind    string  `json:"kind"`
	Content *string `json:"content"`
}

type FeedbackRequest struct {
	Context  string `json:"context"`
	Response string `json:"response"`
	Approved *bool  `json:"approved"`
}

type FeedbackResponse struct {
	Id        openapi_types.UUID `json:"id"`
	Approved  bool               `json:"approved"`
	CreatedAt time.Time          `json:"created_at"`
}

type AuditRequest struct {
	Tone string `json:"tone"`
}

type AuditResponse struct {
	Tone    string `json:"tone"`
	Summary string `json:"summary"`
}

type ExportRow struct {
	EntryId     openapi_types.UUID  `json:"entry_id"`
	Description string              `json:"description"`
	StartTime   string              `json:"start_time"`
	EndTime     string              `json:"end_time"`
	Minutes     float64             `json:"minutes"`
	Category    string              `json:"category"`
	LogicalDay  openapi_types.Date  `json:"logical_day"`
	ArchiveDate *openapi_types.Date `json:"archive_date,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

// ---- converters ------------------------------------------------------------

func toDate(t time.Time) openapi_types.Date {
	return openapi_types.Date{Time: domain.CivilDate(t)}
}

func toOptionalDate(t *time.Time) *openapi_types.Date {
	if t == nil {
		return nil
	}
	d := toDate(*t)
	return &d
}

func entryToResponse(e domain.LogEntry) Entry {
	return Entry{
		Id:          e.ID,
		Description: e.Description,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		Category:    e.Category,
		IsArchived:  e.IsArchived,
		ArchiveDate: toOptionalDate(e.ArchiveDate),
		LogicalDay:  toDate(e.LogicalDay()),
		CreatedAt:   e.CreatedAt,
	}
}

// entriesToResponse always returns a non-nil slice so JSON encodes [] not null.
func entriesToResponse(es []domain.LogEntry) []Entry {
	out := make([]Entry, len(es))
	for i, e := range es {
		out[i] = entryToResponse(e)
	}
	return out
}

func statsToResponse(s domain.DayStats) DayStats {
	out := DayStats{
		TotalMinutes:    s.TotalMinutes,
		CategoryMinutes: s.CategoryMinutes,
		Categories:      s.Categories,
		FocusPct:        s.FocusPct,
		TopCategory:     s.TopCategory,
		EntryCount:      s.EntryCount,
		Warnings:        make([]ParseWarning, len(s.Warnings)),
	}
	if out.CategoryMinutes == nil {
		out.CategoryMinutes = map[string]float64{}
	}
	if out.Categories == nil {
		out.Categories = []string{}
	}
	for i, w := range s.Warnings {
		out.Warnings[i] = ParseWarning{StartTime: w.Start, EndTime: w.End}
	}
	return out
}

// mustParseDate parses a "2006-01-02" string into an openapi_types.Date.
// Panics on malformed input; callers are expected to pass service-generated dates.
func mustParseDate(s string) openapi_types.Date {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic("handler: malformed date from service: " + s)
	}
	return openapi_types.Date{Time: t}
}
