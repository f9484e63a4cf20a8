package handler

import (
	"bytes"
	"encoding/csv"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/daylog/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"entry_id", "description", "start_time", "end_time", "minutes",
	"category", "logical_day", "archive_date", "created_at",
}

// GetExport handles GET /export.
// It returns every entry of the caller, active and archived, as a flat table.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	var format *string
	if err := runtime.BindQueryParameter("form", true, false, "format", r.URL.Query(), &format); err != nil {
		requestError(w, errors.New("format must be csv or json"))
		return
	}
	if format != nil && *format != "csv" && *format != "json" {
		requestError(w, errors.New("format must be csv or json"))
		return
	}

	rows, err := s.export.Export(r.Context(), caller(r))
	if err != nil {
		s.serviceError(w, r, err, "user not found")
		return
	}

	if format != nil && *format == "csv" {
		writeCSV(w, rows)
		return
	}
	writeJSON(w, http.StatusOK, buildJSONRows(rows))
}

// buildJSONRows converts domain rows to the JSON response rows.
func buildJSONRows(rows []domain.ExportRow) []ExportRow {
	out := make([]ExportRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, domainRowToResponse(r))
	}
	return out
}

// writeCSV encodes domain rows as CSV with an attachment disposition.
func writeCSV(w http.ResponseWriter, rows []domain.ExportRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	// bytes.Buffer writes never fail, so csv.Writer errors are not checked per row.
	_ = cw.Write(csvHeaders)
	for _, r := range rows {
		_ = cw.Write(domainRowToCSVRecord(r))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="daylog-export.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// domainRowToResponse maps a domain.ExportRow to its JSON shape.
// An empty ArchiveDate becomes a nil pointer (omitted in JSON).
func domainRowToResponse(r domain.ExportRow) ExportRow {
	id, _ := uuid.Parse(r.EntryID)
	row := ExportRow{
		EntryId:     id,
		Description: r.Description,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		Minutes:     r.Minutes,
		Category:    r.Category,
		LogicalDay:  mustParseDate(r.LogicalDay),
		CreatedAt:   r.CreatedAt,
	}
	if r.ArchiveDate != "" {
		d := mustParseDate(r.ArchiveDate)
		row.ArchiveDate = &d
	}
	return row
}

// domainRowToCSVRecord encodes a domain.ExportRow as a flat string slice.
func domainRowToCSVRecord(r domain.ExportRow) []string {
	return []string{
		r.EntryID,
		r.Description,
		r.StartTime,
		r.EndTime,
		strconv.FormatFloat(r.Minutes, 'f', -1, 64),
		r.Category,
		r.LogicalDay,
		r.ArchiveDate,
		r.CreatedAt.UTC().Format(time.RFC3339),
	}
}
