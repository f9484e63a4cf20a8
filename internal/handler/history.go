package handler

import (
	"errors"
	"net/http"

	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/daylog/internal/domain"
)

// GetHistory handles GET /history.
// Supports ?mode=day|week (default day) and ?offset=N (default 0). Positive
// offsets are clamped to 0; unknown modes fall back to day.
func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request) {
	var (
		mode   *string
		offset *int
	)
	if err := runtime.BindQueryParameter("form", true, false, "mode", r.URL.Query(), &mode); err != nil {
		requestError(w, errors.New("mode must be day or week"))
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "offset", r.URL.Query(), &offset); err != nil {
		requestError(w, errors.New("offset must be an integer"))
		return
	}

	page, err := s.history.Page(r.Context(), caller(r), domain.NewWindowParams(mode, offset))
	if err != nil {
		s.serviceError(w, r, err, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, historyToResponse(page))
}

func historyToResponse(p domain.HistoryPage) HistoryResponse {
	resp := HistoryResponse{
		Mode:         string(p.Window.Mode),
		Offset:       p.Window.Offset,
		Start:        toDate(p.Window.Start),
		End:          toDate(p.Window.End),
		PrevOffset:   p.Window.Offset - 1,
		NextOffset:   min(p.Window.Offset+1, 0),
		NextDisabled: p.Window.NextDisabled,
		HasOlder:     p.HasOlder,
		Days:         make([]HistoryDay, len(p.Days)),
		Totals: RangeStats{
			TotalMinutes: p.Totals.TotalMinutes,
			DayCount:     p.Totals.DayCount,
			EntryCount:   p.Totals.EntryCount,
		},
	}
	for i, d := range p.Days {
		resp.Days[i] = HistoryDay{
			Date:    toDate(d.Date),
			Entries: entriesToResponse(d.Entries),
			Stats:   statsToResponse(d.Stats),
		}
	}
	return resp
}
