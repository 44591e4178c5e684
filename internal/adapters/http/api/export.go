// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/csv"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/QueCS/ogame-highscores-tracker/internal/adapters/query"
)

// ExportHandler serves the same series as the history endpoint, rendered as
// a CSV download for spreadsheet analysis.
type ExportHandler struct {
	deps Dependencies
}

// NewExportHandler creates a new CSV export handler.
func NewExportHandler(deps Dependencies) *ExportHandler {
	return &ExportHandler{deps: deps}
}

// HandleExportCSV handles GET /history.csv requests. Parameters match
// GET /history.
func (h *ExportHandler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	params, err := historyParams(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	series, err := h.deps.History(r.Context(), params)
	if err != nil {
		if errors.Is(err, query.ErrBadParams) {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		writeError(w, http.StatusBadGateway, "store_unavailable", ErrStoreUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		`attachment; filename="history_`+series.Server+`_`+series.EntityID+`.csv"`)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{
		"time", "local_time", "server_time", "day",
		"rank", "score", "delta", "total_delta", "gained",
	})
	for _, s := range series.Samples {
		_ = cw.Write([]string{
			s.Time.Format(time.RFC3339),
			s.LocalTime.Format(time.RFC3339),
			s.ServerTime.Format(time.RFC3339),
			s.Day,
			strconv.FormatInt(s.Rank, 10),
			strconv.FormatInt(s.Score, 10),
			strconv.FormatInt(s.Delta, 10),
			strconv.FormatInt(s.TotalDelta, 10),
			strconv.FormatBool(s.Gained),
		})
	}
	cw.Flush()
}
