// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/QueCS/ogame-highscores-tracker/internal/adapters/query"
	highscore "github.com/QueCS/ogame-highscores-tracker/internal/domain/highscore"
)

// HistoryHandler serves one entity's stored score series as JSON.
type HistoryHandler struct {
	deps Dependencies
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(deps Dependencies) *HistoryHandler {
	return &HistoryHandler{deps: deps}
}

// HandleGetHistory handles GET /history requests.
// Query parameters: server, id, type (name or code), category, days.
func (h *HistoryHandler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(w, http.StatusOK, series)
}

// historyParams parses and validates the shared query parameters of the
// history endpoints.
func historyParams(values url.Values) (query.Params, error) {
	p := query.Params{
		Server:   strings.TrimSpace(values.Get("server")),
		EntityID: strings.TrimSpace(values.Get("id")),
	}
	if p.Server == "" {
		return p, fmt.Errorf("%w: missing server", ErrBadRequest)
	}
	if p.EntityID == "" {
		return p, fmt.Errorf("%w: missing id", ErrBadRequest)
	}

	if raw := values.Get("category"); raw != "" {
		switch raw {
		case "player":
			p.Category = highscore.CategoryPlayer
		case "alliance":
			p.Category = highscore.CategoryAlliance
		default:
			return p, fmt.Errorf("%w: unknown category %q", ErrBadRequest, raw)
		}
	}

	if raw := values.Get("type"); raw != "" {
		// Accept both the display name and the numeric API code.
		if code, err := strconv.Atoi(raw); err == nil {
			p.Type = highscore.TypeFromCode(code)
		} else {
			p.Type = highscore.TypeFromName(raw)
		}
		if p.Type == highscore.TypeUnknown {
			return p, fmt.Errorf("%w: unknown type %q", ErrBadRequest, raw)
		}
	}

	if raw := values.Get("days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days <= 0 {
			return p, fmt.Errorf("%w: days must be a positive integer", ErrBadRequest)
		}
		p.Days = days
	}

	return p, nil
}
