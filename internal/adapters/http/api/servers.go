// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	highscore "github.com/QueCS/ogame-highscores-tracker/internal/domain/highscore"
)

// ServersHandler exposes the tracked configuration so dashboards can build
// their selectors without hardcoding it.
type ServersHandler struct {
	deps  Dependencies
	types []int
}

// NewServersHandler creates a new servers handler.
func NewServersHandler(deps Dependencies, types []int) *ServersHandler {
	return &ServersHandler{deps: deps, types: types}
}

type serversResponse struct {
	Servers    []string `json:"servers"`
	Categories []string `json:"categories"`
	Types      []string `json:"types"`
}

// HandleGetServers handles GET /servers requests.
func (h *ServersHandler) HandleGetServers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, serversResponse{
		Servers: h.deps.Servers(),
		Categories: []string{
			highscore.CategoryPlayer.String(),
			highscore.CategoryAlliance.String(),
		},
		Types: highscore.TypeNames(h.types),
	})
}
