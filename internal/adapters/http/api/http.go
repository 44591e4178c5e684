// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/QueCS/ogame-highscores-tracker/internal/adapters/query"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// History returns one entity's stored score series.
	History(ctx context.Context, p query.Params) (query.Series, error)

	// Servers returns the configured server list.
	Servers() []string

	// GetStats exposes tracker statistics for monitoring.
	GetStats() map[string]interface{}
}

// Server wires HTTP routes for the read API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	historyHandler *HistoryHandler
	exportHandler  *ExportHandler
	serversHandler *ServersHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, types []int) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(deps),
		historyHandler: NewHistoryHandler(deps),
		exportHandler:  NewExportHandler(deps),
		serversHandler: NewServersHandler(deps, types),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/history", MetricsMiddleware(s.historyHandler.HandleGetHistory, "history"))
	mux.HandleFunc("/history.csv", MetricsMiddleware(s.exportHandler.HandleExportCSV, "history_csv"))
	mux.HandleFunc("/servers", MetricsMiddleware(s.serversHandler.HandleGetServers, "servers"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
