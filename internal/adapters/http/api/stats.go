package api

import (
	"net/http"
)

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	Stats() map[string]interface{}
}

// StatsHandler handles stats and state requests.
type StatsHandler struct {
	statsProvider StatsProvider
	deps          Dependencies
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider, deps Dependencies) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider, deps: deps}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.statsProvider.Stats())
}

// HandleState handles GET /state requests.
func (h *StatsHandler) HandleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, newStateResponse(h.deps.State()))
}
