package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/chapterboard/internal/domain/model"
)

// DashboardHandler serves the derived views.
type DashboardHandler struct {
	deps Dependencies
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(deps Dependencies) *DashboardHandler {
	return &DashboardHandler{deps: deps}
}

// dashboardResponse puts the selected view first, followed by every view.
type dashboardResponse struct {
	SelectedMetric model.Metric    `json:"selected_metric"`
	Primary        any             `json:"primary"`
	Dashboard      model.Dashboard `json:"dashboard"`
}

// HandleDashboard handles GET /dashboard requests.
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	d := h.deps.Dashboard(r.Context())
	writeJSON(w, http.StatusOK, dashboardResponse{
		SelectedMetric: d.SelectedMetric,
		Primary:        primaryView(d),
		Dashboard:      d,
	})
}

func primaryView(d model.Dashboard) any {
	switch d.SelectedMetric {
	case model.MetricPerformance:
		return d.Leaderboard
	case model.MetricEvents:
		return d.Events
	case model.MetricCategories:
		return d.Categories
	case model.MetricDiversity:
		return d.Diversity
	default:
		return d.Health
	}
}

// HandleHealth handles GET /dashboard/health requests.
func (h *DashboardHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Dashboard(r.Context()).Health)
}

// HandleLeaderboard handles GET /leaderboard?limit=N requests. A missing
// limit selects the default size.
func (h *DashboardHandler) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: limit must be a positive integer", op, ErrBadRequest))
			return
		}
		limit = n
	}
	rows, err := h.deps.Leaderboard(r.Context(), limit)
	if err != nil {
		writeFailure(r.Context(), w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// HandleEvents handles GET /events/analytics requests.
func (h *DashboardHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Dashboard(r.Context()).Events)
}

// HandleCategories handles GET /categories requests.
func (h *DashboardHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Dashboard(r.Context()).Categories)
}

// HandleHouses handles GET /houses requests.
func (h *DashboardHandler) HandleHouses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Dashboard(r.Context()).Houses)
}

// HandlePledgeClasses handles GET /pledge-classes requests.
func (h *DashboardHandler) HandlePledgeClasses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Dashboard(r.Context()).PledgeClasses)
}

// HandleDiversity handles GET /diversity requests.
func (h *DashboardHandler) HandleDiversity(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Dashboard(r.Context()).Diversity)
}
