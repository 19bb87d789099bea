package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/chapterboard/internal/app/loader"
)

// Refresh triggers set by the HTTP API.
const (
	triggerManual = "manual"
	triggerQueued = "requested"
)

// LoadHandler serves the loading operations.
type LoadHandler struct {
	deps  Dependencies
	queue RefreshQueue
	now   func() time.Time
}

// NewLoadHandler creates a new load handler.
func NewLoadHandler(deps Dependencies, queue RefreshQueue) *LoadHandler {
	return &LoadHandler{deps: deps, queue: queue, now: time.Now}
}

// stateResponse summarizes the loading state. Record arrays are reported as
// counts.
type stateResponse struct {
	loader.State
	Members     int  `json:"members"`
	Events      int  `json:"events"`
	Attendance  int  `json:"attendance"`
	CanLoadMore bool `json:"can_load_more_events"`
}

func newStateResponse(st loader.State) stateResponse {
	return stateResponse{
		State:       st,
		Members:     len(st.Members),
		Events:      len(st.Events),
		Attendance:  len(st.Attendance),
		CanLoadMore: st.CanLoadMoreEvents(),
	}
}

type queuedResponse struct {
	Status string `json:"status"`
}

// HandleRefresh handles POST /refresh. With ?async=true the refresh is
// queued and 202 is returned at once.
func (h *LoadHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	const op = "api.refresh"
	if async, _ := strconv.ParseBool(r.URL.Query().Get("async")); async {
		if h.queue == nil {
			writeFailure(r.Context(), w, op, ErrNoQueue)
			return
		}
		status := "queued"
		if !h.queue.Request(triggerQueued) {
			status = "pending"
		}
		writeJSON(w, http.StatusAccepted, queuedResponse{Status: status})
		return
	}

	if err := h.deps.Refresh(r.Context(), triggerManual); err != nil {
		writeFailure(r.Context(), w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, newStateResponse(h.deps.State()))
}

// HandleMoreEvents handles POST /events/more.
func (h *LoadHandler) HandleMoreEvents(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.LoadMoreEvents(r.Context()); err != nil {
		writeFailure(r.Context(), w, "api.load_more_events", err)
		return
	}
	writeJSON(w, http.StatusOK, newStateResponse(h.deps.State()))
}

// HandleMembersPage handles POST /members/page?page=N.
func (h *LoadHandler) HandleMembersPage(w http.ResponseWriter, r *http.Request) {
	const op = "api.load_members"
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		writeFailure(r.Context(), w, op, fmt.Errorf("%w: page must be an integer", ErrBadRequest))
		return
	}
	if err := h.deps.LoadMembers(r.Context(), page); err != nil {
		writeFailure(r.Context(), w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, newStateResponse(h.deps.State()))
}

// HandleDateRange handles PUT /date-range.
func (h *LoadHandler) HandleDateRange(w http.ResponseWriter, r *http.Request) {
	const op = "api.set_date_range"
	var req dateRangeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(r.Context(), w, op, err)
		return
	}
	dr, err := req.toRange(h.now())
	if err != nil {
		writeFailure(r.Context(), w, op, fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if err := h.deps.SetDateRange(r.Context(), dr); err != nil {
		writeFailure(r.Context(), w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, newStateResponse(h.deps.State()))
}

// HandleMetric handles PUT /metric.
func (h *LoadHandler) HandleMetric(w http.ResponseWriter, r *http.Request) {
	const op = "api.set_metric"
	var req metricRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(r.Context(), w, op, err)
		return
	}
	if _, err := h.deps.SetSelectedMetric(req.Metric); err != nil {
		writeFailure(r.Context(), w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, newStateResponse(h.deps.State()))
}
