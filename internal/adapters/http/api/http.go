// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/okian/chapterboard/internal/app/loader"
	"github.com/okian/chapterboard/internal/domain/model"
	"github.com/okian/chapterboard/pkg/logger"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 16

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	State() loader.State
	Dashboard(ctx context.Context) model.Dashboard
	Leaderboard(ctx context.Context, limit int) ([]model.MemberPerformance, error)
	Export(ctx context.Context, w io.Writer) error

	Refresh(ctx context.Context, trigger string) error
	LoadMembers(ctx context.Context, page int) error
	LoadMoreEvents(ctx context.Context) error
	SetDateRange(ctx context.Context, r model.DateRange) error
	SetSelectedMetric(name string) (model.Metric, error)
}

// RefreshQueue accepts asynchronous refresh requests.
type RefreshQueue interface {
	Request(trigger string) bool
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	dashboardHandler *DashboardHandler
	loadHandler      *LoadHandler
	exportHandler    *ExportHandler
}

// NewServer creates a new API server with all handlers. queue may be nil, in
// which case asynchronous refreshes are refused.
func NewServer(deps Dependencies, statsProvider StatsProvider, queue RefreshQueue) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider, deps),
		dashboardHandler: NewDashboardHandler(deps),
		loadHandler:      NewLoadHandler(deps, queue),
		exportHandler:    NewExportHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	route := func(pattern, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, RequestIDMiddleware(MetricsMiddleware(h, endpoint)))
	}

	route("GET /healthz", "healthz", s.healthHandler.HandleHealth)
	route("GET /stats", "stats", s.statsHandler.HandleStats)
	route("GET /state", "state", s.statsHandler.HandleState)

	route("GET /dashboard", "dashboard", s.dashboardHandler.HandleDashboard)
	route("GET /dashboard/health", "health", s.dashboardHandler.HandleHealth)
	route("GET /leaderboard", "leaderboard", s.dashboardHandler.HandleLeaderboard)
	route("GET /events/analytics", "events", s.dashboardHandler.HandleEvents)
	route("GET /categories", "categories", s.dashboardHandler.HandleCategories)
	route("GET /houses", "houses", s.dashboardHandler.HandleHouses)
	route("GET /pledge-classes", "pledge_classes", s.dashboardHandler.HandlePledgeClasses)
	route("GET /diversity", "diversity", s.dashboardHandler.HandleDiversity)
	route("GET /export.xlsx", "export", s.exportHandler.HandleExport)

	route("POST /refresh", "refresh", s.loadHandler.HandleRefresh)
	route("POST /events/more", "events_more", s.loadHandler.HandleMoreEvents)
	route("POST /members/page", "members_page", s.loadHandler.HandleMembersPage)
	route("PUT /date-range", "date_range", s.loadHandler.HandleDateRange)
	route("PUT /metric", "metric", s.loadHandler.HandleMetric)
}

// dateRangeRequest is the body of PUT /date-range. Either Days or at least
// one RFC3339 bound must be set.
type dateRangeRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Days  int    `json:"days"`
}

func (d dateRangeRequest) toRange(now time.Time) (model.DateRange, error) {
	start, end := strings.TrimSpace(d.Start), strings.TrimSpace(d.End)
	switch {
	case d.Days < 0:
		return model.DateRange{}, errors.New("days must not be negative")
	case d.Days > 0 && (start != "" || end != ""):
		return model.DateRange{}, errors.New("use either days or start/end, not both")
	case d.Days > 0:
		return model.LastDays(now, d.Days), nil
	case start == "" && end == "":
		return model.DateRange{}, errors.New("missing days or start/end")
	}

	var r model.DateRange
	var err error
	if start != "" {
		if r.Start, err = time.Parse(time.RFC3339, start); err != nil {
			return model.DateRange{}, errors.New("invalid start; must be RFC3339")
		}
	}
	if end != "" {
		if r.End, err = time.Parse(time.RFC3339, end); err != nil {
			return model.DateRange{}, errors.New("invalid end; must be RFC3339")
		}
	}
	return r, nil
}

type metricRequest struct {
	Metric string `json:"metric"`
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

// writeFailure maps a service error onto a status and error code.
func writeFailure(ctx context.Context, w http.ResponseWriter, op string, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Get().Named("api").Error(ctx, "request failed",
			logger.String("op", op),
			logger.String("request_id", RequestID(ctx)),
			logger.Error(err),
		)
	}
	writeError(w, status, code, fmt.Errorf("%s: %w", op, err))
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %w", ErrBadRequest, err)
	}
	return nil
}
