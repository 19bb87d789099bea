package api

import (
	"errors"
	"net/http"

	service "github.com/okian/chapterboard/internal/app"
	"github.com/okian/chapterboard/internal/app/loader"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrNoQueue    = errors.New("asynchronous refresh not configured")
)

// classify maps an error onto an HTTP status and a stable error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, loader.ErrInvalidPage),
		errors.Is(err, loader.ErrInvalidRange),
		errors.Is(err, service.ErrInvalidLimit),
		errors.Is(err, service.ErrInvalidMetric):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrNoQueue):
		return http.StatusNotImplemented, "not_configured"
	case errors.Is(err, loader.ErrAborted):
		return http.StatusServiceUnavailable, "aborted"
	case errors.Is(err, loader.ErrFetch):
		return http.StatusBadGateway, "fetch_failed"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
