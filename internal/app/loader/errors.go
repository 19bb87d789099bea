package loader

import "errors"

// Sentinel errors returned by Coordinator operations.
var (
	// ErrFetch wraps a backend failure; the message is also surfaced in State.Error.
	ErrFetch = errors.New("fetch failed")
	// ErrSuperseded reports that a newer request of the same kind replaced this one.
	// Its result was discarded and state was left untouched.
	ErrSuperseded = errors.New("request superseded")
	// ErrAborted reports that the caller cancelled the request.
	ErrAborted = errors.New("request aborted")
	// ErrInvalidPage is returned for negative page numbers.
	ErrInvalidPage = errors.New("invalid page")
	// ErrInvalidRange is returned when a date range ends before it starts.
	ErrInvalidRange = errors.New("invalid date range")
)
