package source

import "errors"

// Sentinel errors for record sources.
var (
	ErrQuery        = errors.New("query failed")
	ErrScan         = errors.New("scan failed")
	ErrInvalidPage  = errors.New("invalid page request")
	ErrNotConnected = errors.New("database not connected")
)
