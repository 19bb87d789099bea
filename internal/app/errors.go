package service

import "errors"

// Sentinel errors returned by the Service.
var (
	ErrInvalidMetric = errors.New("invalid metric")
	ErrInvalidLimit  = errors.New("invalid leaderboard limit")
)
