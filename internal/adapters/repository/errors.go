package repository

import "errors"

// Sentinel kinds for cache errors.
var (
	ErrCacheMiss         = errors.New("dashboard not cached")
	ErrInvalidKey        = errors.New("invalid cache key")
	ErrRedisNotConnected = errors.New("redis not connected")
	ErrEncode            = errors.New("dashboard encoding failed")
)
