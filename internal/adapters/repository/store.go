// Package repository caches computed dashboards keyed by a fingerprint of the
// data they were derived from.
package repository

import (
	"context"

	"github.com/okian/chapterboard/internal/domain/model"
)

// Store provides best-effort storage for dashboard snapshots.
type Store interface {
	// Get returns the dashboard cached under key.
	// Returns ErrCacheMiss if nothing valid is stored.
	Get(ctx context.Context, key string) (model.Dashboard, error)

	// Put stores d under key, replacing any previous value.
	Put(ctx context.Context, key string, d model.Dashboard) error

	// Close releases resources held by the store.
	Close() error
}
