package ports

import (
	"context"

	"github.com/lcalzada-xor/where/internal/core/domain"
)

// KeyValueStore is flat string storage with independent keys and no cross-key transactions.
type KeyValueStore interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// SnapshotCache persists the single last-known snapshot.
type SnapshotCache interface {
	// Load returns the stored snapshot. ok is false on first run and on any read failure.
	Load(ctx context.Context) (snap domain.Snapshot, ok bool)
	// Save is best-effort; errors wrap domain.ErrCacheIO.
	Save(ctx context.Context, snap domain.Snapshot) error
}
