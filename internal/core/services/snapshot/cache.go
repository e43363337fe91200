// Package snapshot persists the last known location, address and results
// as three independent key-value entries.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	geohash "github.com/TomiHiltunen/geohash-golang"
	"github.com/lcalzada-xor/where/internal/core/domain"
	"github.com/lcalzada-xor/where/internal/core/ports"
	"github.com/lcalzada-xor/where/internal/telemetry"
)

// Storage keys. There is no combined record and no version field.
const (
	KeyLocation = "cache:lastLocation"
	KeyAddress  = "cache:lastAddress"
	KeyPlaces   = "cache:lastPlaces"
)

// storedLocation is the JSON shape of KeyLocation.
type storedLocation struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Cache implements ports.SnapshotCache on top of a KeyValueStore.
type Cache struct {
	store ports.KeyValueStore
}

// NewCache creates a cache backed by store.
func NewCache(store ports.KeyValueStore) *Cache {
	return &Cache{store: store}
}

// Load reads all three keys. Any read or decode failure is logged and reported
// as "no cache" so a corrupt entry never blocks startup.
func (c *Cache) Load(ctx context.Context) (domain.Snapshot, bool) {
	snap, found, err := c.load(ctx)
	if err != nil {
		telemetry.CacheOperations.WithLabelValues("load", "error").Inc()
		telemetry.Failures.WithLabelValues(string(domain.KindCacheIO)).Inc()
		slog.Warn("Snapshot cache unreadable, starting empty", "kind", domain.KindOf(err), "error", err)
		return domain.Snapshot{}, false
	}
	if !found {
		telemetry.CacheOperations.WithLabelValues("load", "miss").Inc()
		return domain.Snapshot{}, false
	}
	telemetry.CacheOperations.WithLabelValues("load", "hit").Inc()
	return snap, true
}

func (c *Cache) load(ctx context.Context) (domain.Snapshot, bool, error) {
	var snap domain.Snapshot

	locStr, hasLoc, err := c.store.Get(ctx, KeyLocation)
	if err != nil {
		return snap, false, fmt.Errorf("%w: read %s: %w", domain.ErrCacheIO, KeyLocation, err)
	}
	addr, hasAddr, err := c.store.Get(ctx, KeyAddress)
	if err != nil {
		return snap, false, fmt.Errorf("%w: read %s: %w", domain.ErrCacheIO, KeyAddress, err)
	}
	placesStr, hasPlaces, err := c.store.Get(ctx, KeyPlaces)
	if err != nil {
		return snap, false, fmt.Errorf("%w: read %s: %w", domain.ErrCacheIO, KeyPlaces, err)
	}

	if hasLoc {
		var loc storedLocation
		if err := json.Unmarshal([]byte(locStr), &loc); err != nil {
			return snap, false, fmt.Errorf("%w: decode %s: %w", domain.ErrCacheIO, KeyLocation, err)
		}
		snap.Coordinate = &domain.Coordinate{Lat: loc.Lat, Lng: loc.Lng}
		snap.CapturedAt = loc.UpdatedAt
	}
	if hasAddr {
		snap.Address = addr
	}
	if hasPlaces {
		if err := json.Unmarshal([]byte(placesStr), &snap.Results); err != nil {
			return domain.Snapshot{}, false, fmt.Errorf("%w: decode %s: %w", domain.ErrCacheIO, KeyPlaces, err)
		}
	}

	return snap, hasLoc || hasAddr || hasPlaces, nil
}

// Save writes location (when known), address, then results. Writes are not
// transactional: a failure part way leaves earlier keys updated.
// CapturedAt is stored in UTC with the location and is not kept for a
// snapshot without a coordinate.
func (c *Cache) Save(ctx context.Context, snap domain.Snapshot) error {
	if err := c.save(ctx, snap); err != nil {
		telemetry.CacheOperations.WithLabelValues("save", "error").Inc()
		telemetry.Failures.WithLabelValues(string(domain.KindCacheIO)).Inc()
		return err
	}
	telemetry.CacheOperations.WithLabelValues("save", "ok").Inc()

	if snap.Coordinate != nil {
		slog.Debug("Snapshot saved",
			"cell", geohash.EncodeWithPrecision(snap.Coordinate.Lat, snap.Coordinate.Lng, 7),
			"results", len(snap.Results))
	}
	return nil
}

func (c *Cache) save(ctx context.Context, snap domain.Snapshot) error {
	if snap.Coordinate != nil {
		loc, err := json.Marshal(storedLocation{
			Lat:       snap.Coordinate.Lat,
			Lng:       snap.Coordinate.Lng,
			UpdatedAt: snap.CapturedAt.UTC().Round(0),
		})
		if err != nil {
			return fmt.Errorf("%w: encode %s: %w", domain.ErrCacheIO, KeyLocation, err)
		}
		if err := c.store.Set(ctx, KeyLocation, string(loc)); err != nil {
			return fmt.Errorf("%w: write %s: %w", domain.ErrCacheIO, KeyLocation, err)
		}
	}

	if err := c.store.Set(ctx, KeyAddress, snap.Address); err != nil {
		return fmt.Errorf("%w: write %s: %w", domain.ErrCacheIO, KeyAddress, err)
	}

	results, err := json.Marshal(snap.Results)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", domain.ErrCacheIO, KeyPlaces, err)
	}
	if err := c.store.Set(ctx, KeyPlaces, string(results)); err != nil {
		return fmt.Errorf("%w: write %s: %w", domain.ErrCacheIO, KeyPlaces, err)
	}
	return nil
}

var _ ports.SnapshotCache = (*Cache)(nil)
