// Package places turns external search responses into the canonical result set.
package places

import (
	"log/slog"
	"sort"

	geohash "github.com/TomiHiltunen/geohash-golang"
	"github.com/lcalzada-xor/where/internal/core/domain"
	"github.com/lcalzada-xor/where/internal/geo"
	"github.com/lcalzada-xor/where/internal/telemetry"
)

// Normalize converts raw records into a ResultSet sorted by distance from origin.
// Records without both latitude and longitude, or with out-of-range coordinates,
// are dropped. Records without an id get one derived from their geohash; a repeated
// id keeps only its first record. Ties in distance keep input order.
func Normalize(origin domain.Coordinate, raw []domain.RawPlace) domain.ResultSet {
	results := make(domain.ResultSet, 0, len(raw))
	seen := make(map[string]bool, len(raw))

	for _, p := range raw {
		if p.Lat == nil || p.Lng == nil {
			drop("missing_location", p)
			continue
		}
		target := domain.Coordinate{Lat: *p.Lat, Lng: *p.Lng}
		if !target.Valid() {
			drop("invalid_location", p)
			continue
		}

		id := p.ID
		if id == "" {
			id = "geo:" + geohash.Encode(target.Lat, target.Lng)
		}
		if seen[id] {
			drop("duplicate_id", p)
			continue
		}
		seen[id] = true

		name := domain.DefaultPlaceName
		if p.Name != nil && *p.Name != "" {
			name = *p.Name
		}
		var vicinity string
		if p.Address != nil {
			vicinity = *p.Address
		}

		distance, compass := geo.Annotate(origin, target)
		results = append(results, domain.ResultItem{
			ID:             id,
			Name:           name,
			Vicinity:       vicinity,
			DistanceMeters: distance,
			Compass:        compass,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].DistanceMeters < results[j].DistanceMeters
	})
	return results
}

func drop(reason string, p domain.RawPlace) {
	telemetry.DroppedRecords.WithLabelValues(reason).Inc()
	slog.Debug("Dropping place record", "reason", reason, "id", p.ID, "provider", p.Provider)
}
