package mock

import (
	"context"
	"testing"
	"time"

	"github.com/lcalzada-xor/where/internal/core/domain"
	"github.com/lcalzada-xor/where/internal/core/services/places"
	"github.com/lcalzada-xor/where/internal/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func query(types ...string) domain.SearchQuery {
	return domain.SearchQuery{
		Center:        domain.Coordinate{Lat: 59.3293, Lng: 18.0686},
		RadiusMeters:  1200,
		IncludedTypes: types,
		MaxResults:    12,
	}
}

func TestDataGenerator_Deterministic(t *testing.T) {
	g := NewDataGenerator("basic")
	ctx := context.Background()

	first, err := g.SearchNearby(ctx, query("hospital"))
	require.NoError(t, err)
	second, err := g.SearchNearby(ctx, query("hospital"))
	require.NoError(t, err)

	assert.Len(t, first, 12)
	assert.Equal(t, first, second)
}

func TestDataGenerator_WithinRadius(t *testing.T) {
	g := NewDataGenerator("crowded")
	q := query("tourist_attraction", "point_of_interest", "establishment")

	raw, err := g.SearchNearby(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, raw, 40)

	for _, p := range raw {
		if p.Lat == nil || p.Lng == nil {
			continue
		}
		d := geo.Distance(q.Center, domain.Coordinate{Lat: *p.Lat, Lng: *p.Lng})
		assert.LessOrEqual(t, d, 1201)
		assert.Contains(t, q.IncludedTypes, p.Types[0])
	}

	results := places.Normalize(q.Center, raw)
	assert.NotEmpty(t, results)
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i-1].DistanceMeters, results[i].DistanceMeters)
	}
}

func TestDataGenerator_Scenarios(t *testing.T) {
	ctx := context.Background()

	raw, err := NewDataGenerator("empty").SearchNearby(ctx, query("police"))
	require.NoError(t, err)
	assert.Empty(t, raw)

	raw, err = NewDataGenerator("sparse").SearchNearby(ctx, query("police"))
	require.NoError(t, err)
	assert.Len(t, raw, 2)

	flaky := NewDataGenerator("flaky")
	_, err = flaky.SearchNearby(ctx, query("police"))
	require.NoError(t, err)
	_, err = flaky.SearchNearby(ctx, query("police"))
	assert.ErrorIs(t, err, ErrScenarioFailure)

	assert.Equal(t, "basic", NewDataGenerator("").Scenario())
}

func TestDataGenerator_LatencyHonorsContext(t *testing.T) {
	g := NewDataGenerator("basic").WithLatency(time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := g.SearchNearby(ctx, query("hospital"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestOffset(t *testing.T) {
	origin := domain.Coordinate{Lat: 0, Lng: 0}
	east := offset(origin, 1000, 90)

	assert.InDelta(t, 0, east.Lat, 1e-9)
	assert.Equal(t, 1000, geo.Distance(origin, east))
	assert.Equal(t, 90, geo.Bearing(origin, east))
}

func TestGeocoder_Stable(t *testing.T) {
	g := NewGeocoder("Springfield", "North")
	c := domain.Coordinate{Lat: 40.4168, Lng: -3.7038}

	first, err := g.ReverseGeocode(context.Background(), c)
	require.NoError(t, err)
	second, err := g.ReverseGeocode(context.Background(), c)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotEmpty(t, first.Street)
	assert.Equal(t, "Springfield", first.City)
	assert.Contains(t, first.Line(), "Springfield")
}

func TestGeocoder_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGeocoder("x", "").ReverseGeocode(ctx, domain.Coordinate{})
	assert.ErrorIs(t, err, domain.ErrGeocodeFailure)
}
