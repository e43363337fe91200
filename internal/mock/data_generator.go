package mock

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"strings"
	"sync/atomic"
	"time"

	"github.com/lcalzada-xor/where/internal/core/domain"
	"github.com/lcalzada-xor/where/internal/core/ports"
	"github.com/lcalzada-xor/where/internal/geo"
)

// Place names per type token for realistic mock data
var namesByType = map[string][]string{
	"tourist_attraction": {"Old Town Hall", "Clock Tower", "Botanical Garden", "City Museum", "Harbour Lighthouse", "Cathedral"},
	"point_of_interest":  {"Market Square", "Memorial Park", "Riverside Walk", "Castle Ruins", "Observation Deck"},
	"establishment":      {"Central Library", "Grand Theatre", "Arts Centre", "Concert Hall"},
	"hospital":           {"General Hospital", "St Mary's Hospital", "Children's Hospital", "Walk-in Clinic"},
	"police":             {"Central Police Station", "Police Post", "Harbour Police"},
	"fire_station":       {"Fire Station 1", "Fire Station 4", "Rescue Station"},
}

var streets = []string{
	"High Street", "Station Road", "Church Lane", "Market Street", "Victoria Road",
	"Park Avenue", "Mill Lane", "Queen Street", "Bridge Street", "King's Road",
}

// Provider tags records produced by the generator.
const Provider = "mock"

// ErrScenarioFailure is returned by the flaky scenario.
var ErrScenarioFailure = errors.New("mock backend unavailable")

// DataGenerator is a deterministic synthetic places backend. The same query
// always yields the same records.
type DataGenerator struct {
	scenario string
	latency  time.Duration
	calls    atomic.Int64
}

// NewDataGenerator creates a generator for scenario: basic, crowded, sparse, empty or flaky.
func NewDataGenerator(scenario string) *DataGenerator {
	if scenario == "" {
		scenario = "basic"
	}
	return &DataGenerator{scenario: scenario}
}

// WithLatency delays every search by d.
func (g *DataGenerator) WithLatency(d time.Duration) *DataGenerator {
	g.latency = d
	return g
}

// Scenario returns the current scenario
func (g *DataGenerator) Scenario() string {
	return g.scenario
}

// SearchNearby generates candidate records around q.Center. Roughly one in
// eight records is partial (no longitude, no name or no id).
func (g *DataGenerator) SearchNearby(ctx context.Context, q domain.SearchQuery) ([]domain.RawPlace, error) {
	call := g.calls.Add(1)

	if g.latency > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(g.latency):
		}
	}

	var count int
	switch g.scenario {
	case "crowded":
		count = 40
	case "sparse":
		count = 2
	case "empty":
		return []domain.RawPlace{}, nil
	case "flaky":
		if call%2 == 0 {
			return nil, ErrScenarioFailure
		}
		count = 8
	default:
		count = 12
	}

	r := rand.New(rand.NewSource(seedFor(q)))
	radius := q.RadiusMeters
	if radius <= 0 {
		radius = 1200
	}

	raw := make([]domain.RawPlace, 0, count)
	for i := 0; i < count; i++ {
		raw = append(raw, g.generatePlace(r, q, radius, i))
	}
	return raw, nil
}

func (g *DataGenerator) generatePlace(r *rand.Rand, q domain.SearchQuery, radius float64, i int) domain.RawPlace {
	token := "point_of_interest"
	if len(q.IncludedTypes) > 0 {
		token = q.IncludedTypes[r.Intn(len(q.IncludedTypes))]
	}
	names, ok := namesByType[token]
	if !ok {
		names = namesByType["point_of_interest"]
	}

	// uniform over the disc
	dist := radius * math.Sqrt(r.Float64())
	bearing := r.Float64() * 360
	target := offset(q.Center, dist, bearing)

	name := names[r.Intn(len(names))]
	address := fmt.Sprintf("%d %s", r.Intn(200)+1, streets[r.Intn(len(streets))])
	lat, lng := target.Lat, target.Lng

	p := domain.RawPlace{
		ID:       fmt.Sprintf("mock-%s-%d", token, i),
		Name:     &name,
		Address:  &address,
		Lat:      &lat,
		Lng:      &lng,
		Types:    []string{token},
		Provider: Provider,
	}

	switch r.Intn(24) {
	case 0:
		p.Lng = nil
	case 1:
		p.Name = nil
	case 2:
		p.ID = ""
	}
	return p
}

// offset moves from origin by dist meters along bearing degrees.
func offset(origin domain.Coordinate, dist, bearing float64) domain.Coordinate {
	delta := dist / geo.EarthRadiusMeters
	theta := bearing * math.Pi / 180
	lat1 := origin.Lat * math.Pi / 180
	lng1 := origin.Lng * math.Pi / 180

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(delta) + math.Cos(lat1)*math.Sin(delta)*math.Cos(theta))
	lng2 := lng1 + math.Atan2(math.Sin(theta)*math.Sin(delta)*math.Cos(lat1), math.Cos(delta)-math.Sin(lat1)*math.Sin(lat2))

	lng := math.Mod(lng2*180/math.Pi+540, 360) - 180
	return domain.Coordinate{Lat: lat2 * 180 / math.Pi, Lng: lng}
}

func seedFor(q domain.SearchQuery) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%.5f,%.5f|%s", q.Center.Lat, q.Center.Lng, strings.Join(q.IncludedTypes, ","))
	return int64(h.Sum64())
}

var _ ports.PlacesSearcher = (*DataGenerator)(nil)
