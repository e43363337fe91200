// Package overpass searches OpenStreetMap through an Overpass API endpoint.
package overpass

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/lcalzada-xor/where/internal/core/domain"
	"github.com/lcalzada-xor/where/internal/core/ports"
	"github.com/lcalzada-xor/where/internal/geo"
	"github.com/serjvanilla/go-overpass"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultURL is the public Overpass interpreter.
const DefaultURL = "https://overpass-api.de/api/interpreter"

// Provider tags records produced by this repository.
const Provider = "overpass"

// tag is one OSM key with a value regex.
type tag struct {
	key   string
	value string
}

// tagsByType maps search type tokens to OSM tags.
var tagsByType = map[string]tag{
	"tourist_attraction": {"tourism", "attraction|museum|viewpoint|artwork|gallery"},
	"point_of_interest":  {"historic", "monument|memorial|castle|ruins|archaeological_site"},
	"establishment":      {"amenity", "place_of_worship|theatre|arts_centre|library"},
	"hospital":           {"amenity", "hospital|clinic"},
	"police":             {"amenity", "police"},
	"fire_station":       {"amenity", "fire_station"},
}

// Repository implements ports.PlacesSearcher over Overpass.
type Repository struct {
	client  *overpass.Client
	timeout time.Duration
}

// NewRepository creates an Overpass-backed searcher.
func NewRepository(endpoint string, timeout time.Duration) *Repository {
	if endpoint == "" {
		endpoint = DefaultURL
	}
	httpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   timeout,
	}
	client := overpass.NewWithSettings(endpoint, 2, httpClient)
	return &Repository{
		client:  &client,
		timeout: timeout,
	}
}

// SearchNearby queries nodes and ways matching the type tokens within the radius.
// Results are ranked by distance and capped at q.MaxResults.
func (r *Repository) SearchNearby(ctx context.Context, q domain.SearchQuery) ([]domain.RawPlace, error) {
	query, err := BuildQuery(q, r.timeout)
	if err != nil {
		return nil, err
	}

	result, err := r.client.Query(query)
	if err != nil {
		return nil, fmt.Errorf("overpass query failed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw := convert(&result)
	rank(q.Center, raw)
	if q.MaxResults > 0 && len(raw) > q.MaxResults {
		raw = raw[:q.MaxResults]
	}
	return raw, nil
}

// BuildQuery renders the Overpass QL for q.
func BuildQuery(q domain.SearchQuery, timeout time.Duration) (string, error) {
	selectors := make([]string, 0, len(q.IncludedTypes))
	seen := make(map[tag]bool)
	for _, token := range q.IncludedTypes {
		t, ok := tagsByType[token]
		if !ok || seen[t] {
			continue
		}
		seen[t] = true
		selectors = append(selectors, fmt.Sprintf(`["%s"~"^(%s)$"]`, t.key, t.value))
	}
	if len(selectors) == 0 {
		return "", fmt.Errorf("no osm tags for types %v", q.IncludedTypes)
	}

	around := fmt.Sprintf("(around:%.0f,%.6f,%.6f)", q.RadiusMeters, q.Center.Lat, q.Center.Lng)

	var b strings.Builder
	seconds := int(timeout.Seconds())
	if seconds <= 0 {
		seconds = 8
	}
	fmt.Fprintf(&b, "[out:json][timeout:%d];\n(\n", seconds)
	for _, sel := range selectors {
		fmt.Fprintf(&b, "\tnode%s%s;\n", sel, around)
		fmt.Fprintf(&b, "\tway%s%s;\n", sel, around)
	}
	b.WriteString(");\nout body;\n>;\nout skel qt;\n")
	return b.String(), nil
}

func convert(result *overpass.Result) []domain.RawPlace {
	var raw []domain.RawPlace

	for _, node := range result.Nodes {
		// untagged nodes are way members pulled in by ">"
		if len(node.Tags) == 0 {
			continue
		}
		lat, lon := node.Lat, node.Lon
		raw = append(raw, toRaw(fmt.Sprintf("osm:node/%d", node.ID), node.Tags, &lat, &lon))
	}

	for _, way := range result.Ways {
		if len(way.Tags) == 0 {
			continue
		}
		var lat, lon float64
		count := 0
		for _, node := range way.Nodes {
			if node == nil {
				continue
			}
			lat += node.Lat
			lon += node.Lon
			count++
		}
		id := fmt.Sprintf("osm:way/%d", way.ID)
		if count == 0 {
			raw = append(raw, toRaw(id, way.Tags, nil, nil))
			continue
		}
		lat /= float64(count)
		lon /= float64(count)
		raw = append(raw, toRaw(id, way.Tags, &lat, &lon))
	}

	return raw
}

func toRaw(id string, tags map[string]string, lat, lon *float64) domain.RawPlace {
	r := domain.RawPlace{
		ID:       id,
		Lat:      lat,
		Lng:      lon,
		Provider: Provider,
	}
	if name, ok := tags["name"]; ok && name != "" {
		r.Name = &name
	}
	if addr := formatAddress(tags); addr != "" {
		r.Address = &addr
	}
	for _, key := range []string{"amenity", "tourism", "historic"} {
		if v, ok := tags[key]; ok {
			r.Types = append(r.Types, v)
		}
	}
	return r
}

func formatAddress(tags map[string]string) string {
	var parts []string
	street := tags["addr:street"]
	if hn := tags["addr:housenumber"]; hn != "" && street != "" {
		parts = append(parts, hn+" "+street)
	} else if street != "" {
		parts = append(parts, street)
	}
	if city := tags["addr:city"]; city != "" {
		parts = append(parts, city)
	}
	return strings.Join(parts, ", ")
}

// rank orders located records by distance from origin; records without a
// location go last and are dropped later by the normalizer.
func rank(origin domain.Coordinate, raw []domain.RawPlace) {
	dist := func(p domain.RawPlace) int {
		if p.Lat == nil || p.Lng == nil {
			return int(^uint(0) >> 1)
		}
		return geo.Distance(origin, domain.Coordinate{Lat: *p.Lat, Lng: *p.Lng})
	}
	sort.SliceStable(raw, func(i, j int) bool {
		di, dj := dist(raw[i]), dist(raw[j])
		if di != dj {
			return di < dj
		}
		return raw[i].ID < raw[j].ID
	})
}

var _ ports.PlacesSearcher = (*Repository)(nil)
