// Package elastic serves nearby searches from a self-hosted Elasticsearch POI index.
package elastic

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/lcalzada-xor/where/internal/core/domain"
	"github.com/lcalzada-xor/where/internal/core/ports"
	"github.com/olivere/elastic/v7"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultIndex is used when no index name is configured.
const DefaultIndex = "places"

// Provider tags records produced by this store.
const Provider = "elastic"

// Mapping declares location as geo_point so distance queries work.
const Mapping = `{
  "mappings": {
    "properties": {
      "name":     {"type": "text"},
      "address":  {"type": "text"},
      "types":    {"type": "keyword"},
      "location": {"type": "geo_point"}
    }
  }
}`

// Location is the stored geo point. Both fields may be absent in foreign documents.
type Location struct {
	Lat *float64 `json:"lat,omitempty"`
	Lon *float64 `json:"lon,omitempty"`
}

// Document is one indexed place.
type Document struct {
	ID       string    `json:"-"`
	Name     *string   `json:"name,omitempty"`
	Address  *string   `json:"address,omitempty"`
	Types    []string  `json:"types,omitempty"`
	Location *Location `json:"location,omitempty"`
}

// Store implements ports.PlacesSearcher over an Elasticsearch index.
type Store struct {
	client *elastic.Client
	index  string
}

// NewStore connects to url. Sniffing and the startup health check are off so a
// single-node or proxied cluster works.
func NewStore(url, index string) (*Store, error) {
	if index == "" {
		index = DefaultIndex
	}
	client, err := elastic.NewClient(
		elastic.SetURL(url),
		elastic.SetSniff(false),
		elastic.SetHealthcheck(false),
		elastic.SetHttpClient(&http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}),
	)
	if err != nil {
		return nil, fmt.Errorf("create elastic client: %w", err)
	}
	return &Store{client: client, index: index}, nil
}

// EnsureIndex creates the index with Mapping when it does not exist.
func (s *Store) EnsureIndex(ctx context.Context) error {
	exists, err := s.client.IndexExists(s.index).Do(ctx)
	if err != nil {
		return fmt.Errorf("check index %s: %w", s.index, err)
	}
	if exists {
		return nil
	}
	created, err := s.client.CreateIndex(s.index).BodyString(Mapping).Do(ctx)
	if err != nil {
		return fmt.Errorf("create index %s: %w", s.index, err)
	}
	if !created.Acknowledged {
		slog.Warn("CreateIndex was not acknowledged", "index", s.index)
	}
	return nil
}

// IndexPlaces bulk-indexes docs and returns how many were rejected.
func (s *Store) IndexPlaces(ctx context.Context, docs []Document) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	bulk := s.client.Bulk().Index(s.index)
	for _, doc := range docs {
		bulk = bulk.Add(elastic.NewBulkIndexRequest().Id(doc.ID).Doc(doc))
	}
	resp, err := bulk.Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("bulk index: %w", err)
	}
	failed := 0
	for _, item := range resp.Failed() {
		failed++
		if item.Error != nil {
			slog.Warn("Failed to index place", "id", item.Id, "reason", item.Error.Reason)
		}
	}
	return failed, nil
}

// SearchNearby returns documents within the radius whose types intersect the
// query tokens, nearest first.
func (s *Store) SearchNearby(ctx context.Context, q domain.SearchQuery) ([]domain.RawPlace, error) {
	query := elastic.NewBoolQuery().Filter(
		elastic.NewGeoDistanceQuery("location").
			Point(q.Center.Lat, q.Center.Lng).
			Distance(fmt.Sprintf("%.0fm", q.RadiusMeters)),
	)
	if len(q.IncludedTypes) > 0 {
		tokens := make([]interface{}, len(q.IncludedTypes))
		for i, t := range q.IncludedTypes {
			tokens[i] = t
		}
		query = query.Filter(elastic.NewTermsQuery("types", tokens...))
	}

	size := q.MaxResults
	if size <= 0 {
		size = 10
	}

	searchResult, err := s.client.Search().
		Index(s.index).
		Query(query).
		SortBy(elastic.NewGeoDistanceSort("location").
			Point(q.Center.Lat, q.Center.Lng).
			Asc().
			Unit("m").
			DistanceType("arc").
			IgnoreUnmapped(true)).
		Size(size).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("elastic search: %w", err)
	}

	raw := make([]domain.RawPlace, 0, len(searchResult.Hits.Hits))
	for _, hit := range searchResult.Hits.Hits {
		var doc Document
		if err := json.Unmarshal(hit.Source, &doc); err != nil {
			slog.Debug("Skipping unreadable document", "id", hit.Id, "error", err)
			continue
		}
		doc.ID = hit.Id
		raw = append(raw, doc.toRaw())
	}
	return raw, nil
}

func (d Document) toRaw() domain.RawPlace {
	r := domain.RawPlace{
		ID:       d.ID,
		Name:     d.Name,
		Address:  d.Address,
		Types:    d.Types,
		Provider: Provider,
	}
	if d.Location != nil {
		r.Lat = d.Location.Lat
		r.Lng = d.Location.Lon
	}
	return r
}

// DocumentFromRaw converts a raw record for indexing.
func DocumentFromRaw(p domain.RawPlace) Document {
	doc := Document{
		ID:      p.ID,
		Name:    p.Name,
		Address: p.Address,
		Types:   p.Types,
	}
	if p.Lat != nil || p.Lng != nil {
		doc.Location = &Location{Lat: p.Lat, Lon: p.Lng}
	}
	return doc
}

var _ ports.PlacesSearcher = (*Store)(nil)
