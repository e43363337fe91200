// Package google queries the Places API (New) searchNearby endpoint.
package google

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lcalzada-xor/where/internal/core/domain"
	"github.com/lcalzada-xor/where/internal/core/ports"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	// DefaultURL is the public searchNearby endpoint.
	DefaultURL = "https://places.googleapis.com/v1/places:searchNearby"
	// FieldMask limits the response to what the normalizer reads.
	FieldMask = "places.id,places.displayName,places.formattedAddress,places.location"
	// Provider tags records produced by this client.
	Provider = "google"

	maxErrorBody = 4 << 10
)

// ErrMissingAPIKey is returned when no credential is configured.
var ErrMissingAPIKey = errors.New("places api key not configured")

type searchRequest struct {
	IncludedTypes       []string            `json:"includedTypes"`
	MaxResultCount      int                 `json:"maxResultCount"`
	RankPreference      string              `json:"rankPreference"`
	LocationRestriction locationRestriction `json:"locationRestriction"`
	LanguageCode        string              `json:"languageCode,omitempty"`
}

type locationRestriction struct {
	Circle circle `json:"circle"`
}

type circle struct {
	Center latLng  `json:"center"`
	Radius float64 `json:"radius"`
}

type latLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type searchResponse struct {
	Places []place `json:"places"`
}

type localizedText struct {
	Text string `json:"text"`
}

// place mirrors the response record. Everything is optional.
type place struct {
	ID               string         `json:"id"`
	DisplayName      *localizedText `json:"displayName"`
	FormattedAddress *string        `json:"formattedAddress"`
	Location         *struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	} `json:"location"`
	Types []string `json:"types"`
}

// Client implements ports.PlacesSearcher against the Places API.
type Client struct {
	url    string
	apiKey string
	http   *http.Client
}

// NewClient creates a client. An empty url uses DefaultURL.
func NewClient(url, apiKey string, timeout time.Duration) *Client {
	if url == "" {
		url = DefaultURL
	}
	return &Client{
		url:    url,
		apiKey: apiKey,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		},
	}
}

// SearchNearby posts one searchNearby request ranked by distance.
func (c *Client) SearchNearby(ctx context.Context, q domain.SearchQuery) ([]domain.RawPlace, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	body, err := json.Marshal(searchRequest{
		IncludedTypes:  q.IncludedTypes,
		MaxResultCount: q.MaxResults,
		RankPreference: "DISTANCE",
		LocationRestriction: locationRestriction{
			Circle: circle{
				Center: latLng{Latitude: q.Center.Lat, Longitude: q.Center.Lng},
				Radius: q.RadiusMeters,
			},
		},
		LanguageCode: q.Language,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", FieldMask)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("places request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("places returned status %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode places response: %w", err)
	}

	raw := make([]domain.RawPlace, 0, len(decoded.Places))
	for _, p := range decoded.Places {
		raw = append(raw, toRaw(p))
	}
	return raw, nil
}

func toRaw(p place) domain.RawPlace {
	r := domain.RawPlace{
		ID:       p.ID,
		Address:  p.FormattedAddress,
		Types:    p.Types,
		Provider: Provider,
	}
	if p.DisplayName != nil {
		name := p.DisplayName.Text
		r.Name = &name
	}
	if p.Location != nil {
		r.Lat = p.Location.Latitude
		r.Lng = p.Location.Longitude
	}
	return r
}

var _ ports.PlacesSearcher = (*Client)(nil)
