// Package nominatim reverse-geocodes coordinates with the OpenStreetMap Nominatim API.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lcalzada-xor/where/internal/core/domain"
	"github.com/lcalzada-xor/where/internal/core/ports"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultURL is the public Nominatim instance.
const DefaultURL = "https://nominatim.openstreetmap.org"

// UserAgent identifies this client, as the usage policy requires.
const UserAgent = "where/1.0"

type reverseResult struct {
	Error       string `json:"error"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Address     struct {
		HouseNumber string `json:"house_number"`
		Road        string `json:"road"`
		City        string `json:"city"`
		Town        string `json:"town"`
		Village     string `json:"village"`
		State       string `json:"state"`
		Postcode    string `json:"postcode"`
		CountryCode string `json:"country_code"`
	} `json:"address"`
}

// Client implements ports.ReverseGeocoder.
type Client struct {
	baseURL  string
	language string
	http     *http.Client
}

// NewClient creates a client. An empty baseURL uses DefaultURL.
func NewClient(baseURL, language string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		language: language,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		},
	}
}

// ReverseGeocode returns the address components at c. Every failure wraps domain.ErrGeocodeFailure.
func (c *Client) ReverseGeocode(ctx context.Context, coord domain.Coordinate) (domain.AddressComponents, error) {
	params := url.Values{}
	params.Set("format", "jsonv2")
	params.Set("addressdetails", "1")
	params.Set("lat", strconv.FormatFloat(coord.Lat, 'f', 6, 64))
	params.Set("lon", strconv.FormatFloat(coord.Lng, 'f', 6, 64))
	if c.language != "" {
		params.Set("accept-language", c.language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+params.Encode(), nil)
	if err != nil {
		return domain.AddressComponents{}, fmt.Errorf("%w: %w", domain.ErrGeocodeFailure, err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.AddressComponents{}, fmt.Errorf("%w: nominatim request failed: %w", domain.ErrGeocodeFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.AddressComponents{}, fmt.Errorf("%w: nominatim returned status %d", domain.ErrGeocodeFailure, resp.StatusCode)
	}

	var result reverseResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return domain.AddressComponents{}, fmt.Errorf("%w: %w", domain.ErrGeocodeFailure, err)
	}
	if result.Error != "" {
		return domain.AddressComponents{}, fmt.Errorf("%w: %s", domain.ErrGeocodeFailure, result.Error)
	}

	return toComponents(result), nil
}

func toComponents(r reverseResult) domain.AddressComponents {
	street := r.Address.Road
	if r.Address.HouseNumber != "" && street != "" {
		street = r.Address.HouseNumber + " " + street
	}
	city := r.Address.City
	if city == "" {
		city = r.Address.Town
	}
	if city == "" {
		city = r.Address.Village
	}
	return domain.AddressComponents{
		Name:        r.Name,
		Street:      street,
		City:        city,
		Region:      r.Address.State,
		PostalCode:  r.Address.Postcode,
		CountryCode: strings.ToUpper(r.Address.CountryCode),
	}
}

var _ ports.ReverseGeocoder = (*Client)(nil)
