package nominatim

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lcalzada-xor/where/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReverseGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "jsonv2", r.URL.Query().Get("format"))
		assert.Equal(t, "41.403600", r.URL.Query().Get("lat"))
		assert.Equal(t, "2.174400", r.URL.Query().Get("lon"))
		assert.Equal(t, "en", r.URL.Query().Get("accept-language"))
		assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))
		io.WriteString(w, `{
			"name": "Sagrada Família",
			"display_name": "Sagrada Família, 401, Carrer de Mallorca, Barcelona",
			"address": {"house_number": "401", "road": "Carrer de Mallorca", "town": "Barcelona",
			            "state": "Catalonia", "postcode": "08013", "country_code": "es"}
		}`)
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL+"/", "en", time.Second).ReverseGeocode(context.Background(), domain.Coordinate{Lat: 41.4036, Lng: 2.1744})
	require.NoError(t, err)

	assert.Equal(t, domain.AddressComponents{
		Name:        "Sagrada Família",
		Street:      "401 Carrer de Mallorca",
		City:        "Barcelona",
		Region:      "Catalonia",
		PostalCode:  "08013",
		CountryCode: "ES",
	}, got)
	assert.Equal(t, "Sagrada Família, 401 Carrer de Mallorca, Barcelona, Catalonia, 08013", got.Line())
}

func TestReverseGeocode_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"unable to geocode", http.StatusOK, `{"error":"Unable to geocode"}`, "Unable to geocode"},
		{"server error", http.StatusServiceUnavailable, ``, "status 503"},
		{"bad json", http.StatusOK, `[`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, "", time.Second).ReverseGeocode(context.Background(), domain.Coordinate{})
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrGeocodeFailure)
			assert.Equal(t, domain.KindGeocodeFailure, domain.KindOf(err))
			if tt.message != "" {
				assert.Contains(t, err.Error(), tt.message)
			}
		})
	}
}
