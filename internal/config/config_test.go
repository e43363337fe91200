package config

import (
	"testing"
	"time"

	"github.com/lcalzada-xor/where/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse(nil, envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 9000, cfg.GRPCPort)
	assert.Equal(t, 1200.0, cfg.SearchRadius)
	assert.Equal(t, 12, cfg.MaxResults)
	assert.Equal(t, "en", cfg.Language)
	assert.Equal(t, 8*time.Second, cfg.FetchTimeout)
	assert.Equal(t, domain.FilterPOI, cfg.InitialFilter)
	assert.Equal(t, []string{"999", "112", "911"}, cfg.EmergencyNumbers)
	assert.Equal(t, BackendOverpass, cfg.PlacesBackend)
	assert.NotEmpty(t, cfg.DBPath)
}

func TestParse_EnvThenFlags(t *testing.T) {
	env := envMap(map[string]string{
		"WHERE_ADDR":              ":9999",
		"WHERE_LAT":               "51.5",
		"WHERE_LNG":               "-0.12",
		"GOOGLE_PLACES_API_KEY":   "legacy-key",
		"WHERE_FETCH_TIMEOUT":     "3s",
		"WHERE_EMERGENCY_NUMBERS": "112, 999",
		"WHERE_MAX_RESULTS":       "not-a-number",
	})

	cfg, err := Parse([]string{"-addr", ":7000", "-filter", "Hospital", "-db", ":memory:"}, env)
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, 51.5, cfg.Latitude)
	assert.Equal(t, -0.12, cfg.Longitude)
	assert.Equal(t, "legacy-key", cfg.PlacesAPIKey)
	assert.Equal(t, BackendGoogle, cfg.PlacesBackend)
	assert.Equal(t, 3*time.Second, cfg.FetchTimeout)
	assert.Equal(t, []string{"112", "999"}, cfg.EmergencyNumbers)
	assert.Equal(t, 12, cfg.MaxResults)
	assert.Equal(t, domain.FilterHospital, cfg.InitialFilter)
	assert.Equal(t, ":memory:", cfg.DBPath)
}

func TestParse_PreferredKeyWins(t *testing.T) {
	cfg, err := Parse(nil, envMap(map[string]string{
		"WHERE_PLACES_API_KEY":  "new",
		"GOOGLE_PLACES_API_KEY": "old",
	}))
	require.NoError(t, err)
	assert.Equal(t, "new", cfg.PlacesAPIKey)
}

func TestParse_MockOverridesBackend(t *testing.T) {
	cfg, err := Parse([]string{"-mock", "-backend", "elastic"}, envMap(nil))
	require.NoError(t, err)
	assert.Equal(t, BackendMock, cfg.PlacesBackend)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"latitude out of range", []string{"-lat", "95"}},
		{"unknown backend", []string{"-backend", "bing"}},
		{"unknown filter", []string{"-filter", "pharmacy"}},
		{"zero radius", []string{"-radius", "0"}},
		{"unknown flag", []string{"-bogus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.args, envMap(nil))
			assert.Error(t, err)
		})
	}
}
