package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/lcalzada-xor/where/internal/core/domain"
)

// Places backends.
const (
	BackendGoogle   = "google"
	BackendOverpass = "overpass"
	BackendElastic  = "elastic"
	BackendMock     = "mock"
)

// Config holds all application configuration.
type Config struct {
	Addr     string
	GRPCPort int
	DBPath   string
	Debug    bool

	// Static location fix served by the location provider.
	Latitude     float64
	Longitude    float64
	DenyLocation bool

	MockMode     bool
	MockScenario string

	PlacesBackend string
	PlacesAPIKey  string
	PlacesURL     string
	OverpassURL   string
	ElasticURL    string
	ElasticIndex  string
	ElasticSeed   bool
	NominatimURL  string

	SearchRadius  float64
	MaxResults    int
	Language      string
	FetchTimeout  time.Duration
	InitialFilter domain.FilterKey

	EmergencyNumbers []string
}

// Load parses os.Args and the process environment.
// Flags take precedence over environment variables.
func Load() (*Config, error) {
	return Parse(os.Args[1:], os.LookupEnv)
}

// Parse builds a Config from defaults, then lookup (environment), then args (flags).
func Parse(args []string, lookup func(string) (string, bool)) (*Config, error) {
	env := envReader{lookup: lookup}
	cfg := &Config{}

	// Defaults and Environment Variables
	cfg.Addr = env.get("WHERE_ADDR", ":8080")
	cfg.GRPCPort = env.getInt("WHERE_GRPC", 9000)
	cfg.DBPath = env.get("WHERE_DB", "")
	cfg.Debug = env.getBool("WHERE_DEBUG", false)
	cfg.Latitude = env.getFloat("WHERE_LAT", 40.4168)
	cfg.Longitude = env.getFloat("WHERE_LNG", -3.7038)
	cfg.DenyLocation = env.getBool("WHERE_DENY_LOCATION", false)
	cfg.MockMode = env.getBool("WHERE_MOCK", false)
	cfg.MockScenario = env.get("WHERE_MOCK_SCENARIO", "basic")
	cfg.PlacesBackend = env.get("WHERE_PLACES_BACKEND", "")
	cfg.PlacesAPIKey = env.get("WHERE_PLACES_API_KEY", env.get("GOOGLE_PLACES_API_KEY", ""))
	cfg.PlacesURL = env.get("WHERE_PLACES_URL", "")
	cfg.OverpassURL = env.get("WHERE_OVERPASS_URL", "")
	cfg.ElasticURL = env.get("WHERE_ELASTIC_URL", "http://localhost:9200")
	cfg.ElasticIndex = env.get("WHERE_ELASTIC_INDEX", "places")
	cfg.ElasticSeed = env.getBool("WHERE_ELASTIC_SEED", false)
	cfg.NominatimURL = env.get("WHERE_NOMINATIM_URL", "")
	cfg.SearchRadius = env.getFloat("WHERE_RADIUS", 1200)
	cfg.MaxResults = env.getInt("WHERE_MAX_RESULTS", 12)
	cfg.Language = env.get("WHERE_LANGUAGE", "en")
	cfg.FetchTimeout = env.getDuration("WHERE_FETCH_TIMEOUT", 8*time.Second)
	filterStr := env.get("WHERE_FILTER", string(domain.FilterPOI))
	numbersStr := env.get("WHERE_EMERGENCY_NUMBERS", strings.Join(domain.DefaultEmergencyNumbers, ","))

	// Command Line Flags (Override Env)
	fs := flag.NewFlagSet("where", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP server address")
	fs.IntVar(&cfg.GRPCPort, "grpc", cfg.GRPCPort, "gRPC health server port (0 to disable)")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to SQLite snapshot cache (default ~/.where/where.db)")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable verbose debug logging")
	fs.Float64Var(&cfg.Latitude, "lat", cfg.Latitude, "Static latitude")
	fs.Float64Var(&cfg.Longitude, "lng", cfg.Longitude, "Static longitude")
	fs.BoolVar(&cfg.DenyLocation, "deny-location", cfg.DenyLocation, "Simulate a refused location permission")
	fs.BoolVar(&cfg.MockMode, "mock", cfg.MockMode, "Serve synthetic places (simulation)")
	fs.StringVar(&cfg.MockScenario, "mock-scenario", cfg.MockScenario, "Mock scenario: basic, crowded, sparse, empty, flaky")
	fs.StringVar(&cfg.PlacesBackend, "backend", cfg.PlacesBackend, "Places backend: google, overpass, elastic, mock")
	fs.StringVar(&cfg.PlacesAPIKey, "api-key", cfg.PlacesAPIKey, "Places API key")
	fs.StringVar(&cfg.PlacesURL, "places-url", cfg.PlacesURL, "Places searchNearby endpoint override")
	fs.StringVar(&cfg.OverpassURL, "overpass-url", cfg.OverpassURL, "Overpass interpreter endpoint")
	fs.StringVar(&cfg.ElasticURL, "elastic-url", cfg.ElasticURL, "Elasticsearch URL")
	fs.StringVar(&cfg.ElasticIndex, "elastic-index", cfg.ElasticIndex, "Elasticsearch places index")
	fs.BoolVar(&cfg.ElasticSeed, "elastic-seed", cfg.ElasticSeed, "Seed the Elasticsearch index with synthetic places around the static fix")
	fs.StringVar(&cfg.NominatimURL, "nominatim-url", cfg.NominatimURL, "Nominatim base URL for reverse geocoding")
	fs.Float64Var(&cfg.SearchRadius, "radius", cfg.SearchRadius, "Search radius in meters")
	fs.IntVar(&cfg.MaxResults, "max-results", cfg.MaxResults, "Maximum results per search")
	fs.StringVar(&cfg.Language, "lang", cfg.Language, "Result language code")
	fs.DurationVar(&cfg.FetchTimeout, "fetch-timeout", cfg.FetchTimeout, "Places fetch timeout")
	fs.StringVar(&filterStr, "filter", filterStr, "Initial filter: poi, hospital, police, fire_station")
	fs.StringVar(&numbersStr, "emergency", numbersStr, "Emergency numbers (comma separated, primary first)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.InitialFilter = domain.FilterKey(strings.ToLower(strings.TrimSpace(filterStr)))
	cfg.EmergencyNumbers = domain.ParseNumberList(numbersStr)

	if cfg.PlacesBackend == "" {
		cfg.PlacesBackend = defaultBackend(cfg)
	}
	if cfg.MockMode {
		cfg.PlacesBackend = BackendMock
	}
	if cfg.DBPath == "" {
		cfg.DBPath = getDefaultDBPath()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	var errs []error
	if _, err := domain.NewCoordinate(c.Latitude, c.Longitude); err != nil {
		errs = append(errs, fmt.Errorf("static fix %f,%f: %w", c.Latitude, c.Longitude, err))
	}
	switch c.PlacesBackend {
	case BackendGoogle, BackendOverpass, BackendElastic, BackendMock:
	default:
		errs = append(errs, fmt.Errorf("unknown places backend %q", c.PlacesBackend))
	}
	if !c.InitialFilter.Valid() {
		errs = append(errs, fmt.Errorf("%w: %q", domain.ErrUnknownFilter, c.InitialFilter))
	}
	if c.SearchRadius <= 0 {
		errs = append(errs, fmt.Errorf("radius must be positive, got %v", c.SearchRadius))
	}
	if c.MaxResults <= 0 {
		errs = append(errs, fmt.Errorf("max results must be positive, got %d", c.MaxResults))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("fetch timeout must be positive, got %v", c.FetchTimeout))
	}
	return errors.Join(errs...)
}

// defaultBackend picks google when a key is configured, otherwise overpass.
func defaultBackend(c *Config) string {
	if c.PlacesAPIKey != "" {
		return BackendGoogle
	}
	return BackendOverpass
}

type envReader struct {
	lookup func(string) (string, bool)
}

func (e envReader) get(key, fallback string) string {
	if value, ok := e.lookup(key); ok {
		return value
	}
	return fallback
}

func (e envReader) getFloat(key string, fallback float64) float64 {
	if value, ok := e.lookup(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		slog.Warn("Ignoring malformed environment value", "key", key, "value", value)
	}
	return fallback
}

func (e envReader) getInt(key string, fallback int) int {
	if value, ok := e.lookup(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		slog.Warn("Ignoring malformed environment value", "key", key, "value", value)
	}
	return fallback
}

func (e envReader) getBool(key string, fallback bool) bool {
	if value, ok := e.lookup(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		slog.Warn("Ignoring malformed environment value", "key", key, "value", value)
	}
	return fallback
}

func (e envReader) getDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := e.lookup(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		slog.Warn("Ignoring malformed environment value", "key", key, "value", value)
	}
	return fallback
}

// getDefaultDBPath returns the default database path in user's home directory.
func getDefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		slog.Warn("Could not get user home directory, using current dir", "error", err)
		return "where.db"
	}
	return filepath.Join(home, ".where", "where.db")
}
