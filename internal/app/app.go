package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/lcalzada-xor/where/internal/adapters/geocode/nominatim"
	"github.com/lcalzada-xor/where/internal/adapters/places/elastic"
	"github.com/lcalzada-xor/where/internal/adapters/places/google"
	"github.com/lcalzada-xor/where/internal/adapters/places/overpass"
	"github.com/lcalzada-xor/where/internal/adapters/reporting"
	"github.com/lcalzada-xor/where/internal/adapters/storage"
	webserver "github.com/lcalzada-xor/where/internal/adapters/web/server"
	"github.com/lcalzada-xor/where/internal/adapters/web/websocket"
	"github.com/lcalzada-xor/where/internal/config"
	"github.com/lcalzada-xor/where/internal/core/domain"
	"github.com/lcalzada-xor/where/internal/core/ports"
	"github.com/lcalzada-xor/where/internal/core/services/actions"
	"github.com/lcalzada-xor/where/internal/core/services/export"
	"github.com/lcalzada-xor/where/internal/core/services/filter"
	grpcserver "github.com/lcalzada-xor/where/internal/core/services/grpc"
	"github.com/lcalzada-xor/where/internal/core/services/places"
	"github.com/lcalzada-xor/where/internal/core/services/reconcile"
	"github.com/lcalzada-xor/where/internal/core/services/snapshot"
	"github.com/lcalzada-xor/where/internal/geo"
	"github.com/lcalzada-xor/where/internal/mock"
	"github.com/lcalzada-xor/where/internal/telemetry"
)

const (
	geocodeTimeout = 5 * time.Second
	seedTimeout    = 30 * time.Second
)

// Application holds the core components of the application.
// It acts as the Facade for the entire system, orchestrating services and infrastructure.
type Application struct {
	Config     *config.Config
	Store      *storage.SQLiteStore
	Location   *geo.StaticProvider
	Searcher   ports.PlacesSearcher
	Controller *reconcile.Controller
	WSManager  *websocket.WSManager
	Health     *grpcserver.HealthObserver
	WebServer  *webserver.Server
	GrpcServer *grpc.Server
}

// New creates a new Application instance and bootstraps its components.
func New(cfg *config.Config) (*Application, error) {
	app := &Application{
		Config: cfg,
	}

	if err := app.bootstrap(); err != nil {
		if app.Store != nil {
			app.Store.Close()
		}
		return nil, fmt.Errorf("application bootstrap failed: %w", err)
	}

	return app, nil
}

// bootstrap orchestrates the initialization sequence.
func (app *Application) bootstrap() error {
	cfg := app.Config

	// 1. Foundation & Infrastructure
	telemetry.InitMetrics()

	store, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return err
	}
	app.Store = store
	cache := snapshot.NewCache(store)

	params := filter.Params{
		RadiusMeters: cfg.SearchRadius,
		MaxResults:   cfg.MaxResults,
		Language:     cfg.Language,
	}

	searcher, err := app.initSearcher(params)
	if err != nil {
		return err
	}
	app.Searcher = searcher

	// 2. Device collaborators
	app.Location = geo.NewStaticProvider(cfg.Latitude, cfg.Longitude, app.initGeocoder())
	app.Location.SetDenied(cfg.DenyLocation)

	// 3. Domain Services
	fetcher := places.NewFetcher(searcher, params, cfg.FetchTimeout)
	app.Controller = reconcile.NewController(app.Location, fetcher, cache, reconcile.WithFilter(cfg.InitialFilter))

	app.WSManager = websocket.NewWSManager(app.Controller, allowedOrigins(cfg.Addr))
	app.Controller.Subscribe(app.WSManager)

	actionSvc := actions.NewService(app.Controller, app.WSManager, app.WSManager, cfg.EmergencyNumbers)
	exportSvc := export.NewService(app.Controller, reporting.NewPDFExporter(), reporting.NewXLSXExporter(), actionSvc.Numbers())

	// 4. Servers
	app.WebServer = webserver.NewServer(cfg.Addr, app.Controller, app.WSManager, actionSvc, exportSvc)
	if cfg.GRPCPort > 0 {
		app.GrpcServer, app.Health = grpcserver.NewGrpcServer(app.Controller)
		app.Controller.Subscribe(app.Health)
	}

	slog.Info("Application bootstrapped",
		"backend", cfg.PlacesBackend,
		"db", cfg.DBPath,
		"filter", cfg.InitialFilter,
		"lat", cfg.Latitude,
		"lng", cfg.Longitude,
	)
	return nil
}

func (app *Application) initSearcher(params filter.Params) (ports.PlacesSearcher, error) {
	cfg := app.Config
	switch cfg.PlacesBackend {
	case config.BackendGoogle:
		if cfg.PlacesAPIKey == "" {
			return nil, google.ErrMissingAPIKey
		}
		return google.NewClient(cfg.PlacesURL, cfg.PlacesAPIKey, cfg.FetchTimeout), nil
	case config.BackendOverpass:
		return overpass.NewRepository(cfg.OverpassURL, cfg.FetchTimeout), nil
	case config.BackendElastic:
		store, err := elastic.NewStore(cfg.ElasticURL, cfg.ElasticIndex)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), seedTimeout)
		defer cancel()
		if err := store.EnsureIndex(ctx); err != nil {
			return nil, err
		}
		if cfg.ElasticSeed {
			center := domain.Coordinate{Lat: cfg.Latitude, Lng: cfg.Longitude}
			if err := SeedElastic(ctx, store, mock.NewDataGenerator("crowded"), center, params); err != nil {
				return nil, err
			}
		}
		return store, nil
	case config.BackendMock:
		slog.Info("Running in mock mode", "scenario", cfg.MockScenario)
		return mock.NewDataGenerator(cfg.MockScenario), nil
	}
	return nil, fmt.Errorf("unknown places backend %q", cfg.PlacesBackend)
}

func (app *Application) initGeocoder() ports.ReverseGeocoder {
	if app.Config.MockMode {
		return mock.NewGeocoder("Springfield", "")
	}
	return nominatim.NewClient(app.Config.NominatimURL, app.Config.Language, geocodeTimeout)
}

// SeedElastic indexes synthetic places for every filter around center. Records
// without an id or a full coordinate cannot be indexed and are skipped.
func SeedElastic(ctx context.Context, store *elastic.Store, gen ports.PlacesSearcher, center domain.Coordinate, params filter.Params) error {
	var docs []elastic.Document
	for _, key := range domain.FilterKeys {
		raw, err := gen.SearchNearby(ctx, filter.Query(center, key, params))
		if err != nil {
			return fmt.Errorf("generate %s places: %w", key, err)
		}
		for _, p := range raw {
			if p.ID == "" || p.Lat == nil || p.Lng == nil {
				continue
			}
			docs = append(docs, elastic.DocumentFromRaw(p))
		}
	}

	failed, err := store.IndexPlaces(ctx, docs)
	if err != nil {
		return err
	}
	slog.Info("Seeded places index", "documents", len(docs), "failed", failed)
	return nil
}

func allowedOrigins(addr string) []string {
	_, port, err := net.SplitHostPort(addr)
	if err != nil || port == "" {
		port = "8080"
	}
	return []string{
		"http://localhost:" + port,
		"http://127.0.0.1:" + port,
		"http://[::1]:" + port,
	}
}

// Run starts the application components and manages their execution lifecycle.
func (app *Application) Run(ctx context.Context) error {
	slog.Info("Starting where components...")

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := app.WebServer.Run(gctx); err != nil {
			return fmt.Errorf("web server error: %w", err)
		}
		return nil
	})

	if app.GrpcServer != nil {
		g.Go(func() error {
			lis, err := net.Listen("tcp", fmt.Sprintf(":%d", app.Config.GRPCPort))
			if err != nil {
				return fmt.Errorf("grpc listen error: %w", err)
			}
			slog.Info("gRPC health server listening", "port", app.Config.GRPCPort)

			go func() {
				<-gctx.Done()
				app.GrpcServer.GracefulStop()
			}()

			if err := app.GrpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("grpc server error: %w", err)
			}
			return nil
		})
	}

	// The first activation restores the cache and starts the refresh; its
	// failures are already published as state.
	g.Go(func() error {
		if err := app.Controller.Activate(gctx); err != nil {
			slog.Warn("Initial activation failed", "kind", domain.KindOf(err), "error", err)
		}
		return nil
	})

	slog.Info("where ready. Press Ctrl+C to terminate.")

	err := g.Wait()
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	if cerr := app.cleanup(); err == nil {
		err = cerr
	}
	return err
}

func (app *Application) cleanup() error {
	slog.Info("Cleaning up resources...")
	if app.Store != nil {
		return app.Store.Close()
	}
	return nil
}
