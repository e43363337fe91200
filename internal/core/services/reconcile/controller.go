// Package reconcile owns the view state and sequences cache restore, location
// acquisition, reverse geocoding and places fetches.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lcalzada-xor/where/internal/core/domain"
	"github.com/lcalzada-xor/where/internal/core/ports"
	"github.com/lcalzada-xor/where/internal/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// Fetcher runs one normalized places search.
type Fetcher interface {
	Fetch(ctx context.Context, origin domain.Coordinate, key domain.FilterKey) (domain.ResultSet, error)
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithFilter sets the filter selected before activation.
func WithFilter(key domain.FilterKey) Option {
	return func(c *Controller) {
		if key.Valid() {
			c.state.Filter = key
		}
	}
}

// Controller is the single owner of the published ViewState.
type Controller struct {
	location ports.LocationProvider
	fetcher  Fetcher
	cache    ports.SnapshotCache
	subject  *StateSubject
	now      func() time.Time

	mu          sync.RWMutex
	state       domain.ViewState
	hasSnapshot bool
	inFlight    int
	seq         uint64

	// publishMu keeps mutation and notification in the same order.
	publishMu sync.Mutex
}

// NewController creates a controller in the Empty phase with the POI filter.
func NewController(location ports.LocationProvider, fetcher Fetcher, cache ports.SnapshotCache, opts ...Option) *Controller {
	c := &Controller{
		location: location,
		fetcher:  fetcher,
		cache:    cache,
		subject:  NewStateSubject(),
		now:      time.Now,
		state: domain.ViewState{
			Phase:  domain.PhaseEmpty,
			Filter: domain.FilterPOI,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the last published state.
func (c *Controller) State() domain.ViewState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Subscribe registers an observer for every subsequent publish.
func (c *Controller) Subscribe(observer ports.StateObserver) string {
	return c.subject.Subscribe(observer)
}

// Unsubscribe removes an observer.
func (c *Controller) Unsubscribe(id string) {
	c.subject.Unsubscribe(id)
}

// Activate runs the startup pipeline: cache restore, permission, coordinate,
// then geocode and fetch in parallel. Only PermissionDenied and
// LocationUnavailable are returned; every other failure degrades the state.
func (c *Controller) Activate(ctx context.Context) error {
	ctx, span := otel.Tracer("reconcile").Start(ctx, "Activate")
	defer span.End()

	if snap, ok := c.cache.Load(ctx); ok {
		c.restore(ctx, snap)
	}

	coord, err := c.acquire(ctx)
	if err != nil {
		span.RecordError(err)
		c.failAcquire(ctx, err)
		return err
	}
	span.SetAttributes(attribute.String("location", coord.String()))

	var key domain.FilterKey
	c.update(ctx, func(s *domain.ViewState) {
		s.Coordinate = &coord
		s.LocationUpdatedAt = c.now().UTC().Round(0)
		s.Phase = domain.PhaseRefreshing
		s.Error = ""
		s.ErrorKind = domain.KindNone
		key = s.Filter
	})

	var fetchErr error
	var g errgroup.Group
	g.Go(func() error {
		c.geocode(ctx, coord)
		return nil
	})
	g.Go(func() error {
		fetchErr = c.refresh(ctx, coord, key)
		return nil
	})
	_ = g.Wait()

	if fetchErr == nil {
		c.persist(ctx)
	}
	return nil
}

// SelectFilter changes the active filter and, when a coordinate is known,
// re-runs the fetch around it. Location and address are never re-acquired.
func (c *Controller) SelectFilter(ctx context.Context, key domain.FilterKey) error {
	if !key.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownFilter, key)
	}

	ctx, span := otel.Tracer("reconcile").Start(ctx, "SelectFilter")
	defer span.End()
	span.SetAttributes(attribute.String("filter", string(key)))

	var origin *domain.Coordinate
	c.update(ctx, func(s *domain.ViewState) {
		s.Filter = key
		if s.Coordinate != nil {
			coord := *s.Coordinate
			origin = &coord
		}
	})
	if origin == nil {
		slog.Debug("Filter selected before any coordinate is known", "filter", key)
		return nil
	}

	if err := c.refresh(ctx, *origin, key); err == nil {
		c.persist(ctx)
	}
	return nil
}

func (c *Controller) restore(ctx context.Context, snap domain.Snapshot) {
	c.update(ctx, func(s *domain.ViewState) {
		s.Address = snap.Address
		if !snap.HasData() {
			return
		}
		c.hasSnapshot = true
		s.Phase = domain.PhaseShowingCached
		s.Coordinate = snap.Coordinate
		s.LocationUpdatedAt = snap.CapturedAt
		s.Results = snap.Results
		s.Stale = true
	})
	slog.Info("Restored cached snapshot", "results", len(snap.Results), "has_coordinate", snap.Coordinate != nil)
}

func (c *Controller) acquire(ctx context.Context) (domain.Coordinate, error) {
	status, err := c.location.RequestPermission(ctx)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("%w: %w", domain.ErrPermissionDenied, err)
	}
	if status != domain.PermissionGranted {
		return domain.Coordinate{}, domain.ErrPermissionDenied
	}

	coord, err := c.location.CurrentCoordinate(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrLocationUnavailable) {
			return domain.Coordinate{}, err
		}
		return domain.Coordinate{}, fmt.Errorf("%w: %w", domain.ErrLocationUnavailable, err)
	}
	if !coord.Valid() {
		return domain.Coordinate{}, fmt.Errorf("%w: %w", domain.ErrLocationUnavailable, domain.ErrInvalidCoordinate)
	}
	return coord, nil
}

func (c *Controller) failAcquire(ctx context.Context, err error) {
	kind := domain.KindOf(err)
	telemetry.Failures.WithLabelValues(string(kind)).Inc()
	slog.Warn("Location acquisition failed", "kind", kind, "error", err)

	c.update(ctx, func(s *domain.ViewState) {
		if c.hasSnapshot {
			s.Phase = domain.PhaseStaleAfterFailure
			s.Stale = true
		} else {
			s.Phase = domain.PhaseEmpty
		}
		s.Error = domain.UserMessage(err)
		s.ErrorKind = kind
	})
}

func (c *Controller) geocode(ctx context.Context, coord domain.Coordinate) {
	components, err := c.location.ReverseGeocode(ctx, coord)
	if err != nil {
		if !errors.Is(err, domain.ErrGeocodeFailure) {
			err = fmt.Errorf("%w: %w", domain.ErrGeocodeFailure, err)
		}
		telemetry.Failures.WithLabelValues(string(domain.KindGeocodeFailure)).Inc()
		slog.Warn("Reverse geocoding failed, keeping previous address", "error", err)
		return
	}

	line := components.Line()
	if line == "" {
		return
	}
	c.update(ctx, func(s *domain.ViewState) {
		s.Address = line
	})
}

// refresh runs one fetch. Overlapping fetches are not cancelled: whichever
// resolves last overwrites the results.
func (c *Controller) refresh(ctx context.Context, origin domain.Coordinate, key domain.FilterKey) error {
	var seq uint64
	c.update(ctx, func(s *domain.ViewState) {
		c.seq++
		seq = c.seq
		c.inFlight++
		s.Phase = domain.PhaseRefreshing
	})

	results, err := c.fetcher.Fetch(ctx, origin, key)

	c.update(ctx, func(s *domain.ViewState) {
		c.inFlight--
		if seq < c.seq {
			slog.Debug("Superseded fetch resolved", "filter", key, "seq", seq, "latest", c.seq)
		}
		if err != nil {
			s.Phase = domain.PhaseStaleAfterFailure
			s.Stale = true
			return
		}
		s.Phase = domain.PhaseLive
		s.Stale = false
		s.Results = results
		s.ResultsFilter = key
	})

	if err != nil {
		kind := domain.KindOf(err)
		telemetry.Failures.WithLabelValues(string(kind)).Inc()
		slog.Warn("Places fetch failed, keeping previous results", "filter", key, "kind", kind, "error", err)
		return err
	}
	slog.Info("Places fetched", "filter", key, "results", len(results))
	return nil
}

// persist writes the current coordinate, address and results. Failures are logged and dropped.
func (c *Controller) persist(ctx context.Context) {
	state := c.State()
	snap := domain.Snapshot{
		Coordinate: state.Coordinate,
		CapturedAt: state.LocationUpdatedAt,
		Address:    state.Address,
		Results:    state.Results,
	}
	if err := c.cache.Save(ctx, snap); err != nil {
		slog.Warn("Snapshot save failed", "kind", domain.KindOf(err), "error", err)
	}
}

func (c *Controller) update(ctx context.Context, fn func(s *domain.ViewState)) {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()

	c.mu.Lock()
	fn(&c.state)
	c.state.Version++
	c.state.Loading = c.inFlight > 0
	published := c.state
	c.mu.Unlock()

	telemetry.StateTransitions.WithLabelValues(string(published.Phase)).Inc()
	telemetry.ResultsPublished.Set(float64(len(published.Results)))
	c.subject.Notify(ctx, published)
}

var _ ports.Reconciler = (*Controller)(nil)
