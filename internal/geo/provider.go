package geo

import (
	"context"
	"errors"
	"fmt"

	"github.com/lcalzada-xor/where/internal/core/domain"
	"github.com/lcalzada-xor/where/internal/core/ports"
)

var errNoGeocoder = errors.New("no reverse geocoder configured")

// StaticProvider implements ports.LocationProvider with a fixed location.
// Reverse geocoding is delegated to an optional geocoder.
type StaticProvider struct {
	Lat      float64
	Lng      float64
	denied   bool
	geocoder ports.ReverseGeocoder
}

// NewStaticProvider creates a provider that always reports the same location.
func NewStaticProvider(lat, lng float64, geocoder ports.ReverseGeocoder) *StaticProvider {
	return &StaticProvider{
		Lat:      lat,
		Lng:      lng,
		geocoder: geocoder,
	}
}

// SetDenied makes RequestPermission answer denied.
func (s *StaticProvider) SetDenied(denied bool) {
	s.denied = denied
}

// RequestPermission grants access unless the provider was configured to refuse.
func (s *StaticProvider) RequestPermission(ctx context.Context) (domain.PermissionStatus, error) {
	if s.denied {
		return domain.PermissionDenied, nil
	}
	return domain.PermissionGranted, nil
}

// CurrentCoordinate returns the fixed location.
func (s *StaticProvider) CurrentCoordinate(ctx context.Context) (domain.Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return domain.Coordinate{}, fmt.Errorf("%w: %w", domain.ErrLocationUnavailable, err)
	}
	c, err := domain.NewCoordinate(s.Lat, s.Lng)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("%w: %w", domain.ErrLocationUnavailable, err)
	}
	return c, nil
}

// ReverseGeocode resolves an address through the configured geocoder.
func (s *StaticProvider) ReverseGeocode(ctx context.Context, c domain.Coordinate) (domain.AddressComponents, error) {
	if s.geocoder == nil {
		return domain.AddressComponents{}, fmt.Errorf("%w: %w", domain.ErrGeocodeFailure, errNoGeocoder)
	}
	return s.geocoder.ReverseGeocode(ctx, c)
}

var _ ports.LocationProvider = (*StaticProvider)(nil)
