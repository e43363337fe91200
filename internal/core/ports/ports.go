package ports

import (
	"context"

	"github.com/lcalzada-xor/where/internal/core/domain"
)

// LocationProvider is the device location collaborator.
type LocationProvider interface {
	// RequestPermission asks for foreground location access.
	RequestPermission(ctx context.Context) (domain.PermissionStatus, error)
	// CurrentCoordinate acquires a fresh fix.
	CurrentCoordinate(ctx context.Context) (domain.Coordinate, error)
	ReverseGeocoder
}

// ReverseGeocoder turns a coordinate into address components.
type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, c domain.Coordinate) (domain.AddressComponents, error)
}

// PlacesSearcher is an external nearby-search backend.
// Implementations return raw, possibly partial records; normalization happens in the core.
type PlacesSearcher interface {
	SearchNearby(ctx context.Context, q domain.SearchQuery) ([]domain.RawPlace, error)
}

// Reconciler is the read/trigger surface of the reconciliation controller.
type Reconciler interface {
	State() domain.ViewState
	SelectFilter(ctx context.Context, key domain.FilterKey) error
}

// StateObserver receives every published state. Implementations must not block.
type StateObserver interface {
	OnStateChanged(ctx context.Context, state domain.ViewState)
}

// Sharer is the clipboard/share collaborator.
type Sharer interface {
	Share(ctx context.Context, text string) error
}

// Dialer is the telephony collaborator.
type Dialer interface {
	Dial(ctx context.Context, number string) error
}
