package mock

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/lcalzada-xor/where/internal/core/domain"
	"github.com/lcalzada-xor/where/internal/core/ports"
)

// Geocoder resolves every coordinate to a stable synthetic street address.
type Geocoder struct {
	City   string
	Region string
}

// NewGeocoder creates a geocoder reporting addresses in city.
func NewGeocoder(city, region string) *Geocoder {
	return &Geocoder{City: city, Region: region}
}

func (g *Geocoder) ReverseGeocode(ctx context.Context, c domain.Coordinate) (domain.AddressComponents, error) {
	if err := ctx.Err(); err != nil {
		return domain.AddressComponents{}, fmt.Errorf("%w: %w", domain.ErrGeocodeFailure, err)
	}
	h := fnv.New32a()
	fmt.Fprintf(h, "%.4f,%.4f", c.Lat, c.Lng)
	n := h.Sum32()

	return domain.AddressComponents{
		Street: fmt.Sprintf("%d %s", n%200+1, streets[int(n/200)%len(streets)]),
		City:   g.City,
		Region: g.Region,
	}, nil
}

var _ ports.ReverseGeocoder = (*Geocoder)(nil)
