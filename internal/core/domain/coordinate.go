package domain

import (
	"fmt"

	"github.com/golang/geo/s2"
)

// Coordinate is a WGS84 position in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NewCoordinate validates lat/lng and returns the coordinate.
func NewCoordinate(lat, lng float64) (Coordinate, error) {
	c := Coordinate{Lat: lat, Lng: lng}
	if !c.Valid() {
		return Coordinate{}, fmt.Errorf("%w: (%v, %v)", ErrInvalidCoordinate, lat, lng)
	}
	return c, nil
}

// Valid reports whether lat is within [-90,90] and lng within [-180,180].
// NaN fails both checks.
func (c Coordinate) Valid() bool {
	return s2.LatLngFromDegrees(c.Lat, c.Lng).IsValid()
}

// LatLng converts the coordinate to an s2 point on the unit sphere.
func (c Coordinate) LatLng() s2.LatLng {
	return s2.LatLngFromDegrees(c.Lat, c.Lng)
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f, %.6f", c.Lat, c.Lng)
}
