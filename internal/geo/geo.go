// Package geo holds the great-circle math used to annotate results
// and the static location provider.
package geo

import (
	"math"

	"github.com/lcalzada-xor/where/internal/core/domain"
)

// EarthRadiusMeters is the mean Earth radius.
const EarthRadiusMeters = 6371000.0

var compassPoints = [8]domain.Compass{
	domain.CompassN, domain.CompassNE, domain.CompassE, domain.CompassSE,
	domain.CompassS, domain.CompassSW, domain.CompassW, domain.CompassNW,
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Distance returns the haversine distance between a and b in whole meters.
func Distance(a, b domain.Coordinate) int {
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	// rounding can push antipodal inputs just past 1
	h = math.Min(1, math.Max(0, h))
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return int(math.Round(EarthRadiusMeters * c))
}

// Bearing returns the initial great-circle bearing from one coordinate to another,
// in whole degrees within [0,360).
func Bearing(from, to domain.Coordinate) int {
	phi1 := toRadians(from.Lat)
	phi2 := toRadians(to.Lat)
	dLambda := toRadians(to.Lng - from.Lng)

	y := math.Sin(dLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLambda)
	deg := math.Atan2(y, x) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}

	// 359.5 and up rounds to 360, which is north again
	return int(math.Round(deg)) % 360
}

// CompassLabel maps a bearing to the nearest of eight 45° sectors.
// Sector boundaries round up, and 360 aliases to N.
func CompassLabel(bearingDeg int) domain.Compass {
	deg := ((bearingDeg % 360) + 360) % 360
	sector := int(math.Round(float64(deg)/45)) % 8
	return compassPoints[sector]
}

// Annotate returns the distance and compass point of target as seen from origin.
func Annotate(origin, target domain.Coordinate) (int, domain.Compass) {
	return Distance(origin, target), CompassLabel(Bearing(origin, target))
}
