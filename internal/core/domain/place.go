package domain

import "fmt"

// Compass is one of the eight principal compass points.
type Compass string

const (
	CompassN  Compass = "N"
	CompassNE Compass = "NE"
	CompassE  Compass = "E"
	CompassSE Compass = "SE"
	CompassS  Compass = "S"
	CompassSW Compass = "SW"
	CompassW  Compass = "W"
	CompassNW Compass = "NW"
)

// DefaultPlaceName is used for records that arrive without a display name.
const DefaultPlaceName = "Unnamed place"

// ResultItem is one normalized place, annotated relative to the origin it was fetched for.
type ResultItem struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Vicinity       string  `json:"vicinity,omitempty"`
	DistanceMeters int     `json:"distance"`
	Compass        Compass `json:"compass"`
}

// Meta renders the secondary line shown under a result, e.g. "350 m NE • 1 High St".
func (r ResultItem) Meta() string {
	meta := fmt.Sprintf("%s %s", FormatDistance(r.DistanceMeters), r.Compass)
	if r.Vicinity != "" {
		meta += " • " + r.Vicinity
	}
	return meta
}

// ResultSet is ordered ascending by distance. It is replaced wholesale, never patched.
type ResultSet []ResultItem

// RawPlace is an external search record before normalization. Any field may be absent.
type RawPlace struct {
	ID       string
	Name     *string
	Address  *string
	Lat      *float64
	Lng      *float64
	Types    []string
	Provider string
}

// FormatDistance renders meters as "N m" below one kilometer and "X.Y km" above.
func FormatDistance(m int) string {
	if m < 1000 {
		return fmt.Sprintf("%d m", m)
	}
	return fmt.Sprintf("%.1f km", float64(m)/1000)
}
