package domain

import "time"

// LocationCard is the export view of the current state.
type LocationCard struct {
	Title            string
	GeneratedAt      time.Time
	Coordinate       *Coordinate
	LocationTime     time.Time
	Address          string
	Filter           FilterKey
	Results          ResultSet
	Stale            bool
	EmergencyNumbers []string
}

// NewLocationCard builds a card from a published state.
func NewLocationCard(s ViewState, numbers []string, now time.Time) LocationCard {
	filter := s.ResultsFilter
	if filter == "" {
		filter = s.Filter
	}
	return LocationCard{
		Title:            filter.Title(),
		GeneratedAt:      now,
		Coordinate:       s.Coordinate,
		LocationTime:     s.LocationUpdatedAt,
		Address:          s.Address,
		Filter:           filter,
		Results:          s.Results,
		Stale:            s.Stale,
		EmergencyNumbers: numbers,
	}
}
