package domain

import (
	"fmt"
	"time"
)

// Phase is the reconciliation state.
type Phase string

const (
	PhaseEmpty             Phase = "empty"
	PhaseShowingCached     Phase = "showing_cached"
	PhaseRefreshing        Phase = "refreshing"
	PhaseLive              Phase = "live"
	PhaseStaleAfterFailure Phase = "stale_after_failure"
)

// ViewState is everything a presentation layer needs to render the screen.
// Results is shared between copies and must be treated as read-only.
type ViewState struct {
	Version           uint64      `json:"version"`
	Phase             Phase       `json:"phase"`
	Coordinate        *Coordinate `json:"coordinate,omitempty"`
	LocationUpdatedAt time.Time   `json:"location_updated_at,omitempty"`
	Address           string      `json:"address"`
	Filter            FilterKey   `json:"filter"`
	ResultsFilter     FilterKey   `json:"results_filter,omitempty"`
	Results           ResultSet   `json:"results"`
	Stale             bool        `json:"stale"`
	Loading           bool        `json:"loading"`
	Error             string      `json:"error,omitempty"`
	ErrorKind         FailureKind `json:"error_kind,omitempty"`
}

// StatusText is the headline under the title.
func (s ViewState) StatusText() string {
	switch {
	case s.Error != "":
		return s.Error
	case s.Coordinate != nil:
		return fmt.Sprintf("Lat: %.5f, Lon: %.5f", s.Coordinate.Lat, s.Coordinate.Lng)
	}
	return "Waiting for location..."
}

// StaleBanner returns the banner text, or "" when the results are fresh.
func (s ViewState) StaleBanner() string {
	if !s.Stale {
		return ""
	}
	banner := "Showing last known results"
	if !s.LocationUpdatedAt.IsZero() {
		banner += " • updated " + s.LocationUpdatedAt.Local().Format("2006-01-02 15:04:05")
	}
	return banner
}

// StateView is a ViewState together with its derived display strings.
type StateView struct {
	ViewState
	Status string `json:"status"`
	Banner string `json:"banner,omitempty"`
	Title  string `json:"title"`
}

// View derives the display strings.
func (s ViewState) View() StateView {
	return StateView{
		ViewState: s,
		Status:    s.StatusText(),
		Banner:    s.StaleBanner(),
		Title:     s.Filter.Title(),
	}
}
