package domain

import "time"

// Snapshot is the single persisted last-known state.
type Snapshot struct {
	Coordinate *Coordinate `json:"coordinate,omitempty"`
	CapturedAt time.Time   `json:"captured_at"`
	Address    string      `json:"address"`
	Results    ResultSet   `json:"results"`
}

// HasData reports whether the snapshot carries a location or results worth showing.
// An address alone is applied but does not count as cached data.
func (s Snapshot) HasData() bool {
	return s.Coordinate != nil || len(s.Results) > 0
}
