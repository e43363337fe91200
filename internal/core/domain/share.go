package domain

import (
	"fmt"
	"strings"
)

// MapURL links to the coordinate on Google Maps.
func MapURL(c Coordinate) string {
	return fmt.Sprintf("https://maps.google.com/?q=%.6f,%.6f", c.Lat, c.Lng)
}

// ShareText builds the multi-line payload handed to the clipboard/share collaborator.
// The address line is omitted when address is empty.
func ShareText(c Coordinate, address string) string {
	lines := []string{fmt.Sprintf("My location: %.6f, %.6f", c.Lat, c.Lng)}
	if address != "" {
		lines = append(lines, "Address: "+address)
	}
	lines = append(lines, "Map: "+MapURL(c))
	return strings.Join(lines, "\n")
}
