package ports

import "github.com/lcalzada-xor/where/internal/core/domain"

// LocationCardExporter renders a printable summary of the current state.
type LocationCardExporter interface {
	ExportLocationCard(card domain.LocationCard) ([]byte, error)
}

// ResultSheetExporter renders the result set as a spreadsheet.
type ResultSheetExporter interface {
	ExportResultSheet(card domain.LocationCard) ([]byte, error)
}
