package reporting

import (
	"fmt"

	"github.com/lcalzada-xor/where/internal/core/domain"
	"github.com/lcalzada-xor/where/internal/core/ports"
	"github.com/xuri/excelize/v2"
)

// ResultsSheet is the name of the worksheet holding the result rows.
const ResultsSheet = "Places"

// XLSXExporter writes the result set as a workbook.
type XLSXExporter struct{}

// NewXLSXExporter creates a new XLSX exporter instance
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// ExportResultSheet writes one row per result plus a location header row.
func (e *XLSXExporter) ExportResultSheet(card domain.LocationCard) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(ResultsSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(ResultsSheet)
	if err != nil {
		return nil, fmt.Errorf("open stream writer: %w", err)
	}

	var lat, lng interface{}
	if card.Coordinate != nil {
		lat, lng = card.Coordinate.Lat, card.Coordinate.Lng
	}
	if err := sw.SetRow("A1", []interface{}{"Latitude", lat, "Longitude", lng, "Address", card.Address}); err != nil {
		return nil, err
	}
	if err := sw.SetRow("A2", []interface{}{"Filter", card.Filter.Label(), "Stale", card.Stale, "Generated", card.GeneratedAt}); err != nil {
		return nil, err
	}

	headers := []interface{}{"ID", "Name", "Vicinity", "Distance (m)", "Direction"}
	if err := sw.SetRow("A4", headers); err != nil {
		return nil, err
	}

	for i, item := range card.Results {
		cell, _ := excelize.CoordinatesToCellName(1, i+5)
		row := []interface{}{item.ID, item.Name, item.Vicinity, item.DistanceMeters, string(item.Compass)}
		if err := sw.SetRow(cell, row); err != nil {
			return nil, err
		}
	}

	if err := sw.Flush(); err != nil {
		return nil, fmt.Errorf("flush sheet: %w", err)
	}

	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to generate XLSX: %w", err)
	}
	return buf.Bytes(), nil
}

var _ ports.ResultSheetExporter = (*XLSXExporter)(nil)
