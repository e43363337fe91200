package reporting

import (
	"bytes"
	"testing"
	"time"

	"github.com/lcalzada-xor/where/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleCard() domain.LocationCard {
	return domain.LocationCard{
		Title:        domain.FilterHospital.Title(),
		GeneratedAt:  time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
		Coordinate:   &domain.Coordinate{Lat: 36.5298, Lng: -6.2927},
		LocationTime: time.Date(2026, 6, 1, 11, 58, 0, 0, time.UTC),
		Address:      "Plaza de San Juan de Dios, Cádiz",
		Filter:       domain.FilterHospital,
		Stale:        true,
		Results: domain.ResultSet{
			{ID: "h1", Name: "Hospital Universitario Puerta del Mar", Vicinity: "Av. Ana de Viya, 21", DistanceMeters: 2150, Compass: domain.CompassSE},
			{ID: "h2", Name: "Clínica San Rafael", DistanceMeters: 640, Compass: domain.CompassS},
		},
		EmergencyNumbers: domain.DefaultEmergencyNumbers,
	}
}

func TestPDFExporterExportLocationCard(t *testing.T) {
	exporter := NewPDFExporter()

	pdfBytes, err := exporter.ExportLocationCard(sampleCard())
	require.NoError(t, err)

	assert.NotEmpty(t, pdfBytes)
	assert.True(t, bytes.HasPrefix(pdfBytes, []byte("%PDF-")), "PDF should start with %PDF- header")
	assert.Greater(t, len(pdfBytes), 1000, "PDF should be larger than 1KB")
}

func TestPDFExporterWithoutLocation(t *testing.T) {
	exporter := NewPDFExporter()

	pdfBytes, err := exporter.ExportLocationCard(domain.LocationCard{
		Title:       domain.FilterPOI.Title(),
		GeneratedAt: time.Now(),
		Filter:      domain.FilterPOI,
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdfBytes, []byte("%PDF-")))
}

func TestXLSXExporterExportResultSheet(t *testing.T) {
	exporter := NewXLSXExporter()
	card := sampleCard()

	data, err := exporter.ExportResultSheet(card)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{ResultsSheet}, f.GetSheetList())

	rows, err := f.GetRows(ResultsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2+1+1+len(card.Results))

	assert.Equal(t, "Latitude", rows[0][0])
	assert.Equal(t, "Hospital", rows[1][1])
	assert.Equal(t, []string{"ID", "Name", "Vicinity", "Distance (m)", "Direction"}, rows[3])
	assert.Equal(t, []string{"h1", "Hospital Universitario Puerta del Mar", "Av. Ana de Viya, 21", "2150", "SE"}, rows[4])
	assert.Equal(t, "Clínica San Rafael", rows[5][1])
	assert.Equal(t, "640", rows[5][3])
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
