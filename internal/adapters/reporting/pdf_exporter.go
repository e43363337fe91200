package reporting

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/lcalzada-xor/where/internal/core/domain"
	"github.com/lcalzada-xor/where/internal/core/ports"
)

// PDFExporter renders a printable location card
type PDFExporter struct{}

// NewPDFExporter creates a new PDF exporter instance
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// ExportLocationCard generates a one-page PDF from a location card
func (e *PDFExporter) ExportLocationCard(card domain.LocationCard) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(card.Title, false)
	pdf.AddPage()

	// core fonts are cp1252
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	card.Address = tr(card.Address)
	results := make(domain.ResultSet, len(card.Results))
	for i, item := range card.Results {
		item.Name = tr(item.Name)
		item.Vicinity = tr(item.Vicinity)
		results[i] = item
	}
	card.Results = results

	e.addHeader(pdf, card)
	e.addLocation(pdf, card)
	e.addResults(pdf, card)
	e.addEmergency(pdf, card)
	e.addFooter(pdf, card)

	var buf bytes.Buffer
	err := pdf.Output(&buf)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return buf.Bytes(), nil
}

func (e *PDFExporter) addHeader(pdf *gofpdf.Fpdf, card domain.LocationCard) {
	pdf.SetFont("Arial", "B", 24)
	pdf.SetTextColor(0, 51, 102) // Dark blue
	pdf.CellFormat(0, 15, card.Title, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s", card.GeneratedAt.Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")

	if card.Stale {
		pdf.SetTextColor(255, 149, 0) // Orange
		banner := "Showing last known results"
		if !card.LocationTime.IsZero() {
			banner += " - updated " + card.LocationTime.Format("2006-01-02 15:04:05")
		}
		pdf.CellFormat(0, 6, banner, "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)
}

func (e *PDFExporter) addLocation(pdf *gofpdf.Fpdf, card domain.LocationCard) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, "My Location", "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.SetTextColor(60, 60, 60)
	if card.Coordinate == nil {
		pdf.CellFormat(0, 7, "Waiting for location...", "", 1, "L", false, 0, "")
		pdf.Ln(6)
		return
	}

	pdf.CellFormat(0, 7, fmt.Sprintf("Lat: %.6f, Lon: %.6f", card.Coordinate.Lat, card.Coordinate.Lng), "", 1, "L", false, 0, "")
	if card.Address != "" {
		pdf.MultiCell(0, 7, card.Address, "", "L", false)
	}
	pdf.SetTextColor(0, 102, 204)
	url := domain.MapURL(*card.Coordinate)
	pdf.CellFormat(0, 7, url, "", 1, "L", false, 0, url)
	pdf.Ln(6)
}

func (e *PDFExporter) addResults(pdf *gofpdf.Fpdf, card domain.LocationCard) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, fmt.Sprintf("%s (%d)", card.Filter.Title(), len(card.Results)), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	if len(card.Results) == 0 {
		pdf.SetFont("Arial", "I", 11)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 7, "No places found nearby.", "", 1, "L", false, 0, "")
		pdf.Ln(6)
		return
	}

	// Table header
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(80, 8, "Place", "1", 0, "L", true, 0, "")
	pdf.CellFormat(60, 8, "Vicinity", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 8, "Distance", "1", 0, "R", true, 0, "")
	pdf.CellFormat(15, 8, "Dir", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, item := range card.Results {
		pdf.CellFormat(80, 7, truncate(item.Name, 40), "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 7, truncate(item.Vicinity, 32), "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, domain.FormatDistance(item.DistanceMeters), "1", 0, "R", false, 0, "")
		pdf.CellFormat(15, 7, string(item.Compass), "1", 1, "C", false, 0, "")
	}
	pdf.Ln(6)
}

func (e *PDFExporter) addEmergency(pdf *gofpdf.Fpdf, card domain.LocationCard) {
	if len(card.EmergencyNumbers) == 0 {
		return
	}
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(220, 53, 69) // Red
	pdf.CellFormat(0, 10, "Emergency", "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "B", 18)
	for i, number := range card.EmergencyNumbers {
		ln := 0
		if i == len(card.EmergencyNumbers)-1 {
			ln = 1
		}
		pdf.CellFormat(30, 12, number, "1", ln, "C", false, 0, "")
	}
}

func (e *PDFExporter) addFooter(pdf *gofpdf.Fpdf, card domain.LocationCard) {
	pdf.SetY(-20)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(150, 150, 150)
	pdf.CellFormat(0, 5, "where - offline-aware nearby places", "", 0, "C", false, 0, "")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

var _ ports.LocationCardExporter = (*PDFExporter)(nil)
