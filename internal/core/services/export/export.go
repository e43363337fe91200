// Package export renders the current state as downloadable documents.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lcalzada-xor/where/internal/core/domain"
	"github.com/lcalzada-xor/where/internal/core/ports"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Service builds a LocationCard from the published state and hands it to the exporters.
type Service struct {
	reconciler ports.Reconciler
	pdf        ports.LocationCardExporter
	sheet      ports.ResultSheetExporter
	numbers    []string
	now        func() time.Time
}

// NewService creates the export service.
func NewService(reconciler ports.Reconciler, pdf ports.LocationCardExporter, sheet ports.ResultSheetExporter, numbers []string) *Service {
	return &Service{
		reconciler: reconciler,
		pdf:        pdf,
		sheet:      sheet,
		numbers:    numbers,
		now:        time.Now,
	}
}

// Card returns the card for the current state.
func (s *Service) Card() domain.LocationCard {
	return domain.NewLocationCard(s.reconciler.State(), s.numbers, s.now())
}

// PDF renders the location card.
func (s *Service) PDF(ctx context.Context) ([]byte, error) {
	_, span := otel.Tracer("export").Start(ctx, "ExportPDF")
	defer span.End()

	card := s.Card()
	span.SetAttributes(attribute.Int("results", len(card.Results)))

	data, err := s.pdf.ExportLocationCard(card)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("export pdf: %w", err)
	}
	slog.Debug("Exported location card", "format", "pdf", "bytes", len(data))
	return data, nil
}

// XLSX renders the result sheet.
func (s *Service) XLSX(ctx context.Context) ([]byte, error) {
	_, span := otel.Tracer("export").Start(ctx, "ExportXLSX")
	defer span.End()

	card := s.Card()
	span.SetAttributes(attribute.Int("results", len(card.Results)))

	data, err := s.sheet.ExportResultSheet(card)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("export xlsx: %w", err)
	}
	slog.Debug("Exported result sheet", "format", "xlsx", "bytes", len(data))
	return data, nil
}
